// Package detector provides hand detection interfaces and types for gesture recognition.
package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// FingerTips lists the tip landmark of every finger, thumb first.
var FingerTips = [5]int{ThumbTip, IndexTip, MiddleTip, RingTip, PinkyTip}

// Point3D is a single landmark. X and Y are normalized to the image size,
// Z is depth relative to the wrist.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Mirror returns a copy of the hand reflected around the vertical image axis,
// as if the source frame had been flipped horizontally.
func (h HandLandmarks) Mirror() HandLandmarks {
	mirrored := h
	for i := range mirrored.Points {
		mirrored.Points[i].X = 1.0 - mirrored.Points[i].X
	}
	switch h.Handedness {
	case "Left":
		mirrored.Handedness = "Right"
	case "Right":
		mirrored.Handedness = "Left"
	}
	return mirrored
}

// Pixel converts a landmark to integer pixel coordinates for a frame of the given size.
func (p Point3D) Pixel(width, height int) (int, int) {
	return int(p.X * float64(width)), int(p.Y * float64(height))
}
