package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// The presets below describe a right hand in a horizontally mirrored frame:
// the thumb points toward smaller X when extended.

// RockLandmarks returns a closed fist.
func RockLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb tucked across the palm
	landmarks.Points[ThumbCMC] = Point3D{X: 0.46, Y: 0.76, Z: -0.01}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.43, Y: 0.72, Z: -0.02}
	landmarks.Points[ThumbIP] = Point3D{X: 0.44, Y: 0.68, Z: -0.03}
	landmarks.Points[ThumbTip] = Point3D{X: 0.47, Y: 0.66, Z: -0.03}

	setCurled(&landmarks, IndexMCP, 0.45)
	setCurled(&landmarks, MiddleMCP, 0.50)
	setCurled(&landmarks, RingMCP, 0.55)
	setCurled(&landmarks, PinkyMCP, 0.60)

	return landmarks
}

// PaperLandmarks returns an open palm with every finger extended.
func PaperLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended to the side
	landmarks.Points[ThumbCMC] = Point3D{X: 0.45, Y: 0.75, Z: 0.02}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.03}
	landmarks.Points[ThumbIP] = Point3D{X: 0.35, Y: 0.65, Z: 0.03}
	landmarks.Points[ThumbTip] = Point3D{X: 0.30, Y: 0.60, Z: 0.03}

	setExtended(&landmarks, IndexMCP, 0.45, 0.68, 0.35)
	setExtended(&landmarks, MiddleMCP, 0.50, 0.66, 0.28)
	setExtended(&landmarks, RingMCP, 0.55, 0.68, 0.35)
	setExtended(&landmarks, PinkyMCP, 0.60, 0.70, 0.42)

	return landmarks
}

// ScissorsLandmarks returns a victory sign: index and middle extended.
func ScissorsLandmarks() HandLandmarks {
	landmarks := RockLandmarks()

	setExtended(&landmarks, IndexMCP, 0.45, 0.68, 0.35)
	setExtended(&landmarks, MiddleMCP, 0.50, 0.66, 0.28)

	return landmarks
}

// setCurled places a finger's four joints so the tip folds back below the PIP joint.
func setCurled(h *HandLandmarks, mcp int, x float64) {
	h.Points[mcp] = Point3D{X: x, Y: 0.68, Z: -0.02}
	h.Points[mcp+1] = Point3D{X: x, Y: 0.62, Z: -0.05}
	h.Points[mcp+2] = Point3D{X: x + 0.01, Y: 0.66, Z: -0.04}
	h.Points[mcp+3] = Point3D{X: x + 0.01, Y: 0.70, Z: -0.02}
}

// setExtended places a finger's joints in a straight line from the MCP up to the tip.
func setExtended(h *HandLandmarks, mcp int, x, baseY, tipY float64) {
	step := (baseY - tipY) / 3
	for i := 0; i < 4; i++ {
		h.Points[mcp+i] = Point3D{X: x, Y: baseY - float64(i)*step, Z: 0.0}
	}
}
