// Package features turns detected hand landmarks into classifier input.
package features

import (
	"errors"
	"fmt"

	"github.com/ayusman/mudra/internal/detector"
)

// ErrNoHand is returned when a frame contains no hand to extract from.
var ErrNoHand = errors.New("no hand detected")

// Vector sizes for the two extraction modes.
const (
	FingerCount = 5
	CoordCount  = detector.NumLandmarks * 3
)

// Mode selects which representation an Extractor produces.
type Mode int

const (
	// ModeFingers yields five open/closed flags: thumb, index, middle, ring, pinky.
	ModeFingers Mode = iota
	// ModeLandmarks yields the raw x,y,z coordinates of all 21 landmarks.
	ModeLandmarks
)

// Len returns the vector length produced in this mode.
func (m Mode) Len() int {
	if m == ModeLandmarks {
		return CoordCount
	}
	return FingerCount
}

func (m Mode) String() string {
	switch m {
	case ModeFingers:
		return "fingers"
	case ModeLandmarks:
		return "landmarks"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Vector is a feature vector. Finger vectors hold 1 for open and 0 for closed.
type Vector []float64

// FromFlags builds a finger vector from 0/1 flags.
func FromFlags(flags ...int) Vector {
	v := make(Vector, len(flags))
	for i, f := range flags {
		if f != 0 {
			v[i] = 1
		}
	}
	return v
}

// OpenCount returns how many entries of a finger vector are set.
func (v Vector) OpenCount() int {
	n := 0
	for _, f := range v {
		if f != 0 {
			n++
		}
	}
	return n
}

// Equal reports whether two vectors hold identical values.
func (v Vector) Equal(o Vector) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if v[i] != o[i] {
			return false
		}
	}
	return true
}

// ThumbSide is the image direction in which an extended thumb points.
// The thumb test assumes a fixed handedness, so frames are mirrored before
// extraction and the side is chosen per game.
type ThumbSide int

const (
	// ThumbOutwardLeft treats the thumb as open when its tip lies left of the IP joint.
	ThumbOutwardLeft ThumbSide = iota
	// ThumbOutwardRight treats the thumb as open when its tip lies right of the IP joint.
	ThumbOutwardRight
)

// Fingers computes the open/closed state of each finger.
// A non-thumb finger is open when its tip is higher on screen than its PIP joint.
func Fingers(hand *detector.HandLandmarks, side ThumbSide) Vector {
	v := make(Vector, FingerCount)

	tip := hand.Points[detector.ThumbTip].X
	ip := hand.Points[detector.ThumbIP].X
	if (side == ThumbOutwardLeft && tip < ip) || (side == ThumbOutwardRight && tip > ip) {
		v[0] = 1
	}

	for i, tipID := range detector.FingerTips[1:] {
		if hand.Points[tipID].Y < hand.Points[tipID-2].Y {
			v[i+1] = 1
		}
	}

	return v
}

// Coords flattens the landmarks into x0,y0,z0,...,x20,y20,z20.
func Coords(hand *detector.HandLandmarks) Vector {
	v := make(Vector, 0, CoordCount)
	for _, p := range hand.Points {
		v = append(v, p.X, p.Y, p.Z)
	}
	return v
}

// Extractor derives one feature vector per frame from the first detected hand.
type Extractor struct {
	Mode  Mode
	Thumb ThumbSide
}

// Extract returns ErrNoHand for an empty detection. Additional hands are ignored.
func (e Extractor) Extract(hands []detector.HandLandmarks) (Vector, error) {
	if len(hands) == 0 {
		return nil, ErrNoHand
	}
	hand := &hands[0]
	if e.Mode == ModeLandmarks {
		return Coords(hand), nil
	}
	return Fingers(hand, e.Thumb), nil
}
