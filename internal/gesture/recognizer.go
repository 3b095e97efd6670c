package gesture

import (
	"fmt"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/features"
	"gocv.io/x/gocv"
)

// Recognition is the result of running one frame through a Recognizer.
type Recognition struct {
	Gesture Gesture
	// Hand is the hand the gesture was read from, nil when none was found.
	Hand *detector.HandLandmarks
}

// Recognizer chains hand detection, feature extraction and classification.
type Recognizer struct {
	detector   detector.Detector
	classifier Classifier
	extractor  features.Extractor
}

// NewRecognizer builds a Recognizer. The extraction mode follows the
// classifier; thumb decides the outward direction for finger flags.
func NewRecognizer(d detector.Detector, c Classifier, thumb features.ThumbSide) *Recognizer {
	return &Recognizer{
		detector:   d,
		classifier: c,
		extractor:  features.Extractor{Mode: c.Mode(), Thumb: thumb},
	}
}

// Classifier returns the wrapped classifier.
func (r *Recognizer) Classifier() Classifier { return r.classifier }

// Recognize classifies the first hand in frame. A frame without a hand
// yields the classifier's absent label and no error. On a detector or
// classifier failure the absent label is returned alongside the error.
func (r *Recognizer) Recognize(frame *gocv.Mat) (Recognition, error) {
	absent := Recognition{Gesture: r.classifier.Absent()}

	hands, err := r.detector.Detect(frame)
	if err != nil {
		return absent, fmt.Errorf("detect hands: %w", err)
	}
	return r.Classify(hands)
}

// Classify runs extraction and classification on already detected hands.
func (r *Recognizer) Classify(hands []detector.HandLandmarks) (Recognition, error) {
	absent := Recognition{Gesture: r.classifier.Absent()}
	if len(hands) == 0 {
		return absent, nil
	}

	v, err := r.extractor.Extract(hands)
	if err != nil {
		return absent, err
	}
	g, err := r.classifier.Classify(v)
	if err != nil {
		return absent, err
	}

	hand := hands[0]
	return Recognition{Gesture: g, Hand: &hand}, nil
}
