package gesture

import (
	"errors"
	"fmt"

	"github.com/ayusman/mudra/internal/features"
)

// ErrDimension is returned when a feature vector has the wrong length for a classifier.
var ErrDimension = errors.New("unexpected feature vector length")

// Classifier maps a feature vector to a gesture.
type Classifier interface {
	// Classify returns the gesture for v. Vectors of the wrong length are
	// rejected with ErrDimension.
	Classify(v features.Vector) (Gesture, error)

	// Mode is the feature representation this classifier consumes.
	Mode() features.Mode

	// Absent is the label reported when no hand is present.
	Absent() Gesture
}

func checkLen(v features.Vector, want int) error {
	if len(v) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrDimension, len(v), want)
	}
	return nil
}

// RuleClassifier recognizes rock, paper and scissors from exact finger patterns.
type RuleClassifier struct{}

var rulePatterns = []struct {
	pattern features.Vector
	gesture Gesture
}{
	{features.FromFlags(0, 0, 0, 0, 0), Rock},
	{features.FromFlags(1, 1, 1, 1, 1), Paper},
	{features.FromFlags(0, 1, 1, 0, 0), Scissors},
}

// Classify implements Classifier. Any pattern outside the table is Unknown.
func (RuleClassifier) Classify(v features.Vector) (Gesture, error) {
	if err := checkLen(v, features.FingerCount); err != nil {
		return Unknown, err
	}
	for _, p := range rulePatterns {
		if v.Equal(p.pattern) {
			return p.gesture, nil
		}
	}
	return Unknown, nil
}

// Mode implements Classifier.
func (RuleClassifier) Mode() features.Mode { return features.ModeFingers }

// Absent implements Classifier.
func (RuleClassifier) Absent() Gesture { return Unknown }

// DriveClassifier maps an open hand to Gas and a fist to Brake.
type DriveClassifier struct{}

// Classify implements Classifier.
func (DriveClassifier) Classify(v features.Vector) (Gesture, error) {
	if err := checkLen(v, features.FingerCount); err != nil {
		return None, err
	}
	switch v.OpenCount() {
	case features.FingerCount:
		return Gas, nil
	case 0:
		return Brake, nil
	default:
		return None, nil
	}
}

// Mode implements Classifier.
func (DriveClassifier) Mode() features.Mode { return features.ModeFingers }

// Absent implements Classifier.
func (DriveClassifier) Absent() Gesture { return None }

// ModelClassifier predicts moves with a trained Model over raw landmark coordinates.
type ModelClassifier struct {
	model *Model
}

// NewModelClassifier wraps a loaded model.
func NewModelClassifier(m *Model) (*ModelClassifier, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil model", ErrModel)
	}
	if m.Dims != features.CoordCount {
		return nil, fmt.Errorf("%w: model expects %d features, landmarks provide %d", ErrModel, m.Dims, features.CoordCount)
	}
	return &ModelClassifier{model: m}, nil
}

// Classify implements Classifier.
func (c *ModelClassifier) Classify(v features.Vector) (Gesture, error) {
	if err := checkLen(v, c.model.Dims); err != nil {
		return Unknown, err
	}
	return c.model.Predict(v), nil
}

// Mode implements Classifier.
func (c *ModelClassifier) Mode() features.Mode { return features.ModeLandmarks }

// Absent implements Classifier.
func (c *ModelClassifier) Absent() Gesture { return Unknown }

// Model returns the wrapped model.
func (c *ModelClassifier) Model() *Model { return c.model }

// Kind names a rock-paper-scissors classifier strategy.
type Kind string

const (
	KindRules Kind = "rules"
	KindModel Kind = "model"
)

// NewClassifier builds the rock-paper-scissors classifier selected by kind.
// The model kind loads modelPath once and fails if it is missing or incompatible.
func NewClassifier(kind Kind, modelPath string) (Classifier, error) {
	switch kind {
	case KindRules, "":
		return RuleClassifier{}, nil
	case KindModel:
		m, err := LoadModel(modelPath)
		if err != nil {
			return nil, err
		}
		return NewModelClassifier(m)
	default:
		return nil, fmt.Errorf("unknown classifier %q", kind)
	}
}
