package gesture

import (
	"errors"
	"testing"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/features"
	"gocv.io/x/gocv"
)

func TestRecognizer_Recognize(t *testing.T) {
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	tests := []struct {
		name       string
		classifier Classifier
		thumb      features.ThumbSide
		hands      []detector.HandLandmarks
		want       Gesture
	}{
		{"rock", RuleClassifier{}, features.ThumbOutwardLeft, []detector.HandLandmarks{detector.RockLandmarks()}, Rock},
		{"paper", RuleClassifier{}, features.ThumbOutwardLeft, []detector.HandLandmarks{detector.PaperLandmarks()}, Paper},
		{"no hand", RuleClassifier{}, features.ThumbOutwardLeft, nil, Unknown},
		{"gas", DriveClassifier{}, features.ThumbOutwardRight, []detector.HandLandmarks{detector.PaperLandmarks().Mirror()}, Gas},
		{"brake", DriveClassifier{}, features.ThumbOutwardRight, []detector.HandLandmarks{detector.RockLandmarks().Mirror()}, Brake},
		{"no hand drive", DriveClassifier{}, features.ThumbOutwardRight, nil, None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := detector.NewMockDetector()
			d.SetHands(tt.hands)

			rec, err := NewRecognizer(d, tt.classifier, tt.thumb).Recognize(&frame)
			if err != nil {
				t.Fatalf("Recognize() error = %v", err)
			}
			if rec.Gesture != tt.want {
				t.Errorf("Gesture = %s, want %s", rec.Gesture, tt.want)
			}
			if (rec.Hand != nil) != (len(tt.hands) > 0) {
				t.Errorf("Hand = %v with %d hands", rec.Hand, len(tt.hands))
			}
		})
	}
}

func TestRecognizer_DetectorError(t *testing.T) {
	frame := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC3)
	defer frame.Close()

	boom := errors.New("boom")
	d := detector.NewMockDetector()
	d.SetError(boom)

	rec, err := NewRecognizer(d, DriveClassifier{}, features.ThumbOutwardRight).Recognize(&frame)
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want wrapped boom", err)
	}
	if rec.Gesture != None || rec.Hand != nil {
		t.Errorf("Recognition = %+v, want absent", rec)
	}
}

func TestRecognizer_ModelDimension(t *testing.T) {
	m := &Model{K: 1, Dims: 3, Labels: []Gesture{Rock}, Samples: []Sample{{Label: Rock, Features: []float64{0, 0, 0}}}}
	c := &ModelClassifier{model: m}

	_, err := NewRecognizer(detector.NewMockDetector(), c, features.ThumbOutwardLeft).
		Classify([]detector.HandLandmarks{detector.RockLandmarks()})
	if !errors.Is(err, ErrDimension) {
		t.Errorf("error = %v, want ErrDimension", err)
	}
}
