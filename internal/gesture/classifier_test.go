package gesture

import (
	"errors"
	"testing"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/features"
)

// allFingerVectors enumerates every 5-bit finger combination.
func allFingerVectors() []features.Vector {
	vectors := make([]features.Vector, 0, 32)
	for bits := 0; bits < 32; bits++ {
		flags := make([]int, features.FingerCount)
		for i := range flags {
			flags[i] = (bits >> (features.FingerCount - 1 - i)) & 1
		}
		vectors = append(vectors, features.FromFlags(flags...))
	}
	return vectors
}

func TestRuleClassifier_Examples(t *testing.T) {
	tests := []struct {
		flags []int
		want  Gesture
	}{
		{[]int{0, 0, 0, 0, 0}, Rock},
		{[]int{1, 1, 1, 1, 1}, Paper},
		{[]int{0, 1, 1, 0, 0}, Scissors},
		{[]int{1, 0, 1, 0, 1}, Unknown},
		{[]int{1, 1, 1, 0, 0}, Unknown},
		{[]int{0, 1, 0, 0, 0}, Unknown},
	}

	c := RuleClassifier{}
	for _, tt := range tests {
		got, err := c.Classify(features.FromFlags(tt.flags...))
		if err != nil {
			t.Fatalf("Classify(%v) error = %v", tt.flags, err)
		}
		if got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.flags, got, tt.want)
		}
	}
}

func TestRuleClassifier_TableIsTotal(t *testing.T) {
	c := RuleClassifier{}
	named := 0

	for _, v := range allFingerVectors() {
		got, err := c.Classify(v)
		if err != nil {
			t.Fatalf("Classify(%v) error = %v", v, err)
		}
		switch got {
		case Rock, Paper, Scissors:
			named++
		case Unknown:
		default:
			t.Errorf("Classify(%v) = %s, outside the rule labels", v, got)
		}

		again, _ := c.Classify(v)
		if again != got {
			t.Errorf("Classify(%v) not idempotent: %s then %s", v, got, again)
		}
	}

	if named != 3 {
		t.Errorf("expected exactly 3 named patterns, got %d", named)
	}
}

func TestDriveClassifier(t *testing.T) {
	c := DriveClassifier{}

	for _, v := range allFingerVectors() {
		got, err := c.Classify(v)
		if err != nil {
			t.Fatalf("Classify(%v) error = %v", v, err)
		}
		want := None
		switch v.OpenCount() {
		case 5:
			want = Gas
		case 0:
			want = Brake
		}
		if got != want {
			t.Errorf("Classify(%v) = %s, want %s", v, got, want)
		}
	}

	if c.Absent() != None {
		t.Errorf("Absent() = %s, want %s", c.Absent(), None)
	}
}

func TestClassifiers_RejectWrongLength(t *testing.T) {
	model := &Model{
		Version: ModelVersion, Kind: ModelKindKNN, Dims: features.CoordCount, K: 1,
		Samples: []Sample{{Label: Rock, Features: make([]float64, features.CoordCount)}},
	}
	mc, err := NewModelClassifier(model)
	if err != nil {
		t.Fatalf("NewModelClassifier() error = %v", err)
	}

	classifiers := map[string]Classifier{
		"rules": RuleClassifier{},
		"drive": DriveClassifier{},
		"model": mc,
	}
	bad := []features.Vector{nil, features.FromFlags(1, 1, 1), make(features.Vector, 62), make(features.Vector, 64)}

	for name, c := range classifiers {
		for _, v := range bad {
			if _, err := c.Classify(v); !errors.Is(err, ErrDimension) {
				t.Errorf("%s: Classify(len %d) error = %v, want ErrDimension", name, len(v), err)
			}
		}
	}
}

func TestPipeline_LandmarksToGesture(t *testing.T) {
	e := features.Extractor{Mode: features.ModeFingers, Thumb: features.ThumbOutwardLeft}
	c := RuleClassifier{}

	cases := map[Gesture]detector.HandLandmarks{
		Rock:     detector.RockLandmarks(),
		Paper:    detector.PaperLandmarks(),
		Scissors: detector.ScissorsLandmarks(),
	}
	for want, hand := range cases {
		v, err := e.Extract([]detector.HandLandmarks{hand})
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		got, err := c.Classify(v)
		if err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
		if got != want {
			t.Errorf("got %s, want %s", got, want)
		}
	}
}

func TestNewClassifier(t *testing.T) {
	t.Run("rules by default", func(t *testing.T) {
		c, err := NewClassifier("", "")
		if err != nil {
			t.Fatalf("NewClassifier() error = %v", err)
		}
		if c.Mode() != features.ModeFingers {
			t.Errorf("expected finger mode, got %s", c.Mode())
		}
	})

	t.Run("model fails fast when missing", func(t *testing.T) {
		_, err := NewClassifier(KindModel, "/nonexistent/model.json")
		if !errors.Is(err, ErrModel) {
			t.Errorf("expected ErrModel, got %v", err)
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		if _, err := NewClassifier("forest", ""); err == nil {
			t.Error("expected error for unknown kind")
		}
	})
}

func TestParseMove(t *testing.T) {
	for _, s := range []string{"rock", "Rock", " PAPER ", "scissors"} {
		if _, err := ParseMove(s); err != nil {
			t.Errorf("ParseMove(%q) error = %v", s, err)
		}
	}
	if _, err := ParseMove("lizard"); err == nil {
		t.Error("expected error for lizard")
	}
}
