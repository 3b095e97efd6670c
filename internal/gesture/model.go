package gesture

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
)

// ErrModel is returned when a model artifact is missing, corrupt or incompatible.
var ErrModel = errors.New("invalid gesture model")

// Model format identifiers.
const (
	ModelVersion = 1
	ModelKindKNN = "knn"
	DefaultK     = 5
)

// Sample is one labelled feature row.
type Sample struct {
	Label    Gesture   `json:"label"`
	Features []float64 `json:"features"`
}

// Model is a k-nearest-neighbour classifier over stored training rows.
// It is immutable once loaded, so Predict is safe for concurrent use.
type Model struct {
	Version   int       `json:"version"`
	Kind      string    `json:"kind"`
	Dims      int       `json:"dims"`
	K         int       `json:"k"`
	Labels    []Gesture `json:"labels"`
	Samples   []Sample  `json:"samples"`
	TrainedAt time.Time `json:"trained_at"`
}

// LoadModel reads and validates a model file.
func LoadModel(path string) (*Model, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no model path configured", ErrModel)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModel, err)
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrModel, path, err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Save writes the model as JSON.
func (m *Model) Save(path string) error {
	if err := m.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}

// Validate checks the model is usable for prediction.
func (m *Model) Validate() error {
	if m.Version != ModelVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrModel, m.Version)
	}
	if m.Kind != ModelKindKNN {
		return fmt.Errorf("%w: unsupported kind %q", ErrModel, m.Kind)
	}
	if m.Dims <= 0 {
		return fmt.Errorf("%w: dims must be positive", ErrModel)
	}
	if m.K <= 0 {
		return fmt.Errorf("%w: k must be positive", ErrModel)
	}
	if len(m.Samples) == 0 {
		return fmt.Errorf("%w: no samples", ErrModel)
	}
	for i, s := range m.Samples {
		if len(s.Features) != m.Dims {
			return fmt.Errorf("%w: sample %d has %d features, expected %d", ErrModel, i, len(s.Features), m.Dims)
		}
		if !s.Label.IsMove() {
			return fmt.Errorf("%w: sample %d has label %q", ErrModel, i, s.Label)
		}
	}
	return nil
}

type neighbour struct {
	label    Gesture
	distance float64
}

// Predict returns the majority label among the K nearest samples.
// Vote ties go to the label with the smaller summed distance, then to the
// label that sorts first, so a fixed model always answers the same way.
func (m *Model) Predict(v []float64) Gesture {
	neighbours := make([]neighbour, len(m.Samples))
	for i, s := range m.Samples {
		neighbours[i] = neighbour{label: s.Label, distance: floats.Distance(v, s.Features, 2)}
	}
	sort.SliceStable(neighbours, func(i, j int) bool {
		return neighbours[i].distance < neighbours[j].distance
	})

	k := m.K
	if k > len(neighbours) {
		k = len(neighbours)
	}

	votes := make(map[Gesture]int)
	sums := make(map[Gesture]float64)
	for _, n := range neighbours[:k] {
		votes[n.label]++
		sums[n.label] += n.distance
	}

	best := Unknown
	for label, count := range votes {
		switch {
		case best == Unknown:
			best = label
		case count > votes[best]:
			best = label
		case count == votes[best] && sums[label] < sums[best]:
			best = label
		case count == votes[best] && sums[label] == sums[best] && label < best:
			best = label
		}
	}
	return best
}
