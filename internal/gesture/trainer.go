package gesture

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Split fractions used by the training command.
const (
	TrainFraction = 0.70
	DefaultSeed   = 42
)

// Trainer processes labelled samples into a Model.
type Trainer struct {
	K    int
	Seed uint64
	now  func() time.Time
}

// NewTrainer creates a Trainer. Non-positive k falls back to DefaultK.
func NewTrainer(k int, seed uint64) *Trainer {
	if k <= 0 {
		k = DefaultK
	}
	return &Trainer{K: k, Seed: seed, now: time.Now}
}

// Split holds the three partitions of a dataset.
type Split struct {
	Train      []Sample
	Validation []Sample
	Test       []Sample
}

// Split partitions samples 70/15/15 per label so each partition keeps the
// label proportions of the input. The same seed always yields the same split.
func (t *Trainer) Split(samples []Sample) (Split, error) {
	if len(samples) == 0 {
		return Split{}, fmt.Errorf("no samples provided")
	}

	byLabel := make(map[Gesture][]Sample)
	for _, s := range samples {
		byLabel[s.Label] = append(byLabel[s.Label], s)
	}

	labels := sortedLabels(byLabel)
	rng := rand.New(rand.NewPCG(t.Seed, t.Seed))

	var out Split
	for _, label := range labels {
		group := append([]Sample(nil), byLabel[label]...)
		rng.Shuffle(len(group), func(i, j int) { group[i], group[j] = group[j], group[i] })

		nTrain := int(math.Round(float64(len(group)) * TrainFraction))
		if nTrain == 0 {
			nTrain = 1
		}
		nVal := (len(group) - nTrain) / 2

		out.Train = append(out.Train, group[:nTrain]...)
		out.Validation = append(out.Validation, group[nTrain:nTrain+nVal]...)
		out.Test = append(out.Test, group[nTrain+nVal:]...)
	}

	return out, nil
}

// Fit builds a kNN model from the given rows.
func (t *Trainer) Fit(samples []Sample) (*Model, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples provided")
	}

	dims := len(samples[0].Features)
	byLabel := make(map[Gesture][]Sample)
	rows := make([]Sample, len(samples))

	for i, s := range samples {
		if len(s.Features) != dims {
			return nil, fmt.Errorf("sample %d has %d features, expected %d", i, len(s.Features), dims)
		}
		if !s.Label.IsMove() {
			return nil, fmt.Errorf("sample %d has unsupported label %q", i, s.Label)
		}
		rows[i] = Sample{Label: s.Label, Features: append([]float64(nil), s.Features...)}
		byLabel[s.Label] = append(byLabel[s.Label], s)
	}

	k := t.K
	if k > len(rows) {
		k = len(rows)
	}

	m := &Model{
		Version:   ModelVersion,
		Kind:      ModelKindKNN,
		Dims:      dims,
		K:         k,
		Labels:    sortedLabels(byLabel),
		Samples:   rows,
		TrainedAt: t.now().UTC(),
	}
	return m, m.Validate()
}

// ClassReport holds per-label scores.
type ClassReport struct {
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report summarizes a model's predictions over a labelled set.
type Report struct {
	Accuracy float64
	Total    int
	Classes  map[Gesture]ClassReport
}

// Evaluate scores m against samples.
func Evaluate(m *Model, samples []Sample) Report {
	report := Report{Total: len(samples), Classes: make(map[Gesture]ClassReport)}
	if len(samples) == 0 {
		return report
	}

	correct := make([]float64, len(samples))
	truePos := make(map[Gesture]int)
	predicted := make(map[Gesture]int)
	support := make(map[Gesture]int)

	for i, s := range samples {
		got := m.Predict(s.Features)
		support[s.Label]++
		predicted[got]++
		if got == s.Label {
			correct[i] = 1
			truePos[got]++
		}
	}

	report.Accuracy = stat.Mean(correct, nil)

	for label, n := range support {
		var c ClassReport
		c.Support = n
		c.Recall = float64(truePos[label]) / float64(n)
		if predicted[label] > 0 {
			c.Precision = float64(truePos[label]) / float64(predicted[label])
		}
		if c.Precision+c.Recall > 0 {
			c.F1 = 2 * c.Precision * c.Recall / (c.Precision + c.Recall)
		}
		report.Classes[label] = c
	}

	return report
}

// String renders the report as a small table.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-10s %9s %9s %9s %8s\n", "", "precision", "recall", "f1", "support")
	labels := make([]Gesture, 0, len(r.Classes))
	for label := range r.Classes {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	for _, label := range labels {
		c := r.Classes[label]
		fmt.Fprintf(&b, "%-10s %9.2f %9.2f %9.2f %8d\n", label, c.Precision, c.Recall, c.F1, c.Support)
	}
	fmt.Fprintf(&b, "%-10s %29.2f %8d\n", "accuracy", r.Accuracy, r.Total)
	return b.String()
}

func sortedLabels(byLabel map[Gesture][]Sample) []Gesture {
	labels := make([]Gesture, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return labels
}
