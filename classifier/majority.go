package classifier

import "context"

// Majority always predicts the most frequent training label.
type Majority struct {
	label string
}

// NewMajority returns a Majority that predicts label until trained.
func NewMajority(label string) *Majority {
	return &Majority{label: label}
}

func (m *Majority) Name() string {
	return "majority"
}

func (m *Majority) Train(samples []Sample) error {
	if len(samples) == 0 {
		return ErrNotTrained
	}
	m.label = mostFrequent(samples)
	return nil
}

func (m *Majority) Predict(_ context.Context, _ string) (string, error) {
	if m.label == "" {
		return "", ErrNotTrained
	}
	return m.label, nil
}

// mostFrequent breaks ties alphabetically.
func mostFrequent(samples []Sample) string {
	counts := make(map[string]int)
	for _, s := range samples {
		counts[s.Act]++
	}
	best := ""
	for _, label := range Labels(samples) {
		if best == "" || counts[label] > counts[best] {
			best = label
		}
	}
	return best
}
