package classifier

import (
	"context"
	"fmt"
)

// Score holds the precision, recall and F1 of one label.
type Score struct {
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report summarises a model's predictions on a test set. Precision, Recall
// and F1 are micro-averaged; for single-label data they equal Accuracy.
type Report struct {
	Model     string
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
	MacroF1   float64
	PerLabel  map[string]Score
	Labels    []string
}

// Evaluate runs m over samples and compares raw labels.
func Evaluate(ctx context.Context, m Model, samples []Sample) (Report, error) {
	report := Report{Model: m.Name(), PerLabel: make(map[string]Score)}
	if len(samples) == 0 {
		return report, nil
	}

	truePos := make(map[string]int)
	predicted := make(map[string]int)
	actual := make(map[string]int)
	labelSet := make([]Sample, 0, len(samples)*2)

	correct := 0
	for _, s := range samples {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		label, err := m.Predict(ctx, s.Utterance)
		if err != nil {
			return report, fmt.Errorf("%s failed on %q: %w", m.Name(), s.Utterance, err)
		}
		actual[s.Act]++
		predicted[label]++
		if label == s.Act {
			correct++
			truePos[label]++
		}
		labelSet = append(labelSet, s, Sample{Act: label})
	}

	report.Accuracy = float64(correct) / float64(len(samples))
	report.Precision = report.Accuracy
	report.Recall = report.Accuracy
	report.F1 = report.Accuracy

	report.Labels = Labels(labelSet)
	var macro float64
	for _, label := range report.Labels {
		score := Score{Support: actual[label]}
		if predicted[label] > 0 {
			score.Precision = float64(truePos[label]) / float64(predicted[label])
		}
		if actual[label] > 0 {
			score.Recall = float64(truePos[label]) / float64(actual[label])
		}
		if score.Precision+score.Recall > 0 {
			score.F1 = 2 * score.Precision * score.Recall / (score.Precision + score.Recall)
		}
		report.PerLabel[label] = score
		macro += score.F1
	}
	report.MacroF1 = macro / float64(len(report.Labels))
	return report, nil
}
