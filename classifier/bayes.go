package classifier

import (
	"context"
	"math"
	"strings"
)

// NaiveBayes is a multinomial naive Bayes model over lower-cased words with
// add-one smoothing.
type NaiveBayes struct {
	labels     []string
	logPrior   map[string]float64
	wordCounts map[string]map[string]int
	totals     map[string]int
	vocabulary map[string]struct{}
}

// NewNaiveBayes returns an untrained model.
func NewNaiveBayes() *NaiveBayes {
	return &NaiveBayes{}
}

func (nb *NaiveBayes) Name() string {
	return "naive bayes"
}

func (nb *NaiveBayes) Train(samples []Sample) error {
	if len(samples) == 0 {
		return ErrNotTrained
	}

	counts := make(map[string]int)
	nb.wordCounts = make(map[string]map[string]int)
	nb.totals = make(map[string]int)
	nb.vocabulary = make(map[string]struct{})

	for _, s := range samples {
		counts[s.Act]++
		words := nb.wordCounts[s.Act]
		if words == nil {
			words = make(map[string]int)
			nb.wordCounts[s.Act] = words
		}
		for _, w := range strings.Fields(s.Utterance) {
			words[w]++
			nb.totals[s.Act]++
			nb.vocabulary[w] = struct{}{}
		}
	}

	nb.labels = Labels(samples)
	nb.logPrior = make(map[string]float64, len(nb.labels))
	for _, label := range nb.labels {
		nb.logPrior[label] = math.Log(float64(counts[label]) / float64(len(samples)))
	}
	return nil
}

func (nb *NaiveBayes) Predict(_ context.Context, utterance string) (string, error) {
	if len(nb.labels) == 0 {
		return "", ErrNotTrained
	}

	words := strings.Fields(strings.ToLower(utterance))
	vocab := float64(len(nb.vocabulary))

	best, bestScore := "", math.Inf(-1)
	for _, label := range nb.labels {
		score := nb.logPrior[label]
		denominator := float64(nb.totals[label]) + vocab
		for _, w := range words {
			if _, known := nb.vocabulary[w]; !known {
				continue
			}
			score += math.Log(float64(nb.wordCounts[label][w]+1) / denominator)
		}
		if score > bestScore {
			best, bestScore = label, score
		}
	}
	return best, nil
}
