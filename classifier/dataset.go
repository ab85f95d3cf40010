package classifier

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"sort"
	"strings"
)

// Sample is one labelled utterance.
type Sample struct {
	Act       string
	Utterance string
}

// LoadDataset reads lines of the form "act utterance words". Lines are
// lower-cased; blank lines are skipped.
func LoadDataset(r io.Reader) ([]Sample, error) {
	var samples []Sample
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if text == "" {
			continue
		}
		act, utterance, _ := strings.Cut(text, " ")
		samples = append(samples, Sample{Act: act, Utterance: strings.TrimSpace(utterance)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dataset at line %d: %w", line, err)
	}
	return samples, nil
}

// LoadDatasetFile reads a dataset from path.
func LoadDatasetFile(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()
	return LoadDataset(f)
}

// Labels returns the distinct labels of samples, sorted.
func Labels(samples []Sample) []string {
	seen := make(map[string]bool)
	var labels []string
	for _, s := range samples {
		if !seen[s.Act] {
			seen[s.Act] = true
			labels = append(labels, s.Act)
		}
	}
	sort.Strings(labels)
	return labels
}

// Split divides samples into train and test sets, keeping the label
// proportions of the input in both. The same seed gives the same split.
func Split(samples []Sample, testFraction float64, seed int64) (train, test []Sample) {
	groups := make(map[string][]Sample)
	for _, s := range samples {
		groups[s.Act] = append(groups[s.Act], s)
	}

	rng := rand.New(rand.NewSource(seed))
	for _, label := range Labels(samples) {
		group := groups[label]
		rng.Shuffle(len(group), func(i, j int) { group[i], group[j] = group[j], group[i] })

		n := int(math.Round(float64(len(group)) * testFraction))
		test = append(test, group[:n]...)
		train = append(train, group[n:]...)
	}
	return train, test
}
