package classifier

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
)

//go:embed keywords.json
var defaultKeywords []byte

// KeywordRules maps a label to the keywords that signal it. A keyword
// padded with spaces only matches whole words.
type KeywordRules map[string][]string

// DefaultKeywordRules returns the built-in rules.
func DefaultKeywordRules() (KeywordRules, error) {
	return ParseKeywordRules(defaultKeywords)
}

// ParseKeywordRules decodes rules from JSON.
func ParseKeywordRules(data []byte) (KeywordRules, error) {
	var rules KeywordRules
	if err := sonic.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to decode keyword rules: %w", err)
	}
	return rules, nil
}

type keyword struct {
	label string
	word  string
}

// Keyword labels an utterance by the longest keyword it contains, or by
// the default label when none is found.
type Keyword struct {
	keywords     []keyword
	defaultLabel string
}

// NewKeyword builds a Keyword classifier. Equal-length matches go to the
// alphabetically first label.
func NewKeyword(rules KeywordRules, defaultLabel string) *Keyword {
	labels := make([]string, 0, len(rules))
	for label := range rules {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var keywords []keyword
	for _, label := range labels {
		for _, w := range rules[label] {
			if strings.TrimSpace(w) == "" {
				continue
			}
			keywords = append(keywords, keyword{label: label, word: strings.ToLower(w)})
		}
	}
	return &Keyword{keywords: keywords, defaultLabel: defaultLabel}
}

func (k *Keyword) Name() string {
	return "keyword"
}

// Train sets the default label to the most frequent one in samples.
func (k *Keyword) Train(samples []Sample) error {
	if len(samples) == 0 {
		return ErrNotTrained
	}
	k.defaultLabel = mostFrequent(samples)
	return nil
}

func (k *Keyword) Predict(_ context.Context, utterance string) (string, error) {
	padded := " " + strings.Join(strings.Fields(strings.ToLower(utterance)), " ") + " "

	best := keyword{label: k.defaultLabel}
	for _, kw := range k.keywords {
		if len(kw.word) > len(best.word) && strings.Contains(padded, kw.word) {
			best = kw
		}
	}
	if best.label == "" {
		return "", ErrNotTrained
	}
	return best.label, nil
}
