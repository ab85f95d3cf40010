package preference

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Extract resolves utterance against options.
//
// An option occurring verbatim in the utterance wins immediately. Otherwise
// the word right before the first boundary word (e.g. "north" in "the north
// part") is compared to every option by edit distance. The closest option is
// accepted when its distance is below maxDistance, or below half the word's
// length when maxDistance is 0. A captured "any" is returned as is.
//
// The second result is false when nothing could be extracted.
func Extract(options []string, utterance string, boundaries []string, maxDistance int) (string, bool) {
	for _, option := range options {
		if option == "" || option == AnyValue {
			continue
		}
		if strings.Contains(utterance, option) {
			return option, true
		}
	}

	token, found := wordBefore(utterance, boundaries)
	if !found {
		return "", false
	}
	if token == AnyValue {
		return AnyValue, true
	}

	best := ""
	smallest := math.MaxInt
	for _, option := range options {
		if d := levenshtein.ComputeDistance(token, option); d < smallest {
			smallest = d
			best = option
		}
	}
	if best == "" {
		return "", false
	}

	threshold := float64(maxDistance)
	if maxDistance == 0 {
		threshold = float64(utf8.RuneCountInString(token)) / 2
	}
	if float64(smallest) < threshold {
		return best, true
	}
	return "", false
}

// wordBefore returns the word preceding the first boundary word.
func wordBefore(utterance string, boundaries []string) (string, bool) {
	prev := ""
	for _, word := range strings.Fields(utterance) {
		for _, b := range boundaries {
			if word == b {
				return prev, true
			}
		}
		prev = word
	}
	return "", false
}
