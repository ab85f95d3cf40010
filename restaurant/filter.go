package restaurant

import (
	"fmt"

	"github.com/room4-2/tablefinder/preference"
)

// Filter returns the restaurants matching prefs, in catalogue order.
//
// Area, cuisine and price range must match exactly unless unset or "any".
// A specific requirement keeps only restaurants having every antecedent of
// its rule. The catalogue is never modified.
func Filter(catalogue []Restaurant, prefs preference.Preferences, rules Ruleset) ([]Restaurant, error) {
	var antecedents []string
	if prefs.Requirement.IsSpecific() {
		rule, ok := rules.Get(prefs.Requirement.Value())
		if !ok {
			return nil, fmt.Errorf("%q: %w", prefs.Requirement.Value(), ErrUnknownRequirement)
		}
		antecedents = rule.Antecedents
	}

	matches := make([]Restaurant, 0, len(catalogue))
	for _, r := range catalogue {
		if !prefs.Area.Matches(r.Area) || !prefs.Cuisine.Matches(r.Cuisine) || !prefs.PriceRange.Matches(r.PriceRange) {
			continue
		}
		if antecedents != nil && !r.HasAll(antecedents) {
			continue
		}
		matches = append(matches, r)
	}
	return matches, nil
}
