package restaurant

import "github.com/room4-2/tablefinder/preference"

// Schema derives the slot options from the catalogue and the rule names,
// paired with the default boundary words.
func Schema(catalogue []Restaurant, rules Ruleset) preference.Schema {
	return preference.Schema{
		Area: preference.SlotSchema{
			Options:    Distinct(catalogue, func(r Restaurant) string { return r.Area }),
			Boundaries: preference.AreaBoundaries,
		},
		Cuisine: preference.SlotSchema{
			Options:    Distinct(catalogue, func(r Restaurant) string { return r.Cuisine }),
			Boundaries: preference.CuisineBoundaries,
		},
		PriceRange: preference.SlotSchema{
			Options:    Distinct(catalogue, func(r Restaurant) string { return r.PriceRange }),
			Boundaries: preference.PriceRangeBoundaries,
		},
		Requirement: preference.SlotSchema{
			Options:    rules.Names(),
			Boundaries: preference.RequirementBoundaries,
		},
	}
}
