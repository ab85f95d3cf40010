// Package restaurant holds the restaurant catalogue, the implication rules
// behind qualitative requirements, and the filter that matches both against
// user preferences.
package restaurant

// Restaurant is one catalogue row. Empty fields are unspecified.
type Restaurant struct {
	Name         string `json:"name"`
	Area         string `json:"area"`
	Cuisine      string `json:"food"`
	PriceRange   string `json:"pricerange"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Postcode     string `json:"postcode"`
	Quality      string `json:"quality"`
	Crowdedness  string `json:"crowdedness"`
	LengthOfStay string `json:"length_of_stay"`
}

// Properties returns the values implication rules can refer to.
func (r Restaurant) Properties() []string {
	props := make([]string, 0, 5)
	for _, p := range []string{r.PriceRange, r.Cuisine, r.Quality, r.Crowdedness, r.LengthOfStay} {
		if p != "" {
			props = append(props, p)
		}
	}
	return props
}

// HasAll reports whether every antecedent is among the restaurant's properties.
func (r Restaurant) HasAll(antecedents []string) bool {
	props := r.Properties()
	for _, a := range antecedents {
		found := false
		for _, p := range props {
			if p == a {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Bindings returns the placeholder values used by response templates.
func (r Restaurant) Bindings() map[string]string {
	return map[string]string{
		"name":       r.Name,
		"area":       r.Area,
		"food":       r.Cuisine,
		"pricerange": r.PriceRange,
		"address":    r.Address,
		"phone":      r.Phone,
		"postcode":   r.Postcode,
	}
}
