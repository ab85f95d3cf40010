package preference

// Field names a preference slot.
type Field string

const (
	FieldArea        Field = "area"
	FieldCuisine     Field = "cuisine"
	FieldPriceRange  Field = "pricerange"
	FieldRequirement Field = "requirement"
)

// Fields lists the slots in the order the dialog asks for them.
var Fields = []Field{FieldArea, FieldCuisine, FieldPriceRange, FieldRequirement}

// Preferences holds what the user asked for so far.
type Preferences struct {
	Area        Slot
	Cuisine     Slot
	PriceRange  Slot
	Requirement Slot
}

// HasUnfilled reports whether area, cuisine or price range is still unset.
// The additional requirement is optional and does not count.
func (p Preferences) HasUnfilled() bool {
	return !p.Area.IsSet() || !p.Cuisine.IsSet() || !p.PriceRange.IsSet()
}

// Complete reports whether all four slots are set.
func (p Preferences) Complete() bool {
	return !p.HasUnfilled() && p.Requirement.IsSet()
}

// Get returns the slot for f.
func (p Preferences) Get(f Field) Slot {
	switch f {
	case FieldArea:
		return p.Area
	case FieldCuisine:
		return p.Cuisine
	case FieldPriceRange:
		return p.PriceRange
	case FieldRequirement:
		return p.Requirement
	}
	return Unset()
}

// With returns a copy of p with f set to s.
func (p Preferences) With(f Field, s Slot) Preferences {
	switch f {
	case FieldArea:
		p.Area = s
	case FieldCuisine:
		p.Cuisine = s
	case FieldPriceRange:
		p.PriceRange = s
	case FieldRequirement:
		p.Requirement = s
	}
	return p
}

// Merge overlays every set slot of other onto p. Unset slots in other never
// clear a value in p.
func (p Preferences) Merge(other Preferences) Preferences {
	for _, f := range Fields {
		if s := other.Get(f); s.IsSet() {
			p = p.With(f, s)
		}
	}
	return p
}

// Missing returns the unset fields in asking order.
func (p Preferences) Missing() []Field {
	var missing []Field
	for _, f := range Fields {
		if !p.Get(f).IsSet() {
			missing = append(missing, f)
		}
	}
	return missing
}
