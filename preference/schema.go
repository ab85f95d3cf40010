package preference

// SlotSchema tells the extractor which values a slot can take and which words
// usually follow a mention of it.
type SlotSchema struct {
	Options    []string
	Boundaries []string
}

// Schema describes all four slots.
type Schema struct {
	Area        SlotSchema
	Cuisine     SlotSchema
	PriceRange  SlotSchema
	Requirement SlotSchema
}

// Default boundary words per slot.
var (
	AreaBoundaries        = []string{"part", "area", "side", "town"}
	CuisineBoundaries     = []string{"food", "restaurant", "cuisine", "kitchen"}
	PriceRangeBoundaries  = []string{"price", "priced", "restaurant", "range"}
	RequirementBoundaries = []string{"place", "restaurant", "spot"}
)

func (s Schema) slot(f Field) SlotSchema {
	switch f {
	case FieldArea:
		return s.Area
	case FieldCuisine:
		return s.Cuisine
	case FieldPriceRange:
		return s.PriceRange
	case FieldRequirement:
		return s.Requirement
	}
	return SlotSchema{}
}

// Extractor runs Extract for every slot of a Schema.
type Extractor struct {
	schema      Schema
	maxDistance int
}

// NewExtractor returns an Extractor. maxDistance 0 selects the dynamic
// threshold.
func NewExtractor(schema Schema, maxDistance int) *Extractor {
	return &Extractor{schema: schema, maxDistance: maxDistance}
}

// Schema returns the slot schema the extractor was built with.
func (e *Extractor) Schema() Schema { return e.schema }

// Extract returns the preferences mentioned in utterance. Slots with nothing
// extracted stay Unset.
func (e *Extractor) Extract(utterance string) Preferences {
	var prefs Preferences
	for _, f := range Fields {
		prefs = prefs.With(f, e.ExtractField(f, utterance))
	}
	return prefs
}

// ExtractField resolves a single slot.
func (e *Extractor) ExtractField(f Field, utterance string) Slot {
	s := e.schema.slot(f)
	v, ok := Extract(s.Options, utterance, s.Boundaries, e.maxDistance)
	if !ok {
		return Unset()
	}
	return Specific(v)
}
