package preference

// AnyValue is the word users say when they have no preference for a slot.
const AnyValue = "any"

type slotKind uint8

const (
	kindUnset slotKind = iota
	kindAny
	kindSpecific
)

// Slot is one preference field. It distinguishes "not answered yet" (Unset)
// from "doesn't care" (Any) and a concrete value.
type Slot struct {
	kind  slotKind
	value string
}

// Unset returns an empty slot.
func Unset() Slot { return Slot{} }

// Any returns a wildcard slot.
func Any() Slot { return Slot{kind: kindAny} }

// Specific returns a slot holding v. An empty v yields Unset and the literal
// "any" yields Any.
func Specific(v string) Slot {
	switch v {
	case "":
		return Unset()
	case AnyValue:
		return Any()
	}
	return Slot{kind: kindSpecific, value: v}
}

// IsSet reports whether the slot holds Any or a specific value.
func (s Slot) IsSet() bool { return s.kind != kindUnset }

// IsAny reports whether the user explicitly has no preference.
func (s Slot) IsAny() bool { return s.kind == kindAny }

// IsSpecific reports whether the slot holds a concrete value.
func (s Slot) IsSpecific() bool { return s.kind == kindSpecific }

// Value returns the concrete value, or "" for Unset and Any.
func (s Slot) Value() string { return s.value }

// Matches reports whether field satisfies the slot. Unset and Any match
// everything; a specific value requires exact equality.
func (s Slot) Matches(field string) bool {
	if s.kind != kindSpecific {
		return true
	}
	return s.value == field
}

func (s Slot) String() string {
	switch s.kind {
	case kindAny:
		return AnyValue
	case kindSpecific:
		return s.value
	}
	return ""
}
