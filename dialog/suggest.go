package dialog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/room4-2/tablefinder/preference"
	"github.com/room4-2/tablefinder/restaurant"
)

func (t *turn) suggestion(act Act) error {
	switch act {
	case ActAck, ActAffirm:
		if t.c.Chosen == nil {
			return t.suggest()
		}
		t.enter(GiveInformation)
		t.say(MsgMoreInfo, t.c.Chosen.Bindings())
		return nil
	case ActRequest:
		if t.c.Chosen == nil {
			return t.suggest()
		}
		t.enter(GiveInformation)
		t.answer()
		return nil
	case ActInform, ActReqAlts:
		t.merge()
		return t.refilter()
	default:
		return t.suggest()
	}
}

// refilter recomputes the candidates and suggests one of them. Restaurants
// already offered are skipped until every match has been offered once.
func (t *turn) refilter() error {
	candidates, err := restaurant.Filter(t.m.catalogue, t.c.Preferences, t.m.rules)
	if err != nil && !errors.Is(err, restaurant.ErrUnknownRequirement) {
		return fmt.Errorf("failed to filter restaurants: %w", err)
	}

	fresh := make([]restaurant.Restaurant, 0, len(candidates))
	for _, r := range candidates {
		if !slices.Contains(t.c.Suggested, r.Name) {
			fresh = append(fresh, r)
		}
	}
	if len(fresh) == 0 {
		fresh = candidates
		t.c.Suggested = nil
	}
	t.c.Candidates = fresh
	return t.suggest()
}

// suggest takes the last candidate. With no candidates left it repeats the
// previous suggestion, if any.
func (t *turn) suggest() error {
	n := len(t.c.Candidates)
	if n == 0 {
		if t.c.Previous != nil {
			t.c.Chosen = t.c.Previous
			t.say(MsgRepeatPrevious, t.c.Chosen.Bindings())
			return nil
		}
		t.say(MsgNoMatch, preferenceBindings(t.c.Preferences))
		return nil
	}

	next := t.c.Candidates[n-1]
	t.c.Candidates = t.c.Candidates[:n-1]
	t.c.Previous = t.c.Chosen
	t.c.Chosen = &next
	t.c.Suggested = append(slices.Clip(t.c.Suggested), next.Name)

	if t.c.Previous != nil && t.c.Previous.Name == next.Name {
		t.say(MsgNoBetterAlternative, next.Bindings())
		return nil
	}
	t.say(MsgSuggestion, next.Bindings())
	return t.explain()
}

// explain justifies the suggestion when the user asked for a requirement.
func (t *turn) explain() error {
	req := t.c.Preferences.Requirement
	if t.c.State != MakeSuggestion || !req.IsSpecific() {
		return nil
	}
	rule, ok := t.m.rules.Get(req.Value())
	if !ok {
		return nil
	}
	clause, err := restaurant.Explain(rule)
	if err != nil {
		return err
	}
	if clause == "" {
		return nil
	}
	t.say(MsgExplanation, map[string]string{
		"name":        t.c.Chosen.Name,
		"requirement": rule.Name,
		"reasons":     clause,
	})
	return nil
}

func preferenceBindings(p preference.Preferences) map[string]string {
	return map[string]string{
		"area":        p.Area.String(),
		"food":        p.Cuisine.String(),
		"pricerange":  p.PriceRange.String(),
		"requirement": p.Requirement.String(),
	}
}
