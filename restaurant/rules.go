package restaurant

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// MaxAntecedents is the largest rule the explanation templates can describe.
const MaxAntecedents = 3

var (
	// ErrUnsupportedRule marks a rule with more antecedents than the
	// explanation templates support. It is a data authoring bug.
	ErrUnsupportedRule = errors.New("implication rule has too many antecedents")
	// ErrUnknownRequirement is returned when no rule exists for a requirement.
	ErrUnknownRequirement = errors.New("unknown requirement")
)

// Rule maps a qualitative requirement to the properties that imply it.
type Rule struct {
	Name        string   `yaml:"name"`
	Antecedents []string `yaml:"antecedents"`
	Reasons     []string `yaml:"reasons"`
}

// Ruleset is an immutable collection of rules keyed by requirement name.
type Ruleset struct {
	rules  []Rule
	byName map[string]Rule
}

// NewRuleset validates rules and indexes them by name.
func NewRuleset(rules ...Rule) (Ruleset, error) {
	rs := Ruleset{byName: make(map[string]Rule, len(rules))}
	for _, r := range rules {
		if len(r.Antecedents) > MaxAntecedents {
			return Ruleset{}, fmt.Errorf("rule %q has %d antecedents: %w", r.Name, len(r.Antecedents), ErrUnsupportedRule)
		}
		if _, dup := rs.byName[r.Name]; dup {
			return Ruleset{}, fmt.Errorf("duplicate rule %q", r.Name)
		}
		rs.rules = append(rs.rules, r)
		rs.byName[r.Name] = r
	}
	return rs, nil
}

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules decodes a YAML rules document.
func LoadRules(r io.Reader) (Ruleset, error) {
	var doc rulesFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return Ruleset{}, fmt.Errorf("failed to decode rules: %w", err)
	}
	for i := range doc.Rules {
		doc.Rules[i].Name = strings.ToLower(strings.TrimSpace(doc.Rules[i].Name))
	}
	return NewRuleset(doc.Rules...)
}

// LoadRulesFile reads rules from path, or the built-in rules when path is empty.
func LoadRulesFile(path string) (Ruleset, error) {
	if path == "" {
		return DefaultRules()
	}
	f, err := os.Open(path)
	if err != nil {
		return Ruleset{}, fmt.Errorf("failed to open rules: %w", err)
	}
	defer f.Close()
	return LoadRules(f)
}

// DefaultRules returns the built-in ruleset.
func DefaultRules() (Ruleset, error) {
	return LoadRules(strings.NewReader(string(defaultRulesYAML)))
}

// Get returns the rule for a requirement name.
func (rs Ruleset) Get(name string) (Rule, bool) {
	r, ok := rs.byName[name]
	return r, ok
}

// Names returns the requirement names in definition order.
func (rs Ruleset) Names() []string {
	names := make([]string, len(rs.rules))
	for i, r := range rs.rules {
		names[i] = r.Name
	}
	return names
}

// Explain builds the justification clause for a rule, e.g.
// "because it is cheap and serves good food". Rules without antecedents
// explain nothing.
func Explain(rule Rule) (string, error) {
	n := len(rule.Antecedents)
	if n > MaxAntecedents {
		return "", fmt.Errorf("rule %q has %d antecedents: %w", rule.Name, n, ErrUnsupportedRule)
	}
	reasons := make([]string, n)
	for i := range reasons {
		if i < len(rule.Reasons) {
			reasons[i] = rule.Reasons[i]
		} else {
			reasons[i] = "is " + rule.Antecedents[i]
		}
	}

	switch n {
	case 0:
		return "", nil
	case 1:
		return fmt.Sprintf("because it %s", reasons[0]), nil
	case 2:
		return fmt.Sprintf("because it %s and %s", reasons[0], reasons[1]), nil
	default:
		return fmt.Sprintf("because it %s, %s and %s", reasons[0], reasons[1], reasons[2]), nil
	}
}
