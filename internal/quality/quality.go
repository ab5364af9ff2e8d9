// Package quality picks a quality profile for a categorized request.
package quality

import (
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/overfiltrr/overfiltrr/internal/media"
	"github.com/overfiltrr/overfiltrr/internal/rules"
)

// DefaultPriority is used for rules that omit a priority.
const DefaultPriority = 9999

// Rule maps a condition to a profile id. Lower priorities are tried first.
type Rule struct {
	Priority  int             `yaml:"priority" json:"priority"`
	Condition rules.Condition `yaml:"condition" json:"condition"`
	Logic     rules.Logic     `yaml:"logic" json:"logic"`
	ProfileID int             `yaml:"profile_id" json:"profileId"`
}

func (r *Rule) UnmarshalYAML(node *yaml.Node) error {
	type plain Rule
	raw := plain{Priority: DefaultPriority, Logic: rules.LogicOr}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*r = Rule(raw)
	return nil
}

// Unconditional reports whether the rule always matches.
func (r Rule) Unconditional() bool {
	return len(r.Condition) == 0
}

// Validate checks the rule's condition and target profile.
func (r Rule) Validate() error {
	var errs []error
	if r.ProfileID <= 0 {
		errs = append(errs, errors.New("profile_id must be a positive integer"))
	}
	if _, err := rules.ParseLogic(string(r.Logic)); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, splitJoined(r.Condition.Validate())...)
	return errors.Join(errs...)
}

func splitJoined(err error) []error {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

// Source identifies how a profile was chosen.
type Source string

const (
	SourceRule    Source = "rule"
	SourceDefault Source = "default"
	SourceNone    Source = "none"
)

// Selection is the outcome of Select.
type Selection struct {
	ProfileID int    `json:"profileId"`
	Source    Source `json:"source"`
	// Rule is the matching rule when Source is SourceRule.
	Rule *Rule `json:"rule,omitempty"`
}

// Sorted returns a copy of rs ordered by ascending priority. Rules with equal
// priority keep their declared order.
func Sorted(rs []Rule) []Rule {
	out := make([]Rule, len(rs))
	copy(out, rs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}

// Select returns the profile of the first rule, by priority, whose condition
// holds for attrs. When no rule matches, defaultID is used. A zero defaultID
// with no match yields SourceNone.
func Select(attrs media.Attributes, rs []Rule, defaultID int) Selection {
	for _, r := range Sorted(rs) {
		if rules.Evaluate(attrs, r.Condition, r.Logic) {
			matched := r
			return Selection{ProfileID: r.ProfileID, Source: SourceRule, Rule: &matched}
		}
	}
	if defaultID > 0 {
		return Selection{ProfileID: defaultID, Source: SourceDefault}
	}
	return Selection{Source: SourceNone}
}

// ValidateRules checks every rule and that a profile is always reachable,
// either through defaultID or an unconditional rule.
func ValidateRules(rs []Rule, defaultID int) error {
	var errs []error
	reachable := defaultID > 0
	for i, r := range rs {
		for _, err := range splitJoined(r.Validate()) {
			errs = append(errs, fmt.Errorf("rule %d: %w", i+1, err))
		}
		if r.Unconditional() {
			reachable = true
		}
	}
	if !reachable {
		errs = append(errs, errors.New("default_profile_id is required unless a rule has an empty condition"))
	}
	return errors.Join(errs...)
}
