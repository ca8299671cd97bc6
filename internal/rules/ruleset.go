package rules

import (
	"sort"

	"dirsort/pkg/types"
)

// RuleSet is an ordered collection of rules, sorted by ascending priority.
// Rules with equal priority keep the order in which they were added.
type RuleSet struct {
	rules []*Rule
}

// NewRuleSet creates a sorted rule set. Nil rules are ignored.
func NewRuleSet(rules ...*Rule) *RuleSet {
	s := &RuleSet{}
	s.Replace(rules...)
	return s
}

// Replace swaps in a new list of rules and sorts it
func (s *RuleSet) Replace(rules ...*Rule) {
	s.rules = make([]*Rule, 0, len(rules))
	for _, r := range rules {
		if r != nil {
			s.rules = append(s.rules, r)
		}
	}
	s.SortByPriority()
}

// SortByPriority orders rules by ascending priority, stable on ties
func (s *RuleSet) SortByPriority() {
	sort.SliceStable(s.rules, func(i, j int) bool {
		return s.rules[i].Priority() < s.rules[j].Priority()
	})
}

// FirstMatch returns the first rule, in priority order, that matches item.
// Later matching rules are never consulted.
func (s *RuleSet) FirstMatch(item types.ItemMetadata) (*Rule, bool) {
	if s == nil {
		return nil, false
	}
	for _, r := range s.rules {
		if r.Matches(item) {
			return r, true
		}
	}
	return nil, false
}

// Rules returns the rules in evaluation order
func (s *RuleSet) Rules() []*Rule {
	if s == nil {
		return nil
	}
	out := make([]*Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Len returns the number of rules
func (s *RuleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}
