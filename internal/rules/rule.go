package rules

import (
	"fmt"
	"strings"

	"dirsort/internal/log"
	"dirsort/pkg/types"
)

// Rule sends every entry satisfying all of its conditions to Target,
// relative to the target root. A rule without conditions matches everything.
type Rule struct {
	target     string
	priority   int
	appliesTo  string
	conditions []Condition
}

// NewRule creates a rule. Invalid (zero) conditions are dropped with a
// warning.
func NewRule(target string, priority int, conditions ...Condition) *Rule {
	r := &Rule{target: target, priority: priority, appliesTo: types.AppliesToAny}
	for _, c := range conditions {
		r.AddCondition(c)
	}
	return r
}

// AddCondition appends c to the conjunction and reports whether it was
// accepted. Only used while assembling.
func (r *Rule) AddCondition(c Condition) bool {
	if !c.Valid() {
		log.Warnf("Ignoring invalid condition for rule %s", r.target)
		return false
	}
	r.conditions = append(r.conditions, c)
	return true
}

// Matches reports whether every condition holds for item, stopping at the
// first one that does not.
func (r *Rule) Matches(item types.ItemMetadata) bool {
	for _, c := range r.conditions {
		if !c.Evaluate(item) {
			return false
		}
	}
	return true
}

// Target returns the destination path relative to the target root
func (r *Rule) Target() string {
	return r.target
}

// Priority returns the rule priority; lower values win
func (r *Rule) Priority() int {
	return r.priority
}

// AppliesTo returns the configured entry kind filter. It is informational:
// matching is decided by the conditions alone.
func (r *Rule) AppliesTo() string {
	return r.appliesTo
}

// Conditions returns a copy of the rule's conditions in evaluation order
func (r *Rule) Conditions() []Condition {
	out := make([]Condition, len(r.conditions))
	copy(out, r.conditions)
	return out
}

// Describe renders the rule for logs and listings
func (r *Rule) Describe() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Rule (priority=%d, target='%s')", r.priority, r.target))
	if len(r.conditions) == 0 {
		sb.WriteString(" with no conditions (matches all)")
		return sb.String()
	}

	parts := make([]string, len(r.conditions))
	for i, c := range r.conditions {
		parts[i] = c.Describe()
	}
	sb.WriteString(" with conditions: ")
	sb.WriteString(strings.Join(parts, " AND "))
	return sb.String()
}

func (r *Rule) String() string {
	return r.Describe()
}
