// Package rule defines line-oriented hygiene rules for suite source files
// and the built-in catalog applied by default.
package rule

import (
	"slices"

	"github.com/starford/featlint/internal/layout"
)

// Rule is a named, stateless predicate over a file's text content, tagged
// with the directory roles it applies to. Check returns true when the
// content is compliant.
type Rule struct {
	Name  string
	Roles []layout.Role
	Check func(content string) bool
}

// AppliesTo reports whether the rule is applicable to role.
func (r Rule) AppliesTo(role layout.Role) bool {
	return slices.Contains(r.Roles, role)
}

// Set is an ordered collection of rules. Insertion order is preserved so
// reports are deterministic. Rule names are used as map keys during status
// aggregation; duplicates would silently collide.
type Set struct {
	rules []Rule
}

// NewSet creates a set containing the given rules in order.
func NewSet(rules ...Rule) *Set {
	return &Set{rules: rules}
}

// Add appends a rule to the set.
func (s *Set) Add(r Rule) {
	s.rules = append(s.rules, r)
}

// Rules returns all rules in insertion order.
func (s *Set) Rules() []Rule {
	return s.rules
}

// ForRole returns the rules applicable to role, preserving set order.
func (s *Set) ForRole(role layout.Role) []Rule {
	var out []Rule
	for _, r := range s.rules {
		if r.AppliesTo(role) {
			out = append(out, r)
		}
	}
	return out
}
