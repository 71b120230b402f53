package cleaner

import "regexp"

// Rule pairs one pattern with the actions to run against each match. Rules
// are immutable after construction; a malformed pattern is a configuration
// error and panics at construction time, never during cleanup.
type Rule struct {
	// Description documents the rule's intent. It has no behavioral effect.
	Description string

	re      *regexp.Regexp
	veto    *regexp.Regexp
	actions []Action
}

// NewRule compiles pattern and returns a rule running the given actions,
// in order, against each match. Case-insensitivity is encoded in the
// pattern itself via (?i).
func NewRule(description, pattern string, actions ...Action) Rule {
	return Rule{
		Description: description,
		re:          regexp.MustCompile(pattern),
		actions:     actions,
	}
}

// Unless returns a copy of the rule that is skipped whenever the veto
// pattern matches the payee. This stands in for negative lookahead and
// lookbehind, which Go's regexp syntax does not support.
func (r Rule) Unless(pattern string) Rule {
	r.veto = regexp.MustCompile(pattern)
	return r
}

// Extractors is an ordered rule table. The engine consults it read-only, so
// a single table may be shared across any number of cleanup runs.
type Extractors struct {
	rules []Rule
}

// NewExtractors builds a rule table from the given rules, preserving order.
func NewExtractors(rules ...Rule) *Extractors {
	e := &Extractors{}
	e.Add(rules...)
	return e
}

// Add appends one or more rules, preserving their relative order.
func (e *Extractors) Add(rules ...Rule) {
	e.rules = append(e.rules, rules...)
}

// Len returns the number of rules in the table.
func (e *Extractors) Len() int {
	return len(e.rules)
}

// Clone returns an independent copy of the table. Compiled patterns and
// translation tables are read-only and stay shared; only the rule sequence
// is copied.
func (e *Extractors) Clone() *Extractors {
	c := &Extractors{rules: make([]Rule, len(e.rules))}
	copy(c.rules, e.rules)
	return c
}
