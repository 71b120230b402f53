// Package cleaner implements a rule-driven payee cleanup engine. A rule
// table is an ordered list of regex rules; each rule carries actions that
// tag the transaction, record metadata, or rewrite the matched span of the
// payee. The engine runs the table against a transaction until a full pass
// leaves it unchanged.
package cleaner

import (
	"regexp"
	"strings"
)

// Translation canonicalizes extracted codes, eg. transaction-type
// abbreviations to human-readable labels. Tables are read-only and may be
// shared between rules and rule tables.
type Translation map[string]string

// Lookup returns the translated value, trying an exact match first and a
// lowercase match second. Unknown values pass through unchanged.
func (t Translation) Lookup(v string) string {
	if t == nil {
		return v
	}
	if out, ok := t[v]; ok {
		return out
	}
	if out, ok := t[strings.ToLower(v)]; ok {
		return out
	}
	return v
}

// Match is a single regex match against a payee, shared by all actions of
// one rule firing. Group numbering follows the pattern's capture groups;
// group 0 is the whole match.
type Match struct {
	re  *regexp.Regexp
	src string
	idx []int
}

// Text returns the whole matched span.
func (m Match) Text() string {
	return m.src[m.idx[0]:m.idx[1]]
}

// Group returns the text of capture group n, or "" if the group did not
// participate in the match.
func (m Match) Group(n int) string {
	if 2*n+1 >= len(m.idx) || m.idx[2*n] < 0 {
		return ""
	}
	return m.src[m.idx[2*n]:m.idx[2*n+1]]
}

// Expand substitutes $0, $1, ${name}... references in template with the
// corresponding capture groups. Groups that did not participate expand to
// the empty string.
func (m Match) Expand(template string) string {
	return string(m.re.ExpandString(nil, template, m.src, m.idx))
}

// Action is one side effect a rule applies for a match. The set of
// implementations is closed: TagAction, MetaAction, ReplaceAction and
// ConsumeAction. The engine dispatches over these exhaustively and panics
// on anything else.
type Action interface {
	isAction()
}

// TagAction adds a value to the transaction's tag set. An empty computed
// value is silently dropped.
type TagAction struct {
	template string
	table    Translation
}

// Tag adds the expansion of template against the match to the tag set.
func Tag(template string) TagAction {
	return TagAction{template: template}
}

// Translate runs the computed value through a translation table before it
// is added.
func (a TagAction) Translate(table Translation) TagAction {
	a.table = table
	return a
}

// MetaAction writes a computed value under a fixed metadata key,
// overwriting any previous value. The value is translated first, then
// transformed. An empty computed value is silently dropped.
type MetaAction struct {
	key       string
	template  string
	table     Translation
	transform func(string) string
}

// Meta records capture group 1 under key. Use From to pick a different
// value.
func Meta(key string) MetaAction {
	return MetaAction{key: key, template: "$1"}
}

// From sets the value template; it may be a literal or a $N reference.
func (a MetaAction) From(template string) MetaAction {
	a.template = template
	return a
}

// Translate runs the computed value through a translation table.
func (a MetaAction) Translate(table Translation) MetaAction {
	a.table = table
	return a
}

// Transform applies fn to the value after translation.
func (a MetaAction) Transform(fn func(string) string) MetaAction {
	a.transform = fn
	return a
}

// ReplaceAction rewrites the matched span of the payee.
type ReplaceAction struct {
	template string
	fn       func(Match) string
}

// Replace rewrites the matched span with the expansion of template.
func Replace(template string) ReplaceAction {
	return ReplaceAction{template: template}
}

// ReplaceWith rewrites the matched span with the output of fn. fn must be
// pure: match in, replacement out.
func ReplaceWith(fn func(Match) string) ReplaceAction {
	return ReplaceAction{fn: fn}
}

// ConsumeAction deletes the matched span from the payee.
type ConsumeAction struct{}

// Consume deletes the matched span.
func Consume() ConsumeAction {
	return ConsumeAction{}
}

func (TagAction) isAction()     {}
func (MetaAction) isAction()    {}
func (ReplaceAction) isAction() {}
func (ConsumeAction) isAction() {}
