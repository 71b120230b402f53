package cleaner

import (
	"fmt"
	"strings"

	"github.com/yacoob/beancount-aib/ledger"
)

// CleanPayee runs tx through the rule table until a full pass leaves the
// transaction unchanged, then returns the mutated tx. Rules are tried in
// table order; each rule fires at most once per pass, against the leftmost
// match, and payee rewrites are visible to the rules that follow within the
// same pass. Repeated occurrences of one pattern are handled by further
// passes.
//
// If preserveKey is non-empty and cleanup changed the payee, the original
// payee is recorded under that metadata key, unless the key is already set.
// That guard keeps cleanup idempotent: cleaning an already-clean
// transaction changes nothing.
//
// A rule table that keeps reintroducing matchable text never reaches a
// fixpoint; cleanup gives up after a pass budget derived from the table
// size and returns an error, since silently importing a wrongly-cleaned
// transaction is worse than stopping.
func CleanPayee(tx *ledger.Transaction, extractors *Extractors, preserveKey string) (*ledger.Transaction, error) {
	if extractors == nil || extractors.Len() == 0 {
		return tx, nil
	}
	original := tx.Payee
	tx.Payee = strings.TrimSpace(tx.Payee)

	maxPasses := 2*extractors.Len() + 8
	for pass := 0; ; pass++ {
		if pass >= maxPasses {
			return tx, fmt.Errorf("payee cleanup of %q did not converge after %d passes, last state %q", original, maxPasses, tx.Payee)
		}
		changed := false
		for _, rule := range extractors.rules {
			idx := rule.re.FindStringSubmatchIndex(tx.Payee)
			if idx == nil {
				continue
			}
			if rule.veto != nil && rule.veto.MatchString(tx.Payee) {
				continue
			}
			m := Match{re: rule.re, src: tx.Payee, idx: idx}
			if applyActions(tx, rule.actions, m) {
				changed = true
			}
		}
		tx.Payee = strings.TrimSpace(tx.Payee)
		if !changed {
			break
		}
	}

	if preserveKey != "" && tx.Payee != original {
		if _, ok := tx.Meta[preserveKey]; !ok {
			tx.Meta[preserveKey] = original
		}
	}
	return tx, nil
}

// applyActions runs all actions of one rule against a single shared match
// and reports whether any of them changed the transaction. Actions only
// ever write to the transaction, never to the rule table.
func applyActions(tx *ledger.Transaction, actions []Action, m Match) bool {
	changed := false
	for _, action := range actions {
		switch a := action.(type) {
		case TagAction:
			v := m.Expand(a.template)
			if v == "" {
				continue
			}
			v = a.table.Lookup(v)
			if v == "" || tx.Tags.Has(v) {
				continue
			}
			tx.Tags.Add(v)
			changed = true
		case MetaAction:
			v := m.Expand(a.template)
			if v == "" {
				continue
			}
			v = a.table.Lookup(v)
			if a.transform != nil {
				v = a.transform(v)
			}
			if tx.Meta[a.key] == v {
				continue
			}
			tx.Meta[a.key] = v
			changed = true
		case ReplaceAction:
			var repl string
			if a.fn != nil {
				repl = a.fn(m)
			} else {
				repl = m.Expand(a.template)
			}
			next := m.src[:m.idx[0]] + repl + m.src[m.idx[1]:]
			if next != tx.Payee {
				tx.Payee = next
				changed = true
			}
		case ConsumeAction:
			next := m.src[:m.idx[0]] + m.src[m.idx[1]:]
			if next != tx.Payee {
				tx.Payee = next
				changed = true
			}
		default:
			panic(fmt.Sprintf("cleaner: unknown action type %T", action))
		}
	}
	return changed
}
