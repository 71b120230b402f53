package ledger

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

const dateLayout = "2006-01-02"

// Render writes entries as beancount-style text, one blank line between
// entries.
func Render(w io.Writer, entries []Directive) error {
	for i, entry := range entries {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := renderEntry(w, entry); err != nil {
			return err
		}
	}
	return nil
}

// RenderString renders entries into a single string.
func RenderString(entries []Directive) string {
	var b strings.Builder
	// strings.Builder never returns a write error.
	_ = Render(&b, entries)
	return b.String()
}

func renderEntry(w io.Writer, entry Directive) error {
	switch e := entry.(type) {
	case *Transaction:
		return renderTransaction(w, e)
	case *Balance:
		_, err := fmt.Fprintf(w, "%s balance %s  %s %s\n",
			e.Date.Format(dateLayout), e.Account, e.Amount.Number.StringFixed(2), e.Amount.Currency)
		return err
	case *Open:
		_, err := fmt.Fprintf(w, "%s open %s %s\n",
			e.Date.Format(dateLayout), e.Account, strings.Join(e.Currencies, ","))
		return err
	default:
		return fmt.Errorf("rendering: unsupported directive %T", entry)
	}
}

func renderTransaction(w io.Writer, t *Transaction) error {
	if _, err := fmt.Fprintf(w, "%s %s %q %q", t.Date.Format(dateLayout), t.Flag, t.Payee, t.Narration); err != nil {
		return err
	}
	for _, tag := range t.Tags.Values() {
		if _, err := fmt.Fprintf(w, " #%s", tag); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	keys := make([]string, 0, len(t.Meta))
	for k := range t.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "  %s: %q\n", k, t.Meta[k]); err != nil {
			return err
		}
	}
	for _, p := range t.Postings {
		if p.Amount == nil {
			if _, err := fmt.Fprintf(w, "  %s\n", p.Account); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "  %s  %s %s\n", p.Account, p.Amount.Number.StringFixed(2), p.Amount.Currency); err != nil {
			return err
		}
	}
	return nil
}
