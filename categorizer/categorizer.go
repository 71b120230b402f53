// Package categorizer appends a guessed balancing posting to imported
// transactions based on payee keyword matching.
package categorizer

import (
	"regexp"
	"strings"

	"github.com/yacoob/beancount-aib/ledger"
)

// Category maps a ledger account to the payee prefixes that should book
// against it.
type Category struct {
	Account  string   `mapstructure:"account" json:"account"`
	Keywords []string `mapstructure:"keywords" json:"keywords"`
}

type compiledCategory struct {
	account string
	re      *regexp.Regexp
}

// PayeeCategorizer adds a second, amount-less posting to single-posting
// transactions whose payee starts with one of the configured keywords. The
// amount is left for the downstream ledger tool to infer.
type PayeeCategorizer struct {
	categories []compiledCategory
}

// New compiles one case-insensitive starts-with matcher per category.
// Categories are an ordered list, not a map: the first matching category
// wins, so their order is significant.
func New(categories []Category) *PayeeCategorizer {
	c := &PayeeCategorizer{}
	for _, cat := range categories {
		c.categories = append(c.categories, compiledCategory{
			account: cat.Account,
			re:      regexp.MustCompile(`(?i)^(` + strings.Join(cat.Keywords, "|") + `).*`),
		})
	}
	return c
}

// Process runs every entry through categorization and returns the slice.
// Entries other than transactions, and transactions that already balance
// over two or more postings, are left untouched.
func (c *PayeeCategorizer) Process(entries []ledger.Directive) []ledger.Directive {
	for _, entry := range entries {
		tx, ok := entry.(*ledger.Transaction)
		if !ok || len(tx.Postings) != 1 || tx.Payee == "" {
			continue
		}
		for _, cat := range c.categories {
			if cat.re.MatchString(tx.Payee) {
				tx.Postings = append(tx.Postings, ledger.Posting{Account: cat.account})
				break
			}
		}
	}
	return entries
}
