// Package ledger holds the directive types produced by the importer:
// transactions under payee cleanup, balance assertions and account opens,
// plus beancount-style text rendering for all of them.
package ledger

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultCurrency = "EUR"
	DefaultFlag     = "!"
)

// Directive is any dated ledger entry.
type Directive interface {
	EntryDate() time.Time
}

// Amount is a number in a single currency.
type Amount struct {
	Number   decimal.Decimal `json:"number"`
	Currency string          `json:"currency"`
}

var amountCleaner = strings.NewReplacer(",", "", " ", "")

// ParseAmount parses a statement amount, tolerating thousands separators
// and stray whitespace. An empty string parses to zero.
func ParseAmount(text string) (decimal.Decimal, error) {
	clean := amountCleaner.Replace(text)
	if clean == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", text, err)
	}
	return amount, nil
}

// TagSet is a set of short lowercase-ish labels. Values are unique and
// insertion order is irrelevant.
type TagSet map[string]struct{}

// NewTagSet builds a set from the given tags.
func NewTagSet(tags ...string) TagSet {
	s := TagSet{}
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

// Add inserts a tag. Adding an existing tag is a no-op.
func (s TagSet) Add(tag string) {
	s[tag] = struct{}{}
}

// Has reports whether tag is present.
func (s TagSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Values returns the tags in sorted order.
func (s TagSet) Values() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON renders the set as a sorted array.
func (s TagSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// Posting books an amount against an account. A nil amount is left for the
// downstream ledger tool to infer when balancing the transaction.
type Posting struct {
	Account string  `json:"account"`
	Amount  *Amount `json:"amount,omitempty"`
}

// Post builds a posting, parsing amount as DefaultCurrency. An empty
// amount yields an amount-less posting. Malformed amounts panic; Post is a
// configuration and test helper, statement rows go through ParseAmount.
func Post(account, amount string) Posting {
	if amount == "" {
		return Posting{Account: account}
	}
	number, err := ParseAmount(amount)
	if err != nil {
		panic(err)
	}
	return Posting{Account: account, Amount: &Amount{Number: number, Currency: DefaultCurrency}}
}

// Transaction is a dated entry with a payee under active cleanup, a tag
// set, a metadata mapping and a list of postings.
type Transaction struct {
	Date      time.Time         `json:"date"`
	Flag      string            `json:"flag"`
	Payee     string            `json:"payee"`
	Narration string            `json:"narration,omitempty"`
	Tags      TagSet            `json:"tags,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
	Postings  []Posting         `json:"postings"`

	// Source position of the statement row this entry came from.
	File string `json:"-"`
	Line int    `json:"-"`
}

// NewTransaction builds a transaction with the default flag and empty tag
// set and metadata, ready for payee cleanup.
func NewTransaction(date time.Time, payee string, postings ...Posting) *Transaction {
	return &Transaction{
		Date:     date,
		Flag:     DefaultFlag,
		Payee:    strings.TrimSpace(payee),
		Tags:     TagSet{},
		Meta:     map[string]string{},
		Postings: postings,
	}
}

func (t *Transaction) EntryDate() time.Time { return t.Date }

// Balance asserts an account's balance at the start of a day.
type Balance struct {
	Date    time.Time `json:"date"`
	Account string    `json:"account"`
	Amount  Amount    `json:"amount"`

	File string `json:"-"`
	Line int    `json:"-"`
}

// NewBalance builds a balance assertion in the default currency.
func NewBalance(date time.Time, account string, number decimal.Decimal) *Balance {
	return &Balance{
		Date:    date,
		Account: account,
		Amount:  Amount{Number: number, Currency: DefaultCurrency},
	}
}

func (b *Balance) EntryDate() time.Time { return b.Date }

// Open declares an account and the currencies it may hold.
type Open struct {
	Date       time.Time `json:"date"`
	Account    string    `json:"account"`
	Currencies []string  `json:"currencies,omitempty"`
}

func (o *Open) EntryDate() time.Time { return o.Date }

// SortByDate orders entries by date, keeping the original order of entries
// sharing a date.
func SortByDate(entries []Directive) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].EntryDate().Before(entries[j].EntryDate())
	})
}
