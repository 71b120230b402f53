package aib

import (
	"fmt"
	"strings"
	"time"

	"github.com/yacoob/beancount-aib/cleaner"
	"github.com/yacoob/beancount-aib/ledger"
)

// NoCutoff disables dropping of old transactions. Zero is a meaningful
// cutoff (keep nothing older than the latest existing transaction), so the
// "off" value has to live outside the valid range.
const NoCutoff = -1

const (
	dateLayout       = "02/01/2006"
	originalPayeeKey = "original-payee"
)

// Importer turns AIB CSV exports into ledger directives.
type Importer struct {
	// AccountMap maps the account identifier found in the CSV's first
	// column to the ledger account name.
	AccountMap map[string]string
	// Extractors is the payee cleanup rule table applied to every row.
	Extractors *cleaner.Extractors
	// CutoffDays drops incoming transactions older than the latest
	// matching existing transaction minus this many days. NoCutoff keeps
	// everything.
	CutoffDays int
	Currency   string
}

// New returns an importer with a fresh AIB rule table and no cutoff.
func New(accountMap map[string]string) *Importer {
	return &Importer{
		AccountMap: accountMap,
		Extractors: Rules(),
		CutoffDays: NoCutoff,
		Currency:   ledger.DefaultCurrency,
	}
}

// account returns the mapped ledger account for f. It fails when the file
// is empty, mentions more than one account, or names an account that is
// not configured.
func (imp *Importer) account(f *File) (string, bool) {
	if f == nil || len(f.Rows) == 0 {
		return "", false
	}
	id := f.first(f.Rows[0])
	for _, row := range f.Rows[1:] {
		if f.first(row) != id {
			return "", false
		}
	}
	mapped, ok := imp.AccountMap[id]
	return mapped, ok
}

// Identify reports whether this importer can handle f.
func (imp *Importer) Identify(f *File) bool {
	_, ok := imp.account(f)
	return ok
}

// Account returns the ledger account whose transactions f contains, or ""
// when f is not an AIB export this importer is configured for.
func (imp *Importer) Account(f *File) string {
	account, _ := imp.account(f)
	return account
}

// FileDate returns the date of the last transaction in f, the date for
// which the file is representative.
func (imp *Importer) FileDate(f *File) (time.Time, bool) {
	if !imp.Identify(f) {
		return time.Time{}, false
	}
	last := f.Rows[len(f.Rows)-1]
	date, err := time.Parse(dateLayout, strings.TrimSpace(last.Get("Posted Transactions Date")))
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// Extract turns f into ledger entries sorted by date: one transaction per
// row, run through payee cleanup, followed by a balance assertion for the
// day after the last row. When existing entries and a cutoff are given,
// incoming transactions older than the latest existing transaction for the
// account minus the cutoff are dropped: beancount would dedupe them later
// anyway, but they'd still clutter the import interface.
func (imp *Importer) Extract(f *File, existing []ledger.Directive) ([]ledger.Directive, error) {
	account, ok := imp.account(f)
	if !ok {
		return nil, nil
	}
	entries, lastBalance, err := imp.parse(f, account)
	if err != nil {
		return nil, err
	}
	ledger.SortByDate(entries)
	entries = imp.applyCutoff(entries, existing, account)
	if lastBalance != nil {
		entries = append(entries, lastBalance)
	}
	return entries, nil
}

func (imp *Importer) parse(f *File, account string) ([]ledger.Directive, *ledger.Balance, error) {
	var entries []ledger.Directive
	var lastBalance *ledger.Balance

	for _, row := range f.Rows {
		date, err := time.Parse(dateLayout, strings.TrimSpace(row.Get("Posted Transactions Date")))
		if err != nil {
			return nil, nil, fmt.Errorf("%s line %d: %w", f.Name, row.Line, err)
		}

		// Current accounts split the description over three columns,
		// credit cards have a single one.
		var payee string
		if row.Has("Description") {
			payee = row.Get("Description")
		} else {
			payee = strings.Join([]string{
				strings.TrimSpace(row.Get("Description1")),
				strings.TrimSpace(row.Get("Description2")),
				strings.TrimSpace(row.Get("Description3")),
			}, " ")
		}

		amountField := row.Get("Debit Amount")
		if row.Get("Transaction Type") == "Credit" {
			amountField = row.Get("Credit Amount")
		}
		number, err := ledger.ParseAmount(amountField)
		if err != nil {
			return nil, nil, fmt.Errorf("%s line %d: %w", f.Name, row.Line, err)
		}
		if row.Get("Transaction Type") != "Credit" {
			number = number.Neg()
		}

		tx := ledger.NewTransaction(date, payee, ledger.Posting{
			Account: account,
			Amount:  &ledger.Amount{Number: number, Currency: imp.Currency},
		})
		tx.File = f.Name
		tx.Line = row.Line

		// Foreign currency fields carry valid data only in credit card
		// exports; current accounts fill them with the posted amount and
		// keep the real foreign amount in the description, where the rule
		// table picks it up.
		if c := strings.TrimSpace(row.Get("Local Currency")); c != "" && c != imp.Currency {
			tx.Tags.Add(strings.ToLower(c))
			tx.Meta["foreign-amount"] = strings.TrimSpace(row.Get("Local Currency Amount"))
		}

		if _, err := cleaner.CleanPayee(tx, imp.Extractors, originalPayeeKey); err != nil {
			return nil, nil, fmt.Errorf("%s line %d: %w", f.Name, row.Line, err)
		}
		entries = append(entries, tx)

		if b := strings.TrimSpace(row.Get("Balance")); b != "" {
			number, err := ledger.ParseAmount(b)
			if err != nil {
				return nil, nil, fmt.Errorf("%s line %d: %w", f.Name, row.Line, err)
			}
			lastBalance = ledger.NewBalance(date.AddDate(0, 0, 1), account, number)
			lastBalance.File = f.Name
			lastBalance.Line = row.Line
		}
	}
	return entries, lastBalance, nil
}

// applyCutoff drops entries older than the latest confirmed existing
// transaction for account, minus CutoffDays. Existing transactions still
// flagged for review don't count as confirmed.
func (imp *Importer) applyCutoff(entries []ledger.Directive, existing []ledger.Directive, account string) []ledger.Directive {
	if imp.CutoffDays == NoCutoff || len(existing) == 0 {
		return entries
	}
	var latest time.Time
	found := false
	for i := len(existing) - 1; i >= 0 && !found; i-- {
		tx, ok := existing[i].(*ledger.Transaction)
		if !ok || tx.Flag == ledger.DefaultFlag {
			continue
		}
		for _, p := range tx.Postings {
			if p.Account == account {
				latest = tx.Date
				found = true
				break
			}
		}
	}
	if !found {
		return entries
	}
	cutoff := latest.AddDate(0, 0, -imp.CutoffDays)
	kept := entries[:0]
	for _, e := range entries {
		if !e.EntryDate().Before(cutoff) {
			kept = append(kept, e)
		}
	}
	return kept
}
