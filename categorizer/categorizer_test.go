package categorizer

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yacoob/beancount-aib/ledger"
)

const checking = "Assets:AIB:Checking"

func tx(day int, payee string, postings ...ledger.Posting) *ledger.Transaction {
	date := time.Date(2099, time.January, day, 0, 0, 0, 0, time.UTC)
	return ledger.NewTransaction(date, payee, postings...)
}

func TestCategorization(t *testing.T) {
	c := New([]Category{
		{Account: "Expenses:Groceries", Keywords: []string{"tesco", "lidl"}},
		{Account: "Expenses:Restaurants", Keywords: []string{"the winding", "zaytoon"}},
	})
	entries := []ledger.Directive{
		tx(1, "TESCO STORES 7", ledger.Post(checking, "42.99")),
		tx(2, "Zaytoon North", ledger.Post(checking, "13.33")),
		tx(3, "Woodies", ledger.Post(checking, "50.12"), ledger.Post("Expenses:Household", "-50.12")),
		tx(4, "The Winding Stairs", ledger.Post(checking, "67.23")),
		tx(5, "forbidden planet", ledger.Post(checking, "18.81")),
	}

	processed := c.Process(entries)
	require.Len(t, processed, 5)

	// The last posting shows what happened: a guessed expense account, an
	// untouched manual split, or no categorization at all.
	wantLastAccounts := []string{
		"Expenses:Groceries",
		"Expenses:Restaurants",
		"Expenses:Household",
		"Expenses:Restaurants",
		checking,
	}
	for i, entry := range processed {
		tx, ok := entry.(*ledger.Transaction)
		require.True(t, ok)
		last := tx.Postings[len(tx.Postings)-1]
		assert.Equal(t, wantLastAccounts[i], last.Account, "payee %q", tx.Payee)
	}
}

func TestGuessedPostingHasNoAmount(t *testing.T) {
	c := New([]Category{{Account: "Expenses:Groceries", Keywords: []string{"tesco"}}})
	entries := c.Process([]ledger.Directive{tx(1, "Tesco Metro", ledger.Post(checking, "10.00"))})

	got := entries[0].(*ledger.Transaction)
	require.Len(t, got.Postings, 2)
	assert.Nil(t, got.Postings[1].Amount)
}

func TestFirstMatchingCategoryWins(t *testing.T) {
	c := New([]Category{
		{Account: "Expenses:First", Keywords: []string{"double"}},
		{Account: "Expenses:Second", Keywords: []string{"double trouble"}},
	})
	entries := c.Process([]ledger.Directive{tx(1, "Double Trouble", ledger.Post(checking, "5.00"))})

	got := entries[0].(*ledger.Transaction)
	require.Len(t, got.Postings, 2)
	assert.Equal(t, "Expenses:First", got.Postings[1].Account)
}

func TestNonTransactionsAndEmptyPayeesAreSkipped(t *testing.T) {
	c := New([]Category{{Account: "Expenses:Groceries", Keywords: []string{"tesco"}}})
	balance := ledger.NewBalance(time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC), checking, decimal.NewFromInt(1))
	nameless := tx(2, "", ledger.Post(checking, "1.00"))

	processed := c.Process([]ledger.Directive{balance, nameless})
	require.Len(t, processed, 2)
	assert.Len(t, nameless.Postings, 1)
}
