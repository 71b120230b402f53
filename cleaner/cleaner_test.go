package cleaner

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yacoob/beancount-aib/ledger"
)

var testDate = time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)

func newTx(payee string) *ledger.Transaction {
	return ledger.NewTransaction(testDate, payee)
}

func TestTagAction(t *testing.T) {
	rules := NewExtractors(
		NewRule("tag the currency", ` ([A-Z]{3})$`, Tag("$1"), Consume()),
	)

	tx, err := CleanPayee(newTx("COFFEE PLN"), rules, "")
	require.NoError(t, err)
	assert.Equal(t, "COFFEE", tx.Payee)
	assert.Equal(t, ledger.NewTagSet("PLN"), tx.Tags)
}

func TestTagActionTranslation(t *testing.T) {
	rules := NewExtractors(
		NewRule("transaction type", `^(POS|ATM) `,
			Tag("$1").Translate(Translation{"pos": "point-of-sale"}),
			Consume()),
	)

	tx, err := CleanPayee(newTx("POS SHOP"), rules, "")
	require.NoError(t, err)
	assert.Equal(t, ledger.NewTagSet("point-of-sale"), tx.Tags)

	// No translation hit: the raw value keeps its case.
	tx, err = CleanPayee(newTx("ATM SHOP"), rules, "")
	require.NoError(t, err)
	assert.Equal(t, ledger.NewTagSet("ATM"), tx.Tags)
}

func TestMetaAction(t *testing.T) {
	rules := NewExtractors(
		NewRule("extract the id", ` *(ID\d+)`, Meta("id"), Consume()),
	)

	tx, err := CleanPayee(newTx("SHOP ID1234"), rules, "")
	require.NoError(t, err)
	assert.Equal(t, "SHOP", tx.Payee)
	assert.Equal(t, map[string]string{"id": "ID1234"}, tx.Meta)
}

func TestMetaActionTranslateThenTransform(t *testing.T) {
	rules := NewExtractors(
		NewRule("payment processor", `^(SQ|PAYPAL) `,
			Meta("processor").Translate(Translation{"sq": "square"}).Transform(strings.ToLower),
			Consume()),
	)

	// Translation first ("SQ" -> "square"), then the transform.
	tx, err := CleanPayee(newTx("SQ COFFEE"), rules, "")
	require.NoError(t, err)
	assert.Equal(t, "square", tx.Meta["processor"])

	// Translation miss passes through, the transform still applies.
	tx, err = CleanPayee(newTx("PAYPAL COFFEE"), rules, "")
	require.NoError(t, err)
	assert.Equal(t, "paypal", tx.Meta["processor"])
}

func TestUnmatchedOptionalGroupIsNoOp(t *testing.T) {
	rules := NewExtractors(
		NewRule("optional prefix", `(?i)^(time)? *(\d\d:\d\d)$`,
			Meta("prefix"),
			Meta("time").From("$2"),
			Consume()),
	)

	tx, err := CleanPayee(newTx("LUNCH 13:45"), rules, "")
	require.NoError(t, err)
	assert.Equal(t, "LUNCH", tx.Payee)
	// $1 did not participate: its meta action must noop without
	// disturbing the other actions of the same rule.
	assert.Equal(t, map[string]string{"time": "13:45"}, tx.Meta)
}

func TestReplaceTemplateAndFunc(t *testing.T) {
	rules := NewExtractors(
		NewRule("keep the head", `^(\w+)-.*$`, Replace("$1")),
		NewRule("lowercase shouting", `^SHOUTED:(.*)$`, ReplaceWith(func(m Match) string {
			return strings.ToLower(m.Group(1))
		})),
	)

	tx, err := CleanPayee(newTx("HEAD-AND SOME TAIL"), rules, "")
	require.NoError(t, err)
	assert.Equal(t, "HEAD", tx.Payee)

	tx, err = CleanPayee(newTx("SHOUTED:QUIET PLEASE"), rules, "")
	require.NoError(t, err)
	assert.Equal(t, "quiet please", tx.Payee)
}

func TestReplaceRewritesOnlyTheMatchedSpan(t *testing.T) {
	rules := NewExtractors(
		NewRule("collapse spaced stars", `( \*|\* )`, Replace(" ")),
	)

	tx, err := CleanPayee(newTx("A *B"), rules, "")
	require.NoError(t, err)
	assert.Equal(t, "A B", tx.Payee)
}

func TestMultipleOccurrencesNeedMultiplePasses(t *testing.T) {
	// One match per rule per pass: three stars take three passes, and the
	// engine keeps going until the payee is a fixpoint.
	rules := NewExtractors(
		NewRule("strip stars", `\*`, Consume()),
	)

	tx, err := CleanPayee(newTx("a*b*c*d"), rules, "")
	require.NoError(t, err)
	assert.Equal(t, "abcd", tx.Payee)
}

func TestLaterPassSeesTextExposedByEarlierRule(t *testing.T) {
	// Stripping the star only exposes the prefix for the second rule on
	// the next pass, because the prefix rule runs before the star rule.
	rules := NewExtractors(
		NewRule("app prefix", `^APP `, Tag("app"), Consume()),
		NewRule("leading star", `^\*`, Consume()),
	)

	tx, err := CleanPayee(newTx("*APP LEMONADE"), rules, "")
	require.NoError(t, err)
	assert.Equal(t, "LEMONADE", tx.Payee)
	assert.Equal(t, ledger.NewTagSet("app"), tx.Tags)
}

func TestRuleOrderMatters(t *testing.T) {
	first := NewRule("consume the prefix", `^A-`, Consume())
	second := NewRule("rewrite the pair", `^A-B`, Replace("X"))

	tx, err := CleanPayee(newTx("A-B"), NewExtractors(first, second), "")
	require.NoError(t, err)
	assert.Equal(t, "B", tx.Payee)

	tx, err = CleanPayee(newTx("A-B"), NewExtractors(second, first), "")
	require.NoError(t, err)
	assert.Equal(t, "X", tx.Payee)
}

func TestUnlessVeto(t *testing.T) {
	rules := NewExtractors(
		NewRule("strip dates", `\d\d[A-Z]{3}\d\d *`, Consume()).
			Unless(`TO \d\d[A-Z]{3}\d\d`),
	)

	tx, err := CleanPayee(newTx("PIZZA PLACE 22JUN13"), rules, "")
	require.NoError(t, err)
	assert.Equal(t, "PIZZA PLACE", tx.Payee)

	tx, err = CleanPayee(newTx("FEES QUARTER TO 01JAN24"), rules, "")
	require.NoError(t, err)
	assert.Equal(t, "FEES QUARTER TO 01JAN24", tx.Payee)
}

func TestSelfReplacementTerminates(t *testing.T) {
	// A rule that replaces its match with itself fires on every pass but
	// changes nothing; the engine must still converge.
	rules := NewExtractors(
		NewRule("mark but keep", `^GOOGLE (PLAY|MUSIC)`,
			Meta("processor").From("google"),
			Replace("$0")),
	)

	tx, err := CleanPayee(newTx("GOOGLE PLAY"), rules, "")
	require.NoError(t, err)
	assert.Equal(t, "GOOGLE PLAY", tx.Payee)
	assert.Equal(t, "google", tx.Meta["processor"])
}

func TestNonConvergenceIsAnError(t *testing.T) {
	rules := NewExtractors(
		NewRule("pathological growth", `^x`, Replace("xx")),
	)

	_, err := CleanPayee(newTx("x"), rules, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not converge")
}

func TestPreserveOriginalPayee(t *testing.T) {
	rules := NewExtractors(
		NewRule("strip prefix", `^NOISE-`, Consume()),
	)

	tx, err := CleanPayee(newTx("NOISE-SIGNAL"), rules, "original-payee")
	require.NoError(t, err)
	assert.Equal(t, "SIGNAL", tx.Payee)
	assert.Equal(t, "NOISE-SIGNAL", tx.Meta["original-payee"])

	// An untouched payee leaves no trace.
	tx, err = CleanPayee(newTx("SIGNAL"), rules, "original-payee")
	require.NoError(t, err)
	assert.NotContains(t, tx.Meta, "original-payee")
}

func TestCleanupIsIdempotent(t *testing.T) {
	rules := NewExtractors(
		NewRule("strip prefix", `^NOISE-`, Tag("noise"), Consume()),
		NewRule("extract the id", ` *(ID\d+)`, Meta("id"), Consume()),
	)

	tx, err := CleanPayee(newTx("NOISE-SIGNAL ID42"), rules, "original-payee")
	require.NoError(t, err)

	oncePayee := tx.Payee
	onceTags := tx.Tags.Values()
	onceMeta := make(map[string]string, len(tx.Meta))
	for k, v := range tx.Meta {
		onceMeta[k] = v
	}

	again, err := CleanPayee(tx, rules, "original-payee")
	require.NoError(t, err)
	assert.Equal(t, oncePayee, again.Payee)
	assert.Equal(t, onceTags, again.Tags.Values())
	assert.Equal(t, onceMeta, again.Meta)
}

func TestSharedRuleTableDoesNotLeakBetweenRuns(t *testing.T) {
	rules := NewExtractors(
		NewRule("tag and strip", `^APP `, Tag("app"), Meta("seen").From("yes"), Consume()),
	)

	tx1, err := CleanPayee(newTx("APP ONE"), rules, "")
	require.NoError(t, err)
	tx2, err := CleanPayee(newTx("PLAIN TWO"), rules, "")
	require.NoError(t, err)

	assert.Equal(t, ledger.NewTagSet("app"), tx1.Tags)
	assert.Empty(t, tx2.Tags)
	assert.Empty(t, tx2.Meta)
	assert.Equal(t, 1, rules.Len())
}

func TestCloneIsIndependent(t *testing.T) {
	rules := NewExtractors(
		NewRule("strip stars", `\*`, Consume()),
	)
	clone := rules.Clone()
	clone.Add(NewRule("strip dashes", `-`, Consume()))

	assert.Equal(t, 1, rules.Len())
	assert.Equal(t, 2, clone.Len())
}

func TestEmptyTableIsANoOp(t *testing.T) {
	raw := &ledger.Transaction{Payee: "  UNTOUCHED  ", Tags: ledger.TagSet{}, Meta: map[string]string{}}
	tx, err := CleanPayee(raw, nil, "original-payee")
	require.NoError(t, err)
	assert.Equal(t, "  UNTOUCHED  ", tx.Payee)
	assert.Empty(t, tx.Meta)

	tx, err = CleanPayee(newTx("UNTOUCHED"), NewExtractors(), "")
	require.NoError(t, err)
	assert.Equal(t, "UNTOUCHED", tx.Payee)
}

func TestMalformedPatternPanicsAtConstruction(t *testing.T) {
	assert.Panics(t, func() {
		NewRule("broken", `(`, Consume())
	})
	assert.Panics(t, func() {
		NewRule("broken veto", `ok`, Consume()).Unless(`(`)
	})
}

type bogusAction struct{}

func (bogusAction) isAction() {}

func TestUnknownActionKindPanics(t *testing.T) {
	rules := NewExtractors(Rule{
		Description: "smuggled action kind",
		re:          NewRule("", `.`, Consume()).re,
		actions:     []Action{bogusAction{}},
	})

	assert.Panics(t, func() {
		CleanPayee(newTx("anything"), rules, "")
	})
}
