// Package aib imports AIB (Allied Irish Banks) CSV exports: current
// account and credit card statements. It carries the AIB payee cleanup
// rule table and the row-to-directive importer.
package aib

import (
	"strings"
	"unicode"

	"github.com/yacoob/beancount-aib/cleaner"
)

// Transaction type abbreviations, per
// https://aib.ie/our-products/current-accounts/keeping-track-of-your-transactions
var transactionTypes = cleaner.Translation{
	"atm":    "atm-aib",
	"atmldg": "atm-lodgement",
	"d/d":    "direct-debit",
	"inet":   "online-interface",
	"mobi":   "app",
	"msa":    "atm",
	"msp":    "point-of-sale",
	"op/":    "direct-debit",
	"pos":    "point-of-sale",
	"vda":    "atm",
	"vdc":    "contactless",
	"vdp":    "point-of-sale",
}

var paymentProcessors = cleaner.Translation{
	"sq": "square",
	"sp": "stripe",
}

// Payees at most this long keep their all-caps spelling when a branch name
// is split off; longer ones are capitalized.
const shortNameLength = 3

// Rules returns a fresh AIB rule table. Rule order is significant: each
// rule operates on the output of the ones before it.
func Rules() *cleaner.Extractors {
	return cleaner.NewExtractors(
		cleaner.NewRule("remove leading and trailing stars",
			`(^\*|\*$)`,
			cleaner.Consume()),
		cleaner.NewRule("remove stars next to a space",
			`( \*|\* )`,
			cleaner.Replace(" ")),
		cleaner.NewRule("extract transaction time",
			`(?i)(time)? *(\d\d:\d\d)$`,
			cleaner.Meta("time").From("$2"),
			cleaner.Consume()),
		cleaner.NewRule("handle non-Euro transactions",
			` ([\d.]+) ([A-Z]{3})@ [\d.]+`,
			cleaner.Meta("foreign-amount"),
			cleaner.Tag("$2"),
			cleaner.Consume()),
		cleaner.NewRule("extract transfer id",
			` *(IE\d+)`,
			cleaner.Meta("id"),
			cleaner.Consume()),
		cleaner.NewRule("extract Ryanair transaction id",
			`RYANAIR +(.+)`,
			cleaner.Meta("id"),
			cleaner.Replace("Ryanair")),
		// The id class requires a digit, so plain "FREENOW*TOPUP" style
		// suffixes are left alone.
		cleaner.NewRule("extract FreeNow transaction id",
			`FREENOW\*([A-Z-]*\d[A-Z\d-]*)`,
			cleaner.Meta("id"),
			cleaner.Replace("FreeNow")),
		cleaner.NewRule("determine transaction type",
			`(?i)^(vd[apc]|op/|atm|pos|mobi|inet|d/d|atmldg|ms[ap]|)[- ]`,
			cleaner.Tag("$1").Translate(transactionTypes),
			cleaner.Consume()),
		cleaner.NewRule("extract payment processor company",
			`(?i)^(paypal|sumup|sq|sp|zettle)[ _]`,
			cleaner.Meta("payment-processor").Translate(paymentProcessors).Transform(strings.ToLower),
			cleaner.Consume()),
		cleaner.NewRule("mark Google transactions 1/2",
			`(?i)^google +(.+)`,
			cleaner.Meta("payment-processor").From("google"),
			cleaner.Replace("$1")).
			Unless(`(?i)^google +(google|cloud|commerce|domain|ireland|music|payment|play|servic|svcs|store|youtub|voic)`),
		cleaner.NewRule("mark Google transactions 2/2",
			`(?i)^google +(payment|play|servic)`,
			cleaner.Meta("payment-processor").From("google"),
			cleaner.Replace("$0")),
		cleaner.NewRule("remove the date strings on non-fee transactions",
			`\d\d[A-Z]{3}\d\d *`,
			cleaner.Consume()).
			Unless(`TO \d\d[A-Z]{3}\d\d`),
		// behold the museum of Amazon payment strings >_<;
		cleaner.NewRule("Amazon transactions 1/4",
			`(?i)^(www.)?amazon((\.co)?\.[a-z]{2,3})(.*)`,
			cleaner.ReplaceWith(func(m cleaner.Match) string {
				return "Amazon" + strings.ToLower(m.Group(2)) + m.Group(4)
			})),
		cleaner.NewRule("Amazon transactions 2/4",
			`(?i)^amazon prime.*`,
			cleaner.Replace("Amazon Prime")),
		cleaner.NewRule("Amazon transactions 3/4",
			`(?i)^amazon [\d-]+`,
			cleaner.Replace("Amazon")),
		cleaner.NewRule("Amazon transactions 4/4",
			`(?i)^(amazon[^*]+)\*.*`,
			cleaner.Replace("$1")),
		cleaner.NewRule("handle branch/location information",
			`(?i)^(applegreen|boi|burger king|camile thai|centra|circle k|dunnes|eurospar|gamestop|mace|mcdonalds|michie sushi|pablo picante|park rite|penneys|pizza hut|polonez|spar|starbucks|supervalu|topaz|ubl|ulster bank|wh smith|zabka) +(.+)$`,
			cleaner.Meta("location").From("$2").Transform(strings.ToLower),
			cleaner.ReplaceWith(func(m cleaner.Match) string {
				name := m.Group(1)
				if len(name) <= shortNameLength {
					return strings.ToUpper(name)
				}
				return capitalize(name)
			})),
	)
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
