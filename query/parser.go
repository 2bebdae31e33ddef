package query

import (
	"regexp"
	"strconv"
	"strings"
)

// Parameter defaults substituted when a numeric token is absent.
const (
	DefaultThreshold    = 2
	DefaultWindowDays   = 30
	DefaultAmount       = 500
	DefaultMinCustomers = 3
	DefaultMinAvgPrice  = 100
)

var (
	moreThanPattern = regexp.MustCompile(`more than (\d+)`)
	lastDaysPattern = regexp.MustCompile(`last (\d+) days`)
	dollarPattern   = regexp.MustCompile(`\$(\d+)`)
)

// rule is one entry of the ordered intent-matching table. match runs
// against the lowercased text; build receives both the original and
// lowercased forms because dollar amounts are extracted case-preserving.
type rule struct {
	kind  Kind
	match func(lower string) bool
	build func(raw, lower string) Intent
}

// rules is evaluated top to bottom; the first match wins and no rule
// is re-evaluated. Order is part of the parser contract.
var rules = []rule{
	{
		kind: KindCustomerOrders,
		match: func(lower string) bool {
			return strings.Contains(lower, "customer") &&
				strings.Contains(lower, "order") &&
				strings.Contains(lower, "more than")
		},
		build: func(raw, lower string) Intent {
			intent := Intent{Kind: KindCustomerOrders, Raw: raw}
			intent.Threshold = extractInt(moreThanPattern, lower, DefaultThreshold, "threshold", &intent)
			intent.WindowDays = extractInt(lastDaysPattern, lower, DefaultWindowDays, "window_days", &intent)
			return intent
		},
	},
	{
		kind: KindHighValueCustomers,
		match: func(lower string) bool {
			return strings.Contains(lower, "total order value") ||
				strings.Contains(lower, "total spent")
		},
		build: func(raw, lower string) Intent {
			intent := Intent{Kind: KindHighValueCustomers, Raw: raw}
			intent.Amount = float64(extractInt(dollarPattern, raw, DefaultAmount, "amount", &intent))
			return intent
		},
	},
	{
		kind: KindProductPopularity,
		match: func(lower string) bool {
			return strings.Contains(lower, "product") &&
				strings.Contains(lower, "ordered by")
		},
		build: func(raw, lower string) Intent {
			intent := Intent{Kind: KindProductPopularity, Raw: raw}
			intent.MinCustomers = extractInt(moreThanPattern, lower, DefaultMinCustomers, "min_customers", &intent)
			return intent
		},
	},
	{
		kind: KindCategoryAnalysis,
		match: func(lower string) bool {
			// "categor" covers both "category" and "categories"
			return strings.Contains(lower, "categor") &&
				strings.Contains(lower, "average price")
		},
		build: func(raw, lower string) Intent {
			intent := Intent{Kind: KindCategoryAnalysis, Raw: raw}
			intent.MinAvgPrice = float64(extractInt(dollarPattern, raw, DefaultMinAvgPrice, "min_avg_price", &intent))
			return intent
		},
	},
}

// Parse maps query text to an intent. Parse is total: every input,
// however malformed, yields a well-formed intent and malformed numeric
// tokens fall back to defaults rather than failing.
func Parse(text string) Intent {
	lower := strings.ToLower(text)

	for _, r := range rules {
		if r.match(lower) {
			return r.build(text, lower)
		}
	}

	return Intent{Kind: KindCustom, Raw: text}
}

// extractInt pulls the first numeric token matching pattern. When no
// token is present (or it overflows), def is substituted and the
// parameter name is recorded on the intent.
func extractInt(pattern *regexp.Regexp, text string, def int, name string, intent *Intent) int {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		intent.Defaulted = append(intent.Defaulted, name)
		return def
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		intent.Defaulted = append(intent.Defaulted, name)
		return def
	}
	return n
}
