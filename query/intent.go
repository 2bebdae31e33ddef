// Package query maps free-text declarative queries to structured
// intents. Matching is keyword-based over a small fixed rule set, not
// general natural-language understanding: rules are evaluated in
// order, the first match wins, and anything unmatched falls back to a
// custom intent carrying the raw text.
package query

// Kind tags the intent variants the parser can emit.
type Kind string

const (
	KindCustomerOrders     Kind = "customer_orders"
	KindHighValueCustomers Kind = "high_value_customers"
	KindProductPopularity  Kind = "product_popularity"
	KindCategoryAnalysis   Kind = "category_analysis"
	KindCustom             Kind = "custom"
)

// Intent is the structured form of a parsed query. Only the fields
// belonging to the tagged Kind are meaningful.
type Intent struct {
	Kind Kind `json:"kind"`

	// customer_orders
	Threshold  int `json:"threshold,omitempty"`
	WindowDays int `json:"window_days,omitempty"`

	// high_value_customers
	Amount float64 `json:"amount,omitempty"`

	// product_popularity
	MinCustomers int `json:"min_customers,omitempty"`

	// category_analysis
	MinAvgPrice float64 `json:"min_avg_price,omitempty"`

	// Raw is the original query text, always preserved.
	Raw string `json:"raw"`

	// Defaulted lists parameters whose value could not be extracted
	// from the text and fell back to the documented default. Kept on
	// the intent so defaulting stays observable.
	Defaulted []string `json:"defaulted,omitempty"`
}

// Templates are the example query shapes the sandbox advertises.
// The first four map onto structured intents; the rest parse as custom.
var Templates = map[string]string{
	"customer_orders":      "FIND Customers who ordered more than {threshold} products in the last {days} days",
	"high_value_customers": "FIND Customers with total order value greater than ${amount}",
	"product_popularity":   "FIND Products ordered by more than {count} customers",
	"category_analysis":    "FIND Categories with average product price above ${price}",
	"recent_activity":      "FIND Orders placed in the last {days} days",
	"customer_loyalty":     "FIND Customers who have been active for more than {months} months",
}
