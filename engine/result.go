// Package engine interprets structured query intents against a
// dataset snapshot and produces tabular results. Execution is a pure
// function of (intent, dataset, reference clock): no shared state, no
// I/O, and concurrent executions over independent inputs are safe.
package engine

// Column names shared by the per-intent output schemas. Each intent
// defines its own fixed column set; there is no implicit union.
const (
	ColCustomerID      = "Customer ID"
	ColCustomerName    = "Customer Name"
	ColCustomerEmail   = "Email"
	ColProductsOrdered = "Products Ordered"
	ColTotalSpent      = "Total Spent"
	ColTotalOrders     = "Total Orders"
	ColJoinDate        = "Join Date"

	ColProductID   = "Product ID"
	ColProductName = "Product Name"
	ColOrdersCount = "Orders Count"
	ColPrice       = "Price"
	ColCategory    = "Category"

	ColAveragePrice = "Average Price"
	ColProductCount = "Product Count"
	ColMinPrice     = "Min Price"
	ColMaxPrice     = "Max Price"
)

// Row maps column names to scalar values.
type Row map[string]any

// Result is an ordered sequence of fixed-shape rows. Row order is
// group-discovery order; callers sort for display if they want to.
type Result struct {
	// Columns fixes the column set and its display order for every row.
	Columns []string

	// Rows holds the result rows. Empty matches yield zero rows, not
	// an error.
	Rows []Row
}

// Len returns the number of rows.
func (r *Result) Len() int { return len(r.Rows) }

// Cells returns one row's values in column order, formatted with %v
// semantics left to the caller.
func (r *Result) Cells(i int) []any {
	cells := make([]any, len(r.Columns))
	for j, col := range r.Columns {
		cells[j] = r.Rows[i][col]
	}
	return cells
}
