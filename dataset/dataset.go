// Package dataset defines the synthetic relational fixture the query
// engine runs against: three related record collections (customers,
// products, orders). Snapshots are consumed read-only by the engine;
// this package generates them and round-trips them through YAML so
// externally produced fixtures can be supplied instead.
package dataset

import "time"

// Customer is one customer record.
type Customer struct {
	ID          string    `yaml:"id" json:"id"`
	Name        string    `yaml:"name" json:"name"`
	Email       string    `yaml:"email" json:"email"`
	JoinDate    time.Time `yaml:"join_date" json:"join_date"`
	TotalOrders int       `yaml:"total_orders" json:"total_orders"`
	TotalSpent  float64   `yaml:"total_spent" json:"total_spent"`
}

// Product is one catalog record.
type Product struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Price       float64 `yaml:"price" json:"price"`
	Category    string  `yaml:"category" json:"category"`
	OrdersCount int     `yaml:"orders_count" json:"orders_count"`
}

// Order is one order record. CustomerID references Customer.ID but the
// link is not globally enforced; the engine reports an integrity fault
// when a query needs the referenced record and it is missing.
type Order struct {
	ID           string    `yaml:"id" json:"id"`
	CustomerID   string    `yaml:"customer_id" json:"customer_id"`
	CustomerName string    `yaml:"customer_name" json:"customer_name"`
	OrderDate    time.Time `yaml:"order_date" json:"order_date"`
	TotalAmount  float64   `yaml:"total_amount" json:"total_amount"`
	ProductCount int       `yaml:"product_count" json:"product_count"`

	// ProductIDs is the fixed product assignment for this order's
	// lines, one entry per counted product. Fixing the assignment at
	// generation time keeps popularity queries reproducible for a
	// given fixture.
	ProductIDs []string `yaml:"product_ids" json:"product_ids"`
}

// Dataset is an immutable fixture snapshot.
type Dataset struct {
	Customers []Customer `yaml:"customers" json:"customers"`
	Products  []Product  `yaml:"products" json:"products"`
	Orders    []Order    `yaml:"orders" json:"orders"`
}

// CustomerByID returns the customer with the given id.
func (d *Dataset) CustomerByID(id string) (Customer, bool) {
	for _, c := range d.Customers {
		if c.ID == id {
			return c, true
		}
	}
	return Customer{}, false
}

// ProductByID returns the product with the given id.
func (d *Dataset) ProductByID(id string) (Product, bool) {
	for _, p := range d.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
