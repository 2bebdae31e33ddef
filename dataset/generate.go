package dataset

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Categories are the fixed catalog categories of the fixture.
var Categories = []string{"Electronics", "Clothing", "Books", "Home & Garden", "Sports"}

// GenerateConfig controls fixture generation.
type GenerateConfig struct {
	// Seed drives the random source. The same seed and sizes always
	// produce the same fixture.
	Seed int64

	// Customers, Products, and Orders are collection sizes. Zero means
	// the default size.
	Customers int
	Products  int
	Orders    int

	// Now is the reference clock order dates are generated relative
	// to. Zero means time.Now().
	Now time.Time
}

const (
	defaultCustomers = 20
	defaultProducts  = 15
	defaultOrders    = 50
)

func (c *GenerateConfig) applyDefaults() {
	if c.Customers <= 0 {
		c.Customers = defaultCustomers
	}
	if c.Products <= 0 {
		c.Products = defaultProducts
	}
	if c.Orders <= 0 {
		c.Orders = defaultOrders
	}
	if c.Now.IsZero() {
		c.Now = time.Now()
	}
}

// Generate produces a synthetic fixture. Customers joined 30-365 days
// before the reference clock, orders were placed 1-90 days before it,
// and each order's product lines are assigned to catalog products at
// generation time.
func Generate(cfg GenerateConfig) *Dataset {
	cfg.applyDefaults()
	rng := rand.New(rand.NewSource(cfg.Seed))

	customers := make([]Customer, 0, cfg.Customers)
	for i := 1; i <= cfg.Customers; i++ {
		customers = append(customers, Customer{
			ID:          fmt.Sprintf("CUST_%03d", i),
			Name:        fmt.Sprintf("Customer %d", i),
			Email:       fmt.Sprintf("customer%d@example.com", i),
			JoinDate:    cfg.Now.AddDate(0, 0, -randBetween(rng, 30, 365)),
			TotalOrders: randBetween(rng, 1, 15),
			TotalSpent:  round2(randFloat(rng, 50, 2000)),
		})
	}

	products := make([]Product, 0, cfg.Products)
	for i := 1; i <= cfg.Products; i++ {
		products = append(products, Product{
			ID:          fmt.Sprintf("PROD_%03d", i),
			Name:        fmt.Sprintf("Product %d", i),
			Price:       round2(randFloat(rng, 10, 500)),
			Category:    Categories[rng.Intn(len(Categories))],
			OrdersCount: randBetween(rng, 1, 8),
		})
	}

	orders := make([]Order, 0, cfg.Orders)
	for i := 1; i <= cfg.Orders; i++ {
		customer := customers[rng.Intn(len(customers))]
		productCount := randBetween(rng, 1, 5)
		productIDs := make([]string, 0, productCount)
		for range productCount {
			productIDs = append(productIDs, products[rng.Intn(len(products))].ID)
		}
		orders = append(orders, Order{
			ID:           fmt.Sprintf("ORDER_%03d", i),
			CustomerID:   customer.ID,
			CustomerName: customer.Name,
			OrderDate:    cfg.Now.AddDate(0, 0, -randBetween(rng, 1, 90)),
			TotalAmount:  round2(randFloat(rng, 25, 300)),
			ProductCount: productCount,
			ProductIDs:   productIDs,
		})
	}

	return &Dataset{
		Customers: customers,
		Products:  products,
		Orders:    orders,
	}
}

// randBetween returns an int in [low, high] inclusive.
func randBetween(rng *rand.Rand, low, high int) int {
	return low + rng.Intn(high-low+1)
}

func randFloat(rng *rand.Rand, low, high float64) float64 {
	return low + rng.Float64()*(high-low)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
