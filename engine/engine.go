package engine

import (
	"math"
	"time"

	"github.com/c360studio/schemalab/dataset"
	"github.com/c360studio/schemalab/query"
)

const dateLayout = "2006-01-02"

// Execute evaluates a structured intent against a dataset snapshot.
// now is the reference clock for the recency window of customer_orders.
// The dataset is consumed read-only; the only error condition is a
// dangling cross-collection reference, returned as *IntegrityError.
func Execute(intent query.Intent, ds *dataset.Dataset, now time.Time) (*Result, error) {
	switch intent.Kind {
	case query.KindCustomerOrders:
		return executeCustomerOrders(intent, ds, now)
	case query.KindHighValueCustomers:
		return executeHighValueCustomers(intent, ds), nil
	case query.KindProductPopularity:
		return executeProductPopularity(intent, ds)
	case query.KindCategoryAnalysis:
		return executeCategoryAnalysis(intent, ds), nil
	default:
		return executeCustom(ds), nil
	}
}

// executeCustomerOrders filters orders to the recency window, sums
// product counts per customer, and keeps customers strictly above the
// threshold, joined to their customer record.
func executeCustomerOrders(intent query.Intent, ds *dataset.Dataset, now time.Time) (*Result, error) {
	cutoff := now.AddDate(0, 0, -intent.WindowDays)

	counts := make(map[string]int)
	var order []string // group-discovery order
	for _, o := range ds.Orders {
		if o.OrderDate.Before(cutoff) {
			continue
		}
		if _, seen := counts[o.CustomerID]; !seen {
			order = append(order, o.CustomerID)
		}
		counts[o.CustomerID] += o.ProductCount
	}

	result := &Result{Columns: []string{
		ColCustomerID, ColCustomerName, ColProductsOrdered, ColTotalSpent, ColJoinDate,
	}}

	for _, customerID := range order {
		count := counts[customerID]
		if count <= intent.Threshold {
			continue
		}

		customer, ok := ds.CustomerByID(customerID)
		if !ok {
			return nil, &IntegrityError{
				Collection: "customers",
				Key:        customerID,
				Referent:   "filtered orders",
			}
		}

		result.Rows = append(result.Rows, Row{
			ColCustomerID:      customer.ID,
			ColCustomerName:    customer.Name,
			ColProductsOrdered: count,
			ColTotalSpent:      customer.TotalSpent,
			ColJoinDate:        customer.JoinDate.Format(dateLayout),
		})
	}

	return result, nil
}

// executeHighValueCustomers keeps customers whose total spent strictly
// exceeds the amount, in collection order.
func executeHighValueCustomers(intent query.Intent, ds *dataset.Dataset) *Result {
	result := &Result{Columns: []string{
		ColCustomerID, ColCustomerName, ColTotalSpent, ColTotalOrders, ColJoinDate,
	}}

	for _, customer := range ds.Customers {
		if customer.TotalSpent <= intent.Amount {
			continue
		}
		result.Rows = append(result.Rows, Row{
			ColCustomerID:   customer.ID,
			ColCustomerName: customer.Name,
			ColTotalSpent:   customer.TotalSpent,
			ColTotalOrders:  customer.TotalOrders,
			ColJoinDate:     customer.JoinDate.Format(dateLayout),
		})
	}

	return result
}

// executeProductPopularity counts product-order events from each
// order's fixed product assignment and keeps products whose count
// strictly exceeds the minimum, in discovery order.
func executeProductPopularity(intent query.Intent, ds *dataset.Dataset) (*Result, error) {
	counts := make(map[string]int)
	referents := make(map[string]string) // product ID -> first referencing order
	var order []string
	for _, o := range ds.Orders {
		for _, productID := range o.ProductIDs {
			if _, seen := counts[productID]; !seen {
				order = append(order, productID)
				referents[productID] = "order " + o.ID
			}
			counts[productID]++
		}
	}

	result := &Result{Columns: []string{
		ColProductID, ColProductName, ColOrdersCount, ColPrice, ColCategory,
	}}

	for _, productID := range order {
		count := counts[productID]
		if count <= intent.MinCustomers {
			continue
		}

		product, ok := ds.ProductByID(productID)
		if !ok {
			return nil, &IntegrityError{
				Collection: "products",
				Key:        productID,
				Referent:   referents[productID],
			}
		}

		result.Rows = append(result.Rows, Row{
			ColProductID:   product.ID,
			ColProductName: product.Name,
			ColOrdersCount: count,
			ColPrice:       product.Price,
			ColCategory:    product.Category,
		})
	}

	return result, nil
}

// executeCategoryAnalysis groups products by category and keeps
// categories whose arithmetic mean price strictly exceeds the minimum.
func executeCategoryAnalysis(intent query.Intent, ds *dataset.Dataset) *Result {
	prices := make(map[string][]float64)
	var order []string
	for _, product := range ds.Products {
		if _, seen := prices[product.Category]; !seen {
			order = append(order, product.Category)
		}
		prices[product.Category] = append(prices[product.Category], product.Price)
	}

	result := &Result{Columns: []string{
		ColCategory, ColAveragePrice, ColProductCount, ColMinPrice, ColMaxPrice,
	}}

	for _, category := range order {
		categoryPrices := prices[category]

		sum := 0.0
		minPrice := categoryPrices[0]
		maxPrice := categoryPrices[0]
		for _, p := range categoryPrices {
			sum += p
			minPrice = math.Min(minPrice, p)
			maxPrice = math.Max(maxPrice, p)
		}

		average := sum / float64(len(categoryPrices))
		if average <= intent.MinAvgPrice {
			continue
		}

		result.Rows = append(result.Rows, Row{
			ColCategory:     category,
			ColAveragePrice: math.Round(average*100) / 100,
			ColProductCount: len(categoryPrices),
			ColMinPrice:     minPrice,
			ColMaxPrice:     maxPrice,
		})
	}

	return result
}

// executeCustom is the documented fallback for unmatched query text:
// the full customers collection, unmodified and in collection order.
func executeCustom(ds *dataset.Dataset) *Result {
	result := &Result{Columns: []string{
		ColCustomerID, ColCustomerName, ColCustomerEmail, ColTotalOrders, ColTotalSpent, ColJoinDate,
	}}

	for _, customer := range ds.Customers {
		result.Rows = append(result.Rows, Row{
			ColCustomerID:    customer.ID,
			ColCustomerName:  customer.Name,
			ColCustomerEmail: customer.Email,
			ColTotalOrders:   customer.TotalOrders,
			ColTotalSpent:    customer.TotalSpent,
			ColJoinDate:      customer.JoinDate.Format(dateLayout),
		})
	}

	return result
}
