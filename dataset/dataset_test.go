package dataset

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSizes(t *testing.T) {
	d := Generate(GenerateConfig{Seed: 1})

	assert.Len(t, d.Customers, defaultCustomers)
	assert.Len(t, d.Products, defaultProducts)
	assert.Len(t, d.Orders, defaultOrders)
}

func TestGenerateIsDeterministic(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	a := Generate(GenerateConfig{Seed: 42, Now: now})
	b := Generate(GenerateConfig{Seed: 42, Now: now})

	assert.Equal(t, a, b)
}

func TestGenerateRecordShapes(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	d := Generate(GenerateConfig{Seed: 7, Now: now})

	assert.Equal(t, "CUST_001", d.Customers[0].ID)
	assert.Equal(t, "PROD_001", d.Products[0].ID)
	assert.Equal(t, "ORDER_001", d.Orders[0].ID)

	for _, c := range d.Customers {
		assert.True(t, c.JoinDate.Before(now))
		assert.GreaterOrEqual(t, c.TotalSpent, 50.0)
		assert.LessOrEqual(t, c.TotalSpent, 2000.0)
	}

	for _, p := range d.Products {
		assert.Contains(t, Categories, p.Category)
		assert.GreaterOrEqual(t, p.Price, 10.0)
		assert.LessOrEqual(t, p.Price, 500.0)
	}

	for _, o := range d.Orders {
		_, ok := d.CustomerByID(o.CustomerID)
		assert.True(t, ok, "order %s references unknown customer %s", o.ID, o.CustomerID)
		require.Len(t, o.ProductIDs, o.ProductCount)
		for _, pid := range o.ProductIDs {
			_, ok := d.ProductByID(pid)
			assert.True(t, ok, "order %s references unknown product %s", o.ID, pid)
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	d := Generate(GenerateConfig{Seed: 3, Customers: 4, Products: 3, Orders: 6, Now: now})

	path := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, Save(d, path))

	loaded, err := Load(path)
	require.NoError(t, err)

	require.Len(t, loaded.Customers, 4)
	require.Len(t, loaded.Orders, 6)
	assert.Equal(t, d.Customers[0].ID, loaded.Customers[0].ID)
	assert.Equal(t, d.Orders[0].ProductIDs, loaded.Orders[0].ProductIDs)
	assert.True(t, d.Orders[0].OrderDate.Equal(loaded.Orders[0].OrderDate))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLookupMisses(t *testing.T) {
	d := Generate(GenerateConfig{Seed: 1, Customers: 2, Products: 2, Orders: 2})

	_, ok := d.CustomerByID("CUST_999")
	assert.False(t, ok)
	_, ok = d.ProductByID("PROD_999")
	assert.False(t, ok)
}
