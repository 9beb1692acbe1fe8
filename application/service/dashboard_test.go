package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfware/stockwise/domain/catalog"
	"github.com/shelfware/stockwise/infrastructure/persistence"
	"github.com/shelfware/stockwise/internal/config"
	"github.com/shelfware/stockwise/internal/testdb"
)

func TestDashboardSummary(t *testing.T) {
	db := testdb.New(t)
	products := persistence.NewProductStore(db)
	sales := persistence.NewSaleStore(db)
	ctx := context.Background()

	milk, err := products.Save(ctx, catalog.NewProduct("Milk", "DairyCo", "Dairy", 10, 5).
		WithExpiryDate(time.Now().Add(7*24*time.Hour)))
	require.NoError(t, err)
	_, err = products.Save(ctx, catalog.NewProduct("Rice", "GrainCo", "Staples", 4, 100))
	require.NoError(t, err)

	_, err = sales.Save(ctx, catalog.NewSale(milk.ID(), 10, time.Now(), 100))
	require.NoError(t, err)
	_, err = sales.Save(ctx, catalog.NewSale(milk.ID(), 5, time.Now(), 50))
	require.NoError(t, err)

	svc := NewDashboardService(products, sales, config.NewAppConfig())
	summary, err := svc.Summary(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), summary.TotalProducts)
	assert.Equal(t, int64(105), summary.TotalStock)
	assert.Equal(t, 450.0, summary.InventoryValue) // 10*5 + 4*100
	assert.Equal(t, int64(1), summary.LowStockProducts)
	assert.Equal(t, int64(1), summary.ExpiringProducts)
	assert.Equal(t, int64(2), summary.TotalSales)
	assert.Equal(t, 150.0, summary.TotalRevenue)
	assert.Equal(t, int64(15), summary.TotalQuantitySold)
	assert.Equal(t, 75.0, summary.AverageOrderValue)
}

func TestDashboardSummary_Empty(t *testing.T) {
	db := testdb.New(t)
	svc := NewDashboardService(persistence.NewProductStore(db), persistence.NewSaleStore(db), config.NewAppConfig())

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Zero(t, summary.TotalProducts)
	assert.Zero(t, summary.TotalRevenue)
	assert.Zero(t, summary.AverageOrderValue)
}
