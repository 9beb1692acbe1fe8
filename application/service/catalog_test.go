package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfware/stockwise/domain/catalog"
	"github.com/shelfware/stockwise/infrastructure/persistence"
	"github.com/shelfware/stockwise/internal/testdb"
)

func newCatalogFixture(t *testing.T) (*CatalogService, catalog.ProductStore, catalog.SaleStore) {
	t.Helper()
	db := testdb.New(t)
	products := persistence.NewProductStore(db)
	sales := persistence.NewSaleStore(db)
	return NewCatalogService(products, sales, nil), products, sales
}

func TestCreateSale_DecrementsStock(t *testing.T) {
	svc, products, _ := newCatalogFixture(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, catalog.NewProduct("Milk", "DairyCo", "Dairy", 10, 30))
	require.NoError(t, err)

	sale, err := svc.CreateSale(ctx, catalog.NewSale(product.ID(), 12, time.Now(), 120))
	require.NoError(t, err)
	assert.NotZero(t, sale.ID())

	remaining, err := products.Get(ctx, product.ID())
	require.NoError(t, err)
	assert.Equal(t, 18, remaining.Quantity())
}

func TestCreateSale_DerivesTotalPrice(t *testing.T) {
	svc, _, _ := newCatalogFixture(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, catalog.NewProduct("Milk", "DairyCo", "Dairy", 2.50, 30))
	require.NoError(t, err)

	sale, err := svc.CreateSale(ctx, catalog.NewSale(product.ID(), 4, time.Now(), 0))
	require.NoError(t, err)
	assert.InDelta(t, 10.0, sale.TotalPrice(), 1e-9)
}

func TestCreateSale_InsufficientStock(t *testing.T) {
	svc, products, _ := newCatalogFixture(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, catalog.NewProduct("Milk", "DairyCo", "Dairy", 10, 5))
	require.NoError(t, err)

	_, err = svc.CreateSale(ctx, catalog.NewSale(product.ID(), 6, time.Now(), 60))
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// Stock untouched on rejection.
	unchanged, err := products.Get(ctx, product.ID())
	require.NoError(t, err)
	assert.Equal(t, 5, unchanged.Quantity())
}

func TestCreateSale_ProductMissing(t *testing.T) {
	svc, _, _ := newCatalogFixture(t)

	_, err := svc.CreateSale(context.Background(), catalog.NewSale(999, 1, time.Now(), 10))
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestDeleteSale_RestoresStock(t *testing.T) {
	svc, products, _ := newCatalogFixture(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, catalog.NewProduct("Milk", "DairyCo", "Dairy", 10, 30))
	require.NoError(t, err)
	sale, err := svc.CreateSale(ctx, catalog.NewSale(product.ID(), 10, time.Now(), 100))
	require.NoError(t, err)

	_, err = svc.DeleteSale(ctx, sale.ID())
	require.NoError(t, err)

	restored, err := products.Get(ctx, product.ID())
	require.NoError(t, err)
	assert.Equal(t, 30, restored.Quantity())

	_, err = svc.GetSale(ctx, sale.ID())
	assert.ErrorIs(t, err, catalog.ErrSaleNotFound)
}

func TestUpdateSale_AdjustsStockBothWays(t *testing.T) {
	svc, products, _ := newCatalogFixture(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, catalog.NewProduct("Milk", "DairyCo", "Dairy", 10, 30))
	require.NoError(t, err)
	sale, err := svc.CreateSale(ctx, catalog.NewSale(product.ID(), 10, time.Now(), 100))
	require.NoError(t, err)

	// 30 - 10 = 20 on hand; updating the sale to 5 units frees 5 back.
	updated, err := svc.UpdateSale(ctx, sale.ID(), catalog.NewSale(product.ID(), 5, time.Now(), 50))
	require.NoError(t, err)
	assert.Equal(t, 5, updated.QuantitySold())

	after, err := products.Get(ctx, product.ID())
	require.NoError(t, err)
	assert.Equal(t, 25, after.Quantity())
}

func TestUpdateSale_InsufficientStockReverts(t *testing.T) {
	svc, products, _ := newCatalogFixture(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, catalog.NewProduct("Milk", "DairyCo", "Dairy", 10, 10))
	require.NoError(t, err)
	sale, err := svc.CreateSale(ctx, catalog.NewSale(product.ID(), 5, time.Now(), 50))
	require.NoError(t, err)

	// 5 on hand + 5 restored = 10 available; 11 is still too many.
	_, err = svc.UpdateSale(ctx, sale.ID(), catalog.NewSale(product.ID(), 11, time.Now(), 110))
	assert.ErrorIs(t, err, ErrInsufficientStock)

	after, err := products.Get(ctx, product.ID())
	require.NoError(t, err)
	assert.Equal(t, 5, after.Quantity())
}

func TestUpdateProduct(t *testing.T) {
	svc, _, _ := newCatalogFixture(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, catalog.NewProduct("Milk", "DairyCo", "Dairy", 10, 30))
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(ctx, product.ID(),
		catalog.NewProduct("Whole Milk", "DairyCo", "Dairy", 12, 25).WithCostPrice(7))
	require.NoError(t, err)

	assert.Equal(t, product.ID(), updated.ID())
	assert.Equal(t, "Whole Milk", updated.Name())
	assert.Equal(t, 12.0, updated.Price())
	cp, ok := updated.CostPrice()
	require.True(t, ok)
	assert.Equal(t, 7.0, cp)
}

func TestImportProductsCSV(t *testing.T) {
	svc, products, _ := newCatalogFixture(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, catalog.NewProduct("Milk", "DairyCo", "Dairy", 10, 30))
	require.NoError(t, err)

	csvData := strings.Join([]string{
		"name,brand,quantity,price,category,expiry_date",
		"Milk,DairyCo,10,9.5,Dairy,",          // duplicate name, skipped
		"Eggs,FarmCo,100,4.2,Dairy,2026-12-01", // added
		"Rice,GrainCo,bad,3,Staples,",          // invalid quantity
		"Bread,BakeCo,20,2.5,Bakery,01-12-2026", // bad date format
	}, "\n")

	result, err := svc.ImportProductsCSV(ctx, strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 4, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Error, "invalid quantity")
	assert.Equal(t, 5, result.Errors[1].Row)
	assert.Contains(t, result.Errors[1].Error, "expected YYYY-MM-DD")

	eggs, err := products.FindByName(ctx, "Eggs")
	require.NoError(t, err)
	expiry, ok := eggs.ExpiryDate()
	require.True(t, ok)
	assert.Equal(t, "2026-12-01", expiry.Format("2006-01-02"))
}

func TestImportProductsCSV_MissingColumn(t *testing.T) {
	svc, _, _ := newCatalogFixture(t)

	_, err := svc.ImportProductsCSV(context.Background(), strings.NewReader("name,brand,quantity,price\nMilk,B,1,2"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing column: category")
}

func TestImportProductsCSV_AllRowsFail(t *testing.T) {
	svc, _, _ := newCatalogFixture(t)

	csvData := "name,brand,quantity,price,category\nMilk,B,x,2,C"
	result, err := svc.ImportProductsCSV(context.Background(), strings.NewReader(csvData))
	require.Error(t, err)
	assert.Equal(t, 0, result.Added)
	assert.Len(t, result.Errors, 1)
}
