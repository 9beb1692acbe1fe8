package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfware/stockwise/domain/catalog"
	"github.com/shelfware/stockwise/infrastructure/persistence"
	"github.com/shelfware/stockwise/internal/testdb"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestProjectProduct_FullProfile(t *testing.T) {
	cp := 6.0
	sales := []catalog.Sale{
		catalog.ReconstructSale(1, 1, 10, date(2026, time.January, 5), 100, "Milk"),
		catalog.ReconstructSale(2, 1, 5, date(2026, time.January, 20), 50, "Milk"),
		catalog.ReconstructSale(3, 1, 15, date(2026, time.February, 2), 150, "Milk"),
	}
	ed := date(2026, time.December, 31)
	product := catalog.ReconstructProduct(1, "Milk", "DairyCo", "Dairy", 10, &cp, 30, &ed, sales)

	doc := ProjectProduct(product)

	assert.Equal(t, "product_1", doc.ID())
	text := doc.Text()

	assert.Contains(t, text, "Product Name: Milk\n")
	assert.Contains(t, text, "Brand: DairyCo\n")
	assert.Contains(t, text, "Category: Dairy\n")
	assert.Contains(t, text, "Current Stock: 30\n")
	assert.Contains(t, text, "Retail Price: $10.00\n")
	assert.Contains(t, text, "Cost Price: $6.00\n")
	assert.Contains(t, text, "Expiry Date: 2026-12-31\n")
	assert.Contains(t, text, "Profit Margin: 40.00%\n")

	assert.Contains(t, text, "--- Lifetime Performance ---")
	assert.Contains(t, text, "Total Units Sold: 30\n")
	assert.Contains(t, text, "Total Revenue: $300.00\n")
	assert.Contains(t, text, "Estimated Total Profit: $120.00\n")

	// Months appear chronologically.
	assert.Contains(t, text, "- 2026-01: 15 units\n- 2026-02: 15 units\n")
	assert.Contains(t, text, "Sales Velocity: 15.00 units/month\n")
	assert.Contains(t, text, "Estimated Stock Duration: 2.0 months\n")
	assert.Contains(t, text, "Stock-Out Risk: Low\n")

	meta := doc.Metadata()
	assert.Equal(t, "product", meta["type"])
	assert.Equal(t, int64(1), meta["product_id"])
	assert.Equal(t, "Milk", meta["product_name"])
}

func TestProjectProduct_MissingOptionals(t *testing.T) {
	product := catalog.ReconstructProduct(2, "Rice", "GrainCo", "Staples", 4, nil, 100, nil, nil)

	text := ProjectProduct(product).Text()

	assert.Contains(t, text, "Cost Price: N/A\n")
	assert.Contains(t, text, "Expiry Date: N/A\n")
	assert.Contains(t, text, "Profit Margin: N/A\n")
	assert.Contains(t, text, "No sales history available for this product.")
	assert.NotContains(t, text, "Lifetime Performance")
}

func TestProjectProduct_StockOutRisk(t *testing.T) {
	// 20 units sold in one month, 10 in stock: under a month left.
	sales := []catalog.Sale{
		catalog.ReconstructSale(1, 3, 20, date(2026, time.March, 1), 200, "Eggs"),
	}
	product := catalog.ReconstructProduct(3, "Eggs", "FarmCo", "Dairy", 10, nil, 10, nil, sales)

	text := ProjectProduct(product).Text()
	assert.Contains(t, text, "Stock-Out Risk: High (less than 1 month of stock remaining)\n")

	product = catalog.ReconstructProduct(3, "Eggs", "FarmCo", "Dairy", 10, nil, 30, nil, sales)
	text = ProjectProduct(product).Text()
	assert.Contains(t, text, "Stock-Out Risk: Medium (1-2 months of stock remaining)\n")
}

func TestProjectSale(t *testing.T) {
	sale := catalog.ReconstructSale(7, 3, 4, date(2026, time.May, 12), 150, "Milk")

	doc := ProjectSale(sale)

	assert.Equal(t, "sale_7", doc.ID())
	assert.Equal(t, "Sale: Product: Milk. Quantity sold: 4. Date: 2026-05-12. Total: 150.0.", doc.Text())

	meta := doc.Metadata()
	assert.Equal(t, "sale", meta["type"])
	assert.Equal(t, int64(7), meta["sale_id"])
	assert.Equal(t, int64(3), meta["product_id"])
}

func TestProjectSale_MissingProduct(t *testing.T) {
	sale := catalog.ReconstructSale(8, 42, 1, date(2026, time.May, 12), 9.5, "")

	text := ProjectSale(sale).Text()
	assert.Contains(t, text, "Product: product_id_42.")
	assert.Contains(t, text, "Total: 9.5.")
}

func TestProjector_ProjectAll(t *testing.T) {
	db := testdb.New(t)
	products := persistence.NewProductStore(db)
	sales := persistence.NewSaleStore(db)
	ctx := context.Background()

	product, err := products.Save(ctx, catalog.NewProduct("Milk", "DairyCo", "Dairy", 10, 30))
	require.NoError(t, err)
	_, err = sales.Save(ctx, catalog.NewSale(product.ID(), 2, date(2026, time.June, 1), 20))
	require.NoError(t, err)

	projector := NewProjector(products, sales)
	docs, err := projector.ProjectAll(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "product_1", docs[0].ID())
	assert.Equal(t, "sale_1", docs[1].ID())
	assert.Contains(t, docs[1].Text(), "Product: Milk.")
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "150.0", formatNumber(150))
	assert.Equal(t, "150.5", formatNumber(150.5))
	assert.Equal(t, "0.0", formatNumber(0))
	assert.Equal(t, "19.99", formatNumber(19.99))
}
