// Package service provides application layer services that orchestrate
// domain operations.
package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shelfware/stockwise/domain/catalog"
	"github.com/shelfware/stockwise/domain/retrieval"
)

// Projector renders catalog rows as plain-text documents for the semantic
// index. Product documents carry the full performance profile derived from
// the sales history; sale documents are one-line records.
type Projector struct {
	products catalog.ProductStore
	sales    catalog.SaleStore
}

// NewProjector creates a new Projector.
func NewProjector(products catalog.ProductStore, sales catalog.SaleStore) *Projector {
	return &Projector{products: products, sales: sales}
}

// ProjectAll renders every product and sale as a document. Document IDs are
// derived from the entity type and primary key ("product_7", "sale_12") and
// stay stable across re-indexing.
func (p *Projector) ProjectAll(ctx context.Context) ([]retrieval.Document, error) {
	products, err := p.products.ListWithSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	sales, err := p.sales.ListWithProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}

	docs := make([]retrieval.Document, 0, len(products)+len(sales))
	for _, product := range products {
		docs = append(docs, ProjectProduct(product))
	}
	for _, sale := range sales {
		docs = append(docs, ProjectSale(sale))
	}
	return docs, nil
}

// ProjectProduct renders a product and its sales history as a document.
func ProjectProduct(product catalog.Product) retrieval.Document {
	var b strings.Builder

	costPrice := "N/A"
	if cp, ok := product.CostPrice(); ok {
		costPrice = fmt.Sprintf("$%.2f", cp)
	}
	expiry := "N/A"
	if ed, ok := product.ExpiryDate(); ok {
		expiry = ed.Format("2006-01-02")
	}

	fmt.Fprintf(&b, "Product Name: %s\n", product.Name())
	fmt.Fprintf(&b, "Brand: %s\n", product.Brand())
	fmt.Fprintf(&b, "Category: %s\n", product.Category())
	fmt.Fprintf(&b, "Current Stock: %d\n", product.Quantity())
	fmt.Fprintf(&b, "Retail Price: $%.2f\n", product.Price())
	fmt.Fprintf(&b, "Cost Price: %s\n", costPrice)
	fmt.Fprintf(&b, "Expiry Date: %s\n", expiry)

	margin := "N/A"
	if m, ok := product.ProfitMargin(); ok {
		margin = fmt.Sprintf("%.2f%%", m)
	}
	fmt.Fprintf(&b, "Profit Margin: %s\n", margin)

	sales := product.Sales()
	if len(sales) > 0 {
		writeSalesHistory(&b, product, sales)
	} else {
		b.WriteString("\nNo sales history available for this product.\n")
	}

	return retrieval.NewDocument(
		fmt.Sprintf("product_%d", product.ID()),
		b.String(),
		retrieval.Metadata{
			"type":         "product",
			"product_id":   product.ID(),
			"product_name": product.Name(),
			"quantity":     product.Quantity(),
		},
	)
}

func writeSalesHistory(b *strings.Builder, product catalog.Product, sales []catalog.Sale) {
	var totalUnits int
	var totalRevenue, totalProfit float64
	costPrice, hasCost := product.CostPrice()

	monthly := map[string]int{}
	for _, sale := range sales {
		totalUnits += sale.QuantitySold()
		totalRevenue += sale.TotalPrice()
		if hasCost {
			totalProfit += sale.TotalPrice() - costPrice*float64(sale.QuantitySold())
		}
		monthly[sale.SaleDate().Format("2006-01")] += sale.QuantitySold()
	}

	b.WriteString("\n--- Lifetime Performance ---\n")
	fmt.Fprintf(b, "Total Units Sold: %d\n", totalUnits)
	fmt.Fprintf(b, "Total Revenue: $%.2f\n", totalRevenue)
	fmt.Fprintf(b, "Estimated Total Profit: $%.2f\n", totalProfit)

	months := make([]string, 0, len(monthly))
	for month := range monthly {
		months = append(months, month)
	}
	sort.Strings(months)

	b.WriteString("\n--- Monthly Sales Volume ---\n")
	for _, month := range months {
		fmt.Fprintf(b, "- %s: %d units\n", month, monthly[month])
	}

	velocity := float64(totalUnits) / float64(len(months))
	fmt.Fprintf(b, "\nSales Velocity: %.2f units/month\n", velocity)

	duration := math.Inf(1)
	risk := "Low"
	if velocity > 0 {
		duration = float64(product.Quantity()) / velocity
		if duration < 1 {
			risk = "High (less than 1 month of stock remaining)"
		} else if duration < 2 {
			risk = "Medium (1-2 months of stock remaining)"
		}
	}
	fmt.Fprintf(b, "Estimated Stock Duration: %.1f months\n", duration)
	fmt.Fprintf(b, "Stock-Out Risk: %s\n", risk)
}

// ProjectSale renders a sale as a one-line document. A sale whose product
// was deleted falls back to a placeholder name carrying the product ID.
func ProjectSale(sale catalog.Sale) retrieval.Document {
	name := sale.ProductName()
	if name == "" {
		name = fmt.Sprintf("product_id_%d", sale.ProductID())
	}

	text := fmt.Sprintf(
		"Sale: Product: %s. Quantity sold: %d. Date: %s. Total: %s.",
		name,
		sale.QuantitySold(),
		sale.SaleDate().Format("2006-01-02"),
		formatNumber(sale.TotalPrice()),
	)

	return retrieval.NewDocument(
		fmt.Sprintf("sale_%d", sale.ID()),
		text,
		retrieval.Metadata{
			"type":       "sale",
			"sale_id":    sale.ID(),
			"product_id": sale.ProductID(),
		},
	)
}

// formatNumber renders a float with the shortest decimal representation,
// keeping a trailing ".0" for whole numbers so 150 reads as "150.0".
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
