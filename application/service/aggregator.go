package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shelfware/stockwise/domain/catalog"
)

// aggregationKeywords mark a question as asking for counts, sums, or totals.
var aggregationKeywords = []string{
	"total", "count", "how many", "sum", "number of", "all products", "all sales",
}

// Aggregator answers count and sum questions directly from the database,
// bypassing retrieval. Exact numbers come from SQL aggregates, not from
// whatever subset of rows the index happens to surface.
type Aggregator struct {
	products catalog.ProductStore
	sales    catalog.SaleStore
}

// NewAggregator creates a new Aggregator.
func NewAggregator(products catalog.ProductStore, sales catalog.SaleStore) *Aggregator {
	return &Aggregator{products: products, sales: sales}
}

// IsAggregation reports whether the question contains any aggregation
// keyword. Matching is case-insensitive on substrings.
func (a *Aggregator) IsAggregation(question string) bool {
	q := strings.ToLower(question)
	for _, keyword := range aggregationKeywords {
		if strings.Contains(q, keyword) {
			return true
		}
	}
	return false
}

// Answer resolves a recognized aggregation question against the database.
// The second return is false when no known pattern matched, in which case
// the caller continues with retrieval.
//
// Patterns are checked in a fixed order; the first match wins.
func (a *Aggregator) Answer(ctx context.Context, question string) (string, bool, error) {
	q := strings.ToLower(question)

	switch {
	case strings.Contains(q, "total number of products") || strings.Contains(q, "how many products"):
		count, err := a.products.Count(ctx)
		if err != nil {
			return "", false, fmt.Errorf("count products: %w", err)
		}
		return fmt.Sprintf("The total number of products in the database is %d.", count), true, nil

	case strings.Contains(q, "total number of sales") || strings.Contains(q, "how many sales"):
		count, err := a.sales.Count(ctx)
		if err != nil {
			return "", false, fmt.Errorf("count sales: %w", err)
		}
		return fmt.Sprintf("The total number of sales is %d.", count), true, nil

	case strings.Contains(q, "total sales") && (strings.Contains(q, "revenue") || strings.Contains(q, "amount")):
		total, err := a.sales.TotalRevenue(ctx)
		if err != nil {
			return "", false, fmt.Errorf("sum revenue: %w", err)
		}
		return fmt.Sprintf("The total sales revenue is %s.", formatNumber(total)), true, nil

	case strings.Contains(q, "total quantity sold") || strings.Contains(q, "total sold"):
		total, err := a.sales.TotalQuantitySold(ctx)
		if err != nil {
			return "", false, fmt.Errorf("sum quantity sold: %w", err)
		}
		return fmt.Sprintf("The total quantity sold is %d.", total), true, nil
	}

	return "", false, nil
}
