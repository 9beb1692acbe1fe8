package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shelfware/stockwise/domain/catalog"
	"github.com/shelfware/stockwise/internal/config"
)

// Summary holds the dashboard aggregates, computed in SQL.
type Summary struct {
	TotalProducts     int64   `json:"total_products"`
	TotalStock        int64   `json:"total_stock"`
	InventoryValue    float64 `json:"inventory_value"`
	LowStockProducts  int64   `json:"low_stock_products"`
	ExpiringProducts  int64   `json:"expiring_products"`
	TotalSales        int64   `json:"total_sales"`
	TotalRevenue      float64 `json:"total_revenue"`
	TotalQuantitySold int64   `json:"total_quantity_sold"`
	AverageOrderValue float64 `json:"average_order_value"`
}

// DashboardService computes catalog-wide aggregates for the dashboard.
type DashboardService struct {
	products          catalog.ProductStore
	sales             catalog.SaleStore
	lowStockThreshold int
	expiryWindow      time.Duration
}

// NewDashboardService creates a new DashboardService using the configured
// low-stock threshold and expiry window.
func NewDashboardService(products catalog.ProductStore, sales catalog.SaleStore, cfg config.AppConfig) *DashboardService {
	return &DashboardService{
		products:          products,
		sales:             sales,
		lowStockThreshold: cfg.LowStockThreshold(),
		expiryWindow:      time.Duration(cfg.ExpiryWindowDays()) * 24 * time.Hour,
	}
}

// Summary computes the full set of dashboard aggregates.
func (s *DashboardService) Summary(ctx context.Context) (Summary, error) {
	var summary Summary
	var err error

	if summary.TotalProducts, err = s.products.Count(ctx); err != nil {
		return Summary{}, fmt.Errorf("count products: %w", err)
	}
	if summary.TotalStock, err = s.products.TotalStock(ctx); err != nil {
		return Summary{}, fmt.Errorf("total stock: %w", err)
	}
	if summary.InventoryValue, err = s.products.InventoryValue(ctx); err != nil {
		return Summary{}, fmt.Errorf("inventory value: %w", err)
	}
	if summary.LowStockProducts, err = s.products.CountLowStock(ctx, s.lowStockThreshold); err != nil {
		return Summary{}, fmt.Errorf("count low stock: %w", err)
	}

	cutoff := time.Now().Add(s.expiryWindow)
	if summary.ExpiringProducts, err = s.products.CountExpiringBefore(ctx, cutoff); err != nil {
		return Summary{}, fmt.Errorf("count expiring: %w", err)
	}

	if summary.TotalSales, err = s.sales.Count(ctx); err != nil {
		return Summary{}, fmt.Errorf("count sales: %w", err)
	}
	if summary.TotalRevenue, err = s.sales.TotalRevenue(ctx); err != nil {
		return Summary{}, fmt.Errorf("total revenue: %w", err)
	}
	if summary.TotalQuantitySold, err = s.sales.TotalQuantitySold(ctx); err != nil {
		return Summary{}, fmt.Errorf("total quantity sold: %w", err)
	}

	if summary.TotalSales > 0 {
		summary.AverageOrderValue = summary.TotalRevenue / float64(summary.TotalSales)
	}
	return summary, nil
}
