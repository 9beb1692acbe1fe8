package catalog

import (
	"context"
	"errors"
	"time"
)

// Store lookup errors.
var (
	ErrProductNotFound = errors.New("product not found")
	ErrSaleNotFound    = errors.New("sale not found")
)

// ProductStore persists products.
type ProductStore interface {
	Save(ctx context.Context, product Product) (Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	FindByName(ctx context.Context, name string) (Product, error)
	List(ctx context.Context, offset, limit int) ([]Product, error)
	// ListWithSales returns every product with its sales history attached,
	// for projection into the semantic index.
	ListWithSales(ctx context.Context) ([]Product, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
	TotalStock(ctx context.Context) (int64, error)
	InventoryValue(ctx context.Context) (float64, error)
	CountLowStock(ctx context.Context, threshold int) (int64, error)
	CountExpiringBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SaleStore persists sales.
type SaleStore interface {
	Save(ctx context.Context, sale Sale) (Sale, error)
	Get(ctx context.Context, id int64) (Sale, error)
	List(ctx context.Context, offset, limit int) ([]Sale, error)
	// ListWithProducts returns every sale with its product name resolved,
	// for projection into the semantic index.
	ListWithProducts(ctx context.Context) ([]Sale, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
	TotalRevenue(ctx context.Context) (float64, error)
	TotalQuantitySold(ctx context.Context) (int64, error)
}
