package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shelfware/stockwise/domain/catalog"
	"github.com/shelfware/stockwise/internal/database"
)

// ProductStore implements catalog.ProductStore using GORM.
type ProductStore struct {
	db     database.Database
	mapper ProductMapper
}

// NewProductStore creates a new ProductStore.
func NewProductStore(db database.Database) ProductStore {
	return ProductStore{db: db}
}

// Save creates or updates a product.
func (s ProductStore) Save(ctx context.Context, product catalog.Product) (catalog.Product, error) {
	model := s.mapper.ToModel(product)

	var result *gorm.DB
	if product.ID() == 0 {
		result = s.db.Session(ctx).Create(&model)
	} else {
		result = s.db.Session(ctx).Save(&model)
	}
	if result.Error != nil {
		return catalog.Product{}, fmt.Errorf("save product: %w", result.Error)
	}
	return s.mapper.ToDomain(model), nil
}

// Get retrieves a product by ID.
func (s ProductStore) Get(ctx context.Context, id int64) (catalog.Product, error) {
	var model ProductModel
	result := s.db.Session(ctx).First(&model, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return catalog.Product{}, catalog.ErrProductNotFound
		}
		return catalog.Product{}, fmt.Errorf("get product: %w", result.Error)
	}
	return s.mapper.ToDomain(model), nil
}

// FindByName retrieves a product by exact name.
func (s ProductStore) FindByName(ctx context.Context, name string) (catalog.Product, error) {
	var model ProductModel
	result := s.db.Session(ctx).Where("name = ?", name).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return catalog.Product{}, catalog.ErrProductNotFound
		}
		return catalog.Product{}, fmt.Errorf("find product by name: %w", result.Error)
	}
	return s.mapper.ToDomain(model), nil
}

// List retrieves products with pagination.
func (s ProductStore) List(ctx context.Context, offset, limit int) ([]catalog.Product, error) {
	var models []ProductModel
	result := s.db.Session(ctx).Offset(offset).Limit(limit).Order("id").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("list products: %w", result.Error)
	}
	return s.toDomainSlice(models), nil
}

// ListWithSales retrieves every product with its sales history preloaded.
func (s ProductStore) ListWithSales(ctx context.Context) ([]catalog.Product, error) {
	var models []ProductModel
	result := s.db.Session(ctx).Preload("Sales").Order("id").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("list products with sales: %w", result.Error)
	}
	return s.toDomainSlice(models), nil
}

// Delete removes a product by ID.
func (s ProductStore) Delete(ctx context.Context, id int64) error {
	result := s.db.Session(ctx).Delete(&ProductModel{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

// Count returns the number of products.
func (s ProductStore) Count(ctx context.Context) (int64, error) {
	var count int64
	result := s.db.Session(ctx).Model(&ProductModel{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("count products: %w", result.Error)
	}
	return count, nil
}

// TotalStock returns the sum of stock quantities across all products.
func (s ProductStore) TotalStock(ctx context.Context) (int64, error) {
	var total int64
	result := s.db.Session(ctx).Model(&ProductModel{}).
		Select("COALESCE(SUM(quantity), 0)").Scan(&total)
	if result.Error != nil {
		return 0, fmt.Errorf("total stock: %w", result.Error)
	}
	return total, nil
}

// InventoryValue returns the total retail value of current stock.
func (s ProductStore) InventoryValue(ctx context.Context) (float64, error) {
	var total float64
	result := s.db.Session(ctx).Model(&ProductModel{}).
		Select("COALESCE(SUM(price * quantity), 0)").Scan(&total)
	if result.Error != nil {
		return 0, fmt.Errorf("inventory value: %w", result.Error)
	}
	return total, nil
}

// CountLowStock returns the number of products at or below the threshold.
func (s ProductStore) CountLowStock(ctx context.Context, threshold int) (int64, error) {
	var count int64
	result := s.db.Session(ctx).Model(&ProductModel{}).
		Where("quantity <= ?", threshold).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("count low stock: %w", result.Error)
	}
	return count, nil
}

// CountExpiringBefore returns the number of products expiring on or before
// the cutoff date.
func (s ProductStore) CountExpiringBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	result := s.db.Session(ctx).Model(&ProductModel{}).
		Where("expiry_date IS NOT NULL AND expiry_date <= ?", cutoff).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("count expiring: %w", result.Error)
	}
	return count, nil
}

func (s ProductStore) toDomainSlice(models []ProductModel) []catalog.Product {
	products := make([]catalog.Product, len(models))
	for i, m := range models {
		products[i] = s.mapper.ToDomain(m)
	}
	return products
}

var _ catalog.ProductStore = ProductStore{}
