package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shelfware/stockwise/domain/catalog"
	"github.com/shelfware/stockwise/internal/database"
)

// SaleStore implements catalog.SaleStore using GORM.
type SaleStore struct {
	db     database.Database
	mapper SaleMapper
}

// NewSaleStore creates a new SaleStore.
func NewSaleStore(db database.Database) SaleStore {
	return SaleStore{db: db}
}

// Save creates or updates a sale.
func (s SaleStore) Save(ctx context.Context, sale catalog.Sale) (catalog.Sale, error) {
	model := s.mapper.ToModel(sale)

	var result *gorm.DB
	if sale.ID() == 0 {
		result = s.db.Session(ctx).Create(&model)
	} else {
		result = s.db.Session(ctx).Save(&model)
	}
	if result.Error != nil {
		return catalog.Sale{}, fmt.Errorf("save sale: %w", result.Error)
	}
	return s.mapper.ToDomain(model), nil
}

// Get retrieves a sale by ID.
func (s SaleStore) Get(ctx context.Context, id int64) (catalog.Sale, error) {
	var model SaleModel
	result := s.db.Session(ctx).Preload("Product").First(&model, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return catalog.Sale{}, catalog.ErrSaleNotFound
		}
		return catalog.Sale{}, fmt.Errorf("get sale: %w", result.Error)
	}
	return s.mapper.ToDomain(model), nil
}

// List retrieves sales with pagination.
func (s SaleStore) List(ctx context.Context, offset, limit int) ([]catalog.Sale, error) {
	var models []SaleModel
	result := s.db.Session(ctx).Offset(offset).Limit(limit).Order("id").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("list sales: %w", result.Error)
	}
	return s.toDomainSlice(models), nil
}

// ListWithProducts retrieves every sale with its product relation resolved.
func (s SaleStore) ListWithProducts(ctx context.Context) ([]catalog.Sale, error) {
	var models []SaleModel
	result := s.db.Session(ctx).Preload("Product").Order("id").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("list sales with products: %w", result.Error)
	}
	return s.toDomainSlice(models), nil
}

// Delete removes a sale by ID.
func (s SaleStore) Delete(ctx context.Context, id int64) error {
	result := s.db.Session(ctx).Delete(&SaleModel{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete sale: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return catalog.ErrSaleNotFound
	}
	return nil
}

// Count returns the number of sales.
func (s SaleStore) Count(ctx context.Context) (int64, error) {
	var count int64
	result := s.db.Session(ctx).Model(&SaleModel{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("count sales: %w", result.Error)
	}
	return count, nil
}

// TotalRevenue returns the sum of sale total prices, 0 when no rows exist.
func (s SaleStore) TotalRevenue(ctx context.Context) (float64, error) {
	var total float64
	result := s.db.Session(ctx).Model(&SaleModel{}).
		Select("COALESCE(SUM(total_price), 0)").Scan(&total)
	if result.Error != nil {
		return 0, fmt.Errorf("total revenue: %w", result.Error)
	}
	return total, nil
}

// TotalQuantitySold returns the sum of quantities sold, 0 when no rows exist.
func (s SaleStore) TotalQuantitySold(ctx context.Context) (int64, error) {
	var total int64
	result := s.db.Session(ctx).Model(&SaleModel{}).
		Select("COALESCE(SUM(quantity_sold), 0)").Scan(&total)
	if result.Error != nil {
		return 0, fmt.Errorf("total quantity sold: %w", result.Error)
	}
	return total, nil
}

func (s SaleStore) toDomainSlice(models []SaleModel) []catalog.Sale {
	sales := make([]catalog.Sale, len(models))
	for i, m := range models {
		sales[i] = s.mapper.ToDomain(m)
	}
	return sales
}

var _ catalog.SaleStore = SaleStore{}
