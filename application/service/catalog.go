package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/shelfware/stockwise/domain/catalog"
)

// ErrInsufficientStock indicates a sale would take a product's stock below
// zero.
var ErrInsufficientStock = errors.New("not enough stock")

const expiryDateLayout = "2006-01-02"

// CatalogService manages products and sales. Recording a sale decrements
// the product's stock; deleting one restores it.
type CatalogService struct {
	products catalog.ProductStore
	sales    catalog.SaleStore
	logger   *slog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(products catalog.ProductStore, sales catalog.SaleStore, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{products: products, sales: sales, logger: logger}
}

// CreateProduct persists a new product.
func (s *CatalogService) CreateProduct(ctx context.Context, product catalog.Product) (catalog.Product, error) {
	return s.products.Save(ctx, product)
}

// GetProduct returns a product by ID.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (catalog.Product, error) {
	return s.products.Get(ctx, id)
}

// ListProducts returns a page of products.
func (s *CatalogService) ListProducts(ctx context.Context, offset, limit int) ([]catalog.Product, error) {
	return s.products.List(ctx, offset, limit)
}

// UpdateProduct replaces a product's fields, keeping its identity.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, updated catalog.Product) (catalog.Product, error) {
	existing, err := s.products.Get(ctx, id)
	if err != nil {
		return catalog.Product{}, err
	}

	var costPrice *float64
	if cp, ok := updated.CostPrice(); ok {
		costPrice = &cp
	}
	var expiry *time.Time
	if ed, ok := updated.ExpiryDate(); ok {
		expiry = &ed
	}

	merged := catalog.ReconstructProduct(
		existing.ID(),
		updated.Name(), updated.Brand(), updated.Category(),
		updated.Price(), costPrice, updated.Quantity(), expiry,
		nil,
	)
	return s.products.Save(ctx, merged)
}

// DeleteProduct removes a product and returns its last state.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) (catalog.Product, error) {
	product, err := s.products.Get(ctx, id)
	if err != nil {
		return catalog.Product{}, err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return catalog.Product{}, err
	}
	return product, nil
}

// CreateSale records a sale and decrements the product's stock. Returns
// catalog.ErrProductNotFound for an unknown product and
// ErrInsufficientStock when stock would go negative.
func (s *CatalogService) CreateSale(ctx context.Context, sale catalog.Sale) (catalog.Sale, error) {
	product, err := s.products.Get(ctx, sale.ProductID())
	if err != nil {
		return catalog.Sale{}, err
	}
	if product.Quantity() < sale.QuantitySold() {
		return catalog.Sale{}, ErrInsufficientStock
	}

	// A zero total means the caller did not price the sale; derive it from
	// the current retail price.
	if sale.TotalPrice() == 0 {
		sale = catalog.NewSale(sale.ProductID(), sale.QuantitySold(), sale.SaleDate(),
			product.Price()*float64(sale.QuantitySold()))
	}

	if _, err := s.products.Save(ctx, product.WithQuantity(product.Quantity()-sale.QuantitySold())); err != nil {
		return catalog.Sale{}, fmt.Errorf("adjust stock: %w", err)
	}

	saved, err := s.sales.Save(ctx, sale)
	if err != nil {
		return catalog.Sale{}, err
	}

	s.logger.Info("sale recorded",
		"sale_id", saved.ID(),
		"product_id", saved.ProductID(),
		"quantity", saved.QuantitySold())
	return saved, nil
}

// GetSale returns a sale by ID.
func (s *CatalogService) GetSale(ctx context.Context, id int64) (catalog.Sale, error) {
	return s.sales.Get(ctx, id)
}

// ListSales returns a page of sales.
func (s *CatalogService) ListSales(ctx context.Context, offset, limit int) ([]catalog.Sale, error) {
	return s.sales.List(ctx, offset, limit)
}

// UpdateSale replaces a sale, reverting the original stock adjustment and
// applying the new one. The new sale may target a different product.
func (s *CatalogService) UpdateSale(ctx context.Context, id int64, updated catalog.Sale) (catalog.Sale, error) {
	existing, err := s.sales.Get(ctx, id)
	if err != nil {
		return catalog.Sale{}, err
	}

	original, err := s.products.Get(ctx, existing.ProductID())
	if err != nil {
		return catalog.Sale{}, err
	}

	// Restore the stock the original sale consumed before checking the
	// new quantity against it.
	restored := original.WithQuantity(original.Quantity() + existing.QuantitySold())
	if _, err := s.products.Save(ctx, restored); err != nil {
		return catalog.Sale{}, fmt.Errorf("restore stock: %w", err)
	}

	target, err := s.products.Get(ctx, updated.ProductID())
	if err != nil {
		return catalog.Sale{}, err
	}
	if target.Quantity() < updated.QuantitySold() {
		if _, revertErr := s.products.Save(ctx, original); revertErr != nil {
			return catalog.Sale{}, fmt.Errorf("revert stock restore: %w", revertErr)
		}
		return catalog.Sale{}, ErrInsufficientStock
	}

	if _, err := s.products.Save(ctx, target.WithQuantity(target.Quantity()-updated.QuantitySold())); err != nil {
		return catalog.Sale{}, fmt.Errorf("adjust stock: %w", err)
	}

	merged := catalog.ReconstructSale(
		existing.ID(),
		updated.ProductID(), updated.QuantitySold(), updated.SaleDate(), updated.TotalPrice(),
		"",
	)
	return s.sales.Save(ctx, merged)
}

// DeleteSale removes a sale and restores the product's stock.
func (s *CatalogService) DeleteSale(ctx context.Context, id int64) (catalog.Sale, error) {
	sale, err := s.sales.Get(ctx, id)
	if err != nil {
		return catalog.Sale{}, err
	}

	product, err := s.products.Get(ctx, sale.ProductID())
	if err != nil {
		return catalog.Sale{}, err
	}
	if _, err := s.products.Save(ctx, product.WithQuantity(product.Quantity()+sale.QuantitySold())); err != nil {
		return catalog.Sale{}, fmt.Errorf("restore stock: %w", err)
	}

	if err := s.sales.Delete(ctx, id); err != nil {
		return catalog.Sale{}, err
	}
	return sale, nil
}

// ImportError describes a rejected CSV row. Row numbers are 1-based file
// lines, so the first data row after the header is row 2.
type ImportError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportResult summarizes a CSV import.
type ImportResult struct {
	Added   int           `json:"products_added"`
	Skipped int           `json:"skipped"`
	Errors  []ImportError `json:"errors"`
}

// ImportProductsCSV reads products from CSV. Required columns: name,
// brand, quantity, price, category. An optional expiry_date column takes
// YYYY-MM-DD. Rows whose name already exists are skipped; malformed rows
// are reported per row without aborting the rest.
func (s *CatalogService) ImportProductsCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return ImportResult{}, fmt.Errorf("read csv header: %w", err)
	}

	columns := map[string]int{}
	for i, name := range header {
		columns[name] = i
	}
	for _, required := range []string{"name", "brand", "quantity", "price", "category"} {
		if _, ok := columns[required]; !ok {
			return ImportResult{}, fmt.Errorf("missing column: %s", required)
		}
	}

	result := ImportResult{Errors: []ImportError{}}
	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, ImportError{Row: rowNum, Error: err.Error()})
			continue
		}

		product, rowErr := s.parseProductRow(columns, record)
		if rowErr != nil {
			result.Errors = append(result.Errors, ImportError{Row: rowNum, Error: rowErr.Error()})
			continue
		}

		_, err = s.products.FindByName(ctx, product.Name())
		switch {
		case err == nil:
			result.Skipped++
			continue
		case !errors.Is(err, catalog.ErrProductNotFound):
			result.Errors = append(result.Errors, ImportError{Row: rowNum, Error: err.Error()})
			continue
		}

		if _, err := s.products.Save(ctx, product); err != nil {
			result.Errors = append(result.Errors, ImportError{Row: rowNum, Error: err.Error()})
			continue
		}
		result.Added++
	}

	if result.Added == 0 && len(result.Errors) > 0 {
		return result, fmt.Errorf("csv processing failed for all rows")
	}

	s.logger.Info("products imported",
		"added", result.Added,
		"skipped", result.Skipped,
		"errors", len(result.Errors))
	return result, nil
}

func (s *CatalogService) parseProductRow(columns map[string]int, record []string) (catalog.Product, error) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	quantity, err := strconv.Atoi(field("quantity"))
	if err != nil {
		return catalog.Product{}, fmt.Errorf("invalid quantity %q", field("quantity"))
	}
	price, err := strconv.ParseFloat(field("price"), 64)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("invalid price %q", field("price"))
	}

	product := catalog.NewProduct(field("name"), field("brand"), field("category"), price, quantity)

	if raw := field("expiry_date"); raw != "" {
		expiry, err := time.Parse(expiryDateLayout, raw)
		if err != nil {
			return catalog.Product{}, fmt.Errorf("invalid date format for expiry_date: %q, expected YYYY-MM-DD", raw)
		}
		product = product.WithExpiryDate(expiry)
	}

	return product, nil
}
