package catalog

import "time"

// Sale represents a recorded sale of a product.
type Sale struct {
	id           int64
	productID    int64
	quantitySold int
	saleDate     time.Time
	totalPrice   float64
	productName  string
}

// NewSale creates a new Sale without an assigned ID.
func NewSale(productID int64, quantitySold int, saleDate time.Time, totalPrice float64) Sale {
	return Sale{
		productID:    productID,
		quantitySold: quantitySold,
		saleDate:     saleDate,
		totalPrice:   totalPrice,
	}
}

// ReconstructSale recreates a Sale from persisted state. productName is the
// resolved name of the sold product, or empty when the relation is missing.
func ReconstructSale(id, productID int64, quantitySold int, saleDate time.Time, totalPrice float64, productName string) Sale {
	s := NewSale(productID, quantitySold, saleDate, totalPrice)
	s.id = id
	s.productName = productName
	return s
}

// ID returns the sale identifier (0 when unsaved).
func (s Sale) ID() int64 { return s.id }

// ProductID returns the sold product's identifier.
func (s Sale) ProductID() int64 { return s.productID }

// QuantitySold returns the number of units sold.
func (s Sale) QuantitySold() int { return s.quantitySold }

// SaleDate returns the date of the sale.
func (s Sale) SaleDate() time.Time { return s.saleDate }

// TotalPrice returns the total sale price.
func (s Sale) TotalPrice() float64 { return s.totalPrice }

// ProductName returns the resolved product name, or empty when the
// product relation could not be resolved.
func (s Sale) ProductName() string { return s.productName }
