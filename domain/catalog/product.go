// Package catalog provides the product and sales domain types.
package catalog

import "time"

// Product represents an inventory item.
type Product struct {
	id         int64
	name       string
	brand      string
	category   string
	price      float64
	costPrice  *float64
	quantity   int
	expiryDate *time.Time
	sales      []Sale
}

// NewProduct creates a new Product without an assigned ID.
func NewProduct(name, brand, category string, price float64, quantity int) Product {
	return Product{
		name:     name,
		brand:    brand,
		category: category,
		price:    price,
		quantity: quantity,
	}
}

// ReconstructProduct recreates a Product from persisted state.
func ReconstructProduct(
	id int64,
	name, brand, category string,
	price float64,
	costPrice *float64,
	quantity int,
	expiryDate *time.Time,
	sales []Sale,
) Product {
	p := NewProduct(name, brand, category, price, quantity)
	p.id = id
	p.sales = append([]Sale(nil), sales...)
	if costPrice != nil {
		cp := *costPrice
		p.costPrice = &cp
	}
	if expiryDate != nil {
		ed := *expiryDate
		p.expiryDate = &ed
	}
	return p
}

// ID returns the product identifier (0 when unsaved).
func (p Product) ID() int64 { return p.id }

// Name returns the product name.
func (p Product) Name() string { return p.name }

// Brand returns the brand name.
func (p Product) Brand() string { return p.brand }

// Category returns the product category.
func (p Product) Category() string { return p.category }

// Price returns the retail price.
func (p Product) Price() float64 { return p.price }

// Quantity returns the current stock quantity.
func (p Product) Quantity() int { return p.quantity }

// CostPrice returns the cost price, if known.
func (p Product) CostPrice() (float64, bool) {
	if p.costPrice == nil {
		return 0, false
	}
	return *p.costPrice, true
}

// ExpiryDate returns the expiry date, if set.
func (p Product) ExpiryDate() (time.Time, bool) {
	if p.expiryDate == nil {
		return time.Time{}, false
	}
	return *p.expiryDate, true
}

// Sales returns the sales recorded against this product.
func (p Product) Sales() []Sale {
	return append([]Sale(nil), p.sales...)
}

// WithCostPrice returns a copy with the cost price set.
func (p Product) WithCostPrice(cp float64) Product {
	p.costPrice = &cp
	return p
}

// WithExpiryDate returns a copy with the expiry date set.
func (p Product) WithExpiryDate(d time.Time) Product {
	p.expiryDate = &d
	return p
}

// WithQuantity returns a copy with the stock quantity replaced.
func (p Product) WithQuantity(q int) Product {
	p.quantity = q
	return p
}

// ProfitMargin returns the profit margin as a percentage of the retail
// price. The second return is false when the cost price is unknown or the
// retail price is zero.
func (p Product) ProfitMargin() (float64, bool) {
	if p.costPrice == nil || p.price <= 0 {
		return 0, false
	}
	return (p.price - *p.costPrice) / p.price * 100, true
}
