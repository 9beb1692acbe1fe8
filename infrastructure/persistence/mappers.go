package persistence

import (
	"github.com/shelfware/stockwise/domain/catalog"
)

// ProductMapper maps between domain Product and ProductModel.
type ProductMapper struct{}

// ToDomain converts a ProductModel to a domain Product.
func (m ProductMapper) ToDomain(e ProductModel) catalog.Product {
	sales := make([]catalog.Sale, len(e.Sales))
	saleMapper := SaleMapper{}
	for i, s := range e.Sales {
		// Avoid a recursive preload: sales attached to a product are
		// mapped with the parent's name already known.
		sale := s
		sale.Product = nil
		sales[i] = saleMapper.toDomainNamed(sale, e.Name)
	}

	return catalog.ReconstructProduct(
		e.ID,
		e.Name,
		e.Brand,
		e.Category,
		e.Price,
		e.CostPrice,
		e.Quantity,
		e.ExpiryDate,
		sales,
	)
}

// ToModel converts a domain Product to a ProductModel.
func (m ProductMapper) ToModel(p catalog.Product) ProductModel {
	model := ProductModel{
		ID:       p.ID(),
		Name:     p.Name(),
		Brand:    p.Brand(),
		Category: p.Category(),
		Price:    p.Price(),
		Quantity: p.Quantity(),
	}
	if cp, ok := p.CostPrice(); ok {
		model.CostPrice = &cp
	}
	if ed, ok := p.ExpiryDate(); ok {
		model.ExpiryDate = &ed
	}
	return model
}

// SaleMapper maps between domain Sale and SaleModel.
type SaleMapper struct{}

// ToDomain converts a SaleModel to a domain Sale, resolving the product
// name when the relation is loaded.
func (m SaleMapper) ToDomain(e SaleModel) catalog.Sale {
	name := ""
	if e.Product != nil {
		name = e.Product.Name
	}
	return m.toDomainNamed(e, name)
}

func (m SaleMapper) toDomainNamed(e SaleModel, productName string) catalog.Sale {
	return catalog.ReconstructSale(
		e.ID,
		e.ProductID,
		e.QuantitySold,
		e.SaleDate,
		e.TotalPrice,
		productName,
	)
}

// ToModel converts a domain Sale to a SaleModel.
func (m SaleMapper) ToModel(s catalog.Sale) SaleModel {
	return SaleModel{
		ID:           s.ID(),
		ProductID:    s.ProductID(),
		QuantitySold: s.QuantitySold(),
		SaleDate:     s.SaleDate(),
		TotalPrice:   s.TotalPrice(),
	}
}
