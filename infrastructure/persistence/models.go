// Package persistence provides database storage implementations.
package persistence

import "time"

// ProductModel is the GORM model for the products table.
type ProductModel struct {
	ID         int64       `gorm:"column:id;primaryKey;autoIncrement"`
	Name       string      `gorm:"column:name;index"`
	Brand      string      `gorm:"column:brand"`
	Category   string      `gorm:"column:category;index"`
	Price      float64     `gorm:"column:price"`
	CostPrice  *float64    `gorm:"column:cost_price"`
	Quantity   int         `gorm:"column:quantity"`
	ExpiryDate *time.Time  `gorm:"column:expiry_date"`
	Sales      []SaleModel `gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for ProductModel.
func (ProductModel) TableName() string { return "products" }

// SaleModel is the GORM model for the sales table.
type SaleModel struct {
	ID           int64         `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID    int64         `gorm:"column:product_id;index"`
	QuantitySold int           `gorm:"column:quantity_sold"`
	SaleDate     time.Time     `gorm:"column:sale_date"`
	TotalPrice   float64       `gorm:"column:total_price"`
	Product      *ProductModel `gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for SaleModel.
func (SaleModel) TableName() string { return "sales" }
