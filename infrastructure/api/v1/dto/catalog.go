package dto

// ProductRequest is the body for creating or updating a product.
type ProductRequest struct {
	Name       string   `json:"name"`
	Brand      string   `json:"brand"`
	Category   string   `json:"category"`
	Price      float64  `json:"price"`
	CostPrice  *float64 `json:"cost_price,omitempty"`
	Quantity   int      `json:"quantity"`
	ExpiryDate *string  `json:"expiry_date,omitempty"`
}

// Product is a product as returned by the API. ExpiryDate is YYYY-MM-DD.
type Product struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Brand      string   `json:"brand"`
	Category   string   `json:"category"`
	Price      float64  `json:"price"`
	CostPrice  *float64 `json:"cost_price,omitempty"`
	Quantity   int      `json:"quantity"`
	ExpiryDate *string  `json:"expiry_date,omitempty"`
}

// SaleRequest is the body for creating or updating a sale.
type SaleRequest struct {
	ProductID    int64   `json:"product_id"`
	QuantitySold int     `json:"quantity_sold"`
	SaleDate     string  `json:"sale_date"`
	TotalPrice   float64 `json:"total_price"`
}

// Sale is a sale as returned by the API. SaleDate is YYYY-MM-DD.
type Sale struct {
	ID           int64   `json:"id"`
	ProductID    int64   `json:"product_id"`
	QuantitySold int     `json:"quantity_sold"`
	SaleDate     string  `json:"sale_date"`
	TotalPrice   float64 `json:"total_price"`
}

// ImportSummary is the body returned by POST /products/upload-csv.
type ImportSummary struct {
	Detail        string `json:"detail"`
	ProductsAdded int    `json:"products_added"`
	Skipped       int    `json:"skipped"`
	Errors        any    `json:"errors"`
	ErrorCount    int    `json:"error_count"`
}
