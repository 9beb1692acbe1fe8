package persistence

import (
	"fmt"

	"github.com/shelfware/stockwise/internal/database"
)

// AutoMigrate creates or updates the catalog schema.
func AutoMigrate(db database.Database) error {
	if err := db.GORM().AutoMigrate(&ProductModel{}, &SaleModel{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
