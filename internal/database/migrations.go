package database

import (
	"fmt"

	"gorm.io/gorm"
)

// MigrateSchema creates or updates the property and model snapshot tables
func MigrateSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(&PropertyRow{}, &ModelSnapshot{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
