package database

import (
	"fmt"

	"github.com/YairAcuna3/kaufbuch-sub001/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Wallet{},
		&models.Record{},
		&models.BalanceAdjustment{},
		&models.Debt{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
