package models

import "time"

// BalanceAdjustment is a manual signed ledger entry not tied to a
// transaction. Users create them directly; freeze-evacuation and
// transfers create them in pairs. Always included in balance math.
type BalanceAdjustment struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   `gorm:"index;not null"`
	WalletID   uint   `gorm:"index;not null"`
	AmountCent int64  `gorm:"not null"` // any sign, no normalization
	Reason     string `gorm:"size:255"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	User   User   `gorm:"constraint:OnDelete:CASCADE"`
	Wallet Wallet `gorm:"constraint:OnDelete:RESTRICT"`
}
