package models

import "time"

// Debt is a tracked IOU in either direction. Unsettled debts are
// informational only; once WasPay is set the amount enters balance
// computation (doubt means "I owe", so settling subtracts).
type Debt struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   `gorm:"index;not null"`
	WalletID   uint   `gorm:"index;not null"`
	ToWho      string `gorm:"size:128;not null"`
	Doubt      bool   `gorm:"not null"` // true = I owe, false = owed to me
	AmountCent int64  `gorm:"not null"` // always positive
	WasPay     bool   `gorm:"not null;default:false"`
	Note       string `gorm:"size:255"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	User   User   `gorm:"constraint:OnDelete:CASCADE"`
	Wallet Wallet `gorm:"constraint:OnDelete:RESTRICT"`
}
