package models

import "time"

// Record is a single income or expense transaction.
// Amounts are stored in cents to avoid float drift: 12.34 = 1234.
// PriceCent carries the sign (positive = income, negative = expense),
// normalized at write time from the is_income flag.
type Record struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	WalletID  uint   `gorm:"index;not null"`
	Title     string `gorm:"size:128;not null"`
	PriceCent int64  `gorm:"not null"`
	// Gift-derived records describe a non-cash event and are excluded
	// from balance computation.
	IsGift     bool      `gorm:"not null;default:false"`
	Note       string    `gorm:"size:255"`
	OccurredAt time.Time `gorm:"index;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	User   User   `gorm:"constraint:OnDelete:CASCADE"`
	Wallet Wallet `gorm:"constraint:OnDelete:RESTRICT"`
}
