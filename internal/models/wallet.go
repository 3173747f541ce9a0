package models

import "time"

// Wallet is a named balance-bearing bucket owned by one user.
// Balance is never stored; it is derived from records, adjustments and
// settled debts on every read.
type Wallet struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"index;not null;uniqueIndex:idx_wallet_user_name"`
	Name        string `gorm:"size:64;not null;uniqueIndex:idx_wallet_user_name"`
	Description string `gorm:"size:255"`
	IsDefault   bool   `gorm:"not null;default:false"` // exactly one per user, immutable
	IsFrozen    bool   `gorm:"not null;default:false"`
	ParentID    *uint  `gorm:"index"` // optional nesting, same owner
	CreatedAt   time.Time
	UpdatedAt   time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
