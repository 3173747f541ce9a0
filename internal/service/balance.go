package service

import (
	"github.com/YairAcuna3/kaufbuch-sub001/internal/apperr"
	"github.com/YairAcuna3/kaufbuch-sub001/internal/models"

	"gorm.io/gorm"
)

// balanceCent aggregates the three ledger sources of one wallet:
//
//	non-gift record prices
//	+ all balance adjustments
//	+ settled debts (I-owe subtracts, owed-to-me adds)
//
// Sums over empty sets are zero, so an unknown wallet yields 0; callers
// validate existence and ownership before relying on the result. The
// caller's tx is used so freeze can do its zero check atomically.
func balanceCent(tx *gorm.DB, userID, walletID uint) (int64, error) {
	var recordSum int64
	if err := tx.Model(&models.Record{}).
		Where("user_id = ? AND wallet_id = ? AND is_gift = ?", userID, walletID, false).
		Select("COALESCE(SUM(price_cent), 0)").
		Scan(&recordSum).Error; err != nil {
		return 0, err
	}

	var adjustmentSum int64
	if err := tx.Model(&models.BalanceAdjustment{}).
		Where("user_id = ? AND wallet_id = ?", userID, walletID).
		Select("COALESCE(SUM(amount_cent), 0)").
		Scan(&adjustmentSum).Error; err != nil {
		return 0, err
	}

	var debtSum int64
	if err := tx.Model(&models.Debt{}).
		Where("user_id = ? AND wallet_id = ? AND was_pay = ?", userID, walletID, true).
		Select("COALESCE(SUM(CASE WHEN doubt THEN -amount_cent ELSE amount_cent END), 0)").
		Scan(&debtSum).Error; err != nil {
		return 0, err
	}

	return recordSum + adjustmentSum + debtSum, nil
}

// Balance computes the derived balance of one owned wallet in cents.
func (s *WalletService) Balance(userID, walletID uint) (int64, error) {
	const op = "wallet.balance"

	if _, err := getWallet(s.db, op, userID, walletID); err != nil {
		return 0, err
	}
	bal, err := balanceCent(s.db, userID, walletID)
	if err != nil {
		return 0, apperr.NewInternal(op, err)
	}
	return bal, nil
}

// Counts holds how many ledger rows reference a wallet.
type Counts struct {
	Records     int64
	Adjustments int64
	Debts       int64
}

func walletCounts(tx *gorm.DB, userID, walletID uint) (Counts, error) {
	var c Counts
	if err := tx.Model(&models.Record{}).
		Where("user_id = ? AND wallet_id = ?", userID, walletID).
		Count(&c.Records).Error; err != nil {
		return c, err
	}
	if err := tx.Model(&models.BalanceAdjustment{}).
		Where("user_id = ? AND wallet_id = ?", userID, walletID).
		Count(&c.Adjustments).Error; err != nil {
		return c, err
	}
	if err := tx.Model(&models.Debt{}).
		Where("user_id = ? AND wallet_id = ?", userID, walletID).
		Count(&c.Debts).Error; err != nil {
		return c, err
	}
	return c, nil
}
