package service

import (
	"github.com/YairAcuna3/kaufbuch-sub001/internal/apperr"
	"github.com/YairAcuna3/kaufbuch-sub001/internal/models"

	"gorm.io/gorm"
)

// Transfer moves amountCent between two unfrozen wallets by writing a
// paired adjustment: -amount on the source, +amount on the destination.
// No stored balance is mutated; the two rows are the whole effect and
// commit together or not at all.
func (s *WalletService) Transfer(userID, fromID, toID uint, amountCent int64) (*models.BalanceAdjustment, *models.BalanceAdjustment, error) {
	const op = "wallet.transfer"

	if amountCent <= 0 {
		return nil, nil, apperr.New(apperr.Validation, op, "transfer amount must be positive")
	}
	if fromID == toID {
		return nil, nil, apperr.New(apperr.Validation, op, "cannot transfer a wallet to itself")
	}

	var fromAdj, toAdj *models.BalanceAdjustment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		from, err := getWallet(tx, op, userID, fromID)
		if err != nil {
			return err
		}
		to, err := getWallet(tx, op, userID, toID)
		if err != nil {
			return err
		}
		if from.IsFrozen {
			return apperr.Newf(apperr.Frozen, op, "wallet %q is frozen", from.Name)
		}
		if to.IsFrozen {
			return apperr.Newf(apperr.Frozen, op, "wallet %q is frozen", to.Name)
		}

		pair := []models.BalanceAdjustment{
			{
				UserID:     userID,
				WalletID:   from.ID,
				AmountCent: -amountCent,
				Reason:     "Transferred to " + to.Name,
			},
			{
				UserID:     userID,
				WalletID:   to.ID,
				AmountCent: amountCent,
				Reason:     "Transferred from " + from.Name,
			},
		}
		if err := tx.Create(&pair).Error; err != nil {
			return apperr.NewInternal(op, err)
		}
		fromAdj, toAdj = &pair[0], &pair[1]
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return fromAdj, toAdj, nil
}
