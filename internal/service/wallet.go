package service

import (
	"errors"
	"strings"

	"github.com/YairAcuna3/kaufbuch-sub001/internal/apperr"
	"github.com/YairAcuna3/kaufbuch-sub001/internal/models"
	"github.com/YairAcuna3/kaufbuch-sub001/internal/money"
	"github.com/YairAcuna3/kaufbuch-sub001/internal/util"

	"gorm.io/gorm"
)

// WalletService owns the ledger core: wallet lifecycle, hierarchy,
// balance computation and transfers. All lookups filter by the owning
// user; a wallet that exists but belongs to someone else is reported
// exactly like a missing one.
type WalletService struct {
	db *gorm.DB
}

func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{db: db}
}

// getWallet loads one wallet scoped to its owner.
func getWallet(tx *gorm.DB, op string, userID, walletID uint) (*models.Wallet, error) {
	var w models.Wallet
	err := tx.Where("id = ? AND user_id = ?", walletID, userID).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, op, "wallet not found")
	}
	if err != nil {
		return nil, apperr.NewInternal(op, err)
	}
	return &w, nil
}

// resolveParent validates a proposed parent wallet. Missing, foreign
// and frozen parents are all rejected the same way.
func resolveParent(tx *gorm.DB, op string, userID, parentID uint) (*models.Wallet, error) {
	p, err := getWallet(tx, op, userID, parentID)
	if err != nil {
		return nil, err
	}
	if p.IsFrozen {
		return nil, apperr.New(apperr.NotFound, op, "parent wallet not found")
	}
	return p, nil
}

// DefaultWallet returns the user's default wallet, the implicit target
// for writes that name no wallet.
func (s *WalletService) DefaultWallet(userID uint) (*models.Wallet, error) {
	const op = "wallet.default"
	var w models.Wallet
	err := s.db.Where("user_id = ? AND is_default = ?", userID, true).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, op, "default wallet not found")
	}
	if err != nil {
		return nil, apperr.NewInternal(op, err)
	}
	return &w, nil
}

// ResolveWriteTarget picks the wallet a new record/adjustment/debt goes
// to: the named wallet, or the default wallet when none is given.
// Frozen wallets are never valid write targets.
func (s *WalletService) ResolveWriteTarget(userID uint, walletID *uint) (*models.Wallet, error) {
	const op = "wallet.target"
	var w *models.Wallet
	var err error
	if walletID == nil {
		w, err = s.DefaultWallet(userID)
	} else {
		w, err = getWallet(s.db, op, userID, *walletID)
	}
	if err != nil {
		return nil, err
	}
	if w.IsFrozen {
		return nil, apperr.New(apperr.Frozen, op, "wallet is frozen")
	}
	return w, nil
}

// Create adds a new wallet. It starts unfrozen, non-default and with
// balance zero (no ledger entries reference it yet).
func (s *WalletService) Create(userID uint, name, description string, parentID *uint) (*models.Wallet, error) {
	const op = "wallet.create"

	name = strings.TrimSpace(name)
	if err := util.ValidateWalletName(name); err != nil {
		return nil, apperr.New(apperr.Validation, op, err.Error())
	}

	var wallet *models.Wallet
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Wallet{}).
			Where("user_id = ? AND name = ?", userID, name).
			Count(&count).Error; err != nil {
			return apperr.NewInternal(op, err)
		}
		if count > 0 {
			return apperr.Newf(apperr.Conflict, op, "wallet %q already exists", name)
		}

		if parentID != nil {
			if _, err := resolveParent(tx, op, userID, *parentID); err != nil {
				return err
			}
		}

		w := models.Wallet{
			UserID:      userID,
			Name:        name,
			Description: description,
			ParentID:    parentID,
		}
		if err := tx.Create(&w).Error; err != nil {
			return apperr.NewInternal(op, err)
		}
		wallet = &w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

// WalletUpdate describes a partial wallet update. The parent reference
// is tri-state: SetParent false leaves it alone, SetParent true with a
// nil ParentID clears it, and a non-nil ParentID must resolve to a
// valid parent.
type WalletUpdate struct {
	Name        *string
	Description *string
	SetParent   bool
	ParentID    *uint
}

// Update renames, re-describes and/or reparents a wallet. The default
// wallet may be renamed and reparented; only its default flag is
// immutable. Reparenting walks the proposed parent's ancestor chain so
// a wallet can never become its own ancestor.
func (s *WalletService) Update(userID, walletID uint, upd WalletUpdate) (*models.Wallet, error) {
	const op = "wallet.update"

	var wallet *models.Wallet
	err := s.db.Transaction(func(tx *gorm.DB) error {
		w, err := getWallet(tx, op, userID, walletID)
		if err != nil {
			return err
		}

		if upd.Name != nil {
			name := strings.TrimSpace(*upd.Name)
			if err := util.ValidateWalletName(name); err != nil {
				return apperr.New(apperr.Validation, op, err.Error())
			}
			var count int64
			if err := tx.Model(&models.Wallet{}).
				Where("user_id = ? AND name = ? AND id <> ?", userID, name, walletID).
				Count(&count).Error; err != nil {
				return apperr.NewInternal(op, err)
			}
			if count > 0 {
				return apperr.Newf(apperr.Conflict, op, "wallet %q already exists", name)
			}
			w.Name = name
		}

		if upd.Description != nil {
			w.Description = *upd.Description
		}

		if upd.SetParent {
			switch {
			case upd.ParentID == nil:
				w.ParentID = nil
			case *upd.ParentID == walletID:
				return apperr.New(apperr.Validation, op, "wallet cannot be its own parent")
			default:
				if w.IsFrozen {
					return apperr.New(apperr.Frozen, op, "frozen wallet cannot gain a parent")
				}
				if _, err := resolveParent(tx, op, userID, *upd.ParentID); err != nil {
					return err
				}
				cycle, err := wouldCreateCycle(tx, userID, walletID, *upd.ParentID)
				if err != nil {
					return apperr.NewInternal(op, err)
				}
				if cycle {
					return apperr.New(apperr.Validation, op, "wallet cannot be its own ancestor")
				}
				w.ParentID = upd.ParentID
			}
		}

		if err := tx.Save(w).Error; err != nil {
			return apperr.NewInternal(op, err)
		}
		wallet = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

// wouldCreateCycle reports whether parenting walletID under parentID
// would close a loop. It walks up from the proposed parent; the seen
// set guards against a pre-existing loop in stored data.
func wouldCreateCycle(tx *gorm.DB, userID, walletID, parentID uint) (bool, error) {
	seen := make(map[uint]bool)
	cur := &parentID
	for cur != nil {
		if *cur == walletID {
			return true, nil
		}
		if seen[*cur] {
			return false, nil
		}
		seen[*cur] = true

		var w models.Wallet
		err := tx.Select("id", "parent_id").
			Where("id = ? AND user_id = ?", *cur, userID).
			First(&w).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		cur = w.ParentID
	}
	return false, nil
}

// Delete removes a wallet permanently. The default wallet is protected
// and a wallet still referenced by any record, debt or adjustment
// cannot go.
func (s *WalletService) Delete(userID, walletID uint) error {
	const op = "wallet.delete"

	return s.db.Transaction(func(tx *gorm.DB) error {
		w, err := getWallet(tx, op, userID, walletID)
		if err != nil {
			return err
		}
		if w.IsDefault {
			return apperr.New(apperr.Protected, op, "default wallet cannot be deleted")
		}

		counts, err := walletCounts(tx, userID, walletID)
		if err != nil {
			return apperr.NewInternal(op, err)
		}
		if counts.Records+counts.Adjustments+counts.Debts > 0 {
			return apperr.New(apperr.NotEmpty, op, "wallet still has records, debts or adjustments")
		}

		// children keep existing, they just become roots
		if err := tx.Model(&models.Wallet{}).
			Where("user_id = ? AND parent_id = ?", userID, walletID).
			Update("parent_id", nil).Error; err != nil {
			return apperr.NewInternal(op, err)
		}

		if err := tx.Delete(&models.Wallet{}, w.ID).Error; err != nil {
			return apperr.NewInternal(op, err)
		}
		return nil
	})
}

// Freeze marks a wallet frozen and detaches it from the hierarchy. A
// wallet must carry balance zero to freeze; a nonzero balance is
// evacuated to targetID via a paired adjustment written in the same
// transaction as the flag flip.
func (s *WalletService) Freeze(userID, walletID uint, targetID *uint) (*models.Wallet, error) {
	const op = "wallet.freeze"

	var wallet *models.Wallet
	err := s.db.Transaction(func(tx *gorm.DB) error {
		w, err := getWallet(tx, op, userID, walletID)
		if err != nil {
			return err
		}
		if w.IsDefault {
			return apperr.New(apperr.Protected, op, "default wallet cannot be frozen")
		}
		if w.IsFrozen {
			return apperr.New(apperr.AlreadyFrozen, op, "wallet is already frozen")
		}

		// balance is re-read inside this transaction, so the zero
		// check and the flag flip act as one unit
		bal, err := balanceCent(tx, userID, walletID)
		if err != nil {
			return apperr.NewInternal(op, err)
		}

		if bal != 0 {
			if targetID == nil {
				return apperr.New(apperr.Validation, op,
					"wallet balance is not zero, pick a target wallet to move it to").
					WithDetail("balance", money.FormatCent(bal)).
					WithDetail("balance_cent", bal)
			}
			if *targetID == walletID {
				return apperr.New(apperr.Validation, op, "target wallet must differ from the frozen one")
			}
			target, err := getWallet(tx, op, userID, *targetID)
			if err != nil {
				return err
			}
			if target.IsFrozen {
				return apperr.New(apperr.Frozen, op, "target wallet is frozen")
			}

			pair := []models.BalanceAdjustment{
				{
					UserID:     userID,
					WalletID:   w.ID,
					AmountCent: -bal,
					Reason:     "Frozen: balance moved to " + target.Name,
				},
				{
					UserID:     userID,
					WalletID:   target.ID,
					AmountCent: bal,
					Reason:     "Frozen: balance received from " + w.Name,
				},
			}
			if err := tx.Create(&pair).Error; err != nil {
				return apperr.NewInternal(op, err)
			}
		}

		w.IsFrozen = true
		w.ParentID = nil
		if err := tx.Save(w).Error; err != nil {
			return apperr.NewInternal(op, err)
		}
		wallet = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

// Unfreeze clears the frozen flag. The prior parent is not restored.
func (s *WalletService) Unfreeze(userID, walletID uint) (*models.Wallet, error) {
	const op = "wallet.unfreeze"

	w, err := getWallet(s.db, op, userID, walletID)
	if err != nil {
		return nil, err
	}
	if !w.IsFrozen {
		return nil, apperr.New(apperr.NotFrozen, op, "wallet is not frozen")
	}

	w.IsFrozen = false
	if err := s.db.Save(w).Error; err != nil {
		return nil, apperr.NewInternal(op, err)
	}
	return w, nil
}
