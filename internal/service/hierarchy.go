package service

import (
	"github.com/YairAcuna3/kaufbuch-sub001/internal/apperr"
	"github.com/YairAcuna3/kaufbuch-sub001/internal/models"
)

// WalletNode is a wallet with its derived state and direct children,
// as served by the list endpoint.
type WalletNode struct {
	Wallet      models.Wallet
	BalanceCent int64
	Counts      Counts
	Children    []WalletNode
}

// List returns the user's wallet forest: root wallets with children
// nested inline, each carrying its computed balance and reference
// counts. Frozen wallets are skipped unless includeFrozen is set; a
// frozen wallet is always a root, freezing detaches it.
func (s *WalletService) List(userID uint, includeFrozen bool) ([]WalletNode, error) {
	const op = "wallet.list"

	q := s.db.Where("user_id = ?", userID)
	if !includeFrozen {
		q = q.Where("is_frozen = ?", false)
	}

	var wallets []models.Wallet
	if err := q.Order("is_default DESC, name ASC").Find(&wallets).Error; err != nil {
		return nil, apperr.NewInternal(op, err)
	}

	listed := make(map[uint]bool, len(wallets))
	for i := range wallets {
		listed[wallets[i].ID] = true
	}

	var build func(w models.Wallet) (WalletNode, error)
	build = func(w models.Wallet) (WalletNode, error) {
		bal, err := balanceCent(s.db, userID, w.ID)
		if err != nil {
			return WalletNode{}, apperr.NewInternal(op, err)
		}
		counts, err := walletCounts(s.db, userID, w.ID)
		if err != nil {
			return WalletNode{}, apperr.NewInternal(op, err)
		}
		n := WalletNode{Wallet: w, BalanceCent: bal, Counts: counts}
		for i := range wallets {
			c := wallets[i]
			if c.ParentID != nil && *c.ParentID == w.ID {
				child, err := build(c)
				if err != nil {
					return WalletNode{}, err
				}
				n.Children = append(n.Children, child)
			}
		}
		return n, nil
	}

	// roots: no parent, or parent not in the listed set
	var roots []WalletNode
	for i := range wallets {
		w := wallets[i]
		if w.ParentID != nil && listed[*w.ParentID] {
			continue
		}
		n, err := build(w)
		if err != nil {
			return nil, err
		}
		roots = append(roots, n)
	}
	return roots, nil
}

// Children returns the direct children of one owned wallet.
func (s *WalletService) Children(userID, walletID uint) ([]models.Wallet, error) {
	const op = "wallet.children"

	if _, err := getWallet(s.db, op, userID, walletID); err != nil {
		return nil, err
	}
	var children []models.Wallet
	if err := s.db.Where("user_id = ? AND parent_id = ?", userID, walletID).
		Order("name ASC").Find(&children).Error; err != nil {
		return nil, apperr.NewInternal(op, err)
	}
	return children, nil
}
