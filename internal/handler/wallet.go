package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/YairAcuna3/kaufbuch-sub001/internal/models"
	"github.com/YairAcuna3/kaufbuch-sub001/internal/money"
	"github.com/YairAcuna3/kaufbuch-sub001/internal/service"
	"github.com/YairAcuna3/kaufbuch-sub001/internal/util"

	"github.com/gin-gonic/gin"
)

// WalletHandler exposes the ledger core over HTTP.
type WalletHandler struct {
	Wallets *service.WalletService
}

func NewWalletHandler(wallets *service.WalletService) *WalletHandler {
	return &WalletHandler{Wallets: wallets}
}

// ---------- request/response shapes ----------

type createWalletReq struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"max=255"`
	ParentID    *uint  `json:"parent_id"`
}

// updateWalletReq keeps parent_id raw so the three cases stay apart:
// absent = unchanged, null = clear, number = new parent.
type updateWalletReq struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	ParentID    json.RawMessage `json:"parent_id"`
}

type freezeWalletReq struct {
	TargetWalletID *uint `json:"target_wallet_id"`
}

type transferReq struct {
	FromWalletID uint   `json:"from_wallet_id" binding:"required"`
	ToWalletID   uint   `json:"to_wallet_id" binding:"required"`
	Amount       string `json:"amount" binding:"required"`
}

type walletCountsResp struct {
	Records     int64 `json:"records"`
	Adjustments int64 `json:"adjustments"`
	Debts       int64 `json:"debts"`
}

type walletResp struct {
	ID          uint              `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	IsDefault   bool              `json:"is_default"`
	IsFrozen    bool              `json:"is_frozen"`
	ParentID    *uint             `json:"parent_id"`
	BalanceCent int64             `json:"balance_cent"`
	Balance     string            `json:"balance"`
	Counts      *walletCountsResp `json:"counts,omitempty"`
	Children    []walletResp      `json:"children,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

func toWalletNodeResp(n service.WalletNode) walletResp {
	resp := walletResp{
		ID:          n.Wallet.ID,
		Name:        n.Wallet.Name,
		Description: n.Wallet.Description,
		IsDefault:   n.Wallet.IsDefault,
		IsFrozen:    n.Wallet.IsFrozen,
		ParentID:    n.Wallet.ParentID,
		BalanceCent: n.BalanceCent,
		Balance:     money.FormatCent(n.BalanceCent),
		Counts: &walletCountsResp{
			Records:     n.Counts.Records,
			Adjustments: n.Counts.Adjustments,
			Debts:       n.Counts.Debts,
		},
		CreatedAt: n.Wallet.CreatedAt,
	}
	for _, child := range n.Children {
		resp.Children = append(resp.Children, toWalletNodeResp(child))
	}
	return resp
}

func (h *WalletHandler) toWalletResp(userID uint, w *models.Wallet) (walletResp, error) {
	bal, err := h.Wallets.Balance(userID, w.ID)
	if err != nil {
		return walletResp{}, err
	}
	return walletResp{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		IsDefault:   w.IsDefault,
		IsFrozen:    w.IsFrozen,
		ParentID:    w.ParentID,
		BalanceCent: bal,
		Balance:     money.FormatCent(bal),
		CreatedAt:   w.CreatedAt,
	}, nil
}

// walletSuccess renders a single wallet with its derived balance.
func (h *WalletHandler) walletSuccess(c *gin.Context, userID uint, w *models.Wallet) {
	resp, err := h.toWalletResp(userID, w)
	if err != nil {
		util.AppError(c, err)
		return
	}
	util.Success(c, util.Response{"wallet": resp})
}

type adjustmentResp struct {
	ID         uint      `json:"id"`
	WalletID   uint      `json:"wallet_id"`
	AmountCent int64     `json:"amount_cent"`
	Amount     string    `json:"amount"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}

func toAdjustmentResp(a *models.BalanceAdjustment) adjustmentResp {
	return adjustmentResp{
		ID:         a.ID,
		WalletID:   a.WalletID,
		AmountCent: a.AmountCent,
		Amount:     money.FormatCent(a.AmountCent),
		Reason:     a.Reason,
		CreatedAt:  a.CreatedAt,
	}
}

// ---------- handlers ----------

// ListWallets returns the wallet forest with derived balances and
// reference counts. ?include_frozen=true adds frozen wallets.
func (h *WalletHandler) ListWallets(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	includeFrozen := c.Query("include_frozen") == "true"
	roots, err := h.Wallets.List(user.ID, includeFrozen)
	if err != nil {
		util.AppError(c, err)
		return
	}

	items := make([]walletResp, 0, len(roots))
	for _, n := range roots {
		items = append(items, toWalletNodeResp(n))
	}
	util.Success(c, util.Response{"wallets": items})
}

func (h *WalletHandler) CreateWallet(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var req createWalletReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	w, err := h.Wallets.Create(user.ID, req.Name, req.Description, req.ParentID)
	if err != nil {
		util.AppError(c, err)
		return
	}
	h.walletSuccess(c, user.ID, w)
}

func (h *WalletHandler) UpdateWallet(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}
	id, ok := pathID(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid wallet id")
		return
	}

	var req updateWalletReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	upd := service.WalletUpdate{
		Name:        req.Name,
		Description: req.Description,
	}
	if len(req.ParentID) > 0 {
		upd.SetParent = true
		if string(req.ParentID) != "null" {
			var pid uint
			if err := json.Unmarshal(req.ParentID, &pid); err != nil || pid == 0 {
				util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parent_id")
				return
			}
			upd.ParentID = &pid
		}
	}

	w, err := h.Wallets.Update(user.ID, id, upd)
	if err != nil {
		util.AppError(c, err)
		return
	}
	h.walletSuccess(c, user.ID, w)
}

func (h *WalletHandler) DeleteWallet(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}
	id, ok := pathID(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid wallet id")
		return
	}

	if err := h.Wallets.Delete(user.ID, id); err != nil {
		util.AppError(c, err)
		return
	}
	util.Success(c, util.Response{"success": true})
}

// FreezeWallet freezes a wallet, evacuating a nonzero balance to the
// target wallet named in the body. A rejection for nonzero balance
// carries the current balance so the caller can pick a target without
// a second round trip.
func (h *WalletHandler) FreezeWallet(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}
	id, ok := pathID(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid wallet id")
		return
	}

	var req freezeWalletReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
			return
		}
	}

	w, err := h.Wallets.Freeze(user.ID, id, req.TargetWalletID)
	if err != nil {
		util.AppError(c, err)
		return
	}
	h.walletSuccess(c, user.ID, w)
}

func (h *WalletHandler) UnfreezeWallet(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}
	id, ok := pathID(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid wallet id")
		return
	}

	w, err := h.Wallets.Unfreeze(user.ID, id)
	if err != nil {
		util.AppError(c, err)
		return
	}
	h.walletSuccess(c, user.ID, w)
}

// Transfer moves balance between two wallets via a paired adjustment.
func (h *WalletHandler) Transfer(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var req transferReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	amountCent, err := money.ParsePositiveCent(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	fromAdj, toAdj, err := h.Wallets.Transfer(user.ID, req.FromWalletID, req.ToWalletID, amountCent)
	if err != nil {
		util.AppError(c, err)
		return
	}

	util.Success(c, util.Response{
		"success":         true,
		"from_adjustment": toAdjustmentResp(fromAdj),
		"to_adjustment":   toAdjustmentResp(toAdj),
	})
}
