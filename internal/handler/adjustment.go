package handler

import (
	"errors"
	"net/http"

	"github.com/YairAcuna3/kaufbuch-sub001/internal/models"
	"github.com/YairAcuna3/kaufbuch-sub001/internal/money"
	"github.com/YairAcuna3/kaufbuch-sub001/internal/service"
	"github.com/YairAcuna3/kaufbuch-sub001/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdjustmentHandler owns the manual balance adjustment CRUD surface.
// Freeze-evacuation and transfers write adjustments too, but through
// the wallet service, never through here.
type AdjustmentHandler struct {
	DB      *gorm.DB
	Wallets *service.WalletService
}

func NewAdjustmentHandler(db *gorm.DB, wallets *service.WalletService) *AdjustmentHandler {
	return &AdjustmentHandler{DB: db, Wallets: wallets}
}

type adjustmentReq struct {
	Amount   string `json:"amount" binding:"required"`
	Reason   string `json:"reason" binding:"max=255"`
	WalletID *uint  `json:"wallet_id"`
}

func (h *AdjustmentHandler) walletSummary(userID uint, walletID uint) gin.H {
	var w models.Wallet
	if err := h.DB.Where("id = ? AND user_id = ?", walletID, userID).First(&w).Error; err != nil {
		return nil
	}
	bal, err := h.Wallets.Balance(userID, w.ID)
	if err != nil {
		return nil
	}
	return gin.H{
		"id":           w.ID,
		"name":         w.Name,
		"balance_cent": bal,
		"balance":      money.FormatCent(bal),
	}
}

// CreateAdjustment writes one signed manual adjustment. The amount may
// carry either sign; only zero is rejected.
func (h *AdjustmentHandler) CreateAdjustment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var req adjustmentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	amountCent, err := money.ParseCent(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if amountCent == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "amount must not be zero")
		return
	}

	wallet, err := h.Wallets.ResolveWriteTarget(user.ID, req.WalletID)
	if err != nil {
		util.AppError(c, err)
		return
	}

	adj := models.BalanceAdjustment{
		UserID:     user.ID,
		WalletID:   wallet.ID,
		AmountCent: amountCent,
		Reason:     req.Reason,
	}
	if err := h.DB.Create(&adj).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save adjustment")
		return
	}

	util.Success(c, util.Response{
		"adjustment": toAdjustmentResp(&adj),
		"wallet":     h.walletSummary(user.ID, adj.WalletID),
	})
}

func (h *AdjustmentHandler) UpdateAdjustment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}
	id, ok := pathID(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid adjustment id")
		return
	}

	var req adjustmentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	amountCent, err := money.ParseCent(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if amountCent == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "amount must not be zero")
		return
	}

	var adj models.BalanceAdjustment
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&adj).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "adjustment not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load adjustment")
		}
		return
	}

	// same frozen rules as records: neither the current nor the
	// requested wallet may be frozen
	if _, err := h.Wallets.ResolveWriteTarget(user.ID, &adj.WalletID); err != nil {
		util.AppError(c, err)
		return
	}
	walletID := adj.WalletID
	if req.WalletID != nil {
		walletID = *req.WalletID
	}
	wallet, err := h.Wallets.ResolveWriteTarget(user.ID, &walletID)
	if err != nil {
		util.AppError(c, err)
		return
	}

	adj.WalletID = wallet.ID
	adj.AmountCent = amountCent
	adj.Reason = req.Reason

	if err := h.DB.Save(&adj).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save adjustment")
		return
	}

	util.Success(c, util.Response{
		"adjustment": toAdjustmentResp(&adj),
		"wallet":     h.walletSummary(user.ID, adj.WalletID),
	})
}

func (h *AdjustmentHandler) DeleteAdjustment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}
	id, ok := pathID(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid adjustment id")
		return
	}

	res := h.DB.Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.BalanceAdjustment{})
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete adjustment")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "adjustment not found")
		return
	}

	util.Success(c, util.Response{"success": true})
}
