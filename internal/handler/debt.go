package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/YairAcuna3/kaufbuch-sub001/internal/models"
	"github.com/YairAcuna3/kaufbuch-sub001/internal/money"
	"github.com/YairAcuna3/kaufbuch-sub001/internal/service"
	"github.com/YairAcuna3/kaufbuch-sub001/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DebtHandler owns the IOU ("doubt") CRUD surface. Settlement is just
// an update flipping was_pay; the balance effect follows from the
// derived balance computation, no row beyond the debt itself changes.
type DebtHandler struct {
	DB      *gorm.DB
	Wallets *service.WalletService
}

func NewDebtHandler(db *gorm.DB, wallets *service.WalletService) *DebtHandler {
	return &DebtHandler{DB: db, Wallets: wallets}
}

type debtReq struct {
	ToWho    string `json:"to_who" binding:"required,max=128"`
	Doubt    bool   `json:"doubt"` // true = I owe
	Amount   string `json:"amount" binding:"required"`
	WasPay   bool   `json:"was_pay"`
	Note     string `json:"note" binding:"max=255"`
	WalletID *uint  `json:"wallet_id"`
}

type debtResp struct {
	ID         uint      `json:"id"`
	WalletID   uint      `json:"wallet_id"`
	ToWho      string    `json:"to_who"`
	Doubt      bool      `json:"doubt"`
	AmountCent int64     `json:"amount_cent"`
	Amount     string    `json:"amount"`
	WasPay     bool      `json:"was_pay"`
	Note       string    `json:"note"`
	CreatedAt  time.Time `json:"created_at"`
}

func toDebtResp(d *models.Debt) debtResp {
	return debtResp{
		ID:         d.ID,
		WalletID:   d.WalletID,
		ToWho:      d.ToWho,
		Doubt:      d.Doubt,
		AmountCent: d.AmountCent,
		Amount:     money.FormatCent(d.AmountCent),
		WasPay:     d.WasPay,
		Note:       d.Note,
		CreatedAt:  d.CreatedAt,
	}
}

func (h *DebtHandler) CreateDebt(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var req debtReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	amountCent, err := money.ParsePositiveCent(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	wallet, err := h.Wallets.ResolveWriteTarget(user.ID, req.WalletID)
	if err != nil {
		util.AppError(c, err)
		return
	}

	debt := models.Debt{
		UserID:     user.ID,
		WalletID:   wallet.ID,
		ToWho:      req.ToWho,
		Doubt:      req.Doubt,
		AmountCent: amountCent,
		WasPay:     req.WasPay,
		Note:       req.Note,
	}
	if err := h.DB.Create(&debt).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save debt")
		return
	}

	util.Success(c, util.Response{"debt": toDebtResp(&debt)})
}

func (h *DebtHandler) ListDebts(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	base := h.DB.Where("user_id = ?", user.ID)
	switch c.Query("settled") {
	case "true":
		base = base.Where("was_pay = ?", true)
	case "false":
		base = base.Where("was_pay = ?", false)
	}

	var debts []models.Debt
	if err := base.Order("created_at DESC, id DESC").Find(&debts).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to query debts")
		return
	}

	items := make([]debtResp, 0, len(debts))
	for i := range debts {
		items = append(items, toDebtResp(&debts[i]))
	}
	util.Success(c, util.Response{"debts": items})
}

func (h *DebtHandler) UpdateDebt(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}
	id, ok := pathID(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid debt id")
		return
	}

	var req debtReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	amountCent, err := money.ParsePositiveCent(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	var debt models.Debt
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&debt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "debt not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load debt")
		}
		return
	}

	if _, err := h.Wallets.ResolveWriteTarget(user.ID, &debt.WalletID); err != nil {
		util.AppError(c, err)
		return
	}
	walletID := debt.WalletID
	if req.WalletID != nil {
		walletID = *req.WalletID
	}
	wallet, err := h.Wallets.ResolveWriteTarget(user.ID, &walletID)
	if err != nil {
		util.AppError(c, err)
		return
	}

	debt.WalletID = wallet.ID
	debt.ToWho = req.ToWho
	debt.Doubt = req.Doubt
	debt.AmountCent = amountCent
	debt.WasPay = req.WasPay
	debt.Note = req.Note

	if err := h.DB.Save(&debt).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save debt")
		return
	}

	util.Success(c, util.Response{"debt": toDebtResp(&debt)})
}

func (h *DebtHandler) DeleteDebt(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}
	id, ok := pathID(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid debt id")
		return
	}

	res := h.DB.Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.Debt{})
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete debt")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "debt not found")
		return
	}

	util.Success(c, util.Response{"success": true})
}
