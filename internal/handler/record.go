package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/YairAcuna3/kaufbuch-sub001/internal/models"
	"github.com/YairAcuna3/kaufbuch-sub001/internal/money"
	"github.com/YairAcuna3/kaufbuch-sub001/internal/service"
	"github.com/YairAcuna3/kaufbuch-sub001/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RecordHandler owns the record (transaction) CRUD surface.
type RecordHandler struct {
	DB      *gorm.DB
	Wallets *service.WalletService
}

func NewRecordHandler(db *gorm.DB, wallets *service.WalletService) *RecordHandler {
	return &RecordHandler{DB: db, Wallets: wallets}
}

// ---------- request/response shapes ----------

type createRecordReq struct {
	Title      string `json:"title" binding:"required,max=128"`
	Amount     string `json:"amount" binding:"required"`
	IsIncome   bool   `json:"is_income"`
	IsGift     bool   `json:"is_gift"`
	Note       string `json:"note" binding:"max=255"`
	WalletID   *uint  `json:"wallet_id"`
	OccurredAt string `json:"occurred_at"`
}

type recordResp struct {
	ID         uint      `json:"id"`
	WalletID   uint      `json:"wallet_id"`
	Title      string    `json:"title"`
	PriceCent  int64     `json:"price_cent"`
	Price      string    `json:"price"`
	IsIncome   bool      `json:"is_income"`
	IsGift     bool      `json:"is_gift"`
	Note       string    `json:"note"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func toRecordResp(r *models.Record) recordResp {
	return recordResp{
		ID:         r.ID,
		WalletID:   r.WalletID,
		Title:      r.Title,
		PriceCent:  r.PriceCent,
		Price:      money.FormatCent(r.PriceCent),
		IsIncome:   r.PriceCent >= 0,
		IsGift:     r.IsGift,
		Note:       r.Note,
		OccurredAt: r.OccurredAt,
		CreatedAt:  r.CreatedAt,
	}
}

// ---------- handlers ----------

// CreateRecord writes one transaction. The sign of the stored price is
// normalized here from is_income; gift records keep their sign but stay
// out of balance math.
func (h *RecordHandler) CreateRecord(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var req createRecordReq
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

	priceCent := amountCent
	if !req.IsIncome {
		priceCent = -amountCent
	}

	record := models.Record{
		UserID:     user.ID,
		WalletID:   wallet.ID,
		Title:      req.Title,
		PriceCent:  priceCent,
		IsGift:     req.IsGift,
		Note:       req.Note,
		OccurredAt: util.ParseOccurredAt(req.OccurredAt),
	}
	if err := h.DB.Create(&record).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save record")
		return
	}

	util.Success(c, util.Response{"record": toRecordResp(&record)})
}

func (h *RecordHandler) UpdateRecord(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}
	id, ok := pathID(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid record id")
		return
	}

	var req createRecordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	amountCent, err := money.ParsePositiveCent(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	var record models.Record
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "record not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load record")
		}
		return
	}

	// editing changes the owning wallet's balance, so both the current
	// and the requested wallet must be writable
	if _, err := h.Wallets.ResolveWriteTarget(user.ID, &record.WalletID); err != nil {
		util.AppError(c, err)
		return
	}
	walletID := record.WalletID
	if req.WalletID != nil {
		walletID = *req.WalletID
	}
	wallet, err := h.Wallets.ResolveWriteTarget(user.ID, &walletID)
	if err != nil {
		util.AppError(c, err)
		return
	}

	priceCent := amountCent
	if !req.IsIncome {
		priceCent = -amountCent
	}

	record.WalletID = wallet.ID
	record.Title = req.Title
	record.PriceCent = priceCent
	record.IsGift = req.IsGift
	record.Note = req.Note
	record.OccurredAt = util.ParseOccurredAt(req.OccurredAt)

	if err := h.DB.Save(&record).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save record")
		return
	}

	util.Success(c, util.Response{"record": toRecordResp(&record)})
}

// ListRecords returns recent records with optional date/type/wallet
// filters, paginated, plus summary totals under the same filters.
func (h *RecordHandler) ListRecords(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	page, size := parsePaging(c)
	offset := (page - 1) * size

	base := h.DB.Model(&models.Record{}).Where("user_id = ?", user.ID)

	if startStr := c.Query("start"); startStr != "" {
		if err := util.ValidateDate(startStr); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "start date must be YYYY-MM-DD")
			return
		}
		start, _ := time.Parse("2006-01-02", startStr)
		base = base.Where("occurred_at >= ?", start)
	}
	if endStr := c.Query("end"); endStr != "" {
		if err := util.ValidateDate(endStr); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "end date must be YYYY-MM-DD")
			return
		}
		end, _ := time.Parse("2006-01-02", endStr)
		base = base.Where("occurred_at < ?", end.Add(24*time.Hour))
	}
	switch c.Query("type") {
	case "income":
		base = base.Where("price_cent >= 0")
	case "expense":
		base = base.Where("price_cent < 0")
	}
	if walletStr := c.Query("wallet_id"); walletStr != "" {
		base = base.Where("wallet_id = ?", walletStr)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to query records")
		return
	}

	var records []models.Record
	if err := base.Session(&gorm.Session{}).
		Order("occurred_at DESC, id DESC").
		Limit(size).
		Offset(offset).
		Find(&records).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to query records")
		return
	}

	items := make([]recordResp, 0, len(records))
	for i := range records {
		items = append(items, toRecordResp(&records[i]))
	}

	// summary under the same filters; gift records stay out, matching
	// balance math
	var all []models.Record
	if err := base.Session(&gorm.Session{}).Find(&all).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to query records")
		return
	}

	var incomeCent, expenseCent int64
	for i := range all {
		if all[i].IsGift {
			continue
		}
		if all[i].PriceCent >= 0 {
			incomeCent += all[i].PriceCent
		} else {
			expenseCent += -all[i].PriceCent
		}
	}

	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
		"summary": gin.H{
			"income_cent":  incomeCent,
			"income":       money.FormatCent(incomeCent),
			"expense_cent": expenseCent,
			"expense":      money.FormatCent(expenseCent),
			"balance_cent": incomeCent - expenseCent,
			"balance":      money.FormatCent(incomeCent - expenseCent),
		},
	})
}

func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}
	id, ok := pathID(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid record id")
		return
	}

	res := h.DB.Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.Record{})
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete record")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "record not found")
		return
	}

	util.Success(c, util.Response{"success": true})
}

func parsePaging(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size
}
