package handler

import (
	"net/http"
	"time"

	"github.com/YairAcuna3/kaufbuch-sub001/internal/models"
	"github.com/YairAcuna3/kaufbuch-sub001/internal/money"
	"github.com/YairAcuna3/kaufbuch-sub001/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StatsHandler serves the monthly overview consumed by the charts.
type StatsHandler struct {
	DB *gorm.DB
}

func NewStatsHandler(db *gorm.DB) *StatsHandler {
	return &StatsHandler{DB: db}
}

// GetMonthlyStats returns daily income/expense plus per-wallet totals
// for one month. Gift records are skipped, matching balance math.
func (h *StatsHandler) GetMonthlyStats(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	monthStr := c.Query("month")
	if monthStr == "" {
		monthStr = time.Now().Format("2006-01")
	}
	t, err := time.Parse("2006-01", monthStr)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "month must be YYYY-MM")
		return
	}

	startOfMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	endOfMonth := startOfMonth.AddDate(0, 1, 0)

	var records []models.Record
	if err := h.DB.Where("user_id = ? AND is_gift = ? AND occurred_at >= ? AND occurred_at < ?",
		user.ID, false, startOfMonth, endOfMonth).
		Order("occurred_at ASC").
		Find(&records).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to query records")
		return
	}

	type dailyStat struct {
		Date        string `json:"date"`
		IncomeCent  int64  `json:"income_cent"`
		ExpenseCent int64  `json:"expense_cent"`
		Income      string `json:"income"`
		Expense     string `json:"expense"`
	}

	dailyMap := make(map[string]*dailyStat)
	walletMap := make(map[uint]*struct {
		IncomeCent  int64
		ExpenseCent int64
	})
	var totalIncomeCent, totalExpenseCent int64

	for i := range records {
		r := &records[i]
		dateKey := r.OccurredAt.Format("2006-01-02")

		ds, ok := dailyMap[dateKey]
		if !ok {
			ds = &dailyStat{Date: dateKey}
			dailyMap[dateKey] = ds
		}
		ws, ok := walletMap[r.WalletID]
		if !ok {
			ws = &struct {
				IncomeCent  int64
				ExpenseCent int64
			}{}
			walletMap[r.WalletID] = ws
		}

		if r.PriceCent >= 0 {
			ds.IncomeCent += r.PriceCent
			ws.IncomeCent += r.PriceCent
			totalIncomeCent += r.PriceCent
		} else {
			ds.ExpenseCent += -r.PriceCent
			ws.ExpenseCent += -r.PriceCent
			totalExpenseCent += -r.PriceCent
		}
	}

	daily := make([]dailyStat, 0, len(dailyMap))
	for _, ds := range dailyMap {
		ds.Income = money.FormatCent(ds.IncomeCent)
		ds.Expense = money.FormatCent(ds.ExpenseCent)
		daily = append(daily, *ds)
	}

	byWallet := make([]gin.H, 0, len(walletMap))
	for walletID, ws := range walletMap {
		var w models.Wallet
		name := ""
		if err := h.DB.Select("name").Where("id = ? AND user_id = ?", walletID, user.ID).First(&w).Error; err == nil {
			name = w.Name
		}
		byWallet = append(byWallet, gin.H{
			"wallet_id":    walletID,
			"wallet_name":  name,
			"income_cent":  ws.IncomeCent,
			"income":       money.FormatCent(ws.IncomeCent),
			"expense_cent": ws.ExpenseCent,
			"expense":      money.FormatCent(ws.ExpenseCent),
		})
	}

	util.Success(c, util.Response{
		"month":         monthStr,
		"daily":         daily,
		"by_wallet":     byWallet,
		"total_income":  money.FormatCent(totalIncomeCent),
		"total_expense": money.FormatCent(totalExpenseCent),
		"total_balance": money.FormatCent(totalIncomeCent - totalExpenseCent),
	})
}
