package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/YairAcuna3/kaufbuch-sub001/internal/models"
	"github.com/YairAcuna3/kaufbuch-sub001/internal/money"
	"github.com/YairAcuna3/kaufbuch-sub001/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler streams the user's records as CSV or XLSX.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

func (h *ExportHandler) loadRecords(userID uint) ([]models.Record, map[uint]string, error) {
	var records []models.Record
	if err := h.DB.Where("user_id = ?", userID).
		Order("occurred_at DESC").
		Find(&records).Error; err != nil {
		return nil, nil, err
	}

	var wallets []models.Wallet
	if err := h.DB.Select("id", "name").Where("user_id = ?", userID).Find(&wallets).Error; err != nil {
		return nil, nil, err
	}
	names := make(map[uint]string, len(wallets))
	for _, w := range wallets {
		names[w.ID] = w.Name
	}
	return records, names, nil
}

func recordRow(r *models.Record, walletNames map[uint]string) []string {
	kind := "expense"
	if r.PriceCent >= 0 {
		kind = "income"
	}
	gift := "no"
	if r.IsGift {
		gift = "yes"
	}
	return []string{
		kind,
		r.Title,
		money.FormatCent(r.PriceCent),
		walletNames[r.WalletID],
		gift,
		r.Note,
		r.OccurredAt.Format("2006-01-02"),
	}
}

var exportHeader = []string{"Type", "Title", "Amount", "Wallet", "Gift", "Note", "Date"}

// ExportCSV exports all records as CSV.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	records, walletNames, err := h.loadRecords(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to query records")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"records_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	// UTF-8 BOM so spreadsheet apps detect the encoding
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer.Write(exportHeader)
	for i := range records {
		writer.Write(recordRow(&records[i], walletNames))
	}
}

// ExportXLSX exports all records as an Excel workbook.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	records, walletNames, err := h.loadRecords(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to query records")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Records"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, title)
	}
	for i := range records {
		row := recordRow(&records[i], walletNames)
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"records_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to write workbook")
		return
	}
}
