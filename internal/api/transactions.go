package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/spendwise-dev/spendwise/internal/model"
	"github.com/spendwise-dev/spendwise/internal/store"
)

// monthParam parses the optional ?month= filter. It reports false after
// writing a 400 response.
func monthParam(c *gin.Context) (*model.Month, bool) {
	v := strings.TrimSpace(c.Query("month"))
	if v == "" {
		return nil, true
	}
	m, err := model.ParseMonth(v)
	if err != nil {
		badRequest(c, err.Error())
		return nil, false
	}
	return &m, true
}

// ListTransactions handles GET /api/transactions.
func (h *Handler) ListTransactions(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		return
	}
	txns, err := h.store.ListTransactions(c.Request.Context(), month)
	if err != nil {
		internalError(c, err)
		return
	}
	out := make([]transactionDTO, 0, len(txns))
	for i := range txns {
		out = append(out, toTransactionDTO(&txns[i]))
	}
	c.JSON(http.StatusOK, out)
}

// AddSample handles POST /api/transactions/sample by booking a grocery
// purchase dated today.
func (h *Handler) AddSample(c *gin.Context) {
	ctx := c.Request.Context()
	groceries, err := h.store.FindCategory(ctx, "Groceries")
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusConflict, "No Groceries category")
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}

	y, m, d := h.now().Date()
	t := &model.Transaction{
		PostedAt:    time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Description: "Whole Foods",
		Amount:      decimal.RequireFromString("-23.45"),
		Category:    groceries,
	}
	if err := h.store.AppendTransaction(ctx, t); err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTransactionDTO(t))
}

const exportSheet = "Transactions"

var exportHeaders = []string{"Date", "Description", "Amount", "Category", "Group"}

// ExportTransactions handles GET /api/transactions/export as an XLSX
// download.
func (h *Handler) ExportTransactions(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		return
	}
	txns, err := h.store.ListTransactions(c.Request.Context(), month)
	if err != nil {
		internalError(c, err)
		return
	}

	f, err := buildWorkbook(txns)
	if err != nil {
		internalError(c, err)
		return
	}
	defer f.Close()

	name := "transactions"
	if month != nil {
		name += "_" + month.String()
	}
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".xlsx"))
	if err := f.Write(c.Writer); err != nil {
		h.log.Error().Err(err).Msg("writing workbook")
	}
}

func buildWorkbook(txns []model.Transaction) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		f.Close()
		return nil, err
	}

	for i, hdr := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, hdr); err != nil {
			f.Close()
			return nil, err
		}
	}

	for i, t := range txns {
		row := i + 2
		amount, _ := t.Amount.Round(2).Float64()
		values := []any{
			t.PostedAt.Format("2006-01-02"),
			t.Description,
			amount,
			categoryName(t.Category),
			t.Category.GroupName(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	f.SetColWidth(exportSheet, "A", "A", 12)
	f.SetColWidth(exportSheet, "B", "B", 40)
	f.SetColWidth(exportSheet, "C", "C", 12)
	f.SetColWidth(exportSheet, "D", "E", 20)
	return f, nil
}

func categoryName(c *model.Category) string {
	if c == nil {
		return ""
	}
	return c.Name
}
