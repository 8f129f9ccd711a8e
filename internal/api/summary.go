package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/spendwise-dev/spendwise/internal/model"
)

// MonthlyByGroup handles GET /api/summary/monthly/by-group?month=YYYY-MM.
func (h *Handler) MonthlyByGroup(c *gin.Context) {
	v := strings.TrimSpace(c.Query("month"))
	if v == "" {
		badRequest(c, "month is required")
		return
	}
	month, err := model.ParseMonth(v)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	sum, err := h.store.SummarizeMonth(c.Request.Context(), month)
	if err != nil {
		internalError(c, err)
		return
	}
	byGroup := gin.H{}
	for _, g := range model.Groups {
		byGroup[string(g)] = money(sum.ByGroup[g])
	}
	c.JSON(http.StatusOK, gin.H{
		"month":    sum.Month,
		"income":   money(sum.Income),
		"expenses": money(sum.Expenses),
		"byGroup":  byGroup,
		"net":      money(sum.Net),
	})
}

// Months handles GET /api/months.
func (h *Handler) Months(c *gin.Context) {
	months, err := h.store.Months(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	if months == nil {
		months = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"months": months})
}

// DBPing handles GET /api/db-ping.
func (h *Handler) DBPing(c *gin.Context) {
	version, err := h.store.Ping(c.Request.Context())
	if err != nil {
		fail(c, http.StatusServiceUnavailable, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"db": "ok", "version": version})
}
