package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/spendwise-dev/spendwise/internal/model"
)

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	fail(c, http.StatusBadRequest, msg)
}

func internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	fail(c, http.StatusInternalServerError, err.Error())
}

// money renders an amount as a JSON number with two decimals.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

type categoryDTO struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Group    *string `json:"group"`
	IsIncome bool    `json:"isIncome"`
}

func toCategoryDTO(c *model.Category) *categoryDTO {
	if c == nil {
		return nil
	}
	dto := &categoryDTO{ID: c.ID, Name: c.Name, IsIncome: c.IsIncome}
	if g := c.GroupName(); g != "" {
		dto.Group = &g
	}
	return dto
}

type transactionDTO struct {
	ID          uint         `json:"id"`
	PostedAt    string       `json:"postedAt"`
	Description string       `json:"description"`
	Amount      json.Number  `json:"amount"`
	Category    *categoryDTO `json:"category"`
	Hash        string       `json:"hash,omitempty"`
}

func toTransactionDTO(t *model.Transaction) transactionDTO {
	return transactionDTO{
		ID:          t.ID,
		PostedAt:    t.PostedAt.Format("2006-01-02"),
		Description: t.Description,
		Amount:      money(t.Amount),
		Category:    toCategoryDTO(t.Category),
		Hash:        t.Hash,
	}
}
