package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/spendwise-dev/spendwise/internal/model"
	"github.com/spendwise-dev/spendwise/internal/store"
)

// ListCategories handles GET /api/categories.
func (h *Handler) ListCategories(c *gin.Context) {
	cats, err := h.store.ListCategories(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	out := make([]*categoryDTO, 0, len(cats))
	for i := range cats {
		out = append(out, toCategoryDTO(&cats[i]))
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

type createCategoryRequest struct {
	Name     string  `json:"name"`
	Group    *string `json:"group"`
	IsIncome bool    `json:"isIncome"`
}

// CreateCategory handles POST /api/categories. Creating a name that exists
// returns the existing category unchanged.
func (h *Handler) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		badRequest(c, "Category name is required")
		return
	}

	ctx := c.Request.Context()
	existing, err := h.store.FindCategory(ctx, name)
	if err == nil {
		c.JSON(http.StatusOK, toCategoryDTO(existing))
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		internalError(c, err)
		return
	}

	proto := model.Category{Name: name, IsIncome: req.IsIncome}
	if !req.IsIncome && req.Group != nil && strings.TrimSpace(*req.Group) != "" {
		g, ok := model.ParseGroup(*req.Group)
		if !ok {
			badRequest(c, "invalid group "+*req.Group)
			return
		}
		proto.Group = model.GroupPtr(g)
	}

	cat, err := h.store.FindOrCreateCategory(ctx, proto)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCategoryDTO(cat))
}
