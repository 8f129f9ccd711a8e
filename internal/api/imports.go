package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/spendwise-dev/spendwise/internal/importer"
)

// param reads a form field, falling back to the query string.
func param(c *gin.Context, name string) string {
	if v, ok := c.GetPostForm(name); ok {
		return v
	}
	return c.Query(name)
}

// parseFlag accepts the usual form spellings of a boolean, ignoring case.
func parseFlag(v string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "t", "1", "yes", "y", "on":
		return true, true
	case "false", "f", "0", "no", "n", "off":
		return false, true
	}
	return false, false
}

// ImportCSV handles POST /api/import/csv.
func (h *Handler) ImportCSV(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		internalError(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		internalError(c, err)
		return
	}

	dryRun := true
	if v := param(c, "dryRun"); v != "" {
		var ok bool
		dryRun, ok = parseFlag(v)
		if !ok {
			badRequest(c, "dryRun must be true or false")
			return
		}
	}
	statementType := param(c, "statementType")
	if statementType == "" {
		statementType = "debit"
	}

	opts := importer.Options{
		Month:          param(c, "month"),
		DryRun:         dryRun,
		StatementType:  statementType,
		Overrides:      importer.ParseStringMap(param(c, "overrides")),
		DescOverrides:  importer.ParseStringMap(param(c, "descOverrides")),
		GroupOverrides: importer.ParseGroupMap(param(c, "groupOverrides")),
		Exclude:        importer.ParseExcludeSet(param(c, "exclude")),
		Source:         fh.Filename,
	}

	res, err := h.importer.Import(c.Request.Context(), data, opts)
	if errors.Is(err, importer.ErrInvalidMonth) {
		badRequest(c, err.Error())
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
