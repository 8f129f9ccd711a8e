// Package api exposes imports, categories, transactions and summaries over
// HTTP.
package api

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/spendwise-dev/spendwise/internal/config"
	"github.com/spendwise-dev/spendwise/internal/importer"
	"github.com/spendwise-dev/spendwise/internal/logger"
	"github.com/spendwise-dev/spendwise/internal/store"
)

// maxUploadBytes bounds the multipart memory used for statement uploads.
const maxUploadBytes = 32 << 20

// Handler serves the API endpoints.
type Handler struct {
	store    *store.Store
	importer *importer.Service
	log      zerolog.Logger
	now      func() time.Time
}

// NewHandler creates a Handler.
func NewHandler(st *store.Store, imp *importer.Service, log zerolog.Logger) *Handler {
	return &Handler{store: st, importer: imp, log: log, now: time.Now}
}

// NewRouter builds the gin engine with logging, recovery and CORS.
func NewRouter(cfg config.ServerConfig, h *Handler) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	r := gin.New()
	r.MaxMultipartMemory = maxUploadBytes
	r.Use(requestLogger(h.log), gin.Recovery())
	if c, ok := corsConfig(cfg.AllowedOrigins); ok {
		r.Use(cors.New(c))
	}

	api := r.Group("/api")
	api.GET("/db-ping", h.DBPing)

	api.POST("/import/csv", h.ImportCSV)

	api.GET("/categories", h.ListCategories)
	api.POST("/categories", h.CreateCategory)

	api.GET("/transactions", h.ListTransactions)
	api.POST("/transactions/sample", h.AddSample)
	api.GET("/transactions/export", h.ExportTransactions)

	api.GET("/summary/monthly/by-group", h.MonthlyByGroup)
	api.GET("/months", h.Months)

	return r
}

func corsConfig(origins []string) (cors.Config, bool) {
	if len(origins) == 0 {
		return cors.Config{}, false
	}
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c, true
}

// requestLogger stores a request-scoped logger on the request context and
// logs one line per request.
func requestLogger(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		log := base.With().
			Str("request_id", uuid.NewString()).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), log))
		c.Next()

		ev := log.Info()
		if c.Writer.Status() >= 500 {
			ev = log.Error()
		}
		ev.Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}
