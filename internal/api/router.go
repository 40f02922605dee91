// Package api exposes the admin actions and the ticket-closed webhook over
// HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/goatkit/kbgen/internal/config"
	"github.com/goatkit/kbgen/internal/metrics"
	"github.com/goatkit/kbgen/internal/middleware"
	"github.com/goatkit/kbgen/internal/models"
	"github.com/goatkit/kbgen/internal/service"
)

// Generator produces a draft article for a ticket.
type Generator interface {
	Generate(ctx context.Context, ticketID int64, settings config.AddonSettings) (*models.GeneratedDraft, error)
}

// QueueManager covers the queue actions an operator triggers directly.
type QueueManager interface {
	Stats(ctx context.Context) (models.QueueStats, error)
	Dismiss(ctx context.Context, queueID int64) error
	Delete(ctx context.Context, queueID int64) error
}

// KnowledgeBase saves articles and serves the queue page.
type KnowledgeBase interface {
	SaveArticle(ctx context.Context, in models.SaveArticleInput) (int64, error)
	CreateCategory(ctx context.Context, name string, parentID int64) (int64, error)
	QueuePage(ctx context.Context, settings config.AddonSettings) (*service.QueuePage, error)
}

// TicketCloser handles the ticket-closed event.
type TicketCloser interface {
	OnTicketClosed(ctx context.Context, ticketID int64) models.EnqueueResult
}

// Pinger reports database liveness.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps wires the router.
type Deps struct {
	Generator Generator
	Queue     QueueManager
	KB        KnowledgeBase
	Hook      TicketCloser
	Settings  middleware.SettingsLoader

	JWTSecret string
	RateLimit int // generations per operator per hour, 0 disables
	Limiter   *middleware.RateLimiter

	DB       Pinger
	Gatherer prometheus.Gatherer
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(d Deps) *gin.Engine {
	if d.Limiter == nil {
		d.Limiter = middleware.NewRateLimiter()
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	h := &handlers{
		generator: d.Generator,
		queue:     d.Queue,
		kb:        d.KB,
		hook:      d.Hook,
		db:        d.DB,
		logger:    d.Logger,
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(d.Logger, d.Metrics), middleware.Recovery(d.Logger))

	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))

	auth := middleware.AdminAuth(d.JWTSecret)

	admin := r.Group("/admin/kb", auth, middleware.AddonSettings(d.Settings))
	{
		admin.POST("/generate", middleware.RateLimitPerOperator(d.Limiter, d.RateLimit, d.Metrics), h.generate)
		admin.POST("/save", h.save)
		admin.POST("/categories", h.createCategory)
		admin.GET("/queue", h.queuePage)
		admin.GET("/stats", h.stats)
		admin.POST("/queue/:id/dismiss", h.dismiss)
		admin.DELETE("/queue/:id", h.deleteEntry)
	}

	r.POST("/hooks/ticket-closed", auth, h.ticketClosed)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not found"})
	})

	return r
}
