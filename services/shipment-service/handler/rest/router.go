package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/globaledge/globaledge/services/shipment-service/internal/crypto"
	"github.com/globaledge/globaledge/services/shipment-service/internal/observability"
	"github.com/globaledge/globaledge/services/shipment-service/service"
)

// HealthCheck reports whether one backing system is reachable.
type HealthCheck func(ctx context.Context) error

// Deps is everything the HTTP surface needs. Metrics and Checks are optional.
type Deps struct {
	Quotes    *service.QuoteService
	Bookings  *service.BookingService
	Shipments *service.ShipmentService
	Tracking  *service.TrackingService

	Hasher         crypto.TokenHasher
	AdminTokenHash string

	Metrics         *observability.Metrics
	Checks          map[string]HealthCheck
	CORSOrigins     []string
	RateLimitPerMin int
	Logger          *zap.Logger
}

// NewRouter builds the gin engine for the booking site and admin panel.
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	h := &Handler{
		quotes:    d.Quotes,
		bookings:  d.Bookings,
		shipments: d.Shipments,
		tracking:  d.Tracking,
		logger:    d.Logger,
	}

	r := gin.New()
	r.Use(gin.Recovery(), AccessLog(d.Logger), Metrics(d.Metrics))
	r.Use(cors.New(corsConfig(d.CORSOrigins)))

	r.GET("/healthz", health(d.Checks))
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	api := r.Group("/api/v1")
	api.Use(RateLimit(d.RateLimitPerMin, d.Logger))
	{
		api.GET("/quotes", h.GetQuote)
		api.POST("/quotes", h.PostQuote)

		api.POST("/drafts", h.CreateDraft)
		api.GET("/drafts/:id", h.GetDraft)
		api.PUT("/drafts/:id", h.UpdateDraft)
		api.POST("/drafts/:id/photo", h.AttachPhoto)
		api.POST("/drafts/:id/confirm", h.ConfirmBooking)

		api.GET("/receipts/:trackingNumber", h.GetReceipt)
		api.GET("/tracking/:trackingNumber", h.Track)
		api.GET("/dashboard/shipments", h.DashboardShipments)
		api.POST("/contact", h.SubmitContact)
	}

	admin := api.Group("/admin")
	admin.Use(AdminAuth(d.Hasher, d.AdminTokenHash, d.Logger))
	{
		admin.GET("/shipments", h.ListShipments)
		admin.GET("/shipments/:id", h.GetShipment)
		admin.PATCH("/shipments/:id/status", h.UpdateStatus)
	}
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func health(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		report := gin.H{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				report[name] = err.Error()
				continue
			}
			report[name] = "ok"
		}
		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{"status": state, "checks": report})
	}
}
