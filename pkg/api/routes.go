package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/huynhanx03/tripwise-api/pkg/common/http/handler"
	"github.com/huynhanx03/tripwise-api/pkg/common/http/middleware"
	"github.com/huynhanx03/tripwise-api/pkg/ratelimit"
	"github.com/huynhanx03/tripwise-api/pkg/settings"
	"github.com/huynhanx03/tripwise-api/pkg/store"
)

// Rate-limit bucket kinds. Each kind has independent per-client windows.
const (
	kindForm       = "form"
	kindNewsletter = "newsletter"
	kindLookup     = "lookup"
)

// Config carries the collaborators every endpoint is built from.
type Config struct {
	Store    store.Store
	Geo      GeoService
	Verifier handler.HumanVerifier
	Limiter  *ratelimit.Limiter
	Budgets  settings.RateLimit
	Logger   *zap.Logger
}

// RegisterRoutes wires all endpoints onto the engine. Method mismatches are
// answered by gin's 405 handling before any rate-limit charge.
func RegisterRoutes(r *gin.Engine, cfg Config) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r.GET("/healthz", healthHandler(cfg.Store))

	v1 := r.Group("/api/v1")

	v1.POST("/bookings",
		middleware.RateLimit(cfg.Limiter, kindForm, cfg.Budgets.Form, log),
		handler.WrapForm(cfg.Verifier, ActionBooking, bookingAction(cfg.Store, log)),
	)

	v1.POST("/newsletter",
		middleware.RateLimit(cfg.Limiter, kindNewsletter, cfg.Budgets.Newsletter, log),
		handler.WrapForm(cfg.Verifier, ActionNewsletter, newsletterAction(cfg.Store, log)),
	)

	v1.GET("/geocode",
		middleware.RateLimit(cfg.Limiter, kindLookup, cfg.Budgets.Lookup, log),
		handler.WrapQuery(geocodeAction(cfg.Geo)),
	)

	v1.GET("/places",
		middleware.RateLimit(cfg.Limiter, kindLookup, cfg.Budgets.Lookup, log),
		handler.WrapQuery(placesAction(cfg.Geo)),
	)
}
