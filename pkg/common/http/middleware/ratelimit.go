package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/huynhanx03/tripwise-api/pkg/common/apperr"
	"github.com/huynhanx03/tripwise-api/pkg/common/http/response"
	"github.com/huynhanx03/tripwise-api/pkg/ratelimit"
	"github.com/huynhanx03/tripwise-api/pkg/settings"
	"github.com/huynhanx03/tripwise-api/pkg/utils"
)

// ContextKeyClient holds the derived client identity for downstream
// handlers (verification passes it as the remote IP hint).
const ContextKeyClient = "client_key"

// HeaderRateLimitRemaining advertises the quota left in the current window.
const HeaderRateLimitRemaining = "X-RateLimit-Remaining"

// RateLimit charges one request against the client's window for this
// endpoint kind before any body handling. Each kind gets its own buckets, so
// a client burning its form budget keeps its lookup budget.
func RateLimit(limiter *ratelimit.Limiter, kind string, budget settings.Budget, log *zap.Logger) gin.HandlerFunc {
	window := utils.ToDuration(budget.Window)

	return func(c *gin.Context) {
		client := ratelimit.ClientKey(c.Request)
		c.Set(ContextKeyClient, client)

		dec := limiter.Allow(kind+":"+client, budget.Limit, window)
		if !dec.Allowed {
			log.Info("rate limit exceeded",
				zap.String("kind", kind),
				zap.String("client", client),
				zap.Duration("retry_after", dec.RetryAfter),
			)
			response.Error(c, apperr.RateLimited(
				"too many requests", http.StatusTooManyRequests, dec.RetryAfter))
			return
		}

		c.Header(HeaderRateLimitRemaining, utils.FormatInt(dec.Remaining))
		c.Next()
	}
}

// ClientOf returns the identity RateLimit derived for this request, falling
// back to direct derivation on routes without the middleware.
func ClientOf(c *gin.Context) string {
	if v, ok := c.Get(ContextKeyClient); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ratelimit.ClientKey(c.Request)
}
