package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/huynhanx03/tripwise-api/pkg/common/apperr"
	"github.com/huynhanx03/tripwise-api/pkg/utils"
)

// HeaderRetryAfter is the standard retry hint header set on rate-limit
// rejections, mirrored by retryAfterSeconds in the body.
const HeaderRetryAfter = "Retry-After"

// Success writes an endpoint-specific JSON payload.
func Success(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// Error writes the rejection shape for err: `{"error": msg}` with the
// AppError's HTTP status, plus the structured retry hint for rate-limit
// rejections. Errors without an AppError in the chain are masked as a
// generic internal failure so internals never leak to clients.
func Error(c *gin.Context, err error) {
	appErr, ok := apperr.From(err)
	if !ok {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "internal server error",
		})
		return
	}

	body := gin.H{"error": appErr.Message}

	if appErr.Code == apperr.CodeRateLimited {
		seconds := utils.CeilSeconds(appErr.RetryAfter, 1)
		c.Header(HeaderRetryAfter, utils.FormatInt(seconds))
		body["retryAfterSeconds"] = seconds
	}

	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}

	c.AbortWithStatusJSON(status, body)
}
