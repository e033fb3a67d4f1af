package request

import (
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
)

// ParseBody decodes the request body into T, best-effort. A missing,
// truncated, or malformed body yields the zero value instead of an error:
// field validation is the single source of truth for rejecting bad input,
// and it reports far better messages than a JSON parser would.
func ParseBody[T any](c *gin.Context) *T {
	var req T

	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		return &req
	}

	if err := json.Unmarshal(body, &req); err != nil {
		var zero T
		return &zero
	}

	return &req
}

// ParseQuery binds URL query parameters into T, best-effort. Unparseable
// parameters leave their fields at zero for validation to reject.
func ParseQuery[T any](c *gin.Context) *T {
	var req T
	if err := c.ShouldBindQuery(&req); err != nil {
		var zero T
		return &zero
	}
	return &req
}
