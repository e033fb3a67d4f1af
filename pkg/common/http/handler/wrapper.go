package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/huynhanx03/tripwise-api/pkg/common/apperr"
	"github.com/huynhanx03/tripwise-api/pkg/common/http/middleware"
	"github.com/huynhanx03/tripwise-api/pkg/common/http/request"
	"github.com/huynhanx03/tripwise-api/pkg/common/http/response"
	"github.com/huynhanx03/tripwise-api/pkg/common/http/validation"
	"github.com/huynhanx03/tripwise-api/pkg/verify"
)

// HandlerFunc is the generic endpoint action signature.
type HandlerFunc[T any, R any] func(context.Context, *T) (R, error)

// TokenCarrier is implemented by form requests that carry a
// bot-verification token.
type TokenCarrier interface {
	VerificationToken() string
}

// HumanVerifier abstracts the verification collaborator so handlers can be
// tested with a stub.
type HumanVerifier interface {
	Verify(ctx context.Context, token, expectedAction, clientIP string) (verify.Result, error)
}

// WrapForm converts a typed action into the gin handler for a user-submitted
// form: permissive parse, first-violation validation, human verification,
// then the action. Every stage short-circuits with no further side effects.
// Rate limiting and the method check have already happened in middleware and
// routing by the time this runs.
func WrapForm[T TokenCarrier, R any](verifier HumanVerifier, action string, h HandlerFunc[T, R]) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := request.ParseBody[T](c)

		if msg, bad := validation.FirstViolation(req); bad {
			response.Error(c, apperr.New(apperr.CodeValidation, msg, http.StatusBadRequest, nil))
			return
		}

		result, err := verifier.Verify(c.Request.Context(),
			(*req).VerificationToken(), action, middleware.ClientOf(c))
		if err != nil {
			response.Error(c, err)
			return
		}
		if !result.Accepted {
			msg := "verification failed"
			if len(result.ReasonCodes) > 0 {
				msg = "verification failed: " + strings.Join(result.ReasonCodes, ", ")
			}
			response.Error(c, apperr.New(apperr.CodeVerificationRejected, msg, http.StatusForbidden, nil))
			return
		}

		res, err := h(c.Request.Context(), req)
		if err != nil {
			response.Error(c, err)
			return
		}

		response.Success(c, http.StatusOK, res)
	}
}

// WrapQuery converts a typed action into the gin handler for a read/query
// endpoint: query binding, first-violation validation, then the action.
func WrapQuery[T any, R any](h HandlerFunc[T, R]) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := request.ParseQuery[T](c)

		if msg, bad := validation.FirstViolation(req); bad {
			response.Error(c, apperr.New(apperr.CodeValidation, msg, http.StatusBadRequest, nil))
			return
		}

		res, err := h(c.Request.Context(), req)
		if err != nil {
			response.Error(c, err)
			return
		}

		response.Success(c, http.StatusOK, res)
	}
}
