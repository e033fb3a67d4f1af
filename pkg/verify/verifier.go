package verify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/huynhanx03/tripwise-api/pkg/common/apperr"
	"github.com/huynhanx03/tripwise-api/pkg/fetcher"
	"github.com/huynhanx03/tripwise-api/pkg/ratelimit"
)

// Reason codes reported locally, alongside whatever the provider returns.
const (
	ReasonMissingToken   = "missing-input-response"
	ReasonActionMismatch = "action-mismatch"
	ReasonUnreachable    = "verification-unreachable"
	ReasonBadStatus      = "verification-bad-status"
	ReasonBadResponse    = "verification-bad-response"
)

// Result is the outcome of one token verification. Results are single-use
// and never cached.
type Result struct {
	Accepted    bool
	ReasonCodes []string
}

// Config holds verifier configuration.
type Config struct {
	// Secret is the provider's server-side key. Checked at call time, not
	// construction, so a misconfigured deployment fails loudly per request.
	Secret string

	// VerifyURL is the provider's siteverify endpoint.
	VerifyURL string

	// Fetcher performs the outbound call. It must be configured without
	// retries: tokens are single-use, and a retried call would consume a
	// second validation of the same token.
	Fetcher *fetcher.Fetcher

	Logger *zap.Logger
}

// Verifier checks bot-verification tokens against the provider.
// Every path that cannot positively confirm a human is a rejection
// (fail-closed): transport failures, non-success statuses, and malformed
// bodies all reject.
type Verifier struct {
	secret    string
	verifyURL string
	fetcher   *fetcher.Fetcher
	log       *zap.Logger
}

// siteverifyResponse mirrors the provider's documented response shape.
type siteverifyResponse struct {
	Success    bool     `json:"success"`
	Action     string   `json:"action"`
	ErrorCodes []string `json:"error-codes"`
}

// New creates a Verifier.
func New(cfg Config) *Verifier {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Verifier{
		secret:    cfg.Secret,
		verifyURL: cfg.VerifyURL,
		fetcher:   cfg.Fetcher,
		log:       cfg.Logger,
	}
}

// Verify checks token with the provider. An empty token is rejected locally
// without a network call. expectedAction, when non-empty, must match the
// action the provider reports for the token.
func (v *Verifier) Verify(ctx context.Context, token, expectedAction, clientIP string) (Result, error) {
	if token == "" {
		return Result{ReasonCodes: []string{ReasonMissingToken}}, nil
	}

	if v.secret == "" {
		return Result{}, apperr.NewError("verify", apperr.CodeConfigMissing,
			apperr.MsgConfigMissing, http.StatusInternalServerError, nil)
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	// Clients pooled under the shared identity have no address worth
	// forwarding to the provider.
	if clientIP != "" && clientIP != ratelimit.UnknownClient {
		form.Set("remoteip", clientIP)
	}

	res, err := v.fetcher.Do(ctx, &fetcher.Request{
		Method: http.MethodPost,
		URL:    v.verifyURL,
		Header: http.Header{"Content-Type": []string{"application/x-www-form-urlencoded"}},
		Body:   []byte(form.Encode()),
	})
	if err != nil {
		v.log.Warn("verification call failed", zap.Error(err))
		return Result{ReasonCodes: []string{ReasonUnreachable}}, nil
	}

	if res.StatusCode != http.StatusOK {
		v.log.Warn("verification provider returned non-success status",
			zap.Int("status", res.StatusCode))
		return Result{ReasonCodes: []string{ReasonBadStatus}}, nil
	}

	var body siteverifyResponse
	if err := json.Unmarshal(res.Body, &body); err != nil {
		v.log.Warn("verification response unparseable", zap.Error(err))
		return Result{ReasonCodes: []string{ReasonBadResponse}}, nil
	}

	if !body.Success {
		reasons := body.ErrorCodes
		if len(reasons) == 0 {
			reasons = []string{ReasonBadResponse}
		}
		return Result{ReasonCodes: reasons}, nil
	}

	if expectedAction != "" && body.Action != "" && body.Action != expectedAction {
		return Result{ReasonCodes: []string{ReasonActionMismatch}}, nil
	}

	return Result{Accepted: true}, nil
}
