package fetcher

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/huynhanx03/tripwise-api/pkg/common/apperr"
)

const (
	defaultTimeout     = 5 * time.Second
	defaultBackoffBase = 200 * time.Millisecond
)

// Request describes one outbound call. The fetcher owns deadlines and
// retries; callers only describe what to send.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is a fully-read upstream answer. Any HTTP status counts as a
// response: semantic errors (4xx/5xx) are the caller's business, not a
// reason to retry.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Config holds fetcher configuration.
type Config struct {
	// Timeout bounds each individual attempt.
	Timeout time.Duration

	// MaxRetries is the number of extra attempts after the first, so
	// MaxRetries=1 means at most 2 attempts total.
	MaxRetries int

	// BackoffBase scales the linear backoff: the sleep before attempt n+1
	// is BackoffBase * n.
	BackoffBase time.Duration

	// Client is the underlying HTTP client. If nil, a dedicated client is
	// used. Its own Timeout is left at zero; per-attempt contexts drive
	// cancellation.
	Client *http.Client

	// Sleep is the delay function between attempts. If nil, time.Sleep.
	// Injectable so tests measure backoff without waiting for it.
	Sleep func(time.Duration)

	Logger *zap.Logger
}

// Fetcher performs HTTP calls with a hard per-attempt deadline and bounded
// retries for transport-level failures.
type Fetcher struct {
	client      *http.Client
	timeout     time.Duration
	maxRetries  int
	backoffBase time.Duration
	sleep       func(time.Duration)
	log         *zap.Logger
}

// New creates a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = defaultBackoffBase
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{}
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Fetcher{
		client:      cfg.Client,
		timeout:     cfg.Timeout,
		maxRetries:  cfg.MaxRetries,
		backoffBase: cfg.BackoffBase,
		sleep:       cfg.Sleep,
		log:         cfg.Logger,
	}
}

// Do performs the request. The first attempt that yields an HTTP response of
// any status short-circuits the loop. Timeouts and transport failures are
// retried with linear backoff until the attempt budget is spent, then
// surfaced as UpstreamTimeout (the last attempt hit its deadline) or
// UpstreamUnavailable (the upstream could not be reached at all).
func (f *Fetcher) Do(ctx context.Context, req *Request) (*Response, error) {
	host := hostOf(req.URL)

	var lastErr error
	lastTimedOut := false

	for attempt := 1; attempt <= f.maxRetries+1; attempt++ {
		if attempt > 1 {
			f.sleep(f.backoffBase * time.Duration(attempt-1))
		}

		res, err := f.attempt(ctx, req, host, attempt)
		if err == nil {
			return res, nil
		}

		lastErr = err
		lastTimedOut = isTimeout(err)

		// Caller gave up; do not burn the remaining attempts.
		if ctx.Err() != nil && !lastTimedOut {
			break
		}
	}

	if lastTimedOut {
		return nil, apperr.Wrap(lastErr, apperr.CodeUpstreamTimeout,
			"upstream did not respond in time", http.StatusGatewayTimeout)
	}
	return nil, apperr.Wrap(lastErr, apperr.CodeUpstreamUnavailable,
		"upstream unreachable", http.StatusBadGateway)
}

func (f *Fetcher) attempt(ctx context.Context, req *Request, host string, attempt int) (*Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()

	httpReq, err := http.NewRequestWithContext(attemptCtx, req.Method, req.URL, bodyReader(req.Body))
	if err != nil {
		return nil, err
	}
	for k, vs := range req.Header {
		httpReq.Header[k] = vs
	}

	httpRes, err := f.client.Do(httpReq)
	if err != nil {
		f.log.Warn("upstream attempt failed",
			zap.String("host", host),
			zap.Int("attempt", attempt),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}
	defer httpRes.Body.Close()

	body, err := io.ReadAll(httpRes.Body)
	if err != nil {
		f.log.Warn("upstream body read failed",
			zap.String("host", host),
			zap.Int("attempt", attempt),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	f.log.Debug("upstream attempt",
		zap.String("host", host),
		zap.Int("attempt", attempt),
		zap.Int("status", httpRes.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &Response{
		StatusCode: httpRes.StatusCode,
		Header:     httpRes.Header,
		Body:       body,
	}, nil
}

func bodyReader(b []byte) io.Reader {
	if len(b) == 0 {
		return nil
	}
	return bytes.NewReader(b)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Host
}
