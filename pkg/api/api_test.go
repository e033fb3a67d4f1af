package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huynhanx03/tripwise-api/pkg/common/apperr"
	"github.com/huynhanx03/tripwise-api/pkg/geo"
	"github.com/huynhanx03/tripwise-api/pkg/ratelimit"
	"github.com/huynhanx03/tripwise-api/pkg/settings"
	"github.com/huynhanx03/tripwise-api/pkg/store"
	"github.com/huynhanx03/tripwise-api/pkg/verify"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ============================================================================
// Mock Timer and collaborator stubs
// ============================================================================

type mockTimer struct {
	mu      sync.Mutex
	current time.Time
}

func newMockTimer(t time.Time) *mockTimer { return &mockTimer{current: t} }

func (m *mockTimer) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *mockTimer) Stop() {}

func (m *mockTimer) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}

type stubStore struct {
	mu         sync.Mutex
	bookings   []*store.Booking
	subEmails  []string
	bookingErr error
	subErr     error
	subDup     bool
	pingErr    error
}

func (s *stubStore) SaveBooking(_ context.Context, b *store.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bookingErr != nil {
		return s.bookingErr
	}
	s.bookings = append(s.bookings, b)
	return nil
}

func (s *stubStore) SaveSubscription(_ context.Context, sub *store.Subscription) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subErr != nil {
		return false, s.subErr
	}
	s.subEmails = append(s.subEmails, sub.Email)
	return !s.subDup, nil
}

func (s *stubStore) Ping(context.Context) error { return s.pingErr }

func (s *stubStore) bookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

type stubVerifier struct {
	mu      sync.Mutex
	calls   int
	accept  bool
	reasons []string
	err     error
}

func (v *stubVerifier) Verify(_ context.Context, token, action, ip string) (verify.Result, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	if v.err != nil {
		return verify.Result{}, v.err
	}
	return verify.Result{Accepted: v.accept, ReasonCodes: v.reasons}, nil
}

func (v *stubVerifier) callCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}

type stubGeo struct {
	coord      geo.Coordinate
	places     []geo.Place
	geocodeErr error
	placesErr  error
}

func (g *stubGeo) Geocode(context.Context, string) (geo.Coordinate, error) {
	return g.coord, g.geocodeErr
}

func (g *stubGeo) SearchPlaces(context.Context, geo.PlacesQuery) ([]geo.Place, error) {
	return g.places, g.placesErr
}

// ============================================================================
// Test harness
// ============================================================================

type harness struct {
	engine   *gin.Engine
	store    *stubStore
	verifier *stubVerifier
	geo      *stubGeo
	limiter  *ratelimit.Limiter
	timer    *mockTimer
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		store:    &stubStore{},
		verifier: &stubVerifier{accept: true},
		geo:      &stubGeo{},
		timer:    newMockTimer(time.Now()),
	}
	h.limiter = ratelimit.New(ratelimit.Config{Shards: 16, Timer: h.timer})

	h.engine = gin.New()
	h.engine.HandleMethodNotAllowed = true
	RegisterRoutes(h.engine, Config{
		Store:    h.store,
		Geo:      h.geo,
		Verifier: h.verifier,
		Limiter:  h.limiter,
		Budgets: settings.RateLimit{
			Form:       settings.Budget{Limit: 5, Window: 300},
			Newsletter: settings.Budget{Limit: 10, Window: 300},
			Lookup:     settings.Budget{Limit: 60, Window: 300},
		},
	})
	return h
}

func (h *harness) do(method, path, client, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if client != "" {
		req.Header.Set("X-Forwarded-For", client)
	}
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

const validBooking = `{
	"fullName": "Linh Tran",
	"email": "linh@example.com",
	"destination": "Da Nang",
	"travelDate": "2026-10-20",
	"guests": 2,
	"verifyToken": "tok-1"
}`

// ============================================================================
// Booking pipeline
// ============================================================================

func TestBookingHappyPath(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/api/v1/bookings", "203.0.113.7", validBooking)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "received", body["status"])
	assert.Equal(t, 1, h.store.bookingCount())
	assert.Equal(t, 1, h.verifier.callCount())
}

func TestBookingValidationFirstViolationWins(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/api/v1/bookings", "203.0.113.7",
		`{"email": "not-an-email", "verifyToken": "tok-1"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode(t, w)
	// fullName is the first declared field, so its violation is reported.
	assert.Equal(t, "fullName is required", body["error"])
	assert.Equal(t, 0, h.verifier.callCount(), "validation failure must stop the pipeline")
	assert.Equal(t, 0, h.store.bookingCount())
}

// A malformed body is not a hard failure: it parses to an empty record and
// field validation reports the first missing field.
func TestBookingMalformedBodyIsValidationError(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/api/v1/bookings", "203.0.113.7", `{"fullName": `)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "fullName is required", decode(t, w)["error"])
}

func TestBookingVerificationRejected(t *testing.T) {
	h := newHarness(t)
	h.verifier.accept = false
	h.verifier.reasons = []string{"invalid-input-response"}

	w := h.do(http.MethodPost, "/api/v1/bookings", "203.0.113.7", validBooking)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, decode(t, w)["error"], "invalid-input-response")
	assert.Equal(t, 0, h.store.bookingCount(), "rejected request must not reach the store")
}

func TestBookingPersistenceFailure(t *testing.T) {
	h := newHarness(t)
	h.store.bookingErr = apperr.New(apperr.CodePersistence,
		"failed to save booking", http.StatusInternalServerError, nil)

	w := h.do(http.MethodPost, "/api/v1/bookings", "203.0.113.7", validBooking)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "failed to save booking", decode(t, w)["error"])
}

// ============================================================================
// Rate limiting
// ============================================================================

func TestFormRateLimit(t *testing.T) {
	h := newHarness(t)
	const client = "203.0.113.7"

	for i := 0; i < 5; i++ {
		w := h.do(http.MethodPost, "/api/v1/bookings", client, validBooking)
		require.Equal(t, http.StatusOK, w.Code, "request %d should be admitted", i+1)
	}

	w := h.do(http.MethodPost, "/api/v1/bookings", client, validBooking)
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	body := decode(t, w)
	retryAfter, ok := body["retryAfterSeconds"].(float64)
	require.True(t, ok, "rate-limited body must carry retryAfterSeconds")
	assert.GreaterOrEqual(t, retryAfter, float64(1))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// The rejected request must not have been processed.
	assert.Equal(t, 5, h.store.bookingCount())

	// After waiting out the window the same client is admitted again.
	h.timer.Advance(5*time.Minute + time.Second)
	w = h.do(http.MethodPost, "/api/v1/bookings", client, validBooking)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitBucketsPerClient(t *testing.T) {
	h := newHarness(t)

	for i := 0; i < 5; i++ {
		h.do(http.MethodPost, "/api/v1/bookings", "203.0.113.7", validBooking)
	}
	w := h.do(http.MethodPost, "/api/v1/bookings", "203.0.113.7", validBooking)
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	w = h.do(http.MethodPost, "/api/v1/bookings", "198.51.100.4", validBooking)
	require.Equal(t, http.StatusOK, w.Code, "another client must have its own window")
}

func TestRateLimitBucketsPerKind(t *testing.T) {
	h := newHarness(t)
	const client = "203.0.113.7"

	for i := 0; i < 5; i++ {
		h.do(http.MethodPost, "/api/v1/bookings", client, validBooking)
	}
	w := h.do(http.MethodPost, "/api/v1/bookings", client, validBooking)
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	// The exhausted form budget must not touch the lookup budget.
	w = h.do(http.MethodGet, "/api/v1/geocode?q=hanoi", client, "")
	require.Equal(t, http.StatusOK, w.Code)
}

// A method mismatch is rejected before the rate limiter charges anything.
func TestMethodMismatchIsNotCharged(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodGet, "/api/v1/bookings", "203.0.113.7", "")
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, 0, h.limiter.Keys(), "405 must not create a rate window")
}

// ============================================================================
// Newsletter
// ============================================================================

func TestNewsletterSubscribe(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/api/v1/newsletter", "203.0.113.7",
		`{"email": "Linh@Example.com", "verifyToken": "tok-1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["subscribed"])
	assert.Equal(t, false, body["duplicate"])
	require.Len(t, h.store.subEmails, 1)
	assert.Equal(t, "linh@example.com", h.store.subEmails[0], "emails are normalized before storage")
}

// A duplicate signup is an idempotent success, not an error.
func TestNewsletterDuplicateIsNoOp(t *testing.T) {
	h := newHarness(t)
	h.store.subDup = true

	w := h.do(http.MethodPost, "/api/v1/newsletter", "203.0.113.7",
		`{"email": "linh@example.com", "verifyToken": "tok-1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["subscribed"])
	assert.Equal(t, true, body["duplicate"])
}

func TestNewsletterPersistenceFailure(t *testing.T) {
	h := newHarness(t)
	h.store.subErr = apperr.New(apperr.CodePersistence,
		"failed to save subscription", http.StatusInternalServerError, nil)

	w := h.do(http.MethodPost, "/api/v1/newsletter", "203.0.113.7",
		`{"email": "linh@example.com", "verifyToken": "tok-1"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

// ============================================================================
// Lookup endpoints
// ============================================================================

func TestGeocodeEndpoint(t *testing.T) {
	h := newHarness(t)
	h.geo.coord = geo.Coordinate{Lat: 16.0471, Lon: 108.2062, FormattedAddress: "Da Nang, Vietnam"}

	w := h.do(http.MethodGet, "/api/v1/geocode?q=da+nang", "203.0.113.7", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, 16.0471, body["lat"])
	assert.Equal(t, "Da Nang, Vietnam", body["formattedAddress"])
}

func TestGeocodeNotFoundVsUpstreamFailure(t *testing.T) {
	h := newHarness(t)

	h.geo.geocodeErr = apperr.New(apperr.CodeNotFound,
		"no matching location", http.StatusNotFound, nil)
	w := h.do(http.MethodGet, "/api/v1/geocode?q=xqzzyblorp", "203.0.113.7", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	h.geo.geocodeErr = apperr.New(apperr.CodeUpstreamUnavailable,
		"upstream unreachable", http.StatusBadGateway, nil)
	w = h.do(http.MethodGet, "/api/v1/geocode?q=hanoi", "203.0.113.7", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestGeocodeMissingQuery(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodGet, "/api/v1/geocode", "203.0.113.7", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "q is required", decode(t, w)["error"])
}

func TestPlacesEndpoint(t *testing.T) {
	h := newHarness(t)
	h.geo.places = []geo.Place{
		{ID: "p1", Name: "Cafe Duy", Lat: 21.034, Lon: 105.851},
	}

	w := h.do(http.MethodGet,
		"/api/v1/places?lat=21.0288&lon=105.8522&categories=catering", "203.0.113.7", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	places, ok := body["places"].([]any)
	require.True(t, ok)
	require.Len(t, places, 1)
}

func TestPlacesMissingCoordinates(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodGet, "/api/v1/places?categories=catering", "203.0.113.7", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "lat is required", decode(t, w)["error"])
}

// ============================================================================
// Health
// ============================================================================

func TestHealth(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestHealthDegradedWhenStoreUnreachable(t *testing.T) {
	h := newHarness(t)
	h.store.pingErr = apperr.New(apperr.CodePersistence,
		"store unreachable", http.StatusInternalServerError, nil)

	w := h.do(http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "degraded", decode(t, w)["status"])
}
