package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"societyhub/internal/config"
	"societyhub/internal/domain"
	"societyhub/internal/pkg/clock"
	"societyhub/internal/testdb"
)

var testNow = time.Date(2026, 3, 1, 6, 30, 0, 0, time.UTC)

type harness struct {
	t       *testing.T
	app     *App
	society testdb.Society
}

func setup(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testdb.Open(t)
	society := testdb.Seed(t, db)
	cfg := &config.Config{
		AppEnv: "test",
		Auth:   config.AuthConfig{JWTSecret: "test-secret", JWTTTL: time.Hour},
		Society: config.SocietyConfig{
			Location: time.UTC,
		},
	}
	return &harness{t: t, app: New(cfg, db, clock.NewFixed(testNow)), society: society}
}

func (h *harness) token(actor domain.Actor) string {
	h.t.Helper()
	tok, err := h.app.JWT.GenerateToken(actor)
	require.NoError(h.t, err)
	return tok
}

func (h *harness) do(actor *domain.Actor, method, path string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		req.Header.Set("Authorization", "Bearer "+h.token(*actor))
	}
	rr := httptest.NewRecorder()
	h.app.Router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Success bool `json:"success"`
		Data    T    `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	require.True(t, env.Success, rr.Body.String())
	return env.Data
}

func TestHealthAndMetrics(t *testing.T) {
	h := setup(t)

	rr := h.do(nil, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	rr = h.do(nil, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "society_http_requests_total")
}

func TestAPIRequiresToken(t *testing.T) {
	h := setup(t)

	rr := h.do(nil, http.MethodGet, "/api/v1/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "AUTH_HEADER_MISSING")

	rr = h.do(&h.society.Resident, http.MethodGet, "/api/v1/me", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = h.do(&h.society.Resident, http.MethodGet, "/api/v1/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestBookingFlow(t *testing.T) {
	h := setup(t)
	s := h.society

	slot := func(from, to string) gin.H {
		return gin.H{
			"amenity_id": s.Clubhouse.ID,
			"start_time": "2026-03-02T" + from + ":00Z",
			"end_time":   "2026-03-02T" + to + ":00Z",
		}
	}

	rr := h.do(&s.Resident, http.MethodPost, "/api/v1/bookings", slot("10:00", "12:00"))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	first := decode[struct {
		Booking domain.Booking `json:"booking"`
	}](t, rr).Booking
	assert.Equal(t, domain.BookingPending, first.Status)

	rr = h.do(&s.Neighbour, http.MethodPost, "/api/v1/bookings", slot("11:00", "13:00"))
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "BOOKING_CONFLICT")

	rr = h.do(&s.Neighbour, http.MethodPost, "/api/v1/bookings", slot("12:00", "13:00"))
	require.Equal(t, http.StatusCreated, rr.Code, "touching windows do not overlap")

	rr = h.do(&s.Resident, http.MethodPatch, fmt.Sprintf("/api/v1/bookings/%d/approve", first.ID), nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = h.do(&s.Admin, http.MethodPatch, fmt.Sprintf("/api/v1/bookings/%d/approve", first.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = h.do(&s.Admin, http.MethodPatch, fmt.Sprintf("/api/v1/bookings/%d/reject", first.ID), gin.H{"reason": "late"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_STATUS_TRANSITION")

	rr = h.do(&s.Guard, http.MethodGet, fmt.Sprintf("/api/v1/amenities/%d/availability?date=2026-03-02", s.Clubhouse.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestVisitorFlow(t *testing.T) {
	h := setup(t)
	s := h.society

	rr := h.do(&s.Resident, http.MethodPost, "/api/v1/pre-approvals", gin.H{
		"name":          "Courier",
		"purpose":       "Parcel",
		"expected_date": "2026-03-01",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	pa := decode[struct {
		PreApproval domain.PreApprovedVisitor `json:"pre_approval"`
	}](t, rr).PreApproval
	assert.Equal(t, 1, pa.NumberOfPersons)
	assert.Equal(t, s.ApartmentA, pa.ApartmentID)

	rr = h.do(&s.Resident, http.MethodPatch, fmt.Sprintf("/api/v1/pre-approvals/%d/arrive", pa.ID), nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = h.do(&s.Guard, http.MethodPatch, fmt.Sprintf("/api/v1/pre-approvals/%d/arrive", pa.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	arrival := decode[struct {
		PreApproval domain.PreApprovedVisitor `json:"pre_approval"`
		Visitor     domain.Visitor            `json:"visitor"`
	}](t, rr)
	assert.Equal(t, domain.PreApprovalArrived, arrival.PreApproval.Status)
	assert.Equal(t, domain.VisitorInside, arrival.Visitor.Status)

	rr = h.do(&s.Guard, http.MethodPatch, fmt.Sprintf("/api/v1/pre-approvals/%d/arrive", pa.ID), nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = h.do(&s.Guard, http.MethodPatch, fmt.Sprintf("/api/v1/visitors/%d/checkout", arrival.Visitor.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = h.do(&s.Resident, http.MethodGet, fmt.Sprintf("/api/v1/pre-approvals/%d", pa.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[struct {
		PreApproval domain.PreApprovedVisitor `json:"pre_approval"`
	}](t, rr).PreApproval
	assert.Equal(t, domain.PreApprovalCompleted, got.Status)

	rr = h.do(&s.Resident, http.MethodGet, fmt.Sprintf("/api/v1/apartments/%d/visitors", s.ApartmentA), nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = h.do(&s.Resident, http.MethodGet, fmt.Sprintf("/api/v1/apartments/%d/visitors", s.ApartmentB), nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}
