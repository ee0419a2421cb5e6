package httpgin

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/valet-go/internal/domain"
	"github.com/kirinyoku/valet-go/internal/repository/memory"
	redisrepo "github.com/kirinyoku/valet-go/internal/repository/redis"
	"github.com/kirinyoku/valet-go/internal/service"
	"github.com/kirinyoku/valet-go/internal/service/schedule"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var adminHeaders = map[string]string{RoleHeader: RoleAdmin}

func newTestRouter(t *testing.T, opts Options) *gin.Engine {
	t.Helper()

	store := memory.New()
	store.PutLocation(domain.Location{ID: 1, Name: "Harbor", IsActive: true})

	svcs := service.NewServices(store, store, nil, nil, service.Config{Timezone: time.UTC})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := NewRouter(svcs, opts, logger)

	// Monday 09:00-18:00
	w := do(t, r, http.MethodPost, "/admin/locations/1/schedules", gin.H{
		"day_of_week": 1, "start_time": "09:00", "end_time": "18:00",
	}, adminHeaders)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// 2030-01-07 is a Monday.
func bookingBody(startHour, startMin, endHour, endMin int) gin.H {
	start := time.Date(2030, 1, 7, startHour, startMin, 0, 0, time.UTC)
	end := time.Date(2030, 1, 7, endHour, endMin, 0, 0, time.UTC)
	return gin.H{
		"user_id":     5,
		"location_id": 1,
		"start_time":  start.Format(time.RFC3339),
		"end_time":    end.Format(time.RFC3339),
		"price_cents": 3000,
	}
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t, Options{})

	w := do(t, r, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestBookingScenario(t *testing.T) {
	r := newTestRouter(t, Options{})

	w := do(t, r, http.MethodPost, "/bookings", bookingBody(10, 0, 11, 0), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[BookingResponse](t, w)
	assert.Equal(t, domain.StatusPending, first.Status)
	assert.Equal(t, 1.0, first.DurationHours)

	w = do(t, r, http.MethodPost, "/bookings", bookingBody(10, 30, 11, 30), nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", decode[ErrorResponse](t, w).Code)

	w = do(t, r, http.MethodPost, "/bookings", bookingBody(11, 0, 12, 0), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	path := "/bookings/" + first.ID.String() + "/status"
	w = do(t, r, http.MethodPatch, path, gin.H{"status": "CONFIRMED"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.StatusConfirmed, decode[BookingResponse](t, w).Status)

	w = do(t, r, http.MethodPatch, path, gin.H{"status": "PENDING"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	e := decode[ErrorResponse](t, w)
	assert.Equal(t, "INVALID_TRANSITION", e.Code)
	assert.Equal(t, "Cannot transition from CONFIRMED to PENDING", e.Error)
}

func TestCreateBookingValidation(t *testing.T) {
	r := newTestRouter(t, Options{})

	w := do(t, r, http.MethodPost, "/bookings", gin.H{"user_id": 5}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := bookingBody(10, 0, 11, 0)
	body["start_time"] = "tomorrow"
	w = do(t, r, http.MethodPost, "/bookings", body, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/bookings", bookingBody(11, 0, 10, 0), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION", decode[ErrorResponse](t, w).Code)

	body = bookingBody(10, 0, 11, 0)
	body["location_id"] = 404
	w = do(t, r, http.MethodPost, "/bookings", body, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCancelTwice(t *testing.T) {
	r := newTestRouter(t, Options{})

	w := do(t, r, http.MethodPost, "/bookings", bookingBody(10, 0, 11, 0), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	b := decode[BookingResponse](t, w)

	w = do(t, r, http.MethodPost, "/bookings/"+b.ID.String()+"/cancel", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/bookings/"+b.ID.String()+"/cancel", nil, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Booking is already cancelled", decode[ErrorResponse](t, w).Error)
}

func TestGetBooking(t *testing.T) {
	r := newTestRouter(t, Options{})

	w := do(t, r, http.MethodGet, "/bookings/not-a-uuid", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/bookings/00000000-0000-0000-0000-000000000001", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode[ErrorResponse](t, w).Code)
}

func TestRescheduleConflict(t *testing.T) {
	r := newTestRouter(t, Options{})

	w := do(t, r, http.MethodPost, "/bookings", bookingBody(10, 0, 11, 0), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, r, http.MethodPost, "/bookings", bookingBody(12, 0, 13, 0), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	second := decode[BookingResponse](t, w)

	moved := bookingBody(10, 30, 11, 30)
	w = do(t, r, http.MethodPatch, "/bookings/"+second.ID.String(), gin.H{
		"start_time": moved["start_time"],
		"end_time":   moved["end_time"],
	}, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Updated booking time slot is not available", decode[ErrorResponse](t, w).Error)
}

func TestAvailabilityAndOpen(t *testing.T) {
	r := newTestRouter(t, Options{})

	w := do(t, r, http.MethodPost, "/bookings", bookingBody(10, 0, 11, 0), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	tests := []struct {
		query     string
		available bool
	}{
		{"start=2030-01-07T11:00:00Z&end=2030-01-07T12:00:00Z", true},
		{"start=2030-01-07T10:30:00Z&end=2030-01-07T11:30:00Z", false},
		{"start=2030-01-07T19:00:00Z&end=2030-01-07T20:00:00Z", false},
	}
	for _, tt := range tests {
		w := do(t, r, http.MethodGet, "/locations/1/availability?"+tt.query, nil, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, tt.available, decode[AvailabilityResponse](t, w).Available, tt.query)
	}

	for clock, open := range map[string]bool{"10:00": true, "20:00": false, "18:00": false, "bogus": false} {
		w := do(t, r, http.MethodGet, "/locations/1/open?day=1&time="+clock, nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, open, decode[OpenResponse](t, w).Open, clock)
	}

	w = do(t, r, http.MethodGet, "/locations/1/active-bookings", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[ActiveBookingsResponse](t, w).HasActiveBookings)

	w = do(t, r, http.MethodGet, "/users/5/active-bookings", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[ActiveBookingsResponse](t, w).HasActiveBookings)
}

func TestScheduleETag(t *testing.T) {
	r := newTestRouter(t, Options{})

	w := do(t, r, http.MethodGet, "/locations/1/schedules", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tag := w.Header().Get("ETag")
	require.NotEmpty(t, tag)

	list := decode[[]domain.Schedule](t, w)
	require.Len(t, list, 1)

	w = do(t, r, http.MethodGet, "/locations/1/schedules", nil, map[string]string{"If-None-Match": tag})
	assert.Equal(t, http.StatusNotModified, w.Code)
}

func TestAdminRequiresRole(t *testing.T) {
	r := newTestRouter(t, Options{})

	w := do(t, r, http.MethodGet, "/admin/bookings", nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodGet, "/admin/bookings", nil, map[string]string{RoleHeader: "customer"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBulkSchedules(t *testing.T) {
	r := newTestRouter(t, Options{})

	w := do(t, r, http.MethodPost, "/admin/locations/1/schedules/bulk", gin.H{"schedules": []gin.H{
		{"day_of_week": 2, "start_time": "09:00", "end_time": "18:00"},
		{"day_of_week": 3, "start_time": "09:00", "end_time": "18:00"},
	}}, adminHeaders)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, decode[schedule.BulkResult](t, w).Successful, 2)

	w = do(t, r, http.MethodPost, "/admin/locations/1/schedules/bulk", gin.H{"schedules": []gin.H{
		{"day_of_week": 1, "start_time": "08:00", "end_time": "12:00"},
		{"day_of_week": 4, "start_time": "09:00", "end_time": "18:00"},
		{"start_time": "09:00", "end_time": "18:00"},
	}}, adminHeaders)
	require.Equal(t, http.StatusMultiStatus, w.Code, w.Body.String())

	res := decode[schedule.BulkResult](t, w)
	require.Len(t, res.Successful, 1)
	require.Len(t, res.Failed, 2)
	assert.Equal(t, 1, res.Failed[0].Schedule.DayOfWeek)

	w = do(t, r, http.MethodPost, "/admin/locations/99/schedules/bulk", gin.H{"schedules": []gin.H{
		{"day_of_week": 1, "start_time": "08:00", "end_time": "12:00"},
	}}, adminHeaders)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/admin/schedules", nil, adminHeaders)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Schedule](t, w), 4)
}

func TestAdminBookings(t *testing.T) {
	r := newTestRouter(t, Options{})

	w := do(t, r, http.MethodPost, "/bookings", bookingBody(10, 0, 11, 0), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	b := decode[BookingResponse](t, w)

	w = do(t, r, http.MethodGet, "/admin/bookings?start_date=2030-01-07&end_date=2030-01-07", nil, adminHeaders)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[BookingPageResponse](t, w).Total)

	w = do(t, r, http.MethodGet, "/admin/bookings?start_date=07-01-2030", nil, adminHeaders)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), decode[BookingPageResponse](t, w).Total)

	w = do(t, r, http.MethodGet, "/admin/bookings?status=LOST", nil, adminHeaders)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPatch, "/admin/bookings/"+b.ID.String()+"/status", gin.H{"status": "COMPLETED"}, adminHeaders)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[ErrorResponse](t, w).Error, "allowed next statuses are CONFIRMED, CANCELLED")

	w = do(t, r, http.MethodDelete, "/admin/locations/1", nil, adminHeaders)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodDelete, "/admin/bookings/"+b.ID.String(), nil, adminHeaders)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodDelete, "/admin/locations/1", nil, adminHeaders)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, "/admin/revenue", nil, adminHeaders)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), decode[domain.RevenueSummary](t, w).RevenueCents)
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestCreateBookingIdempotent(t *testing.T) {
	rdb := newRedis(t)
	r := newTestRouter(t, Options{Idempotency: redisrepo.NewIdempotencyStore(rdb, time.Hour)})
	headers := map[string]string{"Idempotency-Key": "abc-123"}

	w := do(t, r, http.MethodPost, "/bookings", bookingBody(10, 0, 11, 0), headers)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[BookingResponse](t, w)

	w = do(t, r, http.MethodPost, "/bookings", bookingBody(10, 0, 11, 0), headers)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, first.ID, decode[BookingResponse](t, w).ID)
	assert.Equal(t, "abc-123", w.Header().Get("Idempotency-Key"))

	w = do(t, r, http.MethodGet, "/admin/bookings", nil, adminHeaders)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[BookingPageResponse](t, w).Total)
}

func TestCreateBookingRateLimited(t *testing.T) {
	rdb := newRedis(t)
	r := newTestRouter(t, Options{Limiter: redisrepo.NewSlidingWindowLimiter(rdb, "bookings", 1, time.Minute)})

	w := do(t, r, http.MethodPost, "/bookings", bookingBody(10, 0, 11, 0), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodPost, "/bookings", bookingBody(12, 0, 13, 0), nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
