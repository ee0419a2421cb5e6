package httpgin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kirinyoku/valet-go/internal/apperr"
	"github.com/kirinyoku/valet-go/internal/domain"
	redisrepo "github.com/kirinyoku/valet-go/internal/repository/redis"
	"github.com/kirinyoku/valet-go/internal/service"
	"github.com/kirinyoku/valet-go/internal/service/availability"
	"github.com/kirinyoku/valet-go/internal/service/booking"
)

// @Summary  Create booking (idempotent)
// @Param    req body  CreateBookingRequest true "payload"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {object} BookingResponse
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse "location not found"
// @Failure  409 {object} ErrorResponse "slot taken / idem in progress"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /bookings [post]
func handleCreateBooking(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		start, err := parseRFC3339(req.StartTime)
		if err != nil {
			badRequest(c, "invalid start_time (RFC3339)")
			return
		}
		end, err := parseRFC3339(req.EndTime)
		if err != nil {
			badRequest(c, "invalid end_time (RFC3339)")
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemBooking(req.UserID, idemKey)

			if payload, ok, _ := idem.GetResult(
				c.Request.Context(),
				idemStorageKey,
			); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(
					http.StatusCreated,
					"application/json; charset=utf-8",
					[]byte(payload),
				)
				return
			}

			locked, err := idem.AcquireLock(
				c.Request.Context(),
				idemStorageKey,
				60*time.Second,
			)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(
					c.Request.Context(),
					idemStorageKey,
				); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(
						http.StatusCreated,
						"application/json; charset=utf-8",
						[]byte(payload),
					)
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(
					http.StatusConflict,
					ErrorResponse{Error: "idempotency key in progress", Code: apperr.KindConflict.String()},
				)
				return
			}
		}

		b, err := svcs.Bookings.Create(c.Request.Context(), booking.CreateInput{
			UserID:     req.UserID,
			LocationID: req.LocationID,
			StartTime:  start,
			EndTime:    end,
			PriceCents: req.PriceCents,
			Notes:      req.Notes,
		})
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			respondErr(c, err)
			return
		}

		resp := toBookingResponse(b)

		if idemStorageKey != "" && idem != nil {
			body, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(body))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// @Summary  Get booking
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200 {object} BookingResponse
// @Failure  404 {object} ErrorResponse
// @Router   /bookings/{id} [get]
func handleGetBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		b, err := svcs.Bookings.Get(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toBookingResponse(b))
	}
}

// @Summary  Update booking fields
// @Description Changing start_time or end_time re-checks availability.
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Param    req body  UpdateBookingRequest true "payload"
// @Success  200 {object} BookingResponse
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "slot taken"
// @Router   /bookings/{id} [patch]
func handleUpdateBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req UpdateBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		start, err := parseOptionalRFC3339(req.StartTime)
		if err != nil {
			badRequest(c, "invalid start_time (RFC3339)")
			return
		}
		end, err := parseOptionalRFC3339(req.EndTime)
		if err != nil {
			badRequest(c, "invalid end_time (RFC3339)")
			return
		}

		b, err := svcs.Bookings.Update(c.Request.Context(), id, booking.Patch{
			StartTime:  start,
			EndTime:    end,
			PriceCents: req.PriceCents,
			Notes:      req.Notes,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toBookingResponse(b))
	}
}

// @Summary  Change booking status
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Param    req body  UpdateStatusRequest true "payload"
// @Success  200 {object} BookingResponse
// @Failure  400 {object} ErrorResponse "invalid transition"
// @Failure  404 {object} ErrorResponse
// @Router   /bookings/{id}/status [patch]
func handleUpdateBookingStatus(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		b, err := svcs.Bookings.UpdateStatus(c.Request.Context(), id, domain.BookingStatus(req.Status))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toBookingResponse(b))
	}
}

// @Summary  Cancel booking
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200 {object} BookingResponse
// @Failure  400 {object} ErrorResponse "completed or already cancelled"
// @Failure  404 {object} ErrorResponse
// @Router   /bookings/{id}/cancel [post]
func handleCancelBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		b, err := svcs.Bookings.Cancel(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toBookingResponse(b))
	}
}

// @Summary  Whether a user holds active bookings
// @Param    id  path  int  true  "User ID"
// @Success  200 {object} ActiveBookingsResponse
// @Router   /users/{id}/active-bookings [get]
func handleUserActiveBookings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		active, err := svcs.Bookings.HasActiveForUser(c.Request.Context(), userID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, ActiveBookingsResponse{HasActiveBookings: active})
	}
}

// @Summary  Check whether a slot can be booked
// @Param    id     path   int     true  "Location ID"
// @Param    start  query  string  true  "RFC3339"
// @Param    end    query  string  true  "RFC3339"
// @Success  200 {object} AvailabilityResponse
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Router   /locations/{id}/availability [get]
func handleCheckAvailability(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		locationID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		start, err := parseRFC3339(c.Query("start"))
		if err != nil {
			badRequest(c, "invalid start (RFC3339)")
			return
		}
		end, err := parseRFC3339(c.Query("end"))
		if err != nil {
			badRequest(c, "invalid end (RFC3339)")
			return
		}

		err = svcs.Availability.Ensure(c.Request.Context(), locationID, start, end, uuid.Nil)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, AvailabilityResponse{Available: true})
		case errors.Is(err, availability.ErrSlotUnavailable),
			errors.Is(err, availability.ErrLocationClosed),
			errors.Is(err, availability.ErrLocationInactive):
			c.JSON(http.StatusOK, AvailabilityResponse{Available: false, Reason: apperr.MessageOf(err)})
		default:
			respondErr(c, err)
		}
	}
}

// @Summary  Whether a location holds active bookings
// @Param    id  path  int  true  "Location ID"
// @Success  200 {object} ActiveBookingsResponse
// @Router   /locations/{id}/active-bookings [get]
func handleLocationActiveBookings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		locationID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		active, err := svcs.Locations.HasActiveBookings(c.Request.Context(), locationID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, ActiveBookingsResponse{HasActiveBookings: active})
	}
}
