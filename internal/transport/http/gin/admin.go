package httpgin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kirinyoku/valet-go/internal/domain"
	"github.com/kirinyoku/valet-go/internal/service"
)

// @Summary  List bookings
// @Param    status      query  string  false "booking status"
// @Param    location_id query  int     false "location"
// @Param    user_id     query  int     false "user"
// @Param    start_date  query  string  false "YYYY-MM-DD, inclusive"
// @Param    end_date    query  string  false "YYYY-MM-DD, inclusive"
// @Param    sort        query  string  false "column or -column, default -start_time"
// @Param    limit       query  int     false "page size"
// @Param    offset      query  int     false "offset"
// @Success  200 {object} BookingPageResponse
// @Failure  400 {object} ErrorResponse
// @Router   /admin/bookings [get]
func handleAdminListBookings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := domain.BookingFilter{
			From:   c.Query("start_date"),
			To:     c.Query("end_date"),
			Sort:   c.Query("sort"),
			Limit:  parseIntDefault(c.Query("limit"), 0),
			Offset: parseIntDefault(c.Query("offset"), 0),
		}

		if s := c.Query("status"); s != "" {
			st, err := domain.ParseStatus(s)
			if err != nil {
				badRequest(c, "invalid status")
				return
			}
			f.Status = &st
		}
		if s := c.Query("location_id"); s != "" {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				badRequest(c, "invalid location_id")
				return
			}
			f.LocationID = &v
		}
		if s := c.Query("user_id"); s != "" {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				badRequest(c, "invalid user_id")
				return
			}
			f.UserID = &v
		}

		page, err := svcs.Admin.ListBookings(c.Request.Context(), f)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toBookingPageResponse(page))
	}
}

// @Summary  Change booking status as administrator
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Param    req body  UpdateStatusRequest true "payload"
// @Success  200 {object} BookingResponse
// @Failure  400 {object} ErrorResponse "names the allowed statuses"
// @Failure  404 {object} ErrorResponse
// @Router   /admin/bookings/{id}/status [patch]
func handleAdminUpdateBookingStatus(svcs *service.Services) gin.HandlerFunc {
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
		b, err := svcs.Admin.UpdateBookingStatus(c.Request.Context(), id, domain.BookingStatus(req.Status))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toBookingResponse(b))
	}
}

// @Summary  Delete booking
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  204
// @Failure  404 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "in progress or completed"
// @Router   /admin/bookings/{id} [delete]
func handleAdminDeleteBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		if err := svcs.Admin.DeleteBooking(c.Request.Context(), id); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  List all schedules
// @Success  200 {array} domain.Schedule
// @Router   /admin/schedules [get]
func handleAdminListSchedules(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svcs.Admin.ListSchedules(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, list, "private, max-age=0", true)
	}
}

// @Summary  Delete location
// @Param    id  path  int  true  "Location ID"
// @Success  204
// @Failure  404 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "has active bookings"
// @Router   /admin/locations/{id} [delete]
func handleDeleteLocation(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		locationID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		if err := svcs.Locations.Delete(c.Request.Context(), locationID); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Revenue of completed bookings
// @Param    start_date  query  string  false "YYYY-MM-DD, inclusive"
// @Param    end_date    query  string  false "YYYY-MM-DD, inclusive"
// @Success  200 {object} domain.RevenueSummary
// @Router   /admin/revenue [get]
func handleRevenue(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sum, err := svcs.Admin.Revenue(c.Request.Context(), c.Query("start_date"), c.Query("end_date"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, sum)
	}
}

// @Summary  Valet statistics
// @Param    id  path  int  true  "Valet ID"
// @Success  200 {object} domain.ValetStats
// @Router   /admin/valets/{id}/stats [get]
func handleValetStats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		valetID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		st, err := svcs.Admin.ValetStats(c.Request.Context(), valetID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, st)
	}
}
