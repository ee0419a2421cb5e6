package httpgin

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/kirinyoku/valet-go/internal/apperr"
	redisrepo "github.com/kirinyoku/valet-go/internal/repository/redis"
	"github.com/kirinyoku/valet-go/internal/service"
)

// Options holds the optional Redis backed collaborators of the router. Nil
// fields switch the matching feature off.
type Options struct {
	Idempotency *redisrepo.IdempotencyStore
	Limiter     *redisrepo.SlidingWindowLimiter
}

func NewRouter(
	svcs *service.Services,
	opts Options,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public API
	r.POST("/bookings", RateLimitMiddleware(opts.Limiter), handleCreateBooking(svcs, opts.Idempotency))
	r.GET("/bookings/:id", handleGetBooking(svcs))
	r.PATCH("/bookings/:id", handleUpdateBooking(svcs))
	r.PATCH("/bookings/:id/status", handleUpdateBookingStatus(svcs))
	r.POST("/bookings/:id/cancel", handleCancelBooking(svcs))

	r.GET("/users/:id/active-bookings", handleUserActiveBookings(svcs))

	r.GET("/locations/:id/schedules", handleListLocationSchedules(svcs))
	r.GET("/locations/:id/open", handleIsLocationOpen(svcs))
	r.GET("/locations/:id/availability", handleCheckAvailability(svcs))
	r.GET("/locations/:id/active-bookings", handleLocationActiveBookings(svcs))

	// Admin-API
	admin := r.Group("/admin", RequireRole(RoleAdmin))
	{
		admin.GET("/bookings", handleAdminListBookings(svcs))
		admin.PATCH("/bookings/:id/status", handleAdminUpdateBookingStatus(svcs))
		admin.DELETE("/bookings/:id", handleAdminDeleteBooking(svcs))

		admin.GET("/schedules", handleAdminListSchedules(svcs))
		admin.POST("/locations/:id/schedules", handleCreateSchedule(svcs))
		admin.POST("/locations/:id/schedules/bulk", handleCreateSchedulesBulk(svcs))
		admin.GET("/schedules/:id", handleGetSchedule(svcs))
		admin.PATCH("/schedules/:id", handleUpdateSchedule(svcs))
		admin.DELETE("/schedules/:id", handleDeleteSchedule(svcs))

		admin.DELETE("/locations/:id", handleDeleteLocation(svcs))

		admin.GET("/revenue", handleRevenue(svcs))
		admin.GET("/valets/:id/stats", handleValetStats(svcs))
	}

	return r
}

// --- Helpers ---

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	s := c.Param(name)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	v, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return v, true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: apperr.KindValidation.String()})
}

// respondErr writes err with the status code of its kind. Unclassified
// errors become 500 with a generic message and are attached to the context
// so the access log records them.
func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	kind := apperr.KindOf(err)

	var status int
	switch kind {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindValidation, apperr.KindInvalidTransition:
		status = http.StatusBadRequest
	default:
		status = http.StatusInternalServerError
		_ = c.Error(err)
	}

	c.JSON(status, ErrorResponse{Error: apperr.MessageOf(err), Code: kind.String()})
}
