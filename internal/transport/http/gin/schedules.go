package httpgin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kirinyoku/valet-go/internal/service"
	"github.com/kirinyoku/valet-go/internal/service/schedule"
)

// @Summary  Weekly schedule of a location
// @Param    id  path  int  true  "Location ID"
// @Success  200 {array} domain.Schedule
// @Router   /locations/{id}/schedules [get]
func handleListLocationSchedules(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		locationID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		list, err := svcs.Schedules.ListByLocation(c.Request.Context(), locationID)
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 30s
		writeJSONWithCache(c, http.StatusOK, list, "public, max-age=30", true)
	}
}

// @Summary  Whether a location is open
// @Param    id    path   int     true  "Location ID"
// @Param    day   query  int     true  "0=Sunday..6=Saturday"
// @Param    time  query  string  true  "HH:MM"
// @Success  200 {object} OpenResponse
// @Router   /locations/{id}/open [get]
func handleIsLocationOpen(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		locationID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		day, err := strconv.Atoi(c.Query("day"))
		if err != nil {
			day = -1
		}
		open, err := svcs.Schedules.IsLocationOpen(c.Request.Context(), locationID, day, c.Query("time"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, OpenResponse{Open: open})
	}
}

// @Summary  Create schedule
// @Param    id  path  int  true  "Location ID"
// @Param    req body  ScheduleRequest true "payload"
// @Success  201 {object} domain.Schedule
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "day already scheduled"
// @Router   /admin/locations/{id}/schedules [post]
func handleCreateSchedule(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		locationID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req ScheduleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		s, err := svcs.Schedules.Create(c.Request.Context(), locationID, req.toScheduleInput())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, s)
	}
}

// @Summary  Create schedules in bulk
// @Description Entries are created independently. 201 when all succeed,
// @Description 207 with the failed entries otherwise.
// @Param    id  path  int  true  "Location ID"
// @Param    req body  BulkScheduleRequest true "payload"
// @Success  201 {object} schedule.BulkResult
// @Success  207 {object} schedule.BulkResult
// @Failure  404 {object} ErrorResponse
// @Router   /admin/locations/{id}/schedules/bulk [post]
func handleCreateSchedulesBulk(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		locationID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req BulkScheduleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		entries := make([]schedule.Input, len(req.Schedules))
		for i, s := range req.Schedules {
			entries[i] = s.toScheduleInput()
		}

		res, err := svcs.Schedules.CreateBulk(c.Request.Context(), locationID, entries)
		if err != nil {
			respondErr(c, err)
			return
		}

		status := http.StatusCreated
		if len(res.Failed) > 0 {
			status = http.StatusMultiStatus
		}
		c.JSON(status, res)
	}
}

// @Summary  Get schedule
// @Param    id  path  string  true  "Schedule ID (uuid)"
// @Success  200 {object} domain.Schedule
// @Failure  404 {object} ErrorResponse
// @Router   /admin/schedules/{id} [get]
func handleGetSchedule(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		s, err := svcs.Schedules.Get(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

// @Summary  Update schedule
// @Param    id  path  string  true  "Schedule ID (uuid)"
// @Param    req body  UpdateScheduleRequest true "payload"
// @Success  200 {object} domain.Schedule
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Router   /admin/schedules/{id} [patch]
func handleUpdateSchedule(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req UpdateScheduleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		s, err := svcs.Schedules.Update(c.Request.Context(), id, schedule.Patch{
			DayOfWeek: req.DayOfWeek,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			IsActive:  req.IsActive,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

// @Summary  Delete schedule
// @Param    id  path  string  true  "Schedule ID (uuid)"
// @Success  204
// @Failure  404 {object} ErrorResponse
// @Router   /admin/schedules/{id} [delete]
func handleDeleteSchedule(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		if err := svcs.Schedules.Delete(c.Request.Context(), id); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
