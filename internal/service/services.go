package service

import (
	"time"

	"github.com/kirinyoku/valet-go/internal/notify"
	"github.com/kirinyoku/valet-go/internal/repository"
	redis "github.com/kirinyoku/valet-go/internal/repository/redis"
	"github.com/kirinyoku/valet-go/internal/service/admin"
	"github.com/kirinyoku/valet-go/internal/service/availability"
	"github.com/kirinyoku/valet-go/internal/service/booking"
	"github.com/kirinyoku/valet-go/internal/service/location"
	"github.com/kirinyoku/valet-go/internal/service/schedule"
	"github.com/kirinyoku/valet-go/internal/uow"
)

type Services struct {
	Availability *availability.Checker
	Bookings     *booking.Service
	Schedules    *schedule.Service
	Locations    *location.Service
	Admin        *admin.Service
}

type Config struct {
	// Timezone is the business timezone shared by operating hours and
	// calendar-day filters.
	Timezone     *time.Location
	Availability availability.Config
	Schedule     schedule.Config
}

func NewServices(
	repos repository.Repositories,
	runner uow.Runner,
	cache *redis.Cache,
	notifier notify.Notifier,
	cfg Config,
) *Services {
	if cfg.Availability.Timezone == nil {
		cfg.Availability.Timezone = cfg.Timezone
	}

	checker := availability.New(repos, cfg.Availability)
	bookings := booking.New(repos, runner, checker, notifier)
	schedules := schedule.New(repos, runner, cache, cfg.Schedule)

	return &Services{
		Availability: checker,
		Bookings:     bookings,
		Schedules:    schedules,
		Locations:    location.New(repos, runner, cache),
		Admin:        admin.New(repos, bookings, schedules, admin.Config{Timezone: cfg.Timezone}),
	}
}
