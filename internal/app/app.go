package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/kirinyoku/valet-go/internal/config"
	"github.com/kirinyoku/valet-go/internal/domain"
	"github.com/kirinyoku/valet-go/internal/notify"
	"github.com/kirinyoku/valet-go/internal/postgres"
	"github.com/kirinyoku/valet-go/internal/redis"
	"github.com/kirinyoku/valet-go/internal/repository"
	"github.com/kirinyoku/valet-go/internal/repository/memory"
	postgresrepo "github.com/kirinyoku/valet-go/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/valet-go/internal/repository/redis"
	"github.com/kirinyoku/valet-go/internal/service"
	httpgin "github.com/kirinyoku/valet-go/internal/transport/http/gin"
	"github.com/kirinyoku/valet-go/internal/uow"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	dispatcher *notify.Dispatcher
	events     *redisrepo.EventsPubSub
	closers    []io.Closer
	cleanup    []func()
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx := context.Background()
	a := &App{cfg: cfg, logger: logger}

	// Initialize storage
	repos, runner, err := a.initStorage(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	// Initialize optional collaborators
	var (
		rdb   *goredis.Client
		cache *redisrepo.Cache
		opts  httpgin.Options

		events  notify.EventPublisher
		notices notify.NotificationPublisher
	)

	if cfg.Redis.Enabled {
		rdb, err = redis.New(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		a.closers = append(a.closers, rdb)

		cache = redisrepo.New(rdb)
		a.events = redisrepo.NewEventsPubSub(rdb)
		events = a.events
		opts.Limiter = redisrepo.NewSlidingWindowLimiter(rdb, "bookings", cfg.Booking.RateLimitPerMinute, time.Minute)
		opts.Idempotency = redisrepo.NewIdempotencyStore(rdb, cfg.Booking.IdempotencyTTL)
	} else {
		logger.Warn("redis disabled: no cache, rate limiting, idempotency or live booking updates")
	}

	if cfg.RabbitMQ.URL != "" {
		pub, err := notify.NewAMQPPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to initialize rabbitmq: %w", err)
		}
		a.closers = append(a.closers, pub)
		notices = pub
	} else {
		logger.Warn("RABBITMQ_URL not set: user notifications are not delivered")
	}

	a.dispatcher = notify.NewDispatcher(events, notices, logger)

	// Initialize services
	services := service.NewServices(repos, runner, cache, a.dispatcher, service.Config{
		Timezone: cfg.Booking.Timezone,
	})

	// Initialize Gin router
	router := httpgin.NewRouter(services, opts, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

func (a *App) initStorage(ctx context.Context) (repository.Repositories, uow.Runner, error) {
	switch a.cfg.Storage.Driver {
	case config.DriverMemory:
		a.logger.Warn("using in-memory storage: data is lost on exit")

		store := memory.New()
		store.PutLocation(domain.Location{ID: 1, Name: "Demo location", IsActive: true})

		return store, store, nil

	default:
		pool, err := postgres.New(ctx, postgres.Config{
			DSN:      a.cfg.Postgres.DSN(),
			MaxConns: a.cfg.Postgres.MaxConns,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		a.cleanup = append(a.cleanup, pool.Close)

		if err := postgres.Migrate(ctx, pool); err != nil {
			return nil, nil, fmt.Errorf("failed to migrate postgres: %w", err)
		}

		store := postgresrepo.NewStore(pool)
		return store, uow.NewUoW(store), nil
	}
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	defer a.close()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Log booking updates as they reach live subscribers
	if a.events != nil {
		g.Go(func() error {
			err := a.events.Subscribe(gCtx, func(_ context.Context, ev domain.BookingEvent) {
				a.logger.Info("booking updated",
					"booking_id", ev.BookingID,
					"status", ev.Status,
					"location_id", ev.LocationID,
				)
			})
			// losing the tap must not take the API down
			if err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn("booking updates subscription ended", "error", err)
			}
			return nil
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := a.httpServer.Shutdown(ctx)

		// let in-flight notifications reach the brokers before they close
		a.dispatcher.Wait(ctx)

		return err
	})

	return g.Wait()
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil

	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	a.cleanup = nil
}
