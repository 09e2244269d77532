package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hackgods/clinic-shift-scheduling/internal/api"
	"github.com/hackgods/clinic-shift-scheduling/internal/appointment"
	"github.com/hackgods/clinic-shift-scheduling/internal/availability"
	"github.com/hackgods/clinic-shift-scheduling/internal/config"
	"github.com/hackgods/clinic-shift-scheduling/internal/db"
	"github.com/hackgods/clinic-shift-scheduling/internal/logging"
	redisclient "github.com/hackgods/clinic-shift-scheduling/internal/redis"
	"github.com/hackgods/clinic-shift-scheduling/internal/revenue"
	"github.com/hackgods/clinic-shift-scheduling/internal/roster"
	"github.com/hackgods/clinic-shift-scheduling/internal/shift"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logging.New("prod", "api-server")
		boot.Fatal().Err(err).Msg("config load error")
	}

	logger := logging.New(cfg.Env, "api-server")
	logger.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Str("version", version).Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	logger.Info().Msg("connected to Postgres")

	applied, err := db.Migrate(rootCtx, pgPool, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("migration error")
	}
	logger.Info().Int("applied", applied).Msg("schema up to date")

	// Connect Redis. Without it bookings still serialise through the
	// database, but only this process honours the slot locks.
	var locker redisclient.Locker
	redisCheck := api.Check(func(context.Context) error { return errors.New("redis not connected") })
	rdb, err := redisclient.NewRedisClient(rootCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, falling back to in-process slot locks")
		locker = redisclient.NewLocalSlotLocker()
	} else {
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Error().Err(err).Msg("error closing redis")
			}
		}()
		logger.Info().Msg("connected to Redis")
		locker = redisclient.NewRedisSlotLocker(rdb, cfg.LockTTL)
		redisCheck = api.RedisCheck(rdb)
	}

	sched := cfg.Scheduling()
	rosterRepo := roster.NewPgRepository(pgPool)

	router := api.NewRouter(api.RouterConfig{
		Appointments: appointment.NewService(appointment.NewPgRepository(pgPool), rosterRepo, locker, sched, logger),
		Availability: availability.NewResolver(availability.NewPgRepository(pgPool), rosterRepo, sched, logger),
		Shifts:       shift.NewGenerator(shift.NewPgRepository(pgPool), rosterRepo, sched, logger),
		Revenue:      revenue.NewAggregator(revenue.NewPgRepository(pgPool), logger),
		Health:       api.NewHealthHandler(api.PostgresCheck(pgPool), redisCheck, cfg.Env, version),
		Logger:       logger,

		JWTSecret:           []byte(cfg.JWTSecret),
		GuestRateLimitRPS:   cfg.GuestRateLimitRPS,
		GuestRateLimitBurst: cfg.GuestRateLimitBurst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case <-rootCtx.Done():
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			os.Exit(1)
		}
	}

	logger.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
