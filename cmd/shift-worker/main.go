package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/hackgods/clinic-shift-scheduling/internal/config"
	"github.com/hackgods/clinic-shift-scheduling/internal/db"
	"github.com/hackgods/clinic-shift-scheduling/internal/logging"
	"github.com/hackgods/clinic-shift-scheduling/internal/roster"
	"github.com/hackgods/clinic-shift-scheduling/internal/shift"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logging.New("prod", "shift-worker")
		boot.Fatal().Err(err).Msg("config load error")
	}

	logger := logging.New(cfg.Env, "shift-worker")
	logger.Info().
		Str("env", cfg.Env).
		Str("spec", cfg.ShiftCron).
		Int("horizon_days", cfg.ShiftHorizonDays).
		Msg("shift-worker starting up")

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

	gen := shift.NewGenerator(shift.NewPgRepository(pgPool), roster.NewPgRepository(pgPool), cfg.Scheduling(), logger)
	job := shift.NewJob(gen, shift.JobOptions{
		Spec:       cfg.ShiftCron,
		Location:   cfg.Location,
		Horizon:    cfg.ShiftHorizonDays,
		RunOnStart: cfg.ShiftRunOnStart,
	}, logger)

	if err := job.Start(rootCtx); err != nil {
		logger.Fatal().Err(err).Msg("shift job start error")
	}

	<-rootCtx.Done()
	logger.Info().Msg("shutdown signal received, stopping shift worker")
	job.Stop()
}
