package shift

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// BatchGenerator is what the daily job drives.
type BatchGenerator interface {
	GenerateForAllDoctors(ctx context.Context, horizonDays int) (Report, error)
}

type JobOptions struct {
	Spec       string         // standard 5-field cron expression
	Location   *time.Location // clinic time zone the spec is read in
	Horizon    int
	RunOnStart bool
	RunTimeout time.Duration
}

// Job runs the shift generation on a daily timer. It does nothing until Start
// is called and Stop waits for an in-flight run.
type Job struct {
	gen    BatchGenerator
	opts   JobOptions
	logger zerolog.Logger

	mu   sync.Mutex
	cron *cron.Cron
	runs sync.WaitGroup
}

func NewJob(gen BatchGenerator, opts JobOptions, logger zerolog.Logger) *Job {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = 10 * time.Minute
	}
	return &Job{gen: gen, opts: opts, logger: logger}
}

func (j *Job) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.cron != nil {
		return fmt.Errorf("shift job already started")
	}

	c := cron.New(
		cron.WithLocation(j.opts.Location),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{j.logger})),
	)
	if _, err := c.AddFunc(j.opts.Spec, func() { j.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule shift job %q: %w", j.opts.Spec, err)
	}

	j.cron = c
	c.Start()

	j.logger.Info().Str("spec", j.opts.Spec).Str("tz", j.opts.Location.String()).Msg("shift job started")

	if j.opts.RunOnStart {
		j.runs.Add(1)
		go func() {
			defer j.runs.Done()
			j.RunOnce(ctx)
		}()
	}
	return nil
}

// Stop halts the timer and blocks until running generations return.
func (j *Job) Stop() {
	j.mu.Lock()
	c := j.cron
	j.cron = nil
	j.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	j.runs.Wait()
	j.logger.Info().Msg("shift job stopped")
}

// RunOnce performs one generation run. Partial failures are only logged.
func (j *Job) RunOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, j.opts.RunTimeout)
	defer cancel()

	start := time.Now()
	report, err := j.gen.GenerateForAllDoctors(runCtx, j.opts.Horizon)
	if err != nil {
		j.logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("shift generation run aborted")
		return
	}
	j.logger.Info().
		Int("created", report.Created).
		Int("failed", len(report.Failures)).
		Dur("duration", time.Since(start)).
		Msg("shift generation run finished")
}

// cronLogger adapts zerolog to cron's logging interface.
type cronLogger struct {
	l zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
