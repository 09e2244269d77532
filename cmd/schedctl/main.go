package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hackgods/clinic-shift-scheduling/internal/config"
	"github.com/hackgods/clinic-shift-scheduling/internal/db"
	"github.com/hackgods/clinic-shift-scheduling/internal/logging"
	"github.com/hackgods/clinic-shift-scheduling/internal/revenue"
	"github.com/hackgods/clinic-shift-scheduling/internal/roster"
	"github.com/hackgods/clinic-shift-scheduling/internal/shift"
	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

// env bundles what every subcommand needs.
type env struct {
	cfg    config.Config
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "schedctl",
		Short:         "Operate the clinic scheduling database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(shiftsCmd())
	rootCmd.AddCommand(revenueCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// withEnv loads configuration, connects to Postgres and runs fn.
func withEnv(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Env, "schedctl")

	connectCtx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	pool, err := db.ConnectPostgres(connectCtx, cfg.PostgresDSN)
	cancel()
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(cmd.Context(), &env{cfg: cfg, pool: pool, logger: logger})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				applied, err := db.Migrate(ctx, e.pool, e.logger)
				if err != nil {
					return err
				}
				e.logger.Info().Int("applied", applied).Msg("migrations complete")
				return nil
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the embedded migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrations, err := db.LoadMigrations()
			if err != nil {
				return err
			}
			for _, m := range migrations {
				fmt.Printf("%03d  %s\n", m.Version, m.Name)
			}
			return nil
		},
	})

	return cmd
}

func shiftsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shifts",
		Short: "Generate and manage doctor shifts",
	}

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Create the missing shifts for the coming days",
		RunE: func(cmd *cobra.Command, args []string) error {
			doctor, _ := cmd.Flags().GetString("doctor")
			horizon, _ := cmd.Flags().GetInt("horizon")
			parallel, _ := cmd.Flags().GetInt("parallel")

			return withEnv(cmd, func(ctx context.Context, e *env) error {
				rosterRepo := roster.NewPgRepository(e.pool)
				gen := shift.NewGenerator(shift.NewPgRepository(e.pool), rosterRepo, e.cfg.Scheduling(), e.logger)

				if doctor != "" {
					id, err := uuid.Parse(doctor)
					if err != nil {
						return fmt.Errorf("invalid --doctor: %w", err)
					}
					created, err := gen.GenerateForDoctor(ctx, id, horizon)
					if err != nil {
						return err
					}
					return printJSON(map[string]any{"doctorId": id, "created": created})
				}

				if parallel <= 1 {
					report, err := gen.GenerateForAllDoctors(ctx, horizon)
					if err != nil {
						return err
					}
					return printJSON(report)
				}
				return generateParallel(ctx, gen, rosterRepo, horizon, parallel, e.logger)
			})
		},
	}
	generateCmd.Flags().String("doctor", "", "Only generate for this doctor id")
	generateCmd.Flags().Int("horizon", 0, "Days ahead to cover (0 uses SHIFT_HORIZON_DAYS)")
	generateCmd.Flags().Int("parallel", 1, "Doctors processed concurrently")
	cmd.AddCommand(generateCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List a doctor's shifts in a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			doctor, _ := cmd.Flags().GetString("doctor")
			fromRaw, _ := cmd.Flags().GetString("from")
			toRaw, _ := cmd.Flags().GetString("to")

			id, from, to, err := parseDoctorRange(doctor, fromRaw, toRaw)
			if err != nil {
				return err
			}
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				gen := shift.NewGenerator(shift.NewPgRepository(e.pool), roster.NewPgRepository(e.pool), e.cfg.Scheduling(), e.logger)
				shifts, err := gen.ListShifts(ctx, id, from, to)
				if err != nil {
					return err
				}
				return printJSON(shifts)
			})
		},
	}
	listCmd.Flags().String("doctor", "", "Doctor id")
	listCmd.Flags().String("from", "", "First day, YYYY-MM-DD")
	listCmd.Flags().String("to", "", "Last day, YYYY-MM-DD")
	cmd.AddCommand(listCmd)

	cmd.AddCommand(setActiveCmd("deactivate", "Take a shift out of booking", false))
	cmd.AddCommand(setActiveCmd("activate", "Put a deactivated shift back into booking", true))

	return cmd
}

// generateParallel runs GenerateForDoctor for every active doctor with at
// most parallel doctors in flight. One doctor failing does not stop the rest.
func generateParallel(ctx context.Context, gen *shift.Generator, r roster.Repository, horizon, parallel int, logger zerolog.Logger) error {
	doctors, err := r.ListActiveDoctors(ctx, nil)
	if err != nil {
		return err
	}

	var created, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for _, d := range doctors {
		g.Go(func() error {
			n, err := gen.GenerateForDoctor(gctx, d.ID, horizon)
			if err != nil {
				failed.Add(1)
				logger.Error().Err(err).Str("doctor_id", d.ID.String()).Msg("shift generation failed")
				return nil
			}
			created.Add(int64(n))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return printJSON(map[string]any{
		"doctors":  len(doctors),
		"created":  created.Load(),
		"failures": failed.Load(),
	})
}

func setActiveCmd(use, short string, active bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			doctor, _ := cmd.Flags().GetString("doctor")
			dateRaw, _ := cmd.Flags().GetString("date")
			startRaw, _ := cmd.Flags().GetString("start")

			id, date, _, err := parseDoctorRange(doctor, dateRaw, dateRaw)
			if err != nil {
				return err
			}
			start, err := timeslot.ParseTimeOfDay(startRaw)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}

			return withEnv(cmd, func(ctx context.Context, e *env) error {
				gen := shift.NewGenerator(shift.NewPgRepository(e.pool), roster.NewPgRepository(e.pool), e.cfg.Scheduling(), e.logger)
				s, err := gen.SetActive(ctx, id, date, start, active)
				if err != nil {
					return err
				}
				return printJSON(s)
			})
		},
	}
	cmd.Flags().String("doctor", "", "Doctor id")
	cmd.Flags().String("date", "", "Shift day, YYYY-MM-DD")
	cmd.Flags().String("start", "", "Shift start, HH:mm")
	return cmd
}

func revenueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revenue",
		Short: "Report paid revenue",
	}

	report := func(use, short string, run func(ctx context.Context, agg *revenue.Aggregator, from, to timeslot.Date) (any, error)) *cobra.Command {
		c := &cobra.Command{
			Use:   use,
			Short: short,
			RunE: func(cmd *cobra.Command, args []string) error {
				fromRaw, _ := cmd.Flags().GetString("from")
				toRaw, _ := cmd.Flags().GetString("to")
				from, err := timeslot.ParseDate(fromRaw)
				if err != nil {
					return fmt.Errorf("invalid --from: %w", err)
				}
				to, err := timeslot.ParseDate(toRaw)
				if err != nil {
					return fmt.Errorf("invalid --to: %w", err)
				}

				return withEnv(cmd, func(ctx context.Context, e *env) error {
					out, err := run(ctx, revenue.NewAggregator(revenue.NewPgRepository(e.pool), e.logger), from, to)
					if err != nil {
						return err
					}
					return printJSON(out)
				})
			},
		}
		c.Flags().String("from", "", "First day, YYYY-MM-DD")
		c.Flags().String("to", "", "Last day, YYYY-MM-DD")
		return c
	}

	cmd.AddCommand(report("summary", "Total paid revenue in a date range",
		func(ctx context.Context, agg *revenue.Aggregator, from, to timeslot.Date) (any, error) {
			return agg.Summary(ctx, from, to)
		}))
	cmd.AddCommand(report("by-date", "Paid revenue per day in a date range",
		func(ctx context.Context, agg *revenue.Aggregator, from, to timeslot.Date) (any, error) {
			return agg.ByDate(ctx, from, to)
		}))

	return cmd
}

func parseDoctorRange(doctor, fromRaw, toRaw string) (uuid.UUID, timeslot.Date, timeslot.Date, error) {
	id, err := uuid.Parse(doctor)
	if err != nil {
		return uuid.Nil, timeslot.Date{}, timeslot.Date{}, fmt.Errorf("invalid --doctor: %w", err)
	}
	from, err := timeslot.ParseDate(fromRaw)
	if err != nil {
		return uuid.Nil, timeslot.Date{}, timeslot.Date{}, fmt.Errorf("invalid date %q: %w", fromRaw, err)
	}
	to, err := timeslot.ParseDate(toRaw)
	if err != nil {
		return uuid.Nil, timeslot.Date{}, timeslot.Date{}, fmt.Errorf("invalid date %q: %w", toRaw, err)
	}
	return id, from, to, nil
}
