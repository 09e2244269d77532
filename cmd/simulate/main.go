package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hackgods/clinic-shift-scheduling/internal/config"
	"github.com/hackgods/clinic-shift-scheduling/internal/db"
	"github.com/hackgods/clinic-shift-scheduling/internal/logging"
	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

type SimConfig struct {
	Memory       bool
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	BookingRatio float64
	ConfirmRatio float64
	CancelRatio  float64
	ReadRatio    float64
	DoctorLimit  int
	PatientLimit int
	Days         int
	RaceRounds   int
	RaceWidth    int
}

type booking struct {
	ID        uuid.UUID
	PatientID uuid.UUID
}

// population is what the workers pick from.
type population struct {
	Doctors  []uuid.UUID
	Patients []uuid.UUID
	Dates    []timeslot.Date

	mu     sync.RWMutex
	booked []booking
}

func (p *population) AddBooking(b booking) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.booked = append(p.booked, b)
}

func (p *population) RandomBooking(rng *rand.Rand) (booking, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.booked) == 0 {
		return booking{}, false
	}
	return p.booked[rng.Intn(len(p.booked))], true
}

type Simulator struct {
	config  SimConfig
	pop     *population
	driver  driver
	metrics Metrics
	races   raceResult
	logger  zerolog.Logger
}

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()

	logger := logging.New(getEnv("APP_ENV", "dev"), "simulate")
	if err := validateConfig(cfg); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	logger.Info().
		Bool("memory", cfg.Memory).
		Dur("duration", cfg.Duration).
		Int("workers", cfg.Workers).
		Float64("booking", cfg.BookingRatio).
		Float64("confirm", cfg.ConfirmRatio).
		Float64("cancel", cfg.CancelRatio).
		Float64("read", cfg.ReadRatio).
		Msg("simulator starting")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		sim   *Simulator
		mem   *memoryDriver
		sched config.Scheduling
	)

	if cfg.Memory {
		sched = config.DefaultScheduling()
		d, pop, err := newMemoryDriver(ctx, sched, cfg.DoctorLimit, cfg.PatientLimit, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("build memory store")
		}
		mem = d
		sim = &Simulator{config: cfg, pop: pop, driver: d, logger: logger}
	} else {
		baseCfg, err := config.Load()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load base config")
		}
		sched = baseCfg.Scheduling()

		pgPool, err := db.ConnectPostgres(ctx, baseCfg.PostgresDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect postgres")
		}
		defer pgPool.Close()

		pop, err := loadPopulation(ctx, pgPool, cfg.DoctorLimit, cfg.PatientLimit)
		if err != nil {
			logger.Fatal().Err(err).Msg("load population")
		}
		sim = &Simulator{config: cfg, pop: pop, driver: newHTTPDriver(cfg.APIBaseURL, []byte(baseCfg.JWTSecret)), logger: logger}
	}

	today := timeslot.Today(time.Now(), sched.Location)
	for i := 1; i <= cfg.Days && i < sched.BookingHorizonDays; i++ {
		sim.pop.Dates = append(sim.pop.Dates, today.AddDays(i))
	}
	if len(sim.pop.Dates) == 0 {
		logger.Fatal().Int("booking_horizon_days", sched.BookingHorizonDays).Msg("no bookable days to simulate")
	}
	logger.Info().
		Int("doctors", len(sim.pop.Doctors)).
		Int("patients", len(sim.pop.Patients)).
		Int("days", len(sim.pop.Dates)).
		Msg("population loaded")

	sim.Race(context.Background())
	sim.Run()
	sim.PrintReport()

	if mem != nil {
		n := mem.overlaps()
		fmt.Printf("Overlapping blocking appointments: %d\n", n)
		if n > 0 || sim.races.DoubleBooked > 0 {
			os.Exit(1)
		}
	}
}

func loadConfig() SimConfig {
	cfg := SimConfig{
		Memory:       getEnv("SIM_MEMORY", "") != "",
		APIBaseURL:   getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 10),
		BookingRatio: getFloat("SIM_BOOKING_RATIO", 0.5),
		ConfirmRatio: getFloat("SIM_CONFIRM_RATIO", 0.2),
		CancelRatio:  getFloat("SIM_CANCEL_RATIO", 0.1),
		ReadRatio:    getFloat("SIM_READ_RATIO", 0.2),
		DoctorLimit:  getInt("SIM_DOCTOR_LIMIT", 20),
		PatientLimit: getInt("SIM_PATIENT_LIMIT", 500),
		Days:         getInt("SIM_DAYS", 5),
		RaceRounds:   getInt("SIM_RACE_ROUNDS", 20),
		RaceWidth:    getInt("SIM_RACE_WIDTH", 8),
	}

	// Normalize ratios
	total := cfg.BookingRatio + cfg.ConfirmRatio + cfg.CancelRatio + cfg.ReadRatio
	if total > 0 {
		cfg.BookingRatio /= total
		cfg.ConfirmRatio /= total
		cfg.CancelRatio /= total
		cfg.ReadRatio /= total
	}

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.Days <= 0 {
		return fmt.Errorf("SIM_DAYS must be > 0")
	}
	if cfg.DoctorLimit <= 0 || cfg.PatientLimit <= 0 {
		return fmt.Errorf("SIM_DOCTOR_LIMIT and SIM_PATIENT_LIMIT must be > 0")
	}
	if cfg.RaceWidth < 2 {
		return fmt.Errorf("SIM_RACE_WIDTH must be at least 2")
	}
	return nil
}

// Race sends RaceWidth simultaneous bookings for one free slot per round and
// records how many of them won.
func (s *Simulator) Race(ctx context.Context) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for round := 0; round < s.config.RaceRounds; round++ {
		doctorID := s.pop.Doctors[rng.Intn(len(s.pop.Doctors))]
		date := s.pop.Dates[rng.Intn(len(s.pop.Dates))]

		slots, err := s.driver.Slots(ctx, doctorID, date)
		if err != nil || len(slots) == 0 {
			continue
		}
		slot := slots[rng.Intn(len(slots))]

		var winners, conflicts, failures atomic.Int32
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.config.RaceWidth)
		for i := 0; i < s.config.RaceWidth; i++ {
			patientID := s.pop.Patients[rng.Intn(len(s.pop.Patients))]
			g.Go(func() error {
				id, err := s.driver.Book(gctx, patientID, doctorID, date, slot)
				switch {
				case err == nil:
					winners.Add(1)
					s.pop.AddBooking(booking{ID: id, PatientID: patientID})
				case isConflict(err):
					conflicts.Add(1)
				default:
					failures.Add(1)
					s.logger.Warn().Err(err).Msg("race booking failed")
				}
				return nil
			})
		}
		_ = g.Wait()

		s.races.Rounds++
		s.races.Attempts += s.config.RaceWidth
		s.races.Winners += int(winners.Load())
		s.races.Conflicts += int(conflicts.Load())
		s.races.Errors += int(failures.Load())
		if winners.Load() > 1 {
			s.races.DoubleBooked++
			s.logger.Error().
				Str("doctor", doctorID.String()).
				Str("date", date.String()).
				Str("slot", slot.String()).
				Int32("winners", winners.Load()).
				Msg("slot double booked")
		}
	}
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	s.logger.Info().Dur("duration", s.config.Duration).Int("workers", s.config.Workers).Msg("starting simulation")

	var g errgroup.Group
	for i := 0; i < s.config.Workers; i++ {
		workerID := i
		g.Go(func() error {
			s.worker(ctx, workerID)
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info().Msg("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for ctx.Err() == nil {
		r := rng.Float64()
		switch {
		case r < s.config.BookingRatio:
			s.doBooking(ctx, rng)
		case r < s.config.BookingRatio+s.config.ConfirmRatio:
			s.doConfirm(ctx, rng)
		case r < s.config.BookingRatio+s.config.ConfirmRatio+s.config.CancelRatio:
			s.doCancel(ctx, rng)
		default:
			s.doRead(ctx, rng)
		}
	}
}

func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand) {
	doctorID := s.pop.Doctors[rng.Intn(len(s.pop.Doctors))]
	patientID := s.pop.Patients[rng.Intn(len(s.pop.Patients))]
	date := s.pop.Dates[rng.Intn(len(s.pop.Dates))]

	start := time.Now()
	slots, err := s.driver.Slots(ctx, doctorID, date)
	s.record(ctx, &s.metrics.Slots, start, err)
	if err != nil || len(slots) == 0 {
		return
	}

	slot := slots[rng.Intn(len(slots))]
	start = time.Now()
	id, err := s.driver.Book(ctx, patientID, doctorID, date, slot)
	s.record(ctx, &s.metrics.Booking, start, err)
	if err == nil {
		s.pop.AddBooking(booking{ID: id, PatientID: patientID})
	}
}

func (s *Simulator) doConfirm(ctx context.Context, rng *rand.Rand) {
	b, ok := s.pop.RandomBooking(rng)
	if !ok {
		return
	}
	start := time.Now()
	err := s.driver.Confirm(ctx, b.ID)
	s.record(ctx, &s.metrics.Confirm, start, err)
}

func (s *Simulator) doCancel(ctx context.Context, rng *rand.Rand) {
	b, ok := s.pop.RandomBooking(rng)
	if !ok {
		return
	}
	start := time.Now()
	err := s.driver.Cancel(ctx, b.PatientID, b.ID)
	s.record(ctx, &s.metrics.Cancel, start, err)
}

func (s *Simulator) doRead(ctx context.Context, rng *rand.Rand) {
	b, ok := s.pop.RandomBooking(rng)
	if !ok {
		return
	}
	start := time.Now()
	err := s.driver.Get(ctx, b.ID)
	s.record(ctx, &s.metrics.Read, start, err)
}

// record drops calls cut short by the end of the run.
func (s *Simulator) record(ctx context.Context, om *OperationMetrics, start time.Time, err error) {
	if err != nil && ctx.Err() != nil {
		return
	}
	om.Record(time.Since(start), err)
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(repeat("=", 80))
	if s.config.Memory {
		fmt.Println("Mode: memory")
	} else {
		fmt.Printf("Mode: http %s\n", s.config.APIBaseURL)
	}
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printRaceReport(s.races)
	printOperationReport("List slots", &s.metrics.Slots)
	printOperationReport("Booking", &s.metrics.Booking)
	printOperationReport("Confirm", &s.metrics.Confirm)
	printOperationReport("Cancel", &s.metrics.Cancel)
	printOperationReport("Read by ID", &s.metrics.Read)
}

// Helper functions

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
