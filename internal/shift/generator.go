package shift

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-shift-scheduling/internal/apperr"
	"github.com/hackgods/clinic-shift-scheduling/internal/config"
	"github.com/hackgods/clinic-shift-scheduling/internal/roster"
	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

var ErrInvalidHorizon = apperr.Validation("invalid_horizon", "horizon days must be positive")

// maxHorizonDays bounds a single generation request.
const maxHorizonDays = 366

// Generator provisions future shifts for the roster over a rolling horizon.
type Generator struct {
	repo   Repository
	roster Roster
	cfg    config.Scheduling
	now    func() time.Time
	logger zerolog.Logger
}

func NewGenerator(repo Repository, r Roster, cfg config.Scheduling, logger zerolog.Logger) *Generator {
	return &Generator{
		repo:   repo,
		roster: r,
		cfg:    cfg,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock replaces the time source; used by tests and the CLI's --from flag.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	cp := *g
	cp.now = now
	return &cp
}

// DoctorFailure records a doctor the batch run had to skip.
type DoctorFailure struct {
	DoctorID uuid.UUID `json:"doctorId"`
	Error    string    `json:"error"`
}

// Report summarises one GenerateForAllDoctors run.
type Report struct {
	From     timeslot.Date   `json:"from"`
	Horizon  int             `json:"horizonDays"`
	Doctors  int             `json:"doctors"`
	Created  int             `json:"created"`
	Failures []DoctorFailure `json:"failures,omitempty"`
}

// Plan lists the shifts a doctor should have for [from, from+horizonDays),
// skipping the weekly rest day.
func (g *Generator) Plan(doctorID uuid.UUID, from timeslot.Date, horizonDays int) []DoctorShift {
	var out []DoctorShift
	for i := 0; i < horizonDays; i++ {
		day := from.AddDays(i)
		if day.Weekday() == g.cfg.RestDay {
			continue
		}
		for _, block := range g.cfg.ShiftBlocks {
			out = append(out, DoctorShift{
				DoctorID: doctorID,
				Date:     day,
				Start:    block.Start,
				End:      block.End,
				Active:   true,
			})
		}
	}
	return out
}

func (g *Generator) horizon(horizonDays int) (int, error) {
	if horizonDays == 0 {
		return g.cfg.ShiftHorizonDays, nil
	}
	if horizonDays < 0 || horizonDays > maxHorizonDays {
		return 0, ErrInvalidHorizon
	}
	return horizonDays, nil
}

// GenerateForDoctor creates the missing shifts of one active doctor and
// returns how many rows were written. A zero horizon uses the configured default.
func (g *Generator) GenerateForDoctor(ctx context.Context, doctorID uuid.UUID, horizonDays int) (int, error) {
	horizon, err := g.horizon(horizonDays)
	if err != nil {
		return 0, err
	}

	doctor, err := g.roster.GetDoctor(ctx, doctorID)
	if err != nil {
		if errors.Is(err, roster.ErrDoctorNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("load doctor: %w", err)
	}
	if !doctor.Active {
		return 0, roster.ErrDoctorNotFound
	}

	return g.generate(ctx, doctorID, timeslot.Today(g.now(), g.cfg.Location), horizon)
}

func (g *Generator) generate(ctx context.Context, doctorID uuid.UUID, from timeslot.Date, horizon int) (int, error) {
	created := 0
	for _, s := range g.Plan(doctorID, from, horizon) {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		ok, err := g.repo.InsertIfAbsent(ctx, s)
		if err != nil {
			return created, fmt.Errorf("insert shift %s %s: %w", s.Date, s.Interval(), err)
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// GenerateForAllDoctors runs the generation for every active doctor. A doctor
// that fails is logged and recorded in the report; the run moves on.
func (g *Generator) GenerateForAllDoctors(ctx context.Context, horizonDays int) (Report, error) {
	horizon, err := g.horizon(horizonDays)
	if err != nil {
		return Report{}, err
	}

	from := timeslot.Today(g.now(), g.cfg.Location)
	report := Report{From: from, Horizon: horizon}

	doctors, err := g.roster.ListActiveDoctors(ctx, nil)
	if err != nil {
		return report, fmt.Errorf("list doctors: %w", err)
	}
	report.Doctors = len(doctors)

	for _, d := range doctors {
		if ctx.Err() != nil {
			break
		}
		created, err := g.generate(ctx, d.ID, from, horizon)
		report.Created += created
		if err != nil {
			g.logger.Error().Err(err).
				Str("doctor_id", d.ID.String()).
				Int("created_before_failure", created).
				Msg("shift generation failed for doctor, continuing")
			report.Failures = append(report.Failures, DoctorFailure{DoctorID: d.ID, Error: err.Error()})
			continue
		}
	}

	g.logger.Info().
		Str("from", from.String()).
		Int("horizon_days", horizon).
		Int("doctors", report.Doctors).
		Int("created", report.Created).
		Int("failed", len(report.Failures)).
		Msg("shift generation run complete")

	return report, ctx.Err()
}

// SetActive toggles one shift, e.g. when a doctor is unavailable for a block.
func (g *Generator) SetActive(ctx context.Context, doctorID uuid.UUID, date timeslot.Date, start timeslot.TimeOfDay, active bool) (*DoctorShift, error) {
	s, err := g.repo.SetActive(ctx, doctorID, date, start, active)
	if err != nil {
		if errors.Is(err, ErrShiftNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("set shift active: %w", err)
	}
	g.logger.Info().
		Str("doctor_id", doctorID.String()).
		Str("date", date.String()).
		Str("start", start.String()).
		Bool("active", active).
		Msg("shift updated")
	return s, nil
}

// ListShifts returns a doctor's shifts in the inclusive date range.
func (g *Generator) ListShifts(ctx context.Context, doctorID uuid.UUID, from, to timeslot.Date) ([]DoctorShift, error) {
	if to.Before(from) {
		return nil, apperr.Validation("invalid_range", "from must not be after to")
	}
	if _, err := g.roster.GetDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	return g.repo.ListForDoctor(ctx, doctorID, from, to)
}
