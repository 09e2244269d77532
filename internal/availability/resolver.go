package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-shift-scheduling/internal/apperr"
	"github.com/hackgods/clinic-shift-scheduling/internal/config"
	"github.com/hackgods/clinic-shift-scheduling/internal/roster"
	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

// SpecialtySlot is one window and the doctors free for it.
type SpecialtySlot struct {
	Start     timeslot.TimeOfDay `json:"start"`
	End       timeslot.TimeOfDay `json:"end"`
	DoctorIDs []uuid.UUID        `json:"doctorIds"`
}

// Resolver answers availability queries. It never writes.
type Resolver struct {
	repo   Repository
	roster roster.Repository
	cfg    config.Scheduling
	now    func() time.Time
	logger zerolog.Logger
}

func NewResolver(repo Repository, r roster.Repository, cfg config.Scheduling, logger zerolog.Logger) *Resolver {
	return &Resolver{
		repo:   repo,
		roster: r,
		cfg:    cfg,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock replaces the time source.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	cp := *r
	cp.now = now
	return &cp
}

// slotDuration applies the default and checks the duration against the grain.
func (r *Resolver) slotDuration(minutes int) (int, error) {
	if minutes == 0 {
		return r.cfg.SlotGrain, nil
	}
	if minutes < 0 || minutes%r.cfg.SlotGrain != 0 || minutes > 24*60 {
		var v apperr.ValidationError
		v.Add("slotDurationMinutes", fmt.Sprintf("slot duration must be a positive multiple of %d minutes", r.cfg.SlotGrain))
		return 0, v.Err()
	}
	return minutes, nil
}

// window reports the earliest offerable start on date, and false when the
// date is in the past or beyond the booking horizon.
func (r *Resolver) window(date timeslot.Date) (timeslot.TimeOfDay, bool) {
	now := r.now()
	horizonEnd := timeslot.Today(now, r.cfg.Location).AddDays(r.cfg.BookingHorizonDays)
	if !date.Before(horizonEnd) {
		return 0, false
	}
	return r.cfg.EarliestStart(now, date)
}

// SlotsForDoctor lists the doctor's free windows of durationMinutes on date,
// ordered by start time. durationMinutes 0 means one grain.
func (r *Resolver) SlotsForDoctor(ctx context.Context, doctorID uuid.UUID, date timeslot.Date, durationMinutes int) ([]timeslot.Interval, error) {
	duration, err := r.slotDuration(durationMinutes)
	if err != nil {
		return nil, err
	}
	if date.IsZero() {
		return nil, requiredDate()
	}

	doctor, err := r.roster.GetDoctor(ctx, doctorID)
	if err != nil {
		return nil, lookupErr("load doctor", err)
	}
	if !doctor.Active {
		return nil, roster.ErrDoctorNotFound
	}

	notBefore, ok := r.window(date)
	if !ok {
		return []timeslot.Interval{}, nil
	}

	snap, err := r.repo.Snapshot(ctx, date, []uuid.UUID{doctorID})
	if err != nil {
		return nil, fmt.Errorf("read availability snapshot: %w", err)
	}

	slots := FreeSlots(snap.Shifts[doctorID], snap.Busy[doctorID], duration, notBefore)

	r.logger.Debug().
		Str("doctor_id", doctorID.String()).
		Str("date", date.String()).
		Int("duration", duration).
		Int("slots", len(slots)).
		Msg("computed doctor slots")

	return slots, nil
}

// DoctorsAvailable lists the active doctors, optionally restricted to a
// specialty, whose shifts on date contain [start, end) with no blocking
// appointment overlapping it.
func (r *Resolver) DoctorsAvailable(ctx context.Context, specialtyID *uuid.UUID, date timeslot.Date, start, end timeslot.TimeOfDay) ([]roster.Doctor, error) {
	target, err := timeslot.NewInterval(start, end)
	if err != nil {
		var v apperr.ValidationError
		v.Add("endTime", "endTime must be after startTime")
		return nil, v.Err()
	}
	if date.IsZero() {
		return nil, requiredDate()
	}

	doctors, err := r.candidates(ctx, specialtyID)
	if err != nil {
		return nil, err
	}

	notBefore, ok := r.window(date)
	if !ok || target.Start < notBefore || len(doctors) == 0 {
		return []roster.Doctor{}, nil
	}

	snap, err := r.repo.Snapshot(ctx, date, doctorIDs(doctors))
	if err != nil {
		return nil, fmt.Errorf("read availability snapshot: %w", err)
	}

	out := []roster.Doctor{}
	for _, d := range doctors {
		if Fits(target, snap.Shifts[d.ID], snap.Busy[d.ID]) {
			out = append(out, d)
		}
	}
	return out, nil
}

// SpecialtySlots computes, in one pass over one snapshot, every window of
// durationMinutes on date that at least one doctor of the specialty can take.
func (r *Resolver) SpecialtySlots(ctx context.Context, specialtyID *uuid.UUID, date timeslot.Date, durationMinutes int) ([]SpecialtySlot, error) {
	duration, err := r.slotDuration(durationMinutes)
	if err != nil {
		return nil, err
	}
	if date.IsZero() {
		return nil, requiredDate()
	}

	doctors, err := r.candidates(ctx, specialtyID)
	if err != nil {
		return nil, err
	}

	notBefore, ok := r.window(date)
	if !ok || len(doctors) == 0 {
		return []SpecialtySlot{}, nil
	}

	snap, err := r.repo.Snapshot(ctx, date, doctorIDs(doctors))
	if err != nil {
		return nil, fmt.Errorf("read availability snapshot: %w", err)
	}

	byWindow := make(map[timeslot.Interval][]uuid.UUID)
	for _, d := range doctors {
		for _, slot := range FreeSlots(snap.Shifts[d.ID], snap.Busy[d.ID], duration, notBefore) {
			byWindow[slot] = append(byWindow[slot], d.ID)
		}
	}

	windows := make([]timeslot.Interval, 0, len(byWindow))
	for w := range byWindow {
		windows = append(windows, w)
	}
	timeslot.SortIntervals(windows)

	out := make([]SpecialtySlot, 0, len(windows))
	for _, w := range windows {
		ids := byWindow[w]
		sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
		out = append(out, SpecialtySlot{Start: w.Start, End: w.End, DoctorIDs: ids})
	}
	return out, nil
}

func (r *Resolver) candidates(ctx context.Context, specialtyID *uuid.UUID) ([]roster.Doctor, error) {
	if specialtyID != nil {
		if _, err := r.roster.GetSpecialty(ctx, *specialtyID); err != nil {
			return nil, lookupErr("load specialty", err)
		}
	}
	doctors, err := r.roster.ListActiveDoctors(ctx, specialtyID)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return doctors, nil
}

func doctorIDs(doctors []roster.Doctor) []uuid.UUID {
	ids := make([]uuid.UUID, len(doctors))
	for i, d := range doctors {
		ids[i] = d.ID
	}
	return ids
}

func requiredDate() error {
	var v apperr.ValidationError
	v.Add("date", "date is required")
	return v.Err()
}

func lookupErr(op string, err error) error {
	if apperr.KindOf(err) == apperr.KindNotFound {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
