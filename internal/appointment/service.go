package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-shift-scheduling/internal/config"
	redisclient "github.com/hackgods/clinic-shift-scheduling/internal/redis"
	"github.com/hackgods/clinic-shift-scheduling/internal/roster"
	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

type Service struct {
	repo   Repository
	roster roster.Repository
	locker redisclient.Locker
	cfg    config.Scheduling
	now    func() time.Time
	logger zerolog.Logger
}

func NewService(repo Repository, r roster.Repository, locker redisclient.Locker, cfg config.Scheduling, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		roster: r,
		locker: locker,
		cfg:    cfg,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	cp := *s
	cp.now = now
	return &cp
}

// Transition moves an appointment to status to on behalf of actor. The
// status check is repeated by the store's compare-and-set, so two racing
// requests cannot both succeed from the same starting status.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to Status, actor Actor, reason string) (*Appointment, error) {
	appt, err := s.Get(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if err := CanTransition(appt.Status, to, actor, reason); err != nil {
		return nil, err
	}

	var cancellationReason *string
	if to == StatusCancelled {
		cancellationReason = &reason
	}

	updated, err := s.repo.UpdateStatus(ctx, id, appt.Status, to, cancellationReason, actor)
	if err != nil {
		if errors.Is(err, ErrStaleStatus) {
			return nil, ErrConcurrentTransition
		}
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update appointment status: %w", err)
	}

	s.logger.Info().
		Str("appointment_id", id.String()).
		Str("from", appt.Status.String()).
		Str("to", to.String()).
		Str("actor_role", string(actor.Role)).
		Msg("appointment status changed")

	return updated, nil
}

// Cancel frees the appointment's slot. Only pending and confirmed
// appointments can be cancelled and a reason is mandatory.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, actor Actor, reason string) (*Appointment, error) {
	return s.Transition(ctx, id, StatusCancelled, actor, reason)
}

// Get loads one appointment. Patients only see their own.
func (s *Service) Get(ctx context.Context, id uuid.UUID, actor Actor) (*Appointment, error) {
	appt, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, lookupErr("load appointment", err)
	}
	if !actor.IsStaff() && appt.PatientID != actor.ID {
		return nil, ErrAppointmentNotFound
	}
	return appt, nil
}

func (s *Service) History(ctx context.Context, id uuid.UUID, actor Actor) ([]Event, error) {
	if _, err := s.Get(ctx, id, actor); err != nil {
		return nil, err
	}
	events, err := s.repo.ListEvents(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list appointment events: %w", err)
	}
	return events, nil
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	if limit <= 0 {
		limit = 20 // default
	}
	if limit > 100 {
		limit = 100 // max
	}
	if offset < 0 {
		offset = 0
	}

	appointments, err := s.repo.ListForPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments by patient: %w", err)
	}
	return appointments, nil
}

// ListForDoctorDay returns every appointment of the doctor on date, any status.
func (s *Service) ListForDoctorDay(ctx context.Context, doctorID uuid.UUID, date timeslot.Date) ([]Appointment, error) {
	if _, err := s.roster.GetDoctor(ctx, doctorID); err != nil {
		return nil, lookupErr("load doctor", err)
	}
	appointments, err := s.repo.ListForDoctorDay(ctx, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("list appointments by doctor: %w", err)
	}
	return appointments, nil
}
