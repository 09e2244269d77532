package appointment

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-shift-scheduling/internal/apperr"
	redisclient "github.com/hackgods/clinic-shift-scheduling/internal/redis"
	"github.com/hackgods/clinic-shift-scheduling/internal/roster"
	"github.com/hackgods/clinic-shift-scheduling/internal/shift"
	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

var (
	ErrSlotUnavailable = apperr.Conflict("slot_unavailable", "slot is no longer available, please pick another slot")
	ErrOutsideShift    = apperr.Conflict("outside_shift", "requested time is not inside an active shift of the doctor")
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{9,15}$`)

// NormalizePhone strips the separators people type into phone numbers.
func NormalizePhone(raw string) string {
	return strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "").Replace(strings.TrimSpace(raw))
}

// BookingRequest is one attempt to reserve a doctor's time.
type BookingRequest struct {
	DoctorID    uuid.UUID
	SpecialtyID *uuid.UUID
	ServiceID   *uuid.UUID
	Date        timeslot.Date
	Start       timeslot.TimeOfDay
	End         timeslot.TimeOfDay
	Reason      string

	// Exactly one patient source applies: the authenticated patient, an
	// existing patient chosen by staff, or a guest snapshot.
	Caller    Actor
	PatientID *uuid.UUID
	Guest     *GuestInfo
}

func (r BookingRequest) interval() timeslot.Interval {
	return timeslot.Interval{Start: r.Start, End: r.End}
}

func (s *Service) validateBooking(req *BookingRequest) error {
	var v apperr.ValidationError

	if req.DoctorID == uuid.Nil {
		v.Add("doctorId", "doctorId is required")
	}

	if _, err := timeslot.NewInterval(req.Start, req.End); err != nil {
		v.Add("endTime", "endTime must be after startTime")
	} else if !req.interval().AlignedTo(s.cfg.SlotGrain) {
		v.Add("startTime", fmt.Sprintf("times must fall on %d minute boundaries", s.cfg.SlotGrain))
	}

	now := s.now()
	today := timeslot.Today(now, s.cfg.Location)
	switch {
	case req.Date.IsZero():
		v.Add("date", "date is required")
	case req.Date.Before(today):
		v.Add("date", "date is in the past")
	case !req.Date.Before(today.AddDays(s.cfg.BookingHorizonDays)):
		v.Add("date", fmt.Sprintf("date is beyond the %d day booking horizon", s.cfg.BookingHorizonDays))
	default:
		if earliest, ok := s.cfg.EarliestStart(now, req.Date); !ok || req.Start < earliest {
			v.Add("startTime", "slot starts too soon or has already passed")
		}
	}

	req.Reason = strings.TrimSpace(req.Reason)
	if req.Reason == "" {
		v.Add("reason", "reason is required")
	} else if utf8.RuneCountInString(req.Reason) > s.cfg.ReasonMaxLength {
		v.Add("reason", fmt.Sprintf("reason must be at most %d characters", s.cfg.ReasonMaxLength))
	}

	switch {
	case req.Guest != nil:
		g := *req.Guest
		g.Name = strings.TrimSpace(g.Name)
		g.Phone = NormalizePhone(g.Phone)
		req.Guest = &g
		if req.PatientID != nil {
			v.Add("patientId", "send either patientId or guestInfo, not both")
		}
		if g.Name == "" {
			v.Add("guestInfo.name", "name is required")
		}
		if !phonePattern.MatchString(g.Phone) {
			v.Add("guestInfo.phone", "phone must be 9 to 15 digits, optionally prefixed by +")
		}
		if !g.Gender.Valid() {
			v.Add("guestInfo.gender", "gender must be male, female or other")
		}
	case req.Caller.Role == RolePatient:
		if req.Caller.ID == uuid.Nil {
			v.Add("patientId", "caller has no patient identity")
		}
	case req.Caller.IsStaff():
		if req.PatientID == nil {
			v.Add("patientId", "staff bookings need a patientId or guestInfo")
		}
	default:
		v.Add("guestInfo", "guestInfo is required for unauthenticated bookings")
	}

	return v.Err()
}

// resolveReferences checks the doctor, specialty and service ids and fills in
// the specialty from the service when only the service was given.
func (s *Service) resolveReferences(ctx context.Context, req *BookingRequest) error {
	doctor, err := s.roster.GetDoctor(ctx, req.DoctorID)
	if err != nil {
		return lookupErr("load doctor", err)
	}
	if !doctor.Active {
		return roster.ErrDoctorNotFound
	}

	if req.ServiceID != nil {
		svc, err := s.roster.GetService(ctx, *req.ServiceID)
		if err != nil {
			return lookupErr("load service", err)
		}
		if req.SpecialtyID == nil {
			id := svc.SpecialtyID
			req.SpecialtyID = &id
		} else if *req.SpecialtyID != svc.SpecialtyID {
			return apperr.Validation("service_specialty_mismatch", "service does not belong to the specialty")
		}
	}

	if req.SpecialtyID != nil {
		if _, err := s.roster.GetSpecialty(ctx, *req.SpecialtyID); err != nil {
			return lookupErr("load specialty", err)
		}
		if !doctor.InSpecialty(req.SpecialtyID) {
			return apperr.Validation("doctor_specialty_mismatch", "doctor does not practise the specialty")
		}
	}

	return nil
}

func (s *Service) resolvePatientID(ctx context.Context, req BookingRequest) (*uuid.UUID, error) {
	if req.Guest != nil {
		return nil, nil
	}
	id := req.Caller.ID
	if req.Caller.IsStaff() {
		id = *req.PatientID
	}
	if _, err := s.repo.GetPatient(ctx, id); err != nil {
		return nil, lookupErr("load patient", err)
	}
	return &id, nil
}

// Book reserves [Start, End) of the doctor's day for a patient. At most one
// blocking appointment can hold any minute of a doctor's day: concurrent
// attempts on overlapping windows are turned away with ErrSlotUnavailable by
// the per-grain lock, the in-transaction re-check, or the store's exclusion
// constraint, whichever sees the race first.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*Appointment, error) {
	if err := s.validateBooking(&req); err != nil {
		return nil, err
	}
	if err := s.resolveReferences(ctx, &req); err != nil {
		return nil, err
	}
	patientID, err := s.resolvePatientID(ctx, req)
	if err != nil {
		return nil, err
	}

	iv := req.interval()
	keys := make([]string, 0, iv.Minutes()/s.cfg.SlotGrain)
	for _, g := range iv.Grains(s.cfg.SlotGrain) {
		keys = append(keys, redisclient.SlotKey(req.DoctorID, req.Date.String(), g.String()))
	}

	var created *Appointment
	err = s.locker.WithSlotLock(ctx, keys, func(lockCtx context.Context) error {
		return s.repo.InTx(lockCtx, func(txCtx context.Context, tx BookingTx) error {
			shifts, err := tx.ActiveShifts(txCtx, req.DoctorID, req.Date)
			if err != nil {
				return fmt.Errorf("load shifts: %w", err)
			}
			if !iv.ContainedByAny(shift.Intervals(shifts)) {
				return ErrOutsideShift
			}

			blocking, err := tx.BlockingAppointments(txCtx, req.DoctorID, req.Date)
			if err != nil {
				return fmt.Errorf("load appointments: %w", err)
			}
			if iv.OverlapsAny(BlockingIntervals(blocking)) {
				return ErrSlotUnavailable
			}

			pid := patientID
			if req.Guest != nil {
				p, err := tx.UpsertGuestPatient(txCtx, *req.Guest)
				if err != nil {
					return fmt.Errorf("upsert guest patient: %w", err)
				}
				pid = &p.ID
			}

			appt, err := tx.InsertAppointment(txCtx, NewPending(req.DoctorID, *pid, req, s.now()), req.Caller)
			if err != nil {
				return err
			}
			created = appt
			return nil
		})
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			err = ErrSlotUnavailable.Wrap(err)
		}
		if apperr.KindOf(err) == apperr.KindConflict {
			s.logger.Info().
				Str("doctor_id", req.DoctorID.String()).
				Str("date", req.Date.String()).
				Str("slot", iv.String()).
				Err(err).
				Msg("booking rejected")
			return nil, err
		}
		return nil, fmt.Errorf("book appointment: %w", err)
	}

	s.logger.Info().
		Str("appointment_id", created.ID.String()).
		Str("doctor_id", created.DoctorID.String()).
		Str("date", created.Date.String()).
		Str("slot", iv.String()).
		Msg("appointment booked")

	return created, nil
}

// lookupErr passes NotFound sentinels through and wraps everything else.
func lookupErr(op string, err error) error {
	if apperr.KindOf(err) == apperr.KindNotFound {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
