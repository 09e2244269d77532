package appointment_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-shift-scheduling/internal/apperr"
	"github.com/hackgods/clinic-shift-scheduling/internal/appointment"
	"github.com/hackgods/clinic-shift-scheduling/internal/config"
)

func TestLifecycleToCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt, err := f.svc.Book(ctx, f.request(t, "09:00", "09:30"))
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	nurse := staff()
	path := []appointment.Status{
		appointment.StatusConfirmed,
		appointment.StatusCheckedIn,
		appointment.StatusInProgress,
		appointment.StatusCompleted,
	}
	for _, to := range path {
		updated, err := f.svc.Transition(ctx, appt.ID, to, nurse, "")
		if err != nil {
			t.Fatalf("transition to %s: %v", to, err)
		}
		if updated.Status != to {
			t.Fatalf("expected %s, got %s", to, updated.Status)
		}
	}

	// completed appointments cannot be cancelled
	_, err = f.svc.Cancel(ctx, appt.ID, nurse, "changed mind")
	if !errors.Is(err, appointment.ErrInvalidTransition) || apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected invalid transition conflict, got %v", err)
	}

	events, err := f.svc.History(ctx, appt.ID, nurse)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(events) != 1+len(path) {
		t.Fatalf("expected %d events, got %d", 1+len(path), len(events))
	}
	last := events[len(events)-1]
	if last.From == nil || *last.From != appointment.StatusInProgress || last.To != appointment.StatusCompleted {
		t.Errorf("unexpected last event %+v", last)
	}
}

func TestCancelFreesSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt, err := f.svc.Book(ctx, f.request(t, "10:00", "10:30"))
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := f.svc.Book(ctx, f.request(t, "10:00", "10:30")); !errors.Is(err, appointment.ErrSlotUnavailable) {
		t.Fatalf("expected slot unavailable, got %v", err)
	}

	owner := appointment.Actor{ID: f.patient.ID, Role: appointment.RolePatient}
	if _, err := f.svc.Cancel(ctx, appt.ID, owner, ""); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("cancel without reason must be a validation error, got %v", err)
	}

	cancelled, err := f.svc.Cancel(ctx, appt.ID, owner, "patient unavailable")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.CancellationReason == nil || *cancelled.CancellationReason != "patient unavailable" {
		t.Errorf("cancellation reason not stored: %+v", cancelled.CancellationReason)
	}

	if _, err := f.svc.Book(ctx, f.request(t, "10:00", "10:30")); err != nil {
		t.Fatalf("slot should be free again, got %v", err)
	}
}

func TestPatientsOnlyTouchTheirOwnAppointments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt, err := f.svc.Book(ctx, f.request(t, "09:00", "09:30"))
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	stranger := appointment.Actor{ID: f.other.ID, Role: appointment.RolePatient}
	if _, err := f.svc.Get(ctx, appt.ID, stranger); !errors.Is(err, appointment.ErrAppointmentNotFound) {
		t.Errorf("another patient's appointment must look missing, got %v", err)
	}
	if _, err := f.svc.Cancel(ctx, appt.ID, stranger, "nope"); !errors.Is(err, appointment.ErrAppointmentNotFound) {
		t.Errorf("another patient cannot cancel, got %v", err)
	}

	owner := appointment.Actor{ID: f.patient.ID, Role: appointment.RolePatient}
	if _, err := f.svc.Transition(ctx, appt.ID, appointment.StatusConfirmed, owner, ""); !errors.Is(err, appointment.ErrInvalidTransition) {
		t.Errorf("patients cannot confirm, got %v", err)
	}

	if _, err := f.svc.Get(ctx, uuid.New(), staff()); !errors.Is(err, appointment.ErrAppointmentNotFound) {
		t.Errorf("expected not found for unknown id, got %v", err)
	}
}

// staleRepo reports a status that has already moved on in the store.
type staleRepo struct {
	appointment.Repository
	reported appointment.Status
}

func (r staleRepo) GetAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	a, err := r.Repository.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Status = r.reported
	return a, nil
}

func TestTransitionLosesCompareAndSet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// The store says Cancelled; the service read Confirmed a moment earlier.
	appt := f.putAppointment(t, "09:00", "09:30", appointment.StatusCancelled)
	repo := staleRepo{Repository: f.store, reported: appointment.StatusConfirmed}
	svc := appointment.NewService(repo, f.store, passLocker{}, config.DefaultScheduling(), zerolog.Nop())

	_, err := svc.Transition(ctx, appt.ID, appointment.StatusCheckedIn, staff(), "")
	if !errors.Is(err, appointment.ErrConcurrentTransition) {
		t.Fatalf("expected concurrent transition conflict, got %v", err)
	}

	got, _ := f.store.GetAppointment(ctx, appt.ID)
	if got.Status != appointment.StatusCancelled {
		t.Errorf("persisted status must be untouched, got %s", got.Status)
	}
}

func TestListForPatientAndDoctorDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, w := range [][2]string{{"08:00", "08:30"}, {"09:00", "09:30"}, {"10:00", "11:00"}} {
		if _, err := f.svc.Book(ctx, f.request(t, w[0], w[1])); err != nil {
			t.Fatalf("book %v: %v", w, err)
		}
	}

	mine, err := f.svc.ListForPatient(ctx, f.patient.ID, 2, 0)
	if err != nil {
		t.Fatalf("list for patient: %v", err)
	}
	if len(mine) != 2 || mine[0].Start != mustTime(t, "10:00") {
		t.Errorf("expected newest-first page of 2, got %+v", mine)
	}

	day, err := f.svc.ListForDoctorDay(ctx, f.doctor.ID, f.date)
	if err != nil {
		t.Fatalf("list for doctor day: %v", err)
	}
	if len(day) != 3 || day[0].Start != mustTime(t, "08:00") {
		t.Errorf("expected 3 appointments ordered by start, got %+v", day)
	}

	if _, err := f.svc.ListForDoctorDay(ctx, uuid.New(), f.date); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("unknown doctor must be not found, got %v", err)
	}
}
