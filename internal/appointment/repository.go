package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-shift-scheduling/internal/apperr"
	"github.com/hackgods/clinic-shift-scheduling/internal/shift"
	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

var (
	ErrPatientNotFound     = apperr.NotFound("patient_not_found", "patient not found")
	ErrAppointmentNotFound = apperr.NotFound("appointment_not_found", "appointment not found")
	// ErrStaleStatus is returned by UpdateStatus when the persisted status no
	// longer matches the expected one.
	ErrStaleStatus = apperr.Conflict("stale_status", "appointment status no longer matches")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	// InTx runs fn in a single all-or-nothing unit of work.
	InTx(ctx context.Context, fn func(ctx context.Context, tx BookingTx) error) error

	GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error)
	ListForPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error)
	ListForDoctorDay(ctx context.Context, doctorID uuid.UUID, date timeslot.Date) ([]Appointment, error)
	ListEvents(ctx context.Context, appointmentID uuid.UUID) ([]Event, error)

	// UpdateStatus moves the appointment from -> to only if its persisted
	// status is still from, and records the event in the same transaction.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, cancellationReason *string, actor Actor) (*Appointment, error)
}

// BookingTx is the view of the store inside a booking transaction.
type BookingTx interface {
	ActiveShifts(ctx context.Context, doctorID uuid.UUID, date timeslot.Date) ([]shift.DoctorShift, error)
	BlockingAppointments(ctx context.Context, doctorID uuid.UUID, date timeslot.Date) ([]Appointment, error)
	// UpsertGuestPatient returns the patient registered under guest.Phone,
	// creating it when absent.
	UpsertGuestPatient(ctx context.Context, guest GuestInfo) (*Patient, error)
	// InsertAppointment persists a and its creation event. An overlapping
	// blocking appointment surfaces as ErrSlotUnavailable.
	InsertAppointment(ctx context.Context, a Appointment, actor Actor) (*Appointment, error)
}
