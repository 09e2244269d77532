package appointment

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-shift-scheduling/internal/apperr"
)

type Role string

const (
	RolePatient Role = "patient"
	RoleStaff   Role = "staff"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
	RoleGuest   Role = "guest"
)

// Actor is the authenticated caller behind a request.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a Actor) IsStaff() bool {
	return a.Role == RoleStaff || a.Role == RoleDoctor || a.Role == RoleAdmin
}

var (
	ErrInvalidTransition    = apperr.Conflict("invalid_status_transition", "invalid status transition")
	ErrCancellationReason   = apperr.Validation("cancellation_reason_required", "a cancellation reason is required")
	ErrConcurrentTransition = apperr.Conflict("concurrent_transition", "appointment status changed concurrently, reload and retry")
)

type transitionRule struct {
	staffOnly    bool
	reasonNeeded bool
}

// transitions lists every permitted move. Terminal statuses have no entry.
var transitions = map[Status]map[Status]transitionRule{
	StatusPending: {
		StatusConfirmed: {staffOnly: true},
		StatusCancelled: {reasonNeeded: true},
	},
	StatusConfirmed: {
		StatusCheckedIn: {staffOnly: true},
		StatusNoShow:    {staffOnly: true},
		StatusCancelled: {reasonNeeded: true},
	},
	StatusCheckedIn: {
		StatusInProgress: {staffOnly: true},
	},
	StatusInProgress: {
		StatusCompleted: {staffOnly: true},
	},
}

// CanTransition validates from→to for actor. reason is only consulted for
// transitions that require one.
func CanTransition(from, to Status, actor Actor, reason string) error {
	rule, ok := transitions[from][to]
	if !ok {
		return ErrInvalidTransition.Wrap(&transitionError{from: from, to: to})
	}
	if rule.staffOnly && !actor.IsStaff() {
		return ErrInvalidTransition.Wrap(&transitionError{from: from, to: to, staffOnly: true})
	}
	if rule.reasonNeeded && strings.TrimSpace(reason) == "" {
		return ErrCancellationReason
	}
	return nil
}

// NextStatuses lists the statuses actor may move an appointment in from to.
func NextStatuses(from Status, actor Actor) []Status {
	var out []Status
	for to := StatusPending; to <= StatusNoShow; to++ {
		rule, ok := transitions[from][to]
		if !ok || (rule.staffOnly && !actor.IsStaff()) {
			continue
		}
		out = append(out, to)
	}
	return out
}

type transitionError struct {
	from, to  Status
	staffOnly bool
}

func (e *transitionError) Error() string {
	if e.staffOnly {
		return e.from.String() + " -> " + e.to.String() + " is a staff action"
	}
	return e.from.String() + " -> " + e.to.String()
}

// NewPending is the only constructor of a fresh appointment.
func NewPending(doctorID, patientID uuid.UUID, req BookingRequest, now time.Time) Appointment {
	return Appointment{
		ID:          uuid.New(),
		DoctorID:    doctorID,
		PatientID:   patientID,
		SpecialtyID: req.SpecialtyID,
		ServiceID:   req.ServiceID,
		Date:        req.Date,
		Start:       req.Start,
		End:         req.End,
		Reason:      strings.TrimSpace(req.Reason),
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
