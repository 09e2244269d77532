package appointment_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-shift-scheduling/internal/appointment"
)

func TestCanTransition(t *testing.T) {
	patient := appointment.Actor{ID: uuid.New(), Role: appointment.RolePatient}
	nurse := staff()

	allowed := map[[2]appointment.Status]bool{
		{appointment.StatusPending, appointment.StatusConfirmed}:    true,
		{appointment.StatusPending, appointment.StatusCancelled}:    true,
		{appointment.StatusConfirmed, appointment.StatusCheckedIn}:  true,
		{appointment.StatusConfirmed, appointment.StatusNoShow}:     true,
		{appointment.StatusConfirmed, appointment.StatusCancelled}:  true,
		{appointment.StatusCheckedIn, appointment.StatusInProgress}: true,
		{appointment.StatusInProgress, appointment.StatusCompleted}: true,
	}

	for from := appointment.StatusPending; from <= appointment.StatusNoShow; from++ {
		for to := appointment.StatusPending; to <= appointment.StatusNoShow; to++ {
			err := appointment.CanTransition(from, to, nurse, "patient unavailable")
			if allowed[[2]appointment.Status{from, to}] {
				if err != nil {
					t.Errorf("%s -> %s should be allowed for staff: %v", from, to, err)
				}
				continue
			}
			if !errors.Is(err, appointment.ErrInvalidTransition) {
				t.Errorf("%s -> %s should be invalid, got %v", from, to, err)
			}
		}
	}

	if err := appointment.CanTransition(appointment.StatusPending, appointment.StatusCancelled, patient, "sick"); err != nil {
		t.Errorf("patients may cancel: %v", err)
	}
	if err := appointment.CanTransition(appointment.StatusPending, appointment.StatusConfirmed, patient, ""); !errors.Is(err, appointment.ErrInvalidTransition) {
		t.Errorf("confirming is a staff action, got %v", err)
	}
	if err := appointment.CanTransition(appointment.StatusConfirmed, appointment.StatusCancelled, nurse, " "); !errors.Is(err, appointment.ErrCancellationReason) {
		t.Errorf("cancelling needs a reason, got %v", err)
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	for _, s := range []appointment.Status{appointment.StatusCompleted, appointment.StatusCancelled, appointment.StatusNoShow} {
		if !s.Terminal() || s.Blocking() {
			t.Errorf("%s must be terminal and non-blocking", s)
		}
		if next := appointment.NextStatuses(s, staff()); len(next) != 0 {
			t.Errorf("%s must have no next statuses, got %v", s, next)
		}
	}
	for _, s := range appointment.BlockingStatuses {
		if s.Terminal() {
			t.Errorf("%s cannot be both blocking and terminal", s)
		}
	}
}

func TestParseStatus(t *testing.T) {
	tests := map[string]appointment.Status{
		"pending":     appointment.StatusPending,
		"Checked-In":  appointment.StatusCheckedIn,
		"in_progress": appointment.StatusInProgress,
		"6":           appointment.StatusNoShow,
	}
	for in, want := range tests {
		got, err := appointment.ParseStatus(in)
		if err != nil || got != want {
			t.Errorf("ParseStatus(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "7", "-1", "done"} {
		if _, err := appointment.ParseStatus(bad); err == nil {
			t.Errorf("ParseStatus(%q) should fail", bad)
		}
	}
}
