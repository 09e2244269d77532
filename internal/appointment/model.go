package appointment

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

// Status codes are persisted as-is; do not renumber.
type Status int16

const (
	StatusPending Status = iota
	StatusConfirmed
	StatusCheckedIn
	StatusInProgress
	StatusCompleted
	StatusCancelled
	StatusNoShow
)

var statusNames = [...]string{
	StatusPending:    "pending",
	StatusConfirmed:  "confirmed",
	StatusCheckedIn:  "checked_in",
	StatusInProgress: "in_progress",
	StatusCompleted:  "completed",
	StatusCancelled:  "cancelled",
	StatusNoShow:     "no_show",
}

// BlockingStatuses occupy their time window; every other status frees it.
var BlockingStatuses = []Status{StatusPending, StatusConfirmed, StatusCheckedIn, StatusInProgress}

func (s Status) Valid() bool { return s >= StatusPending && s <= StatusNoShow }

func (s Status) String() string {
	if !s.Valid() {
		return "unknown(" + strconv.Itoa(int(s)) + ")"
	}
	return statusNames[s]
}

func (s Status) Blocking() bool {
	return s >= StatusPending && s <= StatusInProgress
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// ParseStatus accepts a status name ("checked_in", "checked-in") or its numeric code.
func ParseStatus(raw string) (Status, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if n, err := strconv.Atoi(raw); err == nil {
		if s := Status(n); s.Valid() {
			return s, nil
		}
		return 0, fmt.Errorf("unknown status %q", raw)
	}
	raw = strings.ReplaceAll(raw, "-", "_")
	for i, name := range statusNames {
		if name == raw {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", raw)
}

func (s Status) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *Status) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		parsed, err := ParseStatus(strconv.Itoa(n))
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("status must be a name or a number")
	}
	parsed, err := ParseStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

// GuestInfo is the patient snapshot captured by an unauthenticated booking.
type GuestInfo struct {
	Name   string  `json:"name"`
	Phone  string  `json:"phone"`
	Gender Gender  `json:"gender"`
	Email  *string `json:"email,omitempty"`
}

type Patient struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Gender    *string   `json:"gender,omitempty"`
	Email     *string   `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Appointment struct {
	ID                 uuid.UUID          `json:"id"`
	DoctorID           uuid.UUID          `json:"doctorId"`
	PatientID          uuid.UUID          `json:"patientId"`
	SpecialtyID        *uuid.UUID         `json:"specialtyId,omitempty"`
	ServiceID          *uuid.UUID         `json:"serviceId,omitempty"`
	Date               timeslot.Date      `json:"date"`
	Start              timeslot.TimeOfDay `json:"startTime"`
	End                timeslot.TimeOfDay `json:"endTime"`
	Reason             string             `json:"reason"`
	Status             Status             `json:"status"`
	CancellationReason *string            `json:"cancellationReason,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

func (a Appointment) Interval() timeslot.Interval {
	return timeslot.Interval{Start: a.Start, End: a.End}
}

// Event is one entry of an appointment's status history.
type Event struct {
	ID            int64      `json:"id"`
	AppointmentID uuid.UUID  `json:"appointmentId"`
	From          *Status    `json:"fromStatus,omitempty"`
	To            Status     `json:"toStatus"`
	Reason        *string    `json:"reason,omitempty"`
	ActorID       *uuid.UUID `json:"actorId,omitempty"`
	ActorRole     string     `json:"actorRole,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// BlockingIntervals returns the windows occupied by the blocking appointments in as.
func BlockingIntervals(as []Appointment) []timeslot.Interval {
	out := make([]timeslot.Interval, 0, len(as))
	for _, a := range as {
		if a.Status.Blocking() {
			out = append(out, a.Interval())
		}
	}
	timeslot.SortIntervals(out)
	return out
}
