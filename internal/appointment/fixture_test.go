package appointment_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-shift-scheduling/internal/appointment"
	"github.com/hackgods/clinic-shift-scheduling/internal/config"
	"github.com/hackgods/clinic-shift-scheduling/internal/memstore"
	redisclient "github.com/hackgods/clinic-shift-scheduling/internal/redis"
	"github.com/hackgods/clinic-shift-scheduling/internal/roster"
	"github.com/hackgods/clinic-shift-scheduling/internal/shift"
	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

// Sunday 2025-06-01 10:00 UTC; the booking day is the following Monday.
var fixedNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store     *memstore.Store
	svc       *appointment.Service
	doctor    roster.Doctor
	specialty roster.Specialty
	service   roster.Service
	patient   appointment.Patient
	other     appointment.Patient
	date      timeslot.Date
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithLocker(t, redisclient.NewLocalSlotLocker())
}

func newFixtureWithLocker(t *testing.T, locker redisclient.Locker) *fixture {
	t.Helper()

	store := memstore.New()
	f := &fixture{
		store:     store,
		specialty: roster.Specialty{ID: uuid.New(), Name: "Cardiology"},
		date:      timeslot.NewDate(2025, 6, 2),
	}
	f.service = roster.Service{ID: uuid.New(), SpecialtyID: f.specialty.ID, Name: "ECG"}
	f.doctor = roster.Doctor{ID: uuid.New(), Name: "Dr. D", SpecialtyID: &f.specialty.ID, Active: true}
	f.patient = appointment.Patient{ID: uuid.New(), Name: "Pat", Phone: "0901234567"}
	f.other = appointment.Patient{ID: uuid.New(), Name: "Other", Phone: "0907654321"}

	store.PutSpecialty(f.specialty)
	store.PutService(f.service)
	store.PutDoctor(f.doctor)
	store.PutPatient(f.patient)
	store.PutPatient(f.other)
	f.addShift(t, f.date, "08:00", "12:00")

	f.svc = appointment.NewService(store, store, locker, config.DefaultScheduling(), zerolog.Nop()).
		WithClock(func() time.Time { return fixedNow })
	return f
}

func (f *fixture) addShift(t *testing.T, date timeslot.Date, start, end string) {
	t.Helper()
	_, err := f.store.InsertIfAbsent(context.Background(), shift.DoctorShift{
		DoctorID: f.doctor.ID,
		Date:     date,
		Start:    mustTime(t, start),
		End:      mustTime(t, end),
	})
	if err != nil {
		t.Fatalf("insert shift: %v", err)
	}
}

// putAppointment stores an appointment directly, skipping booking checks.
func (f *fixture) putAppointment(t *testing.T, start, end string, status appointment.Status) appointment.Appointment {
	t.Helper()
	a := appointment.Appointment{
		ID:        uuid.New(),
		DoctorID:  f.doctor.ID,
		PatientID: f.patient.ID,
		Date:      f.date,
		Start:     mustTime(t, start),
		End:       mustTime(t, end),
		Reason:    "checkup",
		Status:    status,
		CreatedAt: fixedNow,
		UpdatedAt: fixedNow,
	}
	f.store.PutAppointment(a)
	return a
}

func (f *fixture) request(t *testing.T, start, end string) appointment.BookingRequest {
	t.Helper()
	return appointment.BookingRequest{
		DoctorID: f.doctor.ID,
		Date:     f.date,
		Start:    mustTime(t, start),
		End:      mustTime(t, end),
		Reason:   "chest pain",
		Caller:   appointment.Actor{ID: f.patient.ID, Role: appointment.RolePatient},
	}
}

func mustTime(t *testing.T, s string) timeslot.TimeOfDay {
	t.Helper()
	v, err := timeslot.ParseTimeOfDay(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return v
}

func staff() appointment.Actor {
	return appointment.Actor{ID: uuid.New(), Role: appointment.RoleStaff}
}
