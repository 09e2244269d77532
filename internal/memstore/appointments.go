package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-shift-scheduling/internal/appointment"
	"github.com/hackgods/clinic-shift-scheduling/internal/shift"
	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

// InTx runs fn with the store locked. Writes made through tx become visible
// only when fn returns nil and ctx is still live.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx appointment.BookingTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &bookingTx{store: s}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, p := range tx.patients {
		s.patients[p.ID] = p
		s.phones[p.Phone] = p.ID
	}
	for _, a := range tx.appointments {
		s.appointments[a.ID] = a
	}
	for _, ev := range tx.events {
		s.appendEvent(ev)
	}
	return nil
}

func (s *Store) appendEvent(ev appointment.Event) {
	s.eventSeq++
	ev.ID = s.eventSeq
	s.events[ev.AppointmentID] = append(s.events[ev.AppointmentID], ev)
}

func (s *Store) GetAppointment(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	return &a, nil
}

func (s *Store) GetPatient(_ context.Context, id uuid.UUID) (*appointment.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patients[id]
	if !ok {
		return nil, appointment.ErrPatientNotFound
	}
	return &p, nil
}

func (s *Store) ListForPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]appointment.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []appointment.Appointment
	for _, a := range s.appointments {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Start > out[j].Start
	})
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListForDoctorDay(_ context.Context, doctorID uuid.UUID, date timeslot.Date) ([]appointment.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []appointment.Appointment
	for _, a := range s.appointments {
		if a.DoctorID == doctorID && a.Date == date {
			out = append(out, a)
		}
	}
	sortAppointments(out)
	return out, nil
}

func (s *Store) ListEvents(_ context.Context, appointmentID uuid.UUID) ([]appointment.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]appointment.Event(nil), s.events[appointmentID]...), nil
}

func (s *Store) UpdateStatus(_ context.Context, id uuid.UUID, from, to appointment.Status, cancellationReason *string, actor appointment.Actor) (*appointment.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	if a.Status != from {
		return nil, appointment.ErrStaleStatus
	}

	a.Status = to
	if cancellationReason != nil {
		a.CancellationReason = cancellationReason
	}
	a.UpdatedAt = time.Now()
	s.appointments[id] = a
	s.appendEvent(newEvent(id, &from, to, cancellationReason, actor))
	return &a, nil
}

func newEvent(appointmentID uuid.UUID, from *appointment.Status, to appointment.Status, reason *string, actor appointment.Actor) appointment.Event {
	ev := appointment.Event{
		AppointmentID: appointmentID,
		From:          from,
		To:            to,
		Reason:        reason,
		ActorRole:     string(actor.Role),
		CreatedAt:     time.Now(),
	}
	if actor.ID != uuid.Nil {
		id := actor.ID
		ev.ActorID = &id
	}
	return ev
}

// bookingTx reads the committed maps directly; the store lock is held by InTx.
type bookingTx struct {
	store        *Store
	patients     []appointment.Patient
	appointments []appointment.Appointment
	events       []appointment.Event
}

func (t *bookingTx) ActiveShifts(_ context.Context, doctorID uuid.UUID, date timeslot.Date) ([]shift.DoctorShift, error) {
	var out []shift.DoctorShift
	for _, sh := range t.store.shifts {
		if sh.DoctorID == doctorID && sh.Date == date && sh.Active {
			out = append(out, sh)
		}
	}
	return out, nil
}

func (t *bookingTx) BlockingAppointments(_ context.Context, doctorID uuid.UUID, date timeslot.Date) ([]appointment.Appointment, error) {
	var out []appointment.Appointment
	for _, a := range t.visibleAppointments() {
		if a.DoctorID == doctorID && a.Date == date && a.Status.Blocking() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (t *bookingTx) visibleAppointments() []appointment.Appointment {
	out := make([]appointment.Appointment, 0, len(t.store.appointments)+len(t.appointments))
	for _, a := range t.store.appointments {
		out = append(out, a)
	}
	return append(out, t.appointments...)
}

func (t *bookingTx) UpsertGuestPatient(_ context.Context, guest appointment.GuestInfo) (*appointment.Patient, error) {
	if id, ok := t.store.phones[guest.Phone]; ok {
		p := t.store.patients[id]
		return &p, nil
	}
	for _, p := range t.patients {
		if p.Phone == guest.Phone {
			return &p, nil
		}
	}

	gender := string(guest.Gender)
	now := time.Now()
	p := appointment.Patient{
		ID:        uuid.New(),
		Name:      guest.Name,
		Phone:     guest.Phone,
		Gender:    &gender,
		Email:     guest.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.patients = append(t.patients, p)
	return &p, nil
}

// InsertAppointment enforces the same range exclusion as the SQL schema.
func (t *bookingTx) InsertAppointment(_ context.Context, a appointment.Appointment, actor appointment.Actor) (*appointment.Appointment, error) {
	if a.Status.Blocking() {
		for _, other := range t.visibleAppointments() {
			if other.DoctorID == a.DoctorID && other.Date == a.Date && other.Status.Blocking() && other.Interval().Overlaps(a.Interval()) {
				return nil, appointment.ErrSlotUnavailable
			}
		}
	}
	t.appointments = append(t.appointments, a)
	t.events = append(t.events, newEvent(a.ID, nil, a.Status, nil, actor))
	return &a, nil
}
