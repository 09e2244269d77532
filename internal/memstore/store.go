// Package memstore is an in-process implementation of every scheduling
// repository. It backs unit tests and the offline mode of the simulator.
// Transactions are serialized behind one mutex.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-shift-scheduling/internal/appointment"
	"github.com/hackgods/clinic-shift-scheduling/internal/availability"
	"github.com/hackgods/clinic-shift-scheduling/internal/revenue"
	"github.com/hackgods/clinic-shift-scheduling/internal/roster"
	"github.com/hackgods/clinic-shift-scheduling/internal/shift"
	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

type shiftKey struct {
	doctorID uuid.UUID
	date     timeslot.Date
	start    timeslot.TimeOfDay
}

type Store struct {
	mu sync.RWMutex

	doctors     map[uuid.UUID]roster.Doctor
	specialties map[uuid.UUID]roster.Specialty
	services    map[uuid.UUID]roster.Service

	patients     map[uuid.UUID]appointment.Patient
	phones       map[string]uuid.UUID
	shifts       map[shiftKey]shift.DoctorShift
	appointments map[uuid.UUID]appointment.Appointment
	events       map[uuid.UUID][]appointment.Event
	invoices     map[uuid.UUID]revenue.Invoice
	eventSeq     int64
}

func New() *Store {
	return &Store{
		doctors:      make(map[uuid.UUID]roster.Doctor),
		specialties:  make(map[uuid.UUID]roster.Specialty),
		services:     make(map[uuid.UUID]roster.Service),
		patients:     make(map[uuid.UUID]appointment.Patient),
		phones:       make(map[string]uuid.UUID),
		shifts:       make(map[shiftKey]shift.DoctorShift),
		appointments: make(map[uuid.UUID]appointment.Appointment),
		events:       make(map[uuid.UUID][]appointment.Event),
		invoices:     make(map[uuid.UUID]revenue.Invoice),
	}
}

var (
	_ roster.Repository       = (*Store)(nil)
	_ shift.Repository        = (*Store)(nil)
	_ appointment.Repository  = (*Store)(nil)
	_ availability.Repository = (*Store)(nil)
	_ revenue.Repository      = (*Store)(nil)
)

// Fixtures

func (s *Store) PutSpecialty(sp roster.Specialty) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.specialties[sp.ID] = sp
}

func (s *Store) PutService(svc roster.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[svc.ID] = svc
}

func (s *Store) PutDoctor(d roster.Doctor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doctors[d.ID] = d
}

func (s *Store) PutPatient(p appointment.Patient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patients[p.ID] = p
	s.phones[p.Phone] = p.ID
}

// PutAppointment stores a as-is, bypassing every booking check.
func (s *Store) PutAppointment(a appointment.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appointments[a.ID] = a
}

// Appointments returns a copy of every stored appointment, ordered by
// doctor, date and start time.
func (s *Store) Appointments() []appointment.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]appointment.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		out = append(out, a)
	}
	sortAppointments(out)
	return out
}

// Shifts returns every stored shift.
func (s *Store) Shifts() []shift.DoctorShift {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]shift.DoctorShift, 0, len(s.shifts))
	for _, sh := range s.shifts {
		out = append(out, sh)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.DoctorID != b.DoctorID {
			return a.DoctorID.String() < b.DoctorID.String()
		}
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		return a.Start < b.Start
	})
	return out
}

func sortAppointments(as []appointment.Appointment) {
	sort.Slice(as, func(i, j int) bool {
		a, b := as[i], as[j]
		if a.DoctorID != b.DoctorID {
			return a.DoctorID.String() < b.DoctorID.String()
		}
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

// Roster

func (s *Store) GetDoctor(_ context.Context, id uuid.UUID) (*roster.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.doctors[id]
	if !ok {
		return nil, roster.ErrDoctorNotFound
	}
	return &d, nil
}

func (s *Store) ListActiveDoctors(_ context.Context, specialtyID *uuid.UUID) ([]roster.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []roster.Doctor
	for _, d := range s.doctors {
		if d.Active && d.InSpecialty(specialtyID) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetSpecialty(_ context.Context, id uuid.UUID) (*roster.Specialty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sp, ok := s.specialties[id]
	if !ok {
		return nil, roster.ErrSpecialtyNotFound
	}
	return &sp, nil
}

func (s *Store) GetService(_ context.Context, id uuid.UUID) (*roster.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	svc, ok := s.services[id]
	if !ok {
		return nil, roster.ErrServiceNotFound
	}
	return &svc, nil
}

// Shifts

func (s *Store) InsertIfAbsent(_ context.Context, sh shift.DoctorShift) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := shiftKey{sh.DoctorID, sh.Date, sh.Start}
	if _, exists := s.shifts[key]; exists {
		return false, nil
	}
	for k, existing := range s.shifts {
		if k.doctorID == sh.DoctorID && k.date == sh.Date && existing.Interval().Overlaps(sh.Interval()) {
			return false, nil
		}
	}
	sh.Active = true
	if sh.CreatedAt.IsZero() {
		sh.CreatedAt = time.Now()
	}
	s.shifts[key] = sh
	return true, nil
}

func (s *Store) SetActive(_ context.Context, doctorID uuid.UUID, date timeslot.Date, start timeslot.TimeOfDay, active bool) (*shift.DoctorShift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := shiftKey{doctorID, date, start}
	sh, ok := s.shifts[key]
	if !ok {
		return nil, shift.ErrShiftNotFound
	}
	sh.Active = active
	s.shifts[key] = sh
	return &sh, nil
}

func (s *Store) ListForDoctor(_ context.Context, doctorID uuid.UUID, from, to timeslot.Date) ([]shift.DoctorShift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []shift.DoctorShift
	for _, sh := range s.shifts {
		if sh.DoctorID != doctorID || sh.Date.Before(from) || sh.Date.After(to) {
			continue
		}
		out = append(out, sh)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Start < out[j].Start
	})
	return out, nil
}

// Availability

func (s *Store) Snapshot(_ context.Context, date timeslot.Date, doctorIDs []uuid.UUID) (*availability.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[uuid.UUID]bool, len(doctorIDs))
	for _, id := range doctorIDs {
		wanted[id] = true
	}

	snap := availability.NewSnapshot(date)
	for _, sh := range s.shifts {
		if wanted[sh.DoctorID] && sh.Date == date && sh.Active {
			snap.Shifts[sh.DoctorID] = append(snap.Shifts[sh.DoctorID], sh.Interval())
		}
	}
	for _, a := range s.appointments {
		if wanted[a.DoctorID] && a.Date == date && a.Status.Blocking() {
			snap.Busy[a.DoctorID] = append(snap.Busy[a.DoctorID], a.Interval())
		}
	}
	for id := range snap.Shifts {
		timeslot.SortIntervals(snap.Shifts[id])
	}
	for id := range snap.Busy {
		timeslot.SortIntervals(snap.Busy[id])
	}
	return snap, nil
}
