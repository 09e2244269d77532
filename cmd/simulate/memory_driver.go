package main

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/hackgods/clinic-shift-scheduling/internal/appointment"
	"github.com/hackgods/clinic-shift-scheduling/internal/availability"
	"github.com/hackgods/clinic-shift-scheduling/internal/config"
	"github.com/hackgods/clinic-shift-scheduling/internal/memstore"
	redisclient "github.com/hackgods/clinic-shift-scheduling/internal/redis"
	"github.com/hackgods/clinic-shift-scheduling/internal/roster"
	"github.com/hackgods/clinic-shift-scheduling/internal/shift"
	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

// memoryDriver runs the real services against the in-memory store so the
// booking invariants can be hammered without Postgres or Redis.
type memoryDriver struct {
	store    *memstore.Store
	bookings *appointment.Service
	resolver *availability.Resolver
	staff    appointment.Actor
}

func newMemoryDriver(ctx context.Context, sched config.Scheduling, doctors, patients int, logger zerolog.Logger) (*memoryDriver, *population, error) {
	store := memstore.New()
	pop := &population{}

	specialties := make([]roster.Specialty, 0, 4)
	for _, name := range []string{"Cardiology", "Dermatology", "Pediatrics", "Neurology"} {
		sp := roster.Specialty{ID: uuid.New(), Name: name}
		store.PutSpecialty(sp)
		store.PutService(roster.Service{
			ID:          uuid.New(),
			SpecialtyID: sp.ID,
			Name:        name + " consultation",
			Price:       decimal.NewFromInt(int64(gofakeit.Number(10, 50)) * 10000),
		})
		specialties = append(specialties, sp)
	}

	for i := 0; i < doctors; i++ {
		sp := specialties[i%len(specialties)]
		d := roster.Doctor{ID: uuid.New(), Name: "Dr. " + gofakeit.Name(), SpecialtyID: &sp.ID, Active: true}
		store.PutDoctor(d)
		pop.Doctors = append(pop.Doctors, d.ID)
	}

	for i := 0; i < patients; i++ {
		p := appointment.Patient{ID: uuid.New(), Name: gofakeit.Name(), Phone: fmt.Sprintf("09%08d", i)}
		store.PutPatient(p)
		pop.Patients = append(pop.Patients, p.ID)
	}

	report, err := shift.NewGenerator(store, store, sched, logger).GenerateForAllDoctors(ctx, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("generate shifts: %w", err)
	}
	logger.Info().Int("shifts", report.Created).Int("doctors", report.Doctors).Msg("memory store populated")

	return &memoryDriver{
		store:    store,
		bookings: appointment.NewService(store, store, redisclient.NewLocalSlotLocker(), sched, logger),
		resolver: availability.NewResolver(store, store, sched, logger),
		staff:    appointment.Actor{ID: uuid.New(), Role: appointment.RoleStaff},
	}, pop, nil
}

func (d *memoryDriver) Slots(ctx context.Context, doctorID uuid.UUID, date timeslot.Date) ([]timeslot.Interval, error) {
	return d.resolver.SlotsForDoctor(ctx, doctorID, date, 0)
}

func (d *memoryDriver) Book(ctx context.Context, patientID, doctorID uuid.UUID, date timeslot.Date, slot timeslot.Interval) (uuid.UUID, error) {
	appt, err := d.bookings.Book(ctx, appointment.BookingRequest{
		DoctorID: doctorID,
		Date:     date,
		Start:    slot.Start,
		End:      slot.End,
		Reason:   "simulated visit",
		Caller:   appointment.Actor{ID: patientID, Role: appointment.RolePatient},
	})
	if err != nil {
		return uuid.Nil, err
	}
	return appt.ID, nil
}

func (d *memoryDriver) Confirm(ctx context.Context, id uuid.UUID) error {
	_, err := d.bookings.Transition(ctx, id, appointment.StatusConfirmed, d.staff, "")
	return err
}

func (d *memoryDriver) Cancel(ctx context.Context, patientID, id uuid.UUID) error {
	_, err := d.bookings.Cancel(ctx, id, appointment.Actor{ID: patientID, Role: appointment.RolePatient}, "simulated change of plans")
	return err
}

func (d *memoryDriver) Get(ctx context.Context, id uuid.UUID) error {
	_, err := d.bookings.Get(ctx, id, d.staff)
	return err
}

// overlaps counts pairs of blocking appointments that share a minute of the
// same doctor's day. Anything but zero is a double booking.
func (d *memoryDriver) overlaps() int {
	type day struct {
		doctor uuid.UUID
		date   timeslot.Date
	}
	byDay := make(map[day][]timeslot.Interval)
	for _, a := range d.store.Appointments() {
		if a.Status.Blocking() {
			k := day{a.DoctorID, a.Date}
			byDay[k] = append(byDay[k], a.Interval())
		}
	}

	count := 0
	for _, ivs := range byDay {
		for i := range ivs {
			for j := i + 1; j < len(ivs); j++ {
				if ivs[i].Overlaps(ivs[j]) {
					count++
				}
			}
		}
	}
	return count
}
