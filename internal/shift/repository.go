package shift

import (
	"context"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-shift-scheduling/internal/roster"
	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

// Repository is the ShiftStore.
type Repository interface {
	// InsertIfAbsent stores s unless the doctor already has a shift that
	// starts at the same time or overlaps it. It reports whether a row was
	// written.
	InsertIfAbsent(ctx context.Context, s DoctorShift) (bool, error)
	SetActive(ctx context.Context, doctorID uuid.UUID, date timeslot.Date, start timeslot.TimeOfDay, active bool) (*DoctorShift, error)
	ListForDoctor(ctx context.Context, doctorID uuid.UUID, from, to timeslot.Date) ([]DoctorShift, error)
}

// Roster is the part of the doctor roster the generator needs.
type Roster interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*roster.Doctor, error)
	ListActiveDoctors(ctx context.Context, specialtyID *uuid.UUID) ([]roster.Doctor, error)
}
