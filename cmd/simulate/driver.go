package main

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-shift-scheduling/internal/apperr"
	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

// errConflict marks a request the server turned away with 409.
var errConflict = errors.New("conflict")

func isConflict(err error) bool {
	return errors.Is(err, errConflict) || apperr.KindOf(err) == apperr.KindConflict
}

// driver is the surface the workers exercise, either over HTTP against a
// running api-server or in process against the memory store.
type driver interface {
	Slots(ctx context.Context, doctorID uuid.UUID, date timeslot.Date) ([]timeslot.Interval, error)
	Book(ctx context.Context, patientID, doctorID uuid.UUID, date timeslot.Date, slot timeslot.Interval) (uuid.UUID, error)
	Confirm(ctx context.Context, id uuid.UUID) error
	Cancel(ctx context.Context, patientID, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) error
}
