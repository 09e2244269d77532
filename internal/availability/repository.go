package availability

import (
	"context"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

// Repository reads the state availability is computed from.
type Repository interface {
	// Snapshot returns the active shifts and blocking appointments of
	// doctorIDs on date, read at a single point in time.
	Snapshot(ctx context.Context, date timeslot.Date, doctorIDs []uuid.UUID) (*Snapshot, error)
}
