// Package availability turns a doctor's shifts and blocking appointments into
// bookable windows.
package availability

import (
	"github.com/google/uuid"

	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

// Snapshot is one consistent read of a day: the active shifts and the
// blocking appointment windows of every requested doctor.
type Snapshot struct {
	Date   timeslot.Date
	Shifts map[uuid.UUID][]timeslot.Interval
	Busy   map[uuid.UUID][]timeslot.Interval
}

func NewSnapshot(date timeslot.Date) *Snapshot {
	return &Snapshot{
		Date:   date,
		Shifts: make(map[uuid.UUID][]timeslot.Interval),
		Busy:   make(map[uuid.UUID][]timeslot.Interval),
	}
}

// FreeSlots cuts every shift into windows of duration minutes, starting at the
// shift start, and drops the windows that start before notBefore or intersect
// a busy window. The result is ordered by start time.
func FreeSlots(shifts, busy []timeslot.Interval, duration int, notBefore timeslot.TimeOfDay) []timeslot.Interval {
	ordered := append([]timeslot.Interval(nil), shifts...)
	timeslot.SortIntervals(ordered)

	out := []timeslot.Interval{}
	for _, sh := range ordered {
		for _, candidate := range sh.Split(duration) {
			if candidate.Start < notBefore {
				continue
			}
			if candidate.OverlapsAny(busy) {
				continue
			}
			out = append(out, candidate)
		}
	}
	return out
}

// Fits reports whether target lies inside one shift and clear of every busy window.
func Fits(target timeslot.Interval, shifts, busy []timeslot.Interval) bool {
	return target.ContainedByAny(shifts) && !target.OverlapsAny(busy)
}
