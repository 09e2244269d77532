package shift

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-shift-scheduling/internal/apperr"
	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

var ErrShiftNotFound = apperr.NotFound("shift_not_found", "shift not found")

// DoctorShift is one bookable block for one doctor on one date. Rows are
// keyed by (DoctorID, Date, Start) and only ever toggle Active.
type DoctorShift struct {
	DoctorID  uuid.UUID          `json:"doctorId"`
	Date      timeslot.Date      `json:"date"`
	Start     timeslot.TimeOfDay `json:"startTime"`
	End       timeslot.TimeOfDay `json:"endTime"`
	Active    bool               `json:"active"`
	CreatedAt time.Time          `json:"createdAt"`
}

func (s DoctorShift) Interval() timeslot.Interval {
	return timeslot.Interval{Start: s.Start, End: s.End}
}

// Intervals returns the windows of the active shifts in ss, sorted.
func Intervals(ss []DoctorShift) []timeslot.Interval {
	out := make([]timeslot.Interval, 0, len(ss))
	for _, s := range ss {
		if s.Active {
			out = append(out, s.Interval())
		}
	}
	timeslot.SortIntervals(out)
	return out
}
