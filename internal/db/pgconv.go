package db

import (
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

func Date(d timeslot.Date) pgtype.Date {
	return pgtype.Date{Time: d.Time(), Valid: true}
}

func Time(t timeslot.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: t.Microseconds(), Valid: true}
}

func ToDate(d pgtype.Date) timeslot.Date {
	return timeslot.DateOf(d.Time)
}

func ToTimeOfDay(t pgtype.Time) timeslot.TimeOfDay {
	return timeslot.FromMicroseconds(t.Microseconds)
}
