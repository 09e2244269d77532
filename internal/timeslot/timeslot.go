// Package timeslot holds the calendar primitives the scheduler reasons about:
// civil dates, zero-padded wall-clock times and half-open intra-day intervals.
//
// Times are minutes since midnight, never strings, so ordering is numeric and a
// slot can never wrap past midnight.
package timeslot

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

const (
	dateLayout    = "2006-01-02"
	minutesPerDay = 24 * 60
)

var (
	ErrInvalidDate     = errors.New("date must be formatted as YYYY-MM-DD")
	ErrInvalidTime     = errors.New("time must be formatted as zero-padded HH:mm")
	ErrInvalidInterval = errors.New("end time must be after start time")
)

// Date is a calendar day without a time zone.
type Date struct {
	year  int
	month time.Month
	day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

// Today returns the current calendar day as seen by a clock in loc.
func Today(now time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(now.In(loc))
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return DateOf(t), nil
}

func (d Date) IsZero() bool { return d == Date{} }

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// At returns the instant the wall clock in loc reads t on day d.
func (d Date) At(t TimeOfDay, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.year, d.month, d.day, t.Hour(), t.Minute(), 0, 0, loc)
}

func (d Date) AddDays(n int) Date { return DateOf(d.Time().AddDate(0, 0, n)) }

func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }

func (d Date) Before(o Date) bool { return d.Time().Before(o.Time()) }

func (d Date) After(o Date) bool { return d.Time().After(o.Time()) }

func (d Date) String() string { return d.Time().Format(dateLayout) }

func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return ErrInvalidDate
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TimeOfDay is a wall-clock time expressed in minutes since midnight.
type TimeOfDay int

func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, ErrInvalidTime
	}
	return TimeOfDay(hour*60 + minute), nil
}

// MustTimeOfDay is NewTimeOfDay for literals known to be valid.
func MustTimeOfDay(hour, minute int) TimeOfDay {
	t, err := NewTimeOfDay(hour, minute)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTimeOfDay accepts strictly "HH:mm" with both fields zero-padded.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, ErrInvalidTime
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, ErrInvalidTime
		}
	}
	hour := int(s[0]-'0')*10 + int(s[1]-'0')
	minute := int(s[3]-'0')*10 + int(s[4]-'0')
	return NewTimeOfDay(hour, minute)
}

// ClockOf returns the wall-clock time of t in its own location, truncated to the minute.
func ClockOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

// FromMicroseconds converts a Postgres time value (microseconds since midnight).
func FromMicroseconds(us int64) TimeOfDay {
	return TimeOfDay(us / int64(time.Minute/time.Microsecond))
}

func (t TimeOfDay) Microseconds() int64 {
	return int64(t) * int64(time.Minute/time.Microsecond)
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) Add(minutes int) TimeOfDay { return t + TimeOfDay(minutes) }

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute()) }

func (t TimeOfDay) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return ErrInvalidTime
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Interval is the half-open window [Start, End) within one day.
type Interval struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

func NewInterval(start, end TimeOfDay) (Interval, error) {
	if start < 0 || end > minutesPerDay || end <= start {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{Start: start, End: end}, nil
}

func (iv Interval) Minutes() int { return int(iv.End - iv.Start) }

// Overlaps reports whether the two windows share at least one minute.
// Touching endpoints do not overlap.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start < o.End && o.Start < iv.End
}

// Contains reports whether o lies entirely inside iv.
func (iv Interval) Contains(o Interval) bool {
	return iv.Start <= o.Start && o.End <= iv.End
}

// AlignedTo reports whether both endpoints fall on a grain boundary.
func (iv Interval) AlignedTo(grain int) bool {
	if grain <= 0 {
		return false
	}
	return int(iv.Start)%grain == 0 && int(iv.End)%grain == 0
}

// Split cuts iv into consecutive windows of the given length starting at
// iv.Start. A trailing remainder shorter than length is dropped.
func (iv Interval) Split(length int) []Interval {
	if length <= 0 {
		return nil
	}
	var out []Interval
	for s := iv.Start; s.Add(length) <= iv.End; s = s.Add(length) {
		out = append(out, Interval{Start: s, End: s.Add(length)})
	}
	return out
}

// Grains lists the grain boundaries covered by iv, used as lock keys.
func (iv Interval) Grains(grain int) []TimeOfDay {
	if grain <= 0 {
		return nil
	}
	first := iv.Start - iv.Start%TimeOfDay(grain)
	var out []TimeOfDay
	for g := first; g < iv.End; g = g.Add(grain) {
		out = append(out, g)
	}
	return out
}

func (iv Interval) String() string { return iv.Start.String() + "-" + iv.End.String() }

// OverlapsAny reports whether iv intersects any of others.
func (iv Interval) OverlapsAny(others []Interval) bool {
	for _, o := range others {
		if iv.Overlaps(o) {
			return true
		}
	}
	return false
}

// ContainedByAny reports whether iv lies entirely inside one of others.
func (iv Interval) ContainedByAny(others []Interval) bool {
	for _, o := range others {
		if o.Contains(iv) {
			return true
		}
	}
	return false
}

func SortIntervals(ivs []Interval) {
	sort.Slice(ivs, func(i, j int) bool {
		if ivs[i].Start != ivs[j].Start {
			return ivs[i].Start < ivs[j].Start
		}
		return ivs[i].End < ivs[j].End
	})
}
