package api

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-shift-scheduling/internal/apperr"
	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

// params collects every malformed query or path parameter of a request
// before failing it.
type params struct {
	v apperr.ValidationError
}

func (p *params) uuid(field, raw string) uuid.UUID {
	if raw == "" {
		p.v.Add(field, field+" is required")
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		p.v.Add(field, field+" must be a valid UUID")
	}
	return id
}

func (p *params) optionalUUID(field, raw string) *uuid.UUID {
	if raw == "" {
		return nil
	}
	id := p.uuid(field, raw)
	return &id
}

func (p *params) date(field, raw string) timeslot.Date {
	if raw == "" {
		p.v.Add(field, field+" is required")
		return timeslot.Date{}
	}
	d, err := timeslot.ParseDate(raw)
	if err != nil {
		p.v.Add(field, field+" must be formatted as YYYY-MM-DD")
	}
	return d
}

func (p *params) timeOfDay(field, raw string) timeslot.TimeOfDay {
	if raw == "" {
		p.v.Add(field, field+" is required")
		return 0
	}
	t, err := timeslot.ParseTimeOfDay(raw)
	if err != nil {
		p.v.Add(field, field+" must be formatted as HH:mm")
	}
	return t
}

func (p *params) intValue(field, raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.v.Add(field, field+" must be an integer")
	}
	return n
}

func (p *params) err() error { return p.v.Err() }
