package revenue

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/hackgods/clinic-shift-scheduling/internal/apperr"
	"github.com/hackgods/clinic-shift-scheduling/internal/appointment"
	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

type Aggregator struct {
	repo   Repository
	now    func() time.Time
	logger zerolog.Logger
}

func NewAggregator(repo Repository, logger zerolog.Logger) *Aggregator {
	return &Aggregator{repo: repo, now: time.Now, logger: logger}
}

func validateRange(from, to timeslot.Date) error {
	var v apperr.ValidationError
	if from.IsZero() {
		v.Add("from", "from is required")
	}
	if to.IsZero() {
		v.Add("to", "to is required")
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		v.Add("from", "from must not be after to")
	}
	return v.Err()
}

// paidIn filters invoices down to the paid ones whose payment date is in [from, to].
func paidIn(invoices []Invoice, from, to timeslot.Date) []Invoice {
	var out []Invoice
	for _, inv := range invoices {
		if inv.Status != InvoicePaid || inv.PaidOn == nil {
			continue
		}
		if inv.PaidOn.Before(from) || inv.PaidOn.After(to) {
			continue
		}
		out = append(out, inv)
	}
	return out
}

// Summary sums the paid invoices of the inclusive range [from, to].
func (a *Aggregator) Summary(ctx context.Context, from, to timeslot.Date) (*Summary, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	invoices, err := a.repo.InvoicesBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load invoices: %w", err)
	}

	s := &Summary{
		From:           from,
		To:             to,
		TotalRevenue:   decimal.Zero,
		ServiceRevenue: decimal.Zero,
		ExtraRevenue:   decimal.Zero,
	}
	for _, inv := range paidIn(invoices, from, to) {
		s.ServiceRevenue = s.ServiceRevenue.Add(inv.ServiceAmount)
		s.ExtraRevenue = s.ExtraRevenue.Add(inv.ExtraAmount)
		s.InvoiceCount++
	}
	s.TotalRevenue = s.ServiceRevenue.Add(s.ExtraRevenue)
	return s, nil
}

// ByDate buckets the paid invoices of [from, to] by payment date, ascending.
// Days without a paid invoice are omitted.
func (a *Aggregator) ByDate(ctx context.Context, from, to timeslot.Date) ([]DailyRevenue, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	invoices, err := a.repo.InvoicesBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load invoices: %w", err)
	}

	totals := make(map[timeslot.Date]decimal.Decimal)
	for _, inv := range paidIn(invoices, from, to) {
		totals[*inv.PaidOn] = totals[*inv.PaidOn].Add(inv.Total())
	}

	out := make([]DailyRevenue, 0, len(totals))
	for d, total := range totals {
		out = append(out, DailyRevenue{Date: d, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// RecordInvoice attaches an unpaid invoice to a completed appointment.
func (a *Aggregator) RecordInvoice(ctx context.Context, appointmentID uuid.UUID, serviceAmount, extraAmount decimal.Decimal) (*Invoice, error) {
	var v apperr.ValidationError
	if serviceAmount.IsNegative() {
		v.Add("serviceAmount", "serviceAmount must not be negative")
	}
	if extraAmount.IsNegative() {
		v.Add("extraAmount", "extraAmount must not be negative")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	status, err := a.repo.AppointmentStatus(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment status: %w", err)
	}
	if status != appointment.StatusCompleted {
		return nil, ErrAppointmentNotDone
	}

	inv, err := a.repo.InsertInvoice(ctx, Invoice{
		ID:            uuid.New(),
		AppointmentID: appointmentID,
		ServiceAmount: serviceAmount,
		ExtraAmount:   extraAmount,
		Status:        InvoiceUnpaid,
		CreatedAt:     a.now(),
	})
	if err != nil {
		if errors.Is(err, ErrInvoiceExists) {
			return nil, err
		}
		return nil, fmt.Errorf("insert invoice: %w", err)
	}

	a.logger.Info().
		Str("invoice_id", inv.ID.String()).
		Str("appointment_id", appointmentID.String()).
		Str("total", inv.Total().String()).
		Msg("invoice recorded")

	return inv, nil
}

func (a *Aggregator) MarkPaid(ctx context.Context, id uuid.UUID, paidOn timeslot.Date) (*Invoice, error) {
	if paidOn.IsZero() {
		var v apperr.ValidationError
		v.Add("paidOn", "paidOn is required")
		return nil, v.Err()
	}

	inv, err := a.repo.MarkPaid(ctx, id, paidOn)
	if err != nil {
		if apperr.KindOf(err) != apperr.KindInternal {
			return nil, err
		}
		return nil, fmt.Errorf("mark invoice paid: %w", err)
	}
	return inv, nil
}
