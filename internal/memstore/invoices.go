package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-shift-scheduling/internal/appointment"
	"github.com/hackgods/clinic-shift-scheduling/internal/revenue"
	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

// PutInvoice stores inv as-is.
func (s *Store) PutInvoice(inv revenue.Invoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices[inv.ID] = inv
}

func (s *Store) InvoicesBetween(_ context.Context, from, to timeslot.Date) ([]revenue.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []revenue.Invoice
	for _, inv := range s.invoices {
		day := timeslot.DateOf(inv.CreatedAt)
		if inv.PaidOn != nil {
			day = *inv.PaidOn
		}
		if day.Before(from) || day.After(to) {
			continue
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) AppointmentStatus(_ context.Context, appointmentID uuid.UUID) (appointment.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.appointments[appointmentID]
	if !ok {
		return 0, revenue.ErrAppointmentNotFound
	}
	return a.Status, nil
}

func (s *Store) InsertInvoice(_ context.Context, inv revenue.Invoice) (*revenue.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.appointments[inv.AppointmentID]; !ok {
		return nil, revenue.ErrAppointmentNotFound
	}
	for _, existing := range s.invoices {
		if existing.AppointmentID == inv.AppointmentID {
			return nil, revenue.ErrInvoiceExists
		}
	}
	s.invoices[inv.ID] = inv
	return &inv, nil
}

func (s *Store) MarkPaid(_ context.Context, id uuid.UUID, paidOn timeslot.Date) (*revenue.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[id]
	if !ok {
		return nil, revenue.ErrInvoiceNotFound
	}
	if inv.Status == revenue.InvoicePaid {
		return nil, revenue.ErrInvoiceAlreadyPaid
	}
	inv.Status = revenue.InvoicePaid
	inv.PaidOn = &paidOn
	s.invoices[id] = inv
	return &inv, nil
}
