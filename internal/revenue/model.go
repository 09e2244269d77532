// Package revenue records which appointment produced which invoice and sums
// paid invoices into date-bucketed revenue figures.
package revenue

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hackgods/clinic-shift-scheduling/internal/apperr"
	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

type InvoiceStatus string

const (
	InvoiceUnpaid InvoiceStatus = "unpaid"
	InvoicePaid   InvoiceStatus = "paid"
)

var (
	ErrInvoiceNotFound     = apperr.NotFound("invoice_not_found", "invoice not found")
	ErrInvoiceExists       = apperr.Conflict("invoice_exists", "appointment already has an invoice")
	ErrAppointmentNotDone  = apperr.Conflict("appointment_not_completed", "only completed appointments can be invoiced")
	ErrInvoiceAlreadyPaid  = apperr.Conflict("invoice_already_paid", "invoice is already paid")
	ErrAppointmentNotFound = apperr.NotFound("appointment_not_found", "appointment not found")
)

type Invoice struct {
	ID            uuid.UUID       `json:"id"`
	AppointmentID uuid.UUID       `json:"appointmentId"`
	ServiceAmount decimal.Decimal `json:"serviceAmount"`
	ExtraAmount   decimal.Decimal `json:"extraAmount"`
	Status        InvoiceStatus   `json:"status"`
	PaidOn        *timeslot.Date  `json:"paidOn,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func (i Invoice) Total() decimal.Decimal { return i.ServiceAmount.Add(i.ExtraAmount) }

// Summary is the revenue of paid invoices over an inclusive date range.
type Summary struct {
	From           timeslot.Date   `json:"from"`
	To             timeslot.Date   `json:"to"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	ServiceRevenue decimal.Decimal `json:"serviceRevenue"`
	ExtraRevenue   decimal.Decimal `json:"extraRevenue"`
	InvoiceCount   int             `json:"invoiceCount"`
}

// DailyRevenue is one bucket of ByDate.
type DailyRevenue struct {
	Date  timeslot.Date   `json:"date"`
	Total decimal.Decimal `json:"total"`
}
