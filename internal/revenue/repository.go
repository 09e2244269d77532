package revenue

import (
	"context"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-shift-scheduling/internal/appointment"
	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

type Repository interface {
	// InvoicesBetween returns invoices paid, or for unpaid ones created,
	// within [from, to].
	InvoicesBetween(ctx context.Context, from, to timeslot.Date) ([]Invoice, error)
	// AppointmentStatus returns the persisted status of an appointment.
	AppointmentStatus(ctx context.Context, appointmentID uuid.UUID) (appointment.Status, error)
	// InsertInvoice stores inv. A second invoice for the same appointment
	// surfaces as ErrInvoiceExists.
	InsertInvoice(ctx context.Context, inv Invoice) (*Invoice, error)
	// MarkPaid flips an unpaid invoice to paid.
	MarkPaid(ctx context.Context, id uuid.UUID, paidOn timeslot.Date) (*Invoice, error)
}
