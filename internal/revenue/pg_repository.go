package revenue

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/hackgods/clinic-shift-scheduling/internal/appointment"
	"github.com/hackgods/clinic-shift-scheduling/internal/db"
	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// amounts travel as text so no precision is lost on the way to decimal
const invoiceColumns = `id, appointment_id, service_amount::text, extra_amount::text, status, paid_on, created_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var (
		inv                  Invoice
		serviceRaw, extraRaw string
		status               string
		paidOn               pgtype.Date
	)
	err := row.Scan(&inv.ID, &inv.AppointmentID, &serviceRaw, &extraRaw, &status, &paidOn, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}

	if inv.ServiceAmount, err = decimal.NewFromString(serviceRaw); err != nil {
		return nil, fmt.Errorf("parse service amount: %w", err)
	}
	if inv.ExtraAmount, err = decimal.NewFromString(extraRaw); err != nil {
		return nil, fmt.Errorf("parse extra amount: %w", err)
	}
	inv.Status = InvoiceStatus(status)
	if paidOn.Valid {
		d := db.ToDate(paidOn)
		inv.PaidOn = &d
	}
	return &inv, nil
}

func (r *PgRepository) InvoicesBetween(ctx context.Context, from, to timeslot.Date) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE COALESCE(paid_on, created_at::date) BETWEEN $1 AND $2
		ORDER BY COALESCE(paid_on, created_at::date), created_at
	`, db.Date(from), db.Date(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

func (r *PgRepository) AppointmentStatus(ctx context.Context, appointmentID uuid.UUID) (appointment.Status, error) {
	var status appointment.Status
	err := r.pool.QueryRow(ctx, `SELECT status FROM appointments WHERE id = $1`, appointmentID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrAppointmentNotFound
		}
		return 0, err
	}
	return status, nil
}

func (r *PgRepository) InsertInvoice(ctx context.Context, inv Invoice) (*Invoice, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO invoices (id, appointment_id, service_amount, extra_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3::numeric, $4::numeric, $5, $6, $6)
		RETURNING `+invoiceColumns,
		inv.ID, inv.AppointmentID, inv.ServiceAmount.String(), inv.ExtraAmount.String(), string(inv.Status), inv.CreatedAt)

	created, err := scanInvoice(row)
	if err != nil {
		if db.IsPgError(err, db.CodeUniqueViolation) {
			return nil, ErrInvoiceExists.Wrap(err)
		}
		if db.IsPgError(err, db.CodeForeignKey) {
			return nil, ErrAppointmentNotFound.Wrap(err)
		}
		return nil, err
	}
	return created, nil
}

func (r *PgRepository) MarkPaid(ctx context.Context, id uuid.UUID, paidOn timeslot.Date) (*Invoice, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE invoices
		SET status = 'paid', paid_on = $2, updated_at = now()
		WHERE id = $1 AND status = 'unpaid'
		RETURNING `+invoiceColumns,
		id, db.Date(paidOn))

	inv, err := scanInvoice(row)
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, ErrInvoiceNotFound) {
		return nil, err
	}

	// nothing updated: either unknown or already paid
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrInvoiceAlreadyPaid
	}
	return nil, ErrInvoiceNotFound
}
