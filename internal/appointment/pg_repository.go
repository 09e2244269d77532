package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/clinic-shift-scheduling/internal/db"
	"github.com/hackgods/clinic-shift-scheduling/internal/shift"
	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const appointmentColumns = `id, doctor_id, patient_id, specialty_id, service_id, appointment_date,
	start_time, end_time, reason, status, cancellation_reason, created_at, updated_at`

// Helpers

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		a          Appointment
		date       pgtype.Date
		start, end pgtype.Time
	)

	err := row.Scan(
		&a.ID,
		&a.DoctorID,
		&a.PatientID,
		&a.SpecialtyID,
		&a.ServiceID,
		&date,
		&start,
		&end,
		&a.Reason,
		&a.Status,
		&a.CancellationReason,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.Date = db.ToDate(date)
	a.Start = db.ToTimeOfDay(start)
	a.End = db.ToTimeOfDay(end)
	return &a, nil
}

func scanAppointments(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Phone,
		&p.Gender,
		&p.Email,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return &p, nil
}

func blockingCodes() []int16 {
	codes := make([]int16, len(BlockingStatuses))
	for i, s := range BlockingStatuses {
		codes[i] = int16(s)
	}
	return codes
}

// Interface methods

func (r *PgRepository) InTx(ctx context.Context, fn func(ctx context.Context, tx BookingTx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin booking tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &pgBookingTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		if db.IsPgError(err, db.CodeExclusionViolation) {
			return ErrSlotUnavailable.Wrap(err)
		}
		return fmt.Errorf("commit booking tx: %w", err)
	}
	return nil
}

func (r *PgRepository) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, phone, gender, email, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) ListForPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE patient_id = $1
		ORDER BY appointment_date DESC, start_time DESC
		LIMIT $2 OFFSET $3
	`, patientID, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanAppointments(rows)
}

func (r *PgRepository) ListForDoctorDay(ctx context.Context, doctorID uuid.UUID, date timeslot.Date) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_id = $1 AND appointment_date = $2
		ORDER BY start_time, created_at
	`, doctorID, db.Date(date))
	if err != nil {
		return nil, err
	}
	return scanAppointments(rows)
}

func (r *PgRepository) ListEvents(ctx context.Context, appointmentID uuid.UUID) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, appointment_id, from_status, to_status, reason, actor_id, COALESCE(actor_role, ''), created_at
		FROM appointment_events
		WHERE appointment_id = $1
		ORDER BY id
	`, appointmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.ID, &ev.AppointmentID, &ev.From, &ev.To, &ev.Reason, &ev.ActorID, &ev.ActorRole, &ev.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, cancellationReason *string, actor Actor) (*Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin status tx: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		UPDATE appointments
		SET status = $3,
		    cancellation_reason = COALESCE($4, cancellation_reason),
		    updated_at = now()
		WHERE id = $1
		  AND status = $2
		RETURNING `+appointmentColumns,
		id, from, to, cancellationReason)

	updated, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// the row exists (it was loaded before) but moved on
			return nil, ErrStaleStatus
		}
		return nil, err
	}

	if err := insertEvent(ctx, tx, id, &from, to, cancellationReason, actor); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit status tx: %w", err)
	}
	return updated, nil
}

func insertEvent(ctx context.Context, tx pgx.Tx, appointmentID uuid.UUID, from *Status, to Status, reason *string, actor Actor) error {
	var actorID *uuid.UUID
	if actor.ID != uuid.Nil {
		actorID = &actor.ID
	}
	var actorRole *string
	if actor.Role != "" {
		role := string(actor.Role)
		actorRole = &role
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO appointment_events (appointment_id, from_status, to_status, reason, actor_id, actor_role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
	`, appointmentID, from, to, reason, actorID, actorRole)
	if err != nil {
		return fmt.Errorf("insert appointment event: %w", err)
	}
	return nil
}

type pgBookingTx struct {
	tx pgx.Tx
}

func (t *pgBookingTx) ActiveShifts(ctx context.Context, doctorID uuid.UUID, date timeslot.Date) ([]shift.DoctorShift, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT doctor_id, shift_date, start_time, end_time, active, created_at
		FROM doctor_shifts
		WHERE doctor_id = $1 AND shift_date = $2 AND active
		ORDER BY start_time
	`, doctorID, db.Date(date))
	if err != nil {
		return nil, err
	}
	return shift.ScanShifts(rows)
}

func (t *pgBookingTx) BlockingAppointments(ctx context.Context, doctorID uuid.UUID, date timeslot.Date) ([]Appointment, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_id = $1 AND appointment_date = $2 AND status = ANY($3)
		ORDER BY start_time
	`, doctorID, db.Date(date), blockingCodes())
	if err != nil {
		return nil, err
	}
	return scanAppointments(rows)
}

func (t *pgBookingTx) UpsertGuestPatient(ctx context.Context, guest GuestInfo) (*Patient, error) {
	gender := string(guest.Gender)
	row := t.tx.QueryRow(ctx, `
		INSERT INTO patients (id, name, phone, gender, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		ON CONFLICT (phone) DO UPDATE SET updated_at = now()
		RETURNING id, name, phone, gender, email, created_at, updated_at
	`, uuid.New(), guest.Name, guest.Phone, &gender, guest.Email)
	return scanPatient(row)
}

func (t *pgBookingTx) InsertAppointment(ctx context.Context, a Appointment, actor Actor) (*Appointment, error) {
	row := t.tx.QueryRow(ctx, `
		INSERT INTO appointments (`+appointmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULL, $11, $11)
		RETURNING `+appointmentColumns,
		a.ID, a.DoctorID, a.PatientID, a.SpecialtyID, a.ServiceID, db.Date(a.Date),
		db.Time(a.Start), db.Time(a.End), a.Reason, a.Status, a.CreatedAt)

	created, err := scanAppointment(row)
	if err != nil {
		if db.IsPgError(err, db.CodeExclusionViolation) {
			return nil, ErrSlotUnavailable.Wrap(err)
		}
		return nil, fmt.Errorf("insert appointment: %w", err)
	}

	if err := insertEvent(ctx, t.tx, created.ID, nil, created.Status, nil, actor); err != nil {
		return nil, err
	}
	return created, nil
}
