package availability

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

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

func (r *PgRepository) Snapshot(ctx context.Context, date timeslot.Date, doctorIDs []uuid.UUID) (*Snapshot, error) {
	snap := NewSnapshot(date)
	if len(doctorIDs) == 0 {
		return snap, nil
	}

	// both reads see the same database state
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback(ctx)

	shiftRows, err := tx.Query(ctx, `
		SELECT doctor_id, start_time, end_time
		FROM doctor_shifts
		WHERE shift_date = $1 AND active AND doctor_id = ANY($2)
		ORDER BY doctor_id, start_time
	`, db.Date(date), doctorIDs)
	if err != nil {
		return nil, fmt.Errorf("query shifts: %w", err)
	}
	if err := collectIntervals(shiftRows, snap.Shifts); err != nil {
		return nil, fmt.Errorf("scan shifts: %w", err)
	}

	blocking := make([]int16, len(appointment.BlockingStatuses))
	for i, s := range appointment.BlockingStatuses {
		blocking[i] = int16(s)
	}

	apptRows, err := tx.Query(ctx, `
		SELECT doctor_id, start_time, end_time
		FROM appointments
		WHERE appointment_date = $1 AND doctor_id = ANY($2) AND status = ANY($3)
		ORDER BY doctor_id, start_time
	`, db.Date(date), doctorIDs, blocking)
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	if err := collectIntervals(apptRows, snap.Busy); err != nil {
		return nil, fmt.Errorf("scan appointments: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit snapshot tx: %w", err)
	}
	return snap, nil
}

func collectIntervals(rows pgx.Rows, into map[uuid.UUID][]timeslot.Interval) error {
	defer rows.Close()

	for rows.Next() {
		var (
			doctorID   uuid.UUID
			start, end pgtype.Time
		)
		if err := rows.Scan(&doctorID, &start, &end); err != nil {
			return err
		}
		into[doctorID] = append(into[doctorID], timeslot.Interval{
			Start: db.ToTimeOfDay(start),
			End:   db.ToTimeOfDay(end),
		})
	}
	return rows.Err()
}
