package shift

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/clinic-shift-scheduling/internal/db"
	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const shiftColumns = `doctor_id, shift_date, start_time, end_time, active, created_at`

func scanShift(row pgx.Row) (*DoctorShift, error) {
	var (
		s          DoctorShift
		date       pgtype.Date
		start, end pgtype.Time
	)
	err := row.Scan(&s.DoctorID, &date, &start, &end, &s.Active, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}
	s.Date = db.ToDate(date)
	s.Start = db.ToTimeOfDay(start)
	s.End = db.ToTimeOfDay(end)
	return &s, nil
}

// ScanShifts drains rows of shiftColumns; shared with stores that read shifts
// inside their own transactions.
func ScanShifts(rows pgx.Rows) ([]DoctorShift, error) {
	defer rows.Close()

	var out []DoctorShift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *PgRepository) InsertIfAbsent(ctx context.Context, s DoctorShift) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO doctor_shifts (doctor_id, shift_date, start_time, end_time, active, created_at)
		VALUES ($1, $2, $3, $4, true, now())
		ON CONFLICT DO NOTHING
	`, s.DoctorID, db.Date(s.Date), db.Time(s.Start), db.Time(s.End))
	if err != nil {
		return false, fmt.Errorf("insert shift: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PgRepository) SetActive(ctx context.Context, doctorID uuid.UUID, date timeslot.Date, start timeslot.TimeOfDay, active bool) (*DoctorShift, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE doctor_shifts
		SET active = $4
		WHERE doctor_id = $1 AND shift_date = $2 AND start_time = $3
		RETURNING `+shiftColumns,
		doctorID, db.Date(date), db.Time(start), active)
	return scanShift(row)
}

func (r *PgRepository) ListForDoctor(ctx context.Context, doctorID uuid.UUID, from, to timeslot.Date) ([]DoctorShift, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+shiftColumns+`
		FROM doctor_shifts
		WHERE doctor_id = $1 AND shift_date BETWEEN $2 AND $3
		ORDER BY shift_date, start_time
	`, doctorID, db.Date(from), db.Date(to))
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	return ScanShifts(rows)
}
