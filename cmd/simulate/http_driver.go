package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/clinic-shift-scheduling/internal/api"
	"github.com/hackgods/clinic-shift-scheduling/internal/appointment"
	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

type httpDriver struct {
	baseURL string
	secret  []byte
	client  *http.Client
	staffID uuid.UUID

	mu     sync.Mutex
	tokens map[uuid.UUID]string
}

func newHTTPDriver(baseURL string, secret []byte) *httpDriver {
	return &httpDriver{
		baseURL: baseURL,
		secret:  secret,
		client:  &http.Client{Timeout: 10 * time.Second},
		staffID: uuid.New(),
		tokens:  make(map[uuid.UUID]string),
	}
}

// token mints and caches a bearer token for id.
func (d *httpDriver) token(id uuid.UUID, role appointment.Role) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.tokens[id]; ok {
		return t, nil
	}
	claims := api.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: string(role),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(d.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	d.tokens[id] = signed
	return signed, nil
}

func (d *httpDriver) do(ctx context.Context, method, path string, actor uuid.UUID, role appointment.Role, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, d.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if actor != uuid.Nil {
		t, err := d.token(actor, role)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+t)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		return errConflict
	case resp.StatusCode >= 300:
		var e api.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, e.Error)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (d *httpDriver) Slots(ctx context.Context, doctorID uuid.UUID, date timeslot.Date) ([]timeslot.Interval, error) {
	var resp api.SlotsResponse
	path := fmt.Sprintf("/slots?doctorId=%s&date=%s", doctorID, date)
	if err := d.do(ctx, http.MethodGet, path, uuid.Nil, "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.AvailableSlots, nil
}

func (d *httpDriver) Book(ctx context.Context, patientID, doctorID uuid.UUID, date timeslot.Date, slot timeslot.Interval) (uuid.UUID, error) {
	body := api.CreateAppointmentRequest{
		DoctorID:  doctorID,
		Date:      date,
		StartTime: slot.Start,
		EndTime:   slot.End,
		Reason:    "simulated visit",
	}
	var resp api.AppointmentResponse
	if err := d.do(ctx, http.MethodPost, "/appointments", patientID, appointment.RolePatient, body, &resp); err != nil {
		return uuid.Nil, err
	}
	return resp.Appointment.ID, nil
}

func (d *httpDriver) Confirm(ctx context.Context, id uuid.UUID) error {
	to := appointment.StatusConfirmed
	body := api.UpdateStatusRequest{ToStatus: &to}
	return d.do(ctx, http.MethodPatch, "/appointments/"+id.String()+"/status", d.staffID, appointment.RoleStaff, body, nil)
}

func (d *httpDriver) Cancel(ctx context.Context, patientID, id uuid.UUID) error {
	body := api.CancelAppointmentRequest{Reason: "simulated change of plans"}
	return d.do(ctx, http.MethodPatch, "/appointments/"+id.String()+"/cancel", patientID, appointment.RolePatient, body, nil)
}

func (d *httpDriver) Get(ctx context.Context, id uuid.UUID) error {
	return d.do(ctx, http.MethodGet, "/appointments/"+id.String(), d.staffID, appointment.RoleStaff, nil, nil)
}

// loadPopulation reads the doctors and patients the workers pick from.
func loadPopulation(ctx context.Context, pool *pgxpool.Pool, doctorLimit, patientLimit int) (*population, error) {
	pop := &population{}

	doctors, err := queryIDs(ctx, pool, `SELECT id FROM doctors WHERE active ORDER BY id LIMIT $1`, doctorLimit)
	if err != nil {
		return nil, fmt.Errorf("load doctors: %w", err)
	}
	patients, err := queryIDs(ctx, pool, `SELECT id FROM patients ORDER BY id LIMIT $1`, patientLimit)
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	pop.Doctors = doctors
	pop.Patients = patients

	if len(pop.Doctors) == 0 {
		return nil, fmt.Errorf("no active doctors loaded")
	}
	if len(pop.Patients) == 0 {
		return nil, fmt.Errorf("no patients loaded")
	}
	return pop, nil
}

func queryIDs(ctx context.Context, pool *pgxpool.Pool, sql string, limit int) ([]uuid.UUID, error) {
	rows, err := pool.Query(ctx, sql, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
