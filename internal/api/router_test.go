package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/hackgods/clinic-shift-scheduling/internal/appointment"
	"github.com/hackgods/clinic-shift-scheduling/internal/availability"
	"github.com/hackgods/clinic-shift-scheduling/internal/config"
	"github.com/hackgods/clinic-shift-scheduling/internal/memstore"
	redisclient "github.com/hackgods/clinic-shift-scheduling/internal/redis"
	"github.com/hackgods/clinic-shift-scheduling/internal/revenue"
	"github.com/hackgods/clinic-shift-scheduling/internal/roster"
	"github.com/hackgods/clinic-shift-scheduling/internal/shift"
	"github.com/hackgods/clinic-shift-scheduling/internal/timeslot"
)

var (
	testSecret = []byte("test-secret")
	// Sunday; bookings go to the Monday after.
	testNow  = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	testDate = timeslot.NewDate(2025, 6, 2)
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	store   *memstore.Store
	doctor  roster.Doctor
	patient appointment.Patient
	staffID uuid.UUID
}

func newTestServer(t *testing.T, health *HealthHandler) *testServer {
	t.Helper()

	store := memstore.New()
	specialty := roster.Specialty{ID: uuid.New(), Name: "Dermatology"}
	doctor := roster.Doctor{ID: uuid.New(), Name: "Dr. Lan", SpecialtyID: &specialty.ID, Active: true}
	patient := appointment.Patient{ID: uuid.New(), Name: "Minh", Phone: "0912345678"}
	store.PutSpecialty(specialty)
	store.PutDoctor(doctor)
	store.PutPatient(patient)

	_, err := store.InsertIfAbsent(context.Background(), shift.DoctorShift{
		DoctorID: doctor.ID,
		Date:     testDate,
		Start:    timeslot.MustTimeOfDay(8, 0),
		End:      timeslot.MustTimeOfDay(12, 0),
	})
	if err != nil {
		t.Fatalf("insert shift: %v", err)
	}

	cfg := config.DefaultScheduling()
	clock := func() time.Time { return testNow }
	logger := zerolog.Nop()

	handler := NewRouter(RouterConfig{
		Appointments: appointment.NewService(store, store, redisclient.NewLocalSlotLocker(), cfg, logger).WithClock(clock),
		Availability: availability.NewResolver(store, store, cfg, logger).WithClock(clock),
		Shifts:       shift.NewGenerator(store, store, cfg, logger).WithClock(clock),
		Revenue:      revenue.NewAggregator(store, logger),
		Health:       health,
		Logger:       logger,

		JWTSecret:           testSecret,
		GuestRateLimitRPS:   0.001,
		GuestRateLimitBurst: 2,
	})

	return &testServer{
		t:       t,
		handler: handler,
		store:   store,
		doctor:  doctor,
		patient: patient,
		staffID: uuid.New(),
	}
}

func token(t *testing.T, id uuid.UUID, role appointment.Role) string {
	t.Helper()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: string(role),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func (s *testServer) patientToken() string { return token(s.t, s.patient.ID, appointment.RolePatient) }
func (s *testServer) staffToken() string   { return token(s.t, s.staffID, appointment.RoleStaff) }

func (s *testServer) do(method, path, bearer string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func statusRequest(to appointment.Status) UpdateStatusRequest {
	return UpdateStatusRequest{ToStatus: &to}
}

func (s *testServer) bookingBody(start, end string) map[string]any {
	return map[string]any{
		"doctorId":  s.doctor.ID,
		"date":      testDate.String(),
		"startTime": start,
		"endTime":   end,
		"reason":    "rash",
	}
}

func TestListSlots(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodGet, "/slots?doctorId="+s.doctor.ID.String()+"&date="+testDate.String(), "", nil)
	expectStatus(t, rec, http.StatusOK)

	resp := decode[SlotsResponse](t, rec)
	if len(resp.AvailableSlots) != 8 {
		t.Fatalf("expected 8 slots, got %d", len(resp.AvailableSlots))
	}
	if resp.AvailableSlots[0].String() != "08:00-08:30" {
		t.Errorf("unexpected first slot %s", resp.AvailableSlots[0])
	}

	rec = s.do(http.MethodGet, "/slots?doctorId="+s.doctor.ID.String()+"&date="+testDate.String()+"&slotDurationMinutes=60", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if got := len(decode[SlotsResponse](t, rec).AvailableSlots); got != 4 {
		t.Errorf("expected 4 hour-long slots, got %d", got)
	}
}

func TestListSlotsRejectsBadParameters(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodGet, "/slots?date=2025-6-2", "", nil)
	expectStatus(t, rec, http.StatusBadRequest)

	resp := decode[ErrorResponse](t, rec)
	if resp.Error != "validation_failed" {
		t.Errorf("unexpected error code %q", resp.Error)
	}
	for _, field := range []string{"doctorId", "date"} {
		if _, ok := resp.Fields[field]; !ok {
			t.Errorf("expected field error for %s, got %v", field, resp.Fields)
		}
	}

	rec = s.do(http.MethodGet, "/slots?doctorId="+uuid.NewString()+"&date="+testDate.String(), "", nil)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestBookThenSlotDisappears(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodPost, "/appointments", s.patientToken(), s.bookingBody("09:00", "09:30"))
	expectStatus(t, rec, http.StatusCreated)

	created := decode[AppointmentResponse](t, rec)
	if created.Appointment.Status != appointment.StatusPending {
		t.Errorf("expected pending, got %s", created.Appointment.Status)
	}
	if created.Appointment.PatientID != s.patient.ID {
		t.Errorf("appointment booked for %s, want caller %s", created.Appointment.PatientID, s.patient.ID)
	}

	rec = s.do(http.MethodPost, "/appointments", s.staffToken(), map[string]any{
		"doctorId":  s.doctor.ID,
		"patientId": s.patient.ID,
		"date":      testDate.String(),
		"startTime": "08:30",
		"endTime":   "09:30",
		"reason":    "follow up",
	})
	expectStatus(t, rec, http.StatusConflict)
	if code := decode[ErrorResponse](t, rec).Error; code != "slot_unavailable" {
		t.Errorf("expected slot_unavailable, got %q", code)
	}

	rec = s.do(http.MethodGet, "/slots?doctorId="+s.doctor.ID.String()+"&date="+testDate.String(), "", nil)
	for _, slot := range decode[SlotsResponse](t, rec).AvailableSlots {
		if slot.Start == timeslot.MustTimeOfDay(9, 0) {
			t.Error("booked slot is still listed")
		}
	}
}

func TestBookRejectsMalformedBodies(t *testing.T) {
	s := newTestServer(t, nil)

	body := s.bookingBody("09:00", "09:30")
	body["color"] = "blue"
	rec := s.do(http.MethodPost, "/appointments", s.patientToken(), body)
	expectStatus(t, rec, http.StatusBadRequest)
	if code := decode[ErrorResponse](t, rec).Error; code != "invalid_request_body" {
		t.Errorf("expected invalid_request_body, got %q", code)
	}

	body = s.bookingBody("9:00", "09:30")
	rec = s.do(http.MethodPost, "/appointments", s.patientToken(), body)
	expectStatus(t, rec, http.StatusBadRequest)

	body = s.bookingBody("09:00", "09:30")
	body["reason"] = "   "
	rec = s.do(http.MethodPost, "/appointments", s.patientToken(), body)
	expectStatus(t, rec, http.StatusBadRequest)
	if _, ok := decode[ErrorResponse](t, rec).Fields["reason"]; !ok {
		t.Error("expected a reason field error")
	}

	body = s.bookingBody("13:00", "13:30")
	rec = s.do(http.MethodPost, "/appointments", s.patientToken(), body)
	expectStatus(t, rec, http.StatusConflict)
	if code := decode[ErrorResponse](t, rec).Error; code != "outside_shift" {
		t.Errorf("expected outside_shift, got %q", code)
	}
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodPost, "/appointments", "", s.bookingBody("09:00", "09:30"))
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = s.do(http.MethodGet, "/slots?doctorId="+s.doctor.ID.String()+"&date="+testDate.String(), "not-a-jwt", nil)
	expectStatus(t, rec, http.StatusUnauthorized)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: s.staffID.String()},
		Role:             "staff",
	}).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	rec = s.do(http.MethodGet, "/revenue/summary?from=2025-06-01&to=2025-06-30", forged, nil)
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = s.do(http.MethodGet, "/revenue/summary?from=2025-06-01&to=2025-06-30", token(t, s.staffID, "janitor"), nil)
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = s.do(http.MethodGet, "/revenue/summary?from=2025-06-01&to=2025-06-30", s.patientToken(), nil)
	expectStatus(t, rec, http.StatusForbidden)

	rec = s.do(http.MethodGet, "/revenue/summary?from=2025-06-01&to=2025-06-30", s.staffToken(), nil)
	expectStatus(t, rec, http.StatusOK)
}

func TestGuestBookingIsRateLimited(t *testing.T) {
	s := newTestServer(t, nil)

	guest := func(start, end string) map[string]any {
		body := s.bookingBody(start, end)
		body["guestInfo"] = map[string]any{"name": "Walk In", "phone": "+84 912 000 111", "gender": "female"}
		return body
	}

	rec := s.do(http.MethodPost, "/appointments/guest", "", guest("08:00", "08:30"))
	expectStatus(t, rec, http.StatusCreated)
	first := decode[AppointmentResponse](t, rec).Appointment

	rec = s.do(http.MethodPost, "/appointments/guest", "", guest("08:30", "09:00"))
	expectStatus(t, rec, http.StatusCreated)
	second := decode[AppointmentResponse](t, rec).Appointment

	if first.PatientID != second.PatientID {
		t.Error("the same phone must map to one guest patient")
	}

	rec = s.do(http.MethodPost, "/appointments/guest", "", guest("09:00", "09:30"))
	expectStatus(t, rec, http.StatusTooManyRequests)
	if code := decode[ErrorResponse](t, rec).Error; code != "rate_limited" {
		t.Errorf("expected rate_limited, got %q", code)
	}
}

func TestGuestBookingNeedsGuestInfo(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodPost, "/appointments/guest", "", s.bookingBody("08:00", "08:30"))
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestAppointmentLifecycle(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodPost, "/appointments", s.patientToken(), s.bookingBody("10:00", "10:30"))
	expectStatus(t, rec, http.StatusCreated)
	id := decode[AppointmentResponse](t, rec).Appointment.ID.String()

	rec = s.do(http.MethodPatch, "/appointments/"+id+"/status", s.patientToken(), statusRequest(appointment.StatusConfirmed))
	expectStatus(t, rec, http.StatusConflict)
	if code := decode[ErrorResponse](t, rec).Error; code != "invalid_status_transition" {
		t.Errorf("expected invalid_status_transition, got %q", code)
	}

	rec = s.do(http.MethodPatch, "/appointments/"+id+"/status", s.staffToken(), statusRequest(appointment.StatusConfirmed))
	expectStatus(t, rec, http.StatusOK)
	confirmed := decode[AppointmentResponse](t, rec)
	if confirmed.Appointment.Status != appointment.StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", confirmed.Appointment.Status)
	}
	if len(confirmed.NextStatuses) != 3 {
		t.Errorf("staff should see three exits from confirmed, got %v", confirmed.NextStatuses)
	}

	rec = s.do(http.MethodPatch, "/appointments/"+id+"/cancel", s.patientToken(), CancelAppointmentRequest{})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = s.do(http.MethodPatch, "/appointments/"+id+"/cancel", s.patientToken(), CancelAppointmentRequest{Reason: "travelling"})
	expectStatus(t, rec, http.StatusOK)
	cancelled := decode[AppointmentResponse](t, rec)
	if cancelled.Appointment.Status != appointment.StatusCancelled {
		t.Errorf("expected cancelled, got %s", cancelled.Appointment.Status)
	}
	if cancelled.NextStatuses == nil || len(cancelled.NextStatuses) != 0 {
		t.Errorf("cancelled appointments have no exits, got %v", cancelled.NextStatuses)
	}

	rec = s.do(http.MethodGet, "/appointments/"+id, s.patientToken(), nil)
	expectStatus(t, rec, http.StatusOK)
	if got := len(decode[AppointmentResponse](t, rec).History); got != 3 {
		t.Errorf("expected 3 history entries, got %d", got)
	}

	stranger := token(t, uuid.New(), appointment.RolePatient)
	rec = s.do(http.MethodGet, "/appointments/"+id, stranger, nil)
	expectStatus(t, rec, http.StatusNotFound)

	rec = s.do(http.MethodPost, "/appointments", s.patientToken(), s.bookingBody("10:00", "10:30"))
	expectStatus(t, rec, http.StatusCreated)
}

func TestUpdateStatusRequiresToStatus(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodPost, "/appointments", s.patientToken(), s.bookingBody("10:00", "10:30"))
	expectStatus(t, rec, http.StatusCreated)
	id := decode[AppointmentResponse](t, rec).Appointment.ID.String()

	rec = s.do(http.MethodPatch, "/appointments/"+id+"/status", s.staffToken(), map[string]any{})
	expectStatus(t, rec, http.StatusBadRequest)
	resp := decode[ErrorResponse](t, rec)
	if resp.Error != "validation_failed" {
		t.Errorf("expected validation_failed, got %q", resp.Error)
	}
	if _, ok := resp.Fields["toStatus"]; !ok {
		t.Errorf("expected a toStatus field error, got %v", resp.Fields)
	}

	rec = s.do(http.MethodGet, "/appointments/"+id, s.staffToken(), nil)
	expectStatus(t, rec, http.StatusOK)
	if st := decode[AppointmentResponse](t, rec).Appointment.Status; st != appointment.StatusPending {
		t.Errorf("appointment moved to %s", st)
	}
}

func TestStaffBookingRejectsPatientAndGuest(t *testing.T) {
	s := newTestServer(t, nil)

	body := s.bookingBody("09:00", "09:30")
	body["patientId"] = s.patient.ID
	body["guestInfo"] = map[string]any{"name": "Walk In", "phone": "+84 912 000 111", "gender": "female"}
	rec := s.do(http.MethodPost, "/appointments", s.staffToken(), body)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = s.do(http.MethodGet, "/slots?doctorId="+s.doctor.ID.String()+"&date="+testDate.String(), "", nil)
	expectStatus(t, rec, http.StatusOK)
	if got := len(decode[SlotsResponse](t, rec).AvailableSlots); got != 8 {
		t.Errorf("rejected booking took a slot: %d slots left", got)
	}
}

func TestListAppointments(t *testing.T) {
	s := newTestServer(t, nil)

	for _, slot := range [][2]string{{"09:00", "09:30"}, {"08:00", "08:30"}} {
		rec := s.do(http.MethodPost, "/appointments", s.patientToken(), s.bookingBody(slot[0], slot[1]))
		expectStatus(t, rec, http.StatusCreated)
	}

	rec := s.do(http.MethodGet, "/appointments", s.patientToken(), nil)
	expectStatus(t, rec, http.StatusOK)
	if got := len(decode[AppointmentListResponse](t, rec).Data); got != 2 {
		t.Errorf("expected 2 appointments, got %d", got)
	}

	rec = s.do(http.MethodGet, "/appointments", s.staffToken(), nil)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = s.do(http.MethodGet, "/appointments?patientId="+s.patient.ID.String()+"&limit=1", s.staffToken(), nil)
	expectStatus(t, rec, http.StatusOK)
	if got := len(decode[AppointmentListResponse](t, rec).Data); got != 1 {
		t.Errorf("expected limit to apply, got %d", got)
	}

	rec = s.do(http.MethodGet, "/doctors/"+s.doctor.ID.String()+"/appointments?date="+testDate.String(), s.staffToken(), nil)
	expectStatus(t, rec, http.StatusOK)
	day := decode[AppointmentListResponse](t, rec).Data
	if len(day) != 2 || day[0].Start != timeslot.MustTimeOfDay(8, 0) {
		t.Errorf("expected the day ordered by start, got %+v", day)
	}
}

func TestShiftEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodPost, "/shifts/generate", s.staffToken(), GenerateShiftsRequest{DoctorID: &s.doctor.ID, HorizonDays: 7})
	expectStatus(t, rec, http.StatusOK)
	// Monday 2025-06-02 already has its morning block.
	if got := decode[GenerateShiftsResponse](t, rec).Created; got != 11 {
		t.Errorf("expected 11 new shifts, got %d", got)
	}

	rec = s.do(http.MethodPatch, "/doctors/"+s.doctor.ID.String()+"/shifts", s.staffToken(), SetShiftActiveRequest{
		Date:      testDate,
		StartTime: timeslot.MustTimeOfDay(8, 0),
		Active:    false,
	})
	expectStatus(t, rec, http.StatusOK)

	rec = s.do(http.MethodGet, "/slots?doctorId="+s.doctor.ID.String()+"&date="+testDate.String(), "", nil)
	expectStatus(t, rec, http.StatusOK)
	for _, slot := range decode[SlotsResponse](t, rec).AvailableSlots {
		if slot.Start < timeslot.MustTimeOfDay(12, 0) {
			t.Fatalf("deactivated morning shift still offers %s", slot)
		}
	}

	rec = s.do(http.MethodGet, "/doctors/"+s.doctor.ID.String()+"/shifts?from=2025-06-02&to=2025-06-02", s.staffToken(), nil)
	expectStatus(t, rec, http.StatusOK)
	listed := decode[struct {
		Data []shift.DoctorShift `json:"data"`
	}](t, rec).Data
	if len(listed) != 2 {
		t.Errorf("expected both Monday shifts listed, got %d", len(listed))
	}

	rec = s.do(http.MethodPost, "/shifts/generate", s.patientToken(), nil)
	expectStatus(t, rec, http.StatusForbidden)
}

func TestRevenueEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	done := appointment.Appointment{
		ID:        uuid.New(),
		DoctorID:  s.doctor.ID,
		PatientID: s.patient.ID,
		Date:      testDate,
		Start:     timeslot.MustTimeOfDay(8, 0),
		End:       timeslot.MustTimeOfDay(8, 30),
		Reason:    "rash",
		Status:    appointment.StatusCompleted,
	}
	s.store.PutAppointment(done)

	rec := s.do(http.MethodPost, "/appointments/"+done.ID.String()+"/invoice", s.staffToken(), RecordInvoiceRequest{
		ServiceAmount: decimal.RequireFromString("150000"),
		ExtraAmount:   decimal.RequireFromString("20000.50"),
	})
	expectStatus(t, rec, http.StatusCreated)
	inv := decode[revenue.Invoice](t, rec)

	rec = s.do(http.MethodPost, "/appointments/"+done.ID.String()+"/invoice", s.staffToken(), RecordInvoiceRequest{})
	expectStatus(t, rec, http.StatusConflict)

	rec = s.do(http.MethodPatch, "/invoices/"+inv.ID.String()+"/paid", s.staffToken(), MarkPaidRequest{PaidOn: testDate})
	expectStatus(t, rec, http.StatusOK)

	rec = s.do(http.MethodGet, "/revenue/summary?from=2025-06-01&to=2025-06-30", s.staffToken(), nil)
	expectStatus(t, rec, http.StatusOK)
	summary := decode[revenue.Summary](t, rec)
	if !summary.TotalRevenue.Equal(decimal.RequireFromString("170000.50")) || summary.InvoiceCount != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}

	rec = s.do(http.MethodGet, "/revenue/by-date?from=2025-06-30&to=2025-06-01", s.staffToken(), nil)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = s.do(http.MethodGet, "/revenue/by-date?from=2025-06-01&to=2025-06-30", s.staffToken(), nil)
	expectStatus(t, rec, http.StatusOK)
	days := decode[struct {
		Data []revenue.DailyRevenue `json:"data"`
	}](t, rec).Data
	if len(days) != 1 || days[0].Date != testDate {
		t.Errorf("expected one bucket on %s, got %+v", testDate, days)
	}
}

func TestHealthEndpoints(t *testing.T) {
	down := func(context.Context) error { return errors.New("connection refused") }
	up := func(context.Context) error { return nil }

	tests := []struct {
		name       string
		postgres   Check
		redis      Check
		wantCode   int
		wantStatus string
	}{
		{name: "all up", postgres: up, redis: up, wantCode: http.StatusOK, wantStatus: "ok"},
		{name: "redis down", postgres: up, redis: down, wantCode: http.StatusOK, wantStatus: "degraded"},
		{name: "postgres down", postgres: down, redis: up, wantCode: http.StatusServiceUnavailable, wantStatus: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, NewHealthHandler(tt.postgres, tt.redis, "test", "v0"))

			rec := s.do(http.MethodGet, "/health/ready", "", nil)
			expectStatus(t, rec, tt.wantCode)
			if got := decode[ReadinessResponse](t, rec).Status; got != tt.wantStatus {
				t.Errorf("expected %q, got %q", tt.wantStatus, got)
			}

			rec = s.do(http.MethodGet, "/health/live", "", nil)
			expectStatus(t, rec, http.StatusOK)
		})
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/slots", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("expected request id to be echoed, got %q", got)
	}
}
