package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-shift-scheduling/internal/appointment"
	"github.com/hackgods/clinic-shift-scheduling/internal/apperr"
)

func createAppointmentHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := ActorFromContext(r.Context())

		var req CreateAppointmentRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if caller.Role == appointment.RolePatient && (req.PatientID != nil || req.GuestInfo != nil) {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "patients book for themselves; omit patientId and guestInfo")
			return
		}
		if req.PatientID != nil && req.GuestInfo != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "send either patientId or guestInfo, not both")
			return
		}

		appt, err := svc.Book(r.Context(), req.booking(caller))
		if err != nil {
			writeAppError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusCreated, appointmentResponse(appt, caller, nil))
	}
}

func createGuestAppointmentHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.GuestInfo == nil || req.PatientID != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "guest bookings need guestInfo and no patientId")
			return
		}

		guest := appointment.Actor{Role: appointment.RoleGuest}
		appt, err := svc.Book(r.Context(), req.booking(guest))
		if err != nil {
			writeAppError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusCreated, appointmentResponse(appt, guest, nil))
	}
}

func getAppointmentHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := ActorFromContext(r.Context())

		var p params
		id := p.uuid("id", chi.URLParam(r, "id"))
		if err := p.err(); err != nil {
			writeAppError(w, r, logger, err)
			return
		}

		appt, err := svc.Get(r.Context(), id, caller)
		if err != nil {
			writeAppError(w, r, logger, err)
			return
		}
		history, err := svc.History(r.Context(), id, caller)
		if err != nil {
			writeAppError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, appointmentResponse(appt, caller, history))
	}
}

func listAppointmentsHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := ActorFromContext(r.Context())

		q := r.URL.Query()
		var p params
		patientID := caller.ID
		if caller.IsStaff() {
			patientID = p.uuid("patientId", q.Get("patientId"))
		}
		limit := p.intValue("limit", q.Get("limit"), 20)
		offset := p.intValue("offset", q.Get("offset"), 0)
		if err := p.err(); err != nil {
			writeAppError(w, r, logger, err)
			return
		}

		appointments, err := svc.ListForPatient(r.Context(), patientID, limit, offset)
		if err != nil {
			writeAppError(w, r, logger, err)
			return
		}
		if appointments == nil {
			appointments = []appointment.Appointment{}
		}

		writeJSON(w, http.StatusOK, AppointmentListResponse{Data: appointments})
	}
}

func doctorDayHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p params
		doctorID := p.uuid("id", chi.URLParam(r, "id"))
		date := p.date("date", r.URL.Query().Get("date"))
		if err := p.err(); err != nil {
			writeAppError(w, r, logger, err)
			return
		}

		appointments, err := svc.ListForDoctorDay(r.Context(), doctorID, date)
		if err != nil {
			writeAppError(w, r, logger, err)
			return
		}
		if appointments == nil {
			appointments = []appointment.Appointment{}
		}

		writeJSON(w, http.StatusOK, AppointmentListResponse{Data: appointments})
	}
}

func cancelAppointmentHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := ActorFromContext(r.Context())

		var p params
		id := p.uuid("id", chi.URLParam(r, "id"))
		if err := p.err(); err != nil {
			writeAppError(w, r, logger, err)
			return
		}

		var req CancelAppointmentRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		appt, err := svc.Cancel(r.Context(), id, caller, req.Reason)
		if err != nil {
			writeAppError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, appointmentResponse(appt, caller, nil))
	}
}

func updateStatusHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := ActorFromContext(r.Context())

		var p params
		id := p.uuid("id", chi.URLParam(r, "id"))
		if err := p.err(); err != nil {
			writeAppError(w, r, logger, err)
			return
		}

		var req UpdateStatusRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.ToStatus == nil {
			var v apperr.ValidationError
			v.Add("toStatus", "toStatus is required")
			writeAppError(w, r, logger, v.Err())
			return
		}

		appt, err := svc.Transition(r.Context(), id, *req.ToStatus, caller, req.Reason)
		if err != nil {
			writeAppError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, appointmentResponse(appt, caller, nil))
	}
}

func appointmentResponse(appt *appointment.Appointment, caller appointment.Actor, history []appointment.Event) AppointmentResponse {
	next := appointment.NextStatuses(appt.Status, caller)
	if next == nil {
		next = []appointment.Status{}
	}
	return AppointmentResponse{Appointment: appt, NextStatuses: next, History: history}
}
