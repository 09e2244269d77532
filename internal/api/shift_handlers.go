package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-shift-scheduling/internal/shift"
)

func listShiftsHandler(gen *shift.Generator, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var p params
		doctorID := p.uuid("id", chi.URLParam(r, "id"))
		from := p.date("from", q.Get("from"))
		to := p.date("to", q.Get("to"))
		if err := p.err(); err != nil {
			writeAppError(w, r, logger, err)
			return
		}

		shifts, err := gen.ListShifts(r.Context(), doctorID, from, to)
		if err != nil {
			writeAppError(w, r, logger, err)
			return
		}
		if shifts == nil {
			shifts = []shift.DoctorShift{}
		}

		writeJSON(w, http.StatusOK, map[string]any{"data": shifts})
	}
}

func setShiftActiveHandler(gen *shift.Generator, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p params
		doctorID := p.uuid("id", chi.URLParam(r, "id"))
		if err := p.err(); err != nil {
			writeAppError(w, r, logger, err)
			return
		}

		var req SetShiftActiveRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Date.IsZero() {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "date is required")
			return
		}

		s, err := gen.SetActive(r.Context(), doctorID, req.Date, req.StartTime, req.Active)
		if err != nil {
			writeAppError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, s)
	}
}

func generateShiftsHandler(gen *shift.Generator, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GenerateShiftsRequest
		if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
			return
		}

		if req.DoctorID != nil {
			created, err := gen.GenerateForDoctor(r.Context(), *req.DoctorID, req.HorizonDays)
			if err != nil {
				writeAppError(w, r, logger, err)
				return
			}
			writeJSON(w, http.StatusOK, GenerateShiftsResponse{DoctorID: req.DoctorID, Created: created})
			return
		}

		report, err := gen.GenerateForAllDoctors(r.Context(), req.HorizonDays)
		if err != nil {
			writeAppError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}
