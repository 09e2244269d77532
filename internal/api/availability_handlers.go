package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-shift-scheduling/internal/availability"
)

func listSlotsHandler(resolver *availability.Resolver, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var p params
		doctorID := p.uuid("doctorId", q.Get("doctorId"))
		date := p.date("date", q.Get("date"))
		duration := p.intValue("slotDurationMinutes", q.Get("slotDurationMinutes"), 0)
		if err := p.err(); err != nil {
			writeAppError(w, r, logger, err)
			return
		}

		slots, err := resolver.SlotsForDoctor(r.Context(), doctorID, date, duration)
		if err != nil {
			writeAppError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, SlotsResponse{AvailableSlots: slots})
	}
}

func availableDoctorsHandler(resolver *availability.Resolver, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var p params
		specialtyID := p.optionalUUID("specialtyId", q.Get("specialtyId"))
		date := p.date("date", q.Get("date"))
		start := p.timeOfDay("startTime", q.Get("startTime"))
		end := p.timeOfDay("endTime", q.Get("endTime"))
		if err := p.err(); err != nil {
			writeAppError(w, r, logger, err)
			return
		}

		doctors, err := resolver.DoctorsAvailable(r.Context(), specialtyID, date, start, end)
		if err != nil {
			writeAppError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, DoctorsResponse{Data: doctors})
	}
}

func specialtySlotsHandler(resolver *availability.Resolver, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var p params
		specialtyID := p.uuid("id", chi.URLParam(r, "id"))
		date := p.date("date", q.Get("date"))
		duration := p.intValue("slotDurationMinutes", q.Get("slotDurationMinutes"), 0)
		if err := p.err(); err != nil {
			writeAppError(w, r, logger, err)
			return
		}

		slots, err := resolver.SpecialtySlots(r.Context(), &specialtyID, date, duration)
		if err != nil {
			writeAppError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, SpecialtySlotsResponse{Slots: slots})
	}
}
