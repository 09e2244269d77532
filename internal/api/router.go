package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-shift-scheduling/internal/appointment"
	"github.com/hackgods/clinic-shift-scheduling/internal/availability"
	"github.com/hackgods/clinic-shift-scheduling/internal/revenue"
	"github.com/hackgods/clinic-shift-scheduling/internal/shift"
)

type RouterConfig struct {
	Appointments *appointment.Service
	Availability *availability.Resolver
	Shifts       *shift.Generator
	Revenue      *revenue.Aggregator
	Health       *HealthHandler
	Logger       zerolog.Logger

	JWTSecret           []byte
	GuestRateLimitRPS   float64
	GuestRateLimitBurst int
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	log := cfg.Logger

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(log))
	r.Use(middleware.Recoverer)
	r.Use(AuthMiddleware(cfg.JWTSecret))

	// Health endpoints
	if cfg.Health != nil {
		r.Get("/health/live", cfg.Health.Liveness)
		r.Get("/health/ready", cfg.Health.Readiness)
	}

	// Availability is public and read-only
	r.Get("/slots", listSlotsHandler(cfg.Availability, log))
	r.Get("/doctors/available", availableDoctorsHandler(cfg.Availability, log))
	r.Get("/specialties/{id}/slots", specialtySlotsHandler(cfg.Availability, log))

	r.With(RateLimitMiddleware(cfg.GuestRateLimitRPS, cfg.GuestRateLimitBurst)).
		Post("/appointments/guest", createGuestAppointmentHandler(cfg.Appointments, log))

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth)

		r.Post("/appointments", createAppointmentHandler(cfg.Appointments, log))
		r.Get("/appointments", listAppointmentsHandler(cfg.Appointments, log))
		r.Get("/appointments/{id}", getAppointmentHandler(cfg.Appointments, log))
		r.Patch("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Appointments, log))
		r.Patch("/appointments/{id}/status", updateStatusHandler(cfg.Appointments, log))
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireStaff)

		r.Get("/doctors/{id}/appointments", doctorDayHandler(cfg.Appointments, log))
		r.Get("/doctors/{id}/shifts", listShiftsHandler(cfg.Shifts, log))
		r.Patch("/doctors/{id}/shifts", setShiftActiveHandler(cfg.Shifts, log))
		r.Post("/shifts/generate", generateShiftsHandler(cfg.Shifts, log))

		r.Get("/revenue/summary", revenueSummaryHandler(cfg.Revenue, log))
		r.Get("/revenue/by-date", revenueByDateHandler(cfg.Revenue, log))
		r.Post("/appointments/{id}/invoice", recordInvoiceHandler(cfg.Revenue, log))
		r.Patch("/invoices/{id}/paid", markInvoicePaidHandler(cfg.Revenue, log))
	})

	return r
}
