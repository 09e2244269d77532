package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-shift-scheduling/internal/revenue"
)

func revenueSummaryHandler(agg *revenue.Aggregator, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var p params
		from := p.date("from", q.Get("from"))
		to := p.date("to", q.Get("to"))
		if err := p.err(); err != nil {
			writeAppError(w, r, logger, err)
			return
		}

		summary, err := agg.Summary(r.Context(), from, to)
		if err != nil {
			writeAppError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func revenueByDateHandler(agg *revenue.Aggregator, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var p params
		from := p.date("from", q.Get("from"))
		to := p.date("to", q.Get("to"))
		if err := p.err(); err != nil {
			writeAppError(w, r, logger, err)
			return
		}

		days, err := agg.ByDate(r.Context(), from, to)
		if err != nil {
			writeAppError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": days})
	}
}

func recordInvoiceHandler(agg *revenue.Aggregator, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p params
		appointmentID := p.uuid("id", chi.URLParam(r, "id"))
		if err := p.err(); err != nil {
			writeAppError(w, r, logger, err)
			return
		}

		var req RecordInvoiceRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		inv, err := agg.RecordInvoice(r.Context(), appointmentID, req.ServiceAmount, req.ExtraAmount)
		if err != nil {
			writeAppError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, inv)
	}
}

func markInvoicePaidHandler(agg *revenue.Aggregator, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p params
		id := p.uuid("id", chi.URLParam(r, "id"))
		if err := p.err(); err != nil {
			writeAppError(w, r, logger, err)
			return
		}

		var req MarkPaidRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		inv, err := agg.MarkPaid(r.Context(), id, req.PaidOn)
		if err != nil {
			writeAppError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, inv)
	}
}
