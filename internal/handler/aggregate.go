package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Aggregator runs the daily rollup. Satisfied by
// *service.AggregationService.
type Aggregator interface {
	RunDailyAggregation(ctx context.Context, date time.Time) (int, error)
}

// AggregateHandler exposes the rollup as an HTTP trigger so a missed
// or corrected day can be re-run by hand. The upsert makes re-runs
// safe, which is also why the endpoint can stay unauthenticated: the
// worst a caller can do is recompute a day to its correct value.
type AggregateHandler struct {
	svc Aggregator
}

// NewAggregateHandler creates a new AggregateHandler.
func NewAggregateHandler(svc Aggregator) *AggregateHandler {
	return &AggregateHandler{svc: svc}
}

// RegisterRoutes registers the aggregation trigger.
func (h *AggregateHandler) RegisterRoutes(r chi.Router) {
	r.Post("/aggregate", h.Run)
}

// Run handles POST /analytics/aggregate?date=YYYY-MM-DD. Without a
// date it rolls up yesterday, matching the nightly schedule.
func (h *AggregateHandler) Run(w http.ResponseWriter, r *http.Request) {
	date := time.Now().AddDate(0, 0, -1)
	if s := r.URL.Query().Get("date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date format, use YYYY-MM-DD"})
			return
		}
		date = t
	}

	written, err := h.svc.RunDailyAggregation(r.Context(), date)
	if err != nil {
		log.Printf("ERROR: run daily aggregation: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":               date.Format("2006-01-02"),
		"aggregates_written": written,
	})
}
