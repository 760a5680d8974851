package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nore-menu/api/internal/handler"
)

type mockAggregator struct {
	runFn func(ctx context.Context, date time.Time) (int, error)
}

func (m *mockAggregator) RunDailyAggregation(ctx context.Context, date time.Time) (int, error) {
	return m.runFn(ctx, date)
}

func setupAggregateRouter(svc *mockAggregator) *chi.Mux {
	h := handler.NewAggregateHandler(svc)
	r := chi.NewRouter()
	r.Route("/analytics", h.RegisterRoutes)
	return r
}

func TestAggregate_DefaultsToYesterday(t *testing.T) {
	var got time.Time
	svc := &mockAggregator{
		runFn: func(ctx context.Context, date time.Time) (int, error) {
			got = date
			return 3, nil
		},
	}
	router := setupAggregateRouter(svc)

	rr := doRequest(t, router, "POST", "/analytics/aggregate", nil, nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body: %s)", rr.Code, http.StatusOK, rr.Body.String())
	}
	yesterday := time.Now().AddDate(0, 0, -1)
	if got.Year() != yesterday.Year() || got.Month() != yesterday.Month() || got.Day() != yesterday.Day() {
		t.Errorf("date: got %v, want yesterday", got)
	}
	resp := decodeBody(t, rr)
	if resp["aggregates_written"] != float64(3) {
		t.Errorf("aggregates_written: got %v, want 3", resp["aggregates_written"])
	}
}

func TestAggregate_ExplicitDate(t *testing.T) {
	svc := &mockAggregator{
		runFn: func(ctx context.Context, date time.Time) (int, error) {
			if date.Format("2006-01-02") != "2026-08-15" {
				t.Errorf("date: got %s, want 2026-08-15", date.Format("2006-01-02"))
			}
			return 0, nil
		},
	}
	router := setupAggregateRouter(svc)

	rr := doRequest(t, router, "POST", "/analytics/aggregate?date=2026-08-15", nil, nil)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestAggregate_InvalidDate(t *testing.T) {
	svc := &mockAggregator{
		runFn: func(ctx context.Context, date time.Time) (int, error) {
			t.Fatal("aggregation should not run with a bad date")
			return 0, nil
		},
	}
	router := setupAggregateRouter(svc)

	rr := doRequest(t, router, "POST", "/analytics/aggregate?date=15/08/2026", nil, nil)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
