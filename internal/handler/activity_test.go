package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nore-menu/api/internal/database"
	"github.com/nore-menu/api/internal/handler"
)

type mockActivityStore struct {
	listFn func(ctx context.Context, arg database.ListActivityLogsParams) ([]database.ActivityLog, error)
}

func (m *mockActivityStore) ListActivityLogs(ctx context.Context, arg database.ListActivityLogsParams) ([]database.ActivityLog, error) {
	return m.listFn(ctx, arg)
}

func setupActivityRouter(store *mockActivityStore) *chi.Mux {
	h := handler.NewActivityHandler(store)
	r := chi.NewRouter()
	r.Get("/analytics/activity/{restaurantID}", h.List)
	return r
}

func TestActivityList_DefaultLimit(t *testing.T) {
	restaurantID := uuid.New()

	var got database.ListActivityLogsParams
	store := &mockActivityStore{
		listFn: func(ctx context.Context, arg database.ListActivityLogsParams) ([]database.ActivityLog, error) {
			got = arg
			return []database.ActivityLog{{
				ID:           uuid.New(),
				RestaurantID: restaurantID,
				StaffID:      uuid.New(),
				ActionType:   "ORDER_VALIDATED",
				Description:  "WhatsApp order validated",
				Metadata:     []byte(`{"orderId":"x"}`),
				CreatedAt:    time.Now(),
			}}, nil
		},
	}
	router := setupActivityRouter(store)

	rr := doRequest(t, router, "GET", "/analytics/activity/"+restaurantID.String(), nil, nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if got.RestaurantID != restaurantID {
		t.Errorf("restaurant ID: got %v, want %v", got.RestaurantID, restaurantID)
	}
	if got.Limit != 50 {
		t.Errorf("limit: got %d, want 50", got.Limit)
	}

	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 1 || resp[0]["action_type"] != "ORDER_VALIDATED" {
		t.Errorf("unexpected feed: %v", resp)
	}
}

func TestActivityList_LimitCapped(t *testing.T) {
	store := &mockActivityStore{
		listFn: func(ctx context.Context, arg database.ListActivityLogsParams) ([]database.ActivityLog, error) {
			if arg.Limit != 200 {
				t.Errorf("limit: got %d, want 200", arg.Limit)
			}
			return []database.ActivityLog{}, nil
		},
	}
	router := setupActivityRouter(store)

	rr := doRequest(t, router, "GET", "/analytics/activity/"+uuid.New().String()+"?limit=9999", nil, nil)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}
