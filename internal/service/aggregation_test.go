package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/nore-menu/api/internal/database"
	"github.com/nore-menu/api/internal/enum"
)

func pgDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: t, Valid: true}
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// mockAggregationStore implements AggregationStore and records every
// upsert keyed the way the unique index does, so re-running a date
// shows up as overwrites rather than new rows.
type mockAggregationStore struct {
	restaurantIDs                []uuid.UUID
	restaurantIDsErr             error
	countEventsBetweenFn         func(ctx context.Context, arg database.CountEventsBetweenParams) (int64, error)
	listDishEventCountsBetweenFn func(ctx context.Context, arg database.CountEventsBetweenParams) ([]database.DishEventCountRow, error)

	upserts map[string]int64
	calls   int
}

type aggKey struct {
	restaurantID uuid.UUID
	date         string
	metric       string
	dishID       uuid.UUID
}

func (k aggKey) String() string {
	return k.restaurantID.String() + "|" + k.date + "|" + k.metric + "|" + k.dishID.String()
}

func (m *mockAggregationStore) ListRestaurantIDs(ctx context.Context) ([]uuid.UUID, error) {
	return m.restaurantIDs, m.restaurantIDsErr
}
func (m *mockAggregationStore) CountEventsBetween(ctx context.Context, arg database.CountEventsBetweenParams) (int64, error) {
	return m.countEventsBetweenFn(ctx, arg)
}
func (m *mockAggregationStore) ListDishEventCountsBetween(ctx context.Context, arg database.CountEventsBetweenParams) ([]database.DishEventCountRow, error) {
	return m.listDishEventCountsBetweenFn(ctx, arg)
}
func (m *mockAggregationStore) UpsertDailyAggregate(ctx context.Context, arg database.UpsertDailyAggregateParams) (database.DailyAggregate, error) {
	if m.upserts == nil {
		m.upserts = make(map[string]int64)
	}
	key := aggKey{
		restaurantID: arg.RestaurantID,
		date:         arg.MetricDate.Time.Format("2006-01-02"),
		metric:       arg.MetricName,
		dishID:       uuid.UUID(arg.DishID.Bytes), // zero uuid when NULL
	}
	m.upserts[key.String()] = arg.Value
	m.calls++
	return database.DailyAggregate{}, nil
}

func defaultAggregationStore(restaurants ...uuid.UUID) *mockAggregationStore {
	return &mockAggregationStore{
		restaurantIDs: restaurants,
		countEventsBetweenFn: func(ctx context.Context, arg database.CountEventsBetweenParams) (int64, error) {
			return 3, nil
		},
		listDishEventCountsBetweenFn: func(ctx context.Context, arg database.CountEventsBetweenParams) ([]database.DishEventCountRow, error) {
			return nil, nil
		},
	}
}

func TestRunDailyAggregation_WritesQRScansAndDishViews(t *testing.T) {
	rid := uuid.New()
	dish := uuid.New()
	store := defaultAggregationStore(rid)
	store.countEventsBetweenFn = func(ctx context.Context, arg database.CountEventsBetweenParams) (int64, error) {
		if arg.EventType != enum.EventQRScan {
			t.Errorf("unexpected event type for count: %s", arg.EventType)
		}
		return 21, nil
	}
	store.listDishEventCountsBetweenFn = func(ctx context.Context, arg database.CountEventsBetweenParams) ([]database.DishEventCountRow, error) {
		return []database.DishEventCountRow{{DishID: dish, Count: 6}}, nil
	}

	svc := NewAggregationService(store)
	date := time.Date(2026, 8, 30, 11, 45, 0, 0, time.UTC) // mid-day input normalizes to midnight

	n, err := svc.RunDailyAggregation(context.Background(), date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("upserts: got %d, want 2", n)
	}

	qrKey := aggKey{restaurantID: rid, date: "2026-08-30", metric: enum.MetricQRScans}
	if got := store.upserts[qrKey.String()]; got != 21 {
		t.Errorf("qr_scans value: got %d, want 21", got)
	}
	viewKey := aggKey{restaurantID: rid, date: "2026-08-30", metric: enum.MetricDishView, dishID: dish}
	if got := store.upserts[viewKey.String()]; got != 6 {
		t.Errorf("dish_view value: got %d, want 6", got)
	}
}

func TestRunDailyAggregation_RerunOverwritesInsteadOfDuplicating(t *testing.T) {
	rid := uuid.New()
	store := defaultAggregationStore(rid)

	count := int64(10)
	store.countEventsBetweenFn = func(ctx context.Context, arg database.CountEventsBetweenParams) (int64, error) {
		return count, nil
	}

	svc := NewAggregationService(store)
	date := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	if _, err := svc.RunDailyAggregation(context.Background(), date); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	count = 14 // late events arrived, rerun picks them up
	if _, err := svc.RunDailyAggregation(context.Background(), date); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.upserts) != 1 {
		t.Fatalf("expected 1 distinct aggregate row after rerun, got %d", len(store.upserts))
	}
	key := aggKey{restaurantID: rid, date: "2026-08-30", metric: enum.MetricQRScans}
	if got := store.upserts[key.String()]; got != 14 {
		t.Errorf("rerun should overwrite the value: got %d, want 14", got)
	}
}

func TestRunDailyAggregation_FailingRestaurantSkipped(t *testing.T) {
	brokenRid := uuid.New()
	healthyRid := uuid.New()
	store := defaultAggregationStore(brokenRid, healthyRid)
	store.countEventsBetweenFn = func(ctx context.Context, arg database.CountEventsBetweenParams) (int64, error) {
		if arg.RestaurantID == brokenRid {
			return 0, errors.New("partition offline")
		}
		return 5, nil
	}

	svc := NewAggregationService(store)
	n, err := svc.RunDailyAggregation(context.Background(), time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("one broken tenant must not abort the pass, got: %v", err)
	}
	if n != 1 {
		t.Errorf("upserts: got %d, want 1 (healthy tenant only)", n)
	}
	key := aggKey{restaurantID: healthyRid, date: "2026-08-30", metric: enum.MetricQRScans}
	if got := store.upserts[key.String()]; got != 5 {
		t.Errorf("healthy tenant aggregate: got %d, want 5", got)
	}
}

func TestRunDailyAggregation_RestaurantListFailureFatal(t *testing.T) {
	store := defaultAggregationStore()
	store.restaurantIDsErr = errors.New("connection refused")

	svc := NewAggregationService(store)
	if _, err := svc.RunDailyAggregation(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error when the restaurant list cannot be loaded")
	}
}
