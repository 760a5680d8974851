package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/nore-menu/api/internal/database"
	"github.com/nore-menu/api/internal/enum"
)

// AggregationStore defines the DB methods needed by the aggregation
// pass. Satisfied by *database.Queries.
type AggregationStore interface {
	ListRestaurantIDs(ctx context.Context) ([]uuid.UUID, error)
	CountEventsBetween(ctx context.Context, arg database.CountEventsBetweenParams) (int64, error)
	ListDishEventCountsBetween(ctx context.Context, arg database.CountEventsBetweenParams) ([]database.DishEventCountRow, error)
	UpsertDailyAggregate(ctx context.Context, arg database.UpsertDailyAggregateParams) (database.DailyAggregate, error)
}

// AggregationService recomputes the per-day counters that back the
// dashboard's historical series.
type AggregationService struct {
	store AggregationStore
}

// NewAggregationService creates a new AggregationService.
func NewAggregationService(store AggregationStore) *AggregationService {
	return &AggregationService{store: store}
}

// RunDailyAggregation recomputes one day's QR-scan count and per-dish
// view counts for every restaurant and upserts them into
// daily_aggregates. The upsert key makes re-running the same date a
// no-op, so the nightly schedule and the manual trigger can overlap
// safely. Restaurants are processed sequentially; a failing tenant is
// logged and skipped rather than aborting the whole pass.
func (s *AggregationService) RunDailyAggregation(ctx context.Context, date time.Time) (int, error) {
	dayStart := startOfDay(date)
	dayEnd := dayStart.AddDate(0, 0, 1)
	metricDate := pgtype.Date{Time: dayStart, Valid: true}

	restaurantIDs, err := s.store.ListRestaurantIDs(ctx)
	if err != nil {
		return 0, err
	}

	upserts := 0
	for _, rid := range restaurantIDs {
		qrCount, err := s.store.CountEventsBetween(ctx, database.CountEventsBetweenParams{
			RestaurantID: rid,
			EventType:    enum.EventQRScan,
			From:         dayStart,
			To:           dayEnd,
		})
		if err != nil {
			log.Printf("ERROR: aggregate qr scans for restaurant %s: %v", rid, err)
			continue
		}
		if _, err := s.store.UpsertDailyAggregate(ctx, database.UpsertDailyAggregateParams{
			RestaurantID: rid,
			MetricDate:   metricDate,
			MetricName:   enum.MetricQRScans,
			Value:        qrCount,
		}); err != nil {
			log.Printf("ERROR: upsert qr scans for restaurant %s: %v", rid, err)
			continue
		}
		upserts++

		views, err := s.store.ListDishEventCountsBetween(ctx, database.CountEventsBetweenParams{
			RestaurantID: rid,
			EventType:    enum.EventDishView,
			From:         dayStart,
			To:           dayEnd,
		})
		if err != nil {
			log.Printf("ERROR: aggregate dish views for restaurant %s: %v", rid, err)
			continue
		}
		for _, v := range views {
			if _, err := s.store.UpsertDailyAggregate(ctx, database.UpsertDailyAggregateParams{
				RestaurantID: rid,
				MetricDate:   metricDate,
				MetricName:   enum.MetricDishView,
				DishID:       pgtype.UUID{Bytes: v.DishID, Valid: true},
				Value:        v.Count,
			}); err != nil {
				log.Printf("ERROR: upsert dish views for restaurant %s dish %s: %v", rid, v.DishID, err)
				continue
			}
			upserts++
		}
	}
	return upserts, nil
}
