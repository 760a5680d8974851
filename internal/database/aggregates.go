package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type UpsertDailyAggregateParams struct {
	RestaurantID uuid.UUID
	MetricDate   pgtype.Date
	MetricName   string
	DishID       pgtype.UUID
	Value        int64
}

// UpsertDailyAggregate is keyed on (restaurant, date, metric, dish).
// The COALESCE in the conflict target matches the unique expression
// index, so restaurant-level metrics (NULL dish) upsert cleanly and
// re-running aggregation for a date is idempotent.
func (q *Queries) UpsertDailyAggregate(ctx context.Context, arg UpsertDailyAggregateParams) (DailyAggregate, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO daily_aggregates (restaurant_id, metric_date, metric_name, dish_id, value)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (restaurant_id, metric_date, metric_name, COALESCE(dish_id, '00000000-0000-0000-0000-000000000000'::uuid))
		DO UPDATE SET value = EXCLUDED.value
		RETURNING id, restaurant_id, metric_date, metric_name, dish_id, value`,
		arg.RestaurantID, arg.MetricDate, arg.MetricName, arg.DishID, arg.Value,
	)
	var a DailyAggregate
	err := row.Scan(&a.ID, &a.RestaurantID, &a.MetricDate, &a.MetricName, &a.DishID, &a.Value)
	return a, err
}

type ListDailyAggregatesParams struct {
	RestaurantID uuid.UUID
	Since        pgtype.Date
	Until        pgtype.Date
}

func (q *Queries) ListDailyAggregates(ctx context.Context, arg ListDailyAggregatesParams) ([]DailyAggregate, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, restaurant_id, metric_date, metric_name, dish_id, value
		FROM daily_aggregates
		WHERE restaurant_id = $1
		  AND metric_date >= $2
		  AND metric_date <= $3
		ORDER BY metric_date ASC`,
		arg.RestaurantID, arg.Since, arg.Until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DailyAggregate
	for rows.Next() {
		var a DailyAggregate
		if err := rows.Scan(&a.ID, &a.RestaurantID, &a.MetricDate, &a.MetricName, &a.DishID, &a.Value); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (q *Queries) ListRestaurantIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := q.db.Query(ctx, `SELECT id FROM restaurants ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

type CountEventsBetweenParams struct {
	RestaurantID uuid.UUID
	EventType    string
	From         time.Time
	To           time.Time
}

func (q *Queries) CountEventsBetween(ctx context.Context, arg CountEventsBetweenParams) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM menu_events
		WHERE restaurant_id = $1
		  AND event_type = $2
		  AND created_at >= $3
		  AND created_at < $4`,
		arg.RestaurantID, arg.EventType, arg.From, arg.To,
	).Scan(&count)
	return count, err
}

type DishEventCountRow struct {
	DishID uuid.UUID
	Count  int64
}

// ListDishEventCountsBetween groups an event type by dish. Events with
// no dish reference (QR scans) are excluded.
func (q *Queries) ListDishEventCountsBetween(ctx context.Context, arg CountEventsBetweenParams) ([]DishEventCountRow, error) {
	rows, err := q.db.Query(ctx, `
		SELECT dish_id, COUNT(*)
		FROM menu_events
		WHERE restaurant_id = $1
		  AND event_type = $2
		  AND dish_id IS NOT NULL
		  AND created_at >= $3
		  AND created_at < $4
		GROUP BY dish_id`,
		arg.RestaurantID, arg.EventType, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DishEventCountRow
	for rows.Next() {
		var r DishEventCountRow
		if err := rows.Scan(&r.DishID, &r.Count); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
