package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type CreateMenuEventParams struct {
	RestaurantID uuid.UUID
	DishID       pgtype.UUID
	EventType    string
}

// CreateMenuEvent appends one raw analytics event. Raw events are only
// scanned for "today"; history is served from daily_aggregates.
func (q *Queries) CreateMenuEvent(ctx context.Context, arg CreateMenuEventParams) (MenuEvent, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO menu_events (restaurant_id, dish_id, event_type)
		VALUES ($1, $2, $3)
		RETURNING id, restaurant_id, dish_id, event_type, created_at`,
		arg.RestaurantID, arg.DishID, arg.EventType,
	)
	var e MenuEvent
	err := row.Scan(&e.ID, &e.RestaurantID, &e.DishID, &e.EventType, &e.CreatedAt)
	return e, err
}
