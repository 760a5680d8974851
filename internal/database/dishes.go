package database

import (
	"context"

	"github.com/google/uuid"
)

const dishColumns = `id, restaurant_id, name, price, category, is_available, created_at`

func scanDish(row interface{ Scan(...interface{}) error }) (Dish, error) {
	var d Dish
	err := row.Scan(&d.ID, &d.RestaurantID, &d.Name, &d.Price, &d.Category, &d.IsAvailable, &d.CreatedAt)
	return d, err
}

func (q *Queries) ListDishesByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]Dish, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+dishColumns+`
		FROM dishes
		WHERE restaurant_id = $1
		ORDER BY category NULLS LAST, name`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Dish
	for rows.Next() {
		d, err := scanDish(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type SetDishAvailabilityParams struct {
	ID          uuid.UUID
	IsAvailable bool
}

func (q *Queries) SetDishAvailability(ctx context.Context, arg SetDishAvailabilityParams) (Dish, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE dishes
		SET is_available = $2
		WHERE id = $1
		RETURNING `+dishColumns,
		arg.ID, arg.IsAvailable)
	return scanDish(row)
}
