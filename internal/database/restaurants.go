package database

import (
	"context"

	"github.com/google/uuid"
)

const restaurantColumns = `id, name, slug, whatsapp_number, pay_before, owner_email,
	owner_password_hash, created_at`

func scanRestaurant(row interface{ Scan(...interface{}) error }) (Restaurant, error) {
	var r Restaurant
	err := row.Scan(
		&r.ID, &r.Name, &r.Slug, &r.WhatsappNumber, &r.PayBefore,
		&r.OwnerEmail, &r.OwnerPasswordHash, &r.CreatedAt,
	)
	return r, err
}

func (q *Queries) GetRestaurant(ctx context.Context, id uuid.UUID) (Restaurant, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+restaurantColumns+`
		FROM restaurants
		WHERE id = $1`, id)
	return scanRestaurant(row)
}

func (q *Queries) GetRestaurantByOwnerEmail(ctx context.Context, ownerEmail string) (Restaurant, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+restaurantColumns+`
		FROM restaurants
		WHERE owner_email = $1`, ownerEmail)
	return scanRestaurant(row)
}
