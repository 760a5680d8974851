package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, restaurant_id, items, total_price, order_type, table_number,
	delivery_address, customer_name, customer_phone, production_status, is_paid,
	processed_by, created_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.RestaurantID, &o.Items, &o.TotalPrice, &o.OrderType,
		&o.TableNumber, &o.DeliveryAddress, &o.CustomerName, &o.CustomerPhone,
		&o.ProductionStatus, &o.IsPaid, &o.ProcessedBy, &o.CreatedAt,
	)
	return o, err
}

type CreateOrderParams struct {
	RestaurantID    uuid.UUID
	Items           []byte
	TotalPrice      pgtype.Numeric
	OrderType       OrderType
	TableNumber     pgtype.Text
	DeliveryAddress pgtype.Text
	CustomerName    pgtype.Text
	CustomerPhone   pgtype.Text
	IsPaid          bool
	ProcessedBy     pgtype.UUID
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO orders (restaurant_id, items, total_price, order_type, table_number,
			delivery_address, customer_name, customer_phone, production_status, is_paid, processed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending', $9, $10)
		RETURNING `+orderColumns,
		arg.RestaurantID, arg.Items, arg.TotalPrice, arg.OrderType, arg.TableNumber,
		arg.DeliveryAddress, arg.CustomerName, arg.CustomerPhone, arg.IsPaid, arg.ProcessedBy,
	)
	return scanOrder(row)
}

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1`, id)
	return scanOrder(row)
}

type UpdateOrderStatusParams struct {
	ID               uuid.UUID
	ProductionStatus ProductionStatus
	IsPaid           pgtype.Bool
	ProcessedBy      pgtype.UUID
}

// UpdateOrderStatus is a partial update: is_paid and processed_by are
// only written when supplied. Last write wins; there is no version
// column on orders.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders
		SET production_status = $2,
			is_paid = COALESCE($3, is_paid),
			processed_by = COALESCE($4, processed_by)
		WHERE id = $1
		RETURNING `+orderColumns,
		arg.ID, arg.ProductionStatus, arg.IsPaid, arg.ProcessedBy,
	)
	return scanOrder(row)
}

type ListOrdersByRestaurantRow struct {
	Order
	ProcessedByName pgtype.Text
}

func (q *Queries) ListOrdersByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]ListOrdersByRestaurantRow, error) {
	rows, err := q.db.Query(ctx, `
		SELECT o.id, o.restaurant_id, o.items, o.total_price, o.order_type, o.table_number,
			o.delivery_address, o.customer_name, o.customer_phone, o.production_status,
			o.is_paid, o.processed_by, o.created_at, s.display_name
		FROM orders o
		LEFT JOIN staff s ON s.id = o.processed_by
		WHERE o.restaurant_id = $1
		ORDER BY o.created_at DESC`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ListOrdersByRestaurantRow
	for rows.Next() {
		var r ListOrdersByRestaurantRow
		if err := rows.Scan(
			&r.ID, &r.RestaurantID, &r.Items, &r.TotalPrice, &r.OrderType,
			&r.TableNumber, &r.DeliveryAddress, &r.CustomerName, &r.CustomerPhone,
			&r.ProductionStatus, &r.IsPaid, &r.ProcessedBy, &r.CreatedAt,
			&r.ProcessedByName,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListStaffTransactions returns the most recent orders touched by a
// staff member, capped at 100.
func (q *Queries) ListStaffTransactions(ctx context.Context, staffID uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE processed_by = $1
		ORDER BY created_at DESC
		LIMIT 100`, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListOpenOrders returns non-terminal POS orders for a restaurant,
// used by the realtime board reconciliation snapshot.
func (q *Queries) ListOpenOrders(ctx context.Context, restaurantID uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE restaurant_id = $1
		  AND production_status NOT IN ('delivered', 'cancelled')
		ORDER BY created_at DESC`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
