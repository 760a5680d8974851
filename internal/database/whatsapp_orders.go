package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const whatsappOrderColumns = `id, restaurant_id, items, total_price, order_type, table_number,
	delivery_address, customer_name, status, is_paid, payment_status, processed_by, created_at`

func scanWhatsappOrder(row interface{ Scan(...interface{}) error }) (WhatsappOrder, error) {
	var o WhatsappOrder
	err := row.Scan(
		&o.ID, &o.RestaurantID, &o.Items, &o.TotalPrice, &o.OrderType,
		&o.TableNumber, &o.DeliveryAddress, &o.CustomerName, &o.Status,
		&o.IsPaid, &o.PaymentStatus, &o.ProcessedBy, &o.CreatedAt,
	)
	return o, err
}

type CreateWhatsappOrderParams struct {
	RestaurantID    uuid.UUID
	Items           []byte
	TotalPrice      pgtype.Numeric
	OrderType       OrderType
	TableNumber     pgtype.Text
	DeliveryAddress pgtype.Text
	CustomerName    pgtype.Text
}

func (q *Queries) CreateWhatsappOrder(ctx context.Context, arg CreateWhatsappOrderParams) (WhatsappOrder, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO whatsapp_orders (restaurant_id, items, total_price, order_type, table_number,
			delivery_address, customer_name, status, is_paid, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'PENDING', false, 'UNPAID')
		RETURNING `+whatsappOrderColumns,
		arg.RestaurantID, arg.Items, arg.TotalPrice, arg.OrderType, arg.TableNumber,
		arg.DeliveryAddress, arg.CustomerName,
	)
	return scanWhatsappOrder(row)
}

func (q *Queries) GetWhatsappOrder(ctx context.Context, id uuid.UUID) (WhatsappOrder, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+whatsappOrderColumns+`
		FROM whatsapp_orders
		WHERE id = $1`, id)
	return scanWhatsappOrder(row)
}

type UpdateWhatsappOrderStatusParams struct {
	ID          uuid.UUID
	Status      WhatsappStatus
	ProcessedBy pgtype.UUID
}

// UpdateWhatsappOrderStatus sets status and processed_by without
// checking the current state. Double-validation and validate-after-
// cancel are accepted; that permissiveness is policy, enforced (or
// not) one layer up.
func (q *Queries) UpdateWhatsappOrderStatus(ctx context.Context, arg UpdateWhatsappOrderStatusParams) (WhatsappOrder, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE whatsapp_orders
		SET status = $2,
			processed_by = COALESCE($3, processed_by)
		WHERE id = $1
		RETURNING `+whatsappOrderColumns,
		arg.ID, arg.Status, arg.ProcessedBy,
	)
	return scanWhatsappOrder(row)
}

type UpdateWhatsappOrderPaymentParams struct {
	ID            uuid.UUID
	IsPaid        bool
	PaymentStatus string
	ProcessedBy   pgtype.UUID
}

func (q *Queries) UpdateWhatsappOrderPayment(ctx context.Context, arg UpdateWhatsappOrderPaymentParams) (WhatsappOrder, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE whatsapp_orders
		SET is_paid = $2,
			payment_status = $3,
			processed_by = COALESCE($4, processed_by)
		WHERE id = $1
		RETURNING `+whatsappOrderColumns,
		arg.ID, arg.IsPaid, arg.PaymentStatus, arg.ProcessedBy,
	)
	return scanWhatsappOrder(row)
}

func (q *Queries) ListWhatsappOrdersByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]WhatsappOrder, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+whatsappOrderColumns+`
		FROM whatsapp_orders
		WHERE restaurant_id = $1
		ORDER BY created_at DESC`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WhatsappOrder
	for rows.Next() {
		o, err := scanWhatsappOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
