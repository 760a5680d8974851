package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// unifiedOrdersCTE merges both order origins into one feed. POS status
// stays lowercase and WhatsApp status uppercase; callers filter with
// ILIKE to bridge the casing conventions.
const unifiedOrdersCTE = `
	WITH unified AS (
		SELECT id, restaurant_id, 'POS'::text AS source, order_type,
			production_status::text AS status, customer_name, table_number,
			total_price, is_paid, processed_by, created_at
		FROM orders
		UNION ALL
		SELECT id, restaurant_id, 'WHATSAPP'::text, order_type,
			status::text, customer_name, table_number,
			total_price, is_paid, processed_by, created_at
		FROM whatsapp_orders
	)`

const unifiedOrderFilters = `
	WHERE restaurant_id = $1
	  AND ($2::text = 'ALL' OR source = $2)
	  AND ($3::text IS NULL OR order_type = $3)
	  AND ($4::text IS NULL OR status ILIKE $4)
	  AND ($5::text IS NULL
		   OR customer_name ILIKE '%' || $5 || '%'
		   OR id::text ILIKE '%' || $5 || '%')
	  AND ($6::timestamptz IS NULL OR created_at >= $6)
	  AND ($7::timestamptz IS NULL OR created_at <= $7)`

type ListUnifiedOrdersParams struct {
	RestaurantID uuid.UUID
	Source       string
	OrderType    pgtype.Text
	Status       pgtype.Text
	Search       pgtype.Text
	DateStart    pgtype.Timestamptz
	DateEnd      pgtype.Timestamptz
	Limit        int32
	Offset       int32
}

func (q *Queries) ListUnifiedOrders(ctx context.Context, arg ListUnifiedOrdersParams) ([]UnifiedOrder, error) {
	rows, err := q.db.Query(ctx, unifiedOrdersCTE+`
		SELECT id, restaurant_id, source, order_type, status, customer_name,
			table_number, total_price, is_paid, processed_by, created_at
		FROM unified`+unifiedOrderFilters+`
		ORDER BY created_at DESC
		LIMIT $8 OFFSET $9`,
		arg.RestaurantID, arg.Source, arg.OrderType, arg.Status, arg.Search,
		arg.DateStart, arg.DateEnd, arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UnifiedOrder
	for rows.Next() {
		var u UnifiedOrder
		if err := rows.Scan(
			&u.ID, &u.RestaurantID, &u.Source, &u.OrderType, &u.Status,
			&u.CustomerName, &u.TableNumber, &u.TotalPrice, &u.IsPaid,
			&u.ProcessedBy, &u.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type CountUnifiedOrdersParams struct {
	RestaurantID uuid.UUID
	Source       string
	OrderType    pgtype.Text
	Status       pgtype.Text
	Search       pgtype.Text
	DateStart    pgtype.Timestamptz
	DateEnd      pgtype.Timestamptz
}

// CountUnifiedOrders runs the same filters as ListUnifiedOrders in
// exact count mode so pagination totals match the row set.
func (q *Queries) CountUnifiedOrders(ctx context.Context, arg CountUnifiedOrdersParams) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, unifiedOrdersCTE+`
		SELECT COUNT(*) FROM unified`+unifiedOrderFilters,
		arg.RestaurantID, arg.Source, arg.OrderType, arg.Status, arg.Search,
		arg.DateStart, arg.DateEnd,
	).Scan(&count)
	return count, err
}

type GetPosOrderStatsRow struct {
	Total     int64
	Served    int64
	Cancelled int64
	Revenue   pgtype.Numeric
}

// GetPosOrderStats tallies unfiltered POS KPIs. Revenue counts only
// delivered orders.
func (q *Queries) GetPosOrderStats(ctx context.Context, restaurantID uuid.UUID) (GetPosOrderStatsRow, error) {
	var r GetPosOrderStatsRow
	err := q.db.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE production_status = 'delivered'),
			COUNT(*) FILTER (WHERE production_status = 'cancelled'),
			COALESCE(SUM(total_price) FILTER (WHERE production_status = 'delivered'), 0)
		FROM orders
		WHERE restaurant_id = $1`, restaurantID,
	).Scan(&r.Total, &r.Served, &r.Cancelled, &r.Revenue)
	return r, err
}

type GetWhatsappOrderStatsRow struct {
	Total     int64
	Validated int64
	Cancelled int64
	Revenue   pgtype.Numeric
}

// GetWhatsappOrderStats tallies unfiltered WhatsApp KPIs. Revenue
// counts only VALIDATED intents.
func (q *Queries) GetWhatsappOrderStats(ctx context.Context, restaurantID uuid.UUID) (GetWhatsappOrderStatsRow, error) {
	var r GetWhatsappOrderStatsRow
	err := q.db.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'VALIDATED'),
			COUNT(*) FILTER (WHERE status = 'CANCELLED'),
			COALESCE(SUM(total_price) FILTER (WHERE status = 'VALIDATED'), 0)
		FROM whatsapp_orders
		WHERE restaurant_id = $1`, restaurantID,
	).Scan(&r.Total, &r.Validated, &r.Cancelled, &r.Revenue)
	return r, err
}
