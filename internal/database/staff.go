package database

import (
	"context"

	"github.com/google/uuid"
)

const staffColumns = `id, restaurant_id, username, password, display_name,
	can_view_whatsapp, can_view_cashier, can_view_kitchen, can_manage_stocks,
	can_view_transactions, can_process_payments, can_validate_orders,
	can_cancel_orders, created_at`

func scanStaff(row interface{ Scan(...interface{}) error }) (Staff, error) {
	var s Staff
	err := row.Scan(
		&s.ID, &s.RestaurantID, &s.Username, &s.Password, &s.DisplayName,
		&s.CanViewWhatsapp, &s.CanViewCashier, &s.CanViewKitchen, &s.CanManageStocks,
		&s.CanViewTransactions, &s.CanProcessPayments, &s.CanValidateOrders,
		&s.CanCancelOrders, &s.CreatedAt,
	)
	return s, err
}

type CreateStaffParams struct {
	RestaurantID        uuid.UUID
	Username            string
	Password            string
	DisplayName         string
	CanViewWhatsapp     bool
	CanViewCashier      bool
	CanViewKitchen      bool
	CanManageStocks     bool
	CanViewTransactions bool
	CanProcessPayments  bool
	CanValidateOrders   bool
	CanCancelOrders     bool
}

func (q *Queries) CreateStaff(ctx context.Context, arg CreateStaffParams) (Staff, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO staff (restaurant_id, username, password, display_name,
			can_view_whatsapp, can_view_cashier, can_view_kitchen, can_manage_stocks,
			can_view_transactions, can_process_payments, can_validate_orders, can_cancel_orders)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+staffColumns,
		arg.RestaurantID, arg.Username, arg.Password, arg.DisplayName,
		arg.CanViewWhatsapp, arg.CanViewCashier, arg.CanViewKitchen, arg.CanManageStocks,
		arg.CanViewTransactions, arg.CanProcessPayments, arg.CanValidateOrders, arg.CanCancelOrders,
	)
	return scanStaff(row)
}

func (q *Queries) GetStaffByID(ctx context.Context, id uuid.UUID) (Staff, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+staffColumns+`
		FROM staff
		WHERE id = $1`, id)
	return scanStaff(row)
}

type GetStaffByCredentialsParams struct {
	RestaurantID uuid.UUID
	Username     string
	Password     string
}

// GetStaffByCredentials compares the plaintext terminal password in
// the query. Staff passwords are low-entropy terminal codes scoped to
// one restaurant; the threat model accepts this tradeoff for a fast
// shared-terminal login flow.
func (q *Queries) GetStaffByCredentials(ctx context.Context, arg GetStaffByCredentialsParams) (Staff, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+staffColumns+`
		FROM staff
		WHERE restaurant_id = $1 AND username = $2 AND password = $3`,
		arg.RestaurantID, arg.Username, arg.Password)
	return scanStaff(row)
}

func (q *Queries) ListStaffByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]Staff, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+staffColumns+`
		FROM staff
		WHERE restaurant_id = $1
		ORDER BY created_at`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type DeleteStaffParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) DeleteStaff(ctx context.Context, arg DeleteStaffParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, `
		DELETE FROM staff
		WHERE id = $1 AND restaurant_id = $2
		RETURNING id`, arg.ID, arg.RestaurantID).Scan(&id)
	return id, err
}
