package database

import (
	"context"

	"github.com/google/uuid"
)

const activityLogColumns = `id, restaurant_id, staff_id, action_type, description, metadata, created_at`

type CreateActivityLogParams struct {
	RestaurantID uuid.UUID
	StaffID      uuid.UUID
	ActionType   string
	Description  string
	Metadata     []byte
}

// CreateActivityLog appends an audit record. Rows are never updated or
// deleted.
func (q *Queries) CreateActivityLog(ctx context.Context, arg CreateActivityLogParams) (ActivityLog, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO activity_logs (restaurant_id, staff_id, action_type, description, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+activityLogColumns,
		arg.RestaurantID, arg.StaffID, arg.ActionType, arg.Description, arg.Metadata,
	)
	var l ActivityLog
	err := row.Scan(&l.ID, &l.RestaurantID, &l.StaffID, &l.ActionType, &l.Description, &l.Metadata, &l.CreatedAt)
	return l, err
}

type ListActivityLogsParams struct {
	RestaurantID uuid.UUID
	Limit        int32
}

func (q *Queries) ListActivityLogs(ctx context.Context, arg ListActivityLogsParams) ([]ActivityLog, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+activityLogColumns+`
		FROM activity_logs
		WHERE restaurant_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, arg.RestaurantID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ActivityLog
	for rows.Next() {
		var l ActivityLog
		if err := rows.Scan(&l.ID, &l.RestaurantID, &l.StaffID, &l.ActionType, &l.Description, &l.Metadata, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
