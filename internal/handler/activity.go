package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nore-menu/api/internal/database"
)

// ActivityStore defines the database methods needed by the activity
// feed handler. Satisfied by *database.Queries.
type ActivityStore interface {
	ListActivityLogs(ctx context.Context, arg database.ListActivityLogsParams) ([]database.ActivityLog, error)
}

// ActivityHandler serves the staff action audit feed.
type ActivityHandler struct {
	store ActivityStore
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(store ActivityStore) *ActivityHandler {
	return &ActivityHandler{store: store}
}

type activityLogResponse struct {
	ID          uuid.UUID       `json:"id"`
	StaffID     uuid.UUID       `json:"staff_id"`
	ActionType  string          `json:"action_type"`
	Description string          `json:"description"`
	Metadata    json.RawMessage `json:"metadata"`
	CreatedAt   time.Time       `json:"created_at"`
}

// List handles GET /analytics/activity/{restaurantID}.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "restaurantID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 200 {
		limit = 200
	}

	logs, err := h.store.ListActivityLogs(r.Context(), database.ListActivityLogsParams{
		RestaurantID: restaurantID,
		Limit:        int32(limit),
	})
	if err != nil {
		log.Printf("ERROR: list activity logs: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]activityLogResponse, len(logs))
	for i, l := range logs {
		resp[i] = activityLogResponse{
			ID:          l.ID,
			StaffID:     l.StaffID,
			ActionType:  l.ActionType,
			Description: l.Description,
			Metadata:    json.RawMessage(l.Metadata),
			CreatedAt:   l.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
