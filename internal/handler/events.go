package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/nore-menu/api/internal/database"
	"github.com/nore-menu/api/internal/enum"
)

// MenuEventStore defines the database methods needed by the menu event
// handlers. Satisfied by *database.Queries.
type MenuEventStore interface {
	CreateMenuEvent(ctx context.Context, arg database.CreateMenuEventParams) (database.MenuEvent, error)
}

// EventHandler records raw menu analytics events from the public menu.
// These endpoints are unauthenticated by design: the QR menu is opened
// by anonymous customers.
type EventHandler struct {
	store MenuEventStore
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(store MenuEventStore) *EventHandler {
	return &EventHandler{store: store}
}

// RegisterRoutes registers event endpoints on the given Chi router.
func (h *EventHandler) RegisterRoutes(r chi.Router) {
	r.Post("/qr-scan", h.QRScan)
	r.Post("/dish-view", h.DishView)
	r.Post("/dish-like", h.DishLike)
}

type menuEventRequest struct {
	RestaurantID string `json:"restaurant_id"`
	DishID       string `json:"dish_id"`
}

// QRScan handles POST /analytics/qr-scan.
func (h *EventHandler) QRScan(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, enum.EventQRScan, false)
}

// DishView handles POST /analytics/dish-view.
func (h *EventHandler) DishView(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, enum.EventDishView, true)
}

// DishLike handles POST /analytics/dish-like.
func (h *EventHandler) DishLike(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, enum.EventDishLike, true)
}

func (h *EventHandler) record(w http.ResponseWriter, r *http.Request, eventType string, dishRequired bool) {
	var req menuEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	restaurantID, err := uuid.Parse(req.RestaurantID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	dishID := pgtype.UUID{}
	if dishRequired {
		id, err := uuid.Parse(req.DishID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid dish ID"})
			return
		}
		dishID = pgtype.UUID{Bytes: id, Valid: true}
	}

	event, err := h.store.CreateMenuEvent(r.Context(), database.CreateMenuEventParams{
		RestaurantID: restaurantID,
		DishID:       dishID,
		EventType:    eventType,
	})
	if err != nil {
		log.Printf("ERROR: record %s event: %v", eventType, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":         event.ID,
		"event_type": event.EventType,
	})
}
