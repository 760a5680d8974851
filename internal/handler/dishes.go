package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nore-menu/api/internal/database"
	"github.com/nore-menu/api/internal/enum"
	"github.com/nore-menu/api/internal/middleware"
	"github.com/nore-menu/api/internal/service"
)

// DishStore defines the database methods needed by dish handlers.
// Satisfied by *database.Queries (and its WithTx variant).
type DishStore interface {
	ListDishesByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]database.Dish, error)
	SetDishAvailability(ctx context.Context, arg database.SetDishAvailabilityParams) (database.Dish, error)
	CreateActivityLog(ctx context.Context, arg database.CreateActivityLogParams) (database.ActivityLog, error)
}

// NewDishStore creates a DishStore from a DBTX (pool or tx).
type NewDishStore func(db database.DBTX) DishStore

// DishHandler handles public menu reads and staff stock toggles.
type DishHandler struct {
	pool     service.TxBeginner
	newStore NewDishStore
	store    DishStore
}

// NewDishHandler creates a new DishHandler.
func NewDishHandler(pool service.TxBeginner, newStore NewDishStore, store DishStore) *DishHandler {
	return &DishHandler{pool: pool, newStore: newStore, store: store}
}

// RegisterPublicRoutes registers the customer menu endpoint.
func (h *DishHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/{restaurantID}", h.List)
}

// RegisterStaffRoutes registers the stock toggle. Expected to be
// mounted behind the staff identity middleware.
func (h *DishHandler) RegisterStaffRoutes(r chi.Router) {
	r.Patch("/{dishID}/availability", h.SetAvailability)
}

// --- Request / Response types ---

type setAvailabilityRequest struct {
	IsAvailable bool `json:"is_available"`
}

type dishResponse struct {
	ID           uuid.UUID `json:"id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Name         string    `json:"name"`
	Price        string    `json:"price"`
	Category     *string   `json:"category"`
	IsAvailable  bool      `json:"is_available"`
	CreatedAt    time.Time `json:"created_at"`
}

// --- Handlers ---

// List handles GET /dishes/{restaurantID}. Public: this is the menu a
// customer sees after scanning the QR code.
func (h *DishHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "restaurantID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	dishes, err := h.store.ListDishesByRestaurant(r.Context(), restaurantID)
	if err != nil {
		log.Printf("ERROR: list dishes: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]dishResponse, len(dishes))
	for i, d := range dishes {
		resp[i] = dbDishToResponse(d)
	}
	writeJSON(w, http.StatusOK, resp)
}

// SetAvailability handles PATCH /dishes/{dishID}/availability. The
// toggle and its audit entry commit in one transaction.
func (h *DishHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	dishID, err := uuid.Parse(chi.URLParam(r, "dishID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid dish ID"})
		return
	}

	staff := middleware.StaffFromContext(r.Context())
	if staff == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "staff identity required"})
		return
	}

	var req setAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	tx, err := h.pool.Begin(r.Context())
	if err != nil {
		log.Printf("ERROR: begin tx: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	defer tx.Rollback(r.Context()) //nolint:errcheck

	txStore := h.newStore(tx)
	dish, err := txStore.SetDishAvailability(r.Context(), database.SetDishAvailabilityParams{
		ID:          dishID,
		IsAvailable: req.IsAvailable,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "dish not found"})
			return
		}
		log.Printf("ERROR: set dish availability: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	metadata, err := json.Marshal(map[string]interface{}{
		"dishId":      dish.ID,
		"dishName":    dish.Name,
		"isAvailable": dish.IsAvailable,
	})
	if err != nil {
		log.Printf("ERROR: marshal stock metadata: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if _, err := txStore.CreateActivityLog(r.Context(), database.CreateActivityLogParams{
		RestaurantID: dish.RestaurantID,
		StaffID:      staff.ID,
		ActionType:   enum.ActionStockToggled,
		Description:  "Dish availability toggled",
		Metadata:     metadata,
	}); err != nil {
		log.Printf("ERROR: create activity log: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		log.Printf("ERROR: commit tx: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, dbDishToResponse(dish))
}

func dbDishToResponse(d database.Dish) dishResponse {
	return dishResponse{
		ID:           d.ID,
		RestaurantID: d.RestaurantID,
		Name:         d.Name,
		Price:        numericToString(d.Price),
		Category:     textPtr(d.Category),
		IsAvailable:  d.IsAvailable,
		CreatedAt:    d.CreatedAt,
	}
}
