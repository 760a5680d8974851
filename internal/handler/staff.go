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
)

// StaffStore defines the database methods needed by staff management
// handlers. Satisfied by *database.Queries.
type StaffStore interface {
	CreateStaff(ctx context.Context, arg database.CreateStaffParams) (database.Staff, error)
	ListStaffByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]database.Staff, error)
	DeleteStaff(ctx context.Context, arg database.DeleteStaffParams) (uuid.UUID, error)
}

// StaffHandler handles staff account management. Owner only.
type StaffHandler struct {
	store StaffStore
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(store StaffStore) *StaffHandler {
	return &StaffHandler{store: store}
}

// RegisterRoutes registers staff endpoints on the given Chi router.
// Expected to be mounted at /staff/{restaurantID} behind owner auth.
func (h *StaffHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Delete("/{staffID}", h.Delete)
}

// --- Request / Response types ---

type createStaffRequest struct {
	Username            string `json:"username"`
	Password            string `json:"password"`
	DisplayName         string `json:"display_name"`
	CanViewWhatsapp     bool   `json:"can_view_whatsapp"`
	CanViewCashier      bool   `json:"can_view_cashier"`
	CanViewKitchen      bool   `json:"can_view_kitchen"`
	CanManageStocks     bool   `json:"can_manage_stocks"`
	CanViewTransactions bool   `json:"can_view_transactions"`
	CanProcessPayments  bool   `json:"can_process_payments"`
	CanValidateOrders   bool   `json:"can_validate_orders"`
	CanCancelOrders     bool   `json:"can_cancel_orders"`
}

// staffResponse never includes the password.
type staffResponse struct {
	ID                  uuid.UUID `json:"id"`
	RestaurantID        uuid.UUID `json:"restaurant_id"`
	Username            string    `json:"username"`
	DisplayName         string    `json:"display_name"`
	CanViewWhatsapp     bool      `json:"can_view_whatsapp"`
	CanViewCashier      bool      `json:"can_view_cashier"`
	CanViewKitchen      bool      `json:"can_view_kitchen"`
	CanManageStocks     bool      `json:"can_manage_stocks"`
	CanViewTransactions bool      `json:"can_view_transactions"`
	CanProcessPayments  bool      `json:"can_process_payments"`
	CanValidateOrders   bool      `json:"can_validate_orders"`
	CanCancelOrders     bool      `json:"can_cancel_orders"`
	CreatedAt           time.Time `json:"created_at"`
}

// --- Handlers ---

// List handles GET /staff/{restaurantID}.
func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "restaurantID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	staff, err := h.store.ListStaffByRestaurant(r.Context(), restaurantID)
	if err != nil {
		log.Printf("ERROR: list staff: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]staffResponse, len(staff))
	for i, s := range staff {
		resp[i] = dbStaffToResponse(s)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /staff/{restaurantID}.
func (h *StaffHandler) Create(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "restaurantID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	var req createStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Username == "" || req.Password == "" || req.DisplayName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username, password and display_name are required"})
		return
	}

	staff, err := h.store.CreateStaff(r.Context(), database.CreateStaffParams{
		RestaurantID:        restaurantID,
		Username:            req.Username,
		Password:            req.Password,
		DisplayName:         req.DisplayName,
		CanViewWhatsapp:     req.CanViewWhatsapp,
		CanViewCashier:      req.CanViewCashier,
		CanViewKitchen:      req.CanViewKitchen,
		CanManageStocks:     req.CanManageStocks,
		CanViewTransactions: req.CanViewTransactions,
		CanProcessPayments:  req.CanProcessPayments,
		CanValidateOrders:   req.CanValidateOrders,
		CanCancelOrders:     req.CanCancelOrders,
	})
	if err != nil {
		log.Printf("ERROR: create staff: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, dbStaffToResponse(staff))
}

// Delete handles DELETE /staff/{restaurantID}/{staffID}.
func (h *StaffHandler) Delete(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "restaurantID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}
	staffID, err := uuid.Parse(chi.URLParam(r, "staffID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid staff ID"})
		return
	}

	// Scoping the delete by restaurant keeps one owner from removing
	// another tenant's account by guessing an ID.
	deleted, err := h.store.DeleteStaff(r.Context(), database.DeleteStaffParams{
		ID:           staffID,
		RestaurantID: restaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "staff not found"})
			return
		}
		log.Printf("ERROR: delete staff: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": deleted.String()})
}

func dbStaffToResponse(s database.Staff) staffResponse {
	return staffResponse{
		ID:                  s.ID,
		RestaurantID:        s.RestaurantID,
		Username:            s.Username,
		DisplayName:         s.DisplayName,
		CanViewWhatsapp:     s.CanViewWhatsapp,
		CanViewCashier:      s.CanViewCashier,
		CanViewKitchen:      s.CanViewKitchen,
		CanManageStocks:     s.CanManageStocks,
		CanViewTransactions: s.CanViewTransactions,
		CanProcessPayments:  s.CanProcessPayments,
		CanValidateOrders:   s.CanValidateOrders,
		CanCancelOrders:     s.CanCancelOrders,
		CreatedAt:           s.CreatedAt,
	}
}
