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
	"github.com/nore-menu/api/internal/service"
	"github.com/shopspring/decimal"
)

// WhatsappServicer defines the service methods needed by WhatsApp
// intent handlers. Satisfied by *service.WhatsappService.
type WhatsappServicer interface {
	LogIntent(ctx context.Context, req service.LogIntentRequest) (database.WhatsappOrder, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string, staffID *uuid.UUID) (database.WhatsappOrder, error)
	UpdatePayment(ctx context.Context, orderID uuid.UUID, isPaid bool, staffID *uuid.UUID) (database.WhatsappOrder, error)
}

// WhatsappOrderStore defines the database methods needed by WhatsApp
// read handlers. Satisfied by *database.Queries.
type WhatsappOrderStore interface {
	ListWhatsappOrdersByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]database.WhatsappOrder, error)
	GetStaffByID(ctx context.Context, id uuid.UUID) (database.Staff, error)
}

// WhatsappHandler handles WhatsApp order intent endpoints.
type WhatsappHandler struct {
	svc   WhatsappServicer
	store WhatsappOrderStore
}

// NewWhatsappHandler creates a new WhatsappHandler.
func NewWhatsappHandler(svc WhatsappServicer, store WhatsappOrderStore) *WhatsappHandler {
	return &WhatsappHandler{svc: svc, store: store}
}

// RegisterPublicRoutes registers the endpoints reachable without a
// bearer token. The mutation routes identify staff through the request
// body instead, since POS terminals don't hold JWTs.
func (h *WhatsappHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/whatsapp-order", h.LogIntent)
	r.Patch("/whatsapp-orders/{orderID}", h.UpdateStatus)
	r.Patch("/whatsapp-orders/{orderID}/payment", h.UpdatePayment)
}

// --- Request / Response types ---

type logIntentRequest struct {
	RestaurantID    string             `json:"restaurant_id"`
	OrderType       string             `json:"order_type"`
	TableNumber     string             `json:"table_number"`
	DeliveryAddress string             `json:"delivery_address"`
	CustomerName    string             `json:"customer_name"`
	TotalPrice      decimal.Decimal    `json:"total_price"`
	Items           []orderItemRequest `json:"items"`
}

type updateWhatsappStatusRequest struct {
	Status  string `json:"status"`
	StaffID string `json:"staffId"`
}

type updateWhatsappPaymentRequest struct {
	IsPaid  bool   `json:"is_paid"`
	StaffID string `json:"staffId"`
}

type whatsappOrderResponse struct {
	ID              uuid.UUID       `json:"id"`
	RestaurantID    uuid.UUID       `json:"restaurant_id"`
	Items           json.RawMessage `json:"items"`
	TotalPrice      string          `json:"total_price"`
	OrderType       string          `json:"order_type"`
	TableNumber     *string         `json:"table_number"`
	DeliveryAddress *string         `json:"delivery_address"`
	CustomerName    *string         `json:"customer_name"`
	Status          string          `json:"status"`
	IsPaid          bool            `json:"is_paid"`
	PaymentStatus   string          `json:"payment_status"`
	ProcessedBy     *string         `json:"processed_by"`
	CreatedAt       time.Time       `json:"created_at"`
}

// --- Handlers ---

// LogIntent handles POST /analytics/whatsapp-order. Called by the
// public menu right before redirecting the customer to WhatsApp.
func (h *WhatsappHandler) LogIntent(w http.ResponseWriter, r *http.Request) {
	var req logIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	restaurantID, err := uuid.Parse(req.RestaurantID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	items := make([]service.OrderLineItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.OrderLineItem{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
			Note:     item.Note,
		}
	}

	order, err := h.svc.LogIntent(r.Context(), service.LogIntentRequest{
		RestaurantID:    restaurantID,
		OrderType:       req.OrderType,
		TableNumber:     req.TableNumber,
		DeliveryAddress: req.DeliveryAddress,
		CustomerName:    req.CustomerName,
		TotalPrice:      req.TotalPrice,
		Items:           items,
	})
	if err != nil {
		if isOrderValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: log whatsapp intent: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, dbWhatsappOrderToResponse(order))
}

// List handles GET /analytics/whatsapp-orders/{restaurantID}.
func (h *WhatsappHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "restaurantID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	orders, err := h.store.ListWhatsappOrdersByRestaurant(r.Context(), restaurantID)
	if err != nil {
		log.Printf("ERROR: list whatsapp orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]whatsappOrderResponse, len(orders))
	for i, o := range orders {
		resp[i] = dbWhatsappOrderToResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateStatus handles PATCH /analytics/whatsapp-orders/{orderID}.
func (h *WhatsappHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateWhatsappStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	staffID, ok := h.resolveStaff(w, r, req.StaffID)
	if !ok {
		return
	}

	updated, err := h.svc.UpdateStatus(r.Context(), orderID, req.Status, staffID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
			return
		}
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: update whatsapp order status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, dbWhatsappOrderToResponse(updated))
}

// UpdatePayment handles PATCH /analytics/whatsapp-orders/{orderID}/payment.
func (h *WhatsappHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateWhatsappPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	staffID, ok := h.resolveStaff(w, r, req.StaffID)
	if !ok {
		return
	}

	updated, err := h.svc.UpdatePayment(r.Context(), orderID, req.IsPaid, staffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: update whatsapp order payment: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, dbWhatsappOrderToResponse(updated))
}

// --- Helpers ---

// resolveStaff verifies an optional staffId from the request body. An
// empty ID means an anonymous caller (no audit trail); a present but
// unknown ID is rejected so the trail can't be forged onto a deleted
// account. Writes the error response itself and reports ok=false.
func (h *WhatsappHandler) resolveStaff(w http.ResponseWriter, r *http.Request, staffIDStr string) (*uuid.UUID, bool) {
	if staffIDStr == "" {
		return nil, true
	}

	staffID, err := uuid.Parse(staffIDStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid staff ID"})
		return nil, false
	}

	staff, err := h.store.GetStaffByID(r.Context(), staffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unknown staff"})
			return nil, false
		}
		log.Printf("ERROR: resolve staff: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return nil, false
	}
	return &staff.ID, true
}

func dbWhatsappOrderToResponse(o database.WhatsappOrder) whatsappOrderResponse {
	return whatsappOrderResponse{
		ID:              o.ID,
		RestaurantID:    o.RestaurantID,
		Items:           json.RawMessage(o.Items),
		TotalPrice:      numericToString(o.TotalPrice),
		OrderType:       string(o.OrderType),
		TableNumber:     textPtr(o.TableNumber),
		DeliveryAddress: textPtr(o.DeliveryAddress),
		CustomerName:    textPtr(o.CustomerName),
		Status:          string(o.Status),
		IsPaid:          o.IsPaid,
		PaymentStatus:   o.PaymentStatus,
		ProcessedBy:     uuidPtr(o.ProcessedBy),
		CreatedAt:       o.CreatedAt,
	}
}
