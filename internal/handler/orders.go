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
	"github.com/nore-menu/api/internal/middleware"
	"github.com/nore-menu/api/internal/service"
	"github.com/nore-menu/api/internal/ws"
	"github.com/shopspring/decimal"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (database.Order, error)
	UpdateStatus(ctx context.Context, req service.UpdateOrderStatusRequest) (database.Order, error)
}

// OrderStore defines the database methods needed by order read handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrdersByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]database.ListOrdersByRestaurantRow, error)
	ListStaffTransactions(ctx context.Context, staffID uuid.UUID) ([]database.Order, error)
}

// Broadcaster pushes live events to the order board.
// Satisfied by *ws.Hub.
type Broadcaster interface {
	BroadcastToRestaurant(restaurantID uuid.UUID, event ws.Event)
}

// OrderHandler handles POS order endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
	hub   Broadcaster
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore, hub Broadcaster) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, hub: hub}
}

// RegisterPublicRoutes registers the customer-facing endpoints.
func (h *OrderHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/{orderID}/status", h.GetStatus)
}

// RegisterStaffRoutes registers the terminal endpoints. Expected to be
// mounted behind the staff identity middleware.
func (h *OrderHandler) RegisterStaffRoutes(r chi.Router) {
	r.Post("/{restaurantID}", h.Create)
	r.Patch("/{orderID}/pos-status", h.UpdateStatus)
	r.Get("/admin/{restaurantID}", h.ListAdmin)
	r.Get("/transactions/{staffID}", h.ListTransactions)
}

// --- Request / Response types ---

type orderItemRequest struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int32           `json:"quantity"`
	Note     string          `json:"note"`
}

type createOrderRequest struct {
	OrderType       string             `json:"order_type"`
	TableNumber     string             `json:"table_number"`
	DeliveryAddress string             `json:"delivery_address"`
	CustomerName    string             `json:"customer_name"`
	CustomerPhone   string             `json:"customer_phone"`
	TotalPrice      decimal.Decimal    `json:"total_price"`
	IsPaid          bool               `json:"is_paid"`
	Items           []orderItemRequest `json:"items"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
	IsPaid *bool  `json:"is_paid"`
}

type orderResponse struct {
	ID               uuid.UUID       `json:"id"`
	RestaurantID     uuid.UUID       `json:"restaurant_id"`
	Items            json.RawMessage `json:"items"`
	TotalPrice       string          `json:"total_price"`
	OrderType        string          `json:"order_type"`
	TableNumber      *string         `json:"table_number"`
	DeliveryAddress  *string         `json:"delivery_address"`
	CustomerName     *string         `json:"customer_name"`
	CustomerPhone    *string         `json:"customer_phone"`
	ProductionStatus string          `json:"production_status"`
	IsPaid           bool            `json:"is_paid"`
	ProcessedBy      *string         `json:"processed_by"`
	CreatedAt        time.Time       `json:"created_at"`
}

// adminOrderResponse extends orderResponse with the resolved staff name
// for the back-office order list.
type adminOrderResponse struct {
	orderResponse
	ProcessedByName *string `json:"processed_by_name"`
}

type orderStatusResponse struct {
	ID               uuid.UUID `json:"id"`
	OrderType        string    `json:"order_type"`
	ProductionStatus string    `json:"production_status"`
	IsPaid           bool      `json:"is_paid"`
	CreatedAt        time.Time `json:"created_at"`
}

// --- Handlers ---

// Create handles POST /orders/{restaurantID}.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "restaurantID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	staff := middleware.StaffFromContext(r.Context())
	if staff == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "staff identity required"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
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

	order, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		RestaurantID:    restaurantID,
		OrderType:       req.OrderType,
		TableNumber:     req.TableNumber,
		DeliveryAddress: req.DeliveryAddress,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		TotalPrice:      req.TotalPrice,
		IsPaid:          req.IsPaid,
		ProcessedBy:     &staff.ID,
		Items:           items,
	})
	if err != nil {
		if isOrderValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: create order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.broadcastOrder(ws.EventOrderCreated, order)
	writeJSON(w, http.StatusCreated, dbOrderToResponse(order))
}

// GetStatus handles GET /orders/{orderID}/status. Public so customers
// can track their order without logging in; the payload is trimmed to
// lifecycle fields only.
func (h *OrderHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, orderStatusResponse{
		ID:               order.ID,
		OrderType:        string(order.OrderType),
		ProductionStatus: string(order.ProductionStatus),
		IsPaid:           order.IsPaid,
		CreatedAt:        order.CreatedAt,
	})
}

// UpdateStatus handles PATCH /orders/{orderID}/pos-status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	staff := middleware.StaffFromContext(r.Context())
	if staff == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "staff identity required"})
		return
	}

	var req updateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	updated, err := h.svc.UpdateStatus(r.Context(), service.UpdateOrderStatusRequest{
		OrderID:     orderID,
		Status:      req.Status,
		IsPaid:      req.IsPaid,
		ProcessedBy: &staff.ID,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
			return
		}
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: update order status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.broadcastOrder(ws.EventOrderUpdated, updated)
	writeJSON(w, http.StatusOK, dbOrderToResponse(updated))
}

// ListAdmin handles GET /orders/admin/{restaurantID}.
func (h *OrderHandler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "restaurantID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	rows, err := h.store.ListOrdersByRestaurant(r.Context(), restaurantID)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]adminOrderResponse, len(rows))
	for i, row := range rows {
		resp[i] = adminOrderResponse{
			orderResponse:   dbOrderToResponse(row.Order),
			ProcessedByName: textPtr(row.ProcessedByName),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListTransactions handles GET /orders/transactions/{staffID}.
func (h *OrderHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	staffID, err := uuid.Parse(chi.URLParam(r, "staffID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid staff ID"})
		return
	}

	orders, err := h.store.ListStaffTransactions(r.Context(), staffID)
	if err != nil {
		log.Printf("ERROR: list staff transactions: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = dbOrderToResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func (h *OrderHandler) broadcastOrder(eventType string, order database.Order) {
	payload, err := json.Marshal(dbOrderToResponse(order))
	if err != nil {
		log.Printf("ERROR: marshal order event: %v", err)
		return
	}
	h.hub.BroadcastToRestaurant(order.RestaurantID, ws.Event{Type: eventType, Payload: payload})
}

// isOrderValidationError checks if the error is a known validation
// error from the service layer that should result in 400 Bad Request.
func isOrderValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, service.ErrInvalidOrderType) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrInvalidItemName) ||
		errors.Is(err, service.ErrInvalidItemPrice) ||
		errors.Is(err, service.ErrInvalidTotalPrice)
}

func dbOrderToResponse(o database.Order) orderResponse {
	return orderResponse{
		ID:               o.ID,
		RestaurantID:     o.RestaurantID,
		Items:            json.RawMessage(o.Items),
		TotalPrice:       numericToString(o.TotalPrice),
		OrderType:        string(o.OrderType),
		TableNumber:      textPtr(o.TableNumber),
		DeliveryAddress:  textPtr(o.DeliveryAddress),
		CustomerName:     textPtr(o.CustomerName),
		CustomerPhone:    textPtr(o.CustomerPhone),
		ProductionStatus: string(o.ProductionStatus),
		IsPaid:           o.IsPaid,
		ProcessedBy:      uuidPtr(o.ProcessedBy),
		CreatedAt:        o.CreatedAt,
	}
}
