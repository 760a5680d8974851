package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/nore-menu/api/internal/database"
	"github.com/nore-menu/api/internal/enum"
	"github.com/shopspring/decimal"
)

// Errors returned by the order service.
var (
	ErrEmptyItems        = errors.New("items are required")
	ErrInvalidOrderType  = errors.New("invalid order_type")
	ErrInvalidQuantity   = errors.New("quantity must be > 0")
	ErrInvalidItemName   = errors.New("item name is required")
	ErrInvalidItemPrice  = errors.New("item price must be >= 0")
	ErrInvalidTotalPrice = errors.New("total_price must be >= 0")
	ErrInvalidStatus     = errors.New("invalid status")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed by the order service.
// Satisfied by *database.Queries.
type OrderStore interface {
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
}

// OrderLineItem is one line of an order as stored in the items JSONB
// column.
type OrderLineItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int32           `json:"quantity"`
	Note     string          `json:"note,omitempty"`
}

// CreateOrderRequest is the validated input for creating a POS order.
type CreateOrderRequest struct {
	RestaurantID    uuid.UUID
	OrderType       string
	TableNumber     string
	DeliveryAddress string
	CustomerName    string
	CustomerPhone   string
	TotalPrice      decimal.Decimal
	IsPaid          bool
	ProcessedBy     *uuid.UUID
	Items           []OrderLineItem
}

// UpdateOrderStatusRequest is the validated input for a status/payment
// mutation on a POS order.
type UpdateOrderStatusRequest struct {
	OrderID     uuid.UUID
	Status      string
	IsPaid      *bool
	ProcessedBy *uuid.UUID
}

// OrderService handles POS order business logic.
type OrderService struct {
	store OrderStore
}

// NewOrderService creates a new OrderService.
func NewOrderService(store OrderStore) *OrderService {
	return &OrderService{store: store}
}

// CreateOrder validates and inserts a new POS order with status
// pending. The total price is taken from the request as-is: the POS
// terminal is the trusted pricing authority and the server does not
// recompute it from line items.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (database.Order, error) {
	orderType, err := validateOrderType(req.OrderType)
	if err != nil {
		return database.Order{}, err
	}

	if len(req.Items) == 0 {
		return database.Order{}, ErrEmptyItems
	}
	for i, item := range req.Items {
		if item.Name == "" {
			return database.Order{}, fmt.Errorf("items[%d]: %w", i, ErrInvalidItemName)
		}
		if item.Quantity <= 0 {
			return database.Order{}, fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
		if item.Price.IsNegative() {
			return database.Order{}, fmt.Errorf("items[%d]: %w", i, ErrInvalidItemPrice)
		}
	}

	if req.TotalPrice.IsNegative() {
		return database.Order{}, ErrInvalidTotalPrice
	}

	items, err := json.Marshal(req.Items)
	if err != nil {
		return database.Order{}, fmt.Errorf("marshal items: %w", err)
	}

	// table_number only means something for dine_in, delivery_address
	// only for delivery. Off-channel values are dropped rather than
	// rejected.
	tableNumber := pgtype.Text{}
	if orderType == enum.OrderTypeDineIn && req.TableNumber != "" {
		tableNumber = pgtype.Text{String: req.TableNumber, Valid: true}
	}
	deliveryAddress := pgtype.Text{}
	if orderType == enum.OrderTypeDelivery && req.DeliveryAddress != "" {
		deliveryAddress = pgtype.Text{String: req.DeliveryAddress, Valid: true}
	}

	customerName := pgtype.Text{}
	if req.CustomerName != "" {
		customerName = pgtype.Text{String: req.CustomerName, Valid: true}
	}
	customerPhone := pgtype.Text{}
	if req.CustomerPhone != "" {
		customerPhone = pgtype.Text{String: req.CustomerPhone, Valid: true}
	}

	processedBy := pgtype.UUID{}
	if req.ProcessedBy != nil {
		processedBy = pgtype.UUID{Bytes: *req.ProcessedBy, Valid: true}
	}

	order, err := s.store.CreateOrder(ctx, database.CreateOrderParams{
		RestaurantID:    req.RestaurantID,
		Items:           items,
		TotalPrice:      decimalToNumeric(req.TotalPrice),
		OrderType:       database.OrderType(orderType),
		TableNumber:     tableNumber,
		DeliveryAddress: deliveryAddress,
		CustomerName:    customerName,
		CustomerPhone:   customerPhone,
		IsPaid:          req.IsPaid,
		ProcessedBy:     processedBy,
	})
	if err != nil {
		return database.Order{}, fmt.Errorf("create order: %w", err)
	}
	return order, nil
}

// UpdateStatus applies a status (and optionally payment) mutation.
// The status must be a known production status; the transition itself
// is permissive (see transition.go), with off-path moves logged.
// Concurrent edits are last-write-wins.
func (s *OrderService) UpdateStatus(ctx context.Context, req UpdateOrderStatusRequest) (database.Order, error) {
	next := database.ProductionStatus(req.Status)
	if !IsKnownProductionStatus(next) {
		return database.Order{}, ErrInvalidStatus
	}

	current, err := s.store.GetOrder(ctx, req.OrderID)
	if err != nil {
		return database.Order{}, err
	}

	if !IsCanonicalProductionTransition(current.ProductionStatus, next) {
		log.Printf("WARN: off-path order transition %s -> %s (order %s)", current.ProductionStatus, next, req.OrderID)
	}

	isPaid := pgtype.Bool{}
	if req.IsPaid != nil {
		isPaid = pgtype.Bool{Bool: *req.IsPaid, Valid: true}
	}
	processedBy := pgtype.UUID{}
	if req.ProcessedBy != nil {
		processedBy = pgtype.UUID{Bytes: *req.ProcessedBy, Valid: true}
	}

	return s.store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:               req.OrderID,
		ProductionStatus: next,
		IsPaid:           isPaid,
		ProcessedBy:      processedBy,
	})
}

// --- Helpers ---

func validateOrderType(s string) (string, error) {
	switch s {
	case enum.OrderTypeDineIn, enum.OrderTypeTakeaway, enum.OrderTypeDelivery:
		return s, nil
	}
	return "", ErrInvalidOrderType
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
