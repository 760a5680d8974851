package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/nore-menu/api/internal/database"
	"github.com/nore-menu/api/internal/enum"
	"github.com/shopspring/decimal"
)

// WhatsappStore defines the DB methods needed by the WhatsApp intent
// service. Satisfied by *database.Queries (and its WithTx variant).
type WhatsappStore interface {
	CreateWhatsappOrder(ctx context.Context, arg database.CreateWhatsappOrderParams) (database.WhatsappOrder, error)
	GetWhatsappOrder(ctx context.Context, id uuid.UUID) (database.WhatsappOrder, error)
	UpdateWhatsappOrderStatus(ctx context.Context, arg database.UpdateWhatsappOrderStatusParams) (database.WhatsappOrder, error)
	UpdateWhatsappOrderPayment(ctx context.Context, arg database.UpdateWhatsappOrderPaymentParams) (database.WhatsappOrder, error)
	CreateActivityLog(ctx context.Context, arg database.CreateActivityLogParams) (database.ActivityLog, error)
}

// NewWhatsappStore creates a WhatsappStore from a DBTX (pool or tx).
type NewWhatsappStore func(db database.DBTX) WhatsappStore

// LogIntentRequest is the validated input for logging a WhatsApp order
// intent before the customer is redirected to the deep link.
type LogIntentRequest struct {
	RestaurantID    uuid.UUID
	OrderType       string
	TableNumber     string
	DeliveryAddress string
	CustomerName    string
	TotalPrice      decimal.Decimal
	Items           []OrderLineItem
}

// WhatsappService handles WhatsApp intent lifecycle logic.
type WhatsappService struct {
	pool     TxBeginner
	newStore NewWhatsappStore
	store    WhatsappStore
}

// NewWhatsappService creates a new WhatsappService.
func NewWhatsappService(pool TxBeginner, newStore NewWhatsappStore, store WhatsappStore) *WhatsappService {
	return &WhatsappService{pool: pool, newStore: newStore, store: store}
}

// LogIntent inserts a new intent with status PENDING. There is no
// idempotency key: a resubmitted form logs a second intent, and staff
// sort it out at validation time.
func (s *WhatsappService) LogIntent(ctx context.Context, req LogIntentRequest) (database.WhatsappOrder, error) {
	orderType := req.OrderType
	if orderType == "" {
		orderType = enum.OrderTypeDineIn
	}
	if _, err := validateOrderType(orderType); err != nil {
		return database.WhatsappOrder{}, err
	}

	if len(req.Items) == 0 {
		return database.WhatsappOrder{}, ErrEmptyItems
	}
	for i, item := range req.Items {
		if item.Name == "" {
			return database.WhatsappOrder{}, fmt.Errorf("items[%d]: %w", i, ErrInvalidItemName)
		}
		if item.Quantity <= 0 {
			return database.WhatsappOrder{}, fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
	}
	if req.TotalPrice.IsNegative() {
		return database.WhatsappOrder{}, ErrInvalidTotalPrice
	}

	items, err := json.Marshal(req.Items)
	if err != nil {
		return database.WhatsappOrder{}, fmt.Errorf("marshal items: %w", err)
	}

	tableNumber := pgtype.Text{}
	if req.TableNumber != "" {
		tableNumber = pgtype.Text{String: req.TableNumber, Valid: true}
	}
	deliveryAddress := pgtype.Text{}
	if req.DeliveryAddress != "" {
		deliveryAddress = pgtype.Text{String: req.DeliveryAddress, Valid: true}
	}
	customerName := pgtype.Text{}
	if req.CustomerName != "" {
		customerName = pgtype.Text{String: req.CustomerName, Valid: true}
	}

	order, err := s.store.CreateWhatsappOrder(ctx, database.CreateWhatsappOrderParams{
		RestaurantID:    req.RestaurantID,
		Items:           items,
		TotalPrice:      decimalToNumeric(req.TotalPrice),
		OrderType:       database.OrderType(orderType),
		TableNumber:     tableNumber,
		DeliveryAddress: deliveryAddress,
		CustomerName:    customerName,
	})
	if err != nil {
		return database.WhatsappOrder{}, fmt.Errorf("create whatsapp order: %w", err)
	}
	return order, nil
}

// UpdateStatus validates or cancels an intent. When a staff member is
// identified, the status change and its audit log entry are committed
// in one transaction so an order can never lose its trail to a crash
// between the two writes.
//
// Validating an intent does not create a POS order; the kitchen board
// is driven only by the orders table, and staff re-enter validated
// intents at the terminal.
func (s *WhatsappService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string, staffID *uuid.UUID) (database.WhatsappOrder, error) {
	next := database.WhatsappStatus(status)
	if next != database.WhatsappStatusVALIDATED && next != database.WhatsappStatusCANCELLED {
		return database.WhatsappOrder{}, ErrInvalidStatus
	}

	current, err := s.store.GetWhatsappOrder(ctx, orderID)
	if err != nil {
		return database.WhatsappOrder{}, err
	}
	if !IsCanonicalWhatsappTransition(current.Status, next) {
		log.Printf("WARN: off-path whatsapp transition %s -> %s (order %s)", current.Status, next, orderID)
	}

	params := database.UpdateWhatsappOrderStatusParams{
		ID:     orderID,
		Status: next,
	}

	if staffID == nil {
		return s.store.UpdateWhatsappOrderStatus(ctx, params)
	}
	params.ProcessedBy = pgtype.UUID{Bytes: *staffID, Valid: true}

	action := enum.ActionOrderValidated
	description := "WhatsApp order validated"
	if next == database.WhatsappStatusCANCELLED {
		action = enum.ActionOrderCancelled
		description = "WhatsApp order cancelled"
	}
	metadata, err := json.Marshal(map[string]interface{}{
		"orderId":    orderID,
		"status":     string(next),
		"source":     enum.SourceWhatsapp,
		"totalPrice": numericToDecimal(current.TotalPrice),
	})
	if err != nil {
		return database.WhatsappOrder{}, fmt.Errorf("marshal metadata: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.WhatsappOrder{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	txStore := s.newStore(tx)
	updated, err := txStore.UpdateWhatsappOrderStatus(ctx, params)
	if err != nil {
		return database.WhatsappOrder{}, err
	}
	if _, err := txStore.CreateActivityLog(ctx, database.CreateActivityLogParams{
		RestaurantID: updated.RestaurantID,
		StaffID:      *staffID,
		ActionType:   action,
		Description:  description,
		Metadata:     metadata,
	}); err != nil {
		return database.WhatsappOrder{}, fmt.Errorf("create activity log: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.WhatsappOrder{}, fmt.Errorf("commit tx: %w", err)
	}
	return updated, nil
}

// UpdatePayment marks an intent paid or unpaid, deriving the
// payment_status label from the flag. Same transactional audit rule
// as UpdateStatus.
func (s *WhatsappService) UpdatePayment(ctx context.Context, orderID uuid.UUID, isPaid bool, staffID *uuid.UUID) (database.WhatsappOrder, error) {
	paymentStatus := enum.PaymentStatusUnpaid
	if isPaid {
		paymentStatus = enum.PaymentStatusPaid
	}

	params := database.UpdateWhatsappOrderPaymentParams{
		ID:            orderID,
		IsPaid:        isPaid,
		PaymentStatus: paymentStatus,
	}

	if staffID == nil {
		return s.store.UpdateWhatsappOrderPayment(ctx, params)
	}
	params.ProcessedBy = pgtype.UUID{Bytes: *staffID, Valid: true}

	current, err := s.store.GetWhatsappOrder(ctx, orderID)
	if err != nil {
		return database.WhatsappOrder{}, err
	}
	metadata, err := json.Marshal(map[string]interface{}{
		"orderId":    orderID,
		"isPaid":     isPaid,
		"source":     enum.SourceWhatsapp,
		"totalPrice": numericToDecimal(current.TotalPrice),
	})
	if err != nil {
		return database.WhatsappOrder{}, fmt.Errorf("marshal metadata: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.WhatsappOrder{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	txStore := s.newStore(tx)
	updated, err := txStore.UpdateWhatsappOrderPayment(ctx, params)
	if err != nil {
		return database.WhatsappOrder{}, err
	}
	if _, err := txStore.CreateActivityLog(ctx, database.CreateActivityLogParams{
		RestaurantID: updated.RestaurantID,
		StaffID:      *staffID,
		ActionType:   enum.ActionPaymentUpdated,
		Description:  "WhatsApp order payment updated",
		Metadata:     metadata,
	}); err != nil {
		return database.WhatsappOrder{}, fmt.Errorf("create activity log: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.WhatsappOrder{}, fmt.Errorf("commit tx: %w", err)
	}
	return updated, nil
}
