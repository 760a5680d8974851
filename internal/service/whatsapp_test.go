package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/nore-menu/api/internal/database"
	"github.com/nore-menu/api/internal/enum"
	"github.com/shopspring/decimal"
)

// mockWhatsappStore implements WhatsappStore with configurable behavior.
type mockWhatsappStore struct {
	createWhatsappOrderFn       func(ctx context.Context, arg database.CreateWhatsappOrderParams) (database.WhatsappOrder, error)
	getWhatsappOrderFn          func(ctx context.Context, id uuid.UUID) (database.WhatsappOrder, error)
	updateWhatsappOrderStatusFn func(ctx context.Context, arg database.UpdateWhatsappOrderStatusParams) (database.WhatsappOrder, error)
	updatePaymentFn             func(ctx context.Context, arg database.UpdateWhatsappOrderPaymentParams) (database.WhatsappOrder, error)
	createActivityLogFn         func(ctx context.Context, arg database.CreateActivityLogParams) (database.ActivityLog, error)
}

func (m *mockWhatsappStore) CreateWhatsappOrder(ctx context.Context, arg database.CreateWhatsappOrderParams) (database.WhatsappOrder, error) {
	return m.createWhatsappOrderFn(ctx, arg)
}
func (m *mockWhatsappStore) GetWhatsappOrder(ctx context.Context, id uuid.UUID) (database.WhatsappOrder, error) {
	return m.getWhatsappOrderFn(ctx, id)
}
func (m *mockWhatsappStore) UpdateWhatsappOrderStatus(ctx context.Context, arg database.UpdateWhatsappOrderStatusParams) (database.WhatsappOrder, error) {
	return m.updateWhatsappOrderStatusFn(ctx, arg)
}
func (m *mockWhatsappStore) UpdateWhatsappOrderPayment(ctx context.Context, arg database.UpdateWhatsappOrderPaymentParams) (database.WhatsappOrder, error) {
	return m.updatePaymentFn(ctx, arg)
}
func (m *mockWhatsappStore) CreateActivityLog(ctx context.Context, arg database.CreateActivityLogParams) (database.ActivityLog, error) {
	return m.createActivityLogFn(ctx, arg)
}

func defaultWhatsappStore() *mockWhatsappStore {
	return &mockWhatsappStore{
		createWhatsappOrderFn: func(ctx context.Context, arg database.CreateWhatsappOrderParams) (database.WhatsappOrder, error) {
			return database.WhatsappOrder{
				ID:           uuid.New(),
				RestaurantID: arg.RestaurantID,
				Items:        arg.Items,
				TotalPrice:   arg.TotalPrice,
				OrderType:    arg.OrderType,
				Status:       database.WhatsappStatusPENDING,
			}, nil
		},
		getWhatsappOrderFn: func(ctx context.Context, id uuid.UUID) (database.WhatsappOrder, error) {
			return database.WhatsappOrder{
				ID:           id,
				RestaurantID: uuid.New(),
				Status:       database.WhatsappStatusPENDING,
				TotalPrice:   makeNumeric("75000.00"),
			}, nil
		},
		updateWhatsappOrderStatusFn: func(ctx context.Context, arg database.UpdateWhatsappOrderStatusParams) (database.WhatsappOrder, error) {
			return database.WhatsappOrder{ID: arg.ID, RestaurantID: uuid.New(), Status: arg.Status}, nil
		},
		updatePaymentFn: func(ctx context.Context, arg database.UpdateWhatsappOrderPaymentParams) (database.WhatsappOrder, error) {
			return database.WhatsappOrder{ID: arg.ID, RestaurantID: uuid.New(), IsPaid: arg.IsPaid, PaymentStatus: arg.PaymentStatus}, nil
		},
		createActivityLogFn: func(ctx context.Context, arg database.CreateActivityLogParams) (database.ActivityLog, error) {
			return database.ActivityLog{ID: uuid.New(), RestaurantID: arg.RestaurantID, ActionType: arg.ActionType}, nil
		},
	}
}

// newTestWhatsappService wires one mock store as both the pool-backed
// store and the tx-scoped store, mirroring how Queries.WithTx shares
// the query set.
func newTestWhatsappService(store *mockWhatsappStore) (*WhatsappService, *mockTxBeginner, *mockTx) {
	tx := &mockTx{}
	pool := &mockTxBeginner{tx: tx}
	newStore := func(db database.DBTX) WhatsappStore { return store }
	return NewWhatsappService(pool, newStore, store), pool, tx
}

func basicIntentReq(restaurantID uuid.UUID) LogIntentRequest {
	return LogIntentRequest{
		RestaurantID: restaurantID,
		CustomerName: "Budi",
		TotalPrice:   decimal.NewFromInt(75000),
		Items: []OrderLineItem{
			{Name: "Ayam Bakar", Price: decimal.NewFromInt(37500), Quantity: 2},
		},
	}
}

// =====================
// Intent logging tests
// =====================

func TestLogIntent_DefaultsToDineIn(t *testing.T) {
	store := defaultWhatsappStore()

	var captured database.CreateWhatsappOrderParams
	store.createWhatsappOrderFn = func(ctx context.Context, arg database.CreateWhatsappOrderParams) (database.WhatsappOrder, error) {
		captured = arg
		return database.WhatsappOrder{ID: uuid.New(), Status: database.WhatsappStatusPENDING}, nil
	}

	svc, _, _ := newTestWhatsappService(store)
	req := basicIntentReq(uuid.New())
	req.OrderType = ""

	order, err := svc.LogIntent(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.OrderType != database.OrderTypeDineIn {
		t.Errorf("order_type: got %v, want dine_in", captured.OrderType)
	}
	if order.Status != database.WhatsappStatusPENDING {
		t.Errorf("status: got %v, want PENDING", order.Status)
	}
}

func TestLogIntent_EmptyItems(t *testing.T) {
	svc, _, _ := newTestWhatsappService(defaultWhatsappStore())

	req := basicIntentReq(uuid.New())
	req.Items = nil
	_, err := svc.LogIntent(context.Background(), req)
	if !errors.Is(err, ErrEmptyItems) {
		t.Fatalf("expected ErrEmptyItems, got: %v", err)
	}
}

func TestLogIntent_InvalidOrderType(t *testing.T) {
	svc, _, _ := newTestWhatsappService(defaultWhatsappStore())

	req := basicIntentReq(uuid.New())
	req.OrderType = "drive_thru"
	_, err := svc.LogIntent(context.Background(), req)
	if !errors.Is(err, ErrInvalidOrderType) {
		t.Fatalf("expected ErrInvalidOrderType, got: %v", err)
	}
}

func TestLogIntent_DuplicateSubmissionsBothLogged(t *testing.T) {
	store := defaultWhatsappStore()

	creates := 0
	store.createWhatsappOrderFn = func(ctx context.Context, arg database.CreateWhatsappOrderParams) (database.WhatsappOrder, error) {
		creates++
		return database.WhatsappOrder{ID: uuid.New(), Status: database.WhatsappStatusPENDING}, nil
	}

	svc, _, _ := newTestWhatsappService(store)
	req := basicIntentReq(uuid.New())
	if _, err := svc.LogIntent(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.LogIntent(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creates != 2 {
		t.Errorf("expected 2 intent rows for a resubmitted form, got %d", creates)
	}
}

// =====================
// Status update tests
// =====================

func TestUpdateWhatsappStatus_RejectsNonTerminalTarget(t *testing.T) {
	svc, _, _ := newTestWhatsappService(defaultWhatsappStore())

	for _, status := range []string{"PENDING", "validated", "DONE", ""} {
		_, err := svc.UpdateStatus(context.Background(), uuid.New(), status, nil)
		if !errors.Is(err, ErrInvalidStatus) {
			t.Errorf("status %q: expected ErrInvalidStatus, got: %v", status, err)
		}
	}
}

func TestUpdateWhatsappStatus_AnonymousSkipsAudit(t *testing.T) {
	store := defaultWhatsappStore()
	store.createActivityLogFn = func(ctx context.Context, arg database.CreateActivityLogParams) (database.ActivityLog, error) {
		t.Error("no audit entry should be written without a staff id")
		return database.ActivityLog{}, nil
	}

	svc, pool, _ := newTestWhatsappService(store)
	_, err := svc.UpdateStatus(context.Background(), uuid.New(), "VALIDATED", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.begins != 0 {
		t.Errorf("no transaction should be opened without a staff id, got %d begins", pool.begins)
	}
}

func TestUpdateWhatsappStatus_ValidationWritesAuditInTx(t *testing.T) {
	store := defaultWhatsappStore()
	restaurantID := uuid.New()
	store.updateWhatsappOrderStatusFn = func(ctx context.Context, arg database.UpdateWhatsappOrderStatusParams) (database.WhatsappOrder, error) {
		return database.WhatsappOrder{ID: arg.ID, RestaurantID: restaurantID, Status: arg.Status, TotalPrice: makeNumeric("75000.00")}, nil
	}

	var logged database.CreateActivityLogParams
	store.createActivityLogFn = func(ctx context.Context, arg database.CreateActivityLogParams) (database.ActivityLog, error) {
		logged = arg
		return database.ActivityLog{ID: uuid.New()}, nil
	}

	svc, pool, tx := newTestWhatsappService(store)
	staffID := uuid.New()
	orderID := uuid.New()

	updated, err := svc.UpdateStatus(context.Background(), orderID, "VALIDATED", &staffID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != database.WhatsappStatusVALIDATED {
		t.Errorf("status: got %v, want VALIDATED", updated.Status)
	}
	if pool.begins != 1 || !tx.committed {
		t.Errorf("expected one committed transaction, begins=%d committed=%v", pool.begins, tx.committed)
	}
	if logged.ActionType != enum.ActionOrderValidated {
		t.Errorf("action_type: got %v, want %v", logged.ActionType, enum.ActionOrderValidated)
	}
	if logged.StaffID != staffID {
		t.Errorf("staff_id: got %v, want %v", logged.StaffID, staffID)
	}
	if logged.RestaurantID != restaurantID {
		t.Errorf("restaurant_id: got %v, want %v", logged.RestaurantID, restaurantID)
	}

	var meta map[string]interface{}
	if err := json.Unmarshal(logged.Metadata, &meta); err != nil {
		t.Fatalf("metadata is not valid JSON: %v", err)
	}
	if meta["source"] != enum.SourceWhatsapp {
		t.Errorf("metadata source: got %v, want %v", meta["source"], enum.SourceWhatsapp)
	}
	if meta["status"] != "VALIDATED" {
		t.Errorf("metadata status: got %v, want VALIDATED", meta["status"])
	}
}

func TestUpdateWhatsappStatus_CancellationAction(t *testing.T) {
	store := defaultWhatsappStore()

	var logged database.CreateActivityLogParams
	store.createActivityLogFn = func(ctx context.Context, arg database.CreateActivityLogParams) (database.ActivityLog, error) {
		logged = arg
		return database.ActivityLog{ID: uuid.New()}, nil
	}

	svc, _, _ := newTestWhatsappService(store)
	staffID := uuid.New()
	_, err := svc.UpdateStatus(context.Background(), uuid.New(), "CANCELLED", &staffID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logged.ActionType != enum.ActionOrderCancelled {
		t.Errorf("action_type: got %v, want %v", logged.ActionType, enum.ActionOrderCancelled)
	}
}

func TestUpdateWhatsappStatus_AuditFailureAbortsMutation(t *testing.T) {
	store := defaultWhatsappStore()
	store.createActivityLogFn = func(ctx context.Context, arg database.CreateActivityLogParams) (database.ActivityLog, error) {
		return database.ActivityLog{}, errors.New("activity_logs insert failed")
	}

	svc, _, tx := newTestWhatsappService(store)
	staffID := uuid.New()
	_, err := svc.UpdateStatus(context.Background(), uuid.New(), "VALIDATED", &staffID)
	if err == nil {
		t.Fatal("expected error when the audit insert fails")
	}
	if tx.committed {
		t.Error("transaction must not commit when the audit insert fails")
	}
	if !tx.rolledBack {
		t.Error("transaction should be rolled back when the audit insert fails")
	}
}

func TestUpdateWhatsappStatus_CommitFailureSurfaces(t *testing.T) {
	store := defaultWhatsappStore()
	svc, pool, _ := newTestWhatsappService(store)
	pool.tx.commitErr = errors.New("connection reset")

	staffID := uuid.New()
	_, err := svc.UpdateStatus(context.Background(), uuid.New(), "VALIDATED", &staffID)
	if err == nil {
		t.Fatal("expected commit error to surface")
	}
}

func TestUpdateWhatsappStatus_DoubleValidationApplied(t *testing.T) {
	store := defaultWhatsappStore()
	store.getWhatsappOrderFn = func(ctx context.Context, id uuid.UUID) (database.WhatsappOrder, error) {
		return database.WhatsappOrder{ID: id, Status: database.WhatsappStatusVALIDATED, TotalPrice: makeNumeric("75000.00")}, nil
	}

	applied := false
	store.updateWhatsappOrderStatusFn = func(ctx context.Context, arg database.UpdateWhatsappOrderStatusParams) (database.WhatsappOrder, error) {
		applied = true
		return database.WhatsappOrder{ID: arg.ID, Status: arg.Status}, nil
	}

	svc, _, _ := newTestWhatsappService(store)
	_, err := svc.UpdateStatus(context.Background(), uuid.New(), "VALIDATED", nil)
	if err != nil {
		t.Fatalf("double validation should not error, got: %v", err)
	}
	if !applied {
		t.Error("double validation should still hit the store")
	}
}

// =====================
// Payment update tests
// =====================

func TestUpdateWhatsappPayment_DerivesLabel(t *testing.T) {
	store := defaultWhatsappStore()

	var captured database.UpdateWhatsappOrderPaymentParams
	store.updatePaymentFn = func(ctx context.Context, arg database.UpdateWhatsappOrderPaymentParams) (database.WhatsappOrder, error) {
		captured = arg
		return database.WhatsappOrder{ID: arg.ID, IsPaid: arg.IsPaid, PaymentStatus: arg.PaymentStatus}, nil
	}

	svc, _, _ := newTestWhatsappService(store)

	if _, err := svc.UpdatePayment(context.Background(), uuid.New(), true, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.PaymentStatus != enum.PaymentStatusPaid || !captured.IsPaid {
		t.Errorf("paid update: got %+v", captured)
	}

	if _, err := svc.UpdatePayment(context.Background(), uuid.New(), false, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.PaymentStatus != enum.PaymentStatusUnpaid || captured.IsPaid {
		t.Errorf("unpaid update: got %+v", captured)
	}
}

func TestUpdateWhatsappPayment_AuditAction(t *testing.T) {
	store := defaultWhatsappStore()

	var logged database.CreateActivityLogParams
	store.createActivityLogFn = func(ctx context.Context, arg database.CreateActivityLogParams) (database.ActivityLog, error) {
		logged = arg
		return database.ActivityLog{ID: uuid.New()}, nil
	}

	svc, pool, tx := newTestWhatsappService(store)
	staffID := uuid.New()
	_, err := svc.UpdatePayment(context.Background(), uuid.New(), true, &staffID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.begins != 1 || !tx.committed {
		t.Errorf("expected one committed transaction, begins=%d committed=%v", pool.begins, tx.committed)
	}
	if logged.ActionType != enum.ActionPaymentUpdated {
		t.Errorf("action_type: got %v, want %v", logged.ActionType, enum.ActionPaymentUpdated)
	}

	var meta map[string]interface{}
	if err := json.Unmarshal(logged.Metadata, &meta); err != nil {
		t.Fatalf("metadata is not valid JSON: %v", err)
	}
	if meta["isPaid"] != true {
		t.Errorf("metadata isPaid: got %v, want true", meta["isPaid"])
	}
}
