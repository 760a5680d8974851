package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/nore-menu/api/internal/database"
	"github.com/shopspring/decimal"
)

// OpenOrderLister loads the non-terminal orders for one restaurant.
// Satisfied by *database.Queries; narrow interface for testability.
type OpenOrderLister interface {
	ListOpenOrders(ctx context.Context, restaurantID uuid.UUID) ([]database.Order, error)
}

// RoomBroadcaster is the slice of Hub the reconciler needs.
type RoomBroadcaster interface {
	ActiveRooms() []uuid.UUID
	BroadcastToRestaurant(restaurantID uuid.UUID, event Event)
}

// Reconciler periodically pushes a full open-orders snapshot into each
// active room. Individual change events can be lost across reconnects
// or a dropped send buffer; the snapshot guarantees every board
// converges to the database within one interval instead of relying on
// clients to notice and re-poll.
type Reconciler struct {
	hub   RoomBroadcaster
	store OpenOrderLister
}

// NewReconciler creates a new Reconciler.
func NewReconciler(hub RoomBroadcaster, store OpenOrderLister) *Reconciler {
	return &Reconciler{hub: hub, store: store}
}

type snapshotOrder struct {
	ID               uuid.UUID       `json:"id"`
	Items            json.RawMessage `json:"items"`
	TotalPrice       string          `json:"total_price"`
	OrderType        string          `json:"order_type"`
	TableNumber      *string         `json:"table_number"`
	DeliveryAddress  *string         `json:"delivery_address"`
	CustomerName     *string         `json:"customer_name"`
	ProductionStatus string          `json:"production_status"`
	IsPaid           bool            `json:"is_paid"`
	CreatedAt        time.Time       `json:"created_at"`
}

type syncPayload struct {
	Orders []snapshotOrder `json:"orders"`
}

// RunOnce snapshots every room with at least one connected board. A
// failing tenant is logged and skipped so one bad room can't starve
// the rest; the failures are joined into the returned error.
func (rc *Reconciler) RunOnce(ctx context.Context) error {
	var errs []error
	for _, rid := range rc.hub.ActiveRooms() {
		orders, err := rc.store.ListOpenOrders(ctx, rid)
		if err != nil {
			log.Printf("ERROR: reconcile board for restaurant %s: %v", rid, err)
			errs = append(errs, fmt.Errorf("restaurant %s: %w", rid, err))
			continue
		}

		snapshot := syncPayload{Orders: make([]snapshotOrder, len(orders))}
		for i, o := range orders {
			snapshot.Orders[i] = toSnapshotOrder(o)
		}

		payload, err := json.Marshal(snapshot)
		if err != nil {
			log.Printf("ERROR: marshal board snapshot for restaurant %s: %v", rid, err)
			errs = append(errs, fmt.Errorf("restaurant %s: %w", rid, err))
			continue
		}

		rc.hub.BroadcastToRestaurant(rid, Event{Type: EventSync, Payload: payload})
	}
	return errors.Join(errs...)
}

func toSnapshotOrder(o database.Order) snapshotOrder {
	s := snapshotOrder{
		ID:               o.ID,
		Items:            json.RawMessage(o.Items),
		TotalPrice:       numericToString(o.TotalPrice),
		OrderType:        string(o.OrderType),
		ProductionStatus: string(o.ProductionStatus),
		IsPaid:           o.IsPaid,
		CreatedAt:        o.CreatedAt,
	}
	if o.TableNumber.Valid {
		s.TableNumber = &o.TableNumber.String
	}
	if o.DeliveryAddress.Valid {
		s.DeliveryAddress = &o.DeliveryAddress.String
	}
	if o.CustomerName.Valid {
		s.CustomerName = &o.CustomerName.String
	}
	return s
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}
