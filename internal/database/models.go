package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ProductionStatus is the POS order lifecycle state. Values are
// lowercase by convention of the POS origin.
type ProductionStatus string

const (
	ProductionStatusPending   ProductionStatus = "pending"
	ProductionStatusPreparing ProductionStatus = "preparing"
	ProductionStatusReady     ProductionStatus = "ready"
	ProductionStatusDelivered ProductionStatus = "delivered"
	ProductionStatusCancelled ProductionStatus = "cancelled"
)

// WhatsappStatus is the WhatsApp intent state. Values are uppercase by
// convention of the WhatsApp origin.
type WhatsappStatus string

const (
	WhatsappStatusPENDING   WhatsappStatus = "PENDING"
	WhatsappStatusVALIDATED WhatsappStatus = "VALIDATED"
	WhatsappStatusCANCELLED WhatsappStatus = "CANCELLED"
)

// OrderType is the fulfillment channel, shared by both origins.
type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine_in"
	OrderTypeTakeaway OrderType = "takeaway"
	OrderTypeDelivery OrderType = "delivery"
)

// Order is a kitchen-bound POS order. Line items are stored as a JSONB
// array; the total is caller-supplied and not recomputed from items.
type Order struct {
	ID               uuid.UUID
	RestaurantID     uuid.UUID
	Items            []byte
	TotalPrice       pgtype.Numeric
	OrderType        OrderType
	TableNumber      pgtype.Text
	DeliveryAddress  pgtype.Text
	CustomerName     pgtype.Text
	CustomerPhone    pgtype.Text
	ProductionStatus ProductionStatus
	IsPaid           bool
	ProcessedBy      pgtype.UUID
	CreatedAt        time.Time
}

// WhatsappOrder is a customer-drafted order intent logged before the
// WhatsApp redirect. It is not a kitchen order.
type WhatsappOrder struct {
	ID              uuid.UUID
	RestaurantID    uuid.UUID
	Items           []byte
	TotalPrice      pgtype.Numeric
	OrderType       OrderType
	TableNumber     pgtype.Text
	DeliveryAddress pgtype.Text
	CustomerName    pgtype.Text
	Status          WhatsappStatus
	IsPaid          bool
	PaymentStatus   string
	ProcessedBy     pgtype.UUID
	CreatedAt       time.Time
}

// ActivityLog is an append-only audit record of a staff mutation.
type ActivityLog struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	StaffID      uuid.UUID
	ActionType   string
	Description  string
	Metadata     []byte
	CreatedAt    time.Time
}

// DailyAggregate is a per-restaurant, per-day, per-metric counter.
type DailyAggregate struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	MetricDate   pgtype.Date
	MetricName   string
	DishID       pgtype.UUID
	Value        int64
}

// Staff is a POS terminal account scoped to one restaurant.
type Staff struct {
	ID                  uuid.UUID
	RestaurantID        uuid.UUID
	Username            string
	Password            string
	DisplayName         string
	CanViewWhatsapp     bool
	CanViewCashier      bool
	CanViewKitchen      bool
	CanManageStocks     bool
	CanViewTransactions bool
	CanProcessPayments  bool
	CanValidateOrders   bool
	CanCancelOrders     bool
	CreatedAt           time.Time
}

// Restaurant is one tenant.
type Restaurant struct {
	ID                uuid.UUID
	Name              string
	Slug              string
	WhatsappNumber    pgtype.Text
	PayBefore         bool
	OwnerEmail        string
	OwnerPasswordHash string
	CreatedAt         time.Time
}

// Dish is a menu item. Only availability is mutable through this API;
// full menu CRUD lives in the back office, out of scope here.
type Dish struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Name         string
	Price        pgtype.Numeric
	Category     pgtype.Text
	IsAvailable  bool
	CreatedAt    time.Time
}

// MenuEvent is a raw analytics event (QR scan, dish view, dish like).
type MenuEvent struct {
	ID           int64
	RestaurantID uuid.UUID
	DishID       pgtype.UUID
	EventType    string
	CreatedAt    time.Time
}

// UnifiedOrder is one row of the merged POS + WhatsApp read model.
// Status keeps each origin's casing; filters match case-insensitively.
type UnifiedOrder struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Source       string
	OrderType    OrderType
	Status       string
	CustomerName pgtype.Text
	TableNumber  pgtype.Text
	TotalPrice   pgtype.Numeric
	IsPaid       bool
	ProcessedBy  pgtype.UUID
	CreatedAt    time.Time
}
