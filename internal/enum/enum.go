package enum

// Lifecycle state vocabularies live as typed constants next to the
// models in internal/database. This package holds the plain string
// labels shared across handlers, services and audit metadata.

const (
	OrderTypeDineIn   = "dine_in"
	OrderTypeTakeaway = "takeaway"
	OrderTypeDelivery = "delivery"
)

const (
	PaymentStatusPaid   = "PAID"
	PaymentStatusUnpaid = "UNPAID"
)

const (
	ActionOrderValidated = "ORDER_VALIDATED"
	ActionOrderCancelled = "ORDER_CANCELLED"
	ActionPaymentUpdated = "PAYMENT_UPDATED"
	ActionStockToggled   = "STOCK_TOGGLED"
)

const (
	SourcePOS      = "POS"
	SourceWhatsapp = "WHATSAPP"
	SourceAll      = "ALL"
)

const (
	MetricQRScans  = "qr_scans"
	MetricDishView = "dish_view"
)

const (
	EventQRScan   = "qr_scan"
	EventDishView = "dish_view"
	EventDishLike = "dish_like"
)

const (
	RoleOwner = "OWNER"
	RoleStaff = "STAFF"
)
