package model

// SyncStatus reports whether a record was normalized and cached cleanly.
type SyncStatus string

const (
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusPending SyncStatus = "pending"
	SyncStatusError   SyncStatus = "error"
	SyncStatusNever   SyncStatus = "never"
)

// OrderStatus is the canonical order lifecycle state.
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ParseOrderStatus maps an upstream status string to a canonical status.
// Unknown or empty values fall back to pending.
func ParseOrderStatus(s string) OrderStatus {
	switch OrderStatus(s) {
	case OrderStatusDraft, OrderStatusPending, OrderStatusConfirmed,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return OrderStatus(s)
	default:
		return OrderStatusPending
	}
}

// Entity identifies one of the logical Gomanage collections.
type Entity string

const (
	EntityCustomers Entity = "customers"
	EntityProducts  Entity = "products"
	EntityOrders    Entity = "orders"
)

// Entities lists all known logical entities.
var Entities = []Entity{EntityCustomers, EntityProducts, EntityOrders}

// ParseEntity validates an entity name.
func ParseEntity(s string) (Entity, bool) {
	switch Entity(s) {
	case EntityCustomers, EntityProducts, EntityOrders:
		return Entity(s), true
	default:
		return "", false
	}
}
