package store

import (
	"errors"

	"github.com/restolive/backend/models"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("store: row not found")
	// ErrStatusConflict is returned by UpdateOrderStatus when the conditional
	// update matched zero rows, i.e. the order's current status is no longer
	// the one the caller observed.
	ErrStatusConflict = errors.New("store: order status changed concurrently")
)

// Store is the durable order storage collaborator. It deliberately exposes no
// multi-row transaction spanning CreateOrder and CreateOrderItems; the order
// writer owns the two-step protocol and its compensation.
type Store interface {
	// CreateOrder inserts the order row together with its initial status
	// event. Items on the struct are ignored; they go through
	// CreateOrderItems.
	CreateOrder(order *models.Order) error
	// CreateOrderItems inserts the item batch for an already-created order.
	CreateOrderItems(items []models.OrderItem) error
	// DeleteOrder is the compensating delete for a failed item batch.
	DeleteOrder(orderID uint) error

	GetOrder(orderID uint) (*models.Order, error)
	GetBranch(branchID uint) (*models.Branch, error)
	// ListRecentOrders returns the latest orders (items and history
	// preloaded), newest first. This is the resync snapshot.
	ListRecentOrders(limit int) ([]models.Order, error)

	// ListAvailability returns the live availability flag per menu item id.
	// Ids missing from the result no longer exist in the catalog.
	ListAvailability(menuItemIDs []uint) (map[uint]bool, error)

	// UpdateOrderStatus advances an order with a conditional update
	// (WHERE status = from). Zero rows affected yields ErrStatusConflict and
	// nothing is written. On success the matching status event is appended
	// and the fresh order returned.
	UpdateOrderStatus(orderID uint, from, to models.Status, notes string) (*models.Order, error)

	// GenerateOrderNumber returns the next human-facing order number.
	GenerateOrderNumber() (string, error)
}
