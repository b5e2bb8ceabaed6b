package orders

import (
	"errors"

	"github.com/restolive/backend/models"
	"github.com/restolive/backend/store"
)

// stubStore lets tests script each store operation, including forced
// failures at either step of the two-step write.
type stubStore struct {
	nextID uint
	orders map[uint]*models.Order

	createOrderErr error
	createItemsErr error
	deleteErr      error

	createdItems []models.OrderItem
	deletedIDs   []uint

	availability    map[uint]bool
	availabilityErr error

	orderNumber    string
	orderNumberErr error

	// forcedConflicts makes the next N status updates lose the conditional
	// write regardless of the stored status.
	forcedConflicts int

	branch *models.Branch
}

func newStubStore() *stubStore {
	return &stubStore{
		orders:       make(map[uint]*models.Order),
		availability: make(map[uint]bool),
		orderNumber:  "ORD-20260828-0001",
		branch:       &models.Branch{ID: 1, RestaurantName: "Warung Sedap"},
	}
}

func (s *stubStore) CreateOrder(order *models.Order) error {
	if s.createOrderErr != nil {
		return s.createOrderErr
	}
	s.nextID++
	order.ID = s.nextID
	order.Status = models.StatusPending
	order.StatusHistory = []models.StatusEvent{
		{OrderID: order.ID, Status: models.StatusPending, CreatedAt: order.CreatedAt},
	}
	copied := *order
	s.orders[order.ID] = &copied
	return nil
}

func (s *stubStore) CreateOrderItems(items []models.OrderItem) error {
	if s.createItemsErr != nil {
		return s.createItemsErr
	}
	s.createdItems = append(s.createdItems, items...)
	return nil
}

func (s *stubStore) DeleteOrder(orderID uint) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deletedIDs = append(s.deletedIDs, orderID)
	delete(s.orders, orderID)
	return nil
}

func (s *stubStore) GetOrder(orderID uint) (*models.Order, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *stubStore) GetBranch(branchID uint) (*models.Branch, error) {
	if s.branch == nil || s.branch.ID != branchID {
		return nil, store.ErrNotFound
	}
	return s.branch, nil
}

func (s *stubStore) ListRecentOrders(limit int) ([]models.Order, error) {
	out := make([]models.Order, 0, len(s.orders))
	for _, order := range s.orders {
		out = append(out, *order)
	}
	return out, nil
}

func (s *stubStore) ListAvailability(menuItemIDs []uint) (map[uint]bool, error) {
	if s.availabilityErr != nil {
		return nil, s.availabilityErr
	}
	out := make(map[uint]bool)
	for _, id := range menuItemIDs {
		if available, ok := s.availability[id]; ok {
			out[id] = available
		}
	}
	return out, nil
}

func (s *stubStore) UpdateOrderStatus(orderID uint, from, to models.Status, notes string) (*models.Order, error) {
	if s.forcedConflicts > 0 {
		s.forcedConflicts--
		return nil, store.ErrStatusConflict
	}
	order, ok := s.orders[orderID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if order.Status != from {
		return nil, store.ErrStatusConflict
	}
	order.Status = to
	order.StatusHistory = append(order.StatusHistory, models.StatusEvent{
		OrderID: orderID, Status: to, Notes: notes,
	})
	copied := *order
	return &copied, nil
}

func (s *stubStore) GenerateOrderNumber() (string, error) {
	if s.orderNumberErr != nil {
		return "", s.orderNumberErr
	}
	return s.orderNumber, nil
}

var errBoom = errors.New("boom")
