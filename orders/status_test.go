package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/restolive/backend/models"
	"github.com/restolive/backend/store"
)

func setupGormStore(t *testing.T) *store.Gorm {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Branch{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.StatusEvent{},
		&models.OrderCounter{},
	))
	return store.NewGorm(db)
}

func createPendingOrder(t *testing.T, s *store.Gorm) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNumber:    "ORD-20260828-0042",
		BranchID:       1,
		RestaurantName: "Warung Sedap",
		CustomerName:   "Dewi",
		CustomerPhone:  "081234567890",
		DeliveryMethod: models.DeliveryMethodPickup,
		PaymentMethod:  models.PaymentMethodCard,
		ItemsTotal:     20,
		TotalAmount:    20,
	}
	require.NoError(t, s.CreateOrder(order))
	require.NoError(t, s.CreateOrderItems([]models.OrderItem{
		{OrderID: order.ID, MenuItemID: 1, ItemName: "Mie Ayam", ItemPrice: 20, Quantity: 1, Subtotal: 20},
	}))
	return order
}

func TestTransitionTable(t *testing.T) {
	allowed := map[models.Status][]models.Status{
		models.StatusPending:        {models.StatusConfirmed, models.StatusCancelled},
		models.StatusConfirmed:      {models.StatusPreparing, models.StatusCancelled},
		models.StatusPreparing:      {models.StatusReady, models.StatusCancelled},
		models.StatusReady:          {models.StatusOutForDelivery, models.StatusCompleted, models.StatusCancelled},
		models.StatusOutForDelivery: {models.StatusCompleted, models.StatusCancelled},
		models.StatusCompleted:      {},
		models.StatusCancelled:      {},
	}

	all := []models.Status{
		models.StatusPending, models.StatusConfirmed, models.StatusPreparing,
		models.StatusReady, models.StatusOutForDelivery, models.StatusCompleted,
		models.StatusCancelled,
	}

	for from, nexts := range allowed {
		allowedSet := make(map[models.Status]bool)
		for _, next := range nexts {
			allowedSet[next] = true
		}
		for _, to := range all {
			assert.Equal(t, allowedSet[to], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestAdvanceHappyPath(t *testing.T) {
	s := setupGormStore(t)
	m := NewMachine(s)
	order := createPendingOrder(t, s)

	path := []models.Status{
		models.StatusConfirmed, models.StatusPreparing,
		models.StatusReady, models.StatusCompleted,
	}

	for _, next := range path {
		updated, err := m.Advance(order.ID, next, "")
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}

	final, err := s.GetOrder(order.ID)
	require.NoError(t, err)

	require.Len(t, final.StatusHistory, 5)
	assert.Equal(t, models.StatusPending, final.StatusHistory[0].Status)
	assert.Equal(t, final.Status, final.StatusHistory[len(final.StatusHistory)-1].Status)
	assert.Equal(t, final.CreatedAt.Unix(), final.StatusHistory[0].CreatedAt.Unix())
}

func TestAdvanceInvalidTransitionLeavesOrderUnchanged(t *testing.T) {
	s := setupGormStore(t)
	m := NewMachine(s)
	order := createPendingOrder(t, s)

	_, err := m.Advance(order.ID, models.StatusReady, "")

	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, models.StatusPending, invalid.From)
	assert.Equal(t, models.StatusReady, invalid.To)

	unchanged, err := s.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, unchanged.Status)
	assert.Len(t, unchanged.StatusHistory, 1)
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	s := setupGormStore(t)
	m := NewMachine(s)
	order := createPendingOrder(t, s)

	_, err := m.Advance(order.ID, models.StatusCancelled, "customer no-show")
	require.NoError(t, err)

	for _, to := range []models.Status{
		models.StatusPending, models.StatusConfirmed, models.StatusCompleted,
	} {
		_, err := m.Advance(order.ID, to, "")
		var invalid *InvalidTransitionError
		require.ErrorAs(t, err, &invalid, "cancelled -> %s must be rejected", to)
	}
}

func TestAdvanceRetriesAfterLostRace(t *testing.T) {
	s := newStubStore()
	m := NewMachine(s)

	order := &models.Order{CustomerName: "Ayu"}
	require.NoError(t, s.CreateOrder(order))

	// One lost conditional write; the re-read still allows the transition.
	s.forcedConflicts = 1

	updated, err := m.Advance(order.ID, models.StatusConfirmed, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, updated.Status)
}

func TestAdvanceGivesUpAfterRepeatedRaces(t *testing.T) {
	s := newStubStore()
	m := NewMachine(s)

	order := &models.Order{CustomerName: "Ayu"}
	require.NoError(t, s.CreateOrder(order))

	// The order keeps moving under us. The caller must get the stale-view
	// error, never the raw store conflict.
	s.forcedConflicts = 10

	_, err := m.Advance(order.ID, models.StatusConfirmed, "")

	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.NotErrorIs(t, err, store.ErrStatusConflict)
	assert.Equal(t, models.StatusPending, invalid.From)
	assert.Equal(t, models.StatusConfirmed, invalid.To)
}

// Two staff clients race ready -> completed. The conditional store update
// lets exactly one through; the loser sees the fresh status and fails the
// table check.
func TestConcurrentAdvanceRecordsExactlyOneChange(t *testing.T) {
	s := setupGormStore(t)
	m := NewMachine(s)
	order := createPendingOrder(t, s)

	for _, next := range []models.Status{models.StatusConfirmed, models.StatusPreparing, models.StatusReady} {
		_, err := m.Advance(order.ID, next, "")
		require.NoError(t, err)
	}

	// First client wins the CAS.
	_, err := s.UpdateOrderStatus(order.ID, models.StatusReady, models.StatusCompleted, "")
	require.NoError(t, err)

	// Second client raced on the same stale snapshot and loses at the store.
	_, err = s.UpdateOrderStatus(order.ID, models.StatusReady, models.StatusCompleted, "")
	require.ErrorIs(t, err, store.ErrStatusConflict)

	// Once its local view catches up, the transition-table check rejects it.
	_, err = m.Advance(order.ID, models.StatusCompleted, "")
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, models.StatusCompleted, invalid.From)

	final, err := s.GetOrder(order.ID)
	require.NoError(t, err)

	completions := 0
	for _, event := range final.StatusHistory {
		if event.Status == models.StatusCompleted {
			completions++
		}
	}
	assert.Equal(t, 1, completions)
}
