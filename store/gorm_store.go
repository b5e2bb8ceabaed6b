package store

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/restolive/backend/models"
)

// Gorm implements Store on top of a *gorm.DB (MySQL in production, SQLite
// in-memory in tests).
type Gorm struct {
	DB *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{DB: db}
}

func (s *Gorm) CreateOrder(order *models.Order) error {
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = order.CreatedAt
	order.Status = models.StatusPending
	order.StatusHistory = []models.StatusEvent{
		{Status: models.StatusPending, CreatedAt: order.CreatedAt},
	}

	// Items are written by CreateOrderItems in a second step.
	if err := s.DB.Omit("Items").Create(order).Error; err != nil {
		return errors.Wrap(err, "insert order row")
	}
	return nil
}

func (s *Gorm) CreateOrderItems(items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	now := time.Now()
	for i := range items {
		items[i].CreatedAt = now
		items[i].UpdatedAt = now
	}
	if err := s.DB.Create(&items).Error; err != nil {
		return errors.Wrap(err, "insert order items")
	}
	return nil
}

func (s *Gorm) DeleteOrder(orderID uint) error {
	if err := s.DB.Where("order_id = ?", orderID).Delete(&models.StatusEvent{}).Error; err != nil {
		return errors.Wrap(err, "delete status events")
	}
	if err := s.DB.Delete(&models.Order{}, orderID).Error; err != nil {
		return errors.Wrap(err, "delete order row")
	}
	return nil
}

func (s *Gorm) GetOrder(orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.DB.
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_status_events.id ASC")
		}).
		First(&order, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "select order")
	}
	return &order, nil
}

func (s *Gorm) GetBranch(branchID uint) (*models.Branch, error) {
	var branch models.Branch
	if err := s.DB.First(&branch, branchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "select branch")
	}
	return &branch, nil
}

func (s *Gorm) ListRecentOrders(limit int) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_status_events.id ASC")
		}).
		Order("orders.id DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, errors.Wrap(err, "select recent orders")
	}
	return orders, nil
}

func (s *Gorm) ListAvailability(menuItemIDs []uint) (map[uint]bool, error) {
	if len(menuItemIDs) == 0 {
		return map[uint]bool{}, nil
	}
	var rows []models.MenuItem
	if err := s.DB.Select("id", "available").Where("id IN ?", menuItemIDs).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "select availability")
	}
	out := make(map[uint]bool, len(rows))
	for _, row := range rows {
		out[row.ID] = row.Available
	}
	return out, nil
}

// UpdateOrderStatus is the authoritative transition write: the WHERE clause
// on the current status makes a stale client lose the race with zero rows
// affected instead of double-advancing the order.
func (s *Gorm) UpdateOrderStatus(orderID uint, from, to models.Status, notes string) (*models.Order, error) {
	now := time.Now()
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, from).
			Updates(map[string]interface{}{
				"status":     to,
				"updated_at": now,
			})
		if res.Error != nil {
			return errors.Wrap(res.Error, "update order status")
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
				return errors.Wrap(err, "check order existence")
			}
			if count == 0 {
				return ErrNotFound
			}
			return ErrStatusConflict
		}

		event := models.StatusEvent{
			OrderID:   orderID,
			Status:    to,
			Notes:     notes,
			CreatedAt: now,
		}
		if err := tx.Create(&event).Error; err != nil {
			return errors.Wrap(err, "append status event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(orderID)
}

func (s *Gorm) GenerateOrderNumber() (string, error) {
	day := time.Now().Format("20060102")
	var next int

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// Relative increment: two concurrent placements serialize on the row
		// lock instead of both reading N and both writing N+1.
		res := tx.Model(&models.OrderCounter{}).
			Where("day = ?", day).
			Update("counter", gorm.Expr("counter + ?", 1))
		if res.Error != nil {
			return errors.Wrap(res.Error, "bump order counter")
		}
		if res.RowsAffected == 0 {
			// First order of the day. If two placements race here, the loser
			// errors on the primary key and the builder falls back.
			counter := models.OrderCounter{Day: day, Counter: 1}
			if err := tx.Create(&counter).Error; err != nil {
				return errors.Wrap(err, "create order counter")
			}
			next = 1
			return nil
		}

		var counter models.OrderCounter
		if err := tx.Where("day = ?", day).First(&counter).Error; err != nil {
			return errors.Wrap(err, "read order counter")
		}
		next = counter.Counter
		return nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%s-%04d", day, next), nil
}
