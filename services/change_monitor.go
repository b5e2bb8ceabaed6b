package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/restolive/backend/models"
	"github.com/restolive/backend/utils"
)

// Broadcaster is the fan-out side of the change-feed; feed.Hub implements it.
type Broadcaster interface {
	BroadcastOrderInserted(order models.Order)
	BroadcastOrderUpdated(order models.Order)
	BroadcastOrderItemInserted(item models.OrderItem)
	BroadcastOrderItemUpdated(item models.OrderItem)
}

// ChangeMonitor polls the db_changes table that row-level triggers on orders
// and order_items append to, and turns unprocessed rows into feed events.
// This is the server half of the change-feed: triggers capture commits, the
// monitor fans them out.
type ChangeMonitor struct {
	DB       *gorm.DB
	Hub      Broadcaster
	Interval time.Duration
	stopChan chan struct{}
}

func NewChangeMonitor(db *gorm.DB, hub Broadcaster) *ChangeMonitor {
	return &ChangeMonitor{
		DB:       db,
		Hub:      hub,
		Interval: 500 * time.Millisecond,
		stopChan: make(chan struct{}),
	}
}

func (cm *ChangeMonitor) Start() {
	go func() {
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cm.checkChanges()
			case <-cm.stopChan:
				return
			}
		}
	}()
}

func (cm *ChangeMonitor) Stop() {
	close(cm.stopChan)
}

func (cm *ChangeMonitor) checkChanges() {
	var changes []models.DBChange

	tx := cm.DB.Begin()

	if err := tx.Where("processed = ?", false).
		Order("id ASC").
		Limit(100).
		Find(&changes).Error; err != nil {
		tx.Rollback()
		utils.ErrorLogger.Printf("change monitor: fetch changes: %v", err)
		return
	}

	for _, change := range changes {
		switch change.TableName {
		case "orders":
			cm.processOrderChange(change)
		case "order_items":
			cm.processOrderItemChange(change)
		}

		if err := tx.Model(&models.DBChange{}).
			Where("id = ?", change.ID).
			Update("processed", true).Error; err != nil {
			tx.Rollback()
			utils.ErrorLogger.Printf("change monitor: mark processed: %v", err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		utils.ErrorLogger.Printf("change monitor: commit: %v", err)
		tx.Rollback()
		return
	}

	if len(changes) > 0 {
		utils.InfoLogger.Printf("change monitor: processed %d changes", len(changes))
	}
}

func (cm *ChangeMonitor) processOrderChange(change models.DBChange) {
	var order models.Order
	err := cm.DB.
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_status_events.id ASC")
		}).
		First(&order, change.RecordID).Error
	if err != nil {
		// The row can be gone again if a compensating delete undid the
		// insert before we polled. Nothing to broadcast then.
		utils.ErrorLogger.Printf("change monitor: fetch order %d: %v", change.RecordID, err)
		return
	}

	switch change.ActionType {
	case "INSERT":
		cm.Hub.BroadcastOrderInserted(order)
	case "UPDATE":
		cm.Hub.BroadcastOrderUpdated(order)
	}
}

func (cm *ChangeMonitor) processOrderItemChange(change models.DBChange) {
	var item models.OrderItem
	if err := cm.DB.First(&item, change.RecordID).Error; err != nil {
		utils.ErrorLogger.Printf("change monitor: fetch order item %d: %v", change.RecordID, err)
		return
	}

	switch change.ActionType {
	case "INSERT":
		cm.Hub.BroadcastOrderItemInserted(item)
	case "UPDATE":
		cm.Hub.BroadcastOrderItemUpdated(item)
	}
}
