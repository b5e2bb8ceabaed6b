package orders

import (
	"github.com/restolive/backend/models"
	"github.com/restolive/backend/store"
	"github.com/restolive/backend/utils"
)

// Writer persists an order draft with the two-step protocol the store forces
// on us: order row first, then the item batch. There is no transaction
// spanning both, so a failed item batch triggers a compensating delete of the
// order row. The compensation is best effort; a crash in between still leaves
// an orphan, which is why orphan suspicion gets logged for cleanup.
type Writer struct {
	Store store.Store
}

func NewWriter(s store.Store) *Writer {
	return &Writer{Store: s}
}

// Create writes the order and its items. "Order created" is only true when
// both steps succeeded; callers must not retry automatically, since a blind
// retry of the two-step write risks duplicate orders.
func (w *Writer) Create(order *models.Order) (*models.Order, error) {
	items := order.Items
	order.Items = nil

	if err := w.Store.CreateOrder(order); err != nil {
		order.Items = items
		return nil, &WriteFailure{Stage: WriteStageOrderRow, Err: err}
	}

	for i := range items {
		items[i].OrderID = order.ID
	}

	if err := w.Store.CreateOrderItems(items); err != nil {
		failure := &WriteFailure{Stage: WriteStageItemRows, Err: err}
		if derr := w.Store.DeleteOrder(order.ID); derr != nil {
			utils.ErrorLogger.Printf(
				"orphan suspicion: order %d (%s) has no items and compensating delete failed: %v",
				order.ID, order.OrderNumber, derr)
		} else {
			failure.Compensated = true
		}
		order.Items = items
		return nil, failure
	}

	order.Items = items
	return order, nil
}
