package syncclient

import (
	"encoding/json"
	"sort"

	"github.com/restolive/backend/feed"
	"github.com/restolive/backend/models"
)

// Change is what the client surfaces to its consumer after a merge took
// effect. IsNew is true the first time an order id shows up in the local
// view, whichever path delivered it.
type Change struct {
	Order models.Order
	IsNew bool
}

// orderView is the local mirror of recent orders. It is only ever mutated by
// the merge functions, and only from the client's run loop; every merge is
// idempotent and commutative because redelivery and snapshot overlap are
// expected, not exceptional.
type orderView struct {
	orders map[uint]models.Order
	// Item events can outrun their order across a reconnect boundary; they
	// wait here until the order row shows up.
	pendingItems map[uint][]models.OrderItem
}

func newOrderView() *orderView {
	return &orderView{
		orders:       make(map[uint]models.Order),
		pendingItems: make(map[uint][]models.OrderItem),
	}
}

// mergeOrder upserts an order row. Older versions never overwrite newer ones
// (UpdatedAt plus history length break ties), which is what makes the merge
// commutative across the resync boundary.
func (v *orderView) mergeOrder(order models.Order) (Change, bool) {
	existing, known := v.orders[order.ID]
	if known && !newerOrder(order, existing) {
		return Change{}, false
	}

	if known && len(order.Items) == 0 {
		// Order-updated events may carry the bare row; keep the items we
		// already merged.
		order.Items = existing.Items
	}
	if known && len(order.StatusHistory) < len(existing.StatusHistory) {
		order.StatusHistory = existing.StatusHistory
	}

	for _, item := range v.pendingItems[order.ID] {
		order.Items = upsertItem(order.Items, item)
	}
	delete(v.pendingItems, order.ID)

	v.orders[order.ID] = order
	return Change{Order: order, IsNew: !known}, true
}

// mergeItem upserts a line item into its parent order, or parks it until the
// parent arrives.
func (v *orderView) mergeItem(item models.OrderItem) (Change, bool) {
	order, known := v.orders[item.OrderID]
	if !known {
		v.pendingItems[item.OrderID] = upsertItem(v.pendingItems[item.OrderID], item)
		return Change{}, false
	}

	order.Items = upsertItem(order.Items, item)
	v.orders[item.OrderID] = order
	return Change{Order: order, IsNew: false}, true
}

// snapshot returns a copy of the view, newest order first.
func (v *orderView) snapshot() []models.Order {
	out := make([]models.Order, 0, len(v.orders))
	for _, order := range v.orders {
		out = append(out, order)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func newerOrder(incoming, existing models.Order) bool {
	if incoming.UpdatedAt.After(existing.UpdatedAt) {
		return true
	}
	if incoming.UpdatedAt.Before(existing.UpdatedAt) {
		return false
	}
	// Same row version; prefer the copy that knows more history.
	return len(incoming.StatusHistory) > len(existing.StatusHistory) ||
		len(incoming.Items) > len(existing.Items)
}

func upsertItem(items []models.OrderItem, item models.OrderItem) []models.OrderItem {
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}

// wireMessage is the feed envelope as it arrives off the socket.
type wireMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// applyWire decodes one feed message and merges it. The returned bool says
// whether the view changed.
func (v *orderView) applyWire(msg wireMessage) (Change, bool, error) {
	switch msg.Event {
	case feed.EventOrderInserted, feed.EventOrderUpdated:
		var order models.Order
		if err := json.Unmarshal(msg.Data, &order); err != nil {
			return Change{}, false, err
		}
		change, applied := v.mergeOrder(order)
		return change, applied, nil
	case feed.EventOrderItemInserted, feed.EventOrderItemUpdated:
		var item models.OrderItem
		if err := json.Unmarshal(msg.Data, &item); err != nil {
			return Change{}, false, err
		}
		change, applied := v.mergeItem(item)
		return change, applied, nil
	default:
		// Unknown kinds are dropped; the vocabulary is fixed.
		return Change{}, false, nil
	}
}
