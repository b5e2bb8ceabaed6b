package orders

import (
	"github.com/pkg/errors"

	"github.com/restolive/backend/models"
	"github.com/restolive/backend/store"
)

// transitions is the authoritative table. completed and cancelled are
// terminal and have no outgoing edges.
var transitions = map[models.Status][]models.Status{
	models.StatusPending:        {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed:      {models.StatusPreparing, models.StatusCancelled},
	models.StatusPreparing:      {models.StatusReady, models.StatusCancelled},
	models.StatusReady:          {models.StatusOutForDelivery, models.StatusCompleted, models.StatusCancelled},
	models.StatusOutForDelivery: {models.StatusCompleted, models.StatusCancelled},
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to models.Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses lists the allowed next statuses for a given status.
func NextStatuses(from models.Status) []models.Status {
	return append([]models.Status(nil), transitions[from]...)
}

// Machine validates and applies status transitions. The local table check is
// a fast path; the store's conditional update is the authority, so two staff
// clients racing to advance the same order resolve to exactly one recorded
// change.
type Machine struct {
	Store store.Store
}

func NewMachine(s store.Store) *Machine {
	return &Machine{Store: s}
}

// advanceAttempts bounds the read/re-check loop when the order keeps moving
// under us.
const advanceAttempts = 3

// Advance moves the order to the requested status. A lost race re-reads the
// fresh status and retries; when the fresh status no longer allows the
// transition, or the order keeps moving until the attempts run out, the
// caller gets InvalidTransitionError carrying the latest observed status so
// it can refresh its view.
func (m *Machine) Advance(orderID uint, to models.Status, notes string) (*models.Order, error) {
	var from models.Status

	for attempt := 0; attempt < advanceAttempts; attempt++ {
		order, err := m.Store.GetOrder(orderID)
		if err != nil {
			return nil, err
		}

		from = order.Status
		if !CanTransition(from, to) {
			return nil, &InvalidTransitionError{OrderID: orderID, From: from, To: to}
		}

		updated, err := m.Store.UpdateOrderStatus(orderID, from, to, notes)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, store.ErrStatusConflict) {
			return nil, err
		}
	}

	return nil, &InvalidTransitionError{OrderID: orderID, From: from, To: to}
}
