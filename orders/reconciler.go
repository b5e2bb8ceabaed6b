package orders

import (
	"github.com/restolive/backend/models"
	"github.com/restolive/backend/store"
)

// ReconcileResult partitions a cart by live availability. Items whose menu
// row no longer exists count as unavailable.
type ReconcileResult struct {
	Available   []models.CartItem
	Unavailable []models.CartItem
}

// Reconciler re-reads the availability flag for every cart item right before
// commit. The cart the customer built may be minutes old; staff toggle items
// off all the time.
type Reconciler struct {
	Store store.Store
}

func NewReconciler(s store.Store) *Reconciler {
	return &Reconciler{Store: s}
}

func (r *Reconciler) Reconcile(cart []models.CartItem) (ReconcileResult, error) {
	ids := make([]uint, 0, len(cart))
	for _, ci := range cart {
		ids = append(ids, ci.MenuItemID)
	}

	flags, err := r.Store.ListAvailability(ids)
	if err != nil {
		return ReconcileResult{}, err
	}

	var result ReconcileResult
	for _, ci := range cart {
		if flags[ci.MenuItemID] {
			result.Available = append(result.Available, ci)
		} else {
			result.Unavailable = append(result.Unavailable, ci)
		}
	}
	return result, nil
}
