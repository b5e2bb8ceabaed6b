package orders

import (
	"github.com/restolive/backend/models"
	"github.com/restolive/backend/store"
)

// Service is the order placement flow: validate, reconcile availability,
// build, write. Staff status changes go through the Machine.
type Service struct {
	Store      store.Store
	Builder    *Builder
	Reconciler *Reconciler
	Writer     *Writer
	Machine    *Machine
}

func NewService(s store.Store) *Service {
	return &Service{
		Store:      s,
		Builder:    NewBuilder(s),
		Reconciler: NewReconciler(s),
		Writer:     NewWriter(s),
		Machine:    NewMachine(s),
	}
}

// PlaceOrder runs the whole placement flow. When some cart items went
// unavailable since cart build it returns AvailabilityConflict instead of
// committing: a silent partial commit is forbidden, the customer has to
// explicitly choose. Passing confirmAvailableOnly=true is that choice; the
// order is then committed with the available subset and recomputed totals.
func (s *Service) PlaceOrder(branchID uint, in BuildInput, confirmAvailableOnly bool) (*models.Order, error) {
	if err := s.Builder.Validate(in); err != nil {
		return nil, err
	}

	branch, err := s.Store.GetBranch(branchID)
	if err != nil {
		return nil, err
	}

	rec, err := s.Reconciler.Reconcile(in.Cart)
	if err != nil {
		return nil, err
	}
	if len(rec.Unavailable) > 0 {
		conflict := &AvailabilityConflict{
			Available:   rec.Available,
			Unavailable: rec.Unavailable,
		}
		// With nothing left to commit the only option is abandoning, so the
		// confirmation flag cannot help.
		if !confirmAvailableOnly || !conflict.CanProceed() {
			return nil, conflict
		}
		in.Cart = rec.Available
	}

	order, err := s.Builder.Build(branch, in)
	if err != nil {
		return nil, err
	}

	return s.Writer.Create(order)
}
