package orders

import (
	"fmt"
	"strings"

	"github.com/restolive/backend/models"
)

// ValidationError rejects a build before anything is written. One message per
// violated field so the form can address them individually.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) add(field, msg string) {
	e.Fields[field] = msg
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AvailabilityConflict is not a hard failure: some cart items went
// unavailable between cart build and commit, and the customer has to choose
// between committing the available subset and abandoning.
type AvailabilityConflict struct {
	Available   []models.CartItem
	Unavailable []models.CartItem
}

func (e *AvailabilityConflict) Error() string {
	return fmt.Sprintf("availability conflict: %d of %d cart items unavailable",
		len(e.Unavailable), len(e.Available)+len(e.Unavailable))
}

// CanProceed reports whether committing the available subset is still a
// meaningful option.
func (e *AvailabilityConflict) CanProceed() bool {
	return len(e.Available) > 0
}

type WriteStage string

const (
	WriteStageOrderRow WriteStage = "order_row"
	WriteStageItemRows WriteStage = "item_rows"
)

// WriteFailure distinguishes "nothing persisted" (order row failed) from
// "item rows failed, compensation attempted". Compensated reports whether the
// compensating delete itself went through; either way the order must be
// treated as not created.
type WriteFailure struct {
	Stage       WriteStage
	Compensated bool
	Err         error
}

func (e *WriteFailure) Error() string {
	return fmt.Sprintf("order write failed at %s: %v", e.Stage, e.Err)
}

func (e *WriteFailure) Unwrap() error {
	return e.Err
}

// InvalidTransitionError rejects a status change not present in the
// transition table for the order's latest known status.
type InvalidTransitionError struct {
	OrderID uint
	From    models.Status
	To      models.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order %d: invalid status transition %s -> %s", e.OrderID, e.From, e.To)
}
