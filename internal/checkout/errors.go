package checkout

import (
	"fmt"

	"github.com/google/uuid"
)

// CheckoutError reports the line item whose order could not be created.
// Persisted lists the orders inserted before the failure; it is always empty
// in atomic mode.
type CheckoutError struct {
	Item      string
	ProductID string
	Position  int
	Persisted []uuid.UUID
	Cause     error
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("failed to create order for %s: %v", e.Item, e.Cause)
}

func (e *CheckoutError) Unwrap() error {
	return e.Cause
}

func (e *CheckoutError) details() map[string]any {
	ids := make([]string, 0, len(e.Persisted))
	for _, id := range e.Persisted {
		ids = append(ids, id.String())
	}
	return map[string]any{
		"item":                e.Item,
		"product_id":          e.ProductID,
		"position":            e.Position,
		"persisted_order_ids": ids,
	}
}
