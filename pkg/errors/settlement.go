package errors

import "github.com/google/uuid"

// InsufficientStock builds the conflict error raised when the inventory
// ledger cannot cover a requested quantity. The offending product and the
// quantity still available travel in the details payload so the register UI
// can re-render the cart.
func InsufficientStock(productID uuid.UUID, requested, available int64) *Error {
	return New(CodeConflict, "insufficient stock").WithDetails(map[string]any{
		"product_id": productID.String(),
		"requested":  requested,
		"available":  available,
	})
}

// InvalidTransition builds the state-conflict error for a transition the
// status machine does not allow.
func InvalidTransition(from, to string) *Error {
	return New(CodeStateConflict, "invalid status transition").WithDetails(map[string]any{
		"from": from,
		"to":   to,
	})
}

// AlreadyFinalized builds the state-conflict error for transitions attempted
// against a terminal transaction.
func AlreadyFinalized(current string) *Error {
	return New(CodeStateConflict, "transaction already finalized").WithDetails(map[string]any{
		"status": current,
	})
}

// GatewayUnavailable wraps a payment gateway failure.
func GatewayUnavailable(err error) *Error {
	return Wrap(CodeDependency, err, "payment gateway unavailable")
}
