package domain

import "errors"

var (
	// ErrNotFound is returned when a referenced material, food item or order
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidOrder is returned for malformed requests: orders with no
	// lines or non-positive quantities, unavailable food items, or admin
	// payloads that fail domain validation.
	ErrInvalidOrder = errors.New("invalid request")

	// ErrInsufficientStock is returned when a reservation cannot be covered
	// by current stock. The stock ledger is left untouched.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidTransition is returned when an order is not in a state that
	// permits the requested lifecycle transition.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConflict is a transient concurrency failure. Callers may retry; no
	// partial mutation has been applied.
	ErrConflict = errors.New("transient conflict, retry")

	// ErrInUse is returned when deleting a raw material still referenced by a
	// recipe, or a food item still referenced by an order.
	ErrInUse = errors.New("still referenced, cannot delete")

	// ErrDuplicateName is returned when creating a raw material whose name is
	// already taken.
	ErrDuplicateName = errors.New("name already exists")
)
