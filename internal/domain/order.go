package domain

import (
	"math"
	"time"
)

// Order is a customer request for one or more food items. Status transitions
// are monotonic: pending may move to completed or cancelled, both terminal.
type Order struct {
	ID         int
	Status     Status
	TotalPrice float64
	Lines      []OrderLine
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OrderLine snapshots the unit price of a food item at order time.
// Subtotal = Quantity * UnitPrice.
type OrderLine struct {
	ID           int
	OrderID      int
	FoodItemID   int
	FoodItemName string
	Quantity     int
	UnitPrice    float64
	Subtotal     float64
}

// CanTransitionTo checks the lifecycle rule for moving to newStatus.
func (o *Order) CanTransitionTo(newStatus Status) bool {
	validTransitions := map[Status][]Status{
		StatusPending:   {StatusCompleted, StatusCancelled},
		StatusCompleted: {},
		StatusCancelled: {},
	}

	for _, s := range validTransitions[o.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}

// TransitionTo applies the lifecycle rule, failing with ErrInvalidTransition
// when the order is not in a state that permits the move.
func (o *Order) TransitionTo(newStatus Status) error {
	if !o.CanTransitionTo(newStatus) {
		return ErrInvalidTransition
	}

	o.Status = newStatus
	o.UpdatedAt = time.Now()
	return nil
}

// CalculateTotal sums the line subtotals into TotalPrice, rounded to cents.
func (o *Order) CalculateTotal() {
	total := 0.0
	for _, line := range o.Lines {
		total += line.Subtotal
	}
	o.TotalPrice = math.Round(total*100) / 100
}
