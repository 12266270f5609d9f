package domain

import (
	"errors"
	"math"
	"time"
)

// RawMaterial is a trackable ingredient with a unit and on-hand quantity.
// QuantityAvailable is mutated only through the stock ledger's
// decrement/increment primitives and never goes negative.
type RawMaterial struct {
	ID                int
	Name              string
	Unit              string
	QuantityAvailable float64
	MinimumThreshold  float64
	CreatedAt         time.Time
}

// IsLowStock reports whether the current stock is at or below the minimum
// threshold.
func (m *RawMaterial) IsLowStock() bool {
	return m.QuantityAvailable <= m.MinimumThreshold
}

func (m *RawMaterial) Validate() error {
	if len(m.Name) < 1 || len(m.Name) > 100 {
		return errors.New("material name must be 1-100 characters")
	}
	if m.Unit == "" {
		return errors.New("material unit is required")
	}
	if m.QuantityAvailable < 0 {
		return errors.New("quantity available must not be negative")
	}
	if m.MinimumThreshold < 0 {
		return errors.New("minimum threshold must not be negative")
	}
	return nil
}

// RoundQuantity rounds a stock quantity to 2 decimal places. Every ledger
// mutation applies it so repeated adds and subtracts of recipe fractions do
// not accumulate float drift.
func RoundQuantity(v float64) float64 {
	return math.Round(v*100) / 100
}
