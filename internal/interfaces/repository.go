package interfaces

import (
	"context"

	"github.com/sh1vam31/Food-Inventory-Backend/internal/domain"
)

// MaterialRepository persists raw materials and doubles as the stock ledger:
// Increment and TryDecrement are the only quantity mutations outside of order
// placement.
type MaterialRepository interface {
	Create(ctx context.Context, m *domain.RawMaterial) error
	FindByID(ctx context.Context, id int) (*domain.RawMaterial, error)
	FindByName(ctx context.Context, name string) (*domain.RawMaterial, error)
	List(ctx context.Context, limit, offset int) ([]*domain.RawMaterial, error)
	ListLowStock(ctx context.Context) ([]*domain.RawMaterial, error)
	Update(ctx context.Context, m *domain.RawMaterial) error
	Delete(ctx context.Context, id int) error

	// RecipeUsage returns the names of food items whose recipes reference
	// the material.
	RecipeUsage(ctx context.Context, id int) ([]string, error)

	// TryDecrement atomically subtracts amount if and only if the resulting
	// quantity stays non-negative, failing with ErrInsufficientStock with no
	// side effect otherwise.
	TryDecrement(ctx context.Context, id int, amount float64) error

	// Increment atomically adds amount.
	Increment(ctx context.Context, id int, amount float64) error
}

type FoodItemRepository interface {
	Create(ctx context.Context, item *domain.FoodItem) error
	FindByID(ctx context.Context, id int) (*domain.FoodItem, error)
	List(ctx context.Context, limit, offset int) ([]*domain.FoodItem, error)
	ListAvailable(ctx context.Context) ([]*domain.FoodItem, error)
	Update(ctx context.Context, item *domain.FoodItem) error
	Delete(ctx context.Context, id int) error
}

type OrderRepository interface {
	// Place persists the order and reserves the aggregated material
	// requirements as one atomic unit: either the stock decrements and the
	// order record all commit, or nothing does. Returns the materials whose
	// stock dropped to or below their threshold during the reservation.
	Place(ctx context.Context, order *domain.Order, required map[int]float64) ([]*domain.RawMaterial, error)

	FindByID(ctx context.Context, id int) (*domain.Order, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Order, error)

	// Transition moves a pending order to a terminal status, applying the
	// restock increments (material id -> amount) in the same transaction.
	// Fails with ErrInvalidTransition when the order is not pending, with
	// ErrNotFound when it does not exist.
	Transition(ctx context.Context, id int, to domain.Status, restock map[int]float64) (*domain.Order, error)
}
