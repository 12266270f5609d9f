package interfaces

import (
	"context"

	"github.com/sh1vam31/Food-Inventory-Backend/internal/domain"
)

// Commands the services consume.

type CreateOrderCommand struct {
	Lines []OrderLineCommand
}

type OrderLineCommand struct {
	FoodItemID int
	Quantity   int
}

type CreateMaterialCommand struct {
	Name             string
	Unit             string
	Quantity         float64
	MinimumThreshold float64
}

type UpdateMaterialCommand struct {
	Name             *string
	Unit             *string
	Quantity         *float64
	MinimumThreshold *float64
}

type FoodItemCommand struct {
	Name        string
	Price       float64
	IsAvailable bool
	Recipe      []RecipeLineCommand
}

type RecipeLineCommand struct {
	RawMaterialID   int
	QuantityPerUnit float64
}

// AvailabilityReport is the result of an advisory availability check. It does
// not reserve stock; the authoritative re-check happens inside order
// placement.
type AvailabilityReport struct {
	Sufficient bool
	TotalPrice float64
	Materials  []MaterialAvailability
}

type MaterialAvailability struct {
	RawMaterialID int
	Name          string
	Unit          string
	Required      float64
	Available     float64
	Shortfall     float64
}

// MaterialUsageReport lists the food items whose recipes reference a raw
// material.
type MaterialUsageReport struct {
	RawMaterialID int
	MaterialName  string
	FoodItems     []string
}

type OrderService interface {
	CheckAvailability(ctx context.Context, lines []OrderLineCommand) (*AvailabilityReport, error)
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error)
	CancelOrder(ctx context.Context, id int) (*domain.Order, error)
	CompleteOrder(ctx context.Context, id int) (*domain.Order, error)
	GetOrder(ctx context.Context, id int) (*domain.Order, error)
	ListOrders(ctx context.Context, limit, offset int) ([]*domain.Order, error)
}

type InventoryService interface {
	CreateMaterial(ctx context.Context, cmd CreateMaterialCommand) (*domain.RawMaterial, error)
	GetMaterial(ctx context.Context, id int) (*domain.RawMaterial, error)
	ListMaterials(ctx context.Context, limit, offset int) ([]*domain.RawMaterial, error)
	ListLowStock(ctx context.Context) ([]*domain.RawMaterial, error)
	UpdateMaterial(ctx context.Context, id int, cmd UpdateMaterialCommand) (*domain.RawMaterial, error)
	DeleteMaterial(ctx context.Context, id int) error
	Restock(ctx context.Context, id int, amount float64) (*domain.RawMaterial, error)
	MaterialUsage(ctx context.Context, id int) (*MaterialUsageReport, error)
}

type CatalogService interface {
	CreateFoodItem(ctx context.Context, cmd FoodItemCommand) (*domain.FoodItem, error)
	GetFoodItem(ctx context.Context, id int) (*domain.FoodItem, error)
	ListFoodItems(ctx context.Context, limit, offset int) ([]*domain.FoodItem, error)
	ListAvailableFoodItems(ctx context.Context) ([]*domain.FoodItem, error)
	UpdateFoodItem(ctx context.Context, id int, cmd FoodItemCommand) (*domain.FoodItem, error)
	DeleteFoodItem(ctx context.Context, id int) error
}
