package interfaces

import (
	"context"
	"time"

	"github.com/sh1vam31/Food-Inventory-Backend/internal/domain"
)

// OrderEvent is published on every order creation and lifecycle transition.
type OrderEvent struct {
	OrderID    int           `json:"order_id"`
	Status     domain.Status `json:"status"`
	TotalPrice float64       `json:"total_price"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// LowStockAlert is published when a reservation drops a material to or below
// its minimum threshold.
type LowStockAlert struct {
	RawMaterialID     int       `json:"raw_material_id"`
	Name              string    `json:"name"`
	Unit              string    `json:"unit"`
	QuantityAvailable float64   `json:"quantity_available"`
	MinimumThreshold  float64   `json:"minimum_threshold"`
	OccurredAt        time.Time `json:"occurred_at"`
}

type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
	PublishLowStockAlert(ctx context.Context, alert LowStockAlert) error
}

type AlertConsumer interface {
	ConsumeLowStockAlerts(ctx context.Context, handler AlertHandler) error
}

type AlertHandler func(ctx context.Context, body []byte) error
