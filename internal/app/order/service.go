package order

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sh1vam31/Food-Inventory-Backend/internal/adapter/logger"
	"github.com/sh1vam31/Food-Inventory-Backend/internal/domain"
	"github.com/sh1vam31/Food-Inventory-Backend/internal/interfaces"
)

const (
	maxConflictAttempts = 3
	conflictBackoff     = 50 * time.Millisecond
)

type Service struct {
	orders    interfaces.OrderRepository
	items     interfaces.FoodItemRepository
	materials interfaces.MaterialRepository
	publisher interfaces.EventPublisher
	logger    logger.Logger
}

func NewService(
	orders interfaces.OrderRepository,
	items interfaces.FoodItemRepository,
	materials interfaces.MaterialRepository,
	publisher interfaces.EventPublisher,
	logger logger.Logger,
) *Service {
	return &Service{
		orders:    orders,
		items:     items,
		materials: materials,
		publisher: publisher,
		logger:    logger,
	}
}

// Resolve expands a food item's recipe into the raw-material amounts needed
// for the given order quantity. Pure read, safe outside a transaction.
func (s *Service) Resolve(ctx context.Context, foodItemID, quantity int) (map[int]float64, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", domain.ErrInvalidOrder)
	}
	item, err := s.items.FindByID(ctx, foodItemID)
	if err != nil {
		return nil, err
	}
	return item.RequiredMaterials(quantity), nil
}

// aggregate validates the order lines, snapshots prices and accumulates the
// total raw-material requirement. Requirements for the same material coming
// from different food items sum up here, explicitly.
func (s *Service) aggregate(ctx context.Context, lines []interfaces.OrderLineCommand) (map[int]float64, []domain.OrderLine, error) {
	if len(lines) == 0 {
		return nil, nil, fmt.Errorf("order has no lines: %w", domain.ErrInvalidOrder)
	}

	required := make(map[int]float64)
	orderLines := make([]domain.OrderLine, 0, len(lines))

	for _, cmd := range lines {
		if cmd.Quantity <= 0 {
			return nil, nil, fmt.Errorf("food item %d: quantity must be positive: %w", cmd.FoodItemID, domain.ErrInvalidOrder)
		}

		item, err := s.items.FindByID(ctx, cmd.FoodItemID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, nil, fmt.Errorf("food item %d does not exist: %w", cmd.FoodItemID, domain.ErrInvalidOrder)
			}
			return nil, nil, err
		}
		if !item.IsAvailable {
			return nil, nil, fmt.Errorf("food item %q is not available: %w", item.Name, domain.ErrInvalidOrder)
		}

		for _, line := range item.Recipe {
			required[line.RawMaterialID] += line.QuantityPerUnit * float64(cmd.Quantity)
		}

		orderLines = append(orderLines, domain.OrderLine{
			FoodItemID:   item.ID,
			FoodItemName: item.Name,
			Quantity:     cmd.Quantity,
			UnitPrice:    item.Price,
			Subtotal:     item.Price * float64(cmd.Quantity),
		})
	}

	for id, amount := range required {
		required[id] = domain.RoundQuantity(amount)
	}
	return required, orderLines, nil
}

// CheckAvailability compares the aggregated requirement against current
// stock. The result is advisory: stock is not reserved, so a later
// CreateOrder can still fail if concurrent orders consume the same
// materials in between.
func (s *Service) CheckAvailability(ctx context.Context, lines []interfaces.OrderLineCommand) (*interfaces.AvailabilityReport, error) {
	required, orderLines, err := s.aggregate(ctx, lines)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(required))
	for id := range required {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	report := &interfaces.AvailabilityReport{Sufficient: true}
	for _, line := range orderLines {
		report.TotalPrice += line.Subtotal
	}
	// Same cent rounding as the order total, so the preview matches the
	// order a subsequent create produces.
	report.TotalPrice = math.Round(report.TotalPrice*100) / 100

	for _, id := range ids {
		m, err := s.materials.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}

		shortfall := required[id] - m.QuantityAvailable
		if shortfall < 0 {
			shortfall = 0
		}
		if shortfall > 0 {
			report.Sufficient = false
		}

		report.Materials = append(report.Materials, interfaces.MaterialAvailability{
			RawMaterialID: m.ID,
			Name:          m.Name,
			Unit:          m.Unit,
			Required:      required[id],
			Available:     m.QuantityAvailable,
			Shortfall:     domain.RoundQuantity(shortfall),
		})
	}

	return report, nil
}

// CreateOrder runs the full placement: validate and aggregate, then reserve
// stock and persist the order as one atomic unit. On any failure the stock
// ledger and order store are untouched. Transient conflicts are retried a
// bounded number of times before surfacing as retryable.
func (s *Service) CreateOrder(ctx context.Context, cmd interfaces.CreateOrderCommand) (*domain.Order, error) {
	required, orderLines, err := s.aggregate(ctx, cmd.Lines)
	if err != nil {
		s.logger.Error("order_validation_failed", "Order rejected", "", nil, err)
		return nil, err
	}

	order := &domain.Order{
		Status: domain.StatusPending,
		Lines:  orderLines,
	}
	order.CalculateTotal()

	var lowStock []*domain.RawMaterial
	err = s.withConflictRetry(ctx, "order_placement", func() error {
		var placeErr error
		lowStock, placeErr = s.orders.Place(ctx, order, required)
		return placeErr
	})
	if err != nil {
		s.logger.Error("order_placement_failed", "Failed to place order", "", map[string]interface{}{
			"materials": len(required),
		}, err)
		return nil, err
	}

	s.logger.Info("order_placed", "Order placed", "", map[string]interface{}{
		"order_id":    order.ID,
		"total_price": order.TotalPrice,
	})

	s.publishOrderEvent(ctx, order)
	for _, m := range lowStock {
		s.publishLowStockAlert(ctx, m)
	}

	return order, nil
}

// CancelOrder moves a pending order to cancelled and restores exactly the
// quantities deducted at creation, recomputed from the order's snapshot
// lines through the recipe resolver.
func (s *Service) CancelOrder(ctx context.Context, id int) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	restock := make(map[int]float64)
	for _, line := range order.Lines {
		required, err := s.Resolve(ctx, line.FoodItemID, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to recompute restock for order %d: %w", id, err)
		}
		for materialID, amount := range required {
			restock[materialID] += amount
		}
	}
	for materialID, amount := range restock {
		restock[materialID] = domain.RoundQuantity(amount)
	}

	return s.transition(ctx, id, domain.StatusCancelled, restock)
}

// CompleteOrder marks a pending order as completed. Stock is untouched; the
// deduction already happened at creation.
func (s *Service) CompleteOrder(ctx context.Context, id int) (*domain.Order, error) {
	return s.transition(ctx, id, domain.StatusCompleted, nil)
}

func (s *Service) transition(ctx context.Context, id int, to domain.Status, restock map[int]float64) (*domain.Order, error) {
	var order *domain.Order
	err := s.withConflictRetry(ctx, "order_transition", func() error {
		var trErr error
		order, trErr = s.orders.Transition(ctx, id, to, restock)
		return trErr
	})
	if err != nil {
		s.logger.Error("order_transition_failed", "Failed to transition order", "", map[string]interface{}{
			"order_id": id,
			"to":       string(to),
		}, err)
		return nil, err
	}

	s.logger.Info("order_transitioned", "Order status changed", "", map[string]interface{}{
		"order_id": id,
		"status":   string(to),
	})
	s.publishOrderEvent(ctx, order)
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, id int) (*domain.Order, error) {
	return s.orders.FindByID(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, limit, offset int) ([]*domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.orders.List(ctx, limit, offset)
}

// withConflictRetry reruns fn while it fails with the retryable conflict
// error, up to maxConflictAttempts. Any other error, or exhaustion, is
// returned as-is; an exhausted conflict stays ErrConflict so the caller
// knows it may retry.
func (s *Service) withConflictRetry(ctx context.Context, action string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxConflictAttempts; attempt++ {
		err = fn()
		if !errors.Is(err, domain.ErrConflict) {
			return err
		}
		if attempt == maxConflictAttempts {
			break
		}

		s.logger.Debug("conflict_retry", "Retrying after transient conflict", "", map[string]interface{}{
			"action":  action,
			"attempt": attempt,
		})

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(conflictBackoff * time.Duration(attempt)):
		}
	}
	return err
}

// Event publishing is best effort: the transaction has already committed, so
// a broker failure is logged rather than turned into a caller-visible error.
func (s *Service) publishOrderEvent(ctx context.Context, order *domain.Order) {
	event := interfaces.OrderEvent{
		OrderID:    order.ID,
		Status:     order.Status,
		TotalPrice: order.TotalPrice,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		s.logger.Error("event_publish_failed", "Failed to publish order event", "", map[string]interface{}{
			"order_id": order.ID,
		}, err)
	}
}

func (s *Service) publishLowStockAlert(ctx context.Context, m *domain.RawMaterial) {
	alert := interfaces.LowStockAlert{
		RawMaterialID:     m.ID,
		Name:              m.Name,
		Unit:              m.Unit,
		QuantityAvailable: m.QuantityAvailable,
		MinimumThreshold:  m.MinimumThreshold,
		OccurredAt:        time.Now().UTC(),
	}
	if err := s.publisher.PublishLowStockAlert(ctx, alert); err != nil {
		s.logger.Error("alert_publish_failed", "Failed to publish low-stock alert", "", map[string]interface{}{
			"raw_material_id": m.ID,
		}, err)
	}
}
