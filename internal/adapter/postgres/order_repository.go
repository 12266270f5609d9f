package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/sh1vam31/Food-Inventory-Backend/internal/domain"
	"github.com/sh1vam31/Food-Inventory-Backend/internal/interfaces"
)

type orderRepository struct {
	db DB
}

func NewOrderRepository(db DB) interfaces.OrderRepository {
	return &orderRepository{db: db}
}

// Place reserves stock and persists the order in one transaction. Rows of the
// touched raw materials are locked in ascending id order, so two orders over
// overlapping ingredient sets serialize instead of deadlocking. The quantity
// re-check runs against the locked rows, closing the race window left open
// by any earlier advisory availability check.
func (r *orderRepository) Place(ctx context.Context, order *domain.Order, required map[int]float64) ([]*domain.RawMaterial, error) {
	lowStock, err := r.place(ctx, order, required)
	if err != nil && isRetryable(err) {
		return nil, fmt.Errorf("order placement: %w", domain.ErrConflict)
	}
	return lowStock, err
}

func (r *orderRepository) place(ctx context.Context, order *domain.Order, required map[int]float64) ([]*domain.RawMaterial, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ids := sortedMaterialIDs(required)

	// Lock and re-check before touching anything, so a shortfall on the last
	// ingredient never leaves earlier decrements behind.
	for _, id := range ids {
		m, err := findMaterial(ctx, tx, id, true)
		if err != nil {
			return nil, err
		}
		if m.QuantityAvailable < required[id] {
			return nil, fmt.Errorf("raw material %q: required %.2f, available %.2f: %w",
				m.Name, required[id], m.QuantityAvailable, domain.ErrInsufficientStock)
		}
	}

	var lowStock []*domain.RawMaterial
	for _, id := range ids {
		m, err := tryDecrement(ctx, tx, id, required[id])
		if err != nil {
			return nil, err
		}
		if m.IsLowStock() {
			lowStock = append(lowStock, m)
		}
	}

	query := `
		INSERT INTO orders (status, total_price, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRow(ctx, query, order.Status, order.TotalPrice).Scan(
		&order.ID, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	lineQuery := `
		INSERT INTO order_lines (order_id, food_item_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	for i := range order.Lines {
		line := &order.Lines[i]
		err = tx.QueryRow(ctx, lineQuery,
			order.ID, line.FoodItemID, line.Quantity, line.UnitPrice, line.Subtotal,
		).Scan(&line.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order line: %w", err)
		}
		line.OrderID = order.ID
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}
	return lowStock, nil
}

func (r *orderRepository) FindByID(ctx context.Context, id int) (*domain.Order, error) {
	query := `
		SELECT id, status, total_price, created_at, updated_at
		FROM orders
		WHERE id = $1
	`
	var order domain.Order
	err := r.db.QueryRow(ctx, query, id).Scan(
		&order.ID, &order.Status, &order.TotalPrice, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	if err := r.loadLines(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, limit, offset int) ([]*domain.Order, error) {
	query := `
		SELECT id, status, total_price, created_at, updated_at
		FROM orders
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.Status, &order.TotalPrice, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, &order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, order := range orders {
		if err := r.loadLines(ctx, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *orderRepository) loadLines(ctx context.Context, order *domain.Order) error {
	query := `
		SELECT ol.id, ol.order_id, ol.food_item_id, f.name, ol.quantity, ol.unit_price, ol.subtotal
		FROM order_lines ol
		JOIN food_items f ON f.id = ol.food_item_id
		WHERE ol.order_id = $1
		ORDER BY ol.id
	`
	rows, err := r.db.Query(ctx, query, order.ID)
	if err != nil {
		return fmt.Errorf("failed to load order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.FoodItemID, &line.FoodItemName, &line.Quantity, &line.UnitPrice, &line.Subtotal); err != nil {
			return fmt.Errorf("failed to scan order line: %w", err)
		}
		order.Lines = append(order.Lines, line)
	}
	return rows.Err()
}

// Transition flips a pending order to a terminal status and applies restock
// increments in the same transaction. The order row is locked first, so two
// racing transitions on the same order serialize and the loser sees a
// non-pending status.
func (r *orderRepository) Transition(ctx context.Context, id int, to domain.Status, restock map[int]float64) (*domain.Order, error) {
	if err := r.transition(ctx, id, to, restock); err != nil {
		if isRetryable(err) {
			return nil, fmt.Errorf("order transition: %w", domain.ErrConflict)
		}
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *orderRepository) transition(ctx context.Context, id int, to domain.Status, restock map[int]float64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current domain.Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("failed to lock order: %w", err)
	}

	if current != domain.StatusPending {
		return fmt.Errorf("order %d is %s: %w", id, current, domain.ErrInvalidTransition)
	}

	_, err = tx.Exec(ctx, `UPDATE orders SET status = $1, updated_at = now() WHERE id = $2`, to, id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	for _, materialID := range sortedMaterialIDs(restock) {
		if err := increment(ctx, tx, materialID, restock[materialID]); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func sortedMaterialIDs(amounts map[int]float64) []int {
	ids := make([]int, 0, len(amounts))
	for id := range amounts {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
