package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sh1vam31/Food-Inventory-Backend/internal/domain"
	"github.com/sh1vam31/Food-Inventory-Backend/internal/interfaces"
)

type foodItemRepository struct {
	db DB
}

func NewFoodItemRepository(db DB) interfaces.FoodItemRepository {
	return &foodItemRepository{db: db}
}

func (r *foodItemRepository) Create(ctx context.Context, item *domain.FoodItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO food_items (name, price, is_available, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, query, item.Name, item.Price, item.IsAvailable).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert food item: %w", err)
	}

	if err := insertRecipeLines(ctx, tx, item); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *foodItemRepository) FindByID(ctx context.Context, id int) (*domain.FoodItem, error) {
	query := `
		SELECT id, name, price, is_available, created_at
		FROM food_items
		WHERE id = $1
	`
	var item domain.FoodItem
	err := r.db.QueryRow(ctx, query, id).Scan(
		&item.ID, &item.Name, &item.Price, &item.IsAvailable, &item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("food item %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query food item: %w", err)
	}

	if err := r.loadRecipe(ctx, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *foodItemRepository) List(ctx context.Context, limit, offset int) ([]*domain.FoodItem, error) {
	query := `
		SELECT id, name, price, is_available, created_at
		FROM food_items
		ORDER BY id
		LIMIT $1 OFFSET $2
	`
	return r.queryItems(ctx, query, limit, offset)
}

func (r *foodItemRepository) ListAvailable(ctx context.Context) ([]*domain.FoodItem, error) {
	query := `
		SELECT id, name, price, is_available, created_at
		FROM food_items
		WHERE is_available
		ORDER BY id
	`
	return r.queryItems(ctx, query)
}

func (r *foodItemRepository) queryItems(ctx context.Context, query string, args ...any) ([]*domain.FoodItem, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query food items: %w", err)
	}
	defer rows.Close()

	var items []*domain.FoodItem
	for rows.Next() {
		var item domain.FoodItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.IsAvailable, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan food item: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, item := range items {
		if err := r.loadRecipe(ctx, item); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (r *foodItemRepository) loadRecipe(ctx context.Context, item *domain.FoodItem) error {
	query := `
		SELECT rl.id, rl.food_item_id, rl.raw_material_id, rl.quantity_per_unit, m.name, m.unit
		FROM recipe_lines rl
		JOIN raw_materials m ON m.id = rl.raw_material_id
		WHERE rl.food_item_id = $1
		ORDER BY rl.id
	`
	rows, err := r.db.Query(ctx, query, item.ID)
	if err != nil {
		return fmt.Errorf("failed to load recipe: %w", err)
	}
	defer rows.Close()

	item.Recipe = nil
	for rows.Next() {
		var line domain.RecipeLine
		if err := rows.Scan(&line.ID, &line.FoodItemID, &line.RawMaterialID, &line.QuantityPerUnit, &line.MaterialName, &line.Unit); err != nil {
			return fmt.Errorf("failed to scan recipe line: %w", err)
		}
		item.Recipe = append(item.Recipe, line)
	}
	return rows.Err()
}

func (r *foodItemRepository) Update(ctx context.Context, item *domain.FoodItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE food_items
		SET name = $1, price = $2, is_available = $3
		WHERE id = $4
	`
	tag, err := tx.Exec(ctx, query, item.Name, item.Price, item.IsAvailable, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update food item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("food item %d: %w", item.ID, domain.ErrNotFound)
	}

	// Recipe lines are owned by the item and replaced wholesale.
	if _, err := tx.Exec(ctx, `DELETE FROM recipe_lines WHERE food_item_id = $1`, item.ID); err != nil {
		return fmt.Errorf("failed to clear recipe lines: %w", err)
	}
	if err := insertRecipeLines(ctx, tx, item); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *foodItemRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM food_items WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("food item %d: %w", id, domain.ErrInUse)
		}
		return fmt.Errorf("failed to delete food item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("food item %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func insertRecipeLines(ctx context.Context, tx Tx, item *domain.FoodItem) error {
	query := `
		INSERT INTO recipe_lines (food_item_id, raw_material_id, quantity_per_unit)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	for i := range item.Recipe {
		line := &item.Recipe[i]
		err := tx.QueryRow(ctx, query, item.ID, line.RawMaterialID, line.QuantityPerUnit).Scan(&line.ID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("raw material %d: %w", line.RawMaterialID, domain.ErrNotFound)
			}
			return fmt.Errorf("failed to insert recipe line: %w", err)
		}
		line.FoodItemID = item.ID
	}
	return nil
}
