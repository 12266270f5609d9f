package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sh1vam31/Food-Inventory-Backend/internal/domain"
	"github.com/sh1vam31/Food-Inventory-Backend/internal/interfaces"
)

type materialRepository struct {
	db DB
}

func NewMaterialRepository(db DB) interfaces.MaterialRepository {
	return &materialRepository{db: db}
}

func (r *materialRepository) Create(ctx context.Context, m *domain.RawMaterial) error {
	query := `
		INSERT INTO raw_materials (name, unit, quantity_available, minimum_threshold, created_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		m.Name, m.Unit, m.QuantityAvailable, m.MinimumThreshold,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("material %q: %w", m.Name, domain.ErrDuplicateName)
		}
		return fmt.Errorf("failed to insert raw material: %w", err)
	}
	return nil
}

func (r *materialRepository) FindByID(ctx context.Context, id int) (*domain.RawMaterial, error) {
	return findMaterial(ctx, r.db, id, false)
}

func (r *materialRepository) FindByName(ctx context.Context, name string) (*domain.RawMaterial, error) {
	query := `
		SELECT id, name, unit, quantity_available, minimum_threshold, created_at
		FROM raw_materials
		WHERE name = $1
	`
	var m domain.RawMaterial
	err := r.db.QueryRow(ctx, query, name).Scan(
		&m.ID, &m.Name, &m.Unit, &m.QuantityAvailable, &m.MinimumThreshold, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("raw material %q: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query raw material: %w", err)
	}
	return &m, nil
}

func (r *materialRepository) List(ctx context.Context, limit, offset int) ([]*domain.RawMaterial, error) {
	query := `
		SELECT id, name, unit, quantity_available, minimum_threshold, created_at
		FROM raw_materials
		ORDER BY id
		LIMIT $1 OFFSET $2
	`
	return r.queryMaterials(ctx, query, limit, offset)
}

func (r *materialRepository) ListLowStock(ctx context.Context) ([]*domain.RawMaterial, error) {
	query := `
		SELECT id, name, unit, quantity_available, minimum_threshold, created_at
		FROM raw_materials
		WHERE quantity_available <= minimum_threshold
		ORDER BY id
	`
	return r.queryMaterials(ctx, query)
}

func (r *materialRepository) queryMaterials(ctx context.Context, query string, args ...any) ([]*domain.RawMaterial, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query raw materials: %w", err)
	}
	defer rows.Close()

	var materials []*domain.RawMaterial
	for rows.Next() {
		var m domain.RawMaterial
		if err := rows.Scan(&m.ID, &m.Name, &m.Unit, &m.QuantityAvailable, &m.MinimumThreshold, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan raw material: %w", err)
		}
		materials = append(materials, &m)
	}
	return materials, rows.Err()
}

func (r *materialRepository) Update(ctx context.Context, m *domain.RawMaterial) error {
	query := `
		UPDATE raw_materials
		SET name = $1, unit = $2, quantity_available = $3, minimum_threshold = $4
		WHERE id = $5
	`
	tag, err := r.db.Exec(ctx, query, m.Name, m.Unit, m.QuantityAvailable, m.MinimumThreshold, m.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("material %q: %w", m.Name, domain.ErrDuplicateName)
		}
		return fmt.Errorf("failed to update raw material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("raw material %d: %w", m.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *materialRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM raw_materials WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("raw material %d: %w", id, domain.ErrInUse)
		}
		return fmt.Errorf("failed to delete raw material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("raw material %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *materialRepository) RecipeUsage(ctx context.Context, id int) ([]string, error) {
	query := `
		SELECT DISTINCT f.name
		FROM food_items f
		JOIN recipe_lines rl ON rl.food_item_id = f.id
		WHERE rl.raw_material_id = $1
		ORDER BY f.name
	`
	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipe usage: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan recipe usage: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *materialRepository) TryDecrement(ctx context.Context, id int, amount float64) error {
	_, err := tryDecrement(ctx, r.db, id, amount)
	return err
}

func (r *materialRepository) Increment(ctx context.Context, id int, amount float64) error {
	return increment(ctx, r.db, id, amount)
}

// Ledger primitives shared with the order repository's transactional path.
// They accept a querier so the same statements run against the pool or an
// open transaction.

// findMaterial loads one material, optionally taking a row lock that holds
// until the enclosing transaction ends.
func findMaterial(ctx context.Context, q querier, id int, forUpdate bool) (*domain.RawMaterial, error) {
	query := `
		SELECT id, name, unit, quantity_available, minimum_threshold, created_at
		FROM raw_materials
		WHERE id = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var m domain.RawMaterial
	err := q.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Name, &m.Unit, &m.QuantityAvailable, &m.MinimumThreshold, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("raw material %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query raw material: %w", err)
	}
	return &m, nil
}

// tryDecrement subtracts amount if and only if the remaining quantity stays
// non-negative. The condition lives in the UPDATE itself, so a standalone
// call is just as safe as one made under a row lock.
func tryDecrement(ctx context.Context, q querier, id int, amount float64) (*domain.RawMaterial, error) {
	query := `
		UPDATE raw_materials
		SET quantity_available = round((quantity_available - $2)::numeric, 2)::float8
		WHERE id = $1 AND quantity_available >= $2
		RETURNING id, name, unit, quantity_available, minimum_threshold, created_at
	`
	var m domain.RawMaterial
	err := q.QueryRow(ctx, query, id, amount).Scan(
		&m.ID, &m.Name, &m.Unit, &m.QuantityAvailable, &m.MinimumThreshold, &m.CreatedAt,
	)
	if err == nil {
		return &m, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to decrement stock: %w", err)
	}

	// No row matched: either the material is missing or the stock would go
	// negative.
	if _, lookupErr := findMaterial(ctx, q, id, false); lookupErr != nil {
		return nil, lookupErr
	}
	return nil, fmt.Errorf("raw material %d: %w", id, domain.ErrInsufficientStock)
}

func increment(ctx context.Context, q querier, id int, amount float64) error {
	query := `
		UPDATE raw_materials
		SET quantity_available = round((quantity_available + $2)::numeric, 2)::float8
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query, id, amount)
	if err != nil {
		return fmt.Errorf("failed to increment stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("raw material %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
