package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/sh1vam31/Food-Inventory-Backend/internal/adapter/logger"
	"github.com/sh1vam31/Food-Inventory-Backend/internal/domain"
	"github.com/sh1vam31/Food-Inventory-Backend/internal/interfaces"
)

// Service covers raw-material administration. Quantity changes outside order
// placement go through the ledger primitives, never direct writes.
type Service struct {
	materials interfaces.MaterialRepository
	logger    logger.Logger
}

func NewService(materials interfaces.MaterialRepository, logger logger.Logger) *Service {
	return &Service{materials: materials, logger: logger}
}

func (s *Service) CreateMaterial(ctx context.Context, cmd interfaces.CreateMaterialCommand) (*domain.RawMaterial, error) {
	m := &domain.RawMaterial{
		Name:              cmd.Name,
		Unit:              cmd.Unit,
		QuantityAvailable: domain.RoundQuantity(cmd.Quantity),
		MinimumThreshold:  cmd.MinimumThreshold,
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %v: %w", err, domain.ErrInvalidOrder)
	}

	// Pre-check the name; the unique constraint remains the backstop for
	// concurrent creates.
	if _, err := s.materials.FindByName(ctx, m.Name); err == nil {
		return nil, fmt.Errorf("material %q: %w", m.Name, domain.ErrDuplicateName)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if err := s.materials.Create(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info("material_created", "Raw material created", "", map[string]interface{}{
		"id":   m.ID,
		"name": m.Name,
	})
	return m, nil
}

func (s *Service) GetMaterial(ctx context.Context, id int) (*domain.RawMaterial, error) {
	return s.materials.FindByID(ctx, id)
}

func (s *Service) ListMaterials(ctx context.Context, limit, offset int) ([]*domain.RawMaterial, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.materials.List(ctx, limit, offset)
}

func (s *Service) ListLowStock(ctx context.Context) ([]*domain.RawMaterial, error) {
	return s.materials.ListLowStock(ctx)
}

func (s *Service) UpdateMaterial(ctx context.Context, id int, cmd interfaces.UpdateMaterialCommand) (*domain.RawMaterial, error) {
	m, err := s.materials.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		m.Name = *cmd.Name
	}
	if cmd.Unit != nil {
		m.Unit = *cmd.Unit
	}
	if cmd.Quantity != nil {
		m.QuantityAvailable = domain.RoundQuantity(*cmd.Quantity)
	}
	if cmd.MinimumThreshold != nil {
		m.MinimumThreshold = *cmd.MinimumThreshold
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %v: %w", err, domain.ErrInvalidOrder)
	}
	if err := s.materials.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) DeleteMaterial(ctx context.Context, id int) error {
	// Refuse before hitting the FK so the caller gets the offending recipes.
	usage, err := s.materials.RecipeUsage(ctx, id)
	if err != nil {
		return err
	}
	if len(usage) > 0 {
		return fmt.Errorf("raw material %d is used by %v: %w", id, usage, domain.ErrInUse)
	}

	if err := s.materials.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("material_deleted", "Raw material deleted", "", map[string]interface{}{"id": id})
	return nil
}

// MaterialUsage reports which food items reference the material in their
// recipes.
func (s *Service) MaterialUsage(ctx context.Context, id int) (*interfaces.MaterialUsageReport, error) {
	m, err := s.materials.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	names, err := s.materials.RecipeUsage(ctx, id)
	if err != nil {
		return nil, err
	}

	return &interfaces.MaterialUsageReport{
		RawMaterialID: m.ID,
		MaterialName:  m.Name,
		FoodItems:     names,
	}, nil
}

// Restock records a stock delivery through the ledger's increment primitive.
func (s *Service) Restock(ctx context.Context, id int, amount float64) (*domain.RawMaterial, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("restock amount must be positive: %w", domain.ErrInvalidOrder)
	}

	if err := s.materials.Increment(ctx, id, domain.RoundQuantity(amount)); err != nil {
		return nil, err
	}

	m, err := s.materials.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("material_restocked", "Stock received", "", map[string]interface{}{
		"id":       id,
		"amount":   amount,
		"quantity": m.QuantityAvailable,
	})
	return m, nil
}
