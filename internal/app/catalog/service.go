package catalog

import (
	"context"
	"fmt"

	"github.com/sh1vam31/Food-Inventory-Backend/internal/adapter/logger"
	"github.com/sh1vam31/Food-Inventory-Backend/internal/domain"
	"github.com/sh1vam31/Food-Inventory-Backend/internal/interfaces"
)

// Service covers food-item administration. Recipes may only reference
// existing raw materials; the repository enforces it on write.
type Service struct {
	items  interfaces.FoodItemRepository
	logger logger.Logger
}

func NewService(items interfaces.FoodItemRepository, logger logger.Logger) *Service {
	return &Service{items: items, logger: logger}
}

func (s *Service) CreateFoodItem(ctx context.Context, cmd interfaces.FoodItemCommand) (*domain.FoodItem, error) {
	item := buildItem(cmd)
	if err := item.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %v: %w", err, domain.ErrInvalidOrder)
	}

	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("food_item_created", "Food item created", "", map[string]interface{}{
		"id":   item.ID,
		"name": item.Name,
	})

	// Reload so recipe lines carry material names.
	return s.items.FindByID(ctx, item.ID)
}

func (s *Service) GetFoodItem(ctx context.Context, id int) (*domain.FoodItem, error) {
	return s.items.FindByID(ctx, id)
}

func (s *Service) ListFoodItems(ctx context.Context, limit, offset int) ([]*domain.FoodItem, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.items.List(ctx, limit, offset)
}

func (s *Service) ListAvailableFoodItems(ctx context.Context) ([]*domain.FoodItem, error) {
	return s.items.ListAvailable(ctx)
}

func (s *Service) UpdateFoodItem(ctx context.Context, id int, cmd interfaces.FoodItemCommand) (*domain.FoodItem, error) {
	item := buildItem(cmd)
	item.ID = id
	if err := item.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %v: %w", err, domain.ErrInvalidOrder)
	}

	if err := s.items.Update(ctx, item); err != nil {
		return nil, err
	}
	return s.items.FindByID(ctx, id)
}

func (s *Service) DeleteFoodItem(ctx context.Context, id int) error {
	if err := s.items.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("food_item_deleted", "Food item deleted", "", map[string]interface{}{"id": id})
	return nil
}

func buildItem(cmd interfaces.FoodItemCommand) *domain.FoodItem {
	item := &domain.FoodItem{
		Name:        cmd.Name,
		Price:       cmd.Price,
		IsAvailable: cmd.IsAvailable,
	}
	for _, line := range cmd.Recipe {
		item.Recipe = append(item.Recipe, domain.RecipeLine{
			RawMaterialID:   line.RawMaterialID,
			QuantityPerUnit: line.QuantityPerUnit,
		})
	}
	return item
}
