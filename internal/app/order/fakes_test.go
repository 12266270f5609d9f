package order

import (
	"context"
	"fmt"
	"sync"

	"github.com/sh1vam31/Food-Inventory-Backend/internal/domain"
	"github.com/sh1vam31/Food-Inventory-Backend/internal/interfaces"
)

// In-memory repositories sharing one state under one mutex, so order
// placement is atomic the same way the database transaction is.

type fakeState struct {
	mu        sync.Mutex
	materials map[int]*domain.RawMaterial
	items     map[int]*domain.FoodItem
	orders    map[int]*domain.Order
	nextOrder int
}

func newFakeState() *fakeState {
	return &fakeState{
		materials: make(map[int]*domain.RawMaterial),
		items:     make(map[int]*domain.FoodItem),
		orders:    make(map[int]*domain.Order),
		nextOrder: 1,
	}
}

func (st *fakeState) quantity(id int) float64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.materials[id].QuantityAvailable
}

type fakeMaterials struct{ st *fakeState }

func (f *fakeMaterials) Create(ctx context.Context, m *domain.RawMaterial) error { return nil }

func (f *fakeMaterials) FindByID(ctx context.Context, id int) (*domain.RawMaterial, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	m, ok := f.st.materials[id]
	if !ok {
		return nil, fmt.Errorf("raw material %d: %w", id, domain.ErrNotFound)
	}
	copied := *m
	return &copied, nil
}

func (f *fakeMaterials) FindByName(ctx context.Context, name string) (*domain.RawMaterial, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeMaterials) List(ctx context.Context, limit, offset int) ([]*domain.RawMaterial, error) {
	return nil, nil
}

func (f *fakeMaterials) ListLowStock(ctx context.Context) ([]*domain.RawMaterial, error) {
	return nil, nil
}

func (f *fakeMaterials) Update(ctx context.Context, m *domain.RawMaterial) error { return nil }
func (f *fakeMaterials) Delete(ctx context.Context, id int) error                { return nil }

func (f *fakeMaterials) RecipeUsage(ctx context.Context, id int) ([]string, error) { return nil, nil }

func (f *fakeMaterials) TryDecrement(ctx context.Context, id int, amount float64) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	m, ok := f.st.materials[id]
	if !ok {
		return fmt.Errorf("raw material %d: %w", id, domain.ErrNotFound)
	}
	if m.QuantityAvailable < amount {
		return fmt.Errorf("raw material %d: %w", id, domain.ErrInsufficientStock)
	}
	m.QuantityAvailable = domain.RoundQuantity(m.QuantityAvailable - amount)
	return nil
}

func (f *fakeMaterials) Increment(ctx context.Context, id int, amount float64) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	m, ok := f.st.materials[id]
	if !ok {
		return fmt.Errorf("raw material %d: %w", id, domain.ErrNotFound)
	}
	m.QuantityAvailable = domain.RoundQuantity(m.QuantityAvailable + amount)
	return nil
}

type fakeItems struct{ st *fakeState }

func (f *fakeItems) Create(ctx context.Context, item *domain.FoodItem) error { return nil }

func (f *fakeItems) FindByID(ctx context.Context, id int) (*domain.FoodItem, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	item, ok := f.st.items[id]
	if !ok {
		return nil, fmt.Errorf("food item %d: %w", id, domain.ErrNotFound)
	}
	copied := *item
	copied.Recipe = append([]domain.RecipeLine(nil), item.Recipe...)
	return &copied, nil
}

func (f *fakeItems) List(ctx context.Context, limit, offset int) ([]*domain.FoodItem, error) {
	return nil, nil
}

func (f *fakeItems) ListAvailable(ctx context.Context) ([]*domain.FoodItem, error) { return nil, nil }
func (f *fakeItems) Update(ctx context.Context, item *domain.FoodItem) error       { return nil }
func (f *fakeItems) Delete(ctx context.Context, id int) error                      { return nil }

type fakeOrders struct{ st *fakeState }

func (f *fakeOrders) Place(ctx context.Context, order *domain.Order, required map[int]float64) ([]*domain.RawMaterial, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()

	// Re-check everything before mutating anything.
	for id, amount := range required {
		m, ok := f.st.materials[id]
		if !ok {
			return nil, fmt.Errorf("raw material %d: %w", id, domain.ErrNotFound)
		}
		if m.QuantityAvailable < amount {
			return nil, fmt.Errorf("raw material %q: %w", m.Name, domain.ErrInsufficientStock)
		}
	}

	var lowStock []*domain.RawMaterial
	for id, amount := range required {
		m := f.st.materials[id]
		m.QuantityAvailable = domain.RoundQuantity(m.QuantityAvailable - amount)
		if m.IsLowStock() {
			copied := *m
			lowStock = append(lowStock, &copied)
		}
	}

	order.ID = f.st.nextOrder
	f.st.nextOrder++
	stored := *order
	stored.Lines = append([]domain.OrderLine(nil), order.Lines...)
	f.st.orders[order.ID] = &stored

	return lowStock, nil
}

func (f *fakeOrders) FindByID(ctx context.Context, id int) (*domain.Order, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	order, ok := f.st.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
	}
	copied := *order
	copied.Lines = append([]domain.OrderLine(nil), order.Lines...)
	return &copied, nil
}

func (f *fakeOrders) List(ctx context.Context, limit, offset int) ([]*domain.Order, error) {
	return nil, nil
}

func (f *fakeOrders) Transition(ctx context.Context, id int, to domain.Status, restock map[int]float64) (*domain.Order, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()

	order, ok := f.st.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
	}
	if order.Status != domain.StatusPending {
		return nil, fmt.Errorf("order %d is %s: %w", id, order.Status, domain.ErrInvalidTransition)
	}

	order.Status = to
	for materialID, amount := range restock {
		m, ok := f.st.materials[materialID]
		if !ok {
			return nil, fmt.Errorf("raw material %d: %w", materialID, domain.ErrNotFound)
		}
		m.QuantityAvailable = domain.RoundQuantity(m.QuantityAvailable + amount)
	}

	copied := *order
	copied.Lines = append([]domain.OrderLine(nil), order.Lines...)
	return &copied, nil
}

// conflictOrders simulates transient serialization failures before
// delegating to the real fake.
type conflictOrders struct {
	inner    interfaces.OrderRepository
	mu       sync.Mutex
	failures int
	calls    int
}

func (c *conflictOrders) Place(ctx context.Context, order *domain.Order, required map[int]float64) ([]*domain.RawMaterial, error) {
	c.mu.Lock()
	c.calls++
	fail := c.calls <= c.failures
	c.mu.Unlock()

	if fail {
		return nil, fmt.Errorf("order placement: %w", domain.ErrConflict)
	}
	return c.inner.Place(ctx, order, required)
}

func (c *conflictOrders) FindByID(ctx context.Context, id int) (*domain.Order, error) {
	return c.inner.FindByID(ctx, id)
}

func (c *conflictOrders) List(ctx context.Context, limit, offset int) ([]*domain.Order, error) {
	return c.inner.List(ctx, limit, offset)
}

func (c *conflictOrders) Transition(ctx context.Context, id int, to domain.Status, restock map[int]float64) (*domain.Order, error) {
	return c.inner.Transition(ctx, id, to, restock)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []interfaces.OrderEvent
	alerts []interfaces.LowStockAlert
}

func (p *fakePublisher) PublishOrderEvent(ctx context.Context, event interfaces.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) PublishLowStockAlert(ctx context.Context, alert interfaces.LowStockAlert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, alert)
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(action, message, requestID string, details map[string]interface{})  {}
func (nopLogger) Debug(action, message, requestID string, details map[string]interface{}) {}
func (nopLogger) Error(action, message, requestID string, details map[string]interface{}, err error) {
}
