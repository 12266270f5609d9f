package order

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sh1vam31/Food-Inventory-Backend/internal/domain"
	"github.com/sh1vam31/Food-Inventory-Backend/internal/interfaces"
)

const (
	matFlour  = 1
	matCheese = 2
	matSauce  = 3

	itemPizza = 1
	itemPasta = 2
)

// newFixture seeds a small catalog: pizza uses 2 flour + 1 cheese per unit,
// pasta uses 3 flour + 0.5 sauce per unit.
func newFixture() (*Service, *fakeState, *fakePublisher) {
	st := newFakeState()
	st.materials[matFlour] = &domain.RawMaterial{ID: matFlour, Name: "flour", Unit: "kg", QuantityAvailable: 100, MinimumThreshold: 5}
	st.materials[matCheese] = &domain.RawMaterial{ID: matCheese, Name: "cheese", Unit: "kg", QuantityAvailable: 50, MinimumThreshold: 2}
	st.materials[matSauce] = &domain.RawMaterial{ID: matSauce, Name: "sauce", Unit: "liter", QuantityAvailable: 20, MinimumThreshold: 1}

	st.items[itemPizza] = &domain.FoodItem{
		ID: itemPizza, Name: "pizza", Price: 12.5, IsAvailable: true,
		Recipe: []domain.RecipeLine{
			{RawMaterialID: matFlour, QuantityPerUnit: 2},
			{RawMaterialID: matCheese, QuantityPerUnit: 1},
		},
	}
	st.items[itemPasta] = &domain.FoodItem{
		ID: itemPasta, Name: "pasta", Price: 8, IsAvailable: true,
		Recipe: []domain.RecipeLine{
			{RawMaterialID: matFlour, QuantityPerUnit: 3},
			{RawMaterialID: matSauce, QuantityPerUnit: 0.5},
		},
	}

	pub := &fakePublisher{}
	svc := NewService(&fakeOrders{st: st}, &fakeItems{st: st}, &fakeMaterials{st: st}, pub, nopLogger{})
	return svc, st, pub
}

func TestCheckAvailabilityAggregatesSharedIngredients(t *testing.T) {
	svc, st, _ := newFixture()

	// 2 pizzas and 1 pasta need 2*2+1*3 = 7 flour; only 5 on hand.
	st.materials[matFlour].QuantityAvailable = 5

	report, err := svc.CheckAvailability(context.Background(), []interfaces.OrderLineCommand{
		{FoodItemID: itemPizza, Quantity: 2},
		{FoodItemID: itemPasta, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}

	if report.Sufficient {
		t.Error("expected insufficient report")
	}

	var flour *interfaces.MaterialAvailability
	for i := range report.Materials {
		if report.Materials[i].RawMaterialID == matFlour {
			flour = &report.Materials[i]
		}
	}
	if flour == nil {
		t.Fatal("flour missing from report")
	}
	if flour.Required != 7 {
		t.Errorf("expected required 7, got %v", flour.Required)
	}
	if flour.Available != 5 {
		t.Errorf("expected available 5, got %v", flour.Available)
	}
	if flour.Shortfall != 2 {
		t.Errorf("expected shortfall 2, got %v", flour.Shortfall)
	}

	if want := 2*12.5 + 8; report.TotalPrice != want {
		t.Errorf("expected total price %v, got %v", want, report.TotalPrice)
	}
}

func TestCheckAvailabilityDoesNotReserve(t *testing.T) {
	svc, st, _ := newFixture()

	if _, err := svc.CheckAvailability(context.Background(), []interfaces.OrderLineCommand{
		{FoodItemID: itemPizza, Quantity: 3},
	}); err != nil {
		t.Fatalf("check failed: %v", err)
	}

	if got := st.quantity(matFlour); got != 100 {
		t.Errorf("advisory check mutated stock: %v", got)
	}
}

func TestAvailabilityTotalMatchesOrderTotal(t *testing.T) {
	svc, st, _ := newFixture()
	ctx := context.Background()

	// 3 * 1.1 accumulates float error before rounding; the preview and the
	// created order must still agree to the cent.
	st.items[itemPasta].Price = 1.1
	lines := []interfaces.OrderLineCommand{{FoodItemID: itemPasta, Quantity: 3}}

	report, err := svc.CheckAvailability(ctx, lines)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if report.TotalPrice != 3.3 {
		t.Errorf("expected preview total 3.3, got %v", report.TotalPrice)
	}

	order, err := svc.CreateOrder(ctx, interfaces.CreateOrderCommand{Lines: lines})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if order.TotalPrice != report.TotalPrice {
		t.Errorf("preview total %v disagrees with order total %v", report.TotalPrice, order.TotalPrice)
	}
}

func TestCreateOrderDeductsStockAndSnapshotsPrices(t *testing.T) {
	svc, st, pub := newFixture()

	order, err := svc.CreateOrder(context.Background(), interfaces.CreateOrderCommand{
		Lines: []interfaces.OrderLineCommand{
			{FoodItemID: itemPizza, Quantity: 2},
			{FoodItemID: itemPasta, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if order.Status != domain.StatusPending {
		t.Errorf("expected pending, got %s", order.Status)
	}
	if want := 2*12.5 + 8; order.TotalPrice != want {
		t.Errorf("expected total %v, got %v", want, order.TotalPrice)
	}
	if len(order.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(order.Lines))
	}
	if order.Lines[0].UnitPrice != 12.5 || order.Lines[0].Subtotal != 25 {
		t.Errorf("bad price snapshot: %+v", order.Lines[0])
	}

	if got := st.quantity(matFlour); got != 93 { // 100 - (2*2 + 1*3)
		t.Errorf("expected flour 93, got %v", got)
	}
	if got := st.quantity(matCheese); got != 48 {
		t.Errorf("expected cheese 48, got %v", got)
	}
	if got := st.quantity(matSauce); got != 19.5 {
		t.Errorf("expected sauce 19.5, got %v", got)
	}

	if len(pub.events) != 1 || pub.events[0].Status != domain.StatusPending {
		t.Errorf("expected one pending order event, got %+v", pub.events)
	}
}

func TestCreateOrderInsufficientStockLeavesNoTrace(t *testing.T) {
	svc, st, _ := newFixture()

	// Cheese runs out; flour alone would cover the order.
	st.materials[matCheese].QuantityAvailable = 1

	_, err := svc.CreateOrder(context.Background(), interfaces.CreateOrderCommand{
		Lines: []interfaces.OrderLineCommand{{FoodItemID: itemPizza, Quantity: 2}},
	})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	if got := st.quantity(matFlour); got != 100 {
		t.Errorf("flour mutated on failed order: %v", got)
	}
	if got := st.quantity(matCheese); got != 1 {
		t.Errorf("cheese mutated on failed order: %v", got)
	}
	if len(st.orders) != 0 {
		t.Errorf("order record created on failure: %d", len(st.orders))
	}
}

func TestCreateOrderValidation(t *testing.T) {
	svc, st, _ := newFixture()
	st.items[itemPasta].IsAvailable = false

	cases := []struct {
		name  string
		lines []interfaces.OrderLineCommand
	}{
		{"empty order", nil},
		{"zero quantity", []interfaces.OrderLineCommand{{FoodItemID: itemPizza, Quantity: 0}}},
		{"negative quantity", []interfaces.OrderLineCommand{{FoodItemID: itemPizza, Quantity: -1}}},
		{"unknown food item", []interfaces.OrderLineCommand{{FoodItemID: 99, Quantity: 1}}},
		{"unavailable food item", []interfaces.OrderLineCommand{{FoodItemID: itemPasta, Quantity: 1}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateOrder(context.Background(), interfaces.CreateOrderCommand{Lines: tc.lines})
			if !errors.Is(err, domain.ErrInvalidOrder) {
				t.Errorf("expected ErrInvalidOrder, got %v", err)
			}
		})
	}

	if len(st.orders) != 0 {
		t.Errorf("rejected orders were persisted: %d", len(st.orders))
	}
}

func TestCancelRestoresExactQuantities(t *testing.T) {
	svc, st, pub := newFixture()
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, interfaces.CreateOrderCommand{
		Lines: []interfaces.OrderLineCommand{
			{FoodItemID: itemPizza, Quantity: 3},
			{FoodItemID: itemPasta, Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	cancelled, err := svc.CancelOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Errorf("expected cancelled, got %s", cancelled.Status)
	}

	if got := st.quantity(matFlour); got != 100 {
		t.Errorf("flour not restored: %v", got)
	}
	if got := st.quantity(matCheese); got != 50 {
		t.Errorf("cheese not restored: %v", got)
	}
	if got := st.quantity(matSauce); got != 20 {
		t.Errorf("sauce not restored: %v", got)
	}

	last := pub.events[len(pub.events)-1]
	if last.Status != domain.StatusCancelled {
		t.Errorf("expected cancelled event, got %s", last.Status)
	}
}

func TestCompleteLeavesStockUntouched(t *testing.T) {
	svc, st, _ := newFixture()
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, interfaces.CreateOrderCommand{
		Lines: []interfaces.OrderLineCommand{{FoodItemID: itemPizza, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	afterCreate := st.quantity(matFlour)

	completed, err := svc.CompleteOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if completed.Status != domain.StatusCompleted {
		t.Errorf("expected completed, got %s", completed.Status)
	}

	if got := st.quantity(matFlour); got != afterCreate {
		t.Errorf("completion changed stock: %v != %v", got, afterCreate)
	}
}

func TestLifecycleGuard(t *testing.T) {
	svc, st, _ := newFixture()
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, interfaces.CreateOrderCommand{
		Lines: []interfaces.OrderLineCommand{{FoodItemID: itemPizza, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.CompleteOrder(ctx, order.ID); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	stockBefore := st.quantity(matFlour)

	if _, err := svc.CancelOrder(ctx, order.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("cancel after complete: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := svc.CompleteOrder(ctx, order.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("double complete: expected ErrInvalidTransition, got %v", err)
	}

	if got := st.quantity(matFlour); got != stockBefore {
		t.Errorf("rejected transition changed stock: %v", got)
	}

	if _, err := svc.CancelOrder(ctx, 404); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown order: expected ErrNotFound, got %v", err)
	}
}

func TestConservationAcrossCreatesAndCancels(t *testing.T) {
	svc, st, _ := newFixture()
	ctx := context.Background()

	o1, err := svc.CreateOrder(ctx, interfaces.CreateOrderCommand{
		Lines: []interfaces.OrderLineCommand{{FoodItemID: itemPizza, Quantity: 4}},
	})
	if err != nil {
		t.Fatalf("create o1 failed: %v", err)
	}

	if _, err := svc.CreateOrder(ctx, interfaces.CreateOrderCommand{
		Lines: []interfaces.OrderLineCommand{{FoodItemID: itemPasta, Quantity: 2}},
	}); err != nil {
		t.Fatalf("create o2 failed: %v", err)
	}

	if _, err := svc.CancelOrder(ctx, o1.ID); err != nil {
		t.Fatalf("cancel o1 failed: %v", err)
	}

	// Only o2 remains deducted: 2 pasta = 6 flour + 1 sauce.
	if got := st.quantity(matFlour); got != 94 {
		t.Errorf("expected flour 94, got %v", got)
	}
	if got := st.quantity(matCheese); got != 50 {
		t.Errorf("expected cheese 50, got %v", got)
	}
	if got := st.quantity(matSauce); got != 19 {
		t.Errorf("expected sauce 19, got %v", got)
	}
}

func TestConcurrentOrdersSingleWinner(t *testing.T) {
	svc, st, _ := newFixture()
	ctx := context.Background()

	// Single-ingredient item so the contention is purely on flour.
	st.items[3] = &domain.FoodItem{
		ID: 3, Name: "bread", Price: 2, IsAvailable: true,
		Recipe: []domain.RecipeLine{{RawMaterialID: matFlour, QuantityPerUnit: 1}},
	}
	st.materials[matFlour].QuantityAvailable = 10

	quantities := []int{6, 7}
	results := make([]error, len(quantities))

	var wg sync.WaitGroup
	for i, qty := range quantities {
		wg.Add(1)
		go func(i, qty int) {
			defer wg.Done()
			_, err := svc.CreateOrder(ctx, interfaces.CreateOrderCommand{
				Lines: []interfaces.OrderLineCommand{{FoodItemID: 3, Quantity: qty}},
			})
			results[i] = err
		}(i, qty)
	}
	wg.Wait()

	var succeeded, failed, successQty int
	for i, err := range results {
		switch {
		case err == nil:
			succeeded++
			successQty = quantities[i]
		case errors.Is(err, domain.ErrInsufficientStock):
			failed++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if succeeded != 1 || failed != 1 {
		t.Fatalf("expected exactly one winner, got %d successes and %d failures", succeeded, failed)
	}
	if got, want := st.quantity(matFlour), float64(10-successQty); got != want {
		t.Errorf("expected flour %v, got %v", want, got)
	}
}

func TestConflictRetry(t *testing.T) {
	_, st, pub := newFixture()

	flaky := &conflictOrders{inner: &fakeOrders{st: st}, failures: 2}
	svc := NewService(flaky, &fakeItems{st: st}, &fakeMaterials{st: st}, pub, nopLogger{})

	order, err := svc.CreateOrder(context.Background(), interfaces.CreateOrderCommand{
		Lines: []interfaces.OrderLineCommand{{FoodItemID: itemPizza, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("expected retries to recover, got %v", err)
	}
	if order.ID == 0 {
		t.Error("order was not placed")
	}
	if flaky.calls != 3 {
		t.Errorf("expected 3 placement attempts, got %d", flaky.calls)
	}
}

func TestConflictRetryExhaustion(t *testing.T) {
	_, st, pub := newFixture()

	flaky := &conflictOrders{inner: &fakeOrders{st: st}, failures: 100}
	svc := NewService(flaky, &fakeItems{st: st}, &fakeMaterials{st: st}, pub, nopLogger{})

	_, err := svc.CreateOrder(context.Background(), interfaces.CreateOrderCommand{
		Lines: []interfaces.OrderLineCommand{{FoodItemID: itemPizza, Quantity: 1}},
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict after exhaustion, got %v", err)
	}
	if flaky.calls != maxConflictAttempts {
		t.Errorf("expected %d attempts, got %d", maxConflictAttempts, flaky.calls)
	}
	if got := st.quantity(matFlour); got != 100 {
		t.Errorf("stock mutated despite conflicts: %v", got)
	}
}

func TestLowStockAlertPublished(t *testing.T) {
	svc, st, pub := newFixture()

	// One pizza drops cheese from 3 to 2, exactly at its threshold.
	st.materials[matCheese].QuantityAvailable = 3

	if _, err := svc.CreateOrder(context.Background(), interfaces.CreateOrderCommand{
		Lines: []interfaces.OrderLineCommand{{FoodItemID: itemPizza, Quantity: 1}},
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if len(pub.alerts) != 1 {
		t.Fatalf("expected one low-stock alert, got %d", len(pub.alerts))
	}
	alert := pub.alerts[0]
	if alert.RawMaterialID != matCheese || alert.QuantityAvailable != 2 {
		t.Errorf("unexpected alert: %+v", alert)
	}
}

func TestResolveExpandsRecipe(t *testing.T) {
	svc, _, _ := newFixture()

	required, err := svc.Resolve(context.Background(), itemPasta, 4)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if required[matFlour] != 12 {
		t.Errorf("expected 12 flour, got %v", required[matFlour])
	}
	if required[matSauce] != 2 {
		t.Errorf("expected 2 sauce, got %v", required[matSauce])
	}

	if _, err := svc.Resolve(context.Background(), 99, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown item, got %v", err)
	}
	if _, err := svc.Resolve(context.Background(), itemPasta, 0); !errors.Is(err, domain.ErrInvalidOrder) {
		t.Errorf("expected ErrInvalidOrder for zero quantity, got %v", err)
	}
}
