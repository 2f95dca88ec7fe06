package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/retail-oms/internal/domain"
)

func seedCatalog(t *testing.T, store *Store) (domain.Customer, domain.Product) {
	t.Helper()

	ctx := context.Background()
	repos := store.Repos()

	category := domain.Category{ID: "cat-1", Name: "Books"}
	if err := repos.Categories.Create(ctx, category); err != nil {
		t.Fatalf("create category: %v", err)
	}

	product := domain.Product{
		ID:         "prod-1",
		CategoryID: category.ID,
		Name:       "Clean Code",
		PriceMinor: 8990,
		Stock:      5,
	}
	if err := repos.Products.Create(ctx, product); err != nil {
		t.Fatalf("create product: %v", err)
	}

	customer := domain.Customer{ID: "cust-1", Name: "Joao Silva", Email: "joao@email.com"}
	if err := repos.Customers.Create(ctx, customer); err != nil {
		t.Fatalf("create customer: %v", err)
	}

	return customer, product
}

func TestWithin_CommitKeepsEffects(t *testing.T) {
	store := NewStore()
	customer, product := seedCatalog(t, store)
	ctx := context.Background()

	err := store.Within(ctx, func(r domain.Repos) error {
		if err := r.Products.AdjustStock(ctx, product.ID, -2); err != nil {
			return err
		}
		return r.Orders.Create(ctx, domain.Order{
			ID:         "order-1",
			CustomerID: customer.ID,
			Number:     "P001",
			Status:     domain.OrderStatusPending,
			PlacedAt:   time.Now().UTC(),
		})
	})
	if err != nil {
		t.Fatalf("within: %v", err)
	}

	got, err := store.Repos().Products.Get(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got.Stock != 3 {
		t.Fatalf("stock after commit = %d, want 3", got.Stock)
	}
	if _, err := store.Repos().Orders.Get(ctx, "order-1"); err != nil {
		t.Fatalf("order must survive commit: %v", err)
	}
}

func TestWithin_ErrorRollsBackEverything(t *testing.T) {
	store := NewStore()
	customer, product := seedCatalog(t, store)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.Within(ctx, func(r domain.Repos) error {
		if err := r.Products.AdjustStock(ctx, product.ID, -5); err != nil {
			return err
		}
		if err := r.Orders.Create(ctx, domain.Order{
			ID:         "order-1",
			CustomerID: customer.ID,
			Number:     "P001",
			Status:     domain.OrderStatusPending,
			PlacedAt:   time.Now().UTC(),
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	// Ни списания остатка, ни строки заказа после отката.
	got, err := store.Repos().Products.Get(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got.Stock != 5 {
		t.Fatalf("stock after rollback = %d, want 5", got.Stock)
	}
	if _, err := store.Repos().Orders.Get(ctx, "order-1"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("order must not survive rollback, got %v", err)
	}
}

func TestAdjustStock_RejectsNegativeResult(t *testing.T) {
	store := NewStore()
	_, product := seedCatalog(t, store)
	ctx := context.Background()

	err := store.Repos().Products.AdjustStock(ctx, product.ID, -6)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	got, _ := store.Repos().Products.Get(ctx, product.ID)
	if got.Stock != 5 {
		t.Fatalf("failed adjust must not mutate stock, got %d", got.Stock)
	}
}

func TestCustomerEmailUnique(t *testing.T) {
	store := NewStore()
	seedCatalog(t, store)
	ctx := context.Background()

	err := store.Repos().Customers.Create(ctx, domain.Customer{
		ID:    "cust-2",
		Name:  "Impostor",
		Email: "joao@email.com",
	})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestProductDeleteRestrictedByLines(t *testing.T) {
	store := NewStore()
	customer, product := seedCatalog(t, store)
	ctx := context.Background()
	repos := store.Repos()

	order := domain.Order{
		ID:         "order-1",
		CustomerID: customer.ID,
		Number:     "P001",
		Status:     domain.OrderStatusPending,
		PlacedAt:   time.Now().UTC(),
	}
	if err := repos.Orders.Create(ctx, order); err != nil {
		t.Fatalf("create order: %v", err)
	}
	if err := repos.Orders.AddLine(ctx, domain.OrderLine{
		ID:             "line-1",
		OrderID:        order.ID,
		ProductID:      product.ID,
		Qty:            1,
		UnitPriceMinor: product.PriceMinor,
	}); err != nil {
		t.Fatalf("add line: %v", err)
	}

	if err := repos.Products.Delete(ctx, product.ID); !errors.Is(err, domain.ErrProductInUse) {
		t.Fatalf("expected ErrProductInUse, got %v", err)
	}
	if err := repos.Categories.Delete(ctx, "cat-1"); !errors.Is(err, domain.ErrProductInUse) {
		t.Fatalf("cascade delete through referenced product must fail, got %v", err)
	}
}

func TestNextNumber_Sequence(t *testing.T) {
	store := NewStore()
	customer, _ := seedCatalog(t, store)
	ctx := context.Background()
	repos := store.Repos()

	number, err := repos.Orders.NextNumber(ctx)
	if err != nil {
		t.Fatalf("next number: %v", err)
	}
	if number != "P001" {
		t.Fatalf("first number = %s, want P001", number)
	}

	for i, n := range []string{"P001", "P007"} {
		if err := repos.Orders.Create(ctx, domain.Order{
			ID:         n,
			CustomerID: customer.ID,
			Number:     n,
			Status:     domain.OrderStatusPending,
			PlacedAt:   time.Now().UTC().Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("create order %s: %v", n, err)
		}
	}

	number, err = repos.Orders.NextNumber(ctx)
	if err != nil {
		t.Fatalf("next number: %v", err)
	}
	// Следующий номер идёт от максимального суффикса, пропуски не заполняются.
	if number != "P008" {
		t.Fatalf("next number = %s, want P008", number)
	}
}
