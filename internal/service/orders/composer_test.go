package orders_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/retail-oms/internal/domain"
	"github.com/vladislavdragonenkov/retail-oms/internal/service/inventory"
	"github.com/vladislavdragonenkov/retail-oms/internal/service/orders"
	"github.com/vladislavdragonenkov/retail-oms/internal/storage/memory"
)

type fixture struct {
	store    *memory.Store
	composer *orders.Composer
	customer domain.Customer
	product  domain.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()

	if err := repos.Categories.Create(ctx, domain.Category{ID: "cat-1", Name: "Books"}); err != nil {
		t.Fatalf("create category: %v", err)
	}
	product := domain.Product{
		ID:         "prod-1",
		CategoryID: "cat-1",
		Name:       "Clean Code",
		PriceMinor: 1000,
		Stock:      5,
	}
	if err := repos.Products.Create(ctx, product); err != nil {
		t.Fatalf("create product: %v", err)
	}
	customer := domain.Customer{ID: "cust-1", Name: "Joao Silva", Email: "joao@email.com"}
	if err := repos.Customers.Create(ctx, customer); err != nil {
		t.Fatalf("create customer: %v", err)
	}

	logger := log.New()
	logger.SetOutput(io.Discard)
	ledger := inventory.NewLedger(logger, nil)

	return &fixture{
		store:    store,
		composer: orders.NewComposer(store, ledger, logger, nil),
		customer: customer,
		product:  product,
	}
}

func TestOpenAssignsSequentialNumbers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.composer.Open(ctx, f.customer.ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if first.Number != "P001" {
		t.Fatalf("first order number = %s, want P001", first.Number)
	}
	if first.Status != domain.OrderStatusPending {
		t.Fatalf("new order status = %s, want pending", first.Status)
	}

	second, err := f.composer.Open(ctx, f.customer.ID)
	if err != nil {
		t.Fatalf("open second: %v", err)
	}
	if second.Number != "P002" {
		t.Fatalf("second order number = %s, want P002", second.Number)
	}
}

func TestOpenUnknownCustomer(t *testing.T) {
	f := newFixture(t)

	_, err := f.composer.Open(context.Background(), "missing")
	if !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestAddLineReservesStockAndRecalculatesTotal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.composer.Open(ctx, f.customer.ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	order, err = f.composer.AddLine(ctx, order.ID, f.product.ID, 2)
	if err != nil {
		t.Fatalf("add line: %v", err)
	}

	if order.TotalMinor != 2000 {
		t.Fatalf("total = %d, want 2000", order.TotalMinor)
	}
	if len(order.Lines) != 1 || order.Lines[0].UnitPriceMinor != 1000 {
		t.Fatalf("unexpected lines: %+v", order.Lines)
	}

	product, _ := f.store.Repos().Products.Get(ctx, f.product.ID)
	if product.Stock != 3 {
		t.Fatalf("stock = %d, want 3", product.Stock)
	}
}

func TestAddLineSnapshotsUnitPrice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.composer.Open(ctx, f.customer.ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.composer.AddLine(ctx, order.ID, f.product.ID, 1); err != nil {
		t.Fatalf("add line: %v", err)
	}

	// Цена товара меняется после добавления позиции.
	updated := f.product
	updated.PriceMinor = 9999
	updated.Stock = 4
	if err := f.store.Repos().Products.Update(ctx, updated); err != nil {
		t.Fatalf("update product: %v", err)
	}

	got, err := f.composer.Get(ctx, order.Number)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Lines[0].UnitPriceMinor != 1000 || got.TotalMinor != 1000 {
		t.Fatalf("line must keep the price at order time, got %+v total %d", got.Lines[0], got.TotalMinor)
	}
}

func TestAddLineInsufficientStockLeavesOrderIntact(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.composer.Open(ctx, f.customer.ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	_, err = f.composer.AddLine(ctx, order.ID, f.product.ID, 6)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	got, err := f.composer.Get(ctx, order.Number)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Lines) != 0 || got.TotalMinor != 0 {
		t.Fatalf("failed line must not touch the order, got %+v", got)
	}
	product, _ := f.store.Repos().Products.Get(ctx, f.product.ID)
	if product.Stock != 5 {
		t.Fatalf("stock must stay intact, got %d", product.Stock)
	}
}

func TestAddLineRejectedOutsidePending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.composer.Open(ctx, f.customer.ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.composer.UpdateStatus(ctx, order.Number, domain.OrderStatusConfirmed); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	_, err = f.composer.AddLine(ctx, order.ID, f.product.ID, 1)
	if !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}

func TestUpdateStatusFollowsTransitionMatrix(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.composer.Open(ctx, f.customer.ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	for _, to := range []domain.OrderStatus{
		domain.OrderStatusConfirmed,
		domain.OrderStatusInProgress,
		domain.OrderStatusDelivered,
	} {
		order, err = f.composer.UpdateStatus(ctx, order.Number, to)
		if err != nil {
			t.Fatalf("transition to %s: %v", to, err)
		}
		if order.Status != to {
			t.Fatalf("status = %s, want %s", order.Status, to)
		}
	}

	_, err = f.composer.UpdateStatus(ctx, order.Number, domain.OrderStatusCancelled)
	if !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("delivered order must not be cancellable, got %v", err)
	}
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.composer.UpdateStatus(context.Background(), "P999", domain.OrderStatusConfirmed)
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestComposeConfirmedOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.composer.Compose(ctx, f.customer.ID, []orders.LineRequest{
		{ProductID: f.product.ID, Qty: 2},
	}, func(o domain.Order) bool {
		return o.TotalMinor == 2000
	})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if order.Number != "P001" || order.TotalMinor != 2000 {
		t.Fatalf("unexpected order: %+v", order)
	}

	product, _ := f.store.Repos().Products.Get(ctx, f.product.ID)
	if product.Stock != 3 {
		t.Fatalf("stock = %d, want 3", product.Stock)
	}
}

func TestComposeDeclinedRollsBackReservation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.composer.Compose(ctx, f.customer.ID, []orders.LineRequest{
		{ProductID: f.product.ID, Qty: 2},
	}, func(domain.Order) bool { return false })
	if !errors.Is(err, domain.ErrOrderDeclined) {
		t.Fatalf("expected ErrOrderDeclined, got %v", err)
	}

	product, _ := f.store.Repos().Products.Get(ctx, f.product.ID)
	if product.Stock != 5 {
		t.Fatalf("declined compose must release stock, got %d", product.Stock)
	}
	list, err := f.composer.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("declined compose must leave no orders, got %d", len(list))
	}
}

func TestComposeFailingLineRollsBackWholeOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.composer.Compose(ctx, f.customer.ID, []orders.LineRequest{
		{ProductID: f.product.ID, Qty: 3},
		{ProductID: f.product.ID, Qty: 3},
	}, nil)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	product, _ := f.store.Repos().Products.Get(ctx, f.product.ID)
	if product.Stock != 5 {
		t.Fatalf("first reservation must roll back too, got stock %d", product.Stock)
	}
}

func TestComposeWithClock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	placed := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	f.composer.WithClock(func() time.Time { return placed })

	order, err := f.composer.Open(ctx, f.customer.ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !order.PlacedAt.Equal(placed) {
		t.Fatalf("placed at = %v, want %v", order.PlacedAt, placed)
	}
}
