package returns_test

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
	"github.com/vladislavdragonenkov/retail-oms/internal/service/returns"
	"github.com/vladislavdragonenkov/retail-oms/internal/storage/memory"
)

type fixture struct {
	store     *memory.Store
	composer  *orders.Composer
	processor *returns.Processor
	product   domain.Product
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
	if err := repos.Customers.Create(ctx, domain.Customer{ID: "cust-1", Name: "Joao Silva", Email: "joao@email.com"}); err != nil {
		t.Fatalf("create customer: %v", err)
	}

	logger := log.New()
	logger.SetOutput(io.Discard)
	ledger := inventory.NewLedger(logger, nil)

	return &fixture{
		store:     store,
		composer:  orders.NewComposer(store, ledger, logger, nil),
		processor: returns.NewProcessor(store, ledger, logger, nil),
		product:   product,
	}
}

func (f *fixture) placeOrder(t *testing.T, qty int32, placedAt time.Time) domain.Order {
	t.Helper()

	f.composer.WithClock(func() time.Time { return placedAt })
	order, err := f.composer.Compose(context.Background(), "cust-1", []orders.LineRequest{
		{ProductID: f.product.ID, Qty: qty},
	}, nil)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	return order
}

func TestProcessRestoresStockAndCancels(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	placed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	order := f.placeOrder(t, 2, placed)
	f.processor.WithClock(func() time.Time { return placed.Add(10 * 24 * time.Hour) })

	got, err := f.processor.Process(ctx, order.Number)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if got.Status != domain.OrderStatusCancelled {
		t.Fatalf("status = %s, want canceled", got.Status)
	}

	product, _ := f.store.Repos().Products.Get(ctx, f.product.ID)
	if product.Stock != 5 {
		t.Fatalf("stock after return = %d, want 5", product.Stock)
	}
}

func TestProcessRestocksEveryLine(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Второй товар уходит в ноль после продажи и возвращается из нуля.
	if err := f.store.Repos().Products.Create(ctx, domain.Product{
		ID:         "prod-2",
		CategoryID: "cat-1",
		Name:       "Refactoring",
		PriceMinor: 2000,
		Stock:      1,
	}); err != nil {
		t.Fatalf("create product: %v", err)
	}

	placed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	f.composer.WithClock(func() time.Time { return placed })
	order, err := f.composer.Compose(ctx, "cust-1", []orders.LineRequest{
		{ProductID: "prod-1", Qty: 2},
		{ProductID: "prod-2", Qty: 1},
	}, nil)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	f.processor.WithClock(func() time.Time { return placed.Add(5 * 24 * time.Hour) })
	got, err := f.processor.Process(ctx, order.Number)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if got.Status != domain.OrderStatusCancelled {
		t.Fatalf("status = %s, want canceled", got.Status)
	}

	first, _ := f.store.Repos().Products.Get(ctx, "prod-1")
	if first.Stock != 5 {
		t.Fatalf("first product stock = %d, want 5", first.Stock)
	}
	second, _ := f.store.Repos().Products.Get(ctx, "prod-2")
	if second.Stock != 1 {
		t.Fatalf("second product stock = %d, want 1", second.Stock)
	}
}

func TestProcessExpiredWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	placed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	order := f.placeOrder(t, 2, placed)
	f.processor.WithClock(func() time.Time { return placed.Add(31 * 24 * time.Hour) })

	_, err := f.processor.Process(ctx, order.Number)
	if !errors.Is(err, domain.ErrReturnWindowExpired) {
		t.Fatalf("expected ErrReturnWindowExpired, got %v", err)
	}

	// Просроченный возврат ничего не меняет.
	got, _ := f.store.Repos().Orders.GetByNumber(ctx, order.Number)
	if got.Status != domain.OrderStatusPending {
		t.Fatalf("status = %s, want pending", got.Status)
	}
	product, _ := f.store.Repos().Products.Get(ctx, f.product.ID)
	if product.Stock != 3 {
		t.Fatalf("stock = %d, want 3", product.Stock)
	}
}

func TestProcessExactlyAtWindowBoundary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	placed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	order := f.placeOrder(t, 1, placed)
	f.processor.WithClock(func() time.Time { return placed.Add(returns.DefaultWindow) })

	if _, err := f.processor.Process(ctx, order.Number); err != nil {
		t.Fatalf("return on the last day must pass, got %v", err)
	}
}

func TestProcessIdempotenceGuard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	placed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	order := f.placeOrder(t, 2, placed)
	f.processor.WithClock(func() time.Time { return placed.Add(time.Hour) })

	if _, err := f.processor.Process(ctx, order.Number); err != nil {
		t.Fatalf("first return: %v", err)
	}

	_, err := f.processor.Process(ctx, order.Number)
	if !errors.Is(err, domain.ErrAlreadyCancelled) {
		t.Fatalf("expected ErrAlreadyCancelled, got %v", err)
	}

	// Повторный возврат не должен задваивать остатки.
	product, _ := f.store.Repos().Products.Get(ctx, f.product.ID)
	if product.Stock != 5 {
		t.Fatalf("stock = %d, want 5", product.Stock)
	}
}

func TestProcessUnknownOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.processor.Process(context.Background(), "P404")
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}
