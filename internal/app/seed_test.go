package app

import (
	"context"
	"testing"

	"github.com/vladislavdragonenkov/retail-oms/internal/storage/memory"
)

func TestSeedDemoData(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	if err := seedDemoData(ctx, store); err != nil {
		t.Fatalf("seed: %v", err)
	}

	repos := store.Repos()
	categories, err := repos.Categories.List(ctx)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(categories) != 3 {
		t.Fatalf("categories = %d, want 3", len(categories))
	}

	products, err := repos.Products.List(ctx)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 6 {
		t.Fatalf("products = %d, want 6", len(products))
	}
	zeroStock := 0
	for _, p := range products {
		if p.Stock == 0 {
			zeroStock++
		}
	}
	if zeroStock != 2 {
		t.Fatalf("zero-stock products = %d, want 2", zeroStock)
	}

	order, err := repos.Orders.GetByNumber(ctx, "P001")
	if err != nil {
		t.Fatalf("get P001: %v", err)
	}
	// Смартфон 1999.99 + две книги по 89.90.
	if order.TotalMinor != 217979 {
		t.Fatalf("P001 total = %d, want 217979", order.TotalMinor)
	}
	if len(order.Lines) != 2 {
		t.Fatalf("P001 lines = %d, want 2", len(order.Lines))
	}

	next, err := repos.Orders.NextNumber(ctx)
	if err != nil {
		t.Fatalf("next number: %v", err)
	}
	if next != "P003" {
		t.Fatalf("next number = %s, want P003", next)
	}
}

func TestSeedDemoDataTwiceFails(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	if err := seedDemoData(ctx, store); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := seedDemoData(ctx, store); err == nil {
		t.Fatal("second seed on a populated store must fail")
	}

	// Повторный провал не должен портить данные.
	products, err := store.Repos().Products.List(ctx)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 6 {
		t.Fatalf("products after failed reseed = %d, want 6", len(products))
	}
}
