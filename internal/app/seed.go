package app

import (
	"context"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/retail-oms/internal/domain"
)

// seedDemoData наполняет пустое хранилище демонстрационным набором:
// три категории, шесть товаров (два с нулевым остатком), два покупателя
// и два заказа. Для postgres тот же набор заливает seed-миграция.
func seedDemoData(ctx context.Context, storage domain.Storage) error {
	return storage.Within(ctx, func(r domain.Repos) error {
		for _, c := range []domain.Category{
			{ID: "cat-electronics", Name: "Electronics"},
			{ID: "cat-books", Name: "Books"},
			{ID: "cat-games", Name: "Games"},
		} {
			if err := r.Categories.Create(ctx, c); err != nil {
				return fmt.Errorf("seed category %s: %w", c.Name, err)
			}
		}

		for _, p := range []domain.Product{
			{ID: "prod-smartphone", CategoryID: "cat-electronics", Name: "Smartphone", PriceMinor: 199999, Stock: 10},
			{ID: "prod-notebook", CategoryID: "cat-electronics", Name: "Notebook", PriceMinor: 399999, Stock: 0},
			{ID: "prod-clean-code", CategoryID: "cat-books", Name: "Clean Code", PriceMinor: 8990, Stock: 5},
			{ID: "prod-ddd", CategoryID: "cat-books", Name: "Domain-Driven Design", PriceMinor: 12990, Stock: 3},
			{ID: "prod-tlou", CategoryID: "cat-games", Name: "The Last of Us", PriceMinor: 19990, Stock: 0},
			{ID: "prod-gow", CategoryID: "cat-games", Name: "God of War", PriceMinor: 24990, Stock: 8},
		} {
			if err := r.Products.Create(ctx, p); err != nil {
				return fmt.Errorf("seed product %s: %w", p.Name, err)
			}
		}

		for _, c := range []domain.Customer{
			{ID: "cust-joao", Name: "Joao Silva", Email: "joao@email.com"},
			{ID: "cust-maria", Name: "Maria Santos", Email: "maria@email.com"},
		} {
			if err := r.Customers.Create(ctx, c); err != nil {
				return fmt.Errorf("seed customer %s: %w", c.Name, err)
			}
		}

		type seedLine struct {
			id, productID string
			qty           int32
			priceMinor    int64
		}
		for _, o := range []struct {
			id, customerID, number string
			status                 domain.OrderStatus
			placedAt               time.Time
			lines                  []seedLine
		}{
			{
				id: "ord-p001", customerID: "cust-joao", number: "P001",
				status:   domain.OrderStatusConfirmed,
				placedAt: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
				lines: []seedLine{
					{id: "line-p001-1", productID: "prod-smartphone", qty: 1, priceMinor: 199999},
					{id: "line-p001-2", productID: "prod-clean-code", qty: 2, priceMinor: 8990},
				},
			},
			{
				id: "ord-p002", customerID: "cust-maria", number: "P002",
				status:   domain.OrderStatusPending,
				placedAt: time.Date(2025, 10, 2, 0, 0, 0, 0, time.UTC),
				lines: []seedLine{
					{id: "line-p002-1", productID: "prod-ddd", qty: 1, priceMinor: 12990},
					{id: "line-p002-2", productID: "prod-gow", qty: 1, priceMinor: 24990},
				},
			},
		} {
			if err := r.Orders.Create(ctx, domain.Order{
				ID: o.id, CustomerID: o.customerID, Number: o.number,
				Status: o.status, PlacedAt: o.placedAt,
			}); err != nil {
				return fmt.Errorf("seed order %s: %w", o.number, err)
			}
			for _, line := range o.lines {
				if err := r.Orders.AddLine(ctx, domain.OrderLine{
					ID: line.id, OrderID: o.id, ProductID: line.productID,
					Qty: line.qty, UnitPriceMinor: line.priceMinor,
				}); err != nil {
					return fmt.Errorf("seed line of %s: %w", o.number, err)
				}
			}
			if _, err := r.Orders.RecalcTotal(ctx, o.id); err != nil {
				return fmt.Errorf("seed total of %s: %w", o.number, err)
			}
		}

		return nil
	})
}
