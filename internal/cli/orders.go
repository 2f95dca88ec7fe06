package cli

import (
	"context"

	"github.com/vladislavdragonenkov/retail-oms/internal/domain"
	"github.com/vladislavdragonenkov/retail-oms/internal/service/orders"
)

func (m *Menu) ordersMenu(ctx context.Context) {
	m.printf("\n--- Orders ---\n")
	m.printf("1. List\n2. Show by number\n3. Open empty order\n4. Add line\n5. Change status\n6. Place full order\n")
	choice, ok := m.prompt("Choose: ")
	if !ok {
		return
	}

	switch choice {
	case "1":
		list, err := m.composer.List(ctx)
		if err != nil {
			m.fail(err)
			return
		}
		if len(list) == 0 {
			m.printf("No orders yet.\n")
			return
		}
		for _, order := range list {
			m.printf("%s  %-11s %s  total %s\n",
				order.Number, order.Status, order.PlacedAt.Format("2006-01-02"),
				formatMoney(order.TotalMinor))
		}
	case "2":
		number, ok := m.prompt("Order number: ")
		if !ok {
			return
		}
		order, err := m.composer.Get(ctx, number)
		if err != nil {
			m.fail(err)
			return
		}
		m.printOrder(order)
	case "3":
		customerID, ok := m.prompt("Customer ID: ")
		if !ok {
			return
		}
		order, err := m.composer.Open(ctx, customerID)
		if err != nil {
			m.fail(err)
			return
		}
		m.printf("Order %s opened (id %s).\n", order.Number, order.ID)
	case "4":
		orderID, ok := m.prompt("Order ID: ")
		if !ok {
			return
		}
		productID, ok := m.prompt("Product ID: ")
		if !ok {
			return
		}
		qty, ok := m.promptInt32("Quantity: ")
		if !ok {
			return
		}
		order, err := m.composer.AddLine(ctx, orderID, productID, qty)
		if err != nil {
			m.fail(err)
			return
		}
		m.printf("Line added, order total is now %s.\n", formatMoney(order.TotalMinor))
	case "5":
		number, ok := m.prompt("Order number: ")
		if !ok {
			return
		}
		// Отмена здесь не предлагается: без возврата она не вернула бы
		// товар на склад. Отменяет заказ пункт Process return.
		m.printf("Target status (confirmed/in_progress/delivered)\n")
		raw, ok := m.prompt("Status: ")
		if !ok {
			return
		}
		order, err := m.composer.UpdateStatus(ctx, number, domain.OrderStatus(raw))
		if err != nil {
			m.fail(err)
			return
		}
		m.printf("Order %s is now %s.\n", order.Number, order.Status)
	case "6":
		m.placeFullOrder(ctx)
	default:
		m.printf("Unknown option: %s\n", choice)
	}
}

// placeFullOrder собирает заказ в одну транзакцию: все позиции, затем
// подтверждение. Отказ откатывает заказ вместе с резервами.
func (m *Menu) placeFullOrder(ctx context.Context) {
	customerID, ok := m.prompt("Customer ID: ")
	if !ok {
		return
	}

	var lines []orders.LineRequest
	for {
		productID, ok := m.prompt("Product ID (empty to finish): ")
		if !ok {
			return
		}
		if productID == "" {
			break
		}
		qty, ok := m.promptInt32("Quantity: ")
		if !ok {
			continue
		}
		lines = append(lines, orders.LineRequest{ProductID: productID, Qty: qty})
	}
	if len(lines) == 0 {
		m.printf("Nothing to order.\n")
		return
	}

	order, err := m.composer.Compose(ctx, customerID, lines, func(draft domain.Order) bool {
		m.printOrder(draft)
		return m.confirm("Confirm the order?")
	})
	if err != nil {
		m.fail(err)
		return
	}
	m.printf("Order %s placed, total %s.\n", order.Number, formatMoney(order.TotalMinor))
}

func (m *Menu) processReturn(ctx context.Context) {
	m.printf("\n--- Returns ---\n")
	number, ok := m.prompt("Order number: ")
	if !ok {
		return
	}
	order, err := m.returns.Process(ctx, number)
	if err != nil {
		m.fail(err)
		return
	}
	m.printf("Order %s canceled, %d line(s) returned to stock.\n",
		order.Number, len(order.Lines))
}

func (m *Menu) maintenanceMenu(ctx context.Context) {
	m.printf("\n--- Maintenance ---\n")
	candidates, err := m.purger.Preview(ctx)
	if err != nil {
		m.fail(err)
		return
	}
	if len(candidates) == 0 {
		m.printf("Nothing to purge: no canceled orders older than the retention period.\n")
		return
	}

	m.printf("Orders to purge (canceled before %s):\n",
		m.purger.Cutoff().Format("2006-01-02"))
	for _, order := range candidates {
		m.printf("%s  placed %s  %d line(s)  total %s\n",
			order.Number, order.PlacedAt.Format("2006-01-02"),
			len(order.Lines), formatMoney(order.TotalMinor))
	}
	if !m.confirm("Delete these orders permanently?") {
		m.printf("Purge canceled.\n")
		return
	}

	result, err := m.purger.Commit(ctx)
	if err != nil {
		m.fail(err)
		return
	}
	m.printf("Purged %d order(s) and %d line(s).\n", result.Orders, result.Lines)
}

func (m *Menu) printOrder(order domain.Order) {
	m.printf("Order %s  status %s  placed %s  customer %s\n",
		order.Number, order.Status, order.PlacedAt.Format("2006-01-02"), order.CustomerID)
	for _, line := range order.Lines {
		m.printf("  %s  x%d  @ %s = %s\n",
			line.ProductID, line.Qty,
			formatMoney(line.UnitPriceMinor), formatMoney(line.Subtotal()))
	}
	m.printf("Total: %s\n", formatMoney(order.TotalMinor))
}
