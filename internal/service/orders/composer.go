// Package orders реализует жизненный цикл заказа: открытие, добавление
// позиций, смену статуса и сборку заказа целиком в одной транзакции.
package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/retail-oms/internal/domain"
	"github.com/vladislavdragonenkov/retail-oms/internal/metrics"
	"github.com/vladislavdragonenkov/retail-oms/internal/service/inventory"
)

// LineRequest описывает одну позицию при сборке заказа.
type LineRequest struct {
	ProductID string
	Qty       int32
}

// ConfirmFunc вызывается перед фиксацией собранного заказа.
// Возврат false отменяет всю сборку вместе с резервами.
type ConfirmFunc func(order domain.Order) bool

// Composer управляет заказами поверх хранилища и журнала остатков.
type Composer struct {
	storage domain.Storage
	ledger  *inventory.Ledger
	logger  *log.Entry
	metrics *metrics.OrderMetrics
	now     func() time.Time
}

// NewComposer создаёт сервис заказов. metrics может быть nil.
func NewComposer(storage domain.Storage, ledger *inventory.Ledger, logger *log.Logger, m *metrics.OrderMetrics) *Composer {
	return &Composer{
		storage: storage,
		ledger:  ledger,
		logger:  logger.WithField("component", "orders"),
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock подменяет источник времени. Используется в тестах.
func (c *Composer) WithClock(now func() time.Time) *Composer {
	c.now = now
	return c
}

// Open создаёт пустой заказ в статусе pending со следующим номером.
func (c *Composer) Open(ctx context.Context, customerID string) (domain.Order, error) {
	start := c.now()

	var order domain.Order
	err := c.storage.Within(ctx, func(r domain.Repos) error {
		if _, err := r.Customers.Get(ctx, customerID); err != nil {
			return fmt.Errorf("open order: %w", err)
		}

		number, err := r.Orders.NextNumber(ctx)
		if err != nil {
			return fmt.Errorf("next order number: %w", err)
		}

		order = domain.Order{
			ID:         uuid.NewString(),
			CustomerID: customerID,
			Number:     number,
			Status:     domain.OrderStatusPending,
			PlacedAt:   c.now(),
		}
		if err := r.Orders.Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	if c.metrics != nil {
		c.metrics.RecordOrderOpened()
		c.metrics.RecordOpDuration("open", c.now().Sub(start))
	}
	c.logger.WithFields(log.Fields{
		"order_number": order.Number,
		"customer_id":  customerID,
	}).Info("order opened")
	return order, nil
}

// AddLine резервирует товар и добавляет позицию к существующему заказу.
// Цена фиксируется на момент добавления, итог заказа пересчитывается.
func (c *Composer) AddLine(ctx context.Context, orderID, productID string, qty int32) (domain.Order, error) {
	var order domain.Order
	err := c.storage.Within(ctx, func(r domain.Repos) error {
		current, err := r.Orders.Get(ctx, orderID)
		if err != nil {
			return fmt.Errorf("add line: %w", err)
		}
		if current.Status != domain.OrderStatusPending {
			return fmt.Errorf("add line to %s order: %w", current.Status, domain.ErrIllegalTransition)
		}

		product, err := r.Products.Get(ctx, productID)
		if err != nil {
			return fmt.Errorf("add line: %w", err)
		}

		if err := c.ledger.Reserve(ctx, r.Products, productID, qty); err != nil {
			return err
		}

		line := domain.OrderLine{
			ID:             uuid.NewString(),
			OrderID:        orderID,
			ProductID:      productID,
			Qty:            qty,
			UnitPriceMinor: product.PriceMinor,
		}
		if err := r.Orders.AddLine(ctx, line); err != nil {
			return fmt.Errorf("add line: %w", err)
		}
		if _, err := r.Orders.RecalcTotal(ctx, orderID); err != nil {
			return fmt.Errorf("recalc total: %w", err)
		}

		order, err = r.Orders.Get(ctx, orderID)
		return err
	})
	if err != nil {
		return domain.Order{}, err
	}

	if c.metrics != nil {
		c.metrics.RecordLineAdded()
	}
	c.logger.WithFields(log.Fields{
		"order_number": order.Number,
		"product_id":   productID,
		"qty":          qty,
		"total_minor":  order.TotalMinor,
	}).Info("line added")
	return order, nil
}

// UpdateStatus переводит заказ по номеру в новый статус согласно
// матрице переходов. Отмена через этот метод не возвращает товар
// на склад, для возвратов есть отдельный сервис.
func (c *Composer) UpdateStatus(ctx context.Context, orderNumber string, to domain.OrderStatus) (domain.Order, error) {
	if !to.Valid() {
		return domain.Order{}, fmt.Errorf("update status to %q: %w", to, domain.ErrIllegalTransition)
	}

	var order domain.Order
	err := c.storage.Within(ctx, func(r domain.Repos) error {
		current, err := r.Orders.GetByNumber(ctx, orderNumber)
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		if err := current.TransitionTo(to); err != nil {
			return err
		}
		current.UpdatedAt = c.now()
		if err := r.Orders.SetStatus(ctx, current.ID, to, current.UpdatedAt); err != nil {
			return fmt.Errorf("set status: %w", err)
		}

		order = current
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	if c.metrics != nil {
		c.metrics.RecordStatusTransition(string(to))
	}
	c.logger.WithFields(log.Fields{
		"order_number": orderNumber,
		"status":       to,
	}).Info("order status updated")
	return order, nil
}

// Compose собирает заказ целиком: открывает его, резервирует и
// добавляет все позиции, затем спрашивает подтверждение. Любая ошибка
// или отказ подтверждения откатывают заказ вместе с резервами.
func (c *Composer) Compose(ctx context.Context, customerID string, lines []LineRequest, confirm ConfirmFunc) (domain.Order, error) {
	if len(lines) == 0 {
		return domain.Order{}, fmt.Errorf("compose order: %w", domain.ErrQuantityInvalid)
	}
	start := c.now()

	var order domain.Order
	err := c.storage.Within(ctx, func(r domain.Repos) error {
		if _, err := r.Customers.Get(ctx, customerID); err != nil {
			return fmt.Errorf("compose order: %w", err)
		}

		number, err := r.Orders.NextNumber(ctx)
		if err != nil {
			return fmt.Errorf("next order number: %w", err)
		}

		orderID := uuid.NewString()
		if err := r.Orders.Create(ctx, domain.Order{
			ID:         orderID,
			CustomerID: customerID,
			Number:     number,
			Status:     domain.OrderStatusPending,
			PlacedAt:   c.now(),
		}); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, req := range lines {
			product, err := r.Products.Get(ctx, req.ProductID)
			if err != nil {
				return fmt.Errorf("compose order: %w", err)
			}
			if err := c.ledger.Reserve(ctx, r.Products, req.ProductID, req.Qty); err != nil {
				return err
			}
			if err := r.Orders.AddLine(ctx, domain.OrderLine{
				ID:             uuid.NewString(),
				OrderID:        orderID,
				ProductID:      req.ProductID,
				Qty:            req.Qty,
				UnitPriceMinor: product.PriceMinor,
			}); err != nil {
				return fmt.Errorf("add line: %w", err)
			}
		}
		if _, err := r.Orders.RecalcTotal(ctx, orderID); err != nil {
			return fmt.Errorf("recalc total: %w", err)
		}

		order, err = r.Orders.Get(ctx, orderID)
		if err != nil {
			return err
		}

		if confirm != nil && !confirm(order) {
			return fmt.Errorf("compose order %s: %w", number, domain.ErrOrderDeclined)
		}
		return nil
	})
	if err != nil {
		if c.metrics != nil && isDeclined(err) {
			c.metrics.RecordOrderDeclined()
		}
		return domain.Order{}, err
	}

	if c.metrics != nil {
		c.metrics.RecordOrderOpened()
		c.metrics.RecordOpDuration("compose", c.now().Sub(start))
	}
	c.logger.WithFields(log.Fields{
		"order_number": order.Number,
		"customer_id":  customerID,
		"lines":        len(order.Lines),
		"total_minor":  order.TotalMinor,
	}).Info("order composed")
	return order, nil
}

// Get возвращает заказ по номеру.
func (c *Composer) Get(ctx context.Context, orderNumber string) (domain.Order, error) {
	return c.storage.Repos().Orders.GetByNumber(ctx, orderNumber)
}

// List возвращает все заказы, свежие первыми.
func (c *Composer) List(ctx context.Context) ([]domain.Order, error) {
	return c.storage.Repos().Orders.List(ctx)
}

func isDeclined(err error) bool {
	return errors.Is(err, domain.ErrOrderDeclined)
}
