// Package returns обрабатывает возвраты заказов в пределах
// разрешённого окна с возвратом товара на склад.
package returns

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/retail-oms/internal/domain"
	"github.com/vladislavdragonenkov/retail-oms/internal/metrics"
	"github.com/vladislavdragonenkov/retail-oms/internal/service/inventory"
)

// DefaultWindow — срок, в течение которого заказ можно вернуть.
const DefaultWindow = 30 * 24 * time.Hour

// Processor принимает возвраты: отменяет заказ и восстанавливает остатки.
type Processor struct {
	storage domain.Storage
	ledger  *inventory.Ledger
	logger  *log.Entry
	metrics *metrics.OrderMetrics
	window  time.Duration
	now     func() time.Time
}

// NewProcessor создаёт сервис возвратов. metrics может быть nil.
func NewProcessor(storage domain.Storage, ledger *inventory.Ledger, logger *log.Logger, m *metrics.OrderMetrics) *Processor {
	return &Processor{
		storage: storage,
		ledger:  ledger,
		logger:  logger.WithField("component", "returns"),
		metrics: m,
		window:  DefaultWindow,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithWindow задаёт нестандартное окно возврата.
func (p *Processor) WithWindow(window time.Duration) *Processor {
	p.window = window
	return p
}

// WithClock подменяет источник времени. Используется в тестах.
func (p *Processor) WithClock(now func() time.Time) *Processor {
	p.now = now
	return p
}

// Process отменяет заказ по номеру и возвращает все его позиции на
// склад. Отказ: заказ не найден, уже отменён или окно возврата истекло.
// Восстановление остатков и смена статуса происходят в одной транзакции.
func (p *Processor) Process(ctx context.Context, orderNumber string) (domain.Order, error) {
	var order domain.Order
	err := p.storage.Within(ctx, func(r domain.Repos) error {
		current, err := r.Orders.GetByNumber(ctx, orderNumber)
		if err != nil {
			return fmt.Errorf("process return: %w", err)
		}

		if current.Status == domain.OrderStatusCancelled {
			return fmt.Errorf("process return of %s: %w", orderNumber, domain.ErrAlreadyCancelled)
		}

		age := p.now().Sub(current.PlacedAt)
		if age > p.window {
			return fmt.Errorf("process return of %s placed %s ago: %w",
				orderNumber, age.Round(time.Hour), domain.ErrReturnWindowExpired)
		}

		for _, line := range current.Lines {
			if err := p.ledger.Release(ctx, r.Products, line.ProductID, line.Qty); err != nil {
				return err
			}
		}

		current.Status = domain.OrderStatusCancelled
		current.UpdatedAt = p.now()
		if err := r.Orders.SetStatus(ctx, current.ID, domain.OrderStatusCancelled, current.UpdatedAt); err != nil {
			return fmt.Errorf("set status: %w", err)
		}

		order = current
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	if p.metrics != nil {
		p.metrics.RecordReturnProcessed()
		p.metrics.RecordStatusTransition(string(domain.OrderStatusCancelled))
	}
	p.logger.WithFields(log.Fields{
		"order_number": orderNumber,
		"lines":        len(order.Lines),
	}).Info("return processed")
	return order, nil
}
