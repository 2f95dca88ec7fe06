// Package purge удаляет отменённые заказы, вышедшие за срок хранения.
package purge

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/retail-oms/internal/domain"
	"github.com/vladislavdragonenkov/retail-oms/internal/metrics"
)

// DefaultRetentionMonths — срок хранения отменённых заказов.
const DefaultRetentionMonths = 6

// Result описывает итог чистки.
type Result struct {
	Cutoff time.Time
	Orders int
	Lines  int
}

// Purger находит и удаляет отменённые заказы старше срока хранения.
type Purger struct {
	storage         domain.Storage
	logger          *log.Entry
	metrics         *metrics.OrderMetrics
	retentionMonths int
	now             func() time.Time
}

// NewPurger создаёт сервис чистки. metrics может быть nil.
func NewPurger(storage domain.Storage, logger *log.Logger, m *metrics.OrderMetrics) *Purger {
	return &Purger{
		storage:         storage,
		logger:          logger.WithField("component", "purge"),
		metrics:         m,
		retentionMonths: DefaultRetentionMonths,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// WithRetention задаёт нестандартный срок хранения в месяцах.
func (p *Purger) WithRetention(months int) *Purger {
	if months > 0 {
		p.retentionMonths = months
	}
	return p
}

// WithClock подменяет источник времени. Используется в тестах.
func (p *Purger) WithClock(now func() time.Time) *Purger {
	p.now = now
	return p
}

// Cutoff возвращает границу: заказы, отменённые раньше неё, подлежат удалению.
func (p *Purger) Cutoff() time.Time {
	return p.now().AddDate(0, -p.retentionMonths, 0)
}

// Preview возвращает кандидатов на удаление, ничего не меняя.
func (p *Purger) Preview(ctx context.Context) ([]domain.Order, error) {
	candidates, err := p.storage.Repos().Orders.ListCancelledBefore(ctx, p.Cutoff())
	if err != nil {
		return nil, fmt.Errorf("preview purge: %w", err)
	}
	return candidates, nil
}

// Commit удаляет заказы из Preview вместе с их позициями в одной
// транзакции и возвращает счётчики удалённого.
func (p *Purger) Commit(ctx context.Context) (Result, error) {
	cutoff := p.Cutoff()
	result := Result{Cutoff: cutoff}

	err := p.storage.Within(ctx, func(r domain.Repos) error {
		orders, lines, err := r.Orders.DeleteCancelledBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("purge orders: %w", err)
		}
		result.Orders = orders
		result.Lines = lines
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if p.metrics != nil && result.Orders > 0 {
		p.metrics.RecordPurge(result.Orders, result.Lines)
	}
	p.logger.WithFields(log.Fields{
		"cutoff": cutoff.Format(time.RFC3339),
		"orders": result.Orders,
		"lines":  result.Lines,
	}).Info("purge committed")
	return result, nil
}
