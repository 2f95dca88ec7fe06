// Package inventory содержит журнал движения остатков.
// Все изменения stock проходят через Ledger, чтобы резерв и возврат
// использовали одну и ту же проверку неотрицательности.
package inventory

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/retail-oms/internal/domain"
	"github.com/vladislavdragonenkov/retail-oms/internal/metrics"
)

// Ledger резервирует и возвращает товар на склад.
type Ledger struct {
	logger  *log.Entry
	metrics *metrics.OrderMetrics
}

// NewLedger создаёт журнал движения остатков.
func NewLedger(logger *log.Logger, m *metrics.OrderMetrics) *Ledger {
	return &Ledger{
		logger:  logger.WithField("component", "inventory"),
		metrics: m,
	}
}

// Reserve списывает qty единиц товара. Операция атомарна на уровне
// репозитория: остаток либо уменьшается целиком, либо не меняется.
func (l *Ledger) Reserve(ctx context.Context, products domain.ProductRepository, productID string, qty int32) error {
	if qty <= 0 {
		return fmt.Errorf("reserve %d of %s: %w", qty, productID, domain.ErrQuantityInvalid)
	}

	if err := products.AdjustStock(ctx, productID, -qty); err != nil {
		if l.metrics != nil {
			l.metrics.RecordStockRejection()
		}
		l.logger.WithFields(log.Fields{
			"product_id": productID,
			"qty":        qty,
		}).WithError(err).Warn("stock reservation rejected")
		return fmt.Errorf("reserve %d of %s: %w", qty, productID, err)
	}

	l.logger.WithFields(log.Fields{
		"product_id": productID,
		"qty":        qty,
	}).Debug("stock reserved")
	return nil
}

// Release возвращает qty единиц товара на склад.
func (l *Ledger) Release(ctx context.Context, products domain.ProductRepository, productID string, qty int32) error {
	if qty <= 0 {
		return fmt.Errorf("release %d of %s: %w", qty, productID, domain.ErrQuantityInvalid)
	}

	if err := products.AdjustStock(ctx, productID, qty); err != nil {
		return fmt.Errorf("release %d of %s: %w", qty, productID, err)
	}

	l.logger.WithFields(log.Fields{
		"product_id": productID,
		"qty":        qty,
	}).Debug("stock released")
	return nil
}
