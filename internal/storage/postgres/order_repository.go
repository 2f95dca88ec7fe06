package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/retail-oms/internal/domain"
)

type orderRepository struct {
	q dbtx
}

var _ domain.OrderRepository = (*orderRepository)(nil)

const orderColumns = `id, customer_id, number, status, placed_at, total_minor, updated_at`

func (r *orderRepository) Create(ctx context.Context, order domain.Order) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, number, status, placed_at, total_minor, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, order.ID, order.CustomerID, order.Number, string(order.Status),
		order.PlacedAt, order.TotalMinor, nullableTime(order.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err, "orders_number_key") {
			return fmt.Errorf("insert order %s: %w", order.Number, domain.ErrOrderNumberTaken)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert order %s: %w", order.Number, domain.ErrCustomerNotFound)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *orderRepository) Get(ctx context.Context, id string) (domain.Order, error) {
	return r.getOne(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE id = $1
	`, id)
}

func (r *orderRepository) GetByNumber(ctx context.Context, number string) (domain.Order, error) {
	return r.getOne(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE number = $1
	`, number)
}

func (r *orderRepository) getOne(ctx context.Context, query string, arg any) (domain.Order, error) {
	order, err := scanOrder(r.q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	lines, err := r.loadLines(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Lines = lines
	return order, nil
}

func (r *orderRepository) List(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, `
		SELECT `+orderColumns+` FROM orders
		ORDER BY placed_at DESC, number DESC
	`)
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return r.list(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE customer_id = $1
		ORDER BY placed_at DESC, number DESC
	`, customerID)
}

func (r *orderRepository) ListByPeriod(ctx context.Context, from, to time.Time) ([]domain.Order, error) {
	return r.list(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE placed_at >= $1 AND placed_at <= $2
		ORDER BY placed_at DESC, number DESC
	`, from, to)
}

func (r *orderRepository) ListCancelledBefore(ctx context.Context, cutoff time.Time) ([]domain.Order, error) {
	return r.list(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE status = $1 AND placed_at < $2
		ORDER BY placed_at DESC, number DESC
	`, string(domain.OrderStatusCancelled), cutoff)
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	for i := range orders {
		lines, err := r.loadLines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
	}
	return orders, nil
}

// NextNumber берёт максимальный числовой суффикс существующих номеров.
// Вызывается внутри транзакции сборки заказа, так что уникальный индекс
// номера закрывает гонку двух параллельных сборок.
func (r *orderRepository) NextNumber(ctx context.Context) (string, error) {
	var max int
	err := r.q.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(CAST(SUBSTRING(number FROM 2) AS INTEGER)), 0)
		FROM orders
		WHERE number ~ '^P\d+$'
	`).Scan(&max)
	if err != nil {
		return "", fmt.Errorf("select max order number: %w", err)
	}
	return fmt.Sprintf("P%03d", max+1), nil
}

func (r *orderRepository) AddLine(ctx context.Context, line domain.OrderLine) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO order_lines (id, order_id, product_id, qty, unit_price_minor)
		VALUES ($1, $2, $3, $4, $5)
	`, line.ID, line.OrderID, line.ProductID, line.Qty, line.UnitPriceMinor)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert order line: %w", domain.ErrOrderNotFound)
		}
		return fmt.Errorf("insert order line: %w", err)
	}
	return nil
}

// RecalcTotal пересчитывает сумму заказа по его позициям на стороне базы
// и возвращает актуальное значение.
func (r *orderRepository) RecalcTotal(ctx context.Context, orderID string) (int64, error) {
	var total int64
	err := r.q.QueryRowContext(ctx, `
		UPDATE orders SET total_minor = (
			SELECT COALESCE(SUM(qty::BIGINT * unit_price_minor), 0)
			FROM order_lines
			WHERE order_id = $1
		)
		WHERE id = $1
		RETURNING total_minor
	`, orderID).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrOrderNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("recalc order total: %w", err)
	}
	return total, nil
}

func (r *orderRepository) SetStatus(ctx context.Context, orderID string, status domain.OrderStatus, updatedAt time.Time) error {
	result, err := r.q.ExecContext(ctx, `
		UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1
	`, orderID, string(status), updatedAt)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// DeleteCancelledBefore удаляет отменённые заказы старше cutoff вместе
// с позициями и возвращает счётчики удалённого.
func (r *orderRepository) DeleteCancelledBefore(ctx context.Context, cutoff time.Time) (int, int, error) {
	linesResult, err := r.q.ExecContext(ctx, `
		DELETE FROM order_lines
		WHERE order_id IN (
			SELECT id FROM orders WHERE status = $1 AND placed_at < $2
		)
	`, string(domain.OrderStatusCancelled), cutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("delete expired order lines: %w", err)
	}
	lines, err := linesResult.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("deleted lines rows affected: %w", err)
	}

	ordersResult, err := r.q.ExecContext(ctx, `
		DELETE FROM orders WHERE status = $1 AND placed_at < $2
	`, string(domain.OrderStatusCancelled), cutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("delete expired orders: %w", err)
	}
	orders, err := ordersResult.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("deleted orders rows affected: %w", err)
	}

	return int(orders), int(lines), nil
}

func (r *orderRepository) loadLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, order_id, product_id, qty, unit_price_minor
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select order lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID,
			&line.Qty, &line.UnitPriceMinor); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}
	return lines, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order     domain.Order
		status    string
		updatedAt sql.NullTime
	)
	if err := row.Scan(&order.ID, &order.CustomerID, &order.Number, &status,
		&order.PlacedAt, &order.TotalMinor, &updatedAt); err != nil {
		return domain.Order{}, err
	}
	order.Status = domain.OrderStatus(status)
	if updatedAt.Valid {
		order.UpdatedAt = updatedAt.Time
	}
	return order, nil
}

func nullableTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
