package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/retail-oms/internal/domain"
)

// orderRepository — in-memory реализация OrderRepository.
type orderRepository struct {
	s    *Store
	inTx bool
}

func (r *orderRepository) Create(_ context.Context, order domain.Order) error {
	defer r.s.acquire(r.inTx)()

	if _, exists := r.s.data.orders[order.ID]; exists {
		return fmt.Errorf("order %s already exists", order.ID)
	}
	for _, existing := range r.s.data.orders {
		if existing.Number == order.Number {
			return domain.ErrOrderNumberTaken
		}
	}
	if _, ok := r.s.data.customers[order.CustomerID]; !ok {
		return domain.ErrCustomerNotFound
	}
	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	r.s.data.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *orderRepository) Get(_ context.Context, id string) (domain.Order, error) {
	defer r.s.acquire(r.inTx)()

	order, ok := r.s.data.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (r *orderRepository) GetByNumber(_ context.Context, number string) (domain.Order, error) {
	defer r.s.acquire(r.inTx)()

	for _, order := range r.s.data.orders {
		if order.Number == number {
			return cloneOrder(order), nil
		}
	}
	return domain.Order{}, domain.ErrOrderNotFound
}

func (r *orderRepository) List(_ context.Context) ([]domain.Order, error) {
	defer r.s.acquire(r.inTx)()
	return r.collect(func(domain.Order) bool { return true }), nil
}

func (r *orderRepository) ListByCustomer(_ context.Context, customerID string) ([]domain.Order, error) {
	defer r.s.acquire(r.inTx)()
	return r.collect(func(o domain.Order) bool { return o.CustomerID == customerID }), nil
}

func (r *orderRepository) ListByPeriod(_ context.Context, from, to time.Time) ([]domain.Order, error) {
	defer r.s.acquire(r.inTx)()
	return r.collect(func(o domain.Order) bool {
		return !o.PlacedAt.Before(from) && !o.PlacedAt.After(to)
	}), nil
}

func (r *orderRepository) ListCancelledBefore(_ context.Context, cutoff time.Time) ([]domain.Order, error) {
	defer r.s.acquire(r.inTx)()
	return r.collect(func(o domain.Order) bool {
		return o.Status == domain.OrderStatusCancelled && o.PlacedAt.Before(cutoff)
	}), nil
}

// NextNumber выдаёт P(max+1) по числовым суффиксам существующих номеров.
func (r *orderRepository) NextNumber(_ context.Context) (string, error) {
	defer r.s.acquire(r.inTx)()

	max := 0
	for _, order := range r.s.data.orders {
		suffix, ok := strings.CutPrefix(order.Number, "P")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("P%03d", max+1), nil
}

func (r *orderRepository) AddLine(_ context.Context, line domain.OrderLine) error {
	defer r.s.acquire(r.inTx)()

	order, ok := r.s.data.orders[line.OrderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if _, ok := r.s.data.products[line.ProductID]; !ok {
		return domain.ErrProductNotFound
	}
	order.Lines = append(order.Lines, line)
	r.s.data.orders[line.OrderID] = order
	return nil
}

func (r *orderRepository) RecalcTotal(_ context.Context, orderID string) (int64, error) {
	defer r.s.acquire(r.inTx)()

	order, ok := r.s.data.orders[orderID]
	if !ok {
		return 0, domain.ErrOrderNotFound
	}
	order.TotalMinor = order.LinesTotal()
	r.s.data.orders[orderID] = order
	return order.TotalMinor, nil
}

func (r *orderRepository) SetStatus(_ context.Context, orderID string, status domain.OrderStatus, updatedAt time.Time) error {
	defer r.s.acquire(r.inTx)()

	order, ok := r.s.data.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.Status = status
	order.UpdatedAt = updatedAt
	r.s.data.orders[orderID] = order
	return nil
}

func (r *orderRepository) DeleteCancelledBefore(_ context.Context, cutoff time.Time) (int, int, error) {
	defer r.s.acquire(r.inTx)()

	orders, lines := 0, 0
	for id, order := range r.s.data.orders {
		if order.Status != domain.OrderStatusCancelled || !order.PlacedAt.Before(cutoff) {
			continue
		}
		orders++
		lines += len(order.Lines)
		delete(r.s.data.orders, id)
	}
	return orders, lines, nil
}

func (r *orderRepository) collect(match func(domain.Order) bool) []domain.Order {
	result := make([]domain.Order, 0, len(r.s.data.orders))
	for _, order := range r.s.data.orders {
		if match(order) {
			result = append(result, cloneOrder(order))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].PlacedAt.Equal(result[j].PlacedAt) {
			return result[i].PlacedAt.After(result[j].PlacedAt)
		}
		return result[i].Number > result[j].Number
	})
	return result
}

var _ domain.OrderRepository = (*orderRepository)(nil)
