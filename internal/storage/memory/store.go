package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/retail-oms/internal/domain"
)

// dataset — всё содержимое хранилища. Заказы держат позиции внутри себя.
type dataset struct {
	categories map[string]domain.Category
	products   map[string]domain.Product
	customers  map[string]domain.Customer
	orders     map[string]domain.Order
}

func newDataset() *dataset {
	return &dataset{
		categories: make(map[string]domain.Category),
		products:   make(map[string]domain.Product),
		customers:  make(map[string]domain.Customer),
		orders:     make(map[string]domain.Order),
	}
}

// clone делает глубокую копию набора данных для отката транзакции.
func (d *dataset) clone() *dataset {
	out := newDataset()
	for id, c := range d.categories {
		out.categories[id] = c
	}
	for id, p := range d.products {
		out.products[id] = p
	}
	for id, c := range d.customers {
		out.customers[id] = c
	}
	for id, o := range d.orders {
		out.orders[id] = cloneOrder(o)
	}
	return out
}

func cloneOrder(o domain.Order) domain.Order {
	lines := make([]domain.OrderLine, len(o.Lines))
	copy(lines, o.Lines)
	o.Lines = lines
	return o
}

// Store — in-memory реализация domain.Storage для тестов и локальной
// разработки. Один мьютекс на всё хранилище: транзакции затрагивают
// несколько сущностей сразу.
type Store struct {
	mu   sync.Mutex
	data *dataset
}

// NewStore возвращает пустое in-memory хранилище.
func NewStore() *Store {
	return &Store{data: newDataset()}
}

// Repos возвращает репозитории в автокоммитном режиме: каждая операция
// берёт блокировку самостоятельно.
func (s *Store) Repos() domain.Repos {
	return s.repos(false)
}

// Within исполняет fn под блокировкой хранилища. Перед запуском снимается
// слепок данных; ошибка из fn восстанавливает слепок, имитируя rollback.
func (s *Store) Within(ctx context.Context, fn func(domain.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(s.repos(true)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// Ping всегда успешен: хранилище живёт в адресном пространстве процесса.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) repos(inTx bool) domain.Repos {
	return domain.Repos{
		Categories: &categoryRepository{s: s, inTx: inTx},
		Products:   &productRepository{s: s, inTx: inTx},
		Customers:  &customerRepository{s: s, inTx: inTx},
		Orders:     &orderRepository{s: s, inTx: inTx},
	}
}

// acquire берёт блокировку хранилища вне транзакции. Внутри Within
// блокировка уже удерживается, повторный захват привёл бы к deadlock.
func (s *Store) acquire(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

var _ domain.Storage = (*Store)(nil)
