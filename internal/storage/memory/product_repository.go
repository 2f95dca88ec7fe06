package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/vladislavdragonenkov/retail-oms/internal/domain"
)

// productRepository — in-memory реализация ProductRepository.
type productRepository struct {
	s    *Store
	inTx bool
}

func (r *productRepository) Create(_ context.Context, product domain.Product) error {
	defer r.s.acquire(r.inTx)()

	if _, exists := r.s.data.products[product.ID]; exists {
		return fmt.Errorf("product %s already exists", product.ID)
	}
	if _, ok := r.s.data.categories[product.CategoryID]; !ok {
		return domain.ErrCategoryNotFound
	}
	r.s.data.products[product.ID] = product
	return nil
}

func (r *productRepository) Get(_ context.Context, id string) (domain.Product, error) {
	defer r.s.acquire(r.inTx)()

	product, ok := r.s.data.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

func (r *productRepository) List(_ context.Context) ([]domain.Product, error) {
	defer r.s.acquire(r.inTx)()
	return r.collect(func(domain.Product) bool { return true }), nil
}

func (r *productRepository) ListByCategory(_ context.Context, categoryID string) ([]domain.Product, error) {
	defer r.s.acquire(r.inTx)()
	return r.collect(func(p domain.Product) bool { return p.CategoryID == categoryID }), nil
}

func (r *productRepository) Update(_ context.Context, product domain.Product) error {
	defer r.s.acquire(r.inTx)()

	if _, ok := r.s.data.products[product.ID]; !ok {
		return domain.ErrProductNotFound
	}
	r.s.data.products[product.ID] = product
	return nil
}

// AdjustStock атомарно меняет остаток. Дельта, уводящая остаток ниже нуля,
// отклоняется без каких-либо изменений.
func (r *productRepository) AdjustStock(_ context.Context, id string, delta int32) error {
	defer r.s.acquire(r.inTx)()

	product, ok := r.s.data.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	if product.Stock+delta < 0 {
		return domain.ErrInsufficientStock
	}
	product.Stock += delta
	r.s.data.products[id] = product
	return nil
}

func (r *productRepository) Delete(_ context.Context, id string) error {
	defer r.s.acquire(r.inTx)()

	if _, ok := r.s.data.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	if productReferenced(r.s.data, id) {
		return fmt.Errorf("delete product %s: %w", id, domain.ErrProductInUse)
	}
	delete(r.s.data.products, id)
	return nil
}

func (r *productRepository) collect(match func(domain.Product) bool) []domain.Product {
	result := make([]domain.Product, 0, len(r.s.data.products))
	for _, product := range r.s.data.products {
		if match(product) {
			result = append(result, product)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// productReferenced сообщает, ссылается ли хоть одна позиция заказа на товар.
func productReferenced(d *dataset, productID string) bool {
	for _, order := range d.orders {
		for _, line := range order.Lines {
			if line.ProductID == productID {
				return true
			}
		}
	}
	return false
}

var _ domain.ProductRepository = (*productRepository)(nil)
