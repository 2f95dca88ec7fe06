package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/vladislavdragonenkov/retail-oms/internal/domain"
)

// categoryRepository — in-memory реализация CategoryRepository.
type categoryRepository struct {
	s    *Store
	inTx bool
}

func (r *categoryRepository) Create(_ context.Context, category domain.Category) error {
	defer r.s.acquire(r.inTx)()

	if _, exists := r.s.data.categories[category.ID]; exists {
		return fmt.Errorf("category %s already exists", category.ID)
	}
	r.s.data.categories[category.ID] = category
	return nil
}

func (r *categoryRepository) Get(_ context.Context, id string) (domain.Category, error) {
	defer r.s.acquire(r.inTx)()

	category, ok := r.s.data.categories[id]
	if !ok {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	return category, nil
}

func (r *categoryRepository) List(_ context.Context) ([]domain.Category, error) {
	defer r.s.acquire(r.inTx)()

	result := make([]domain.Category, 0, len(r.s.data.categories))
	for _, category := range r.s.data.categories {
		result = append(result, category)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (r *categoryRepository) Update(_ context.Context, category domain.Category) error {
	defer r.s.acquire(r.inTx)()

	if _, ok := r.s.data.categories[category.ID]; !ok {
		return domain.ErrCategoryNotFound
	}
	r.s.data.categories[category.ID] = category
	return nil
}

// Delete каскадно удаляет товары категории. Если на какой-то из товаров
// ссылаются позиции заказов, удаление запрещено целиком.
func (r *categoryRepository) Delete(_ context.Context, id string) error {
	defer r.s.acquire(r.inTx)()

	if _, ok := r.s.data.categories[id]; !ok {
		return domain.ErrCategoryNotFound
	}

	for productID, product := range r.s.data.products {
		if product.CategoryID != id {
			continue
		}
		if productReferenced(r.s.data, productID) {
			return fmt.Errorf("delete category %s: %w", id, domain.ErrProductInUse)
		}
	}

	for productID, product := range r.s.data.products {
		if product.CategoryID == id {
			delete(r.s.data.products, productID)
		}
	}
	delete(r.s.data.categories, id)
	return nil
}

var _ domain.CategoryRepository = (*categoryRepository)(nil)
