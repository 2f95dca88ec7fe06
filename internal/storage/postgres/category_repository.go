package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/retail-oms/internal/domain"
)

type categoryRepository struct {
	q dbtx
}

var _ domain.CategoryRepository = (*categoryRepository)(nil)

func (r *categoryRepository) Create(ctx context.Context, category domain.Category) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO categories (id, name) VALUES ($1, $2)
	`, category.ID, category.Name)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *categoryRepository) Get(ctx context.Context, id string) (domain.Category, error) {
	var category domain.Category
	err := r.q.QueryRowContext(ctx, `
		SELECT id, name FROM categories WHERE id = $1
	`, id).Scan(&category.ID, &category.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Category{}, domain.ErrCategoryNotFound
		}
		return domain.Category{}, fmt.Errorf("select category: %w", err)
	}
	return category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, name FROM categories ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

func (r *categoryRepository) Update(ctx context.Context, category domain.Category) error {
	result, err := r.q.ExecContext(ctx, `
		UPDATE categories SET name = $2 WHERE id = $1
	`, category.ID, category.Name)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update category rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// Delete удаляет категорию вместе с товарами. Сработавший RESTRICT на
// позициях заказов означает, что какой-то товар ещё используется.
func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `
		DELETE FROM categories WHERE id = $1
	`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("delete category %s: %w", id, domain.ErrProductInUse)
		}
		return fmt.Errorf("delete category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}
