package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/retail-oms/internal/domain"
)

type productRepository struct {
	q dbtx
}

var _ domain.ProductRepository = (*productRepository)(nil)

const productColumns = `id, category_id, name, price_minor, stock`

func (r *productRepository) Create(ctx context.Context, product domain.Product) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO products (id, category_id, name, price_minor, stock)
		VALUES ($1, $2, $3, $4, $5)
	`, product.ID, product.CategoryID, product.Name, product.PriceMinor, product.Stock)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert product %s: %w", product.ID, domain.ErrCategoryNotFound)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *productRepository) Get(ctx context.Context, id string) (domain.Product, error) {
	var product domain.Product
	err := r.q.QueryRowContext(ctx, `
		SELECT `+productColumns+` FROM products WHERE id = $1
	`, id).Scan(&product.ID, &product.CategoryID, &product.Name, &product.PriceMinor, &product.Stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}
	return product, nil
}

func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	return r.list(ctx, `
		SELECT `+productColumns+` FROM products ORDER BY name, id
	`)
}

func (r *productRepository) ListByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	return r.list(ctx, `
		SELECT `+productColumns+` FROM products WHERE category_id = $1 ORDER BY name, id
	`, categoryID)
}

func (r *productRepository) list(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(&product.ID, &product.CategoryID, &product.Name,
			&product.PriceMinor, &product.Stock); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func (r *productRepository) Update(ctx context.Context, product domain.Product) error {
	result, err := r.q.ExecContext(ctx, `
		UPDATE products
		SET category_id = $2, name = $3, price_minor = $4, stock = $5
		WHERE id = $1
	`, product.ID, product.CategoryID, product.Name, product.PriceMinor, product.Stock)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("update product %s: %w", product.ID, domain.ErrCategoryNotFound)
		}
		return fmt.Errorf("update product: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update product rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// AdjustStock меняет остаток одним UPDATE с условием неотрицательности,
// поэтому конкурирующие списания не уводят остаток ниже нуля.
func (r *productRepository) AdjustStock(ctx context.Context, id string, delta int32) error {
	result, err := r.q.ExecContext(ctx, `
		UPDATE products SET stock = stock + $2
		WHERE id = $1 AND stock + $2 >= 0
	`, id, delta)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("adjust stock of %s by %d: %w", id, delta, domain.ErrInsufficientStock)
		}
		return fmt.Errorf("adjust stock: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("adjust stock rows affected: %w", err)
	}
	if affected == 1 {
		return nil
	}

	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("adjust stock of %s by %d: %w", id, delta, domain.ErrInsufficientStock)
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `
		DELETE FROM products WHERE id = $1
	`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("delete product %s: %w", id, domain.ErrProductInUse)
		}
		return fmt.Errorf("delete product: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
