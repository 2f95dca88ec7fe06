package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/retail-oms/internal/domain"
)

type customerRepository struct {
	q dbtx
}

var _ domain.CustomerRepository = (*customerRepository)(nil)

func (r *customerRepository) Create(ctx context.Context, customer domain.Customer) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO customers (id, name, email, cpf)
		VALUES ($1, $2, $3, NULLIF($4, ''))
	`, customer.ID, customer.Name, customer.Email, customer.CPF)
	if err != nil {
		if isUniqueViolation(err, "customers_email_key") {
			return fmt.Errorf("insert customer %s: %w", customer.Email, domain.ErrEmailTaken)
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (r *customerRepository) Get(ctx context.Context, id string) (domain.Customer, error) {
	return r.get(ctx, `
		SELECT id, name, email, COALESCE(cpf, '') FROM customers WHERE id = $1
	`, id)
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (domain.Customer, error) {
	return r.get(ctx, `
		SELECT id, name, email, COALESCE(cpf, '') FROM customers WHERE email = $1
	`, email)
}

func (r *customerRepository) get(ctx context.Context, query string, arg any) (domain.Customer, error) {
	var customer domain.Customer
	err := r.q.QueryRowContext(ctx, query, arg).Scan(
		&customer.ID, &customer.Name, &customer.Email, &customer.CPF)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("select customer: %w", err)
	}
	return customer, nil
}

func (r *customerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, name, email, COALESCE(cpf, '') FROM customers ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("select customers: %w", err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var customer domain.Customer
		if err := rows.Scan(&customer.ID, &customer.Name, &customer.Email, &customer.CPF); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}
	return customers, nil
}

func (r *customerRepository) Update(ctx context.Context, customer domain.Customer) error {
	result, err := r.q.ExecContext(ctx, `
		UPDATE customers
		SET name = $2, email = $3, cpf = NULLIF($4, '')
		WHERE id = $1
	`, customer.ID, customer.Name, customer.Email, customer.CPF)
	if err != nil {
		if isUniqueViolation(err, "customers_email_key") {
			return fmt.Errorf("update customer %s: %w", customer.Email, domain.ErrEmailTaken)
		}
		return fmt.Errorf("update customer: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update customer rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}
