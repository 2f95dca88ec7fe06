package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/vladislavdragonenkov/retail-oms/internal/domain"
)

// customerRepository — in-memory реализация CustomerRepository.
type customerRepository struct {
	s    *Store
	inTx bool
}

func (r *customerRepository) Create(_ context.Context, customer domain.Customer) error {
	defer r.s.acquire(r.inTx)()

	if _, exists := r.s.data.customers[customer.ID]; exists {
		return fmt.Errorf("customer %s already exists", customer.ID)
	}
	for _, existing := range r.s.data.customers {
		if existing.Email == customer.Email {
			return domain.ErrEmailTaken
		}
	}
	r.s.data.customers[customer.ID] = customer
	return nil
}

func (r *customerRepository) Get(_ context.Context, id string) (domain.Customer, error) {
	defer r.s.acquire(r.inTx)()

	customer, ok := r.s.data.customers[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return customer, nil
}

func (r *customerRepository) GetByEmail(_ context.Context, email string) (domain.Customer, error) {
	defer r.s.acquire(r.inTx)()

	for _, customer := range r.s.data.customers {
		if customer.Email == email {
			return customer, nil
		}
	}
	return domain.Customer{}, domain.ErrCustomerNotFound
}

func (r *customerRepository) List(_ context.Context) ([]domain.Customer, error) {
	defer r.s.acquire(r.inTx)()

	result := make([]domain.Customer, 0, len(r.s.data.customers))
	for _, customer := range r.s.data.customers {
		result = append(result, customer)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (r *customerRepository) Update(_ context.Context, customer domain.Customer) error {
	defer r.s.acquire(r.inTx)()

	if _, ok := r.s.data.customers[customer.ID]; !ok {
		return domain.ErrCustomerNotFound
	}
	// Уникальность email действует и при смене адреса.
	for id, existing := range r.s.data.customers {
		if id != customer.ID && existing.Email == customer.Email {
			return domain.ErrEmailTaken
		}
	}
	r.s.data.customers[customer.ID] = customer
	return nil
}

var _ domain.CustomerRepository = (*customerRepository)(nil)
