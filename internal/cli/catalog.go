package cli

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/retail-oms/internal/domain"
)

func (m *Menu) categoriesMenu(ctx context.Context) {
	m.printf("\n--- Categories ---\n")
	m.printf("1. List\n2. Create\n3. Rename\n4. Delete\n")
	choice, ok := m.prompt("Choose: ")
	if !ok {
		return
	}

	repos := m.storage.Repos()
	switch choice {
	case "1":
		categories, err := repos.Categories.List(ctx)
		if err != nil {
			m.fail(err)
			return
		}
		if len(categories) == 0 {
			m.printf("No categories yet.\n")
			return
		}
		for _, c := range categories {
			m.printf("%s  %s\n", c.ID, c.Name)
		}
	case "2":
		name, ok := m.prompt("Name: ")
		if !ok {
			return
		}
		category := domain.Category{ID: uuid.NewString(), Name: name}
		if errs := category.ValidateInvariants(); len(errs) > 0 {
			m.fail(errors.Join(errs...))
			return
		}
		if err := repos.Categories.Create(ctx, category); err != nil {
			m.fail(err)
			return
		}
		m.printf("Category created: %s\n", category.ID)
	case "3":
		id, ok := m.prompt("Category ID: ")
		if !ok {
			return
		}
		category, err := repos.Categories.Get(ctx, id)
		if err != nil {
			m.fail(err)
			return
		}
		name, ok := m.prompt("New name: ")
		if !ok {
			return
		}
		category.Name = name
		if errs := category.ValidateInvariants(); len(errs) > 0 {
			m.fail(errors.Join(errs...))
			return
		}
		if err := repos.Categories.Update(ctx, category); err != nil {
			m.fail(err)
			return
		}
		m.printf("Category updated.\n")
	case "4":
		id, ok := m.prompt("Category ID: ")
		if !ok {
			return
		}
		if !m.confirm("Delete the category together with its products?") {
			return
		}
		if err := m.storage.Within(ctx, func(r domain.Repos) error {
			return r.Categories.Delete(ctx, id)
		}); err != nil {
			m.fail(err)
			return
		}
		m.printf("Category deleted.\n")
	default:
		m.printf("Unknown option: %s\n", choice)
	}
}

func (m *Menu) productsMenu(ctx context.Context) {
	m.printf("\n--- Products ---\n")
	m.printf("1. List\n2. Create\n3. Update\n4. Adjust stock\n5. Delete\n")
	choice, ok := m.prompt("Choose: ")
	if !ok {
		return
	}

	repos := m.storage.Repos()
	switch choice {
	case "1":
		products, err := repos.Products.List(ctx)
		if err != nil {
			m.fail(err)
			return
		}
		if len(products) == 0 {
			m.printf("No products yet.\n")
			return
		}
		for _, p := range products {
			m.printf("%s  %-30s price %s  stock %d\n",
				p.ID, p.Name, formatMoney(p.PriceMinor), p.Stock)
		}
	case "2":
		categoryID, ok := m.prompt("Category ID: ")
		if !ok {
			return
		}
		if _, err := repos.Categories.Get(ctx, categoryID); err != nil {
			m.fail(err)
			return
		}
		name, ok := m.prompt("Name: ")
		if !ok {
			return
		}
		price, ok := m.promptMoney("Price (e.g. 89.90): ")
		if !ok {
			return
		}
		stock, ok := m.promptInt32("Initial stock: ")
		if !ok {
			return
		}
		product := domain.Product{
			ID:         uuid.NewString(),
			CategoryID: categoryID,
			Name:       name,
			PriceMinor: price,
			Stock:      stock,
		}
		if errs := product.ValidateInvariants(); len(errs) > 0 {
			m.fail(errors.Join(errs...))
			return
		}
		if err := repos.Products.Create(ctx, product); err != nil {
			m.fail(err)
			return
		}
		m.printf("Product created: %s\n", product.ID)
	case "3":
		id, ok := m.prompt("Product ID: ")
		if !ok {
			return
		}
		product, err := repos.Products.Get(ctx, id)
		if err != nil {
			m.fail(err)
			return
		}
		name, ok := m.prompt("New name (" + product.Name + "): ")
		if !ok {
			return
		}
		if name != "" {
			product.Name = name
		}
		price, ok := m.promptMoney("New price (" + formatMoney(product.PriceMinor) + "): ")
		if !ok {
			return
		}
		product.PriceMinor = price
		if errs := product.ValidateInvariants(); len(errs) > 0 {
			m.fail(errors.Join(errs...))
			return
		}
		if err := repos.Products.Update(ctx, product); err != nil {
			m.fail(err)
			return
		}
		m.printf("Product updated.\n")
	case "4":
		id, ok := m.prompt("Product ID: ")
		if !ok {
			return
		}
		delta, ok := m.promptInt32("Stock delta (negative to write off): ")
		if !ok {
			return
		}
		if err := repos.Products.AdjustStock(ctx, id, delta); err != nil {
			m.fail(err)
			return
		}
		product, err := repos.Products.Get(ctx, id)
		if err != nil {
			m.fail(err)
			return
		}
		m.printf("Stock of %s is now %d.\n", product.Name, product.Stock)
	case "5":
		id, ok := m.prompt("Product ID: ")
		if !ok {
			return
		}
		if !m.confirm("Delete the product?") {
			return
		}
		if err := repos.Products.Delete(ctx, id); err != nil {
			m.fail(err)
			return
		}
		m.printf("Product deleted.\n")
	default:
		m.printf("Unknown option: %s\n", choice)
	}
}

func (m *Menu) customersMenu(ctx context.Context) {
	m.printf("\n--- Customers ---\n")
	m.printf("1. List\n2. Register\n3. Update\n")
	choice, ok := m.prompt("Choose: ")
	if !ok {
		return
	}

	repos := m.storage.Repos()
	switch choice {
	case "1":
		customers, err := repos.Customers.List(ctx)
		if err != nil {
			m.fail(err)
			return
		}
		if len(customers) == 0 {
			m.printf("No customers yet.\n")
			return
		}
		for _, c := range customers {
			m.printf("%s  %-25s %s\n", c.ID, c.Name, c.Email)
		}
	case "2":
		name, ok := m.prompt("Name: ")
		if !ok {
			return
		}
		email, ok := m.prompt("Email: ")
		if !ok {
			return
		}
		cpf, ok := m.prompt("CPF (optional): ")
		if !ok {
			return
		}
		customer := domain.Customer{
			ID:    uuid.NewString(),
			Name:  name,
			Email: email,
			CPF:   cpf,
		}
		if errs := customer.ValidateInvariants(); len(errs) > 0 {
			m.fail(errors.Join(errs...))
			return
		}
		if err := repos.Customers.Create(ctx, customer); err != nil {
			m.fail(err)
			return
		}
		m.printf("Customer registered: %s\n", customer.ID)
	case "3":
		id, ok := m.prompt("Customer ID: ")
		if !ok {
			return
		}
		customer, err := repos.Customers.Get(ctx, id)
		if err != nil {
			m.fail(err)
			return
		}
		name, ok := m.prompt("New name (" + customer.Name + "): ")
		if !ok {
			return
		}
		if name != "" {
			customer.Name = name
		}
		email, ok := m.prompt("New email (" + customer.Email + "): ")
		if !ok {
			return
		}
		if email != "" {
			customer.Email = email
		}
		if errs := customer.ValidateInvariants(); len(errs) > 0 {
			m.fail(errors.Join(errs...))
			return
		}
		if err := repos.Customers.Update(ctx, customer); err != nil {
			m.fail(err)
			return
		}
		m.printf("Customer updated.\n")
	default:
		m.printf("Unknown option: %s\n", choice)
	}
}
