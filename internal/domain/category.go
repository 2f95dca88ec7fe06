package domain

// Category — категория каталога. Владеет товарами: удаление категории
// каскадно удаляет её товары.
type Category struct {
	ID   string
	Name string
}

// ValidateInvariants проверяет обязательные поля категории.
func (c *Category) ValidateInvariants() []error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, ErrCategoryNameRequired)
	}
	return errs
}
