package domain

// Product — товар каталога. Остаток никогда не опускается ниже нуля:
// любое списание проходит через атомарный AdjustStock репозитория.
type Product struct {
	ID         string
	CategoryID string
	Name       string
	// PriceMinor — текущая цена за единицу в минимальных денежных единицах.
	PriceMinor int64
	// Stock — доступный остаток на складе.
	Stock int32
}

// ValidateInvariants проверяет базовые инварианты товара.
func (p *Product) ValidateInvariants() []error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.CategoryID == "" {
		errs = append(errs, ErrCategoryRequired)
	}
	if p.PriceMinor < 0 {
		errs = append(errs, ErrPriceNegative)
	}
	if p.Stock < 0 {
		errs = append(errs, ErrStockNegative)
	}

	return errs
}
