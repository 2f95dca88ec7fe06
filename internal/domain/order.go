package domain

import "time"

// OrderLine представляет одну позицию заказа.
type OrderLine struct {
	// ID позиции нужен для однозначной идентификации и аудита.
	ID string
	// OrderID — заказ, которому принадлежит позиция.
	OrderID string
	// ProductID — товар; удаление товара с позициями запрещено (restrict).
	ProductID string
	// Qty — количество единиц товара, строго положительное.
	Qty int32
	// UnitPriceMinor — снимок цены товара на момент продажи. После записи
	// не меняется, поэтому исторические суммы не зависят от будущих цен.
	UnitPriceMinor int64
}

// Subtotal возвращает стоимость позиции.
func (l OrderLine) Subtotal() int64 {
	return int64(l.Qty) * l.UnitPriceMinor
}

// Order агрегирует состояние заказа и его позиции.
type Order struct {
	ID         string
	CustomerID string
	// Number — человекочитаемый уникальный номер вида P001, P002...
	Number string
	Status OrderStatus
	// PlacedAt — дата оформления заказа; от неё считаются окна возврата и хранения.
	PlacedAt time.Time
	// TotalMinor — производная сумма заказа; всегда равна сумме позиций
	// и пересчитывается после каждой мутации позиций.
	TotalMinor int64
	Lines      []OrderLine
	UpdatedAt  time.Time
}

// LinesTotal считает сумму заказа по позициям: qty * unit_price.
func (o *Order) LinesTotal() int64 {
	var total int64
	for _, line := range o.Lines {
		total += line.Subtotal()
	}
	return total
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if o.TotalMinor < 0 {
		errs = append(errs, ErrPriceNegative)
	}
	for _, line := range o.Lines {
		if line.Qty <= 0 {
			errs = append(errs, ErrQuantityInvalid)
		}
		if line.UnitPriceMinor < 0 {
			errs = append(errs, ErrUnitPriceNegative)
		}
	}
	if o.LinesTotal() != o.TotalMinor {
		errs = append(errs, ErrTotalMismatch)
	}

	return errs
}
