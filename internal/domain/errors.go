package domain

import "errors"

var (
	// Ошибка отсутствующего имени категории.
	ErrCategoryNameRequired = errors.New("category name is required")
	// Ошибка отсутствующего имени товара.
	ErrProductNameRequired = errors.New("product name is required")
	// Ошибка отсутствующей категории у товара.
	ErrCategoryRequired = errors.New("category_id is required")
	// Ошибка отрицательной цены товара.
	ErrPriceNegative = errors.New("price_minor must be non-negative")
	// Ошибка отрицательного остатка товара.
	ErrStockNegative = errors.New("stock must be non-negative")
	// Ошибка отсутствующего имени клиента.
	ErrCustomerNameRequired = errors.New("customer name is required")
	// Ошибка отсутствующего email клиента.
	ErrEmailRequired = errors.New("email is required")
	// Ошибка некорректного CPF: допускаются ровно 11 цифр.
	ErrInvalidCPF = errors.New("cpf must contain exactly 11 digits")
	// Ошибка отсутствующего идентификатора клиента в заказе.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка при некорректном количестве в позиции заказа (<= 0).
	ErrQuantityInvalid = errors.New("line quantity must be greater than zero")
	// Ошибка отрицательной цены в позиции заказа.
	ErrUnitPriceNegative = errors.New("line unit price must be non-negative")
	// Ошибка несоответствия суммы заказа и сумм его позиций.
	ErrTotalMismatch = errors.New("order total does not match lines sum")

	// ErrCategoryNotFound возвращается, если категория не найдена в репозитории.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrProductNotFound возвращается, если товар не найден в репозитории.
	ErrProductNotFound = errors.New("product not found")
	// ErrCustomerNotFound возвращается, если клиент не найден в репозитории.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")

	// ErrEmailTaken сигнализирует о нарушении уникальности email клиента.
	ErrEmailTaken = errors.New("email already registered")
	// ErrOrderNumberTaken сигнализирует о нарушении уникальности номера заказа.
	ErrOrderNumberTaken = errors.New("order number already exists")
	// ErrProductInUse запрещает удалять товар, на который ссылаются позиции заказов.
	ErrProductInUse = errors.New("product is referenced by order lines")

	// ErrInsufficientStock — резерв увёл бы остаток в минус.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrIllegalTransition — переход статуса отсутствует в таблице разрешённых.
	ErrIllegalTransition = errors.New("illegal status transition")
	// ErrAlreadyCancelled — заказ уже отменён; повторная отмена или возврат запрещены.
	ErrAlreadyCancelled = errors.New("order already cancelled")
	// ErrReturnWindowExpired — срок возврата заказа истёк.
	ErrReturnWindowExpired = errors.New("return window expired")
	// ErrOrderDeclined — пользователь отказался подтверждать составленный заказ.
	ErrOrderDeclined = errors.New("order entry declined")
)

// IsNotFound проверяет, относится ли ошибка к семейству "не найдено".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}
