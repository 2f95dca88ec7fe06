package domain

import "fmt"

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, позиции ещё набираются.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed — заказ подтверждён и принят в работу.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusInProgress — заказ собирается/доставляется.
	OrderStatusInProgress OrderStatus = "in_progress"
	// OrderStatusDelivered — заказ доставлен; терминальный статус.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled — заказ отменён; терминальный статус.
	OrderStatusCancelled OrderStatus = "canceled"
)

// OrderStatuses перечисляет все статусы в порядке жизненного цикла.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusInProgress,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// Valid проверяет, что значение входит в набор известных статусов.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type statusEdge struct {
	from OrderStatus
	to   OrderStatus
}

// allowedTransitions — единственный источник правды о разрешённых рёбрах.
// Все остальные пары, включая переходы в самих себя, запрещены.
var allowedTransitions = map[statusEdge]struct{}{
	{OrderStatusPending, OrderStatusConfirmed}:    {},
	{OrderStatusPending, OrderStatusCancelled}:    {},
	{OrderStatusConfirmed, OrderStatusInProgress}: {},
	{OrderStatusConfirmed, OrderStatusCancelled}:  {},
	{OrderStatusInProgress, OrderStatusDelivered}: {},
}

// CanTransition сообщает, разрешён ли переход from -> to.
func CanTransition(from, to OrderStatus) bool {
	_, ok := allowedTransitions[statusEdge{from: from, to: to}]
	return ok
}

// TransitionTo меняет статус заказа, если ребро разрешено. При запрещённом
// переходе заказ остаётся нетронутым, а ошибка называет пару (from, to).
//
// Переход в cancelled через этот вызов НЕ возвращает товары на склад:
// все отмены должны идти через процессор возвратов, иначе остатки разойдутся.
func (o *Order) TransitionTo(to OrderStatus) error {
	if !CanTransition(o.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, o.Status, to)
	}
	o.Status = to
	return nil
}
