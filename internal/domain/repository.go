package domain

import (
	"context"
	"time"
)

// CategoryRepository описывает требования к хранилищу категорий.
type CategoryRepository interface {
	Create(ctx context.Context, category Category) error
	// Get возвращает категорию или ErrCategoryNotFound.
	Get(ctx context.Context, id string) (Category, error)
	List(ctx context.Context) ([]Category, error)
	Update(ctx context.Context, category Category) error
	// Delete удаляет категорию каскадно вместе с её товарами.
	Delete(ctx context.Context, id string) error
}

// ProductRepository описывает требования к хранилищу товаров.
type ProductRepository interface {
	Create(ctx context.Context, product Product) error
	// Get возвращает товар или ErrProductNotFound.
	Get(ctx context.Context, id string) (Product, error)
	List(ctx context.Context) ([]Product, error)
	ListByCategory(ctx context.Context, categoryID string) ([]Product, error)
	Update(ctx context.Context, product Product) error
	// AdjustStock атомарно меняет остаток на delta. Отрицательная delta,
	// уводящая остаток ниже нуля, отклоняется с ErrInsufficientStock,
	// не меняя ничего.
	AdjustStock(ctx context.Context, id string, delta int32) error
	// Delete отклоняется с ErrProductInUse, если на товар ссылаются позиции.
	Delete(ctx context.Context, id string) error
}

// CustomerRepository описывает требования к хранилищу клиентов.
type CustomerRepository interface {
	// Create возвращает ErrEmailTaken при нарушении уникальности email.
	Create(ctx context.Context, customer Customer) error
	// Get возвращает клиента или ErrCustomerNotFound.
	Get(ctx context.Context, id string) (Customer, error)
	GetByEmail(ctx context.Context, email string) (Customer, error)
	List(ctx context.Context) ([]Customer, error)
	Update(ctx context.Context, customer Customer) error
}

// OrderRepository описывает требования к хранилищу заказов и их позиций.
type OrderRepository interface {
	// Create сохраняет строку заказа без позиций.
	Create(ctx context.Context, order Order) error
	// Get возвращает заказ с позициями или ErrOrderNotFound.
	Get(ctx context.Context, id string) (Order, error)
	GetByNumber(ctx context.Context, number string) (Order, error)
	List(ctx context.Context) ([]Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Order, error)
	ListByPeriod(ctx context.Context, from, to time.Time) ([]Order, error)
	// ListCancelledBefore возвращает отменённые заказы старше cutoff.
	ListCancelledBefore(ctx context.Context, cutoff time.Time) ([]Order, error)
	// NextNumber выдаёт следующий номер вида P001: максимальный числовой
	// суффикс существующих номеров плюс один.
	NextNumber(ctx context.Context) (string, error)
	AddLine(ctx context.Context, line OrderLine) error
	// RecalcTotal пересчитывает и сохраняет сумму заказа по его позициям.
	// Единственное место, где total_minor пишется в хранилище.
	RecalcTotal(ctx context.Context, orderID string) (int64, error)
	SetStatus(ctx context.Context, orderID string, status OrderStatus, updatedAt time.Time) error
	// DeleteCancelledBefore удаляет отменённые заказы старше cutoff вместе
	// с позициями; возвращает количество удалённых заказов и позиций.
	DeleteCancelledBefore(ctx context.Context, cutoff time.Time) (orders int, lines int, err error)
}

// Repos собирает все репозитории, привязанные к одному контексту исполнения:
// либо к автокоммитному соединению, либо к открытой транзакции.
type Repos struct {
	Categories CategoryRepository
	Products   ProductRepository
	Customers  CustomerRepository
	Orders     OrderRepository
}

// UnitOfWork исполняет fn внутри одной ACID-транзакции: ошибка из fn
// откатывает все эффекты, nil — фиксирует их.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(Repos) error) error
}

// Storage — полный контракт хранилища для ядра: прямой доступ к
// репозиториям для чтений и одиночных мутаций плюс UnitOfWork для
// многошаговых операций.
type Storage interface {
	UnitOfWork
	Repos() Repos
	Ping(ctx context.Context) error
}
