// Package reports строит аналитические отчёты по данным каталога и
// заказов. Агрегация выполняется в памяти поверх выборок репозиториев,
// отчёты ничего не меняют в хранилище.
package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/retail-oms/internal/domain"
)

// LowStockThreshold — порог, ниже которого товар попадает в отчёт
// о дефиците. Пополнение рассчитывается до этого же уровня.
const LowStockThreshold = 5

// Service строит отчёты. Все методы только читают.
type Service struct {
	storage domain.Storage
	logger  *log.Entry
	now     func() time.Time
}

// NewService создаёт сервис отчётов.
func NewService(storage domain.Storage, logger *log.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger.WithField("component", "reports"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock подменяет источник времени. Используется в тестах.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ProductSales — продажи одного товара.
type ProductSales struct {
	ProductID    string
	Name         string
	Units        int32
	RevenueMinor int64
}

// TopProducts возвращает товары по убыванию проданных единиц.
// Отменённые заказы не учитываются.
func (s *Service) TopProducts(ctx context.Context, limit int) ([]ProductSales, error) {
	orders, products, err := s.loadSalesData(ctx)
	if err != nil {
		return nil, err
	}

	byProduct := make(map[string]*ProductSales)
	for _, order := range orders {
		for _, line := range order.Lines {
			entry, ok := byProduct[line.ProductID]
			if !ok {
				entry = &ProductSales{ProductID: line.ProductID, Name: products[line.ProductID].Name}
				byProduct[line.ProductID] = entry
			}
			entry.Units += line.Qty
			entry.RevenueMinor += line.Subtotal()
		}
	}

	result := make([]ProductSales, 0, len(byProduct))
	for _, entry := range byProduct {
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Units != result[j].Units {
			return result[i].Units > result[j].Units
		}
		return result[i].Name < result[j].Name
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// CustomerActivity — заказы одного покупателя.
type CustomerActivity struct {
	CustomerID     string
	Name           string
	Orders         int
	TotalMinor     int64
	AvgTicketMinor int64
}

// CustomersByOrders возвращает покупателей по убыванию числа заказов
// со средним чеком. Отменённые заказы не учитываются.
func (s *Service) CustomersByOrders(ctx context.Context) ([]CustomerActivity, error) {
	repos := s.storage.Repos()
	customers, err := repos.Customers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("customers report: %w", err)
	}
	orders, err := repos.Orders.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("customers report: %w", err)
	}

	byCustomer := make(map[string]*CustomerActivity, len(customers))
	for _, c := range customers {
		byCustomer[c.ID] = &CustomerActivity{CustomerID: c.ID, Name: c.Name}
	}
	for _, order := range orders {
		if order.Status == domain.OrderStatusCancelled {
			continue
		}
		entry, ok := byCustomer[order.CustomerID]
		if !ok {
			continue
		}
		entry.Orders++
		entry.TotalMinor += order.TotalMinor
	}

	result := make([]CustomerActivity, 0, len(byCustomer))
	for _, entry := range byCustomer {
		if entry.Orders > 0 {
			entry.AvgTicketMinor = entry.TotalMinor / int64(entry.Orders)
		}
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Orders != result[j].Orders {
			return result[i].Orders > result[j].Orders
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// CustomerRevenue — выручка по покупателю с долей от общей.
type CustomerRevenue struct {
	CustomerID   string
	Name         string
	RevenueMinor int64
	SharePercent float64
}

// TopCustomersByRevenue возвращает покупателей по убыванию выручки.
func (s *Service) TopCustomersByRevenue(ctx context.Context, limit int) ([]CustomerRevenue, error) {
	activity, err := s.CustomersByOrders(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, entry := range activity {
		total += entry.TotalMinor
	}

	result := make([]CustomerRevenue, 0, len(activity))
	for _, entry := range activity {
		if entry.TotalMinor == 0 {
			continue
		}
		rev := CustomerRevenue{
			CustomerID:   entry.CustomerID,
			Name:         entry.Name,
			RevenueMinor: entry.TotalMinor,
		}
		if total > 0 {
			rev.SharePercent = float64(entry.TotalMinor) / float64(total) * 100
		}
		result = append(result, rev)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].RevenueMinor != result[j].RevenueMinor {
			return result[i].RevenueMinor > result[j].RevenueMinor
		}
		return result[i].Name < result[j].Name
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// CategoryRevenue — выручка по категории с долей от общей.
type CategoryRevenue struct {
	CategoryID   string
	Name         string
	RevenueMinor int64
	SharePercent float64
}

// RevenueByCategory возвращает выручку в разрезе категорий.
func (s *Service) RevenueByCategory(ctx context.Context) ([]CategoryRevenue, error) {
	repos := s.storage.Repos()
	categories, err := repos.Categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("category report: %w", err)
	}
	orders, products, err := s.loadSalesData(ctx)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]*CategoryRevenue, len(categories))
	for _, c := range categories {
		byCategory[c.ID] = &CategoryRevenue{CategoryID: c.ID, Name: c.Name}
	}
	var total int64
	for _, order := range orders {
		for _, line := range order.Lines {
			product, ok := products[line.ProductID]
			if !ok {
				continue
			}
			entry, ok := byCategory[product.CategoryID]
			if !ok {
				continue
			}
			entry.RevenueMinor += line.Subtotal()
			total += line.Subtotal()
		}
	}

	result := make([]CategoryRevenue, 0, len(byCategory))
	for _, entry := range byCategory {
		if total > 0 {
			entry.SharePercent = float64(entry.RevenueMinor) / float64(total) * 100
		}
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].RevenueMinor != result[j].RevenueMinor {
			return result[i].RevenueMinor > result[j].RevenueMinor
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// DailyOrders — заказы одного дня.
type DailyOrders struct {
	Day          time.Time
	Orders       int
	RevenueMinor int64
}

// PeriodReport — заказы за период с разбивкой по дням.
type PeriodReport struct {
	From           time.Time
	To             time.Time
	Days           []DailyOrders
	Orders         int
	RevenueMinor   int64
	AvgTicketMinor int64
}

// OrdersByPeriod возвращает заказы за период, сгруппированные по дням.
// Границы включаются, отменённые заказы не учитываются.
func (s *Service) OrdersByPeriod(ctx context.Context, from, to time.Time) (PeriodReport, error) {
	orders, err := s.storage.Repos().Orders.ListByPeriod(ctx, from, to)
	if err != nil {
		return PeriodReport{}, fmt.Errorf("period report: %w", err)
	}

	report := PeriodReport{From: from, To: to}
	byDay := make(map[time.Time]*DailyOrders)
	for _, order := range orders {
		if order.Status == domain.OrderStatusCancelled {
			continue
		}
		day := order.PlacedAt.Truncate(24 * time.Hour)
		entry, ok := byDay[day]
		if !ok {
			entry = &DailyOrders{Day: day}
			byDay[day] = entry
		}
		entry.Orders++
		entry.RevenueMinor += order.TotalMinor
		report.Orders++
		report.RevenueMinor += order.TotalMinor
	}
	if report.Orders > 0 {
		report.AvgTicketMinor = report.RevenueMinor / int64(report.Orders)
	}

	report.Days = make([]DailyOrders, 0, len(byDay))
	for _, entry := range byDay {
		report.Days = append(report.Days, *entry)
	}
	sort.Slice(report.Days, func(i, j int) bool {
		return report.Days[i].Day.Before(report.Days[j].Day)
	})
	return report, nil
}

// MonthlySales — продажи одного месяца.
type MonthlySales struct {
	Month          time.Time
	Orders         int
	Units          int32
	RevenueMinor   int64
	AvgTicketMinor int64
	GrowthPercent  float64
	MovingAvgMinor int64
}

// MonthlyReport — помесячная динамика продаж.
type MonthlyReport struct {
	Months             []MonthlySales
	TotalGrowthPercent float64
	Best               MonthlySales
	Worst              MonthlySales
}

// MonthlySales строит помесячную сводку: выручка, средний чек, рост к
// прошлому месяцу и скользящее среднее за три месяца. Месяцы без продаж
// в отчёт не попадают.
func (s *Service) MonthlySales(ctx context.Context) (MonthlyReport, error) {
	orders, _, err := s.loadSalesData(ctx)
	if err != nil {
		return MonthlyReport{}, err
	}

	byMonth := make(map[time.Time]*MonthlySales)
	for _, order := range orders {
		month := time.Date(order.PlacedAt.Year(), order.PlacedAt.Month(), 1, 0, 0, 0, 0, time.UTC)
		entry, ok := byMonth[month]
		if !ok {
			entry = &MonthlySales{Month: month}
			byMonth[month] = entry
		}
		entry.Orders++
		entry.RevenueMinor += order.TotalMinor
		for _, line := range order.Lines {
			entry.Units += line.Qty
		}
	}

	months := make([]MonthlySales, 0, len(byMonth))
	for _, entry := range byMonth {
		if entry.Orders > 0 {
			entry.AvgTicketMinor = entry.RevenueMinor / int64(entry.Orders)
		}
		months = append(months, *entry)
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].Month.Before(months[j].Month)
	})

	for i := range months {
		if i > 0 && months[i-1].RevenueMinor > 0 {
			months[i].GrowthPercent = (float64(months[i].RevenueMinor) - float64(months[i-1].RevenueMinor)) /
				float64(months[i-1].RevenueMinor) * 100
		}
		// Скользящее среднее по фактически доступным месяцам, до трёх.
		window, sum := 0, int64(0)
		for j := i; j >= 0 && window < 3; j-- {
			sum += months[j].RevenueMinor
			window++
		}
		months[i].MovingAvgMinor = sum / int64(window)
	}

	report := MonthlyReport{Months: months}
	if len(months) > 0 {
		report.Best, report.Worst = months[0], months[0]
		for _, m := range months[1:] {
			if m.RevenueMinor > report.Best.RevenueMinor {
				report.Best = m
			}
			if m.RevenueMinor < report.Worst.RevenueMinor {
				report.Worst = m
			}
		}
		first, last := months[0], months[len(months)-1]
		if first.RevenueMinor > 0 {
			report.TotalGrowthPercent = (float64(last.RevenueMinor) - float64(first.RevenueMinor)) /
				float64(first.RevenueMinor) * 100
		}
	}
	return report, nil
}

// LowStockItem — товар с остатком ниже порога.
type LowStockItem struct {
	ProductID        string
	Name             string
	Stock            int32
	RestockQty       int32
	RestockCostMinor int64
}

// LowStockReport — дефицит с оценкой стоимости пополнения.
type LowStockReport struct {
	Threshold      int32
	Items          []LowStockItem
	TotalCostMinor int64
}

// LowStock возвращает товары с остатком ниже порога и стоимость
// пополнения каждого до порога по текущей цене.
func (s *Service) LowStock(ctx context.Context) (LowStockReport, error) {
	products, err := s.storage.Repos().Products.List(ctx)
	if err != nil {
		return LowStockReport{}, fmt.Errorf("low stock report: %w", err)
	}

	report := LowStockReport{Threshold: LowStockThreshold}
	for _, product := range products {
		if product.Stock >= LowStockThreshold {
			continue
		}
		item := LowStockItem{
			ProductID:  product.ID,
			Name:       product.Name,
			Stock:      product.Stock,
			RestockQty: LowStockThreshold - product.Stock,
		}
		item.RestockCostMinor = int64(item.RestockQty) * product.PriceMinor
		report.Items = append(report.Items, item)
		report.TotalCostMinor += item.RestockCostMinor
	}
	sort.Slice(report.Items, func(i, j int) bool {
		if report.Items[i].Stock != report.Items[j].Stock {
			return report.Items[i].Stock < report.Items[j].Stock
		}
		return report.Items[i].Name < report.Items[j].Name
	})
	return report, nil
}

// Dashboard — сводные показатели для главного экрана.
type Dashboard struct {
	Orders            int
	OrdersByStatus    map[domain.OrderStatus]int
	CancellationRate  float64
	Products          int
	StockUnits        int64
	StockValueMinor   int64
	ActiveCustomers   int
	InactiveCustomers int
	RevenueHalfYear   int64
}

// BuildDashboard собирает сводку: заказы по статусам, доля отмен,
// склад в штуках и деньгах, активность покупателей и выручка за
// последние шесть месяцев.
func (s *Service) BuildDashboard(ctx context.Context) (Dashboard, error) {
	repos := s.storage.Repos()
	orders, err := repos.Orders.List(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("dashboard: %w", err)
	}
	products, err := repos.Products.List(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("dashboard: %w", err)
	}
	customers, err := repos.Customers.List(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("dashboard: %w", err)
	}

	dash := Dashboard{
		Orders:         len(orders),
		OrdersByStatus: make(map[domain.OrderStatus]int),
		Products:       len(products),
	}

	halfYearAgo := s.now().AddDate(0, -6, 0)
	active := make(map[string]struct{})
	for _, order := range orders {
		dash.OrdersByStatus[order.Status]++
		if order.Status == domain.OrderStatusCancelled {
			continue
		}
		active[order.CustomerID] = struct{}{}
		if order.PlacedAt.After(halfYearAgo) {
			dash.RevenueHalfYear += order.TotalMinor
		}
	}
	if dash.Orders > 0 {
		dash.CancellationRate = float64(dash.OrdersByStatus[domain.OrderStatusCancelled]) /
			float64(dash.Orders) * 100
	}

	for _, product := range products {
		dash.StockUnits += int64(product.Stock)
		dash.StockValueMinor += int64(product.Stock) * product.PriceMinor
	}
	for _, customer := range customers {
		if _, ok := active[customer.ID]; ok {
			dash.ActiveCustomers++
		} else {
			dash.InactiveCustomers++
		}
	}
	return dash, nil
}

// loadSalesData отдаёт неотменённые заказы и товары по ID.
func (s *Service) loadSalesData(ctx context.Context) ([]domain.Order, map[string]domain.Product, error) {
	repos := s.storage.Repos()
	all, err := repos.Orders.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load orders: %w", err)
	}
	products, err := repos.Products.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load products: %w", err)
	}

	orders := all[:0:0]
	for _, order := range all {
		if order.Status != domain.OrderStatusCancelled {
			orders = append(orders, order)
		}
	}
	byID := make(map[string]domain.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}
	return orders, byID, nil
}
