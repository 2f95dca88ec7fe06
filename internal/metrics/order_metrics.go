package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики жизненного цикла заказов и склада.
type OrderMetrics struct {
	// Счётчики операций
	ordersOpened      prometheus.Counter
	linesAdded        prometheus.Counter
	ordersDeclined    prometheus.Counter
	stockRejections   prometheus.Counter
	returnsProcessed  prometheus.Counter
	statusTransitions *prometheus.CounterVec

	// Счётчики строк, удалённых ретенцией
	purgedOrders prometheus.Counter
	purgedLines  prometheus.Counter

	// Гистограмма времени выполнения операций ядра
	opDuration *prometheus.HistogramVec
}

// NewOrderMetrics создаёт метрики на дефолтном registerer.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersOpened: registerCounter(registerer, prometheus.CounterOpts{
			Name: "retail_orders_opened_total",
			Help: "Total number of orders opened by the composer",
		}),
		linesAdded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "retail_order_lines_added_total",
			Help: "Total number of order lines persisted",
		}),
		ordersDeclined: registerCounter(registerer, prometheus.CounterOpts{
			Name: "retail_orders_declined_total",
			Help: "Total number of composed orders declined and rolled back",
		}),
		stockRejections: registerCounter(registerer, prometheus.CounterOpts{
			Name: "retail_stock_rejections_total",
			Help: "Total number of reservations rejected for insufficient stock",
		}),
		returnsProcessed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "retail_returns_processed_total",
			Help: "Total number of returns processed with restock",
		}),
		statusTransitions: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "retail_status_transitions_total",
			Help: "Total number of successful order status transitions",
		}, []string{"to"}),
		purgedOrders: registerCounter(registerer, prometheus.CounterOpts{
			Name: "retail_purged_orders_total",
			Help: "Total number of cancelled orders removed by retention purge",
		}),
		purgedLines: registerCounter(registerer, prometheus.CounterOpts{
			Name: "retail_purged_lines_total",
			Help: "Total number of order lines removed by retention purge",
		}),
		opDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "retail_operation_duration_seconds",
			Help:    "Duration of core order operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"op"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderOpened увеличивает счётчик открытых заказов.
func (m *OrderMetrics) RecordOrderOpened() {
	m.ordersOpened.Inc()
}

// RecordLineAdded увеличивает счётчик добавленных позиций.
func (m *OrderMetrics) RecordLineAdded() {
	m.linesAdded.Inc()
}

// RecordOrderDeclined увеличивает счётчик отклонённых составлений заказа.
func (m *OrderMetrics) RecordOrderDeclined() {
	m.ordersDeclined.Inc()
}

// RecordStockRejection увеличивает счётчик отказов по остатку.
func (m *OrderMetrics) RecordStockRejection() {
	m.stockRejections.Inc()
}

// RecordReturnProcessed увеличивает счётчик обработанных возвратов.
func (m *OrderMetrics) RecordReturnProcessed() {
	m.returnsProcessed.Inc()
}

// RecordStatusTransition увеличивает счётчик переходов в статус to.
func (m *OrderMetrics) RecordStatusTransition(to string) {
	m.statusTransitions.WithLabelValues(to).Inc()
}

// RecordPurge фиксирует количество удалённых ретенцией заказов и позиций.
func (m *OrderMetrics) RecordPurge(orders, lines int) {
	m.purgedOrders.Add(float64(orders))
	m.purgedLines.Add(float64(lines))
}

// RecordOpDuration записывает время выполнения операции ядра.
func (m *OrderMetrics) RecordOpDuration(op string, duration time.Duration) {
	m.opDuration.WithLabelValues(op).Observe(duration.Seconds())
}
