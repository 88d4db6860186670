package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP Метрики
// =============================================================================

// HttpRequestsTotal - счётчик всех HTTP запросов
// Labels: service, method, path, status
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration - гистограмма времени ответа
// Пример: histogram_quantile(0.95, rate(http_request_duration_seconds_bucket[5m]))
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

// HttpRequestsInFlight - текущее количество обрабатываемых запросов
var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// Метрики проверки цен
// =============================================================================

// SweepsTotal - счётчик завершённых проходов проверки цен
// Labels: result = ok | error (error = не удалось получить список товаров)
var SweepsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "price_sweeps_total",
		Help: "Total number of completed price sweeps",
	},
	[]string{"result"},
)

// SweepsSkipped - счётчик пропущенных триггеров (проход уже выполняется)
var SweepsSkipped = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "price_sweeps_skipped_total",
		Help: "Total number of sweep triggers skipped because a sweep was already running",
	},
)

// SweepDuration - гистограмма длительности одного прохода
var SweepDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "price_sweep_duration_seconds",
		Help:    "Duration of a full price sweep in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	},
)

// FetchErrorsTotal - счётчик неудачных проверок цены по видам ошибок
// Labels: kind = unreachable | title_not_found | price_not_found | price_unparseable | store
var FetchErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "price_fetch_errors_total",
		Help: "Total number of failed product price checks by error kind",
	},
	[]string{"kind"},
)

// ProductsTracked - количество отслеживаемых товаров на момент последнего прохода
var ProductsTracked = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "products_tracked",
		Help: "Number of tracked products as of the last sweep",
	},
)
