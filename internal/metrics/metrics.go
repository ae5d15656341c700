// metrics - prometheus-метрики клиента: HTTP-запросы к бэкенду,
// обновления токена и загрузки селекторов.
//
// Метрики регистрируются на переданном prometheus.Registerer, глобальный
// DefaultRegisterer не используется. Методы безопасны на nil-получателе:
// компонент без метрик просто передаёт nil.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "carmarket_client"

// Результаты refresh.
const (
	RefreshOK        = "ok"
	RefreshNoToken   = "no_token"
	RefreshRejected  = "rejected"
	RefreshError     = "error"
	RefreshCoalesced = "coalesced"
)

// Metrics - набор коллекторов клиента.
type Metrics struct {
	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	refresh        *prometheus.CounterVec
	selectorLoads  *prometheus.CounterVec
	selectorDedups *prometheus.CounterVec
}

// New создаёт и регистрирует метрики. reg == nil - новый prometheus.Registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	f := promauto.With(reg)

	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests sent to the backend",
		}, []string{"method", "status"}),

		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Backend HTTP round trip duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		refresh: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refresh_total",
			Help:      "Access token refresh attempts by result",
		}, []string{"result"}), // result: ok|no_token|rejected|error|coalesced

		selectorLoads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selector_loads_total",
			Help:      "Selector page loads by selector kind and outcome",
		}, []string{"kind", "outcome"}), // outcome: applied|stale

		selectorDedups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selector_duplicates_skipped_total",
			Help:      "Items skipped by selectors because they were already loaded",
		}, []string{"kind"}),
	}
}

// ObserveRequest фиксирует один HTTP round trip. status == 0 - транспортная ошибка.
func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}

	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}

	m.requests.WithLabelValues(method, code).Inc()
	m.duration.WithLabelValues(method).Observe(d.Seconds())
}

// IncRefresh фиксирует попытку обновления токена.
func (m *Metrics) IncRefresh(result string) {
	if m == nil {
		return
	}

	m.refresh.WithLabelValues(result).Inc()
}

// IncSelectorLoad фиксирует загрузку страницы селектора.
// stale == true - результат отброшен как устаревший.
func (m *Metrics) IncSelectorLoad(kind string, stale bool) {
	if m == nil {
		return
	}

	outcome := "applied"
	if stale {
		outcome = "stale"
	}

	m.selectorLoads.WithLabelValues(kind, outcome).Inc()
}

// AddSelectorDuplicates фиксирует пропущенные дубликаты.
func (m *Metrics) AddSelectorDuplicates(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}

	m.selectorDedups.WithLabelValues(kind).Add(float64(n))
}
