// Package metrics expone métricas Prometheus del ledger de supplies y del servidor HTTP.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jhoicas/Suministros-api/internal/application/supply"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Nombres de métricas.
const (
	MetricLedgerOperationsTotal  = "supply_ledger_operations_total"
	MetricLedgerOperationSeconds = "supply_ledger_operation_seconds"
	MetricStockMovementsTotal    = "stock_movements_total"
	MetricHTTPRequestsTotal      = "http_requests_total"
	MetricHTTPRequestSeconds     = "http_request_duration_seconds"
)

var _ supply.Recorder = (*Ledger)(nil)

// Registry crea un registry propio con los collectors de proceso y runtime de Go.
func Registry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Ledger métricas de operaciones sobre supplies. Implementa supply.Recorder.
type Ledger struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	movements  *prometheus.CounterVec
}

// NewLedger registra las métricas del ledger en reg.
func NewLedger(reg prometheus.Registerer) *Ledger {
	l := &Ledger{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricLedgerOperationsTotal,
			Help: "Operaciones de supply por tipo y resultado.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricLedgerOperationSeconds,
			Help:    "Duración de las operaciones de supply.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricStockMovementsTotal,
			Help: "Movimientos de stock registrados por tipo.",
		}, []string{"kind"}),
	}
	reg.MustRegister(l.operations, l.duration, l.movements)
	return l
}

// ObserveLedger cuenta la operación y registra su duración.
func (l *Ledger) ObserveLedger(operation, outcome string, elapsed time.Duration) {
	l.operations.WithLabelValues(operation, outcome).Inc()
	l.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// AddMovements suma n movimientos del tipo kind.
func (l *Ledger) AddMovements(kind string, n int) {
	l.movements.WithLabelValues(kind).Add(float64(n))
}

// HTTP métricas de requests.
type HTTP struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTP registra las métricas HTTP en reg.
func NewHTTP(reg prometheus.Registerer) *HTTP {
	h := &HTTP{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricHTTPRequestsTotal,
			Help: "Requests HTTP por método, ruta y status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricHTTPRequestSeconds,
			Help:    "Duración de los requests HTTP.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(h.requests, h.duration)
	return h
}

// Observe registra un request terminado. route es el patrón (/api/supplies/:id), no la URL.
func (h *HTTP) Observe(method, route string, status int, elapsed time.Duration) {
	h.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler devuelve el handler de /metrics para g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
