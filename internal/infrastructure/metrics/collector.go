package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Almacen-api/internal/application/allocator"
	"github.com/jhoicas/Almacen-api/internal/application/ledger"
)

const namespace = "almacen"

var (
	_ ledger.Metrics    = (*Collector)(nil)
	_ allocator.Metrics = (*Collector)(nil)
)

// Collector métricas Prometheus del libro de retiros y del asignador, en un registro propio.
type Collector struct {
	registry *prometheus.Registry

	withdrawals        *prometheus.CounterVec
	withdrawalDuration prometheus.Histogram
	returns            *prometheus.CounterVec
	gridOperations     *prometheus.CounterVec
	cellsMoved         *prometheus.CounterVec
}

// NewCollector registra las métricas. withRuntime agrega los colectores de proceso y de Go.
func NewCollector(withRuntime bool) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		withdrawals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "withdrawals_total",
			Help:      "Lotes de retiro procesados, por resultado.",
		}, []string{"outcome"}),
		withdrawalDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "withdrawal_duration_seconds",
			Help:      "Duración de un lote de retiro, incluida la espera de bloqueos.",
			Buckets:   prometheus.DefBuckets,
		}),
		returns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "returns_total",
			Help:      "Devoluciones procesadas, por resultado.",
		}, []string{"outcome"}),
		gridOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grid_operations_total",
			Help:      "Operaciones de cuadrícula, por operación y resultado.",
		}, []string{"operation", "outcome"}),
		cellsMoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grid_cells_moved_total",
			Help:      "Productos reubicados por operaciones de cuadrícula exitosas.",
		}, []string{"operation"}),
	}
	c.registry.MustRegister(c.withdrawals, c.withdrawalDuration, c.returns, c.gridOperations, c.cellsMoved)
	if withRuntime {
		c.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return c
}

// ObserveWithdrawal cuenta el lote y, si se confirmó, registra su duración.
func (c *Collector) ObserveWithdrawal(outcome string, elapsed time.Duration) {
	c.withdrawals.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		c.withdrawalDuration.Observe(elapsed.Seconds())
	}
}

// ObserveReturn cuenta la devolución.
func (c *Collector) ObserveReturn(outcome string) {
	c.returns.WithLabelValues(outcome).Inc()
}

// ObserveGridOperation cuenta la operación y los productos que movió.
func (c *Collector) ObserveGridOperation(operation, outcome string, moved int) {
	c.gridOperations.WithLabelValues(operation, outcome).Inc()
	if outcome == "ok" && moved > 0 {
		c.cellsMoved.WithLabelValues(operation).Add(float64(moved))
	}
}

// Registry registro con las métricas de la aplicación.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler exposición en formato Prometheus.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
