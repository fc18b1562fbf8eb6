package tenantdb

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/tenant"
)

// Metrics records pool and switch activity. A nil *Metrics records nothing.
type Metrics struct {
	switches       *prometheus.CounterVec
	switchDuration *prometheus.HistogramVec
	restorations   *prometheus.CounterVec
	opened         *prometheus.CounterVec
	reused         *prometheus.CounterVec
	evicted        *prometheus.CounterVec
	busyWorkers    prometheus.Gauge
}

// NewMetrics registers the tenantdb collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		switches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenantdb",
			Name:      "switches_total",
			Help:      "Switches to a tenant database by outcome.",
		}, []string{"service", "outcome"}),
		switchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tenantdb",
			Name:      "switch_duration_seconds",
			Help:      "Time from resolve to verified tenant connection.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service"}),
		restorations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenantdb",
			Name:      "central_restorations_total",
			Help:      "Switches back to the central database by outcome.",
		}, []string{"service", "outcome"}),
		opened: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenantdb",
			Name:      "pool_connections_opened_total",
			Help:      "Pooled connections opened.",
		}, []string{"service"}),
		reused: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenantdb",
			Name:      "pool_connections_reused_total",
			Help:      "Pooled connections reused after a successful probe.",
		}, []string{"service"}),
		evicted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenantdb",
			Name:      "pool_connections_evicted_total",
			Help:      "Pooled connections evicted by reason.",
		}, []string{"service", "reason"}),
		busyWorkers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "tenantdb",
			Name:      "workers_busy",
			Help:      "Workers currently checked out by requests.",
		}),
	}
}

// Outcome classifies a switch error for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, tenant.ErrTenantNotFound):
		return "tenant_not_found"
	case errors.Is(err, tenant.ErrInactiveTenant):
		return "tenant_inactive"
	case errors.Is(err, tenant.ErrInvalidIdentifier):
		return "invalid_identifier"
	case errors.Is(err, ErrDatabaseNotProvisioned):
		return "database_not_provisioned"
	case errors.Is(err, ErrConnectionVerificationFailed):
		return "verification_failed"
	case errors.Is(err, ErrConnectionUnavailable):
		return "connection_unavailable"
	default:
		return "error"
	}
}

func (m *Metrics) switched(s Service, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.switches.WithLabelValues(s.String(), Outcome(err)).Inc()
	if err == nil {
		m.switchDuration.WithLabelValues(s.String()).Observe(d.Seconds())
	}
}

func (m *Metrics) restored(s Service, err error) {
	if m == nil {
		return
	}
	m.restorations.WithLabelValues(s.String(), Outcome(err)).Inc()
}

func (m *Metrics) poolOpened(s Service) {
	if m != nil {
		m.opened.WithLabelValues(s.String()).Inc()
	}
}

func (m *Metrics) poolReused(s Service) {
	if m != nil {
		m.reused.WithLabelValues(s.String()).Inc()
	}
}

func (m *Metrics) poolEvicted(s Service, reason string) {
	if m != nil {
		m.evicted.WithLabelValues(s.String(), reason).Inc()
	}
}

func (m *Metrics) workerBusy(delta float64) {
	if m != nil {
		m.busyWorkers.Add(delta)
	}
}
