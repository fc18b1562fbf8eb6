package isolation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts guard decisions. A nil *Metrics records nothing.
type Metrics struct {
	decisions *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		decisions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenant_isolation",
			Name:      "decisions_total",
			Help:      "Isolation guard decisions by reason.",
		}, []string{"allowed", "reason"}),
	}
}

func (m *Metrics) decided(d Decision) {
	if m == nil {
		return
	}
	allowed := "false"
	if d.Allowed {
		allowed = "true"
	}
	m.decisions.WithLabelValues(allowed, string(d.Reason)).Inc()
}
