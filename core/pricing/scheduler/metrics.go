package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"

	"ionos-finops/internal/errors"
)

const namespace = "ionos_finops"

// Cycle and region results
const (
	resultSuccess = "success"
	resultPartial = "partial"
	resultFailure = "failure"
)

type metrics struct {
	cycles      *prometheus.CounterVec
	regions     *prometheus.CounterVec
	lastSuccess *prometheus.GaugeVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "refresh_cycles_total",
			Help:      "Refresh cycles by result.",
		}, []string{"result"}),
		regions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "region_refresh_total",
			Help:      "Per-region catalog refreshes by result.",
		}, []string{"region", "result"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful refresh of a region.",
		}, []string{"region"}),
	}

	for _, c := range []prometheus.Collector{m.cycles, m.regions, m.lastSuccess} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Internal("failed to register scheduler metrics", err)
		}
	}
	return m, nil
}
