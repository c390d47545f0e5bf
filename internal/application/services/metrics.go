package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service-level prometheus collectors.
type Metrics struct {
	Mutations  *prometheus.CounterVec
	ImportRows *prometheus.CounterVec
	Snapshots  prometheus.Counter
}

// NewMetrics creates the service metrics and registers them when reg is
// non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskstore_mutations_total",
				Help: "Total number of task store mutations",
			},
			[]string{"op"},
		),
		ImportRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "import_rows_total",
				Help: "Import pipeline rows by outcome",
			},
			[]string{"outcome"},
		),
		Snapshots: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "snapshot_saves_total",
				Help: "Total number of snapshot writes",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Mutations, m.ImportRows, m.Snapshots)
	}
	return m
}
