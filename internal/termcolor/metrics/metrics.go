package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the term color extension.
// Tracks save outcomes, save latency and read results.
type Metrics struct {
	Saves        *prometheus.CounterVec
	SaveDuration prometheus.Histogram
	Reads        *prometheus.CounterVec
}

// New creates a new Metrics instance registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Saves: f.NewCounterVec(prometheus.CounterOpts{
			Name: "termcolor_saves_total",
			Help: "Term color save attempts by outcome",
		}, []string{"outcome"}),
		SaveDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "termcolor_save_duration_seconds",
			Help:    "Duration of SaveColor including the store round trips",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		Reads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "termcolor_reads_total",
			Help: "Term color reads by result (hit, miss, invalid, error)",
		}, []string{"result"}),
	}
}

// IncSave records a save outcome.
func (m *Metrics) IncSave(outcome string) {
	m.Saves.WithLabelValues(outcome).Inc()
}

// ObserveSave records the duration of a SaveColor call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveSave(start time.Time) {
	m.SaveDuration.Observe(time.Since(start).Seconds())
}

// IncRead records a read result.
func (m *Metrics) IncRead(result string) {
	m.Reads.WithLabelValues(result).Inc()
}
