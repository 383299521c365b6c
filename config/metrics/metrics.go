package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome classifies a finished load.
type Outcome string

// Load outcomes.
const (
	OutcomeSuccess  Outcome = "success"
	OutcomeInvalid  Outcome = "invalid"
	OutcomeConflict Outcome = "conflict"
	OutcomeExpand   Outcome = "expand"
	OutcomeError    Outcome = "error"
)

// Recorder observes finished loads. Implementations must be safe for
// concurrent use.
type Recorder interface {
	LoadFinished(typeName string, outcome Outcome, duration time.Duration, fieldErrors int)
}

// Nop discards every observation.
type Nop struct{}

// LoadFinished implements Recorder.
func (Nop) LoadFinished(string, Outcome, time.Duration, int) {}

// Prometheus records loads as Prometheus metrics.
type Prometheus struct {
	loads       *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	fieldErrors *prometheus.CounterVec
}

// NewPrometheus registers the load metrics with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	return &Prometheus{
		loads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hjarta_config_loads_total",
				Help: "Total number of configuration loads",
			},
			[]string{"type", "outcome"},
		),

		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hjarta_config_load_duration_seconds",
				Help:    "Duration of configuration loads in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 100µs to 0.8s
			},
			[]string{"type"},
		),

		fieldErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hjarta_config_field_errors_total",
				Help: "Total number of field errors reported by failed loads",
			},
			[]string{"type"},
		),
	}
}

// LoadFinished implements Recorder.
func (p *Prometheus) LoadFinished(typeName string, outcome Outcome, duration time.Duration, fieldErrors int) {
	p.loads.WithLabelValues(typeName, string(outcome)).Inc()
	p.duration.WithLabelValues(typeName).Observe(duration.Seconds())

	if fieldErrors > 0 {
		p.fieldErrors.WithLabelValues(typeName).Add(float64(fieldErrors))
	}
}
