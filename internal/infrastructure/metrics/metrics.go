// Package metrics exposes workflow activity to Prometheus.
package metrics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Xausdorf/paycrew/internal/domain/entity"
)

const namespace = "paycrew"

// Observer counts workflow transitions and times every step. Register it
// with a prometheus.Registerer before use.
type Observer struct {
	mTransitions  *prometheus.CounterVec
	mStepDuration *prometheus.HistogramVec
	mFailures     *prometheus.CounterVec
	mCompleted    prometheus.Counter
}

func NewObserver() *Observer {
	return &Observer{
		mTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_transitions_total",
			Help:      "Workflow state transitions.",
		}, []string{"from", "to"}),
		mStepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workflow_step_duration_seconds",
			Help:      "Time spent reaching a workflow state.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"state"}),
		mFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_failures_total",
			Help:      "Failed workflow runs by failing state and error kind.",
		}, []string{"failed_at", "kind", "code"}),
		mCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_completed_total",
			Help:      "Workflow runs that reached completed.",
		}),
	}
}

func (o *Observer) Transition(run *entity.Run, from, to entity.State, took time.Duration) {
	o.mTransitions.WithLabelValues(string(from), string(to)).Inc()

	switch to {
	case entity.StateFailed:
		kind, code := "unknown", "unknown"
		if detail := run.Error(); detail != nil {
			kind, code = string(detail.Kind), string(detail.Code)
		}
		o.mFailures.WithLabelValues(string(run.FailedAt()), kind, code).Inc()
	case entity.StateCompleted:
		o.mCompleted.Inc()
		o.mStepDuration.WithLabelValues(string(to)).Observe(took.Seconds())
	default:
		o.mStepDuration.WithLabelValues(string(to)).Observe(took.Seconds())
	}
}

func (o *Observer) Describe(ch chan<- *prometheus.Desc) {
	o.mTransitions.Describe(ch)
	o.mStepDuration.Describe(ch)
	o.mFailures.Describe(ch)
	o.mCompleted.Describe(ch)
}

func (o *Observer) Collect(ch chan<- prometheus.Metric) {
	o.mTransitions.Collect(ch)
	o.mStepDuration.Collect(ch)
	o.mFailures.Collect(ch)
	o.mCompleted.Collect(ch)
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer, logger *slog.Logger) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{
		ErrorLog:      slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}
