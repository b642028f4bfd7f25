// Package metrics exposes Prometheus instrumentation for model training and
// prediction.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeSkipped = "skipped"
	OutcomeError   = "error"
)

// Metrics holds the collectors of one service instance. A nil *Metrics is
// valid and records nothing.
//
// Metrics:
//   - ngostream_training_runs_total{model,outcome}
//   - ngostream_training_duration_seconds{model}
//   - ngostream_predictions_total{model,outcome}
//   - ngostream_forecast_rmse
//   - ngostream_model_samples{model}
type Metrics struct {
	registry *prometheus.Registry

	TrainingRuns     *prometheus.CounterVec
	TrainingDuration *prometheus.HistogramVec
	Predictions      *prometheus.CounterVec
	ForecastRMSE     prometheus.Gauge
	ModelSamples     *prometheus.GaugeVec
}

// New creates the collectors on a private registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		TrainingRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ngostream_training_runs_total",
				Help: "Total number of model training runs",
			},
			[]string{"model", "outcome"},
		),
		TrainingDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ngostream_training_duration_seconds",
				Help:    "Duration of model training in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
			},
			[]string{"model"},
		),
		Predictions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ngostream_predictions_total",
				Help: "Total number of prediction requests",
			},
			[]string{"model", "outcome"},
		),
		ForecastRMSE: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ngostream_forecast_rmse",
				Help: "Held-out RMSE of the current donation forecast model",
			},
		),
		ModelSamples: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ngostream_model_samples",
				Help: "Number of training samples of the current model",
			},
			[]string{"model"},
		),
	}
}

// ObserveTraining records one training run. Skipped runs are counted but not
// timed.
func (m *Metrics) ObserveTraining(model, outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.TrainingRuns.WithLabelValues(model, outcome).Inc()
	if outcome == OutcomeSuccess {
		m.TrainingDuration.WithLabelValues(model).Observe(time.Since(started).Seconds())
	}
}

// ObservePrediction counts one prediction request.
func (m *Metrics) ObservePrediction(model, outcome string) {
	if m == nil {
		return
	}
	m.Predictions.WithLabelValues(model, outcome).Inc()
}

// SetForecastRMSE publishes the RMSE of a freshly trained forecast model.
func (m *Metrics) SetForecastRMSE(rmse float64) {
	if m == nil {
		return
	}
	m.ForecastRMSE.Set(rmse)
}

// SetModelSamples publishes the training sample count of a model.
func (m *Metrics) SetModelSamples(model string, n int) {
	if m == nil {
		return
	}
	m.ModelSamples.WithLabelValues(model).Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Outcome maps an error to an outcome label.
func Outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}
