package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveTraining(t *testing.T) {
	m := New()
	m.ObserveTraining("donation-forecast", OutcomeSuccess, time.Now())
	m.ObserveTraining("donation-forecast", OutcomeSuccess, time.Now())
	m.ObserveTraining("feedback-sentiment", OutcomeSkipped, time.Now())

	if got := testutil.ToFloat64(m.TrainingRuns.WithLabelValues("donation-forecast", OutcomeSuccess)); got != 2 {
		t.Fatalf("training runs = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.TrainingRuns.WithLabelValues("feedback-sentiment", OutcomeSkipped)); got != 1 {
		t.Fatalf("skipped runs = %v, want 1", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.SetForecastRMSE(12.5)
	m.ObservePrediction("feedback-sentiment", Outcome(nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{"ngostream_forecast_rmse 12.5", `ngostream_predictions_total{model="feedback-sentiment",outcome="success"} 1`} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveTraining("x", OutcomeSuccess, time.Now())
	m.ObservePrediction("x", Outcome(errors.New("boom")))
	m.SetForecastRMSE(1)
	m.SetModelSamples("x", 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
