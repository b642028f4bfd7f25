package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Shree2124/NGOStream/internal/domain"
	"github.com/Shree2124/NGOStream/internal/middleware"
)

// ForecastService is the donation model surface the handlers use.
type ForecastService interface {
	Train(ctx context.Context) (domain.TrainingResult, error)
	Predict(ctx context.Context) (domain.Forecast, error)
	Trends(ctx context.Context) (domain.DonationTrends, error)
}

// SentimentService is the feedback model surface the handlers use.
type SentimentService interface {
	Train(ctx context.Context, force bool) (domain.TrainingResult, error)
	Predict(ctx context.Context, texts []string) ([]domain.SentimentResult, error)
}

type App struct {
	Forecast  ForecastService
	Sentiment SentimentService
	Logger    zerolog.Logger
}

func NewApp(forecast ForecastService, sentiment SentimentService, logger zerolog.Logger) *App {
	return &App{Forecast: forecast, Sentiment: sentiment, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, msg string) {
	a.json(w, status, map[string]string{"error": msg, "code": code})
}

// fail maps a service error onto a status code and error body.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	ev := a.Logger.Warn()
	if status >= http.StatusInternalServerError {
		ev = a.Logger.Error()
	}
	ev.Err(err).
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("request failed")
	a.error(w, status, code, err.Error())
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, domain.ErrNoData):
		return http.StatusBadRequest, "no_data"
	case errors.Is(err, domain.ErrSchemaMismatch):
		return http.StatusBadRequest, "schema_mismatch"
	case errors.Is(err, domain.ErrModelNotFound):
		return http.StatusBadRequest, "model_not_found"
	case errors.Is(err, domain.ErrDatasetNotFound):
		return http.StatusInternalServerError, "dataset_not_found"
	case errors.Is(err, domain.ErrDatasetRead):
		return http.StatusInternalServerError, "dataset_read_error"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
