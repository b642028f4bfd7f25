// Package forecast trains and serves the donation forecast model.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/Shree2124/NGOStream/internal/domain"
	"github.com/Shree2124/NGOStream/internal/features"
	"github.com/Shree2124/NGOStream/internal/metrics"
	"github.com/Shree2124/NGOStream/internal/ml"
)

// ModelKind is the artifact kind of the donation forecast model.
const ModelKind = "donation-forecast"

// Model is the persisted forecast artifact.
type Model struct {
	Schema    features.Schema  `json:"schema"`
	Forest    *ml.RandomForest `json:"forest"`
	RMSE      float64          `json:"rmse"`
	TrainRows int              `json:"train_rows"`
	TestRows  int              `json:"test_rows"`
	TrainedAt time.Time        `json:"trained_at"`
}

// Config tunes training and bounds calls to the donation source.
type Config struct {
	Trees        int
	Seed         int64
	TestFraction float64
	FetchTimeout time.Duration
}

// DefaultConfig returns 100 trees, seed 42 and a 20% hold-out.
func DefaultConfig() Config {
	return Config{Trees: 100, Seed: 42, TestFraction: 0.2}
}

// Service trains, caches and applies the forecast model.
type Service struct {
	source  domain.DonationSource
	store   domain.ArtifactStore
	cfg     Config
	logger  zerolog.Logger
	metrics *metrics.Metrics

	trainMu sync.Mutex

	mu            sync.RWMutex
	cached        *Model
	cachedVersion string
}

// NewService wires a forecast service. m may be nil.
func NewService(source domain.DonationSource, store domain.ArtifactStore, cfg Config, logger zerolog.Logger, m *metrics.Metrics) *Service {
	if cfg.Trees <= 0 {
		cfg.Trees = 100
	}
	if cfg.TestFraction <= 0 || cfg.TestFraction >= 1 {
		cfg.TestFraction = 0.2
	}
	return &Service{
		source:  source,
		store:   store,
		cfg:     cfg,
		logger:  logger.With().Str("model", ModelKind).Logger(),
		metrics: m,
	}
}

// Train fits a new forest on the aggregated donation history and stores it
// as a new artifact version. It always retrains.
func (s *Service) Train(ctx context.Context) (domain.TrainingResult, error) {
	started := time.Now()
	result, err := s.train(ctx)
	s.metrics.ObserveTraining(ModelKind, metrics.Outcome(err), started)
	if err != nil {
		s.logger.Error().Err(err).Msg("training failed")
		return domain.TrainingResult{}, err
	}
	s.metrics.SetForecastRMSE(result.RMSE)
	s.metrics.SetModelSamples(ModelKind, result.TrainRows)
	return result, nil
}

func (s *Service) train(ctx context.Context) (domain.TrainingResult, error) {
	s.trainMu.Lock()
	defer s.trainMu.Unlock()

	buckets, err := s.buckets(ctx)
	if err != nil {
		return domain.TrainingResult{}, err
	}
	if len(buckets) < 2 {
		return domain.TrainingResult{}, fmt.Errorf("%w: need at least 2 monthly donation groups, got %d", domain.ErrNoData, len(buckets))
	}

	schema := features.NewSchema(buckets)
	x, y, err := schema.Matrix(buckets)
	if err != nil {
		return domain.TrainingResult{}, err
	}
	trainIdx, testIdx, err := ml.TrainTestSplit(len(x), s.cfg.TestFraction, s.cfg.Seed)
	if err != nil {
		if errors.Is(err, ml.ErrTooFewSamples) {
			return domain.TrainingResult{}, fmt.Errorf("%w: %v", domain.ErrNoData, err)
		}
		return domain.TrainingResult{}, err
	}

	xTrain, yTrain := subset(x, y, trainIdx)
	xTest, yTest := subset(x, y, testIdx)

	forest, err := ml.FitForest(xTrain, yTrain, ml.ForestConfig{
		Trees:           s.cfg.Trees,
		Seed:            s.cfg.Seed,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	})
	if err != nil {
		return domain.TrainingResult{}, fmt.Errorf("fit forest: %w", err)
	}
	preds, err := forest.PredictBatch(xTest)
	if err != nil {
		return domain.TrainingResult{}, fmt.Errorf("score forest: %w", err)
	}
	rmse, err := ml.RMSE(yTest, preds)
	if err != nil {
		return domain.TrainingResult{}, fmt.Errorf("score forest: %w", err)
	}

	model := &Model{
		Schema:    schema,
		Forest:    forest,
		RMSE:      rmse,
		TrainRows: len(trainIdx),
		TestRows:  len(testIdx),
		TrainedAt: time.Now().UTC(),
	}
	artifact, err := s.store.Save(ctx, ModelKind, model)
	if err != nil {
		return domain.TrainingResult{}, fmt.Errorf("save model: %w", err)
	}
	s.setCached(artifact.Version, model)

	s.logger.Info().
		Str("version", artifact.Version).
		Float64("rmse", rmse).
		Int("train_rows", model.TrainRows).
		Int("test_rows", model.TestRows).
		Strs("categories", schema.Categories).
		Msg("model trained")

	return domain.TrainingResult{
		Model:     ModelKind,
		Version:   artifact.Version,
		Path:      s.store.Path(artifact),
		Trained:   true,
		RMSE:      rmse,
		TrainRows: model.TrainRows,
		TestRows:  model.TestRows,
	}, nil
}

// Predict forecasts the donation amount of the month following the most
// recent one in the history, using the current model. It never trains.
func (s *Service) Predict(ctx context.Context) (domain.Forecast, error) {
	forecast, err := s.predict(ctx)
	s.metrics.ObservePrediction(ModelKind, metrics.Outcome(err))
	return forecast, err
}

func (s *Service) predict(ctx context.Context) (domain.Forecast, error) {
	buckets, err := s.buckets(ctx)
	if err != nil {
		return domain.Forecast{}, err
	}
	if len(buckets) == 0 {
		return domain.Forecast{}, fmt.Errorf("%w: no valid donation records", domain.ErrNoData)
	}

	model, version, err := s.currentModel(ctx)
	if err != nil {
		return domain.Forecast{}, err
	}

	year, month, donationType, _ := features.NextPeriod(buckets)
	row, err := model.Schema.Row(year, month, donationType)
	if err != nil {
		return domain.Forecast{}, err
	}
	predicted, err := model.Forest.Predict(row)
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("%w: %v", domain.ErrSchemaMismatch, err)
	}

	totals := features.MonthlyTotals(buckets)
	amounts := make([]float64, len(totals))
	for i, t := range totals {
		amounts[i] = t.Amount
	}

	s.logger.Debug().
		Str("version", version).
		Int("year", year).
		Int("month", month).
		Str("donation_type", donationType).
		Float64("predicted", predicted).
		Msg("forecast computed")

	return domain.Forecast{
		Average:       stat.Mean(amounts, nil),
		Predicted:     math.Max(0, predicted),
		Year:          year,
		Month:         month,
		MonthlyTotals: totals,
		ModelVersion:  version,
	}, nil
}

// Trends returns the dated donation points and their monthly totals.
func (s *Service) Trends(ctx context.Context) (domain.DonationTrends, error) {
	docs, err := s.fetch(ctx)
	if err != nil {
		return domain.DonationTrends{}, err
	}
	points := features.TrendPoints(docs)
	return domain.DonationTrends{
		Points:        points,
		MonthlyTotals: features.PointTotals(points),
	}, nil
}

func (s *Service) fetch(ctx context.Context) ([]domain.Document, error) {
	if s.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
	}
	docs, err := s.source.FetchDonations(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch donations: %w", err)
	}
	return docs, nil
}

func (s *Service) buckets(ctx context.Context) ([]domain.DonationBucket, error) {
	docs, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no donation records found", domain.ErrNoData)
	}
	rows, err := features.CleanDonations(docs)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Int("records", len(docs)).Int("rows", len(rows)).Msg("donations cleaned")
	return features.Aggregate(rows), nil
}

// currentModel returns the model the store currently points at, reusing the
// cached copy while the version is unchanged.
func (s *Service) currentModel(ctx context.Context) (*Model, string, error) {
	artifact, err := s.store.Current(ctx, ModelKind)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, "", fmt.Errorf("%w: train the donation model first", domain.ErrModelNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("resolve model: %w", err)
	}

	s.mu.RLock()
	if s.cached != nil && s.cachedVersion == artifact.Version {
		model := s.cached
		s.mu.RUnlock()
		return model, artifact.Version, nil
	}
	s.mu.RUnlock()

	var model Model
	if err := s.store.Load(ctx, artifact, &model); err != nil {
		return nil, "", fmt.Errorf("load model: %w", err)
	}
	if model.Forest == nil || model.Forest.Features != model.Schema.Width() {
		return nil, "", fmt.Errorf("%w: artifact %s is inconsistent", domain.ErrSchemaMismatch, artifact.Version)
	}
	s.setCached(artifact.Version, &model)
	s.logger.Info().Str("version", artifact.Version).Msg("model loaded")
	return &model, artifact.Version, nil
}

func (s *Service) setCached(version string, model *Model) {
	s.mu.Lock()
	s.cached = model
	s.cachedVersion = version
	s.mu.Unlock()
}

func subset(x [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	xs := make([][]float64, len(idx))
	ys := make([]float64, len(idx))
	for i, j := range idx {
		xs[i] = x[j]
		ys[i] = y[j]
	}
	return xs, ys
}
