package sentiment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shree2124/NGOStream/internal/domain"
	"github.com/Shree2124/NGOStream/internal/metrics"
	"github.com/Shree2124/NGOStream/internal/ml"
	"github.com/Shree2124/NGOStream/internal/textproc"
)

// ModelKind is the artifact kind of the feedback classifier.
const ModelKind = "feedback-sentiment"

// Pipeline is the persisted classifier: a tf-idf vectorizer feeding a
// logistic regression.
type Pipeline struct {
	Vectorizer *ml.TfidfVectorizer    `json:"vectorizer"`
	Classifier *ml.LogisticRegression `json:"classifier"`
	Samples    int                    `json:"samples"`
	TrainedAt  time.Time              `json:"trained_at"`
}

// Classify predicts the sentiment code of already normalized text.
func (p *Pipeline) Classify(processed string) int {
	return p.Classifier.Predict(p.Vectorizer.Transform(processed))
}

// Config locates the dataset and tunes training.
type Config struct {
	DatasetPath  string
	Seed         int64
	TestFraction float64
	MaxIter      int
}

// Service trains, caches and applies the feedback classifier.
type Service struct {
	store      domain.ArtifactStore
	cfg        Config
	normalizer *textproc.Normalizer
	logger     zerolog.Logger
	metrics    *metrics.Metrics

	trainMu sync.Mutex

	mu            sync.RWMutex
	cached        *Pipeline
	cachedVersion string
}

// NewService wires a sentiment service. m may be nil.
func NewService(store domain.ArtifactStore, cfg Config, logger zerolog.Logger, m *metrics.Metrics) *Service {
	if cfg.TestFraction <= 0 || cfg.TestFraction >= 1 {
		cfg.TestFraction = 0.2
	}
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = 1000
	}
	return &Service{
		store:      store,
		cfg:        cfg,
		normalizer: textproc.NewNormalizer(),
		logger:     logger.With().Str("model", ModelKind).Logger(),
		metrics:    m,
	}
}

// EnsureModelTrained trains the classifier only when no artifact exists yet.
// An existing model is reported with Trained=false.
func (s *Service) EnsureModelTrained(ctx context.Context) (domain.TrainingResult, error) {
	return s.Train(ctx, false)
}

// Train builds the classifier from the dataset. Without force it is a no-op
// when a model already exists.
func (s *Service) Train(ctx context.Context, force bool) (domain.TrainingResult, error) {
	started := time.Now()
	result, err := s.train(ctx, force)
	switch {
	case err != nil:
		s.metrics.ObserveTraining(ModelKind, metrics.OutcomeError, started)
		s.logger.Error().Err(err).Msg("training failed")
	case !result.Trained:
		s.metrics.ObserveTraining(ModelKind, metrics.OutcomeSkipped, started)
	default:
		s.metrics.ObserveTraining(ModelKind, metrics.OutcomeSuccess, started)
		s.metrics.SetModelSamples(ModelKind, result.TrainRows)
	}
	return result, err
}

func (s *Service) train(ctx context.Context, force bool) (domain.TrainingResult, error) {
	s.trainMu.Lock()
	defer s.trainMu.Unlock()

	if !force {
		artifact, err := s.store.Current(ctx, ModelKind)
		if err == nil {
			s.logger.Info().Str("version", artifact.Version).Msg("model already exists, skipping training")
			return domain.TrainingResult{
				Model:   ModelKind,
				Version: artifact.Version,
				Path:    s.store.Path(artifact),
			}, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.TrainingResult{}, fmt.Errorf("resolve model: %w", err)
		}
	}

	records, stats, err := LoadDataset(s.cfg.DatasetPath, s.normalizer)
	if err != nil {
		return domain.TrainingResult{}, err
	}
	s.logger.Info().
		Int("rows", stats.Rows).
		Int("malformed", stats.Malformed).
		Int("other_label", stats.OtherLabel).
		Int("empty_text", stats.EmptyText).
		Int("negative", stats.PerSentiment[domain.SentimentNegative]).
		Int("neutral", stats.PerSentiment[domain.SentimentNeutral]).
		Int("suggestion", stats.PerSentiment[domain.SentimentSuggestion]).
		Int("positive", stats.PerSentiment[domain.SentimentPositive]).
		Msg("dataset loaded")
	if len(records) == 0 {
		return domain.TrainingResult{}, fmt.Errorf("%w: %s has no usable feedback rows", domain.ErrNoData, s.cfg.DatasetPath)
	}

	docs := make([]string, len(records))
	labels := make([]int, len(records))
	for i, rec := range records {
		docs[i] = rec.ProcessedText
		labels[i] = rec.Sentiment
	}

	pipeline, err := s.fit(docs, labels)
	if err != nil {
		return domain.TrainingResult{}, err
	}
	artifact, err := s.store.Save(ctx, ModelKind, pipeline)
	if err != nil {
		return domain.TrainingResult{}, fmt.Errorf("save model: %w", err)
	}
	s.setCached(artifact.Version, pipeline)
	s.logger.Info().Str("version", artifact.Version).Int("samples", pipeline.Samples).Msg("model trained")

	s.evaluate(docs, labels)

	return domain.TrainingResult{
		Model:     ModelKind,
		Version:   artifact.Version,
		Path:      s.store.Path(artifact),
		Trained:   true,
		TrainRows: pipeline.Samples,
	}, nil
}

func (s *Service) fit(docs []string, labels []int) (*Pipeline, error) {
	vectorizer, err := ml.FitTfidf(docs)
	if err != nil {
		return nil, noData(err)
	}
	cfg := ml.DefaultLogisticConfig()
	cfg.MaxIter = s.cfg.MaxIter
	classifier, err := ml.FitLogistic(vectorizer.TransformAll(docs), labels, vectorizer.Dim(), cfg)
	if err != nil {
		return nil, noData(err)
	}
	return &Pipeline{
		Vectorizer: vectorizer,
		Classifier: classifier,
		Samples:    len(docs),
		TrainedAt:  time.Now().UTC(),
	}, nil
}

// evaluate refits on a hold-out split and logs a classification report over
// the labels the validation predictions contain. It never fails training.
func (s *Service) evaluate(docs []string, labels []int) {
	trainIdx, valIdx, err := ml.TrainTestSplit(len(docs), s.cfg.TestFraction, s.cfg.Seed)
	if err != nil {
		s.logger.Warn().Err(err).Msg("skipping evaluation")
		return
	}
	trainDocs, trainLabels := pick(docs, labels, trainIdx)
	valDocs, valLabels := pick(docs, labels, valIdx)

	pipeline, err := s.fit(trainDocs, trainLabels)
	if err != nil {
		s.logger.Warn().Err(err).Msg("skipping evaluation")
		return
	}
	predicted := make([]int, len(valDocs))
	for i, doc := range valDocs {
		predicted[i] = pipeline.Classify(doc)
	}
	report, err := ml.NewClassificationReport(valLabels, predicted, ml.PresentLabels(predicted), LabelFor)
	if err != nil {
		s.logger.Warn().Err(err).Msg("skipping evaluation")
		return
	}
	s.logger.Info().
		Int("train_rows", len(trainIdx)).
		Int("validation_rows", len(valIdx)).
		Float64("accuracy", report.Accuracy).
		Float64("macro_f1", report.MacroF1).
		Msg("validation report\n" + report.String())
}

// Predict labels each text with the current model. It never trains.
func (s *Service) Predict(ctx context.Context, texts []string) ([]domain.SentimentResult, error) {
	results, err := s.predict(ctx, texts)
	s.metrics.ObservePrediction(ModelKind, metrics.Outcome(err))
	return results, err
}

func (s *Service) predict(ctx context.Context, texts []string) ([]domain.SentimentResult, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no texts to analyze", domain.ErrValidation)
	}
	pipeline, err := s.currentPipeline(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]domain.SentimentResult, len(texts))
	for i, text := range texts {
		code := pipeline.Classify(s.normalizer.Normalize(text))
		results[i] = domain.SentimentResult{Text: text, Sentiment: LabelFor(code)}
	}
	return results, nil
}

func (s *Service) currentPipeline(ctx context.Context) (*Pipeline, error) {
	artifact, err := s.store.Current(ctx, ModelKind)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: train the feedback model first", domain.ErrModelNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve model: %w", err)
	}

	s.mu.RLock()
	if s.cached != nil && s.cachedVersion == artifact.Version {
		pipeline := s.cached
		s.mu.RUnlock()
		return pipeline, nil
	}
	s.mu.RUnlock()

	var pipeline Pipeline
	if err := s.store.Load(ctx, artifact, &pipeline); err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if pipeline.Vectorizer == nil || pipeline.Classifier == nil {
		return nil, fmt.Errorf("load model: artifact %s is incomplete", artifact.Version)
	}
	s.setCached(artifact.Version, &pipeline)
	s.logger.Info().Str("version", artifact.Version).Msg("model loaded")
	return &pipeline, nil
}

func (s *Service) setCached(version string, pipeline *Pipeline) {
	s.mu.Lock()
	s.cached = pipeline
	s.cachedVersion = version
	s.mu.Unlock()
}

func noData(err error) error {
	if errors.Is(err, ml.ErrTooFewSamples) {
		return fmt.Errorf("%w: %v", domain.ErrNoData, err)
	}
	return err
}

func pick(docs []string, labels []int, idx []int) ([]string, []int) {
	d := make([]string, len(idx))
	l := make([]int, len(idx))
	for i, j := range idx {
		d[i] = docs[j]
		l[i] = labels[j]
	}
	return d, l
}
