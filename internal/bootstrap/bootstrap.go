// Package bootstrap assembles the donation source, artifact store and model
// services from configuration. cmd/api and cmd/modelctl share it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Shree2124/NGOStream/internal/adapter/repo"
	"github.com/Shree2124/NGOStream/internal/domain"
	"github.com/Shree2124/NGOStream/internal/forecast"
	"github.com/Shree2124/NGOStream/internal/infra"
	"github.com/Shree2124/NGOStream/internal/metrics"
	"github.com/Shree2124/NGOStream/internal/sentiment"
	"github.com/Shree2124/NGOStream/internal/storage"
)

// Services is the wired application.
type Services struct {
	Config    *infra.Config
	Logger    zerolog.Logger
	Metrics   *metrics.Metrics
	Store     *storage.ArtifactStore
	Forecast  *forecast.Service
	Sentiment *sentiment.Service

	closers []func(context.Context) error
}

// New builds the services. The donation store is connected on the first
// forecast request, so the feedback model works while it is unreachable.
func New(cfg *infra.Config, logger zerolog.Logger) (*Services, error) {
	switch cfg.DonationSource {
	case infra.SourceMongo, infra.SourcePostgres:
	default:
		return nil, fmt.Errorf("unknown donation source %q", cfg.DonationSource)
	}
	source := newLazySource(func(ctx context.Context) (domain.DonationSource, func(context.Context) error, error) {
		return openSource(ctx, cfg, logger)
	})
	svc, err := Build(cfg, logger, source)
	if err != nil {
		return nil, err
	}
	svc.closers = append(svc.closers, source.Close)
	return svc, nil
}

// Build wires the services around an already opened donation source.
func Build(cfg *infra.Config, logger zerolog.Logger, source domain.DonationSource) (*Services, error) {
	store, err := storage.NewArtifactStore(cfg.ArtifactDir)
	if err != nil {
		return nil, fmt.Errorf("open artifact store: %w", err)
	}
	m := metrics.New()

	return &Services{
		Config:  cfg,
		Logger:  logger,
		Metrics: m,
		Store:   store,
		Forecast: forecast.NewService(source, store, forecast.Config{
			Trees:        cfg.ForestTrees,
			Seed:         cfg.RandomSeed,
			TestFraction: cfg.TestFraction,
			FetchTimeout: cfg.StoreTimeout,
		}, logger, m),
		Sentiment: sentiment.NewService(store, sentiment.Config{
			DatasetPath:  cfg.FeedbackDatasetPath,
			Seed:         cfg.RandomSeed,
			TestFraction: cfg.TestFraction,
			MaxIter:      cfg.LogisticMaxIter,
		}, logger, m),
	}, nil
}

// Close releases the donation source connection if one was opened.
func (s *Services) Close(ctx context.Context) error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func openSource(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (domain.DonationSource, func(context.Context) error, error) {
	switch cfg.DonationSource {
	case infra.SourceMongo:
		client, err := infra.NewMongoClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().
			Str("database", cfg.MongoDatabase).
			Str("collection", cfg.MongoCollection).
			Msg("donation source: mongo")
		return repo.NewDonationRepositoryMongo(infra.MongoCollection(client, cfg)), client.Disconnect, nil
	case infra.SourcePostgres:
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Msg("donation source: postgres")
		closer := func(context.Context) error {
			pool.Close()
			return nil
		}
		return repo.NewDonationRepository(infra.NewSQLRunner(pool, logger)), closer, nil
	default:
		return nil, nil, fmt.Errorf("unknown donation source %q", cfg.DonationSource)
	}
}
