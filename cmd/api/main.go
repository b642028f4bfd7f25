package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Shree2124/NGOStream/internal/bootstrap"
	"github.com/Shree2124/NGOStream/internal/http/handlers"
	httpapi "github.com/Shree2124/NGOStream/internal/http/httpapi"
	"github.com/Shree2124/NGOStream/internal/infra"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	services, err := bootstrap.New(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize services")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := services.Close(closeCtx); err != nil {
			logger.Error().Err(err).Msg("failed to close donation source")
		}
	}()

	if cfg.FeedbackTrainOnStart {
		result, err := services.Sentiment.EnsureModelTrained(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("feedback model not available")
		} else {
			logger.Info().Bool("trained", result.Trained).Str("version", result.Version).Msg("feedback model ready")
		}
	}

	app := handlers.NewApp(services.Forecast, services.Sentiment, logger)
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Metrics:         services.Metrics.Handler(),
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Str("donation_source", cfg.DonationSource).Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
