// Package main implements modelctl, an operator CLI that trains and queries
// the donation forecast and feedback sentiment models without the HTTP API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Shree2124/NGOStream/internal/bootstrap"
	"github.com/Shree2124/NGOStream/internal/infra"
)

var (
	// force retrains the feedback model even if one exists
	force bool
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "modelctl",
	Short: "Train and query the NGOStream insight models",
	Long: `modelctl trains and queries the donation forecast and feedback sentiment
models using the same configuration as the API server.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	trainFeedbackCmd.Flags().BoolVar(&force, "force", false, "retrain even if a model already exists")

	trainCmd.AddCommand(trainDonationsCmd, trainFeedbackCmd)
	predictCmd.AddCommand(predictDonationsCmd)
	rootCmd.AddCommand(trainCmd, predictCmd, classifyCmd)
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a model",
}

var trainDonationsCmd = &cobra.Command{
	Use:   "donations",
	Short: "Retrain the donation forecast model",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(ctx context.Context, s *bootstrap.Services) (any, error) {
			return s.Forecast.Train(ctx)
		})
	},
}

var trainFeedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Train the feedback sentiment model",
	Long: `Train the feedback sentiment model from FEEDBACK_DATASET_PATH.

Examples:
  # Train only if no model exists
  modelctl train feedback

  # Always retrain
  modelctl train feedback --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(ctx context.Context, s *bootstrap.Services) (any, error) {
			return s.Sentiment.Train(ctx, force)
		})
	},
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Run a prediction",
}

var predictDonationsCmd = &cobra.Command{
	Use:   "donations",
	Short: "Predict next month's donations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(ctx context.Context, s *bootstrap.Services) (any, error) {
			return s.Forecast.Predict(ctx)
		})
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify TEXT...",
	Short: "Label feedback texts with a sentiment",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(ctx context.Context, s *bootstrap.Services) (any, error) {
			return s.Sentiment.Predict(ctx, args)
		})
	},
}

// withServices loads configuration, wires the services, runs fn and prints
// its result as indented JSON.
func withServices(cmd *cobra.Command, fn func(context.Context, *bootstrap.Services) (any, error)) error {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return err
	}
	logger := infra.NewLogger(cfg.AppEnv).Output(cmd.ErrOrStderr())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	services, err := bootstrap.New(cfg, logger)
	if err != nil {
		return err
	}
	defer services.Close(context.Background())

	result, err := fn(ctx, services)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
