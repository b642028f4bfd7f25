package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Donation sources.
const (
	SourceMongo    = "mongo"
	SourcePostgres = "postgres"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	DonationSource  string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	DatabaseURL     string
	StoreTimeout    time.Duration

	ArtifactDir          string
	FeedbackDatasetPath  string
	FeedbackTrainOnStart bool

	ForestTrees     int
	RandomSeed      int64
	TestFraction    float64
	LogisticMaxIter int

	CORSAllowedOrigins []string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:               getEnv("APP_ENV", "development"),
		Port:                 getEnv("PORT", "5000"),
		DonationSource:       strings.ToLower(getEnv("DONATION_SOURCE", SourceMongo)),
		MongoURI:             os.Getenv("MONGO_URI"),
		MongoDatabase:        getEnv("MONGO_DATABASE", "ngostream"),
		MongoCollection:      getEnv("MONGO_COLLECTION", "donations"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		StoreTimeout:         time.Second * time.Duration(getEnvInt("STORE_TIMEOUT_SECONDS", 30)),
		ArtifactDir:          getEnv("ARTIFACT_DIR", "./artifacts"),
		FeedbackDatasetPath:  getEnv("FEEDBACK_DATASET_PATH", "data/coustome1.csv"),
		FeedbackTrainOnStart: getEnvBool("FEEDBACK_TRAIN_ON_START", false),
		ForestTrees:          getEnvInt("FOREST_TREES", 100),
		RandomSeed:           int64(getEnvInt("RANDOM_SEED", 42)),
		TestFraction:         getEnvFloat("TEST_FRACTION", 0.2),
		LogisticMaxIter:      getEnvInt("LOGISTIC_MAX_ITER", 1000),
		CORSAllowedOrigins:   getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		HTTPReadTimeout:      time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:     time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:      time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:      getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	switch cfg.DonationSource {
	case SourceMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI is required when DONATION_SOURCE=%s", SourceMongo)
		}
	case SourcePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when DONATION_SOURCE=%s", SourcePostgres)
		}
	default:
		return nil, fmt.Errorf("DONATION_SOURCE must be %q or %q, got %q", SourceMongo, SourcePostgres, cfg.DonationSource)
	}

	if cfg.TestFraction <= 0 || cfg.TestFraction >= 1 {
		return nil, fmt.Errorf("TEST_FRACTION must be between 0 and 1, got %v", cfg.TestFraction)
	}
	if cfg.ForestTrees <= 0 {
		return nil, fmt.Errorf("FOREST_TREES must be positive, got %d", cfg.ForestTrees)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
