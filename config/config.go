package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v6"

	"fundamental/pricing/internal/models"
)

type Config struct {
	Server struct {
		Port           string   `env:"PRICING_PORT" envDefault:"5250"`
		DatabasePath   string   `env:"PRICING_DB_PATH" envDefault:"database/pricing.db"`
		CORSOrigins    []string `env:"PRICING_CORS_ORIGINS" envSeparator:"," envDefault:"*"`
		VocabularyPath string   `env:"PRICING_VOCABULARY_PATH"`
	}

	// Pricing configures model training and comparison
	Pricing struct {
		ModelKind       string  `env:"PRICING_MODEL_KIND" envDefault:"ridge"`
		RidgeAlpha      float64 `env:"PRICING_RIDGE_ALPHA" envDefault:"0.1"`
		Seed            int64   `env:"PRICING_SEED" envDefault:"42"`
		MinTrainingSize int     `env:"PRICING_MIN_TRAINING_SIZE" envDefault:"5"`
		TestFraction    float64 `env:"PRICING_TEST_FRACTION" envDefault:"0.2"`
		CVFolds         int     `env:"PRICING_CV_FOLDS" envDefault:"5"`
		ForestTrees     int     `env:"PRICING_FOREST_TREES" envDefault:"0.1"`
		ForestMaxDepth  int     `env:"PRICING_FOREST_MAX_DEPTH" envDefault:"0"`

		// Relative gap tolerated between the breakdown sum and the predicted price delta
		ConsistencyTolerance float64 `env:"PRICING_CONSISTENCY_TOLERANCE" envDefault:"0.01"`
	}

	// BatchProcessing configuration
	BatchProcessing struct {
		// Maximum number of records accepted per ingest batch
		MaxBatchSize int `env:"BATCH_MAX_SIZE" envDefault:"0.1"`

		// Number of batches the ingest queue buffers
		QueueSize int `env:"BATCH_QUEUE_SIZE" envDefault:"32"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`
	}

	Retraining struct {
		Enabled         bool `env:"RETRAIN_ENABLED" envDefault:"true"`
		IntervalMinutes int  `env:"RETRAIN_INTERVAL_MINUTES" envDefault:"60"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ErrInvalidConfig wraps every rejected setting
var ErrInvalidConfig = errors.New("invalid configuration")

func (c *Config) validate() error {
	if _, err := models.ParseModelKind(c.Pricing.ModelKind); err != nil {
		return fmt.Errorf("invalid PRICING_MODEL_KIND: %w", err)
	}
	if c.Pricing.RidgeAlpha <= 0 {
		return fmt.Errorf("%w: PRICING_RIDGE_ALPHA must be positive, got %v", ErrInvalidConfig, c.Pricing.RidgeAlpha)
	}
	if c.Retraining.Enabled && c.Retraining.IntervalMinutes <= 0 {
		return fmt.Errorf("%w: RETRAIN_INTERVAL_MINUTES must be positive, got %d", ErrInvalidConfig, c.Retraining.IntervalMinutes)
	}
	return nil
}

// Hyperparameters builds the training hyperparameters described by the config
func (c *Config) Hyperparameters() models.Hyperparameters {
	return models.Hyperparameters{
		Alpha:           c.Pricing.RidgeAlpha,
		Seed:            c.Pricing.Seed,
		TestFraction:    c.Pricing.TestFraction,
		CVFolds:         c.Pricing.CVFolds,
		MinTrainingSize: c.Pricing.MinTrainingSize,
		Trees:           c.Pricing.ForestTrees,
		MaxDepth:        c.Pricing.ForestMaxDepth,
		MinSamplesLeaf:  1,
	}
}
