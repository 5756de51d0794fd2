package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TrainingRuns counts training runs by model kind and result
	TrainingRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_training_runs_total",
		Help: "Total training runs by model kind and result",
	}, []string{"kind", "result"})

	// TrainingDuration tracks how long a training run takes
	TrainingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pricing_training_duration_seconds",
		Help:    "Training duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	}, []string{"kind"})

	// ModelRSquared is the R² of the model currently serving predictions
	ModelRSquared = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pricing_model_r_squared",
		Help: "R squared of the active model",
	})

	// ModelTrainingRows is the corpus size of the active model
	ModelTrainingRows = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pricing_model_training_rows",
		Help: "Training rows of the active model",
	})

	// Predictions counts predictions by confidence level
	Predictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_predictions_total",
		Help: "Total predictions by confidence",
	}, []string{"confidence"})

	// Comparisons counts comparisons by whether the breakdown matched the price delta
	Comparisons = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_comparisons_total",
		Help: "Total comparisons by breakdown consistency",
	}, []string{"consistent"})

	// IngestedRecords counts ingested records by outcome
	IngestedRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_ingested_records_total",
		Help: "Total ingested property records by outcome",
	}, []string{"outcome"})

	// BatchRetries counts database retries of ingest batches
	BatchRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricing_batch_retries_total",
		Help: "Total retries of ingest batch transactions",
	})
)

// Ingest outcomes
const (
	OutcomeStored   = "stored"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)
