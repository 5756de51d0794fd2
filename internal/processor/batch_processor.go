package processor

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fundamental/pricing/config"
	"fundamental/pricing/internal/database"
	"fundamental/pricing/internal/features"
	"fundamental/pricing/internal/metrics"
	"fundamental/pricing/internal/models"
	"fundamental/pricing/internal/queue"
)

var (
	ErrEmptyBatch    = errors.New("empty batch")
	ErrBatchTooLarge = errors.New("batch too large")
)

// Transactor runs a function inside a database transaction. *gorm.DB satisfies it.
type Transactor interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// BatchProcessor extracts features from queued property records and stores them
type BatchProcessor struct {
	db        Transactor
	extractor *features.Extractor
	logger    *logrus.Logger
	config    *config.Config
	queue     *queue.PropertyQueue
	sleep     func(time.Duration)
}

// NewBatchProcessor creates a new batch processor instance
func NewBatchProcessor(db Transactor, queue *queue.PropertyQueue, extractor *features.Extractor, config *config.Config, logger *logrus.Logger) *BatchProcessor {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if extractor == nil {
		extractor = features.NewExtractor(nil)
	}
	return &BatchProcessor{
		db:        db,
		extractor: extractor,
		queue:     queue,
		config:    config,
		logger:    logger,
		sleep:     time.Sleep,
	}
}

// Start subscribes to the queue and begins processing batches
func (p *BatchProcessor) Start() {
	p.queue.Subscribe(func(batch []models.PropertyRecord) error {
		_, err := p.ProcessBatch(batch)
		return err
	})
	p.queue.Start()
}

// Stop closes the queue and waits for the batch in progress
func (p *BatchProcessor) Stop() {
	if err := p.queue.Close(); err != nil {
		p.logger.WithError(err).Error("Failed to close property queue")
	}
}

// ProcessBatch extracts features from every record and upserts the valid ones.
// Invalid records are logged and skipped. It returns the number of stored rows.
func (p *BatchProcessor) ProcessBatch(batch []models.PropertyRecord) (int, error) {
	rows := make([]models.PropertyFeatures, 0, len(batch))
	for _, record := range batch {
		f, err := p.extractor.Extract(record)
		if err != nil {
			metrics.IngestedRecords.WithLabelValues(metrics.OutcomeRejected).Inc()
			p.logger.WithError(err).WithField("reference_id", record.ReferenceID).Warn("Skipping invalid property record")
			continue
		}
		rows = append(rows, f)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	stored := 0
	for start := 0; start < len(rows); start += p.chunkSize() {
		end := min(start+p.chunkSize(), len(rows))
		if err := p.upsertWithRetry(rows[start:end]); err != nil {
			metrics.IngestedRecords.WithLabelValues(metrics.OutcomeFailed).Add(float64(len(rows) - stored))
			return stored, err
		}
		stored = end
	}
	metrics.IngestedRecords.WithLabelValues(metrics.OutcomeStored).Add(float64(stored))
	return stored, nil
}

func (p *BatchProcessor) chunkSize() int {
	if p.config.BatchProcessing.MaxBatchSize > 0 {
		return p.config.BatchProcessing.MaxBatchSize
	}
	return 100
}

// upsertWithRetry stores one chunk in a transaction with retry logic
func (p *BatchProcessor) upsertWithRetry(rows []models.PropertyFeatures) error {
	maxRetries := p.config.BatchProcessing.MaxRetries
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			metrics.BatchRetries.Inc()
			p.logger.Infof("Retrying batch processing, attempt %d of %d", attempt, maxRetries)
			p.sleep(time.Duration(p.config.BatchProcessing.RetryDelay) * time.Second)
		}

		err = p.db.Transaction(func(tx *gorm.DB) error {
			if err := database.UpsertProperties(tx, rows); err != nil {
				return fmt.Errorf("failed to upsert properties batch: %w", err)
			}
			return nil
		})

		if err == nil {
			p.logger.Infof("Successfully processed batch of %d properties", len(rows))
			return nil
		}

		p.logger.Errorf("Batch processing failed: %v", err)
	}

	return fmt.Errorf("failed to process batch after %d attempts: %w", maxRetries+1, err)
}

// Submit validates the size of an ingest request and queues it
func (p *BatchProcessor) Submit(records []models.PropertyRecord) error {
	if len(records) == 0 {
		return ErrEmptyBatch
	}
	if limit := p.config.BatchProcessing.MaxBatchSize; limit > 0 && len(records) > limit {
		return fmt.Errorf("%w: %d records, limit is %d", ErrBatchTooLarge, len(records), limit)
	}
	return p.queue.Push(records)
}
