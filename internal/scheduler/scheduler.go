package scheduler

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fundamental/pricing/internal/database"
	"fundamental/pricing/internal/metrics"
	"fundamental/pricing/internal/models"
	"fundamental/pricing/internal/registry"
	"fundamental/pricing/internal/regression"
)

// ErrNoNewData is returned by RunOnce when the corpus has not changed since the last run
var ErrNoNewData = errors.New("no new training data")

// Scheduler periodically retrains the pricing model from the stored corpus
type Scheduler struct {
	db       *gorm.DB
	trainer  *regression.Trainer
	registry *registry.Registry
	logger   *logrus.Logger
	kind     models.ModelKind
	params   models.Hyperparameters
	interval time.Duration
	stopChan chan struct{}
	wg       sync.WaitGroup
	jobMutex sync.Mutex // Ensures sequential job execution
	trained  *database.CorpusStamp
}

// NewScheduler creates a new scheduler
func NewScheduler(db *gorm.DB, reg *registry.Registry, kind models.ModelKind, params models.Hyperparameters, interval time.Duration, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Scheduler{
		db:       db,
		trainer:  regression.NewTrainer(logger),
		registry: reg,
		logger:   logger,
		kind:     kind,
		params:   params,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduled retraining
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.runScheduler()
}

// runScheduler runs a startup job and then one job per tick
func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	s.runJob("startup")

	if s.interval <= 0 {
		s.logger.WithField("interval", s.interval).Error("Periodic retraining disabled, interval must be positive")
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.runJob("scheduled")
		}
	}
}

func (s *Scheduler) runJob(trigger string) {
	entry := s.logger.WithFields(logrus.Fields{
		"trigger":    trigger,
		"model_kind": s.kind,
	})

	model, err := s.RunOnce()
	var insufficient *models.InsufficientDataError
	switch {
	case errors.Is(err, ErrNoNewData):
		entry.Debug("Skipping retraining, corpus unchanged")
	case errors.As(err, &insufficient):
		entry.WithFields(logrus.Fields{
			"have": insufficient.Have,
			"need": insufficient.Need,
		}).Info("Not enough labeled properties to train yet")
	case err != nil:
		entry.WithError(err).Error("Retraining job failed")
	default:
		entry.WithField("model_id", model.ID).Info("Retraining job completed successfully")
	}
}

// RunOnce retrains from the stored corpus, saves a snapshot and installs the new model.
// It returns ErrNoNewData when no training row was added or re-ingested since the last
// successful run.
func (s *Scheduler) RunOnce() (*models.RegressionModel, error) {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	stamp, err := database.TrainingCorpusStamp(s.db)
	if err != nil {
		return nil, err
	}
	if s.trained != nil && s.trained.Equal(stamp) {
		return nil, ErrNoNewData
	}

	corpus, err := database.LoadTrainingCorpus(s.db)
	if err != nil {
		return nil, err
	}

	model, err := Retrain(s.trainer, corpus, s.kind, s.params)
	if err != nil {
		return nil, err
	}
	if err := database.SaveModel(s.db, model); err != nil {
		return nil, err
	}
	s.registry.Swap(model)
	s.trained = &stamp
	return model, nil
}

// Retrain trains one model and records training metrics
func Retrain(trainer *regression.Trainer, corpus []models.PropertyFeatures, kind models.ModelKind, params models.Hyperparameters) (*models.RegressionModel, error) {
	start := time.Now()
	model, err := trainer.Train(corpus, kind, &params)
	metrics.TrainingDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.TrainingRuns.WithLabelValues(string(kind), "error").Inc()
		return nil, fmt.Errorf("failed to train %s model: %w", kind, err)
	}
	metrics.TrainingRuns.WithLabelValues(string(kind), "success").Inc()
	return model, nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
