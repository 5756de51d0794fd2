package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fundamental/pricing/config"
	"fundamental/pricing/internal/api"
	"fundamental/pricing/internal/database"
	"fundamental/pricing/internal/features"
	"fundamental/pricing/internal/models"
	"fundamental/pricing/internal/processor"
	"fundamental/pricing/internal/queue"
	"fundamental/pricing/internal/registry"
	"fundamental/pricing/internal/scheduler"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	vocab := config.DefaultVocabulary()
	if cfg.Server.VocabularyPath != "" {
		vocab, err = config.LoadVocabulary(cfg.Server.VocabularyPath)
		if err != nil {
			logger.WithError(err).Fatal("Failed to load amenity vocabulary")
		}
	}
	extractor := features.NewExtractor(vocab)

	logger.Infof("Using database at: %s", cfg.Server.DatabasePath)
	db, err := database.NewDatabase(cfg.Server.DatabasePath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}

	logger.Info("Running database migrations...")
	if err := database.MigrateSchema(db); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	reg := registry.New(nil)
	if model, err := database.LatestModel(db); err == nil {
		reg.Swap(model)
		logger.WithFields(logrus.Fields{
			"model_id":   model.ID,
			"model_kind": model.Kind,
			"trained_at": model.TrainedAt,
		}).Info("Loaded latest model snapshot")
	} else if !errors.Is(err, database.ErrNoModel) {
		logger.WithError(err).Error("Failed to load latest model snapshot")
	}

	propertyQueue := queue.NewPropertyQueue(cfg.BatchProcessing.QueueSize, logger)
	batchProcessor := processor.NewBatchProcessor(db, propertyQueue, extractor, cfg, logger)
	batchProcessor.Start()
	defer batchProcessor.Stop()

	if cfg.Retraining.Enabled {
		interval := time.Duration(cfg.Retraining.IntervalMinutes) * time.Minute
		retrainer := scheduler.NewScheduler(db, reg, models.ModelKind(cfg.Pricing.ModelKind), cfg.Hyperparameters(), interval, logger)
		retrainer.Start()
		defer retrainer.Stop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	handler := api.NewHandler(db, reg, batchProcessor, extractor, cfg, logger)
	api.SetupRoutes(router, handler)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Infof("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
}
