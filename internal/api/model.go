package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fundamental/pricing/internal/database"
	"fundamental/pricing/internal/models"
	"fundamental/pricing/internal/regression"
	"fundamental/pricing/internal/scheduler"
)

// TrainRequest overrides the configured training settings
type TrainRequest struct {
	ModelKind string   `json:"model_kind"`
	Alpha     *float64 `json:"alpha"`
	Seed      *int64   `json:"seed"`
}

// ModelSummary describes a trained model without its tree structure
type ModelSummary struct {
	ID               string                 `json:"id"`
	Kind             models.ModelKind       `json:"model_kind"`
	FeatureOrder     []string               `json:"feature_order"`
	Weights          map[string]float64     `json:"coefficients_or_importances"`
	Intercept        float64                `json:"intercept"`
	Metrics          models.Metrics         `json:"metrics"`
	Hyperparameters  models.Hyperparameters `json:"hyperparameters"`
	Confidence       models.Confidence      `json:"confidence"`
	TrainedAt        time.Time              `json:"trained_at"`
	TrainingRowCount int                    `json:"training_row_count"`
}

func summarizeModel(m *models.RegressionModel) ModelSummary {
	return ModelSummary{
		ID:               m.ID,
		Kind:             m.Kind,
		FeatureOrder:     m.FeatureOrder,
		Weights:          m.Weights,
		Intercept:        m.Intercept,
		Metrics:          m.Metrics,
		Hyperparameters:  m.Hyperparameters,
		Confidence:       regression.ClassifyConfidence(m),
		TrainedAt:        m.TrainedAt,
		TrainingRowCount: m.TrainingRowCount,
	}
}

// TrainModel trains on the stored corpus, saves a snapshot and makes it the active model
func (h *Handler) TrainModel(c *gin.Context) {
	var req TrainRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}

	kindName := req.ModelKind
	if kindName == "" {
		kindName = h.config.Pricing.ModelKind
	}
	kind, err := models.ParseModelKind(kindName)
	if err != nil {
		h.respondError(c, err, "Invalid model kind")
		return
	}
	params := h.config.Hyperparameters()
	if req.Alpha != nil {
		params.Alpha = *req.Alpha
	}
	if req.Seed != nil {
		params.Seed = *req.Seed
	}

	corpus, err := database.LoadTrainingCorpus(h.db)
	if err != nil {
		h.respondError(c, err, "Failed to load training corpus")
		return
	}
	model, err := scheduler.Retrain(h.trainer, corpus, kind, params)
	if err != nil {
		h.respondError(c, err, "Training failed")
		return
	}
	if err := database.SaveModel(h.db, model); err != nil {
		h.respondError(c, err, "Failed to save model")
		return
	}
	h.registry.Swap(model)

	c.JSON(http.StatusCreated, summarizeModel(model))
}

// GetModel returns a summary of the active model
func (h *Handler) GetModel(c *gin.Context) {
	model := h.registry.Current()
	if !model.Trained() {
		h.respondError(c, models.ErrModelNotTrained, "No trained model")
		return
	}
	c.JSON(http.StatusOK, summarizeModel(model))
}

// GetImpacts returns the impact of every feature of the active model
func (h *Handler) GetImpacts(c *gin.Context) {
	impacts, err := regression.Impacts(h.registry.Current())
	if err != nil {
		h.respondError(c, err, "Failed to calculate impacts")
		return
	}
	c.JSON(http.StatusOK, impacts)
}
