package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fundamental/pricing/config"
	"fundamental/pricing/internal/comparison"
	"fundamental/pricing/internal/comps"
	"fundamental/pricing/internal/database"
	"fundamental/pricing/internal/features"
	"fundamental/pricing/internal/metrics"
	"fundamental/pricing/internal/models"
	"fundamental/pricing/internal/processor"
	"fundamental/pricing/internal/registry"
	"fundamental/pricing/internal/regression"
)

// Handler serves the pricing API on top of the stored corpus and the active model
type Handler struct {
	db         *gorm.DB
	logger     *logrus.Logger
	config     *config.Config
	extractor  *features.Extractor
	registry   *registry.Registry
	processor  *processor.BatchProcessor
	trainer    *regression.Trainer
	comparator *comparison.Comparator
}

// CompareRequest names two properties either inline or by stored reference id
type CompareRequest struct {
	PropertyA   *models.PropertyRecord `json:"property_a"`
	PropertyB   *models.PropertyRecord `json:"property_b"`
	PropertyAID string                 `json:"property_a_id"`
	PropertyBID string                 `json:"property_b_id"`
}

// SqftImpactQuery restricts the comps fallback to an area
type SqftImpactQuery struct {
	Lat      *float64 `form:"lat"`
	Lng      *float64 `form:"lng"`
	RadiusKm float64  `form:"radius_km"`
}

func NewHandler(db *gorm.DB, reg *registry.Registry, proc *processor.BatchProcessor, extractor *features.Extractor, cfg *config.Config, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if extractor == nil {
		extractor = features.NewExtractor(nil)
	}

	return &Handler{
		db:         db,
		logger:     logger,
		config:     cfg,
		extractor:  extractor,
		registry:   reg,
		processor:  proc,
		trainer:    regression.NewTrainer(logger),
		comparator: comparison.NewComparator(logger, cfg.Pricing.ConsistencyTolerance),
	}
}

// IngestProperties queues a batch of property records for extraction and storage
func (h *Handler) IngestProperties(c *gin.Context) {
	var records []models.PropertyRecord
	if err := c.ShouldBindJSON(&records); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.processor.Submit(records); err != nil {
		h.respondError(c, err, "Failed to queue properties")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": len(records)})
}

// GetProperty returns the stored features of one property
func (h *Handler) GetProperty(c *gin.Context) {
	property, err := database.GetProperty(h.db, c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to get property")
		return
	}
	c.JSON(http.StatusOK, property)
}

// Predict estimates the price of the property record in the body
func (h *Handler) Predict(c *gin.Context) {
	var record models.PropertyRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	f, err := h.extractor.Extract(record)
	if err != nil {
		h.respondError(c, err, "Invalid property")
		return
	}
	prediction, err := regression.Predict(f, h.registry.Current())
	if err != nil {
		h.respondError(c, err, "Failed to predict price")
		return
	}
	metrics.Predictions.WithLabelValues(string(prediction.Confidence)).Inc()
	c.JSON(http.StatusOK, prediction)
}

// GetImpact returns the dollar impact of one feature. With ?baseline=<reference id>
// the impact is probed around that stored property, which also works for forests.
func (h *Handler) GetImpact(c *gin.Context) {
	model := h.registry.Current()
	feature := c.Param("feature")

	var impact models.ImpactResult
	var err error
	if baselineID := c.Query("baseline"); baselineID != "" {
		var baseline *models.PropertyFeatures
		baseline, err = database.GetProperty(h.db, baselineID)
		if err == nil {
			impact, err = regression.ImpactAt(model, *baseline, feature)
		}
	} else {
		impact, err = regression.Impact(model, feature)
	}
	if err != nil {
		h.respondError(c, err, "Failed to calculate impact")
		return
	}
	c.JSON(http.StatusOK, impact)
}

// GetSqftImpact returns the value of additional square footage
func (h *Handler) GetSqftImpact(c *gin.Context) {
	var query SqftImpactQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	var area *comps.Area
	if query.Lat != nil && query.Lng != nil {
		radius := query.RadiusKm
		if radius <= 0 {
			radius = 5
		}
		area = &comps.Area{Center: orb.Point{*query.Lng, *query.Lat}, RadiusKm: radius}
	}

	model := h.registry.Current()
	var corpus []models.PropertyFeatures
	if !model.Trained() || !model.Kind.HasCoefficients() {
		var err error
		corpus, err = database.LoadTrainingCorpus(h.db)
		if err != nil {
			h.respondError(c, err, "Failed to load comparable sales")
			return
		}
	}

	impact, err := comps.EstimateSqftImpact(model, corpus, area)
	if err != nil {
		h.respondError(c, err, "Failed to calculate square footage impact")
		return
	}
	c.JSON(http.StatusOK, impact)
}

// Compare explains the price difference between two properties
func (h *Handler) Compare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	a, err := h.resolveProperty(req.PropertyA, req.PropertyAID)
	if err != nil {
		h.respondError(c, err, "Invalid property A")
		return
	}
	b, err := h.resolveProperty(req.PropertyB, req.PropertyBID)
	if err != nil {
		h.respondError(c, err, "Invalid property B")
		return
	}

	result, err := h.comparator.Compare(*a, *b, h.registry.Current())
	if err != nil {
		h.respondError(c, err, "Comparison failed")
		return
	}
	metrics.Comparisons.WithLabelValues(strconv.FormatBool(result.Consistent)).Inc()
	c.JSON(http.StatusOK, result)
}

var errMissingProperty = errors.New("property or property id required")

func (h *Handler) resolveProperty(record *models.PropertyRecord, id string) (*models.PropertyFeatures, error) {
	if record != nil {
		f, err := h.extractor.Extract(*record)
		if err != nil {
			return nil, err
		}
		return &f, nil
	}
	if id == "" {
		return nil, errMissingProperty
	}
	return database.GetProperty(h.db, id)
}
