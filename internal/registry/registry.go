package registry

import (
	"sync/atomic"

	"fundamental/pricing/internal/metrics"
	"fundamental/pricing/internal/models"
)

// Registry holds the model currently used for predictions.
// Models are replaced whole and never mutated after being stored.
type Registry struct {
	current atomic.Pointer[models.RegressionModel]
}

// New creates a registry, optionally seeded with a model
func New(model *models.RegressionModel) *Registry {
	r := &Registry{}
	if model != nil {
		r.Swap(model)
	}
	return r
}

// Current returns the active model, or nil if none has been trained
func (r *Registry) Current() *models.RegressionModel {
	return r.current.Load()
}

// Swap installs a new model and returns the previous one
func (r *Registry) Swap(model *models.RegressionModel) *models.RegressionModel {
	previous := r.current.Swap(model)
	if model != nil {
		metrics.ModelRSquared.Set(model.Metrics.RSquared)
		metrics.ModelTrainingRows.Set(float64(model.TrainingRowCount))
	}
	return previous
}
