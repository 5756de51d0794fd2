package regression

import (
	"fmt"

	"fundamental/pricing/internal/models"
)

// Impact reports the dollars one unit of a feature adds to the predicted price.
// For linear and ridge models this is the coefficient mapped back to raw units.
// Random forests have no global per-unit effect, so the result is marked not applicable;
// use ImpactAt for a local estimate.
func Impact(model *models.RegressionModel, feature string) (models.ImpactResult, error) {
	if !model.Trained() {
		return models.ImpactResult{}, models.ErrModelNotTrained
	}
	j := model.FeatureIndex(feature)
	if j < 0 {
		return models.ImpactResult{}, fmt.Errorf("%w: %q", models.ErrUnknownFeature, feature)
	}
	if !model.Kind.HasCoefficients() {
		return models.ImpactResult{Feature: feature, Method: models.ImpactMethodNotApplicable}, nil
	}
	return models.ImpactResult{
		Feature:        feature,
		DollarsPerUnit: model.Weights[feature] / model.Scaler[j].Std,
		Applicable:     true,
		Method:         models.ImpactMethodCoefficient,
	}, nil
}

// Impacts returns Impact for every feature in the model's order
func Impacts(model *models.RegressionModel) ([]models.ImpactResult, error) {
	if !model.Trained() {
		return nil, models.ErrModelNotTrained
	}
	results := make([]models.ImpactResult, 0, len(model.FeatureOrder))
	for _, feature := range model.FeatureOrder {
		r, err := Impact(model, feature)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// ImpactAt estimates a feature's impact around a baseline property by finite difference
// of raw predictions: +1 unit for numeric features, 0 to 1 for boolean flags.
// It works for every model kind.
func ImpactAt(model *models.RegressionModel, baseline models.PropertyFeatures, feature string) (models.ImpactResult, error) {
	if !model.Trained() {
		return models.ImpactResult{}, models.ErrModelNotTrained
	}
	j := model.FeatureIndex(feature)
	if j < 0 {
		return models.ImpactResult{}, fmt.Errorf("%w: %q", models.ErrUnknownFeature, feature)
	}
	vec := baseline.Vector()
	if err := checkLayout(vec, model); err != nil {
		return models.ImpactResult{}, err
	}

	lo := append([]float64(nil), vec.Values...)
	hi := append([]float64(nil), vec.Values...)
	if models.IsBooleanFeature(feature) {
		lo[j], hi[j] = 0, 1
	} else {
		hi[j] = lo[j] + 1
	}

	return models.ImpactResult{
		Feature:        feature,
		DollarsPerUnit: rawPredict(model, hi) - rawPredict(model, lo),
		Applicable:     true,
		Method:         models.ImpactMethodFiniteDifference,
	}, nil
}
