package regression

import (
	"math"

	"fundamental/pricing/internal/features"
	"fundamental/pricing/internal/models"
)

// Confidence thresholds
const (
	highConfidenceR2     = 0.7
	highConfidenceRows   = 30
	mediumConfidenceR2   = 0.4
	mediumConfidenceRows = 10
)

// Predict estimates the price of one property. Negative raw predictions are
// clamped to zero; RawPrice keeps the unclamped value.
func Predict(f models.PropertyFeatures, model *models.RegressionModel) (*models.Prediction, error) {
	if !model.Trained() {
		return nil, models.ErrModelNotTrained
	}
	if err := features.Validate(f); err != nil {
		return nil, err
	}

	prediction, err := PredictVector(f.Vector(), model)
	if err != nil {
		return nil, err
	}
	if f.TotalSqft > 0 {
		prediction.PricePerSqft = prediction.PredictedPrice / f.TotalSqft
	}
	return prediction, nil
}

// PredictVector estimates a price from a vector laid out in the model's feature order
func PredictVector(vec models.FeatureVector, model *models.RegressionModel) (*models.Prediction, error) {
	if !model.Trained() {
		return nil, models.ErrModelNotTrained
	}
	if err := checkLayout(vec, model); err != nil {
		return nil, err
	}

	raw := rawPredict(model, vec.Values)
	return &models.Prediction{
		PredictedPrice: math.Max(raw, 0),
		RawPrice:       raw,
		Confidence:     ClassifyConfidence(model),
		HeldOut:        model.Metrics.HeldOut,
	}, nil
}

// ClassifyConfidence grades a model by its R² and training size.
// Models scored on their own training rows drop one level.
func ClassifyConfidence(model *models.RegressionModel) models.Confidence {
	if !model.Trained() {
		return models.ConfidenceLow
	}
	r2 := model.Metrics.RSquared
	rows := model.TrainingRowCount

	var c models.Confidence
	switch {
	case r2 >= highConfidenceR2 && rows >= highConfidenceRows:
		c = models.ConfidenceHigh
	case r2 >= mediumConfidenceR2 || rows >= mediumConfidenceRows:
		c = models.ConfidenceMedium
	default:
		c = models.ConfidenceLow
	}

	if !model.Metrics.HeldOut {
		switch c {
		case models.ConfidenceHigh:
			c = models.ConfidenceMedium
		case models.ConfidenceMedium:
			c = models.ConfidenceLow
		}
	}
	return c
}

func checkLayout(vec models.FeatureVector, model *models.RegressionModel) error {
	mismatch := &models.FeatureOrderMismatchError{Expected: model.FeatureOrder, Got: vec.Names}
	if len(vec.Names) != len(model.FeatureOrder) || len(vec.Values) != len(vec.Names) {
		return mismatch
	}
	for i, name := range vec.Names {
		if name != model.FeatureOrder[i] || model.Scaler[i].Feature != name {
			return mismatch
		}
	}
	return nil
}

// rawPredict evaluates the fitted estimator on an unscaled row
func rawPredict(model *models.RegressionModel, values []float64) float64 {
	z := standardize(model.Scaler, values)
	if model.Kind == models.ModelKindRandomForest {
		return predictForest(model.Forest, z)
	}
	y := model.Intercept
	for j, name := range model.FeatureOrder {
		y += model.Weights[name] * z[j]
	}
	return y
}
