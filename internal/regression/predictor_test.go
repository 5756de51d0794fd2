package regression

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundamental/pricing/internal/models"
)

func TestPredict(t *testing.T) {
	model := trainLinear(t, linearCorpus(12))

	prediction, err := Predict(models.PropertyFeatures{
		ReferenceID: "query",
		TotalSqft:   1500,
		Bedrooms:    3,
		Bathrooms:   2,
		HasGarage:   true,
	}, model)
	require.NoError(t, err)

	assert.InDelta(t, 325000.0, prediction.PredictedPrice, 1e-3)
	assert.InDelta(t, 325000.0, prediction.RawPrice, 1e-3)
	assert.InDelta(t, 325000.0/1500, prediction.PricePerSqft, 1e-6)
	assert.Equal(t, models.ConfidenceMedium, prediction.Confidence)
	assert.True(t, prediction.HeldOut)
}

func TestPredictClampsNegativePrices(t *testing.T) {
	corpus := linearCorpus(12)
	for i := range corpus {
		corpus[i].LabelPrice = price(150*corpus[i].TotalSqft - 100000)
	}
	model := trainLinear(t, corpus)

	prediction, err := Predict(models.PropertyFeatures{ReferenceID: "tiny", TotalSqft: 100, Bedrooms: 3, Bathrooms: 2, HasGarage: true}, model)
	require.NoError(t, err)
	assert.Equal(t, 0.0, prediction.PredictedPrice)
	assert.InDelta(t, -85000.0, prediction.RawPrice, 1e-3)
}

func TestPredictZeroSqftHasNoPricePerSqft(t *testing.T) {
	model := trainLinear(t, linearCorpus(12))

	prediction, err := Predict(models.PropertyFeatures{ReferenceID: "empty"}, model)
	require.NoError(t, err)
	assert.Equal(t, 0.0, prediction.PricePerSqft)
}

func TestPredictErrors(t *testing.T) {
	query := models.PropertyFeatures{ReferenceID: "query", TotalSqft: 1200}

	t.Run("nil model", func(t *testing.T) {
		_, err := Predict(query, nil)
		assert.ErrorIs(t, err, models.ErrModelNotTrained)
	})

	t.Run("empty model", func(t *testing.T) {
		_, err := Predict(query, &models.RegressionModel{})
		assert.ErrorIs(t, err, models.ErrModelNotTrained)
	})

	t.Run("negative feature", func(t *testing.T) {
		model := trainLinear(t, linearCorpus(12))
		_, err := Predict(models.PropertyFeatures{ReferenceID: "bad", TotalSqft: -1}, model)
		var invalid *models.InvalidFeatureValueError
		assert.True(t, errors.As(err, &invalid))
	})
}

func TestPredictVectorRejectsForeignLayout(t *testing.T) {
	model := trainLinear(t, linearCorpus(12))
	vec := models.PropertyFeatures{ReferenceID: "query", TotalSqft: 1200}.Vector()

	swapped := models.FeatureVector{
		Names:  append([]string(nil), vec.Names...),
		Values: append([]float64(nil), vec.Values...),
	}
	swapped.Names[0], swapped.Names[1] = swapped.Names[1], swapped.Names[0]

	tests := []struct {
		name string
		vec  models.FeatureVector
	}{
		{"swapped columns", swapped},
		{"missing column", models.FeatureVector{Names: vec.Names[:5], Values: vec.Values[:5]}},
		{"value count", models.FeatureVector{Names: vec.Names, Values: vec.Values[:3]}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PredictVector(tt.vec, model)
			var mismatch *models.FeatureOrderMismatchError
			require.True(t, errors.As(err, &mismatch))
			assert.Equal(t, models.FeatureOrder, mismatch.Expected)
		})
	}

	prediction, err := PredictVector(vec, model)
	require.NoError(t, err)
	assert.InDelta(t, 280000.0, prediction.PredictedPrice, 1e-3)
}

func TestClassifyConfidence(t *testing.T) {
	base := trainLinear(t, linearCorpus(12))

	tests := []struct {
		name    string
		r2      float64
		rows    int
		heldOut bool
		want    models.Confidence
	}{
		{"high", 0.9, 50, true, models.ConfidenceHigh},
		{"good fit but few rows", 0.9, 20, true, models.ConfidenceMedium},
		{"many rows poor fit", 0.1, 40, true, models.ConfidenceMedium},
		{"moderate fit", 0.5, 6, true, models.ConfidenceMedium},
		{"low", 0.2, 6, true, models.ConfidenceLow},
		{"high without held-out", 0.9, 50, false, models.ConfidenceMedium},
		{"medium without held-out", 0.5, 6, false, models.ConfidenceLow},
		{"low without held-out", 0.2, 6, false, models.ConfidenceLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := *base
			model.Metrics.RSquared = tt.r2
			model.Metrics.HeldOut = tt.heldOut
			model.TrainingRowCount = tt.rows
			assert.Equal(t, tt.want, ClassifyConfidence(&model))
		})
	}

	assert.Equal(t, models.ConfidenceLow, ClassifyConfidence(nil))
}

func TestConfidenceDoesNotDropWithMoreData(t *testing.T) {
	small := trainLinear(t, linearCorpus(12))
	large := trainLinear(t, linearCorpus(40))

	require.GreaterOrEqual(t, large.Metrics.RSquared, small.Metrics.RSquared-1e-9)
	assert.GreaterOrEqual(t, ClassifyConfidence(large).Rank(), ClassifyConfidence(small).Rank())
	assert.Equal(t, models.ConfidenceHigh, ClassifyConfidence(large))
}
