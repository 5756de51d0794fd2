package regression

import (
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundamental/pricing/internal/models"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func price(v float64) *float64 {
	return &v
}

// linearCorpus builds n rows priced at 100000 + 150 * sqft. Bedrooms vary
// independently of square footage and do not affect the price.
func linearCorpus(n int) []models.PropertyFeatures {
	rows := make([]models.PropertyFeatures, n)
	for i := range rows {
		sqft := 1000 + 100*float64(i)
		rows[i] = models.PropertyFeatures{
			ReferenceID: fmt.Sprintf("prop-%03d", i),
			TotalSqft:   sqft,
			Bedrooms:    2 + i%3,
			Bathrooms:   2,
			HasGarage:   true,
			LabelPrice:  price(100000 + 150*sqft),
		}
	}
	return rows
}

func trainLinear(t *testing.T, corpus []models.PropertyFeatures) *models.RegressionModel {
	t.Helper()
	model, err := NewTrainer(quietLogger()).Train(corpus, models.ModelKindLinear, nil)
	require.NoError(t, err)
	return model
}

func TestTrainLinearRecoversSqftCoefficient(t *testing.T) {
	model := trainLinear(t, linearCorpus(12))

	assert.True(t, model.Trained())
	assert.Equal(t, models.ModelKindLinear, model.Kind)
	assert.Equal(t, models.FeatureOrder, model.FeatureOrder)
	assert.Equal(t, 12, model.TrainingRowCount)
	assert.True(t, model.Metrics.HeldOut)
	assert.Equal(t, 3, model.Metrics.TestRowCount)
	assert.Equal(t, 9, model.Metrics.TrainRowCount)
	assert.InDelta(t, 1.0, model.Metrics.RSquared, 1e-9)
	assert.InDelta(t, 0.0, model.Metrics.MeanAbsoluteError, 1e-6)
	assert.NotEmpty(t, model.Metrics.CrossValScores)
	assert.NotEmpty(t, model.ID)

	impact, err := Impact(model, models.FeatureTotalSqft)
	require.NoError(t, err)
	assert.True(t, impact.Applicable)
	assert.Equal(t, models.ImpactMethodCoefficient, impact.Method)
	assert.InDelta(t, 150.0, impact.DollarsPerUnit, 1e-6)

	bedrooms, err := Impact(model, models.FeatureBedrooms)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, bedrooms.DollarsPerUnit, 1e-6)

	// Constant columns carry no weight
	garage, err := Impact(model, models.FeatureHasGarage)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, garage.DollarsPerUnit, 1e-9)
}

func TestTrainRidgeApproximatesLinear(t *testing.T) {
	hp := &models.Hyperparameters{Alpha: 0.01}
	model, err := NewTrainer(quietLogger()).Train(linearCorpus(12), models.ModelKindRidge, hp)
	require.NoError(t, err)

	assert.Equal(t, 0.01, model.Hyperparameters.Alpha)
	impact, err := Impact(model, models.FeatureTotalSqft)
	require.NoError(t, err)
	assert.InEpsilon(t, 150.0, impact.DollarsPerUnit, 0.1)
}

func TestTrainDefaultRidgeRecoversSqftPrice(t *testing.T) {
	model, err := NewTrainer(quietLogger()).Train(linearCorpus(12), models.ModelKindRidge, nil)
	require.NoError(t, err)

	impact, err := Impact(model, models.FeatureTotalSqft)
	require.NoError(t, err)
	assert.InEpsilon(t, 150.0, impact.DollarsPerUnit, 0.1)
	assert.Less(t, impact.DollarsPerUnit, 150.0)
}

func TestTrainRecordsAlpha(t *testing.T) {
	trainer := NewTrainer(quietLogger())

	tests := []struct {
		name string
		kind models.ModelKind
		hp   *models.Hyperparameters
		want float64
	}{
		{"ridge default", models.ModelKindRidge, nil, DefaultAlpha},
		{"ridge explicit", models.ModelKindRidge, &models.Hyperparameters{Alpha: 2.5}, 2.5},
		{"linear zero alpha", models.ModelKindLinear, &models.Hyperparameters{Alpha: 0}, 0},
		{"linear ignores alpha", models.ModelKindLinear, &models.Hyperparameters{Alpha: 3}, 0},
		{"linear default", models.ModelKindLinear, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := trainer.Train(linearCorpus(12), tt.kind, tt.hp)
			require.NoError(t, err)
			assert.Equal(t, tt.want, model.Hyperparameters.Alpha)
		})
	}
}

func TestTrainIsDeterministic(t *testing.T) {
	kinds := []models.ModelKind{models.ModelKindLinear, models.ModelKindRidge, models.ModelKindRandomForest}
	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			hp := &models.Hyperparameters{Alpha: 1, Seed: 7, Trees: 10}
			trainer := NewTrainer(quietLogger())

			first, err := trainer.Train(linearCorpus(15), kind, hp)
			require.NoError(t, err)
			second, err := trainer.Train(linearCorpus(15), kind, hp)
			require.NoError(t, err)

			assert.Equal(t, first.Weights, second.Weights)
			assert.Equal(t, first.Intercept, second.Intercept)
			assert.Equal(t, first.Scaler, second.Scaler)
			assert.Equal(t, first.Metrics, second.Metrics)
			assert.Equal(t, first.Forest, second.Forest)
		})
	}
}

func TestTrainIgnoresRowOrder(t *testing.T) {
	corpus := linearCorpus(15)
	reversed := make([]models.PropertyFeatures, len(corpus))
	for i, row := range corpus {
		reversed[len(corpus)-1-i] = row
	}

	trainer := NewTrainer(quietLogger())
	hp := &models.Hyperparameters{Alpha: 0.5}
	a, err := trainer.Train(corpus, models.ModelKindRidge, hp)
	require.NoError(t, err)
	b, err := trainer.Train(reversed, models.ModelKindRidge, hp)
	require.NoError(t, err)

	assert.Equal(t, a.Weights, b.Weights)
	assert.Equal(t, a.Intercept, b.Intercept)
	assert.Equal(t, a.Metrics, b.Metrics)
}

func TestTrainErrors(t *testing.T) {
	trainer := NewTrainer(quietLogger())

	t.Run("empty corpus", func(t *testing.T) {
		_, err := trainer.Train(nil, models.ModelKindLinear, nil)
		var insufficient *models.InsufficientDataError
		require.True(t, errors.As(err, &insufficient))
		assert.Equal(t, 0, insufficient.Have)
		assert.Equal(t, DefaultMinTrainingSize, insufficient.Need)
	})

	t.Run("below minimum", func(t *testing.T) {
		_, err := trainer.Train(linearCorpus(4), models.ModelKindLinear, &models.Hyperparameters{MinTrainingSize: 8})
		var insufficient *models.InsufficientDataError
		require.True(t, errors.As(err, &insufficient))
		assert.Equal(t, 8, insufficient.Need)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := trainer.Train(linearCorpus(12), models.ModelKind("svm"), nil)
		assert.ErrorIs(t, err, models.ErrUnsupportedModelKind)
	})

	t.Run("row without label", func(t *testing.T) {
		corpus := linearCorpus(12)
		corpus[3].LabelPrice = nil
		_, err := trainer.Train(corpus, models.ModelKindLinear, nil)
		var invalid *models.InvalidFeatureValueError
		require.True(t, errors.As(err, &invalid))
		assert.Contains(t, err.Error(), "prop-003")
	})

	t.Run("row without square footage", func(t *testing.T) {
		corpus := linearCorpus(12)
		corpus[0].TotalSqft = 0
		_, err := trainer.Train(corpus, models.ModelKindLinear, nil)
		var invalid *models.InvalidFeatureValueError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, models.FeatureTotalSqft, invalid.Field)
	})

	t.Run("invalid hyperparameters", func(t *testing.T) {
		_, err := trainer.Train(linearCorpus(12), models.ModelKindRidge, &models.Hyperparameters{Alpha: -1})
		assert.ErrorIs(t, err, ErrInvalidHyperparameters)
	})

	t.Run("ridge with zero alpha", func(t *testing.T) {
		_, err := trainer.Train(linearCorpus(12), models.ModelKindRidge, &models.Hyperparameters{Alpha: 0, Seed: 3})
		assert.ErrorIs(t, err, ErrInvalidHyperparameters)
		assert.Contains(t, err.Error(), "ridge alpha must be positive")
	})
}

func TestTrainSmallCorpusHasNoHeldOutSet(t *testing.T) {
	model := trainLinear(t, linearCorpus(5))

	assert.False(t, model.Metrics.HeldOut)
	assert.Equal(t, 0, model.Metrics.TestRowCount)
	assert.Equal(t, 5, model.Metrics.TrainRowCount)
	assert.Equal(t, 2, len(model.Metrics.CrossValScores))
}

func TestTrainUsesInjectedClock(t *testing.T) {
	trainer := NewTrainer(quietLogger())
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	trainer.now = func() time.Time { return fixed }

	model, err := trainer.Train(linearCorpus(10), models.ModelKindLinear, nil)
	require.NoError(t, err)
	assert.Equal(t, fixed, model.TrainedAt)
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		fraction float64
		wantTest int
	}{
		{"twelve rows", 12, 0.2, 3},
		{"ten rows", 10, 0.2, 2},
		{"too few test rows", 5, 0.2, 0},
		{"too few train rows", 4, 0.6, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			train, test := split(tt.n, tt.fraction, 42)
			assert.Len(t, test, tt.wantTest)
			assert.Len(t, train, tt.n-tt.wantTest)

			seen := make(map[int]bool)
			for _, i := range append(append([]int{}, train...), test...) {
				seen[i] = true
			}
			assert.Len(t, seen, tt.n)
		})
	}
}
