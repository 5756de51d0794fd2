package regression

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fundamental/pricing/internal/features"
	"fundamental/pricing/internal/models"
)

// Trainer fits RegressionModels from labeled corpora. It holds no model state;
// every call to Train returns a new model.
type Trainer struct {
	logger *logrus.Logger
	now    func() time.Time
}

// NewTrainer creates a new trainer instance
func NewTrainer(logger *logrus.Logger) *Trainer {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Trainer{logger: logger, now: time.Now}
}

// estimator is a fitted model in standardized feature space
type estimator interface {
	predict(z []float64) float64
}

type forestFit struct {
	forest *models.Forest
}

func (f forestFit) predict(z []float64) float64 {
	return predictForest(f.forest, z)
}

// Train fits a model of the given kind. A nil hp selects DefaultHyperparameters.
func (t *Trainer) Train(corpus []models.PropertyFeatures, kind models.ModelKind, hp *models.Hyperparameters) (*models.RegressionModel, error) {
	if _, err := models.ParseModelKind(string(kind)); err != nil {
		return nil, err
	}
	params, err := resolve(kind, hp)
	if err != nil {
		return nil, err
	}
	if len(corpus) == 0 || len(corpus) < params.MinTrainingSize {
		return nil, &models.InsufficientDataError{Have: len(corpus), Need: params.MinTrainingSize}
	}
	for i, row := range corpus {
		if err := features.ValidateTrainable(row); err != nil {
			return nil, fmt.Errorf("training row %d (%s): %w", i, row.ReferenceID, err)
		}
	}

	rows := canonicalOrder(corpus)
	n := len(rows)
	order := append([]string(nil), models.FeatureOrder...)

	x := make([][]float64, n)
	y := make([]float64, n)
	for i, row := range rows {
		x[i] = row.Vector().Values
		y[i] = *row.LabelPrice
	}

	scaler := fitScaler(order, x)
	z := make([][]float64, n)
	for i, row := range x {
		z[i] = standardize(scaler, row)
	}

	trainIdx, testIdx := split(n, params.TestFraction, params.Seed)
	heldOut := len(testIdx) > 0

	zTrain, yTrain := subset(z, y, trainIdx)
	fit, weights, err := fitEstimator(kind, params, zTrain, yTrain, params.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to fit %s model: %w", kind, err)
	}

	cvScores, err := crossValidate(kind, params, zTrain, yTrain)
	if err != nil {
		return nil, fmt.Errorf("failed to cross-validate %s model: %w", kind, err)
	}

	evalZ, evalY := zTrain, yTrain
	if heldOut {
		evalZ, evalY = subset(z, y, testIdx)
	}
	predicted := make([]float64, len(evalZ))
	for i, row := range evalZ {
		predicted[i] = fit.predict(row)
	}

	model := &models.RegressionModel{
		ID:           uuid.NewString(),
		Kind:         kind,
		FeatureOrder: order,
		Scaler:       scaler,
		Weights:      make(map[string]float64, len(order)),
		Metrics: models.Metrics{
			RSquared:             rSquared(evalY, predicted),
			MeanAbsoluteError:    meanAbsoluteError(evalY, predicted),
			RootMeanSquaredError: rootMeanSquaredError(evalY, predicted),
			CrossValScores:       cvScores,
			HeldOut:              heldOut,
			TrainRowCount:        len(trainIdx),
			TestRowCount:         len(testIdx),
		},
		Hyperparameters:  params,
		TrainedAt:        t.now().UTC(),
		TrainingRowCount: n,
	}
	for j, name := range order {
		model.Weights[name] = weights[j]
	}
	switch f := fit.(type) {
	case linearFit:
		model.Intercept = f.intercept
	case forestFit:
		model.Forest = f.forest
	}

	entry := t.logger.WithFields(logrus.Fields{
		"model_id":   model.ID,
		"model_kind": kind,
		"rows":       n,
		"r_squared":  model.Metrics.RSquared,
		"mae":        model.Metrics.MeanAbsoluteError,
		"held_out":   heldOut,
	})
	if heldOut {
		entry.Info("Trained pricing model")
	} else {
		entry.Warn("Trained pricing model without a held-out split; metrics are computed on training rows")
	}
	return model, nil
}

// fitEstimator fits one estimator and returns its per-column weights:
// coefficients for linear kinds, importances for the forest
func fitEstimator(kind models.ModelKind, params models.Hyperparameters, x [][]float64, y []float64, seed int64) (estimator, []float64, error) {
	switch kind {
	case models.ModelKindLinear, models.ModelKindRidge:
		alpha := 0.0
		if kind == models.ModelKindRidge {
			alpha = params.Alpha
		}
		fit, err := fitLinear(x, y, alpha)
		if err != nil {
			return nil, nil, err
		}
		return fit, fit.coef, nil
	case models.ModelKindRandomForest:
		forest, importances := fitForest(x, y, forestParams{
			trees:          params.Trees,
			maxDepth:       params.MaxDepth,
			minSamplesLeaf: params.MinSamplesLeaf,
			seed:           seed,
		})
		return forestFit{forest: forest}, importances, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", models.ErrUnsupportedModelKind, kind)
}

// crossValidate scores R² over k consecutive folds of the training split
func crossValidate(kind models.ModelKind, params models.Hyperparameters, x [][]float64, y []float64) ([]float64, error) {
	k := foldCount(len(x), params.CVFolds)
	if k == 0 {
		return []float64{}, nil
	}

	scores := make([]float64, 0, k)
	for f, fold := range kFolds(len(x), k) {
		inFold := make(map[int]bool, len(fold))
		for _, i := range fold {
			inFold[i] = true
		}
		var fitX, testX [][]float64
		var fitY, testY []float64
		for i := range x {
			if inFold[i] {
				testX = append(testX, x[i])
				testY = append(testY, y[i])
			} else {
				fitX = append(fitX, x[i])
				fitY = append(fitY, y[i])
			}
		}

		est, _, err := fitEstimator(kind, params, fitX, fitY, params.Seed+int64(f)+1)
		if err != nil {
			return nil, err
		}
		predicted := make([]float64, len(testX))
		for i, row := range testX {
			predicted[i] = est.predict(row)
		}
		scores = append(scores, rSquared(testY, predicted))
	}
	return scores, nil
}

// split shuffles row indices with the seed and holds out ceil(n*fraction) of them.
// A held-out set needs at least two rows on each side; otherwise every row is used
// for training and the test set is empty.
func split(n int, fraction float64, seed int64) (train, test []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(math.Ceil(float64(n) * fraction))
	if nTest < 2 || n-nTest < 2 {
		return perm, nil
	}
	return perm[nTest:], perm[:nTest]
}

func subset(x [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	sx := make([][]float64, len(idx))
	sy := make([]float64, len(idx))
	for i, r := range idx {
		sx[i] = x[r]
		sy[i] = y[r]
	}
	return sx, sy
}

// canonicalOrder sorts a copy of the corpus by content so that the caller's row order
// has no influence on the split or the fit
func canonicalOrder(corpus []models.PropertyFeatures) []models.PropertyFeatures {
	rows := make([]models.PropertyFeatures, len(corpus))
	copy(rows, corpus)
	sort.SliceStable(rows, func(a, b int) bool {
		if rows[a].ReferenceID != rows[b].ReferenceID {
			return rows[a].ReferenceID < rows[b].ReferenceID
		}
		va, vb := rows[a].Vector().Values, rows[b].Vector().Values
		for j := range va {
			if va[j] != vb[j] {
				return va[j] < vb[j]
			}
		}
		return *rows[a].LabelPrice < *rows[b].LabelPrice
	})
	return rows
}
