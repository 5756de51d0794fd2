package regression

import (
	"errors"
	"fmt"

	"fundamental/pricing/internal/models"
)

const (
	DefaultAlpha           = 0.1
	DefaultSeed            = 42
	DefaultTestFraction    = 0.2
	DefaultCVFolds         = 5
	DefaultMinTrainingSize = 5
	DefaultTrees           = 100
	DefaultMinSamplesLeaf  = 1
)

// ErrInvalidHyperparameters wraps every rejected training setting
var ErrInvalidHyperparameters = errors.New("invalid hyperparameters")

// DefaultHyperparameters returns the settings used when a caller passes none
func DefaultHyperparameters() models.Hyperparameters {
	return models.Hyperparameters{
		Alpha:           DefaultAlpha,
		Seed:            DefaultSeed,
		TestFraction:    DefaultTestFraction,
		CVFolds:         DefaultCVFolds,
		MinTrainingSize: DefaultMinTrainingSize,
		Trees:           DefaultTrees,
		MinSamplesLeaf:  DefaultMinSamplesLeaf,
	}
}

// resolve fills zero values with defaults and rejects impossible settings.
// Ridge needs an explicit positive alpha. The other kinds ignore alpha and record it as 0.
func resolve(kind models.ModelKind, hp *models.Hyperparameters) (models.Hyperparameters, error) {
	out, err := merge(kind, hp)
	if err != nil {
		return out, err
	}
	if kind != models.ModelKindRidge {
		out.Alpha = 0
	}
	return out, nil
}

func merge(kind models.ModelKind, hp *models.Hyperparameters) (models.Hyperparameters, error) {
	out := DefaultHyperparameters()
	if hp == nil {
		return out, nil
	}
	if hp.Alpha < 0 {
		return out, fmt.Errorf("%w: alpha must not be negative, got %v", ErrInvalidHyperparameters, hp.Alpha)
	}
	if kind == models.ModelKindRidge && hp.Alpha == 0 {
		return out, fmt.Errorf("%w: ridge alpha must be positive, train %s for an unregularized fit",
			ErrInvalidHyperparameters, models.ModelKindLinear)
	}
	if hp.TestFraction < 0 || hp.TestFraction >= 1 {
		return out, fmt.Errorf("%w: test fraction must be in [0, 1), got %v", ErrInvalidHyperparameters, hp.TestFraction)
	}
	if hp.CVFolds < 0 || hp.MinTrainingSize < 0 || hp.Trees < 0 || hp.MaxDepth < 0 || hp.MinSamplesLeaf < 0 {
		return out, fmt.Errorf("%w: integer settings must not be negative", ErrInvalidHyperparameters)
	}

	out.Seed = hp.Seed
	out.MaxDepth = hp.MaxDepth
	if hp.Alpha > 0 {
		out.Alpha = hp.Alpha
	}
	if hp.TestFraction > 0 {
		out.TestFraction = hp.TestFraction
	}
	if hp.CVFolds > 0 {
		out.CVFolds = hp.CVFolds
	}
	if hp.MinTrainingSize > 0 {
		out.MinTrainingSize = hp.MinTrainingSize
	}
	if hp.Trees > 0 {
		out.Trees = hp.Trees
	}
	if hp.MinSamplesLeaf > 0 {
		out.MinSamplesLeaf = hp.MinSamplesLeaf
	}
	return out, nil
}
