package models

import (
	"fmt"
	"time"
)

// ModelKind selects the estimator fitted by the trainer
type ModelKind string

const (
	ModelKindLinear       ModelKind = "linear"
	ModelKindRidge        ModelKind = "ridge"
	ModelKindRandomForest ModelKind = "random_forest"
)

// ParseModelKind validates a model kind name
func ParseModelKind(s string) (ModelKind, error) {
	switch k := ModelKind(s); k {
	case ModelKindLinear, ModelKindRidge, ModelKindRandomForest:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedModelKind, s)
}

// HasCoefficients reports whether the kind produces per-feature coefficients
// that can be read as dollars per unit
func (k ModelKind) HasCoefficients() bool {
	return k == ModelKindLinear || k == ModelKindRidge
}

// Hyperparameters controls a training run
type Hyperparameters struct {
	Alpha           float64 `json:"alpha"`
	Seed            int64   `json:"seed"`
	TestFraction    float64 `json:"test_fraction"`
	CVFolds         int     `json:"cv_folds"`
	MinTrainingSize int     `json:"min_training_size"`
	Trees           int     `json:"trees,omitempty"`
	MaxDepth        int     `json:"max_depth,omitempty"`
	MinSamplesLeaf  int     `json:"min_samples_leaf,omitempty"`
}

// ScalerParam holds the standardization applied to one feature column
type ScalerParam struct {
	Feature string  `json:"feature"`
	Mean    float64 `json:"mean"`
	Std     float64 `json:"std"`
}

// Metrics describes how well a model fits.
// When HeldOut is false the scores were computed on the training rows themselves.
type Metrics struct {
	RSquared             float64   `json:"r_squared"`
	MeanAbsoluteError    float64   `json:"mean_absolute_error"`
	RootMeanSquaredError float64   `json:"root_mean_squared_error"`
	CrossValScores       []float64 `json:"cross_val_scores"`
	HeldOut              bool      `json:"held_out"`
	TrainRowCount        int       `json:"train_row_count"`
	TestRowCount         int       `json:"test_row_count"`
}

// MeanCrossValScore averages the cross-validation scores, 0 when none were computed
func (m Metrics) MeanCrossValScore() float64 {
	if len(m.CrossValScores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range m.CrossValScores {
		sum += s
	}
	return sum / float64(len(m.CrossValScores))
}

// TreeNode is one node of a regression tree stored in flat form.
// Leaves have Left == Right == -1.
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// IsLeaf reports whether the node has no children
func (n TreeNode) IsLeaf() bool {
	return n.Left < 0 && n.Right < 0
}

// Tree is a single regression tree; node 0 is the root
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// Forest is an ensemble of regression trees averaged at prediction time
type Forest struct {
	Trees []Tree `json:"trees"`
}

// RegressionModel is the artifact produced by one training run.
// It must be treated as immutable; retraining produces a new value.
type RegressionModel struct {
	ID               string             `json:"id"`
	Kind             ModelKind          `json:"model_kind"`
	FeatureOrder     []string           `json:"feature_order"`
	Scaler           []ScalerParam      `json:"scaler_params"`
	Weights          map[string]float64 `json:"coefficients_or_importances"`
	Intercept        float64            `json:"intercept"`
	Forest           *Forest            `json:"forest,omitempty"`
	Metrics          Metrics            `json:"metrics"`
	Hyperparameters  Hyperparameters    `json:"hyperparameters"`
	TrainedAt        time.Time          `json:"trained_at"`
	TrainingRowCount int                `json:"training_row_count"`
}

// Trained reports whether the model carries a fitted estimator
func (m *RegressionModel) Trained() bool {
	if m == nil || m.TrainedAt.IsZero() || len(m.FeatureOrder) == 0 {
		return false
	}
	if len(m.Scaler) != len(m.FeatureOrder) {
		return false
	}
	switch m.Kind {
	case ModelKindLinear, ModelKindRidge:
		return len(m.Weights) > 0
	case ModelKindRandomForest:
		return m.Forest != nil && len(m.Forest.Trees) > 0
	}
	return false
}

// ScalerFor returns the standardization parameters of a feature
func (m *RegressionModel) ScalerFor(feature string) (ScalerParam, bool) {
	for _, p := range m.Scaler {
		if p.Feature == feature {
			return p, true
		}
	}
	return ScalerParam{}, false
}

// FeatureIndex returns the column of a feature in the model's vector layout
func (m *RegressionModel) FeatureIndex(feature string) int {
	for i, name := range m.FeatureOrder {
		if name == feature {
			return i
		}
	}
	return -1
}
