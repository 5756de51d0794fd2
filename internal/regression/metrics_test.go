package regression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRSquared(t *testing.T) {
	tests := []struct {
		name      string
		actual    []float64
		predicted []float64
		want      float64
	}{
		{"perfect", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"mean only", []float64{1, 2, 3}, []float64{2, 2, 2}, 0},
		{"constant exact", []float64{5, 5}, []float64{5, 5}, 1},
		{"constant missed", []float64{5, 5}, []float64{4, 6}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, rSquared(tt.actual, tt.predicted), 1e-12)
		})
	}
}

func TestErrorMetrics(t *testing.T) {
	actual := []float64{10, 20, 30}
	predicted := []float64{12, 18, 30}

	assert.InDelta(t, 4.0/3, meanAbsoluteError(actual, predicted), 1e-12)
	assert.InDelta(t, 1.632993, rootMeanSquaredError(actual, predicted), 1e-6)
}

func TestKFolds(t *testing.T) {
	folds := kFolds(7, 3)
	assert.Equal(t, [][]int{{0, 1, 2}, {3, 4}, {5, 6}}, folds)
}

func TestFoldCount(t *testing.T) {
	assert.Equal(t, 5, foldCount(20, 5))
	assert.Equal(t, 3, foldCount(7, 5))
	assert.Equal(t, 2, foldCount(4, 5))
	assert.Equal(t, 0, foldCount(3, 5))
	assert.Equal(t, 0, foldCount(20, 1))
}
