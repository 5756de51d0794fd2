package regression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitForestLearnsStep(t *testing.T) {
	var x [][]float64
	var y []float64
	for i := 0; i < 20; i++ {
		v := float64(i)
		x = append(x, []float64{v, 1})
		if i < 10 {
			y = append(y, 100)
		} else {
			y = append(y, 500)
		}
	}

	forest, importances := fitForest(x, y, forestParams{trees: 30, minSamplesLeaf: 1, seed: 1})
	require.Len(t, forest.Trees, 30)

	assert.InDelta(t, 100.0, predictForest(forest, []float64{2, 1}), 60)
	assert.InDelta(t, 500.0, predictForest(forest, []float64{17, 1}), 60)
	assert.InDelta(t, 1.0, importances[0], 1e-12)
	assert.Equal(t, 0.0, importances[1])
}

func TestFitForestRespectsMaxDepth(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {4}, {5}, {6}}
	y := []float64{1, 2, 3, 4, 5, 6}

	forest, _ := fitForest(x, y, forestParams{trees: 5, maxDepth: 1, minSamplesLeaf: 1, seed: 9})
	for _, tree := range forest.Trees {
		assert.LessOrEqual(t, len(tree.Nodes), 3)
	}
}

func TestFitLinearHandlesCollinearColumns(t *testing.T) {
	x := [][]float64{{1, 2}, {2, 4}, {3, 6}, {4, 8}}
	y := []float64{10, 20, 30, 40}

	fit, err := fitLinear(x, y, 0)
	require.NoError(t, err)
	for i, row := range x {
		assert.InDelta(t, y[i], fit.predict(row), 1e-9)
	}
	// Minimum-norm solution splits the weight in proportion to the columns
	assert.InDelta(t, 2.0, fit.coef[0], 1e-9)
	assert.InDelta(t, 4.0, fit.coef[1], 1e-9)
}
