package regression

import (
	"math/rand"
	"sort"

	"fundamental/pricing/internal/models"
)

// Splits must reduce the squared error by more than this to be kept
const minGain = 1e-9

type forestParams struct {
	trees          int
	maxDepth       int
	minSamplesLeaf int
	seed           int64
}

// fitForest grows a bagged ensemble of regression trees over all features and returns it
// together with normalized impurity-decrease importances
func fitForest(x [][]float64, y []float64, params forestParams) (*models.Forest, []float64) {
	rng := rand.New(rand.NewSource(params.seed))
	p := len(x[0])
	gains := make([]float64, p)

	forest := &models.Forest{Trees: make([]models.Tree, 0, params.trees)}
	for t := 0; t < params.trees; t++ {
		sample := make([]int, len(x))
		for i := range sample {
			sample[i] = rng.Intn(len(x))
		}
		b := &treeBuilder{x: x, y: y, params: params, gains: gains}
		b.grow(sample, 0)
		forest.Trees = append(forest.Trees, models.Tree{Nodes: b.nodes})
	}

	var total float64
	for _, g := range gains {
		total += g
	}
	importances := make([]float64, p)
	if total > 0 {
		for j, g := range gains {
			importances[j] = g / total
		}
	}
	return forest, importances
}

type treeBuilder struct {
	x      [][]float64
	y      []float64
	params forestParams
	gains  []float64
	nodes  []models.TreeNode
}

// grow appends the subtree for rows and returns its node index
func (b *treeBuilder) grow(rows []int, depth int) int {
	idx := len(b.nodes)
	b.nodes = append(b.nodes, models.TreeNode{Feature: -1, Left: -1, Right: -1, Value: b.mean(rows)})

	if b.params.maxDepth > 0 && depth >= b.params.maxDepth {
		return idx
	}
	if len(rows) < 2*b.params.minSamplesLeaf {
		return idx
	}

	feature, threshold, gain, ok := b.bestSplit(rows)
	if !ok || gain <= minGain {
		return idx
	}
	b.gains[feature] += gain

	var left, right []int
	for _, r := range rows {
		if b.x[r][feature] <= threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[idx].Feature = feature
	b.nodes[idx].Threshold = threshold
	b.nodes[idx].Left = l
	b.nodes[idx].Right = r
	return idx
}

// bestSplit scans every feature for the threshold with the lowest summed squared error
func (b *treeBuilder) bestSplit(rows []int) (feature int, threshold, gain float64, ok bool) {
	n := len(rows)
	parent := b.sse(rows)
	best := parent
	minLeaf := b.params.minSamplesLeaf

	sorted := make([]int, n)
	for j := range b.x[0] {
		copy(sorted, rows)
		sort.SliceStable(sorted, func(a, c int) bool {
			return b.x[sorted[a]][j] < b.x[sorted[c]][j]
		})

		var totalSum, totalSq float64
		for _, r := range sorted {
			totalSum += b.y[r]
			totalSq += b.y[r] * b.y[r]
		}

		var leftSum, leftSq float64
		for k := 0; k < n-1; k++ {
			v := b.y[sorted[k]]
			leftSum += v
			leftSq += v * v

			nl := k + 1
			nr := n - nl
			if nl < minLeaf || nr < minLeaf {
				continue
			}
			lo, hi := b.x[sorted[k]][j], b.x[sorted[k+1]][j]
			if lo == hi {
				continue
			}
			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			cost := (leftSq - leftSum*leftSum/float64(nl)) + (rightSq - rightSum*rightSum/float64(nr))
			if cost < best {
				best = cost
				feature = j
				threshold = (lo + hi) / 2
				ok = true
			}
		}
	}
	return feature, threshold, parent - best, ok
}

func (b *treeBuilder) mean(rows []int) float64 {
	if len(rows) == 0 {
		return 0
	}
	var sum float64
	for _, r := range rows {
		sum += b.y[r]
	}
	return sum / float64(len(rows))
}

func (b *treeBuilder) sse(rows []int) float64 {
	m := b.mean(rows)
	var ss float64
	for _, r := range rows {
		d := b.y[r] - m
		ss += d * d
	}
	return ss
}

// predictForest averages the trees' leaf values for a standardized row
func predictForest(forest *models.Forest, z []float64) float64 {
	if forest == nil || len(forest.Trees) == 0 {
		return 0
	}
	var sum float64
	for _, tree := range forest.Trees {
		sum += predictTree(tree, z)
	}
	return sum / float64(len(forest.Trees))
}

func predictTree(tree models.Tree, z []float64) float64 {
	if len(tree.Nodes) == 0 {
		return 0
	}
	i := 0
	for {
		node := tree.Nodes[i]
		if node.IsLeaf() {
			return node.Value
		}
		if z[node.Feature] <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
}
