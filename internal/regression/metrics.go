package regression

import "math"

// rSquared is the coefficient of determination. A constant target scores 1 when
// predicted exactly and 0 otherwise.
func rSquared(actual, predicted []float64) float64 {
	var mean float64
	for _, v := range actual {
		mean += v
	}
	mean /= float64(len(actual))

	var ssRes, ssTot float64
	for i, v := range actual {
		r := v - predicted[i]
		ssRes += r * r
		d := v - mean
		ssTot += d * d
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}

func meanAbsoluteError(actual, predicted []float64) float64 {
	var sum float64
	for i, v := range actual {
		sum += math.Abs(v - predicted[i])
	}
	return sum / float64(len(actual))
}

func rootMeanSquaredError(actual, predicted []float64) float64 {
	var sum float64
	for i, v := range actual {
		d := v - predicted[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(actual)))
}

// kFolds partitions n consecutive indices into k folds; the first n%k folds get one extra row
func kFolds(n, k int) [][]int {
	folds := make([][]int, k)
	start := 0
	for f := 0; f < k; f++ {
		size := n / k
		if f < n%k {
			size++
		}
		fold := make([]int, size)
		for i := range fold {
			fold[i] = start + i
		}
		folds[f] = fold
		start += size
	}
	return folds
}

// foldCount picks k for cross-validation: the requested k, reduced so that every fold keeps
// at least two rows. Zero means the split is too small to cross-validate.
func foldCount(trainRows, requested int) int {
	k := requested
	if limit := trainRows / 2; k > limit {
		k = limit
	}
	if k < 2 {
		return 0
	}
	return k
}
