package regression

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Singular values below this fraction of the largest are treated as zero
const rankTolerance = 1e-10

// linearFit is an intercept plus one coefficient per standardized column
type linearFit struct {
	coef      []float64
	intercept float64
}

func (f linearFit) predict(z []float64) float64 {
	y := f.intercept
	for j, c := range f.coef {
		y += c * z[j]
	}
	return y
}

// fitLinear solves least squares on centered data. With alpha > 0 it solves the ridge
// normal equations (XᵀX + αI)β = Xᵀy; with alpha == 0 it takes the minimum-norm
// solution through a thin SVD so that constant or collinear columns do not break the fit.
func fitLinear(x [][]float64, y []float64, alpha float64) (linearFit, error) {
	n := len(x)
	if n == 0 {
		return linearFit{}, errors.New("no rows to fit")
	}
	p := len(x[0])

	xMean := make([]float64, p)
	var yMean float64
	for i, row := range x {
		for j, v := range row {
			xMean[j] += v
		}
		yMean += y[i]
	}
	for j := range xMean {
		xMean[j] /= float64(n)
	}
	yMean /= float64(n)

	xc := mat.NewDense(n, p, nil)
	yc := mat.NewVecDense(n, nil)
	for i, row := range x {
		for j, v := range row {
			xc.Set(i, j, v-xMean[j])
		}
		yc.SetVec(i, y[i]-yMean)
	}

	var beta *mat.VecDense
	var err error
	if alpha > 0 {
		beta, err = solveRidge(xc, yc, alpha)
	} else {
		beta, err = solveMinNorm(xc, yc)
	}
	if err != nil {
		return linearFit{}, err
	}

	fit := linearFit{coef: make([]float64, p), intercept: yMean}
	for j := 0; j < p; j++ {
		fit.coef[j] = beta.AtVec(j)
		fit.intercept -= fit.coef[j] * xMean[j]
	}
	return fit, nil
}

func solveRidge(xc *mat.Dense, yc *mat.VecDense, alpha float64) (*mat.VecDense, error) {
	_, p := xc.Dims()

	var gram mat.Dense
	gram.Mul(xc.T(), xc)
	for j := 0; j < p; j++ {
		gram.Set(j, j, gram.At(j, j)+alpha)
	}

	var rhs mat.VecDense
	rhs.MulVec(xc.T(), yc)

	beta := mat.NewVecDense(p, nil)
	if err := beta.SolveVec(&gram, &rhs); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("failed to solve ridge system: %w", err)
		}
	}
	return beta, nil
}

func solveMinNorm(xc *mat.Dense, yc *mat.VecDense) (*mat.VecDense, error) {
	_, p := xc.Dims()
	beta := mat.NewVecDense(p, nil)

	var svd mat.SVD
	if ok := svd.Factorize(xc, mat.SVDThin); !ok {
		return nil, errors.New("failed to factorize design matrix")
	}

	values := svd.Values(nil)
	if len(values) == 0 || values[0] == 0 {
		return beta, nil
	}
	rank := 0
	for _, s := range values {
		if s > values[0]*rankTolerance {
			rank++
		}
	}
	svd.SolveVecTo(beta, yc, rank)
	return beta, nil
}
