package regression

import (
	"math"

	"fundamental/pricing/internal/models"
)

// Columns whose spread is below this are treated as constant and left unscaled
const minStd = 1e-12

// fitScaler computes the per-column mean and population standard deviation
func fitScaler(names []string, x [][]float64) []models.ScalerParam {
	params := make([]models.ScalerParam, len(names))
	n := float64(len(x))
	for j, name := range names {
		var sum float64
		for _, row := range x {
			sum += row[j]
		}
		mean := sum / n

		var ss float64
		for _, row := range x {
			d := row[j] - mean
			ss += d * d
		}
		std := math.Sqrt(ss / n)
		if std < minStd {
			std = 1
		}
		params[j] = models.ScalerParam{Feature: name, Mean: mean, Std: std}
	}
	return params
}

// standardize applies scaler params to one row
func standardize(params []models.ScalerParam, row []float64) []float64 {
	z := make([]float64, len(row))
	for j, v := range row {
		z[j] = (v - params[j].Mean) / params[j].Std
	}
	return z
}
