package comps

import (
	"errors"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"fundamental/pricing/internal/models"
	"fundamental/pricing/internal/regression"
)

// ErrNoComps is returned when no labeled comparable has a usable square footage
var ErrNoComps = errors.New("no comparable sales with price and square footage")

// Trimming of the price-per-sqft distribution applies from this many comps on
const (
	trimMinComps = 10
	trimFraction = 0.05
)

// Impact sources
const (
	SourceModel = "model"
	SourceComps = "comps"
)

// Area restricts comps to a radius around a point
type Area struct {
	Center   orb.Point // longitude, latitude
	RadiusKm float64
}

// SqftImpact is the dollar value of additional square footage
type SqftImpact struct {
	PricePerSqft float64            `json:"price_per_sqft"`
	Examples     map[string]float64 `json:"examples"`
	Source       string             `json:"source"`
	ModelID      string             `json:"model_id,omitempty"`
	CompCount    int                `json:"comp_count,omitempty"`
	Bound        *orb.Bound         `json:"bound,omitempty"`
}

var exampleSizes = []struct {
	label string
	sqft  float64
}{
	{"100_sqft", 100},
	{"500_sqft", 500},
	{"1000_sqft", 1000},
}

// EstimateSqftImpact prices one square foot from the model coefficient when the model has one,
// and from the median price per sqft of comparable sales otherwise
func EstimateSqftImpact(model *models.RegressionModel, corpus []models.PropertyFeatures, area *Area) (*SqftImpact, error) {
	if model.Trained() && model.Kind.HasCoefficients() {
		impact, err := regression.Impact(model, models.FeatureTotalSqft)
		if err != nil {
			return nil, err
		}
		result := newSqftImpact(impact.DollarsPerUnit, SourceModel)
		result.ModelID = model.ID
		return result, nil
	}

	comps := corpus
	if area != nil {
		comps = WithinRadius(corpus, area.Center, area.RadiusKm)
	}
	ppsf, n, err := MedianPricePerSqft(comps)
	if err != nil {
		return nil, err
	}
	result := newSqftImpact(ppsf, SourceComps)
	result.CompCount = n
	if b, ok := Bounds(comps); ok {
		result.Bound = &b
	}
	return result, nil
}

func newSqftImpact(ppsf float64, source string) *SqftImpact {
	examples := make(map[string]float64, len(exampleSizes))
	for _, e := range exampleSizes {
		examples[e.label] = math.Round(ppsf*e.sqft*100) / 100
	}
	return &SqftImpact{PricePerSqft: ppsf, Examples: examples, Source: source}
}

// WithinRadius keeps properties with coordinates no further than radiusKm from center
func WithinRadius(rows []models.PropertyFeatures, center orb.Point, radiusKm float64) []models.PropertyFeatures {
	limit := radiusKm * 1000
	var out []models.PropertyFeatures
	for _, r := range rows {
		p, ok := location(r)
		if !ok {
			continue
		}
		if geo.Distance(center, p) <= limit {
			out = append(out, r)
		}
	}
	return out
}

// Bounds returns the bounding box of the properties that carry coordinates
func Bounds(rows []models.PropertyFeatures) (orb.Bound, bool) {
	var points orb.MultiPoint
	for _, r := range rows {
		if p, ok := location(r); ok {
			points = append(points, p)
		}
	}
	if len(points) == 0 {
		return orb.Bound{}, false
	}
	return points.Bound(), true
}

// MedianPricePerSqft computes the median label price per square foot of labeled rows.
// With ten or more values the lowest and highest 5% are dropped first.
// It also returns how many comps contributed.
func MedianPricePerSqft(rows []models.PropertyFeatures) (float64, int, error) {
	var values []float64
	for _, r := range rows {
		if r.LabelPrice == nil || r.TotalSqft <= 0 {
			continue
		}
		values = append(values, *r.LabelPrice/r.TotalSqft)
	}
	if len(values) == 0 {
		return 0, 0, ErrNoComps
	}

	sort.Float64s(values)
	if len(values) >= trimMinComps {
		cut := int(math.Floor(trimFraction * float64(len(values))))
		values = values[cut : len(values)-cut]
	}

	n := len(values)
	if n%2 == 1 {
		return values[n/2], n, nil
	}
	return (values[n/2-1] + values[n/2]) / 2, n, nil
}

func location(r models.PropertyFeatures) (orb.Point, bool) {
	if r.Latitude == nil || r.Longitude == nil {
		return orb.Point{}, false
	}
	return orb.Point{*r.Longitude, *r.Latitude}, true
}
