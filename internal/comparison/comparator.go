package comparison

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"fundamental/pricing/internal/models"
	"fundamental/pricing/internal/regression"
)

// DefaultConsistencyTolerance is the relative gap allowed between the summed breakdown
// and the predicted price difference before it is logged
const DefaultConsistencyTolerance = 0.01

// Price per square foot within this fraction counts as comparable value
const similarValueFraction = 0.01

// Comparator explains the predicted price difference between two properties
type Comparator struct {
	logger    *logrus.Logger
	tolerance float64
}

// NewComparator creates a new comparator. A non-positive tolerance selects the default.
func NewComparator(logger *logrus.Logger, tolerance float64) *Comparator {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if tolerance <= 0 {
		tolerance = DefaultConsistencyTolerance
	}
	return &Comparator{logger: logger, tolerance: tolerance}
}

// Compare predicts both properties and breaks B minus A down by impact category.
// Swapping the arguments negates every delta and the breakdown.
func (c *Comparator) Compare(a, b models.PropertyFeatures, model *models.RegressionModel) (*models.ComparisonResult, error) {
	if !model.Trained() {
		return nil, models.ErrModelNotTrained
	}
	predA, err := regression.Predict(a, model)
	if err != nil {
		return nil, fmt.Errorf("failed to predict property %s: %w", a.ReferenceID, err)
	}
	predB, err := regression.Predict(b, model)
	if err != nil {
		return nil, fmt.Errorf("failed to predict property %s: %w", b.ReferenceID, err)
	}

	result := &models.ComparisonResult{
		FeatureDeltas:    featureDeltas(a, b),
		PredictedPriceA:  predA.PredictedPrice,
		PredictedPriceB:  predB.PredictedPrice,
		TotalDelta:       predB.PredictedPrice - predA.PredictedPrice,
		PricePerSqftA:    predA.PricePerSqft,
		PricePerSqftB:    predB.PricePerSqft,
		PricePerSqftDiff: predB.PricePerSqft - predA.PricePerSqft,
	}

	if model.Kind.HasCoefficients() {
		result.DollarImpactBreakdown, err = coefficientBreakdown(result.FeatureDeltas, model)
	} else {
		result.DollarImpactBreakdown, err = substitutionBreakdown(a, b, model)
	}
	if err != nil {
		return nil, err
	}

	gap := math.Abs(result.BreakdownTotal() - result.TotalDelta)
	result.Consistent = gap <= c.tolerance*math.Max(math.Abs(result.TotalDelta), 1)
	if !result.Consistent {
		c.logger.WithFields(logrus.Fields{
			"property_a":      a.ReferenceID,
			"property_b":      b.ReferenceID,
			"model_id":        model.ID,
			"model_kind":      model.Kind,
			"total_delta":     result.TotalDelta,
			"breakdown_total": result.BreakdownTotal(),
		}).Warn("Impact breakdown diverges from predicted price difference")
	}

	result.SummaryText = summarize(result)
	result.Recommendation = recommend(result)
	return result, nil
}

func featureDeltas(a, b models.PropertyFeatures) map[string]models.FeatureDelta {
	va, vb := a.Vector(), b.Vector()
	deltas := make(map[string]models.FeatureDelta, len(va.Names))
	for j, name := range va.Names {
		deltas[name] = models.FeatureDelta{
			ValueA:     va.Values[j],
			ValueB:     vb.Values[j],
			Difference: vb.Values[j] - va.Values[j],
		}
	}
	return deltas
}

func emptyBreakdown() map[string]float64 {
	breakdown := make(map[string]float64, len(models.ImpactCategories))
	for _, category := range models.ImpactCategories {
		breakdown[category] = 0
	}
	return breakdown
}

// coefficientBreakdown multiplies each feature delta by its dollars per unit
func coefficientBreakdown(deltas map[string]models.FeatureDelta, model *models.RegressionModel) (map[string]float64, error) {
	breakdown := emptyBreakdown()
	for _, feature := range model.FeatureOrder {
		impact, err := regression.Impact(model, feature)
		if err != nil {
			return nil, err
		}
		breakdown[models.CategoryOf(feature)] += deltas[feature].Difference * impact.DollarsPerUnit
	}
	return breakdown, nil
}

// substitutionBreakdown handles models without coefficients. Categories of A are replaced
// by B's values one at a time in reporting order and each step's raw price change is
// attributed to that category. The walk is made in both directions and averaged so the
// result is antisymmetric in A and B.
func substitutionBreakdown(a, b models.PropertyFeatures, model *models.RegressionModel) (map[string]float64, error) {
	forward, err := substitutionWalk(a.Vector(), b.Vector(), model)
	if err != nil {
		return nil, err
	}
	backward, err := substitutionWalk(b.Vector(), a.Vector(), model)
	if err != nil {
		return nil, err
	}

	breakdown := emptyBreakdown()
	for _, category := range models.ImpactCategories {
		breakdown[category] = (forward[category] - backward[category]) / 2
	}
	return breakdown, nil
}

func substitutionWalk(from, to models.FeatureVector, model *models.RegressionModel) (map[string]float64, error) {
	current := models.FeatureVector{
		Names:  from.Names,
		Values: append([]float64(nil), from.Values...),
	}
	start, err := regression.PredictVector(current, model)
	if err != nil {
		return nil, err
	}
	previous := start.RawPrice

	steps := make(map[string]float64, len(models.ImpactCategories))
	for _, category := range models.ImpactCategories {
		for j, name := range current.Names {
			if models.CategoryOf(name) == category {
				current.Values[j] = to.Values[j]
			}
		}
		p, err := regression.PredictVector(current, model)
		if err != nil {
			return nil, err
		}
		steps[category] = p.RawPrice - previous
		previous = p.RawPrice
	}
	return steps, nil
}

func summarize(r *models.ComparisonResult) string {
	var parts []string
	for _, d := range []struct {
		feature string
		unit    string
	}{
		{models.FeatureBedrooms, "bedroom"},
		{models.FeatureBathrooms, "bathroom"},
		{models.FeatureTotalSqft, "sqft"},
	} {
		diff := r.FeatureDeltas[d.feature].Difference
		if diff == 0 {
			continue
		}
		direction := "more"
		if diff < 0 {
			direction = "fewer"
		}
		parts = append(parts, fmt.Sprintf("%s %s %s", formatNumber(math.Abs(diff)), direction, d.unit))
	}

	var sb strings.Builder
	if len(parts) == 0 {
		sb.WriteString("Property B matches property A on bedrooms, bathrooms and square footage.")
	} else {
		sb.WriteString("Property B has " + strings.Join(parts, ", ") + " than property A.")
	}

	switch {
	case r.TotalDelta > 0:
		sb.WriteString(fmt.Sprintf(" It is predicted at $%s more", formatNumber(r.TotalDelta)))
	case r.TotalDelta < 0:
		sb.WriteString(fmt.Sprintf(" It is predicted at $%s less", formatNumber(-r.TotalDelta)))
	default:
		sb.WriteString(" Both are predicted at the same price.")
		return sb.String()
	}

	category, amount := dominantCategory(r.DollarImpactBreakdown)
	if amount == 0 {
		sb.WriteString(".")
		return sb.String()
	}
	sign := "+"
	if amount < 0 {
		sign = "-"
	}
	sb.WriteString(fmt.Sprintf(", driven mostly by %s (%s$%s).", category, sign, formatNumber(math.Abs(amount))))
	return sb.String()
}

// dominantCategory returns the category with the largest absolute contribution.
// Ties resolve to the earlier category in reporting order.
func dominantCategory(breakdown map[string]float64) (string, float64) {
	var best string
	var amount float64
	for _, category := range models.ImpactCategories {
		if v := breakdown[category]; math.Abs(v) > math.Abs(amount) {
			best, amount = category, v
		}
	}
	return best, amount
}

func recommend(r *models.ComparisonResult) string {
	a, b := r.PricePerSqftA, r.PricePerSqftB
	if a <= 0 || b <= 0 {
		return "Insufficient square footage data to compare value per square foot."
	}
	if math.Abs(a-b) <= similarValueFraction*math.Max(a, b) {
		return fmt.Sprintf("Both properties offer similar value per square foot ($%.2f vs $%.2f).", a, b)
	}
	if a < b {
		return fmt.Sprintf("Property A offers better value per square foot ($%.2f vs $%.2f).", a, b)
	}
	return fmt.Sprintf("Property B offers better value per square foot ($%.2f vs $%.2f).", b, a)
}

// formatNumber renders whole numbers without decimals and everything else with two
func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
