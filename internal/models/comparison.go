package models

// Confidence classifies how much a prediction can be trusted
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Rank orders confidence levels, low < medium < high
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	}
	return 0
}

// Prediction is the price predictor's output for one property
type Prediction struct {
	PredictedPrice float64    `json:"predicted_price"`
	RawPrice       float64    `json:"raw_price"`
	Confidence     Confidence `json:"confidence"`
	PricePerSqft   float64    `json:"price_per_sqft"`
	HeldOut        bool       `json:"held_out"`
}

// Impact methods
const (
	ImpactMethodCoefficient      = "coefficient"
	ImpactMethodFiniteDifference = "finite_difference"
	ImpactMethodNotApplicable    = "not_applicable"
)

// ImpactResult is the marginal dollar change per unit of a feature.
// Applicable is false when the model cannot express the impact in dollars.
type ImpactResult struct {
	Feature        string  `json:"feature"`
	DollarsPerUnit float64 `json:"dollars_per_unit"`
	Applicable     bool    `json:"applicable"`
	Method         string  `json:"method"`
}

// Impact categories of a comparison breakdown
const (
	CategorySqft      = "sqft"
	CategoryBedrooms  = "bedrooms"
	CategoryBathrooms = "bathrooms"
	CategoryAmenities = "amenities"
	CategoryLayout    = "layout"
)

// ImpactCategories lists breakdown categories in reporting order
var ImpactCategories = []string{
	CategorySqft,
	CategoryBedrooms,
	CategoryBathrooms,
	CategoryAmenities,
	CategoryLayout,
}

// CategoryOf maps a feature to its breakdown category
func CategoryOf(feature string) string {
	switch feature {
	case FeatureTotalSqft:
		return CategorySqft
	case FeatureBedrooms:
		return CategoryBedrooms
	case FeatureBathrooms:
		return CategoryBathrooms
	case FeatureHasGarage, FeatureHasFireplace, FeatureHasBalcony, FeatureHasClosets:
		return CategoryAmenities
	}
	return CategoryLayout
}

// FeatureDelta holds one feature's values in both properties and B minus A
type FeatureDelta struct {
	ValueA     float64 `json:"value_a"`
	ValueB     float64 `json:"value_b"`
	Difference float64 `json:"difference"`
}

// ComparisonResult decomposes the predicted price difference between two properties
type ComparisonResult struct {
	FeatureDeltas         map[string]FeatureDelta `json:"feature_deltas"`
	DollarImpactBreakdown map[string]float64      `json:"dollar_impact_breakdown"`
	PredictedPriceA       float64                 `json:"predicted_price_a"`
	PredictedPriceB       float64                 `json:"predicted_price_b"`
	TotalDelta            float64                 `json:"total_delta"`
	PricePerSqftA         float64                 `json:"price_per_sqft_a"`
	PricePerSqftB         float64                 `json:"price_per_sqft_b"`
	PricePerSqftDiff      float64                 `json:"price_per_sqft_diff"`
	Consistent            bool                    `json:"consistent"`
	SummaryText           string                  `json:"summary_text"`
	Recommendation        string                  `json:"recommendation"`
}

// BreakdownTotal sums the dollar impact breakdown
func (r *ComparisonResult) BreakdownTotal() float64 {
	var total float64
	for _, category := range ImpactCategories {
		total += r.DollarImpactBreakdown[category]
	}
	return total
}
