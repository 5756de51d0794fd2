package models

// Room is a single room as reported by the upstream floor-plan pipeline
type Room struct {
	Type       string   `json:"type" yaml:"type"`
	Dimensions *string  `json:"dimensions" yaml:"dimensions"`
	Features   []string `json:"features" yaml:"features"`
}

// FeatureCounts holds raw detector totals. Nil means the detector did not report the count.
type FeatureCounts struct {
	Doors   *int `json:"doors" yaml:"doors"`
	Windows *int `json:"windows" yaml:"windows"`
	Closets *int `json:"closets" yaml:"closets"`
}

// PropertyRecord is the upstream property shape consumed by the feature extractor
type PropertyRecord struct {
	ReferenceID   string        `json:"reference_id" yaml:"reference_id"`
	SquareFootage *float64      `json:"square_footage" yaml:"square_footage"`
	Bedrooms      *int          `json:"bedrooms" yaml:"bedrooms"`
	Bathrooms     *float64      `json:"bathrooms" yaml:"bathrooms"`
	Rooms         []Room        `json:"rooms" yaml:"rooms"`
	Features      []string      `json:"features" yaml:"features"`
	Counts        FeatureCounts `json:"counts" yaml:"counts"`
	LabelPrice    *float64      `json:"label_price" yaml:"label_price"`
	Latitude      *float64      `json:"latitude" yaml:"latitude"`
	Longitude     *float64      `json:"longitude" yaml:"longitude"`
}

// Feature names, in the order used to build feature vectors
const (
	FeatureBedrooms     = "bedrooms"
	FeatureBathrooms    = "bathrooms"
	FeatureTotalSqft    = "total_sqft"
	FeatureRoomCount    = "room_count"
	FeatureAvgRoomSqft  = "avg_room_sqft"
	FeatureNumDoors     = "num_doors"
	FeatureNumWindows   = "num_windows"
	FeatureHasGarage    = "has_garage"
	FeatureHasFireplace = "has_fireplace"
	FeatureHasBalcony   = "has_balcony"
	FeatureHasClosets   = "has_closets"
)

// FeatureOrder is the canonical vector layout. Models record the order they were trained with
// and refuse vectors built any other way.
var FeatureOrder = []string{
	FeatureBedrooms,
	FeatureBathrooms,
	FeatureTotalSqft,
	FeatureRoomCount,
	FeatureAvgRoomSqft,
	FeatureNumDoors,
	FeatureNumWindows,
	FeatureHasGarage,
	FeatureHasFireplace,
	FeatureHasBalcony,
	FeatureHasClosets,
}

// BooleanFeatures lists the amenity flags encoded as 0/1
var BooleanFeatures = []string{
	FeatureHasGarage,
	FeatureHasFireplace,
	FeatureHasBalcony,
	FeatureHasClosets,
}

// PropertyFeatures is the canonical, extracted description of one property.
// Values are never mutated after extraction.
type PropertyFeatures struct {
	ReferenceID  string   `json:"reference_id"`
	TotalSqft    float64  `json:"total_sqft"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    float64  `json:"bathrooms"`
	RoomCount    int      `json:"room_count"`
	AvgRoomSqft  float64  `json:"avg_room_sqft"`
	NumDoors     int      `json:"num_doors"`
	NumWindows   int      `json:"num_windows"`
	HasGarage    bool     `json:"has_garage"`
	HasFireplace bool     `json:"has_fireplace"`
	HasBalcony   bool     `json:"has_balcony"`
	HasClosets   bool     `json:"has_closets"`
	LabelPrice   *float64 `json:"label_price"`

	// Metadata, not part of the model vector
	LargestRoomSqft  float64  `json:"largest_room_sqft"`
	SmallestRoomSqft float64  `json:"smallest_room_sqft"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
}

// FeatureVector is a numeric encoding of PropertyFeatures together with the names
// of its columns, so that a model can verify the layout before using it.
type FeatureVector struct {
	Names  []string
	Values []float64
}

// Vector encodes the features in FeatureOrder
func (f PropertyFeatures) Vector() FeatureVector {
	values := make([]float64, len(FeatureOrder))
	for i, name := range FeatureOrder {
		values[i], _ = f.Value(name)
	}
	names := make([]string, len(FeatureOrder))
	copy(names, FeatureOrder)
	return FeatureVector{Names: names, Values: values}
}

// Value returns the numeric value of a named feature
func (f PropertyFeatures) Value(name string) (float64, bool) {
	switch name {
	case FeatureBedrooms:
		return float64(f.Bedrooms), true
	case FeatureBathrooms:
		return f.Bathrooms, true
	case FeatureTotalSqft:
		return f.TotalSqft, true
	case FeatureRoomCount:
		return float64(f.RoomCount), true
	case FeatureAvgRoomSqft:
		return f.AvgRoomSqft, true
	case FeatureNumDoors:
		return float64(f.NumDoors), true
	case FeatureNumWindows:
		return float64(f.NumWindows), true
	case FeatureHasGarage:
		return boolToFloat(f.HasGarage), true
	case FeatureHasFireplace:
		return boolToFloat(f.HasFireplace), true
	case FeatureHasBalcony:
		return boolToFloat(f.HasBalcony), true
	case FeatureHasClosets:
		return boolToFloat(f.HasClosets), true
	}
	return 0, false
}

// IsFeature reports whether name is a known model feature
func IsFeature(name string) bool {
	for _, n := range FeatureOrder {
		if n == name {
			return true
		}
	}
	return false
}

// IsBooleanFeature reports whether name is one of the amenity flags
func IsBooleanFeature(name string) bool {
	for _, n := range BooleanFeatures {
		if n == name {
			return true
		}
	}
	return false
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
