package features

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"fundamental/pricing/config"
	"fundamental/pricing/internal/models"
)

// Extractor converts upstream property records into PropertyFeatures.
// It is the single normalization boundary in front of the regression layer.
type Extractor struct {
	vocab *config.Vocabulary
}

// NewExtractor creates an extractor; a nil vocabulary selects the default one
func NewExtractor(vocab *config.Vocabulary) *Extractor {
	if vocab == nil {
		vocab = config.DefaultVocabulary()
	}
	return &Extractor{vocab: vocab}
}

// Extract builds the canonical features of a record. Missing optional numbers default to 0;
// only a missing reference id or an out-of-domain value is an error.
func (e *Extractor) Extract(record models.PropertyRecord) (models.PropertyFeatures, error) {
	id := strings.TrimSpace(record.ReferenceID)
	if id == "" {
		return models.PropertyFeatures{}, models.ErrMissingReferenceID
	}

	f := models.PropertyFeatures{
		ReferenceID: id,
		RoomCount:   len(record.Rooms),
		Latitude:    record.Latitude,
		Longitude:   record.Longitude,
	}

	if record.Bedrooms != nil {
		if *record.Bedrooms < 0 {
			return models.PropertyFeatures{}, invalid(models.FeatureBedrooms, float64(*record.Bedrooms), "must not be negative")
		}
		f.Bedrooms = *record.Bedrooms
	}
	if record.Bathrooms != nil {
		if err := checkNonNegative(models.FeatureBathrooms, *record.Bathrooms); err != nil {
			return models.PropertyFeatures{}, err
		}
		f.Bathrooms = *record.Bathrooms
	}

	var roomTotal float64
	for _, room := range record.Rooms {
		if room.Dimensions == nil {
			continue
		}
		area, ok := ParseDimensions(*room.Dimensions)
		if !ok {
			continue
		}
		roomTotal += area
		if area > f.LargestRoomSqft {
			f.LargestRoomSqft = area
		}
		if f.SmallestRoomSqft == 0 || area < f.SmallestRoomSqft {
			f.SmallestRoomSqft = area
		}
	}

	if record.SquareFootage != nil {
		if err := checkNonNegative(models.FeatureTotalSqft, *record.SquareFootage); err != nil {
			return models.PropertyFeatures{}, err
		}
		f.TotalSqft = *record.SquareFootage
	}
	if f.TotalSqft == 0 {
		f.TotalSqft = roomTotal
	}
	if f.RoomCount > 0 {
		f.AvgRoomSqft = f.TotalSqft / float64(f.RoomCount)
	}

	doors, windows, closets := e.tallyRoomFeatures(record.Rooms)
	if record.Counts.Doors != nil {
		doors = *record.Counts.Doors
	}
	if record.Counts.Windows != nil {
		windows = *record.Counts.Windows
	}
	if record.Counts.Closets != nil {
		closets = *record.Counts.Closets
	}
	counts := []struct {
		name  string
		value int
	}{
		{models.FeatureNumDoors, doors},
		{models.FeatureNumWindows, windows},
		{"closets", closets},
	}
	for _, c := range counts {
		if c.value < 0 {
			return models.PropertyFeatures{}, invalid(c.name, float64(c.value), "must not be negative")
		}
	}
	f.NumDoors = doors
	f.NumWindows = windows

	flags := e.detectAmenities(record)
	f.HasGarage = flags[models.FeatureHasGarage]
	f.HasFireplace = flags[models.FeatureHasFireplace]
	f.HasBalcony = flags[models.FeatureHasBalcony]
	f.HasClosets = flags[models.FeatureHasClosets] || closets > 0

	if record.LabelPrice != nil {
		if err := checkNonNegative("label_price", *record.LabelPrice); err != nil {
			return models.PropertyFeatures{}, err
		}
		price := *record.LabelPrice
		f.LabelPrice = &price
	}

	return f, nil
}

// ExtractAll extracts a batch, stopping at the first failing record
func (e *Extractor) ExtractAll(records []models.PropertyRecord) ([]models.PropertyFeatures, error) {
	out := make([]models.PropertyFeatures, 0, len(records))
	for _, r := range records {
		f, err := e.Extract(r)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// detectAmenities tests room types, room features and the flat amenity list against the vocabulary.
// Strings that match nothing are ignored.
func (e *Extractor) detectAmenities(record models.PropertyRecord) map[string]bool {
	flags := make(map[string]bool)
	mark := func(text string) {
		for _, name := range e.vocab.Match(text) {
			flags[name] = true
		}
	}
	for _, s := range record.Features {
		mark(s)
	}
	for _, room := range record.Rooms {
		mark(room.Type)
		for _, s := range room.Features {
			mark(s)
		}
	}
	return flags
}

func (e *Extractor) tallyRoomFeatures(rooms []models.Room) (doors, windows, closets int) {
	for _, room := range rooms {
		for _, s := range room.Features {
			s = strings.ToLower(s)
			switch {
			case strings.Contains(s, "door"):
				doors++
			case strings.Contains(s, "window"):
				windows++
			case strings.Contains(s, "closet"):
				closets++
			}
		}
	}
	return doors, windows, closets
}

// Validate checks that every feature lies in its domain
func Validate(f models.PropertyFeatures) error {
	checks := []struct {
		name  string
		value float64
	}{
		{models.FeatureTotalSqft, f.TotalSqft},
		{models.FeatureBedrooms, float64(f.Bedrooms)},
		{models.FeatureBathrooms, f.Bathrooms},
		{models.FeatureRoomCount, float64(f.RoomCount)},
		{models.FeatureAvgRoomSqft, f.AvgRoomSqft},
		{models.FeatureNumDoors, float64(f.NumDoors)},
		{models.FeatureNumWindows, float64(f.NumWindows)},
	}
	for _, c := range checks {
		if err := checkNonNegative(c.name, c.value); err != nil {
			return err
		}
	}
	if f.LabelPrice != nil {
		if err := checkNonNegative("label_price", *f.LabelPrice); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTrainable additionally requires a positive square footage and a label
func ValidateTrainable(f models.PropertyFeatures) error {
	if err := Validate(f); err != nil {
		return err
	}
	if f.TotalSqft <= 0 {
		return invalid(models.FeatureTotalSqft, f.TotalSqft, "must be positive for training rows")
	}
	if f.LabelPrice == nil {
		return invalid("label_price", math.NaN(), "required for training rows")
	}
	return nil
}

// Trainable filters rows that can be used for training
func Trainable(rows []models.PropertyFeatures) []models.PropertyFeatures {
	out := make([]models.PropertyFeatures, 0, len(rows))
	for _, r := range rows {
		if ValidateTrainable(r) == nil {
			out = append(out, r)
		}
	}
	return out
}

var dimensionPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:'|ft|feet)?\s*(?:(\d+(?:\.\d+)?)\s*(?:"|in|'')?)?\s*[x×X*]\s*(\d+(?:\.\d+)?)\s*(?:'|ft|feet)?\s*(?:(\d+(?:\.\d+)?)\s*(?:"|in|'')?)?`)

// ParseDimensions converts a room dimension string such as `12x14`, `12' x 14'` or
// `12'6" x 10'` into square feet
func ParseDimensions(s string) (float64, bool) {
	m := dimensionPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	width := feet(m[1], m[2])
	length := feet(m[3], m[4])
	if width <= 0 || length <= 0 {
		return 0, false
	}
	return width * length, true
}

func feet(whole, inches string) float64 {
	v, err := strconv.ParseFloat(whole, 64)
	if err != nil {
		return 0
	}
	if inches != "" {
		in, err := strconv.ParseFloat(inches, 64)
		if err == nil {
			v += in / 12
		}
	}
	return v
}

func checkNonNegative(name string, v float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return invalid(name, v, "must be a finite number")
	case v < 0:
		return invalid(name, v, "must not be negative")
	}
	return nil
}

func invalid(name string, v float64, reason string) error {
	return &models.InvalidFeatureValueError{Field: name, Value: v, Reason: reason}
}
