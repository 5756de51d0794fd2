package features

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundamental/pricing/config"
	"fundamental/pricing/internal/models"
)

func ptrFloat(v float64) *float64 { return &v }
func ptrInt(v int) *int           { return &v }
func ptrString(v string) *string  { return &v }

func TestExtract(t *testing.T) {
	extractor := NewExtractor(nil)

	record := models.PropertyRecord{
		ReferenceID:   " prop-1 ",
		SquareFootage: ptrFloat(1415),
		Bedrooms:      ptrInt(1),
		Bathrooms:     ptrFloat(1.5),
		Rooms: []models.Room{
			{Type: "Living Room", Dimensions: ptrString("21' x 21'"), Features: []string{"Fireplace", "window"}},
			{Type: "Garage", Dimensions: ptrString("21x21")},
			{Type: "Bedroom", Dimensions: ptrString("12'6\" x 10'"), Features: []string{"walk-in closet", "door"}},
			{Type: "Ldry/Util", Dimensions: nil},
		},
		Features:   []string{"Private balcony", "rooftop pool"},
		Counts:     models.FeatureCounts{Doors: ptrInt(8), Windows: ptrInt(12)},
		LabelPrice: ptrFloat(350000),
	}

	f, err := extractor.Extract(record)
	require.NoError(t, err)

	assert.Equal(t, "prop-1", f.ReferenceID)
	assert.Equal(t, 1415.0, f.TotalSqft)
	assert.Equal(t, 1, f.Bedrooms)
	assert.Equal(t, 1.5, f.Bathrooms)
	assert.Equal(t, 4, f.RoomCount)
	assert.InDelta(t, 1415.0/4, f.AvgRoomSqft, 1e-9)
	assert.Equal(t, 8, f.NumDoors)
	assert.Equal(t, 12, f.NumWindows)
	assert.True(t, f.HasGarage)
	assert.True(t, f.HasFireplace)
	assert.True(t, f.HasBalcony)
	assert.True(t, f.HasClosets)
	assert.InDelta(t, 441.0, f.LargestRoomSqft, 1e-9)
	assert.InDelta(t, 125.0, f.SmallestRoomSqft, 1e-9)
	require.NotNil(t, f.LabelPrice)
	assert.Equal(t, 350000.0, *f.LabelPrice)
}

func TestExtractDefaults(t *testing.T) {
	extractor := NewExtractor(nil)

	f, err := extractor.Extract(models.PropertyRecord{ReferenceID: "bare"})
	require.NoError(t, err)

	assert.Equal(t, 0.0, f.TotalSqft)
	assert.Equal(t, 0, f.Bedrooms)
	assert.Equal(t, 0.0, f.Bathrooms)
	assert.Equal(t, 0, f.RoomCount)
	assert.Equal(t, 0.0, f.AvgRoomSqft, "avg room sqft defaults to 0 without rooms")
	assert.False(t, f.HasGarage)
	assert.Nil(t, f.LabelPrice)
}

func TestExtractSqftFromRooms(t *testing.T) {
	extractor := NewExtractor(nil)

	f, err := extractor.Extract(models.PropertyRecord{
		ReferenceID: "rooms-only",
		Rooms: []models.Room{
			{Type: "Kitchen", Dimensions: ptrString("10x12"), Features: []string{"window", "window", "door"}},
			{Type: "Bedroom", Dimensions: ptrString("12 x 15"), Features: []string{"closet"}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 300.0, f.TotalSqft)
	assert.Equal(t, 150.0, f.AvgRoomSqft)
	assert.Equal(t, 1, f.NumDoors)
	assert.Equal(t, 2, f.NumWindows)
	assert.True(t, f.HasClosets, "a tallied closet sets the flag")
}

func TestExtractErrors(t *testing.T) {
	extractor := NewExtractor(nil)

	tests := []struct {
		name   string
		record models.PropertyRecord
		field  string
	}{
		{
			name:   "Negative square footage",
			record: models.PropertyRecord{ReferenceID: "a", SquareFootage: ptrFloat(-10)},
			field:  models.FeatureTotalSqft,
		},
		{
			name:   "Negative bedrooms",
			record: models.PropertyRecord{ReferenceID: "a", Bedrooms: ptrInt(-1)},
			field:  models.FeatureBedrooms,
		},
		{
			name:   "Negative door count",
			record: models.PropertyRecord{ReferenceID: "a", Counts: models.FeatureCounts{Doors: ptrInt(-2)}},
			field:  models.FeatureNumDoors,
		},
		{
			name:   "Negative label",
			record: models.PropertyRecord{ReferenceID: "a", LabelPrice: ptrFloat(-1)},
			field:  "label_price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extractor.Extract(tt.record)
			var invalidErr *models.InvalidFeatureValueError
			require.True(t, errors.As(err, &invalidErr), "expected InvalidFeatureValueError, got %v", err)
			assert.Equal(t, tt.field, invalidErr.Field)
		})
	}

	_, err := extractor.Extract(models.PropertyRecord{ReferenceID: "   "})
	assert.ErrorIs(t, err, models.ErrMissingReferenceID)
}

func TestExtractCustomVocabulary(t *testing.T) {
	vocab := &config.Vocabulary{Amenities: []config.Amenity{
		{Feature: models.FeatureHasGarage, Keywords: []string{"parking"}},
	}}
	extractor := NewExtractor(vocab)

	f, err := extractor.Extract(models.PropertyRecord{
		ReferenceID: "custom",
		Features:    []string{"Underground parking", "garage"},
	})
	require.NoError(t, err)
	assert.True(t, f.HasGarage)

	f, err = extractor.Extract(models.PropertyRecord{ReferenceID: "custom", Features: []string{"garage"}})
	require.NoError(t, err)
	assert.False(t, f.HasGarage, "keywords outside the vocabulary are ignored")
}

func TestParseDimensions(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"12x14", 168, true},
		{"12' x 14'", 168, true},
		{"12'6\" x 10'", 125, true},
		{"10.5 x 10", 105, true},
		{"12 ft x 10 ft", 120, true},
		{"approx. 3 × 4", 12, true},
		{"", 0, false},
		{"large", 0, false},
		{"0x12", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			area, ok := ParseDimensions(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.expected, area, 1e-9)
		})
	}
}

func TestValidateTrainable(t *testing.T) {
	good := models.PropertyFeatures{ReferenceID: "a", TotalSqft: 1000, LabelPrice: ptrFloat(250000)}
	assert.NoError(t, ValidateTrainable(good))

	noLabel := good
	noLabel.LabelPrice = nil
	assert.Error(t, ValidateTrainable(noLabel))

	noSqft := good
	noSqft.TotalSqft = 0
	assert.Error(t, ValidateTrainable(noSqft))
	assert.NoError(t, Validate(noSqft), "zero sqft is valid outside training")

	rows := Trainable([]models.PropertyFeatures{good, noLabel, noSqft})
	assert.Len(t, rows, 1)
}
