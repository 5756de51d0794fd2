package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundamental/pricing/internal/models"
)

func writeVocabulary(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "vocabulary.json")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefaultVocabularyIsACopy(t *testing.T) {
	vocab := DefaultVocabulary()
	vocab.Amenities[0].Keywords[0] = "changed"

	assert.Equal(t, "garage", DefaultAmenities[0].Keywords[0])
	assert.Equal(t, []string{
		models.FeatureHasGarage,
		models.FeatureHasFireplace,
		models.FeatureHasBalcony,
		models.FeatureHasClosets,
	}, DefaultVocabulary().GetAmenityFeatures())
}

func TestVocabularyMatch(t *testing.T) {
	vocab := DefaultVocabulary()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"single keyword", "Detached Garage", []string{models.FeatureHasGarage}},
		{"two amenities", "terrace with wood stove", []string{models.FeatureHasFireplace, models.FeatureHasBalcony}},
		{"no match", "swimming pool", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, vocab.Match(tt.text))
		})
	}
}

func TestLoadVocabulary(t *testing.T) {
	t.Run("normalizes keywords", func(t *testing.T) {
		p := writeVocabulary(t, `{"amenities": [{"feature": "has_garage", "keywords": ["  Car Port "]}]}`)

		vocab, err := LoadVocabulary(p)
		require.NoError(t, err)
		assert.Equal(t, []string{"car port"}, vocab.Amenities[0].Keywords)
		assert.Equal(t, []string{models.FeatureHasGarage}, vocab.Match("CAR PORT"))
	})

	t.Run("rejects non-amenity features", func(t *testing.T) {
		p := writeVocabulary(t, `{"amenities": [{"feature": "total_sqft", "keywords": ["big"]}]}`)

		_, err := LoadVocabulary(p)
		assert.ErrorIs(t, err, models.ErrUnknownFeature)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		p := writeVocabulary(t, `{"amenities": [`)

		_, err := LoadVocabulary(p)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadVocabulary(filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err)
	})
}
