package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fundamental/pricing/internal/models"
)

// Amenity maps an amenity flag to the keywords that switch it on
type Amenity struct {
	Feature  string   `json:"feature"`
	Keywords []string `json:"keywords"`
}

// Vocabulary is the fixed set of amenity keywords used by the feature extractor
type Vocabulary struct {
	Amenities []Amenity `json:"amenities"`
}

// DefaultAmenities is the vocabulary used when no file is configured
var DefaultAmenities = []Amenity{
	{
		Feature:  models.FeatureHasGarage,
		Keywords: []string{"garage", "carport"},
	},
	{
		Feature:  models.FeatureHasFireplace,
		Keywords: []string{"fireplace", "hearth", "wood stove"},
	},
	{
		Feature:  models.FeatureHasBalcony,
		Keywords: []string{"balcony", "terrace", "loggia"},
	},
	{
		Feature:  models.FeatureHasClosets,
		Keywords: []string{"closet", "wardrobe"},
	},
}

// DefaultVocabulary returns a copy of the built-in vocabulary
func DefaultVocabulary() *Vocabulary {
	amenities := make([]Amenity, len(DefaultAmenities))
	for i, a := range DefaultAmenities {
		amenities[i] = Amenity{
			Feature:  a.Feature,
			Keywords: append([]string(nil), a.Keywords...),
		}
	}
	return &Vocabulary{Amenities: amenities}
}

// LoadVocabulary reads a vocabulary from a JSON file
func LoadVocabulary(path string) (*Vocabulary, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}

	var vocab Vocabulary
	if err := json.Unmarshal(data, &vocab); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary: %w", err)
	}

	for i, a := range vocab.Amenities {
		if !models.IsBooleanFeature(a.Feature) {
			return nil, fmt.Errorf("vocabulary entry %d: %w: %q is not an amenity flag", i, models.ErrUnknownFeature, a.Feature)
		}
		for j, k := range a.Keywords {
			vocab.Amenities[i].Keywords[j] = strings.ToLower(strings.TrimSpace(k))
		}
	}
	return &vocab, nil
}

// GetAmenityFeatures returns the amenity flags the vocabulary can set
func (v *Vocabulary) GetAmenityFeatures() []string {
	names := make([]string, len(v.Amenities))
	for i, a := range v.Amenities {
		names[i] = a.Feature
	}
	return names
}

// Match returns the amenity flags whose keywords occur in text
func (v *Vocabulary) Match(text string) []string {
	text = strings.ToLower(text)
	var matched []string
	for _, a := range v.Amenities {
		for _, k := range a.Keywords {
			if k != "" && strings.Contains(text, k) {
				matched = append(matched, a.Feature)
				break
			}
		}
	}
	return matched
}
