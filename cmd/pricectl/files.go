package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"fundamental/pricing/internal/models"
)

// loadRecords reads a YAML or JSON list of property records
func loadRecords(path string) ([]models.PropertyRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var records []models.PropertyRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}

// loadRecord reads a single YAML or JSON property record
func loadRecord(path string) (models.PropertyRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.PropertyRecord{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var record models.PropertyRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return models.PropertyRecord{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return record, nil
}

func loadModel(path string) (*models.RegressionModel, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s does not exist", models.ErrModelNotTrained, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var model models.RegressionModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("failed to parse model %s: %w", path, err)
	}
	return &model, nil
}

func saveModel(path string, model *models.RegressionModel) error {
	data, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
