package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"fundamental/pricing/internal/models"
)

var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrNoModel          = errors.New("no model snapshot stored")
)

// PropertyRow is the stored form of extracted property features
type PropertyRow struct {
	ID               uint     `gorm:"primaryKey"`
	ReferenceID      string   `gorm:"uniqueIndex;not null"`
	TotalSqft        float64  `gorm:"not null"`
	Bedrooms         int      `gorm:"not null"`
	Bathrooms        float64  `gorm:"not null"`
	RoomCount        int      `gorm:"not null"`
	AvgRoomSqft      float64  `gorm:"not null"`
	NumDoors         int      `gorm:"not null"`
	NumWindows       int      `gorm:"not null"`
	HasGarage        bool     `gorm:"not null"`
	HasFireplace     bool     `gorm:"not null"`
	HasBalcony       bool     `gorm:"not null"`
	HasClosets       bool     `gorm:"not null"`
	LabelPrice       *float64 `gorm:"index"`
	LargestRoomSqft  float64
	SmallestRoomSqft float64
	Latitude         *float64 `gorm:"index:idx_property_rows_coordinates"`
	Longitude        *float64 `gorm:"index:idx_property_rows_coordinates"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ModelSnapshot stores a trained model as JSON
type ModelSnapshot struct {
	ID               string    `gorm:"primaryKey"`
	Kind             string    `gorm:"not null"`
	TrainingRowCount int       `gorm:"not null"`
	RSquared         float64   `gorm:"not null"`
	TrainedAt        time.Time `gorm:"index;not null"`
	Payload          string    `gorm:"type:text;not null"`
	CreatedAt        time.Time
}

// upsertColumns are overwritten when a reference id is ingested again
var upsertColumns = []string{
	"total_sqft", "bedrooms", "bathrooms", "room_count", "avg_room_sqft",
	"num_doors", "num_windows", "has_garage", "has_fireplace", "has_balcony", "has_closets",
	"label_price", "largest_room_sqft", "smallest_room_sqft", "latitude", "longitude", "updated_at",
}

// NewDatabase opens the sqlite database at dbPath, creating its directory if needed
func NewDatabase(dbPath string) (*gorm.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// NewTestDB opens a private in-memory database
func NewTestDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:test_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open test database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// UpsertProperties inserts rows, replacing any existing row with the same reference id
func UpsertProperties(tx *gorm.DB, properties []models.PropertyFeatures) error {
	if len(properties) == 0 {
		return nil
	}
	rows := make([]PropertyRow, len(properties))
	for i, p := range properties {
		rows[i] = rowFromFeatures(p)
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "reference_id"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(&rows).Error
}

// GetProperty returns the stored features of one property
func GetProperty(db *gorm.DB, referenceID string) (*models.PropertyFeatures, error) {
	var row PropertyRow
	err := db.Where("reference_id = ?", referenceID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrPropertyNotFound, referenceID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load property %s: %w", referenceID, err)
	}
	f := row.Features()
	return &f, nil
}

// CountProperties returns the number of stored properties and how many carry a label
func CountProperties(db *gorm.DB) (total, labeled int64, err error) {
	if err = db.Model(&PropertyRow{}).Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count properties: %w", err)
	}
	if err = db.Model(&PropertyRow{}).Where("label_price IS NOT NULL").Count(&labeled).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count labeled properties: %w", err)
	}
	return total, labeled, nil
}

// trainableRows selects rows usable for training
const trainableRows = "label_price IS NOT NULL AND label_price >= 0 AND total_sqft > 0"

// CorpusStamp identifies a state of the training corpus. Any insert or re-ingested
// row changes it.
type CorpusStamp struct {
	Rows        int64
	LastUpdated time.Time
}

// Equal reports whether two stamps describe the same corpus state
func (s CorpusStamp) Equal(other CorpusStamp) bool {
	return s.Rows == other.Rows && s.LastUpdated.Equal(other.LastUpdated)
}

// TrainingCorpusStamp returns the size and latest update time of the training corpus
func TrainingCorpusStamp(db *gorm.DB) (CorpusStamp, error) {
	var stamp CorpusStamp
	if err := db.Model(&PropertyRow{}).Where(trainableRows).Count(&stamp.Rows).Error; err != nil {
		return stamp, fmt.Errorf("failed to count training rows: %w", err)
	}
	if stamp.Rows == 0 {
		return stamp, nil
	}
	var latest PropertyRow
	err := db.Select("updated_at").Where(trainableRows).Order("updated_at DESC").Take(&latest).Error
	if err != nil {
		return stamp, fmt.Errorf("failed to read training corpus update time: %w", err)
	}
	stamp.LastUpdated = latest.UpdatedAt
	return stamp, nil
}

// LoadTrainingCorpus returns every stored property usable as a training row
func LoadTrainingCorpus(db *gorm.DB) ([]models.PropertyFeatures, error) {
	var rows []PropertyRow
	err := db.Where(trainableRows).
		Order("reference_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load training corpus: %w", err)
	}
	corpus := make([]models.PropertyFeatures, len(rows))
	for i, row := range rows {
		corpus[i] = row.Features()
	}
	return corpus, nil
}

// SaveModel stores a snapshot of a trained model
func SaveModel(db *gorm.DB, model *models.RegressionModel) error {
	payload, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("failed to encode model %s: %w", model.ID, err)
	}
	snapshot := ModelSnapshot{
		ID:               model.ID,
		Kind:             string(model.Kind),
		TrainingRowCount: model.TrainingRowCount,
		RSquared:         model.Metrics.RSquared,
		TrainedAt:        model.TrainedAt,
		Payload:          string(payload),
	}
	if err := db.Create(&snapshot).Error; err != nil {
		return fmt.Errorf("failed to save model %s: %w", model.ID, err)
	}
	return nil
}

// LatestModel loads the most recently trained snapshot
func LatestModel(db *gorm.DB) (*models.RegressionModel, error) {
	var snapshot ModelSnapshot
	err := db.Order("trained_at DESC").First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoModel
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest model: %w", err)
	}

	var model models.RegressionModel
	if err := json.Unmarshal([]byte(snapshot.Payload), &model); err != nil {
		return nil, fmt.Errorf("failed to decode model %s: %w", snapshot.ID, err)
	}
	return &model, nil
}

func rowFromFeatures(f models.PropertyFeatures) PropertyRow {
	return PropertyRow{
		ReferenceID:      f.ReferenceID,
		TotalSqft:        f.TotalSqft,
		Bedrooms:         f.Bedrooms,
		Bathrooms:        f.Bathrooms,
		RoomCount:        f.RoomCount,
		AvgRoomSqft:      f.AvgRoomSqft,
		NumDoors:         f.NumDoors,
		NumWindows:       f.NumWindows,
		HasGarage:        f.HasGarage,
		HasFireplace:     f.HasFireplace,
		HasBalcony:       f.HasBalcony,
		HasClosets:       f.HasClosets,
		LabelPrice:       f.LabelPrice,
		LargestRoomSqft:  f.LargestRoomSqft,
		SmallestRoomSqft: f.SmallestRoomSqft,
		Latitude:         f.Latitude,
		Longitude:        f.Longitude,
	}
}

// Features converts a stored row back to PropertyFeatures
func (r PropertyRow) Features() models.PropertyFeatures {
	return models.PropertyFeatures{
		ReferenceID:      r.ReferenceID,
		TotalSqft:        r.TotalSqft,
		Bedrooms:         r.Bedrooms,
		Bathrooms:        r.Bathrooms,
		RoomCount:        r.RoomCount,
		AvgRoomSqft:      r.AvgRoomSqft,
		NumDoors:         r.NumDoors,
		NumWindows:       r.NumWindows,
		HasGarage:        r.HasGarage,
		HasFireplace:     r.HasFireplace,
		HasBalcony:       r.HasBalcony,
		HasClosets:       r.HasClosets,
		LabelPrice:       r.LabelPrice,
		LargestRoomSqft:  r.LargestRoomSqft,
		SmallestRoomSqft: r.SmallestRoomSqft,
		Latitude:         r.Latitude,
		Longitude:        r.Longitude,
	}
}
