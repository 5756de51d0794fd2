package processor

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"fundamental/pricing/internal/database"
	"fundamental/pricing/internal/models"
	"fundamental/pricing/internal/queue"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.NewTestDB()
	require.NoError(t, err)

	err = database.MigrateSchema(db)
	require.NoError(t, err)

	return db
}

func TestBatchProcessingIntegration(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()

	propertyQueue := queue.NewPropertyQueue(10, quietLogger())
	processor := NewBatchProcessor(db, propertyQueue, nil, cfg, quietLogger())
	processor.Start()
	defer processor.Stop()

	kitchen := "12x10"
	price := 350000.0
	batch := []models.PropertyRecord{
		{
			ReferenceID: "listing-1",
			Rooms: []models.Room{
				{Type: "kitchen", Dimensions: &kitchen, Features: []string{"window"}},
				{Type: "garage"},
			},
			Features:   []string{"Fireplace"},
			LabelPrice: &price,
		},
		record("listing-2", 1400),
	}
	require.NoError(t, processor.Submit(batch))

	require.Eventually(t, func() bool {
		total, _, err := database.CountProperties(db)
		return err == nil && total == 2
	}, 5*time.Second, 20*time.Millisecond)

	stored, err := database.GetProperty(db, "listing-1")
	require.NoError(t, err)
	assert.Equal(t, 120.0, stored.TotalSqft)
	assert.True(t, stored.HasGarage)
	assert.True(t, stored.HasFireplace)
	assert.Equal(t, 1, stored.NumWindows)
	assert.Equal(t, price, *stored.LabelPrice)
}

func TestBatchProcessingWithConcurrency(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	cfg.BatchProcessing.MaxBatchSize = 50

	propertyQueue := queue.NewPropertyQueue(10, quietLogger())
	processor := NewBatchProcessor(db, propertyQueue, nil, cfg, quietLogger())
	processor.Start()
	defer processor.Stop()

	testBatches := make([][]models.PropertyRecord, 5)
	for i := range testBatches {
		batch := make([]models.PropertyRecord, 20)
		for j := range batch {
			batch[j] = record(fmt.Sprintf("listing-%d-%d", i, j), float64(800+i*100+j))
		}
		testBatches[i] = batch
	}

	var wg sync.WaitGroup
	for _, batch := range testBatches {
		wg.Add(1)
		go func(records []models.PropertyRecord) {
			defer wg.Done()
			assert.NoError(t, processor.Submit(records))
		}(batch)
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		total, _, err := database.CountProperties(db)
		return err == nil && total == 100
	}, 5*time.Second, 20*time.Millisecond)
}
