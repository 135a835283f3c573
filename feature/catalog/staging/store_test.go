package staging

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"catalog-sync/core/database"
	"catalog-sync/core/storage/mocks"
	"catalog-sync/feature/catalog/models"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const payloadJSON = `[
	{"id": 10, "name": "Desk", "price": 120.5, "variations": [{"color": "red", "material": "wood"}]},
	{"id": 11, "name": "Chair", "price": 60, "variations": [{"color": "black", "material": "leather"}]}
]`

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func newStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	db := setupDB(t)
	return NewStore(db, nil, "", zap.NewNop()), db
}

func TestCreateBatch(t *testing.T) {
	store, db := newStore(t)

	batch, err := store.CreateBatch(context.Background(), []byte(payloadJSON))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, batch.Status)
	assert.Equal(t, 2, batch.TotalItems)
	assert.Empty(t, batch.PayloadRef)

	var items []models.StagingItem
	require.NoError(t, db.Where("staging_batch_id = ?", batch.ID).Find(&items).Error)
	require.Len(t, items, 2)
	assert.Equal(t, models.StatusPending, items[0].Status)
	assert.Contains(t, items[0].RawProduct, `"Desk"`)
}

func TestCreateBatchRejectsNonArray(t *testing.T) {
	store, _ := newStore(t)

	batch, err := store.CreateBatch(context.Background(), []byte(`{"not": "an array"}`))
	assert.Error(t, err)
	assert.Nil(t, batch)
}

func TestCreateBatchArchivesPayload(t *testing.T) {
	db := setupDB(t)
	archive := new(mocks.Client)
	archive.On("PutObject", mock.Anything, "catalog-staging", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	store := NewStore(db, archive, "catalog-staging", zap.NewNop())
	batch, err := store.CreateBatch(context.Background(), []byte(payloadJSON))
	require.NoError(t, err)

	assert.Contains(t, batch.PayloadRef, "staging/batch-")
	archive.AssertExpectations(t)
}

func TestCreateBatchSurvivesArchiveFailure(t *testing.T) {
	db := setupDB(t)
	archive := new(mocks.Client)
	archive.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("endpoint down"))

	store := NewStore(db, archive, "catalog-staging", zap.NewNop())
	batch, err := store.CreateBatch(context.Background(), []byte(payloadJSON))
	require.NoError(t, err)
	assert.Empty(t, batch.PayloadRef)
	assert.Equal(t, 2, batch.TotalItems)
}

func TestLoadPayloadPrefersArchive(t *testing.T) {
	db := setupDB(t)
	archive := new(mocks.Client)
	archive.On("GetObject", mock.Anything, "catalog-staging", "staging/batch-x.json", mock.Anything).
		Return(io.NopCloser(bytes.NewReader([]byte(`[1]`))), nil)

	store := NewStore(db, archive, "catalog-staging", zap.NewNop())
	batch := &models.StagingBatch{PayloadRef: "staging/batch-x.json", RawPayload: `[2]`}

	data, err := store.LoadPayload(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(data))
}

func TestLoadPayloadFallsBackToRow(t *testing.T) {
	store, _ := newStore(t)
	batch := &models.StagingBatch{RawPayload: `[2]`}

	data, err := store.LoadPayload(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(data))
}

func TestItemLifecycle(t *testing.T) {
	store, db := newStore(t)
	ctx := context.Background()

	batch, err := store.CreateBatch(ctx, []byte(payloadJSON))
	require.NoError(t, err)
	items, err := store.PendingItems(ctx, batch.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.NoError(t, store.MarkItemProcessing(ctx, items[0].ID))
	var item models.StagingItem
	require.NoError(t, db.First(&item, items[0].ID).Error)
	assert.Equal(t, models.StatusProcessing, item.Status)
	assert.NotNil(t, item.StartedAt)

	require.NoError(t, store.MarkItemDone(ctx, items[0].ID, 10))
	require.NoError(t, db.First(&item, items[0].ID).Error)
	assert.Equal(t, models.StatusDone, item.Status)
	require.NotNil(t, item.ProductID)
	assert.Equal(t, uint64(10), *item.ProductID)
	assert.NotNil(t, item.FinishedAt)

	// Terminal states are written exactly once.
	require.NoError(t, store.MarkItemFailed(ctx, items[0].ID, "late failure"))
	require.NoError(t, db.First(&item, items[0].ID).Error)
	assert.Equal(t, models.StatusDone, item.Status)
	assert.Nil(t, item.ErrorMessage)

	require.NoError(t, store.MarkItemFailed(ctx, items[1].ID, "webhook down"))
	var failedItem models.StagingItem
	require.NoError(t, db.First(&failedItem, items[1].ID).Error)
	assert.Equal(t, models.StatusFailed, failedItem.Status)
	require.NotNil(t, failedItem.ErrorMessage)
	assert.Equal(t, "webhook down", *failedItem.ErrorMessage)
}

func TestCompleteItemTransitionsBatchOnce(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	batch, err := store.CreateBatch(ctx, []byte(payloadJSON))
	require.NoError(t, err)
	require.NoError(t, store.StartBatch(ctx, batch.ID))

	done, err := store.CompleteItem(ctx, batch.ID)
	require.NoError(t, err)
	assert.False(t, done)

	done, err = store.CompleteItem(ctx, batch.ID)
	require.NoError(t, err)
	assert.True(t, done)

	got, err := store.GetBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, got.Status)
	assert.Equal(t, 2, got.ProcessedItems)
	assert.NotNil(t, got.FinishedAt)
	assert.GreaterOrEqual(t, got.DurationSeconds, 0.0)
}

func TestCompleteItemConcurrent(t *testing.T) {
	store, db := newStore(t)
	ctx := context.Background()

	// A batch of 8 items completed from 8 goroutines must end done exactly
	// once with an exact processed count.
	records := `[
		{"id":1},{"id":2},{"id":3},{"id":4},
		{"id":5},{"id":6},{"id":7},{"id":8}
	]`
	batch, err := store.CreateBatch(ctx, []byte(records))
	require.NoError(t, err)
	require.NoError(t, store.StartBatch(ctx, batch.ID))

	var wg sync.WaitGroup
	var mu sync.Mutex
	transitions := 0

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			done, err := store.CompleteItem(ctx, batch.ID)
			assert.NoError(t, err)
			if done {
				mu.Lock()
				transitions++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, transitions)

	var got models.StagingBatch
	require.NoError(t, db.First(&got, batch.ID).Error)
	assert.Equal(t, models.StatusDone, got.Status)
	assert.Equal(t, 8, got.ProcessedItems)
}

func TestFailBatch(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	batch, err := store.CreateBatch(ctx, []byte(payloadJSON))
	require.NoError(t, err)
	require.NoError(t, store.StartBatch(ctx, batch.ID))

	require.NoError(t, store.FailBatch(ctx, batch.ID))
	got, err := store.GetBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
	assert.NotNil(t, got.FinishedAt)

	// A failed batch never becomes done, even when the remaining items
	// complete afterwards.
	_, err = store.CompleteItem(ctx, batch.ID)
	require.NoError(t, err)
	_, err = store.CompleteItem(ctx, batch.ID)
	require.NoError(t, err)

	got, err = store.GetBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
}

func TestGetBatchWithItems(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	batch, err := store.CreateBatch(ctx, []byte(payloadJSON))
	require.NoError(t, err)

	got, err := store.GetBatchWithItems(ctx, batch.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
}
