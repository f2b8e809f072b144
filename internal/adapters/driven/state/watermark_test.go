package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/trucklake/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/trucklake/internal/core/domain"
)

// TestWatermarkStore_Read_Empty tests that a lake with no watermark
// object reads as the initial sentinel.
func TestWatermarkStore_Read_Empty(t *testing.T) {
	store := NewWatermarkStore(memory.NewObjectStore())

	watermark, err := store.Read(context.Background())

	require.NoError(t, err)
	assert.True(t, watermark.IsInitial())
}

// TestWatermarkStore_CommitThenRead tests the commit-read roundtrip
// with version advancement.
func TestWatermarkStore_CommitThenRead(t *testing.T) {
	store := NewWatermarkStore(memory.NewObjectStore())
	ctx := context.Background()
	value := time.Date(2024, 10, 2, 12, 0, 0, 0, time.UTC)

	err := store.Commit(ctx, domain.InitialWatermark(), value)
	require.NoError(t, err)

	watermark, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, value, watermark.Value)
	assert.Equal(t, int64(1), watermark.Version)
}

// TestWatermarkStore_Commit_Sequential tests that consecutive commits
// keep advancing value and version.
func TestWatermarkStore_Commit_Sequential(t *testing.T) {
	store := NewWatermarkStore(memory.NewObjectStore())
	ctx := context.Background()

	require.NoError(t, store.Commit(ctx, domain.InitialWatermark(),
		time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)))

	first, err := store.Read(ctx)
	require.NoError(t, err)

	next := time.Date(2024, 10, 2, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Commit(ctx, first, next))

	second, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, next, second.Value)
	assert.Equal(t, int64(2), second.Version)
}

// TestWatermarkStore_Commit_VersionMismatch tests that a commit from
// a stale version fails without storing anything.
func TestWatermarkStore_Commit_VersionMismatch(t *testing.T) {
	store := NewWatermarkStore(memory.NewObjectStore())
	ctx := context.Background()
	committed := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Commit(ctx, domain.InitialWatermark(), committed))

	stale := domain.InitialWatermark()
	err := store.Commit(ctx, stale, time.Date(2024, 10, 2, 12, 0, 0, 0, time.UTC))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)

	watermark, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, committed, watermark.Value, "stored watermark untouched")
	assert.Equal(t, int64(1), watermark.Version)
}

// TestWatermarkStore_Commit_NeverRegresses tests that the stored
// value can never move backwards, even with a matching version.
func TestWatermarkStore_Commit_NeverRegresses(t *testing.T) {
	store := NewWatermarkStore(memory.NewObjectStore())
	ctx := context.Background()

	require.NoError(t, store.Commit(ctx, domain.InitialWatermark(),
		time.Date(2024, 10, 2, 12, 0, 0, 0, time.UTC)))
	current, err := store.Read(ctx)
	require.NoError(t, err)

	err = store.Commit(ctx, current, time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestWatermarkStore_Commit_NoStagingResidue tests that commits clean
// up their staged object.
func TestWatermarkStore_Commit_NoStagingResidue(t *testing.T) {
	objects := memory.NewObjectStore()
	store := NewWatermarkStore(objects)
	ctx := context.Background()

	require.NoError(t, store.Commit(ctx, domain.InitialWatermark(),
		time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)))

	staged, err := objects.List(ctx, domain.StagingPrefix)
	require.NoError(t, err)
	assert.Empty(t, staged)
}

// TestWatermarkStore_Read_Corrupt tests that an unreadable watermark
// object surfaces as an error rather than a silent reset.
func TestWatermarkStore_Read_Corrupt(t *testing.T) {
	objects := memory.NewObjectStore()
	store := NewWatermarkStore(objects)
	ctx := context.Background()

	require.NoError(t, objects.Put(ctx, domain.WatermarkKey, []byte("not json")))

	_, err := store.Read(ctx)
	require.Error(t, err)
	assert.ErrorContains(t, err, "decode watermark object")
}
