package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/trucklake/internal/core/domain"
	"github.com/custodia-labs/trucklake/internal/core/ports/driven"
)

// Ensure WatermarkStore implements the interface.
var _ driven.WatermarkStore = (*WatermarkStore)(nil)

// watermarkRecord is the stored JSON shape.
type watermarkRecord struct {
	Value   time.Time `json:"value"`
	Version int64     `json:"version"`
}

// WatermarkStore persists the watermark as a JSON object at a
// well-known lake key. The run lease serialises writers; the stored
// version backs the compare-and-swap check that catches the
// lease-expiry overlap, where a run outlives its lease while a
// successor has already taken over.
type WatermarkStore struct {
	store driven.ObjectStore
}

// NewWatermarkStore creates a watermark store over the given object
// store.
func NewWatermarkStore(store driven.ObjectStore) *WatermarkStore {
	return &WatermarkStore{store: store}
}

// Read returns the stored watermark, or the initial sentinel when no
// run has ever committed.
func (s *WatermarkStore) Read(ctx context.Context) (domain.Watermark, error) {
	data, err := s.store.Get(ctx, domain.WatermarkKey)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.InitialWatermark(), nil
	}
	if err != nil {
		return domain.Watermark{}, fmt.Errorf("read watermark object: %w", err)
	}

	var record watermarkRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return domain.Watermark{}, fmt.Errorf("decode watermark object: %w", err)
	}
	return domain.Watermark{
		Value:   record.Value.UTC(),
		Version: record.Version,
	}, nil
}

// Commit replaces the watermark with expected.Next(value), but only
// when the stored version still matches the version the run started
// from. The new object goes through stage-then-rename like every
// other lake write, so a crash mid-commit leaves the old watermark
// fully intact.
func (s *WatermarkStore) Commit(ctx context.Context, expected domain.Watermark, value time.Time) error {
	current, err := s.Read(ctx)
	if err != nil {
		return err
	}
	if current.Version != expected.Version {
		return fmt.Errorf("%w: stored watermark version is %d, run started from %d",
			domain.ErrConcurrentModification, current.Version, expected.Version)
	}

	next := expected.Next(value)
	if next.Value.Before(current.Value) {
		return fmt.Errorf("%w: watermark cannot regress from %s to %s",
			domain.ErrInvalidInput,
			current.Value.Format(time.RFC3339),
			next.Value.Format(time.RFC3339))
	}

	data, err := json.Marshal(watermarkRecord{
		Value:   next.Value,
		Version: next.Version,
	})
	if err != nil {
		return fmt.Errorf("encode watermark object: %w", err)
	}

	stagingKey := domain.StagingKey(uuid.NewString(), domain.WatermarkKey)
	if err := s.store.Put(ctx, stagingKey, data); err != nil {
		return fmt.Errorf("stage watermark object: %w", err)
	}
	if err := s.store.CommitWrite(ctx, stagingKey, domain.WatermarkKey); err != nil {
		return fmt.Errorf("commit watermark object: %w", err)
	}
	return nil
}
