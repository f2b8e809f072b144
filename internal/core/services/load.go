package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/trucklake/internal/core/domain"
	"github.com/custodia-labs/trucklake/internal/core/ports/driven"
	"github.com/custodia-labs/trucklake/internal/logger"
)

// DefaultLoadConcurrency bounds how many partitions one run writes in
// parallel.
const DefaultLoadConcurrency = 4

// Loader writes encoded objects into the lake. Every write stages the
// complete object under a run-scoped key and publishes it with the
// store's atomic rename, so a consumer never observes a partial
// object. Rewrites merge with existing content, which makes replays
// and overlapping backfills converge on the same bytes.
type Loader struct {
	store       driven.ObjectStore
	codec       driven.RecordCodec
	concurrency int
}

// NewLoader creates a Loader. concurrency bounds parallel partition
// writes; values below one fall back to DefaultLoadConcurrency.
func NewLoader(store driven.ObjectStore, codec driven.RecordCodec, concurrency int) *Loader {
	if concurrency < 1 {
		concurrency = DefaultLoadConcurrency
	}
	return &Loader{
		store:       store,
		codec:       codec,
		concurrency: concurrency,
	}
}

// LoadPartitions writes every partition batch, at most concurrency at
// a time, and returns the committed keys in ascending day order. When
// any partition fails, the returned error is a
// *domain.PartialWriteError listing the keys that committed and every
// key that did not, including batches abandoned once the first
// failure cancelled the group.
func (l *Loader) LoadPartitions(ctx context.Context, runID string, partitions map[domain.PartitionKey][]domain.CleanRecord) ([]domain.PartitionKey, error) {
	keys := PartitionKeys(partitions)
	if len(keys) == 0 {
		return nil, nil
	}

	logger.Debug("Loader: writing %d partitions (concurrency %d)", len(keys), l.concurrency)

	var mu sync.Mutex
	committed := make(map[domain.PartitionKey]bool, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for _, key := range keys {
		g.Go(func() error {
			if err := l.LoadPartition(gctx, runID, key, partitions[key]); err != nil {
				return err
			}
			mu.Lock()
			committed[key] = true
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()

	done := make([]domain.PartitionKey, 0, len(committed))
	for key := range committed {
		done = append(done, key)
	}
	sort.Slice(done, func(i, j int) bool {
		return done[i].Less(done[j])
	})

	if err != nil {
		failed := make([]domain.PartitionKey, 0, len(keys)-len(done))
		for _, key := range keys {
			if !committed[key] {
				failed = append(failed, key)
			}
		}
		return done, &domain.PartialWriteError{
			Committed: done,
			Failed:    failed,
			Err:       err,
		}
	}

	logger.Debug("Loader: committed %d partitions", len(done))
	return done, nil
}

// LoadPartition merges one day's batch into its partition object and
// publishes the rewrite. Existing rows are overlaid by transaction
// identifier with the incoming row winning, then the full set is
// re-sorted and rewritten as one object.
func (l *Loader) LoadPartition(ctx context.Context, runID string, key domain.PartitionKey, records []domain.CleanRecord) error {
	if len(records) == 0 {
		return nil
	}

	finalKey := key.ObjectKey()
	merged, err := l.mergeExisting(ctx, finalKey, records)
	if err != nil {
		return fmt.Errorf("merge partition %s: %w", key, err)
	}

	payload, err := l.codec.EncodeRecords(merged)
	if err != nil {
		return fmt.Errorf("encode partition %s: %w", key, err)
	}

	if err := l.publish(ctx, runID, finalKey, payload); err != nil {
		return fmt.Errorf("publish partition %s: %w", key, err)
	}

	logger.Debug("Loader: partition %s holds %d records after merge", key, len(merged))
	return nil
}

// LoadDimensions merges the run's reference rows into the dimension
// objects and publishes both. Merging is by dimension id with the
// incoming row winning, so trucks and payment methods absent from one
// extraction window keep their rows.
func (l *Loader) LoadDimensions(ctx context.Context, runID string, dims domain.Dimensions) error {
	if dims.Empty() {
		return nil
	}

	trucks, err := l.mergeTrucks(ctx, dims.Trucks)
	if err != nil {
		return fmt.Errorf("merge truck dimension: %w", err)
	}
	methods, err := l.mergePaymentMethods(ctx, dims.PaymentMethods)
	if err != nil {
		return fmt.Errorf("merge payment method dimension: %w", err)
	}

	truckPayload, err := l.codec.EncodeTrucks(trucks)
	if err != nil {
		return fmt.Errorf("encode truck dimension: %w", err)
	}
	methodPayload, err := l.codec.EncodePaymentMethods(methods)
	if err != nil {
		return fmt.Errorf("encode payment method dimension: %w", err)
	}

	if err := l.publish(ctx, runID, domain.TruckDimensionKey, truckPayload); err != nil {
		return fmt.Errorf("publish truck dimension: %w", err)
	}
	if err := l.publish(ctx, runID, domain.PaymentMethodDimensionKey, methodPayload); err != nil {
		return fmt.Errorf("publish payment method dimension: %w", err)
	}

	logger.Debug("Loader: dimensions hold %d trucks, %d payment methods", len(trucks), len(methods))
	return nil
}

// CleanupStaging removes whatever the run left under its staging
// prefix. Calling it when nothing was staged is a no-op.
func (l *Loader) CleanupStaging(ctx context.Context, runID string) error {
	keys, err := l.store.List(ctx, domain.StagingKey(runID, ""))
	if err != nil {
		return fmt.Errorf("list staging objects: %w", err)
	}
	for _, key := range keys {
		if err := l.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete staging object %s: %w", key, err)
		}
	}
	return nil
}

// mergeExisting overlays incoming rows onto the partition's current
// content. A missing object means a fresh partition.
func (l *Loader) mergeExisting(ctx context.Context, finalKey string, incoming []domain.CleanRecord) ([]domain.CleanRecord, error) {
	data, err := l.store.Get(ctx, finalKey)
	if errors.Is(err, domain.ErrNotFound) {
		return incoming, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read existing object: %w", err)
	}

	existing, err := l.codec.DecodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("decode existing object: %w", err)
	}

	byID := make(map[int64]int, len(existing)+len(incoming))
	merged := make([]domain.CleanRecord, 0, len(existing)+len(incoming))
	for _, rec := range existing {
		byID[rec.TransactionID] = len(merged)
		merged = append(merged, rec)
	}
	for _, rec := range incoming {
		if i, ok := byID[rec.TransactionID]; ok {
			merged[i] = rec
			continue
		}
		byID[rec.TransactionID] = len(merged)
		merged = append(merged, rec)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Before(merged[j])
	})
	return merged, nil
}

func (l *Loader) mergeTrucks(ctx context.Context, incoming []domain.Truck) ([]domain.Truck, error) {
	data, err := l.store.Get(ctx, domain.TruckDimensionKey)
	if errors.Is(err, domain.ErrNotFound) {
		return incoming, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read existing object: %w", err)
	}

	existing, err := l.codec.DecodeTrucks(data)
	if err != nil {
		return nil, fmt.Errorf("decode existing object: %w", err)
	}

	byID := make(map[int64]domain.Truck, len(existing)+len(incoming))
	for _, truck := range existing {
		byID[truck.TruckID] = truck
	}
	for _, truck := range incoming {
		byID[truck.TruckID] = truck
	}

	merged := make([]domain.Truck, 0, len(byID))
	for _, truck := range byID {
		merged = append(merged, truck)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].TruckID < merged[j].TruckID
	})
	return merged, nil
}

func (l *Loader) mergePaymentMethods(ctx context.Context, incoming []domain.PaymentMethod) ([]domain.PaymentMethod, error) {
	data, err := l.store.Get(ctx, domain.PaymentMethodDimensionKey)
	if errors.Is(err, domain.ErrNotFound) {
		return incoming, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read existing object: %w", err)
	}

	existing, err := l.codec.DecodePaymentMethods(data)
	if err != nil {
		return nil, fmt.Errorf("decode existing object: %w", err)
	}

	byID := make(map[int64]domain.PaymentMethod, len(existing)+len(incoming))
	for _, method := range existing {
		byID[method.PaymentMethodID] = method
	}
	for _, method := range incoming {
		byID[method.PaymentMethodID] = method
	}

	merged := make([]domain.PaymentMethod, 0, len(byID))
	for _, method := range byID {
		merged = append(merged, method)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].PaymentMethodID < merged[j].PaymentMethodID
	})
	return merged, nil
}

// publish stages the payload under the run's staging prefix and makes
// it visible at finalKey with one atomic rename.
func (l *Loader) publish(ctx context.Context, runID, finalKey string, payload []byte) error {
	stagingKey := domain.StagingKey(runID, finalKey)
	if err := l.store.Put(ctx, stagingKey, payload); err != nil {
		return fmt.Errorf("stage object: %w", err)
	}
	if err := l.store.CommitWrite(ctx, stagingKey, finalKey); err != nil {
		return fmt.Errorf("commit object: %w", err)
	}
	return nil
}
