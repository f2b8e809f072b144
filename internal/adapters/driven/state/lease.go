package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/trucklake/internal/core/domain"
	"github.com/custodia-labs/trucklake/internal/core/ports/driven"
	"github.com/custodia-labs/trucklake/internal/logger"
)

// Ensure RunLock implements the interface.
var _ driven.RunLock = (*RunLock)(nil)

// leaseRecord is the stored JSON shape.
type leaseRecord struct {
	Holder     string    `json:"holder"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// RunLock persists the run lease as a JSON object at a well-known
// lake key. Acquisition is read-judge-write: triggers fire seconds
// apart, not microseconds, so read-after-write visibility carries the
// contention guard, and the watermark's version check backs it up for
// the lease-expiry overlap.
type RunLock struct {
	store driven.ObjectStore

	// now is replaceable for tests.
	now func() time.Time
}

// NewRunLock creates a run lock over the given object store.
func NewRunLock(store driven.ObjectStore) *RunLock {
	return &RunLock{
		store: store,
		now:   time.Now,
	}
}

// Acquire takes the lease for holder. A live lease owned elsewhere
// fails with domain.ErrLockUnavailable; a lapsed lease is taken over.
func (l *RunLock) Acquire(ctx context.Context, holder string, ttl time.Duration) (domain.Lease, error) {
	current, err := l.Current(ctx)
	if err != nil {
		return domain.Lease{}, err
	}

	now := l.now().UTC()
	if current != nil {
		if !current.ExpiredAt(now) && current.Holder != holder {
			return domain.Lease{}, fmt.Errorf("%w: lease held by %s until %s",
				domain.ErrLockUnavailable, current.Holder,
				current.ExpiresAt.Format(time.RFC3339))
		}
		if current.ExpiredAt(now) {
			logger.Warn("RunLock: taking over lapsed lease from %s (expired %s)",
				current.Holder, current.ExpiresAt.Format(time.RFC3339))
		}
	}

	lease := domain.Lease{
		Holder:     holder,
		AcquiredAt: now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := l.write(ctx, lease); err != nil {
		return domain.Lease{}, err
	}
	return lease, nil
}

// Release frees the lease if holder still owns it. A lease that
// lapsed and was taken over belongs to someone else now; releasing it
// is a no-op, not an error.
func (l *RunLock) Release(ctx context.Context, holder string) error {
	current, err := l.Current(ctx)
	if err != nil {
		return err
	}
	if current == nil || current.Holder != holder {
		return nil
	}
	if err := l.store.Delete(ctx, domain.LeaseKey); err != nil {
		return fmt.Errorf("delete lease object: %w", err)
	}
	return nil
}

// Current returns the lease on record, expired or not, or nil when no
// lease object exists.
func (l *RunLock) Current(ctx context.Context) (*domain.Lease, error) {
	data, err := l.store.Get(ctx, domain.LeaseKey)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read lease object: %w", err)
	}

	var record leaseRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode lease object: %w", err)
	}
	return &domain.Lease{
		Holder:     record.Holder,
		AcquiredAt: record.AcquiredAt.UTC(),
		ExpiresAt:  record.ExpiresAt.UTC(),
	}, nil
}

func (l *RunLock) write(ctx context.Context, lease domain.Lease) error {
	data, err := json.Marshal(leaseRecord{
		Holder:     lease.Holder,
		AcquiredAt: lease.AcquiredAt,
		ExpiresAt:  lease.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("encode lease object: %w", err)
	}
	if err := l.store.Put(ctx, domain.LeaseKey, data); err != nil {
		return fmt.Errorf("write lease object: %w", err)
	}
	return nil
}
