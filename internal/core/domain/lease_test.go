package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestLease_ExpiredAt tests lease expiry boundaries
func TestLease_ExpiredAt(t *testing.T) {
	expiry := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	lease := Lease{
		Holder:     "run-1",
		AcquiredAt: expiry.Add(-DefaultLeaseTTL),
		ExpiresAt:  expiry,
	}

	assert.False(t, lease.ExpiredAt(expiry.Add(-time.Second)))
	// The expiry instant itself counts as lapsed.
	assert.True(t, lease.ExpiredAt(expiry))
	assert.True(t, lease.ExpiredAt(expiry.Add(time.Second)))
}

// TestLease_HeldBy tests ownership checks
func TestLease_HeldBy(t *testing.T) {
	now := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	lease := Lease{
		Holder:     "run-1",
		AcquiredAt: now,
		ExpiresAt:  now.Add(DefaultLeaseTTL),
	}

	assert.True(t, lease.HeldBy("run-1", now))
	assert.False(t, lease.HeldBy("run-2", now))
	assert.False(t, lease.HeldBy("run-1", now.Add(DefaultLeaseTTL)))
}
