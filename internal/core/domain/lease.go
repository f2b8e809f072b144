package domain

import "time"

// DefaultLeaseTTL bounds how long a crashed run can block the
// pipeline before its lease lapses.
const DefaultLeaseTTL = 15 * time.Minute

// Lease is the run-level mutual-exclusion token. A run acquires it
// before reading the watermark and releases it at a terminal state; a
// crashed run's lease simply expires, after which the next run may
// take it over.
type Lease struct {
	// Holder identifies the run holding the lease.
	Holder string

	// AcquiredAt is when the lease was taken.
	AcquiredAt time.Time

	// ExpiresAt is when the lease lapses unless released first.
	ExpiresAt time.Time
}

// ExpiredAt reports whether the lease has lapsed at the given instant.
func (l Lease) ExpiredAt(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// HeldBy reports whether the lease is live and owned by holder at the
// given instant.
func (l Lease) HeldBy(holder string, now time.Time) bool {
	return l.Holder == holder && !l.ExpiredAt(now)
}
