package domain

import "time"

// Watermark is the durable high-water mark of source business time
// fully committed to the lake. Value never decreases across the
// system's lifetime and never exceeds the maximum business timestamp
// actually present in the lake. Version changes on every commit and
// backs the optimistic concurrency check.
type Watermark struct {
	// Value is the maximum business timestamp confirmed fully
	// committed. The zero time is the "beginning of time" sentinel.
	Value time.Time

	// Version counts commits and serves as the compare-and-swap token.
	// Zero means no run has ever committed.
	Version int64
}

// InitialWatermark returns the sentinel watermark in force before any
// run has committed. An extraction from it covers all source history.
func InitialWatermark() Watermark {
	return Watermark{}
}

// IsInitial reports whether no run has ever committed this watermark.
func (w Watermark) IsInitial() bool {
	return w.Version == 0 && w.Value.IsZero()
}

// Next returns the watermark that a successful commit of value on top
// of w produces.
func (w Watermark) Next(value time.Time) Watermark {
	return Watermark{Value: value.UTC(), Version: w.Version + 1}
}
