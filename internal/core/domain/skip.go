package domain

// SkipReason classifies why the Transformer excluded a raw record.
// Skips are counted for observability; they never fail a run.
type SkipReason int

const (
	// SkipMissingKey marks a row lacking its primary key or business
	// timestamp. Without either, the row cannot be placed or deduped.
	SkipMissingKey SkipReason = iota

	// SkipMissingDimension marks a row lacking a foreign key needed to
	// join dimension context.
	SkipMissingDimension

	// SkipInvalidTimestamp marks a row whose business timestamp is
	// present but unparseable.
	SkipInvalidTimestamp

	// SkipInvalidTotal marks a row whose total is absent, unparseable,
	// fractional pence, or zero. Negative totals pass: refunds.
	SkipInvalidTotal

	// SkipDuplicate marks a row displaced by a later row with the same
	// primary key in the same run (last-seen wins).
	SkipDuplicate
)

// String returns the snake_case name used in logs and run summaries.
func (r SkipReason) String() string {
	switch r {
	case SkipMissingKey:
		return "missing_key"
	case SkipMissingDimension:
		return "missing_dimension"
	case SkipInvalidTimestamp:
		return "invalid_timestamp"
	case SkipInvalidTotal:
		return "invalid_total"
	case SkipDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// SkipReasons lists every reason in a stable order, for summaries.
var SkipReasons = []SkipReason{
	SkipMissingKey,
	SkipMissingDimension,
	SkipInvalidTimestamp,
	SkipInvalidTotal,
	SkipDuplicate,
}
