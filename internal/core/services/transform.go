package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/trucklake/internal/core/domain"
	"github.com/custodia-labs/trucklake/internal/logger"
)

// Transform validates one raw source row and coerces it into a clean
// record. On success it returns the record and nil. When the row must
// be excluded it returns the zero record and the reason.
//
// Checks run in a fixed order and the first failure classifies the
// exclusion: identifying fields, dimension keys, timestamp parse,
// total parse. Transform is pure; duplicate detection needs the whole
// batch and lives on Transformer.
func Transform(raw domain.RawRecord) (domain.CleanRecord, *domain.SkipReason) {
	if raw.TransactionID == nil || raw.At == "" {
		return skipped(domain.SkipMissingKey)
	}
	if raw.TruckID == nil || raw.PaymentMethodID == nil {
		return skipped(domain.SkipMissingDimension)
	}

	at, err := time.ParseInLocation(domain.SourceTimeLayout, raw.At, time.UTC)
	if err != nil {
		return skipped(domain.SkipInvalidTimestamp)
	}

	pence, ok := parsePence(raw.Total)
	if !ok {
		return skipped(domain.SkipInvalidTotal)
	}

	clean := domain.CleanRecord{
		TransactionID:    *raw.TransactionID,
		At:               at,
		TotalPence:       pence,
		TruckID:          *raw.TruckID,
		PaymentMethodID:  *raw.PaymentMethodID,
		TruckName:        raw.TruckName,
		TruckDescription: raw.TruckDescription,
		PaymentMethod:    raw.PaymentMethod,
	}
	if raw.HasCardReader != nil {
		clean.HasCardReader = *raw.HasCardReader
	}
	if raw.FSARating != nil {
		clean.FSARating = *raw.FSARating
	}
	return clean, nil
}

// parsePence coerces the source's total text into exact pence.
// Tills record whole pence, so a fractional value is corrupt rather
// than a rounding case. Zero-value rows are till noise and excluded.
// Negative totals are refunds and pass through.
func parsePence(text string) (int64, bool) {
	if text == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, false
	}
	if d.IsZero() || !d.IsInteger() {
		return 0, false
	}
	return d.IntPart(), true
}

func skipped(reason domain.SkipReason) (domain.CleanRecord, *domain.SkipReason) {
	return domain.CleanRecord{}, &reason
}

// rowRef describes a raw row for skip logs without assuming any field
// is present.
func rowRef(raw domain.RawRecord) string {
	if raw.TransactionID != nil {
		return fmt.Sprintf("transaction %d", *raw.TransactionID)
	}
	return "row without id"
}

// Transformer folds one run's raw records into a deduplicated,
// ordered batch of clean records, counting every exclusion by reason.
//
// Deduplication is by transaction identifier with last-seen wins: the
// source can emit the same transaction more than once inside a single
// extraction window, and the later emission carries the later state.
// Transformer is not safe for concurrent use; each run owns its own.
type Transformer struct {
	index   map[int64]int
	records []domain.CleanRecord
	skips   map[domain.SkipReason]int
}

// NewTransformer creates an empty Transformer for one run.
func NewTransformer() *Transformer {
	return &Transformer{
		index: make(map[int64]int),
		skips: make(map[domain.SkipReason]int),
	}
}

// Add validates one raw record and folds it into the batch. It
// returns the skip reason recorded for the row, or nil when the batch
// accepted a new record. A duplicate identifier replaces the earlier
// record in place and is counted as a skip.
func (t *Transformer) Add(raw domain.RawRecord) *domain.SkipReason {
	clean, reason := Transform(raw)
	if reason != nil {
		t.skips[*reason]++
		logger.Debug("Transform: %s skipped: %s", rowRef(raw), reason)
		return reason
	}

	if i, ok := t.index[clean.TransactionID]; ok {
		t.records[i] = clean
		t.skips[domain.SkipDuplicate]++
		logger.Debug("Transform: transaction %d emitted again, keeping the later row", clean.TransactionID)
		dup := domain.SkipDuplicate
		return &dup
	}

	t.index[clean.TransactionID] = len(t.records)
	t.records = append(t.records, clean)
	return nil
}

// Records returns the accepted records ordered by business timestamp,
// ties broken by transaction identifier. The returned slice is a
// copy; further Add calls do not mutate it.
func (t *Transformer) Records() []domain.CleanRecord {
	out := make([]domain.CleanRecord, len(t.records))
	copy(out, t.records)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Before(out[j])
	})
	return out
}

// Skips returns a copy of the exclusion counts keyed by reason.
// Reasons with no occurrences are absent.
func (t *Transformer) Skips() map[domain.SkipReason]int {
	out := make(map[domain.SkipReason]int, len(t.skips))
	for reason, n := range t.skips {
		out[reason] = n
	}
	return out
}
