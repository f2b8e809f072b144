package domain

import "time"

// SourceTimeLayout is the timestamp format used by the operational
// store: DATETIME columns at second precision, no zone marker.
// Values are interpreted as UTC.
const SourceTimeLayout = "2006-01-02 15:04:05"

// RawRecord is one row of the extraction query, before validation or
// coercion. Nullable columns are pointers; the business timestamp and
// the total keep the source's text representation so the Transformer
// owns every parsing decision.
type RawRecord struct {
	// TransactionID is the source primary key. Nil when the row
	// carries none.
	TransactionID *int64

	// At is the business timestamp text in SourceTimeLayout.
	// Empty when the row carries none.
	At string

	// Total is the gross amount in pence, as decimal text.
	// Empty when the row carries none.
	Total string

	// TruckID references the truck dimension. Nil when absent.
	TruckID *int64

	// PaymentMethodID references the payment-method dimension.
	// Nil when absent.
	PaymentMethodID *int64

	// TruckName is joined truck context.
	TruckName string

	// TruckDescription is joined truck context.
	TruckDescription string

	// HasCardReader is joined truck context captured at the time of
	// sale. Nil when absent.
	HasCardReader *bool

	// FSARating is the truck's food-hygiene rating. Nil when absent.
	FSARating *int64

	// PaymentMethod is the joined payment-method label.
	PaymentMethod string
}

// CleanRecord is a validated transaction ready for partitioning and
// loading. Immutable once produced; uniquely identified by
// TransactionID. The joined dimension attributes ride along into the
// lake so a single partition object answers reporting queries without
// further joins.
type CleanRecord struct {
	// TransactionID is the source primary key.
	TransactionID int64

	// At is the business timestamp in UTC.
	At time.Time

	// TotalPence is the gross amount in pence. Negative for refunds.
	TotalPence int64

	// TruckID references the truck dimension.
	TruckID int64

	// PaymentMethodID references the payment-method dimension.
	PaymentMethodID int64

	// TruckName is the denormalised truck name.
	TruckName string

	// TruckDescription is the denormalised truck description.
	TruckDescription string

	// HasCardReader records whether the truck carried a card reader
	// when the sale happened.
	HasCardReader bool

	// FSARating is the denormalised food-hygiene rating. Zero when the
	// source carried none.
	FSARating int64

	// PaymentMethod is the denormalised payment-method label.
	PaymentMethod string
}

// Before orders records by business timestamp, ties broken by primary
// key. This is the canonical order inside a partition object.
func (r CleanRecord) Before(other CleanRecord) bool {
	if !r.At.Equal(other.At) {
		return r.At.Before(other.At)
	}
	return r.TransactionID < other.TransactionID
}
