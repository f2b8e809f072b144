package domain

import (
	"fmt"
	"time"
)

// PartitionKey addresses one day's storage unit in the lake. It is
// derived from a record's business timestamp, never from run time, so
// reprocessing a historical window always lands on the same partitions.
type PartitionKey struct {
	// Year is the calendar year, e.g. 2024.
	Year int

	// Month is the calendar month, 1-12. Unpadded in object keys.
	Month int

	// Day is the day of month, 1-31. Unpadded in object keys.
	Day int
}

// PartitionKeyFor returns the partition for a business timestamp.
// The UTC calendar date decides the partition.
func PartitionKeyFor(at time.Time) PartitionKey {
	utc := at.UTC()
	return PartitionKey{
		Year:  utc.Year(),
		Month: int(utc.Month()),
		Day:   utc.Day(),
	}
}

// Prefix returns the lake key prefix for this partition, e.g.
// "transactions/year=2024/month=10/day=1/".
func (k PartitionKey) Prefix() string {
	return fmt.Sprintf("%s/year=%d/month=%d/day=%d/", FactDataset, k.Year, k.Month, k.Day)
}

// ObjectKey returns the canonical object holding this partition's
// rows. One object per partition keeps merge rewrites atomic.
func (k PartitionKey) ObjectKey() string {
	return k.Prefix() + "transactions.parquet"
}

// String formats the key as its calendar date, e.g. "2024-10-01".
func (k PartitionKey) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", k.Year, k.Month, k.Day)
}

// Less orders partition keys chronologically.
func (k PartitionKey) Less(other PartitionKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	if k.Month != other.Month {
		return k.Month < other.Month
	}
	return k.Day < other.Day
}
