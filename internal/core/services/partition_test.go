package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/trucklake/internal/core/domain"
)

func cleanAt(id int64, at time.Time) domain.CleanRecord {
	return domain.CleanRecord{
		TransactionID:   id,
		At:              at,
		TotalPence:      500,
		TruckID:         1,
		PaymentMethodID: 1,
		TruckName:       "Yoghurt Heaven",
		PaymentMethod:   "cash",
	}
}

// TestPartitionRecords_SplitsByBusinessDate tests that records land
// in the partition of their business timestamp's calendar day, with a
// midnight-straddling batch splitting across two days.
func TestPartitionRecords_SplitsByBusinessDate(t *testing.T) {
	records := []domain.CleanRecord{
		cleanAt(1, time.Date(2024, 10, 1, 23, 59, 0, 0, time.UTC)),
		cleanAt(2, time.Date(2024, 10, 2, 0, 1, 0, 0, time.UTC)),
		cleanAt(3, time.Date(2024, 10, 2, 12, 0, 0, 0, time.UTC)),
	}

	partitions := PartitionRecords(records)

	require.Len(t, partitions, 2)
	first := domain.PartitionKey{Year: 2024, Month: 10, Day: 1}
	second := domain.PartitionKey{Year: 2024, Month: 10, Day: 2}
	require.Len(t, partitions[first], 1)
	require.Len(t, partitions[second], 2)
	assert.Equal(t, int64(1), partitions[first][0].TransactionID)
	assert.Equal(t, int64(2), partitions[second][0].TransactionID)
	assert.Equal(t, int64(3), partitions[second][1].TransactionID)
}

// TestPartitionRecords_Empty tests that an empty batch yields no
// partitions.
func TestPartitionRecords_Empty(t *testing.T) {
	assert.Empty(t, PartitionRecords(nil))
}

// TestPartitionKeys_Sorted tests that keys come back in ascending day
// order across month boundaries.
func TestPartitionKeys_Sorted(t *testing.T) {
	partitions := PartitionRecords([]domain.CleanRecord{
		cleanAt(1, time.Date(2024, 11, 1, 10, 0, 0, 0, time.UTC)),
		cleanAt(2, time.Date(2024, 10, 31, 10, 0, 0, 0, time.UTC)),
		cleanAt(3, time.Date(2024, 10, 2, 10, 0, 0, 0, time.UTC)),
	})

	keys := PartitionKeys(partitions)

	require.Len(t, keys, 3)
	assert.Equal(t, domain.PartitionKey{Year: 2024, Month: 10, Day: 2}, keys[0])
	assert.Equal(t, domain.PartitionKey{Year: 2024, Month: 10, Day: 31}, keys[1])
	assert.Equal(t, domain.PartitionKey{Year: 2024, Month: 11, Day: 1}, keys[2])
}

// TestDimensionsOf_Dedupes tests that repeated identifiers collapse
// to one row each, ordered by id, with the later attributes winning.
func TestDimensionsOf_Dedupes(t *testing.T) {
	records := []domain.CleanRecord{
		{
			TransactionID: 1, TruckID: 2, PaymentMethodID: 1,
			TruckName: "Cupcakes by Michelle", PaymentMethod: "cash",
			FSARating: 4,
		},
		{
			TransactionID: 2, TruckID: 1, PaymentMethodID: 2,
			TruckName: "Burrito Madness", PaymentMethod: "card",
			HasCardReader: true, FSARating: 5,
		},
		{
			TransactionID: 3, TruckID: 2, PaymentMethodID: 1,
			TruckName: "Cupcakes by Michelle", PaymentMethod: "cash",
			FSARating: 5,
		},
	}

	dims := DimensionsOf(records)

	require.Len(t, dims.Trucks, 2)
	assert.Equal(t, int64(1), dims.Trucks[0].TruckID)
	assert.Equal(t, "Burrito Madness", dims.Trucks[0].Name)
	assert.Equal(t, int64(2), dims.Trucks[1].TruckID)
	assert.Equal(t, int64(5), dims.Trucks[1].FSARating, "later rating wins")

	require.Len(t, dims.PaymentMethods, 2)
	assert.Equal(t, "cash", dims.PaymentMethods[0].Method)
	assert.Equal(t, "card", dims.PaymentMethods[1].Method)
}

// TestDimensionsOf_Empty tests that no records yields empty tables.
func TestDimensionsOf_Empty(t *testing.T) {
	assert.True(t, DimensionsOf(nil).Empty())
}
