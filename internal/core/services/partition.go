package services

import (
	"sort"

	"github.com/custodia-labs/trucklake/internal/core/domain"
)

// PartitionRecords groups clean records by the calendar day of their
// business timestamp. Records keep their input order inside each
// batch, so canonically ordered input yields canonically ordered
// partitions.
func PartitionRecords(records []domain.CleanRecord) map[domain.PartitionKey][]domain.CleanRecord {
	out := make(map[domain.PartitionKey][]domain.CleanRecord, 4)
	for _, rec := range records {
		key := domain.PartitionKeyFor(rec.At)
		out[key] = append(out[key], rec)
	}
	return out
}

// PartitionKeys returns the partition map's keys in ascending day
// order, for deterministic iteration and reporting.
func PartitionKeys(partitions map[domain.PartitionKey][]domain.CleanRecord) []domain.PartitionKey {
	keys := make([]domain.PartitionKey, 0, len(partitions))
	for key := range partitions {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Less(keys[j])
	})
	return keys
}

// DimensionsOf rebuilds the run's reference tables from the joined
// attributes carried on each record. When the same identifier appears
// with different attributes the later record wins, matching the
// last-seen rule for facts. Both tables come back ordered by id.
func DimensionsOf(records []domain.CleanRecord) domain.Dimensions {
	trucks := make(map[int64]domain.Truck)
	methods := make(map[int64]domain.PaymentMethod)
	for _, rec := range records {
		trucks[rec.TruckID] = domain.Truck{
			TruckID:       rec.TruckID,
			Name:          rec.TruckName,
			Description:   rec.TruckDescription,
			HasCardReader: rec.HasCardReader,
			FSARating:     rec.FSARating,
		}
		methods[rec.PaymentMethodID] = domain.PaymentMethod{
			PaymentMethodID: rec.PaymentMethodID,
			Method:          rec.PaymentMethod,
		}
	}

	dims := domain.Dimensions{
		Trucks:         make([]domain.Truck, 0, len(trucks)),
		PaymentMethods: make([]domain.PaymentMethod, 0, len(methods)),
	}
	for _, truck := range trucks {
		dims.Trucks = append(dims.Trucks, truck)
	}
	for _, method := range methods {
		dims.PaymentMethods = append(dims.PaymentMethods, method)
	}
	sort.Slice(dims.Trucks, func(i, j int) bool {
		return dims.Trucks[i].TruckID < dims.Trucks[j].TruckID
	})
	sort.Slice(dims.PaymentMethods, func(i, j int) bool {
		return dims.PaymentMethods[i].PaymentMethodID < dims.PaymentMethods[j].PaymentMethodID
	})
	return dims
}
