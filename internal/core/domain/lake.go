package domain

// Lake layout. These addresses are a published interface: downstream
// consumers read them directly, so changing one is a breaking change.
const (
	// FactDataset is the root prefix for partitioned transaction
	// objects.
	FactDataset = "transactions"

	// DimensionDataset is the root prefix for dimension objects.
	DimensionDataset = "dimensions"

	// TruckDimensionKey addresses the truck reference table.
	TruckDimensionKey = DimensionDataset + "/dim_trucks.parquet"

	// PaymentMethodDimensionKey addresses the payment-method reference
	// table.
	PaymentMethodDimensionKey = DimensionDataset + "/dim_payment_methods.parquet"

	// WatermarkKey addresses the pipeline watermark object.
	WatermarkKey = "pipeline-state/watermark.json"

	// LeaseKey addresses the run lease object.
	LeaseKey = "pipeline-state/lease.json"

	// StagingPrefix is the namespace for uncommitted run-scoped
	// writes. Objects here are invisible to consumers until committed
	// to their final address.
	StagingPrefix = "pipeline-state/staging"

	// ReportPrefix is the namespace for generated daily reports.
	ReportPrefix = "reports"
)

// StagingKey returns the staging address a run uses while writing the
// object that will be committed at finalKey.
func StagingKey(runID, finalKey string) string {
	return StagingPrefix + "/" + runID + "/" + finalKey
}
