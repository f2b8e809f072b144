package domain

import "time"

// DailyReport is the financial summary computed from one day's
// completed partition. Money fields are exact pence; percentage
// shares are presentation values rounded at render time.
type DailyReport struct {
	// Date is the partition day the report covers.
	Date PartitionKey

	// GeneratedAt is when the report was computed.
	GeneratedAt time.Time

	// TotalTransactions counts rows in the day's partition.
	TotalTransactions int

	// TotalRevenuePence is the day's gross revenue.
	TotalRevenuePence int64

	// AverageTransactionPence is the mean gross per transaction,
	// rounded to the nearest penny.
	AverageTransactionPence int64

	// CardCostsPence estimates card processing fees across card
	// payment methods.
	CardCostsPence int64

	// NetRevenuePence is gross revenue minus card processing costs.
	NetRevenuePence int64

	// BestTruck and WorstTruck name the top and bottom earners.
	BestTruck  string
	WorstTruck string

	// BestTruckRevenuePence and WorstTruckRevenuePence are their
	// gross takes.
	BestTruckRevenuePence  int64
	WorstTruckRevenuePence int64

	// Trucks ranks every truck by revenue, highest first.
	Trucks []TruckPerformance

	// PaymentMethods breaks the day down by payment method.
	PaymentMethods []PaymentMethodBreakdown
}

// TruckPerformance summarises one truck's day.
type TruckPerformance struct {
	// Name is the truck's display name.
	Name string

	// Transactions counts the truck's sales.
	Transactions int

	// RevenuePence is the truck's gross take.
	RevenuePence int64

	// AverageTransactionPence is the truck's mean sale, rounded to the
	// nearest penny.
	AverageTransactionPence int64

	// RevenueShare is the truck's percentage of the day's gross, 0-100.
	RevenueShare float64
}

// PaymentMethodBreakdown summarises one payment method's day.
type PaymentMethodBreakdown struct {
	// Method is the payment-method label.
	Method string

	// Transactions counts sales taken by this method.
	Transactions int

	// RevenuePence is the method's gross take.
	RevenuePence int64

	// ProcessingCostPence estimates the processing fee for card
	// methods. Zero for fee-free methods.
	ProcessingCostPence int64

	// RevenueShare is the method's percentage of the day's gross,
	// 0-100.
	RevenueShare float64
}

// ReportObjectKey returns the lake address a rendered report is stored
// at, e.g. "reports/daily-report-2024-10-01.html".
func ReportObjectKey(day PartitionKey) string {
	return ReportPrefix + "/daily-report-" + day.String() + ".html"
}
