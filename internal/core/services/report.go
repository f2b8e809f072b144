package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"

	"github.com/custodia-labs/trucklake/internal/core/domain"
	"github.com/custodia-labs/trucklake/internal/core/ports/driven"
	"github.com/custodia-labs/trucklake/internal/core/ports/driving"
	"github.com/custodia-labs/trucklake/internal/logger"
)

// cardFeeRate is the assumed card processing fee, 2% of card revenue.
var cardFeeRate = decimal.New(2, -2)

const (
	// reportStageRetries bounds retries per workflow stage.
	reportStageRetries = 3

	// reportRetryBase is the first retry interval; it doubles per
	// attempt.
	reportRetryBase = 500 * time.Millisecond
)

// reportStage is the report workflow's position. Each stage runs
// under the bounded retry policy and the first permanently failing
// stage ends the workflow.
type reportStage int

const (
	stageInvoke reportStage = iota
	stageParseResult
	stageDeliver
)

func (s reportStage) String() string {
	switch s {
	case stageInvoke:
		return "invoke"
	case stageParseResult:
		return "parse_result"
	case stageDeliver:
		return "deliver"
	default:
		return "unknown"
	}
}

// ReportService builds and delivers daily financial reports. It reads
// completed partitions only and never touches pipeline state, so it
// runs without the pipeline lease.
type ReportService struct {
	store driven.ObjectStore
	codec driven.RecordCodec
	sink  driven.ReportSink

	retries   uint64
	retryBase time.Duration

	// now is replaceable for tests.
	now func() time.Time
}

// NewReportService creates the report workflow service.
func NewReportService(store driven.ObjectStore, codec driven.RecordCodec, sink driven.ReportSink) *ReportService {
	return &ReportService{
		store:     store,
		codec:     codec,
		sink:      sink,
		retries:   reportStageRetries,
		retryBase: reportRetryBase,
		now:       time.Now,
	}
}

// Ensure ReportService implements the driving port.
var _ driving.Reporter = (*ReportService)(nil)

// Report runs the workflow for one day: invoke loads the day's
// partition, parse_result computes the metrics, deliver renders the
// HTML and hands it to the sink. A day with no partition fails with
// domain.ErrNotFound and no retries.
func (s *ReportService) Report(ctx context.Context, day domain.PartitionKey) (*domain.DailyReport, error) {
	logger.Info("Report: building daily report for %s", day)

	records, err := s.invoke(ctx, day)
	if err != nil {
		return nil, err
	}

	report, err := s.parseResult(day, records)
	if err != nil {
		return nil, err
	}

	if err := s.deliver(ctx, report); err != nil {
		return nil, err
	}

	logger.Info("Report: delivered %s (%d transactions, %s gross)",
		day, report.TotalTransactions, Pounds(report.TotalRevenuePence))
	return report, nil
}

// invoke loads and decodes the day's partition. Backend failures
// retry; an absent or empty partition is permanent.
func (s *ReportService) invoke(ctx context.Context, day domain.PartitionKey) ([]domain.CleanRecord, error) {
	var records []domain.CleanRecord
	err := s.transition(ctx, stageInvoke, func(ctx context.Context) error {
		data, err := s.store.Get(ctx, day.ObjectKey())
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if err != nil {
			return retry.RetryableError(err)
		}

		decoded, err := s.codec.DecodeRecords(data)
		if err != nil {
			return fmt.Errorf("decode partition: %w", err)
		}
		records = decoded
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("report %s stage %s: %w", day, stageInvoke, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("report %s stage %s: %w: partition empty", day, stageInvoke, domain.ErrNotFound)
	}
	return records, nil
}

// parseResult computes the report metrics. Pure computation; it never
// retries.
func (s *ReportService) parseResult(day domain.PartitionKey, records []domain.CleanRecord) (*domain.DailyReport, error) {
	logger.Debug("Report: stage %s over %d records", stageParseResult, len(records))

	report := &domain.DailyReport{
		Date:              day,
		GeneratedAt:       s.now().UTC(),
		TotalTransactions: len(records),
	}

	type truckAgg struct {
		name    string
		count   int
		revenue int64
	}
	type methodAgg struct {
		method  string
		count   int
		revenue int64
	}
	trucks := make(map[string]*truckAgg)
	methods := make(map[string]*methodAgg)

	for _, rec := range records {
		report.TotalRevenuePence += rec.TotalPence

		truck := trucks[rec.TruckName]
		if truck == nil {
			truck = &truckAgg{name: rec.TruckName}
			trucks[rec.TruckName] = truck
		}
		truck.count++
		truck.revenue += rec.TotalPence

		method := methods[rec.PaymentMethod]
		if method == nil {
			method = &methodAgg{method: rec.PaymentMethod}
			methods[rec.PaymentMethod] = method
		}
		method.count++
		method.revenue += rec.TotalPence
	}

	report.AverageTransactionPence = dividePence(report.TotalRevenuePence, int64(len(records)))
	gross := decimal.NewFromInt(report.TotalRevenuePence)

	// Trucks rank by revenue, highest first; names break ties so the
	// ranking is stable.
	for _, agg := range trucks {
		report.Trucks = append(report.Trucks, domain.TruckPerformance{
			Name:                    agg.name,
			Transactions:            agg.count,
			RevenuePence:            agg.revenue,
			AverageTransactionPence: dividePence(agg.revenue, int64(agg.count)),
			RevenueShare:            shareOf(agg.revenue, gross),
		})
	}
	sort.Slice(report.Trucks, func(i, j int) bool {
		if report.Trucks[i].RevenuePence != report.Trucks[j].RevenuePence {
			return report.Trucks[i].RevenuePence > report.Trucks[j].RevenuePence
		}
		return report.Trucks[i].Name < report.Trucks[j].Name
	})
	if len(report.Trucks) > 0 {
		report.BestTruck = report.Trucks[0].Name
		report.BestTruckRevenuePence = report.Trucks[0].RevenuePence
		last := report.Trucks[len(report.Trucks)-1]
		report.WorstTruck = last.Name
		report.WorstTruckRevenuePence = last.RevenuePence
	}

	// Payment methods list alphabetically; card-style methods carry
	// the processing-fee estimate.
	for _, agg := range methods {
		breakdown := domain.PaymentMethodBreakdown{
			Method:       agg.method,
			Transactions: agg.count,
			RevenuePence: agg.revenue,
			RevenueShare: shareOf(agg.revenue, gross),
		}
		if strings.Contains(strings.ToLower(agg.method), "card") {
			breakdown.ProcessingCostPence = decimal.NewFromInt(agg.revenue).
				Mul(cardFeeRate).Round(0).IntPart()
		}
		report.CardCostsPence += breakdown.ProcessingCostPence
		report.PaymentMethods = append(report.PaymentMethods, breakdown)
	}
	sort.Slice(report.PaymentMethods, func(i, j int) bool {
		return report.PaymentMethods[i].Method < report.PaymentMethods[j].Method
	})

	report.NetRevenuePence = report.TotalRevenuePence - report.CardCostsPence
	return report, nil
}

// deliver renders the report and hands it to the sink, retrying
// delivery failures.
func (s *ReportService) deliver(ctx context.Context, report *domain.DailyReport) error {
	html, err := RenderReport(report)
	if err != nil {
		return fmt.Errorf("report %s stage %s: render: %w", report.Date, stageDeliver, err)
	}

	err = s.transition(ctx, stageDeliver, func(ctx context.Context) error {
		if err := s.sink.Deliver(ctx, report, html); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("report %s stage %s: %w", report.Date, stageDeliver, err)
	}
	return nil
}

// transition runs one workflow stage under the bounded retry policy:
// exponential intervals from retryBase, at most retries re-attempts.
// Only failures marked retryable by fn re-attempt.
func (s *ReportService) transition(ctx context.Context, stage reportStage, fn retry.RetryFunc) error {
	attempt := 0
	backoff := retry.WithMaxRetries(s.retries, retry.NewExponential(s.retryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			logger.Warn("Report: stage %s attempt %d", stage, attempt)
		}
		return fn(ctx)
	})
}

// dividePence returns numerator/denominator in pence, rounded half
// away from zero to the nearest penny.
func dividePence(numerator, denominator int64) int64 {
	if denominator == 0 {
		return 0
	}
	return decimal.NewFromInt(numerator).
		Div(decimal.NewFromInt(denominator)).
		Round(0).IntPart()
}

// shareOf returns part's percentage of gross, 0-100. Presentation
// value only; rounding happens at render time.
func shareOf(part int64, gross decimal.Decimal) float64 {
	if gross.IsZero() {
		return 0
	}
	share, _ := decimal.NewFromInt(part).
		Mul(decimal.NewFromInt(100)).
		Div(gross).Float64()
	return share
}

// Pounds formats pence as a pounds amount with thousands separators,
// e.g. 123456 -> "£1,234.56".
func Pounds(pence int64) string {
	sign := ""
	if pence < 0 {
		sign = "-"
		pence = -pence
	}
	return fmt.Sprintf("%s£%s.%02d", sign, humanize.Comma(pence/100), pence%100)
}

var reportTemplate = template.Must(template.New("daily-report").Funcs(template.FuncMap{
	"pounds":  Pounds,
	"percent": func(share float64) string { return fmt.Sprintf("%.1f%%", share) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<title>Daily Report - {{.Date}}</title>
<style>
body { font-family: Arial, sans-serif; max-width: 1000px; margin: 40px auto; padding: 20px; background-color: #f5f5f5; }
.header { background-color: #2c3e50; color: white; padding: 20px; border-radius: 5px; margin-bottom: 20px; }
.kpi-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 15px; margin-bottom: 20px; }
.metric-card { background-color: white; padding: 20px; border-radius: 5px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
.metric-title { font-size: 12px; color: #7f8c8d; text-transform: uppercase; margin-bottom: 5px; font-weight: bold; }
.metric-value { font-size: 28px; font-weight: bold; color: #2c3e50; }
.metric-subtitle { font-size: 14px; color: #95a5a6; margin-top: 5px; }
.best { border-left: 4px solid #27ae60; }
.worst { border-left: 4px solid #e74c3c; }
.cost { border-left: 4px solid #f39c12; }
.profit { border-left: 4px solid #16a085; }
.highlight-cost { color: #e74c3c; font-weight: bold; }
.section-title { font-size: 18px; font-weight: bold; color: #2c3e50; margin: 30px 0 15px 0; padding-bottom: 10px; border-bottom: 2px solid #3498db; }
.data-table { width: 100%; border-collapse: collapse; margin-top: 10px; background: white; }
.data-table th, .data-table td { padding: 12px; text-align: left; border-bottom: 1px solid #ecf0f1; }
.data-table th { background-color: #34495e; color: white; font-weight: bold; }
.footer { text-align: center; margin-top: 30px; padding-top: 20px; border-top: 1px solid #ecf0f1; color: #7f8c8d; font-size: 12px; }
</style>
</head>
<body>
<div class="header">
<h1>Food Trucks - Daily Financial Report</h1>
<p><strong>Report Date:</strong> {{.Date}}</p>
</div>
<div class="kpi-grid">
<div class="metric-card profit">
<div class="metric-title">Total Revenue</div>
<div class="metric-value">{{pounds .TotalRevenuePence}}</div>
<div class="metric-subtitle">{{.TotalTransactions}} transactions</div>
</div>
<div class="metric-card cost">
<div class="metric-title">Card Processing Costs</div>
<div class="metric-value highlight-cost">-{{pounds .CardCostsPence}}</div>
<div class="metric-subtitle">~2% of card payments</div>
</div>
<div class="metric-card profit">
<div class="metric-title">Net Revenue</div>
<div class="metric-value">{{pounds .NetRevenuePence}}</div>
<div class="metric-subtitle">After processing fees</div>
</div>
<div class="metric-card">
<div class="metric-title">Avg Transaction</div>
<div class="metric-value">{{pounds .AverageTransactionPence}}</div>
</div>
</div>
<div class="kpi-grid" style="grid-template-columns: 1fr 1fr;">
<div class="metric-card best">
<div class="metric-title">Top Performer</div>
<h2>{{.BestTruck}}</h2>
<div class="metric-value">{{pounds .BestTruckRevenuePence}}</div>
</div>
<div class="metric-card worst">
<div class="metric-title">Needs Attention</div>
<h2>{{.WorstTruck}}</h2>
<div class="metric-value">{{pounds .WorstTruckRevenuePence}}</div>
</div>
</div>
<div class="section-title">Truck Performance Breakdown</div>
<div class="metric-card">
<table class="data-table">
<thead>
<tr><th>Truck Name</th><th>Revenue</th><th>Transactions</th><th>Avg per Transaction</th><th>% of Total</th></tr>
</thead>
<tbody>
{{range .Trucks}}<tr><td><strong>{{.Name}}</strong></td><td>{{pounds .RevenuePence}}</td><td>{{.Transactions}}</td><td>{{pounds .AverageTransactionPence}}</td><td>{{percent .RevenueShare}}</td></tr>
{{end}}</tbody>
</table>
</div>
<div class="section-title">Payment Method Analysis</div>
<div class="metric-card">
<table class="data-table">
<thead>
<tr><th>Payment Method</th><th>Transactions</th><th>Revenue</th><th>Processing Cost</th><th>% of Total</th></tr>
</thead>
<tbody>
{{range .PaymentMethods}}<tr><td><strong>{{.Method}}</strong></td><td>{{.Transactions}}</td><td>{{pounds .RevenuePence}}</td><td>{{if .ProcessingCostPence}}<span class="highlight-cost">{{pounds .ProcessingCostPence}}</span>{{else}}£0.00 (Free){{end}}</td><td>{{percent .RevenueShare}}</td></tr>
{{end}}</tbody>
</table>
</div>
<div class="footer">
<p><strong>Truck Lake Pipeline</strong> | Automated Daily Report</p>
<p>Generated: {{.GeneratedAt.Format "2006-01-02 15:04:05"}} UTC</p>
</div>
</body>
</html>
`))

// RenderReport renders the report to standalone HTML.
func RenderReport(report *domain.DailyReport) ([]byte, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, report); err != nil {
		return nil, fmt.Errorf("execute report template: %w", err)
	}
	return buf.Bytes(), nil
}
