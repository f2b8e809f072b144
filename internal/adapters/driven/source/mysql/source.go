// Package mysql extracts transaction rows from the operational MySQL
// database. It is strictly read-only: one paged SELECT over the fact
// table with its dimension context joined on, rate limited so a large
// backlog never saturates the store that the business runs on.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"golang.org/x/time/rate"

	"github.com/custodia-labs/trucklake/internal/core/domain"
	"github.com/custodia-labs/trucklake/internal/core/ports/driven"
	"github.com/custodia-labs/trucklake/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.TransactionSource = (*Source)(nil)

const (
	// DefaultPageSize bounds how many rows one page query returns.
	DefaultPageSize = 5000

	// queriesPerSecond and queryBurst throttle page queries against the
	// operational database.
	queriesPerSecond = 10
	queryBurst       = 2

	maxOpenConns    = 4
	connMaxLifetime = 5 * time.Minute
)

// extractQuery pages through the fact table using keyset pagination on
// (at, transaction_id), so progress does not degrade with offset depth
// and rows inserted behind the cursor are never re-read. Dimensions are
// left-joined and their keys selected from the dimension side: a fact
// row whose reference resolves to nothing arrives with nil ids and is
// counted as skipped, rather than vanishing inside an inner join.
const extractQuery = `
SELECT
    ft.transaction_id,
    ft.at,
    ft.total,
    dt.truck_id,
    dt.truck_name,
    dt.truck_description,
    dt.has_card_reader,
    dt.fsa_rating,
    pm.payment_method_id,
    pm.payment_method
FROM FACT_Transaction ft
LEFT JOIN DIM_Truck dt ON ft.truck_id = dt.truck_id
LEFT JOIN DIM_Payment_Method pm ON ft.payment_method_id = pm.payment_method_id
WHERE (ft.at > ? OR (ft.at = ? AND ft.transaction_id > ?))
  AND ft.at <= ?
ORDER BY ft.at ASC, ft.transaction_id ASC
LIMIT ?`

// Source streams transaction rows out of the operational database.
type Source struct {
	// db is the read-only connection pool. The Source owns it and
	// closes it on Close.
	db *sql.DB

	// pageSize bounds one page of the keyset scan.
	pageSize int

	// limiter spaces out page queries.
	limiter *rate.Limiter
}

// Open connects to the operational database and returns a Source ready
// to extract. The DSN is in go-sql-driver form, for example
// "user:pass@tcp(host:3306)/trucks".
func Open(dsn string) (*Source, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open source database: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	return New(db), nil
}

// New wraps an existing connection pool. The Source takes ownership of
// the pool and closes it on Close.
func New(db *sql.DB) *Source {
	return &Source{
		db:       db,
		pageSize: DefaultPageSize,
		limiter:  rate.NewLimiter(rate.Limit(queriesPerSecond), queryBurst),
	}
}

// Ping verifies the database is reachable.
func (s *Source) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Source) Close() error {
	return s.db.Close()
}

// Extract streams rows whose business timestamp lies in (since, until],
// ordered by timestamp then primary key. Pages are fetched lazily, so
// memory use is bounded by the page size regardless of backlog depth.
func (s *Source) Extract(ctx context.Context, since, until time.Time) (<-chan domain.RawRecord, <-chan error) {
	records := make(chan domain.RawRecord)
	errs := make(chan error, 1)

	go func() {
		defer close(records)
		defer close(errs)

		untilText := until.UTC().Format(domain.SourceTimeLayout)
		lastAt := since.UTC().Format(domain.SourceTimeLayout)
		// MaxInt64 makes the tie-break branch unsatisfiable on the
		// first page, keeping the lower bound exclusive.
		lastID := int64(math.MaxInt64)

		pages := 0
		total := 0
		for {
			if err := s.limiter.Wait(ctx); err != nil {
				errs <- err
				return
			}

			page, err := s.fetchPage(ctx, lastAt, lastID, untilText)
			if err != nil {
				errs <- fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
				return
			}
			pages++
			total += len(page)

			for _, row := range page {
				select {
				case records <- row:
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				}
			}

			if len(page) < s.pageSize {
				break
			}
			last := page[len(page)-1]
			lastAt = last.At
			if last.TransactionID != nil {
				lastID = *last.TransactionID
			} else {
				// A row without a primary key cannot anchor the
				// tie-break; restart it below the smallest real id.
				lastID = 0
			}
		}
		logger.Debug("MySQL source: extracted %d rows in %d pages", total, pages)
	}()

	return records, errs
}

// fetchPage runs one page query and maps the rows. Every column is
// scanned through sql.Null wrappers; classifying incomplete rows is the
// Transformer's job, not the extractor's.
func (s *Source) fetchPage(ctx context.Context, lastAt string, lastID int64, until string) ([]domain.RawRecord, error) {
	rows, err := s.db.QueryContext(ctx, extractQuery, lastAt, lastAt, lastID, until, s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	page := make([]domain.RawRecord, 0, s.pageSize)
	for rows.Next() {
		var (
			id               sql.NullInt64
			at               sql.NullString
			totalText        sql.NullString
			truckID          sql.NullInt64
			truckName        sql.NullString
			truckDescription sql.NullString
			hasCardReader    sql.NullBool
			fsaRating        sql.NullInt64
			methodID         sql.NullInt64
			method           sql.NullString
		)
		if err := rows.Scan(&id, &at, &totalText, &truckID, &truckName, &truckDescription,
			&hasCardReader, &fsaRating, &methodID, &method); err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}

		raw := domain.RawRecord{
			At:               at.String,
			Total:            totalText.String,
			TruckName:        truckName.String,
			TruckDescription: truckDescription.String,
			PaymentMethod:    method.String,
		}
		if id.Valid {
			v := id.Int64
			raw.TransactionID = &v
		}
		if truckID.Valid {
			v := truckID.Int64
			raw.TruckID = &v
		}
		if methodID.Valid {
			v := methodID.Int64
			raw.PaymentMethodID = &v
		}
		if hasCardReader.Valid {
			v := hasCardReader.Bool
			raw.HasCardReader = &v
		}
		if fsaRating.Valid {
			v := fsaRating.Int64
			raw.FSARating = &v
		}
		page = append(page, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return page, nil
}
