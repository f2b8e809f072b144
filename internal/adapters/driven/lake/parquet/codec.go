package parquet

import (
	"bytes"
	"fmt"
	"time"

	parquetgo "github.com/parquet-go/parquet-go"

	"github.com/custodia-labs/trucklake/internal/core/domain"
	"github.com/custodia-labs/trucklake/internal/core/ports/driven"
)

// Ensure Codec implements the interface.
var _ driven.RecordCodec = (*Codec)(nil)

// factRow is the partition objects' column layout. Column names are
// load-bearing: the warehouse views and the report workflow read them
// by name. total is a scale-2 decimal whose unscaled value is pence,
// so analytical readers see pounds.
type factRow struct {
	TransactionID    int64     `parquet:"transaction_id"`
	At               time.Time `parquet:"at,timestamp(millisecond)"`
	Total            int64     `parquet:"total,decimal(2:18)"`
	TruckID          int64     `parquet:"truck_id"`
	PaymentMethodID  int64     `parquet:"payment_method_id"`
	TruckName        string    `parquet:"truck_name"`
	TruckDescription string    `parquet:"truck_description"`
	HasCardReader    bool      `parquet:"has_card_reader"`
	FSARating        int64     `parquet:"fsa_rating"`
	PaymentMethod    string    `parquet:"payment_method"`
}

// truckRow is the truck dimension's column layout.
type truckRow struct {
	TruckID          int64  `parquet:"truck_id"`
	TruckName        string `parquet:"truck_name"`
	TruckDescription string `parquet:"truck_description"`
	HasCardReader    bool   `parquet:"has_card_reader"`
	FSARating        int64  `parquet:"fsa_rating"`
}

// methodRow is the payment-method dimension's column layout.
type methodRow struct {
	PaymentMethodID int64  `parquet:"payment_method_id"`
	PaymentMethod   string `parquet:"payment_method"`
}

// Codec encodes fact and dimension rows as snappy-compressed parquet.
// Given the same rows in the same order it produces identical bytes;
// the loader's merge-rewrite idempotence depends on that.
type Codec struct{}

// NewCodec creates the codec.
func NewCodec() *Codec {
	return &Codec{}
}

// EncodeRecords encodes fact rows.
func (c *Codec) EncodeRecords(records []domain.CleanRecord) ([]byte, error) {
	rows := make([]factRow, len(records))
	for i, rec := range records {
		rows[i] = factRow{
			TransactionID:    rec.TransactionID,
			At:               rec.At.UTC(),
			Total:            rec.TotalPence,
			TruckID:          rec.TruckID,
			PaymentMethodID:  rec.PaymentMethodID,
			TruckName:        rec.TruckName,
			TruckDescription: rec.TruckDescription,
			HasCardReader:    rec.HasCardReader,
			FSARating:        rec.FSARating,
			PaymentMethod:    rec.PaymentMethod,
		}
	}
	return write(rows)
}

// DecodeRecords decodes fact rows.
func (c *Codec) DecodeRecords(data []byte) ([]domain.CleanRecord, error) {
	rows, err := read[factRow](data)
	if err != nil {
		return nil, err
	}
	records := make([]domain.CleanRecord, len(rows))
	for i, row := range rows {
		records[i] = domain.CleanRecord{
			TransactionID:    row.TransactionID,
			At:               row.At.UTC(),
			TotalPence:       row.Total,
			TruckID:          row.TruckID,
			PaymentMethodID:  row.PaymentMethodID,
			TruckName:        row.TruckName,
			TruckDescription: row.TruckDescription,
			HasCardReader:    row.HasCardReader,
			FSARating:        row.FSARating,
			PaymentMethod:    row.PaymentMethod,
		}
	}
	return records, nil
}

// EncodeTrucks encodes the truck dimension table.
func (c *Codec) EncodeTrucks(trucks []domain.Truck) ([]byte, error) {
	rows := make([]truckRow, len(trucks))
	for i, truck := range trucks {
		rows[i] = truckRow{
			TruckID:          truck.TruckID,
			TruckName:        truck.Name,
			TruckDescription: truck.Description,
			HasCardReader:    truck.HasCardReader,
			FSARating:        truck.FSARating,
		}
	}
	return write(rows)
}

// DecodeTrucks decodes the truck dimension table.
func (c *Codec) DecodeTrucks(data []byte) ([]domain.Truck, error) {
	rows, err := read[truckRow](data)
	if err != nil {
		return nil, err
	}
	trucks := make([]domain.Truck, len(rows))
	for i, row := range rows {
		trucks[i] = domain.Truck{
			TruckID:       row.TruckID,
			Name:          row.TruckName,
			Description:   row.TruckDescription,
			HasCardReader: row.HasCardReader,
			FSARating:     row.FSARating,
		}
	}
	return trucks, nil
}

// EncodePaymentMethods encodes the payment-method dimension table.
func (c *Codec) EncodePaymentMethods(methods []domain.PaymentMethod) ([]byte, error) {
	rows := make([]methodRow, len(methods))
	for i, method := range methods {
		rows[i] = methodRow{
			PaymentMethodID: method.PaymentMethodID,
			PaymentMethod:   method.Method,
		}
	}
	return write(rows)
}

// DecodePaymentMethods decodes the payment-method dimension table.
func (c *Codec) DecodePaymentMethods(data []byte) ([]domain.PaymentMethod, error) {
	rows, err := read[methodRow](data)
	if err != nil {
		return nil, err
	}
	methods := make([]domain.PaymentMethod, len(rows))
	for i, row := range rows {
		methods[i] = domain.PaymentMethod{
			PaymentMethodID: row.PaymentMethodID,
			Method:          row.PaymentMethod,
		}
	}
	return methods, nil
}

func write[T any](rows []T) ([]byte, error) {
	var buf bytes.Buffer
	if err := parquetgo.Write(&buf, rows, parquetgo.Compression(&parquetgo.Snappy)); err != nil {
		return nil, fmt.Errorf("write parquet: %w", err)
	}
	return buf.Bytes(), nil
}

func read[T any](data []byte) ([]T, error) {
	rows, err := parquetgo.Read[T](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	return rows, nil
}
