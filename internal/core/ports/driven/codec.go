package driven

import "github.com/custodia-labs/trucklake/internal/core/domain"

// RecordCodec encodes fact and dimension rows to the lake's columnar
// format and back. Encoding the same rows in the same order must
// produce identical bytes; merge-rewrite idempotence depends on it.
type RecordCodec interface {
	// EncodeRecords encodes fact rows.
	EncodeRecords(records []domain.CleanRecord) ([]byte, error)

	// DecodeRecords decodes fact rows.
	DecodeRecords(data []byte) ([]domain.CleanRecord, error)

	// EncodeTrucks encodes the truck dimension table.
	EncodeTrucks(trucks []domain.Truck) ([]byte, error)

	// DecodeTrucks decodes the truck dimension table.
	DecodeTrucks(data []byte) ([]domain.Truck, error)

	// EncodePaymentMethods encodes the payment-method dimension table.
	EncodePaymentMethods(methods []domain.PaymentMethod) ([]byte, error)

	// DecodePaymentMethods decodes the payment-method dimension table.
	DecodePaymentMethods(data []byte) ([]domain.PaymentMethod, error)
}
