package domain

// Truck is a slowly-changing reference entity describing one truck.
// Attributes are overwritten wholesale on each run (last-write-wins);
// the table is small and low-cardinality.
type Truck struct {
	// TruckID is the stable identifier.
	TruckID int64

	// Name is the truck's display name.
	Name string

	// Description is the truck's menu blurb.
	Description string

	// HasCardReader indicates the truck carries a card reader.
	HasCardReader bool

	// FSARating is the most recent food-hygiene rating.
	FSARating int64
}

// PaymentMethod is a reference entity naming one payment method.
type PaymentMethod struct {
	// PaymentMethodID is the stable identifier.
	PaymentMethodID int64

	// Method is the label, e.g. "cash" or "card".
	Method string
}

// Dimensions bundles the reference tables rebuilt on each run from the
// attributes joined onto the extracted rows.
type Dimensions struct {
	// Trucks is ordered by TruckID ascending.
	Trucks []Truck

	// PaymentMethods is ordered by PaymentMethodID ascending.
	PaymentMethods []PaymentMethod
}

// Empty reports whether the run produced no dimension rows at all.
func (d Dimensions) Empty() bool {
	return len(d.Trucks) == 0 && len(d.PaymentMethods) == 0
}
