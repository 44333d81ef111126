package care

import "fmt"

// Bounds for realistic clinic volumes. Anything past these is a data entry
// error, and rejecting them keeps the int64 multiplication safe.
const (
	maxQuantity  = 10_000
	maxUnitPrice = 1_000_000_000
)

// InvalidQuantityError is returned when a line is priced with a quantity
// below one.
type InvalidQuantityError struct {
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d: must be at least 1", e.Quantity)
}

// LinePricing is the priced outcome of one service × quantity line.
type LinePricing struct {
	UnitPrice  int64
	TotalPrice int64
}

// PriceLine prices a single care line. The unit price is copied from the
// service so later catalog changes never alter the result. Amounts are in
// minor currency units.
func PriceLine(svc CareService, quantity int) (LinePricing, error) {
	if quantity < 1 {
		return LinePricing{}, &InvalidQuantityError{Quantity: quantity}
	}
	if quantity > maxQuantity {
		return LinePricing{}, fmt.Errorf("quantity %d exceeds maximum %d", quantity, maxQuantity)
	}
	if svc.UnitPrice < 0 || svc.UnitPrice > maxUnitPrice {
		return LinePricing{}, fmt.Errorf("unit price %d out of range", svc.UnitPrice)
	}

	return LinePricing{
		UnitPrice:  svc.UnitPrice,
		TotalPrice: svc.UnitPrice * int64(quantity),
	}, nil
}

// TotalRecordCost sums TotalPrice over the given items. This is the value
// CareRecord.TotalCost must always carry.
func TotalRecordCost(items []CareItem) int64 {
	var total int64
	for _, item := range items {
		total += item.TotalPrice
	}
	return total
}
