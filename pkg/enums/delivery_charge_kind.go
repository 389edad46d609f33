package enums

import "fmt"

// DeliveryChargeKind selects which tier rule set applies to a subtotal.
// Product line items and xerox print jobs are charged independently.
type DeliveryChargeKind string

const (
	DeliveryChargeKindProduct DeliveryChargeKind = "product"
	DeliveryChargeKindXerox   DeliveryChargeKind = "xerox"
)

var validDeliveryChargeKinds = []DeliveryChargeKind{
	DeliveryChargeKindProduct,
	DeliveryChargeKindXerox,
}

// String implements fmt.Stringer.
func (k DeliveryChargeKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known DeliveryChargeKind.
func (k DeliveryChargeKind) IsValid() bool {
	for _, candidate := range validDeliveryChargeKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseDeliveryChargeKind converts raw input into a DeliveryChargeKind.
func ParseDeliveryChargeKind(value string) (DeliveryChargeKind, error) {
	for _, candidate := range validDeliveryChargeKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery charge kind %q", value)
}
