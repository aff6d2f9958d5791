package enums

import "fmt"

// PaymentMethod describes how a customer intends to pay for a configured vehicle.
type PaymentMethod string

const (
	PaymentMethodCash    PaymentMethod = "cash"
	PaymentMethodLoan    PaymentMethod = "loan"
	PaymentMethodLeasing PaymentMethod = "leasing"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodLoan,
	PaymentMethodLeasing,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// RequiresFinancing reports whether the order must carry financing terms.
func (p PaymentMethod) RequiresFinancing() bool {
	return p == PaymentMethodLoan || p == PaymentMethodLeasing
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
