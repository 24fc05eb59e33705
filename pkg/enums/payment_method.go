package enums

import "fmt"

// PaymentMethod describes how a buyer settles a transaction.
type PaymentMethod string

const (
	PaymentMethodCash           PaymentMethod = "cash"
	PaymentMethodBankTransfer   PaymentMethod = "bank_transfer"
	PaymentMethodVirtualAccount PaymentMethod = "virtual_account"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodBankTransfer,
	PaymentMethodVirtualAccount,
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

// IsGateway reports whether settlement happens through the external payment
// gateway rather than at the register.
func (p PaymentMethod) IsGateway() bool {
	switch p {
	case PaymentMethodBankTransfer, PaymentMethodVirtualAccount:
		return true
	default:
		return false
	}
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
