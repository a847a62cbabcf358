package enums

import "fmt"

// PaymentStatus describes the reconciliation state of a payment against the
// gateway. A payment stays pending after a failed capture call unless the
// provider explicitly reported the intent gone; pending is the retryable
// state, failed is terminal.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusCompleted,
	PaymentStatusFailed,
}

// IsValid reports whether the value matches the canonical payment status enum.
func (p PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentStatus converts the raw string to PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}

// PaymentProvider identifies the external gateway that owns an intent.
type PaymentProvider string

const (
	PaymentProviderPayPal PaymentProvider = "paypal"
)
