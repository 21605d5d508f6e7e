package stripe

import "strings"

// Checkout payment states as reported on a session.
const (
	PaymentPaid              = "paid"
	PaymentUnpaid            = "unpaid"
	PaymentNoPaymentRequired = "no_payment_required"
)

// NormalizePaymentStatus maps a checkout session's payment_status to one of the
// known values. Anything unrecognized is treated as unpaid.
func NormalizePaymentStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case PaymentPaid:
		return PaymentPaid
	case PaymentNoPaymentRequired:
		return PaymentNoPaymentRequired
	default:
		return PaymentUnpaid
	}
}
