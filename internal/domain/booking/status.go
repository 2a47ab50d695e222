package booking

import "strings"

// PaymentStatus is the canonical payment state stored on a booking.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusFailed  PaymentStatus = "Failed"
	PaymentStatusPending PaymentStatus = "Pending"
)

// NormalizePaymentStatus maps gateway status text onto a canonical status.
// Matching is a case-insensitive substring test; "paid" and "success" win
// over "failed", and anything else is Pending.
func NormalizePaymentStatus(raw string) PaymentStatus {
	s := strings.ToLower(raw)
	switch {
	case strings.Contains(s, "paid"), strings.Contains(s, "success"):
		return PaymentStatusPaid
	case strings.Contains(s, "failed"):
		return PaymentStatusFailed
	default:
		return PaymentStatusPending
	}
}
