package entities

import (
	"time"
)

// PaymentStatus is the status vocabulary reported by the payment gateway
type PaymentStatus string

const (
	PaymentStatusOpen       PaymentStatus = "open"
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusAuthorized PaymentStatus = "authorized"
	PaymentStatusPaid       PaymentStatus = "paid"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusCanceled   PaymentStatus = "canceled"
	PaymentStatusExpired    PaymentStatus = "expired"
)

// TicketStatus maps a gateway status onto the ticket lifecycle.
// The second return value is false when the status does not settle the ticket.
func (s PaymentStatus) TicketStatus() (TicketStatus, bool) {
	switch s {
	case PaymentStatusPaid:
		return TicketStatusPaid, true
	case PaymentStatusFailed, PaymentStatusCanceled, PaymentStatusExpired, "cancelled":
		return TicketStatusFailed, true
	default:
		return "", false
	}
}

// Payment records the gateway charge opened for a ticket
type Payment struct {
	ID              string        `json:"id" db:"id"`
	MolliePaymentID string        `json:"mollie_payment_id" db:"mollie_payment_id"`
	TicketID        string        `json:"ticket_id" db:"ticket_id"`
	Amount          Cents         `json:"amount" db:"amount_cents"`
	Status          PaymentStatus `json:"status" db:"status"`
	CheckoutURL     *string       `json:"checkout_url" db:"checkout_url"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// ChargeResult is returned by the gateway after opening a charge
type ChargeResult struct {
	ExternalReference string
	CheckoutURL       string
	Status            PaymentStatus
}
