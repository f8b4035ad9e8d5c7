package entities

import (
	"time"
)

// TicketStatus is the payment state of a ticket
type TicketStatus string

const (
	TicketStatusPending   TicketStatus = "pending"
	TicketStatusPaid      TicketStatus = "paid"
	TicketStatusFailed    TicketStatus = "failed"
	TicketStatusCancelled TicketStatus = "cancelled"
)

// IsTerminal returns true once the ticket can no longer change status
func (s TicketStatus) IsTerminal() bool {
	return s != TicketStatusPending
}

// Numbers holds one sorted set of lottery numbers per purchased unit
type Numbers [][]int

// Ticket represents a purchased set of lottery number sets awaiting or
// confirmed by payment
type Ticket struct {
	ID            string       `json:"id" db:"id"`
	CustomerEmail string       `json:"customer_email" db:"customer_email"`
	CustomerName  string       `json:"customer_name" db:"customer_name"`
	Numbers       Numbers      `json:"lottery_numbers" db:"lottery_numbers"`
	TicketCount   int          `json:"ticket_count" db:"ticket_count"`
	Amount        Cents        `json:"amount" db:"amount_cents"`
	PaymentID     *string      `json:"payment_id" db:"payment_id"`
	PaymentStatus TicketStatus `json:"payment_status" db:"payment_status"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	PaidAt        *time.Time   `json:"paid_at" db:"paid_at"`
}

// HasPaymentReference returns true once a gateway charge has been attached
func (t *Ticket) HasPaymentReference() bool {
	return t.PaymentID != nil && *t.PaymentID != ""
}

// IsPaid checks if payment for this ticket has cleared
func (t *Ticket) IsPaid() bool {
	return t.PaymentStatus == TicketStatusPaid
}
