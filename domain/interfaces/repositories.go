package interfaces

import (
	"context"

	"lotterypay/domain/entities"
)

// TicketRepository defines the interface for ticket data access
type TicketRepository interface {
	// Create inserts a new pending ticket
	Create(ctx context.Context, ticket *entities.Ticket) error

	// GetByID returns nil, nil when the ticket does not exist
	GetByID(ctx context.Context, id string) (*entities.Ticket, error)

	// GetByEmail returns tickets for an exact email match, newest first
	GetByEmail(ctx context.Context, email string) ([]*entities.Ticket, error)

	// AttachPayment sets the payment reference once; fails with
	// ErrPaymentAlreadyLinked if the ticket already has one
	AttachPayment(ctx context.Context, ticketID, paymentID string) error

	// TransitionStatus moves a pending ticket to the given terminal status.
	// Returns the updated ticket, or nil if the ticket was no longer pending.
	TransitionStatus(ctx context.Context, ticketID string, to entities.TicketStatus) (*entities.Ticket, error)
}

// PaymentRepository defines the interface for payment record data access
type PaymentRepository interface {
	Create(ctx context.Context, payment *entities.Payment) error

	// GetByExternalReference returns nil, nil when the reference is unknown
	GetByExternalReference(ctx context.Context, reference string) (*entities.Payment, error)

	// GetByTicketID returns nil, nil when no charge was opened for the ticket
	GetByTicketID(ctx context.Context, ticketID string) (*entities.Payment, error)

	// UpdateStatus stores the latest gateway status and bumps updated_at
	UpdateStatus(ctx context.Context, reference string, status entities.PaymentStatus) error
}
