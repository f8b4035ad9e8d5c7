package interfaces

import (
	"context"

	"lotterypay/domain/entities"
	"lotterypay/events"
)

// PaymentGateway opens charges and reports their authoritative status
type PaymentGateway interface {
	OpenCharge(ctx context.Context, req ChargeRequest) (*entities.ChargeResult, error)
	GetStatus(ctx context.Context, reference string) (entities.PaymentStatus, error)
}

// ChargeRequest describes a charge for a single ticket
type ChargeRequest struct {
	TicketID      string
	Amount        entities.Cents
	Description   string
	CustomerEmail string
}

// Notifier delivers the purchase confirmation for a paid ticket
type Notifier interface {
	SendConfirmation(ctx context.Context, ticket *entities.Ticket) error
}

// NumberDrawer draws the number sets for a new ticket
type NumberDrawer interface {
	Draw(count int) (entities.Numbers, error)
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(event events.Event)
}
