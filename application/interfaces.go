package application

import (
	"context"

	"lotterypay/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	TicketRepository() interfaces.TicketRepository
	PaymentRepository() interfaces.PaymentRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// CallbackQueue hands gateway webhooks to a background worker
type CallbackQueue interface {
	// Enqueue accepts the reference for later processing and returns without waiting on it
	Enqueue(ctx context.Context, reference string) error

	// Close stops accepting work and waits for in-flight callbacks until ctx is done
	Close(ctx context.Context) error
}
