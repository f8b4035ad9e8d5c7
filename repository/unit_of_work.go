package repository

import (
	"context"
	"errors"
	"fmt"

	"lotterypay/application"
	"lotterypay/database"
	"lotterypay/domain/interfaces"
	"lotterypay/events"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db          *database.DB
	tx          pgx.Tx
	ctx         context.Context
	bus         *events.TransactionalBus
	ticketRepo  interfaces.TicketRepository
	paymentRepo interfaces.PaymentRepository
}

// UnitOfWorkFactory creates units of work sharing one pool and event bus
type UnitOfWorkFactory struct {
	db  *database.DB
	bus *events.Bus
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, bus *events.Bus) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		db:  db,
		bus: bus,
	}
}

// Create returns a fresh unit of work; call Begin before using repositories
func (f *UnitOfWorkFactory) Create() application.UnitOfWork {
	return &unitOfWork{
		db:  f.db,
		bus: events.NewTransactionalBus(f.bus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx
	u.ticketRepo = newTicketRepositoryWithTx(tx)
	u.paymentRepo = newPaymentRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		u.tx = nil
		u.bus.Discard()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	u.tx = nil

	u.bus.Flush(u.ctx)
	return nil
}

// Rollback rolls back the transaction; safe to call after Commit
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	u.tx = nil
	u.bus.Discard()

	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// TicketRepository returns the ticket repository for this unit of work
func (u *unitOfWork) TicketRepository() interfaces.TicketRepository {
	if u.ticketRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.ticketRepo
}

// PaymentRepository returns the payment repository for this unit of work
func (u *unitOfWork) PaymentRepository() interfaces.PaymentRepository {
	if u.paymentRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.paymentRepo
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	return u.bus
}
