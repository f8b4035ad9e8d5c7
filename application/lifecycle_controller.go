package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lotterypay/domain/entities"
	"lotterypay/domain/interfaces"
	"lotterypay/domain/services"
	"lotterypay/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// LifecycleMetrics receives measurements from the ticket lifecycle
type LifecycleMetrics interface {
	RecordTicketCreated(ticketCount int)
	RecordNotification(result string)
}

// CreateTicketResult is returned to the buyer after a charge has been opened
type CreateTicketResult struct {
	TicketID    string           `json:"ticket_id"`
	CheckoutURL string           `json:"checkout_url"`
	Amount      entities.Cents   `json:"amount"`
	Numbers     entities.Numbers `json:"lottery_numbers"`
}

// CallbackOutcome describes what one authoritative status check changed
type CallbackOutcome struct {
	TicketID      string
	GatewayStatus entities.PaymentStatus
	// Transitioned is true only for the caller that moved the ticket out of pending
	Transitioned bool
	Ticket       *entities.Ticket
	Notified     bool
}

// LifecycleController orchestrates ticket creation, payment callbacks and confirmation mail
type LifecycleController struct {
	uowFactory UnitOfWorkFactory
	tickets    *services.TicketService
	gateway    interfaces.PaymentGateway
	notifier   interfaces.Notifier
	metrics    LifecycleMetrics
}

// NewLifecycleController creates a lifecycle controller; metrics may be nil
func NewLifecycleController(
	uowFactory UnitOfWorkFactory,
	tickets *services.TicketService,
	gateway interfaces.PaymentGateway,
	notifier interfaces.Notifier,
	metrics LifecycleMetrics,
) *LifecycleController {
	return &LifecycleController{
		uowFactory: uowFactory,
		tickets:    tickets,
		gateway:    gateway,
		notifier:   notifier,
		metrics:    metrics,
	}
}

// Create stores a pending ticket and opens a gateway charge for it.
// If the gateway fails the ticket stays pending without a payment reference.
func (c *LifecycleController) Create(ctx context.Context, req services.TicketRequest) (*CreateTicketResult, error) {
	ticket, err := c.tickets.NewTicket(req)
	if err != nil {
		return nil, err
	}

	if err := c.inTransaction(ctx, func(uow UnitOfWork) error {
		return uow.TicketRepository().Create(ctx, ticket)
	}); err != nil {
		return nil, fmt.Errorf("failed to store ticket: %w", err)
	}

	charge, err := c.gateway.OpenCharge(ctx, interfaces.ChargeRequest{
		TicketID:      ticket.ID,
		Amount:        ticket.Amount,
		Description:   services.ChargeDescription(ticket.TicketCount),
		CustomerEmail: ticket.CustomerEmail,
	})
	if err != nil {
		log.WithFields(log.Fields{
			"ticketID": ticket.ID,
			"amount":   ticket.Amount.Decimal(),
		}).WithError(err).Error("Failed to open payment charge, ticket left pending")
		return nil, fmt.Errorf("failed to open charge for ticket %s: %w", ticket.ID, err)
	}

	checkoutURL := charge.CheckoutURL
	payment := &entities.Payment{
		ID:              uuid.NewString(),
		MolliePaymentID: charge.ExternalReference,
		TicketID:        ticket.ID,
		Amount:          ticket.Amount,
		Status:          charge.Status,
		CheckoutURL:     &checkoutURL,
	}

	if err := c.inTransaction(ctx, func(uow UnitOfWork) error {
		if err := uow.PaymentRepository().Create(ctx, payment); err != nil {
			return err
		}
		if err := uow.TicketRepository().AttachPayment(ctx, ticket.ID, charge.ExternalReference); err != nil {
			return err
		}
		uow.EventBus().Publish(events.TicketCreatedEvent{
			TicketID:      ticket.ID,
			PaymentID:     charge.ExternalReference,
			CustomerEmail: ticket.CustomerEmail,
			TicketCount:   ticket.TicketCount,
			Amount:        ticket.Amount,
		})
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to record payment for ticket %s: %w", ticket.ID, err)
	}

	if c.metrics != nil {
		c.metrics.RecordTicketCreated(ticket.TicketCount)
	}

	log.WithFields(log.Fields{
		"ticketID":    ticket.ID,
		"paymentID":   charge.ExternalReference,
		"ticketCount": ticket.TicketCount,
		"amount":      ticket.Amount.Decimal(),
	}).Info("Ticket created and charge opened")

	return &CreateTicketResult{
		TicketID:    ticket.ID,
		CheckoutURL: charge.CheckoutURL,
		Amount:      ticket.Amount,
		Numbers:     ticket.Numbers,
	}, nil
}

// HandleCallback asks the gateway for the authoritative status of reference,
// records it and settles the ticket. The confirmation is sent only by the call
// that moved the ticket from pending to paid.
func (c *LifecycleController) HandleCallback(ctx context.Context, reference string) (*CallbackOutcome, error) {
	var payment *entities.Payment
	if err := c.read(ctx, func(uow UnitOfWork) error {
		var err error
		payment, err = uow.PaymentRepository().GetByExternalReference(ctx, reference)
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to look up payment %s: %w", reference, err)
	}
	if payment == nil {
		return nil, fmt.Errorf("%w: %s", entities.ErrPaymentNotFound, reference)
	}

	return c.refresh(ctx, payment)
}

// QueryStatus runs the same authoritative refresh as HandleCallback for the
// ticket's payment and returns the reloaded ticket. Settled tickets still hit the
// gateway so the payment record keeps the latest status; the ticket itself cannot
// leave a terminal status and no second confirmation is sent.
func (c *LifecycleController) QueryStatus(ctx context.Context, ticketID string) (*entities.Ticket, error) {
	ticket, err := c.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.HasPaymentReference() {
		return nil, fmt.Errorf("%w: %s", entities.ErrNoPaymentReference, ticketID)
	}

	var payment *entities.Payment
	if err := c.read(ctx, func(uow UnitOfWork) error {
		var err error
		payment, err = uow.PaymentRepository().GetByTicketID(ctx, ticketID)
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to look up payment for ticket %s: %w", ticketID, err)
	}
	if payment == nil {
		return nil, fmt.Errorf("%w: %s", entities.ErrPaymentNotFound, *ticket.PaymentID)
	}

	outcome, err := c.refresh(ctx, payment)
	if err != nil {
		return nil, err
	}
	return outcome.Ticket, nil
}

// GetTicket returns a ticket or ErrTicketNotFound
func (c *LifecycleController) GetTicket(ctx context.Context, ticketID string) (*entities.Ticket, error) {
	if _, err := uuid.Parse(ticketID); err != nil {
		return nil, fmt.Errorf("%w: %s", entities.ErrTicketNotFound, ticketID)
	}

	var ticket *entities.Ticket
	if err := c.read(ctx, func(uow UnitOfWork) error {
		var err error
		ticket, err = uow.TicketRepository().GetByID(ctx, ticketID)
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to get ticket %s: %w", ticketID, err)
	}
	if ticket == nil {
		return nil, fmt.Errorf("%w: %s", entities.ErrTicketNotFound, ticketID)
	}
	return ticket, nil
}

// ListTicketsByEmail returns every ticket bought with email, newest first
func (c *LifecycleController) ListTicketsByEmail(ctx context.Context, email string) ([]*entities.Ticket, error) {
	var tickets []*entities.Ticket
	if err := c.read(ctx, func(uow UnitOfWork) error {
		var err error
		tickets, err = uow.TicketRepository().GetByEmail(ctx, email)
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}

func (c *LifecycleController) refresh(ctx context.Context, payment *entities.Payment) (*CallbackOutcome, error) {
	status, err := c.gateway.GetStatus(ctx, payment.MolliePaymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get status of payment %s: %w", payment.MolliePaymentID, err)
	}

	outcome := &CallbackOutcome{
		TicketID:      payment.TicketID,
		GatewayStatus: status,
	}

	if err := c.inTransaction(ctx, func(uow UnitOfWork) error {
		if err := uow.PaymentRepository().UpdateStatus(ctx, payment.MolliePaymentID, status); err != nil {
			return err
		}

		if target, settles := status.TicketStatus(); settles {
			updated, err := uow.TicketRepository().TransitionStatus(ctx, payment.TicketID, target)
			if err != nil {
				return err
			}
			if updated != nil {
				outcome.Transitioned = true
				outcome.Ticket = updated
				uow.EventBus().Publish(events.TicketStatusChangedEvent{
					TicketID:      updated.ID,
					PaymentID:     payment.MolliePaymentID,
					CustomerEmail: updated.CustomerEmail,
					TicketCount:   updated.TicketCount,
					Amount:        updated.Amount,
					OldStatus:     entities.TicketStatusPending,
					NewStatus:     updated.PaymentStatus,
					GatewayStatus: status,
					ChangedAt:     time.Now().UTC(),
				})
				return nil
			}
		}

		current, err := uow.TicketRepository().GetByID(ctx, payment.TicketID)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("%w: %s", entities.ErrTicketNotFound, payment.TicketID)
		}
		outcome.Ticket = current
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to apply status %s for payment %s: %w", status, payment.MolliePaymentID, err)
	}

	logger := log.WithFields(log.Fields{
		"ticketID":      payment.TicketID,
		"paymentID":     payment.MolliePaymentID,
		"gatewayStatus": status,
		"ticketStatus":  outcome.Ticket.PaymentStatus,
	})
	if !outcome.Transitioned {
		logger.Debug("Payment status refreshed without ticket transition")
		return outcome, nil
	}
	logger.Info("Ticket payment settled")

	if outcome.Ticket.IsPaid() {
		outcome.Notified = c.notify(ctx, outcome.Ticket)
	}
	return outcome, nil
}

// notify sends the confirmation; failures are logged and never change the stored status
func (c *LifecycleController) notify(ctx context.Context, ticket *entities.Ticket) bool {
	err := c.notifier.SendConfirmation(ctx, ticket)

	result := "sent"
	if err != nil {
		result = "failed"
		log.WithFields(log.Fields{
			"ticketID": ticket.ID,
			"email":    ticket.CustomerEmail,
		}).WithError(err).Error("Failed to send confirmation email")
	} else {
		log.WithField("ticketID", ticket.ID).Info("Confirmation email sent")
	}

	if c.metrics != nil {
		c.metrics.RecordNotification(result)
	}
	return err == nil
}

func (c *LifecycleController) inTransaction(ctx context.Context, fn func(uow UnitOfWork) error) error {
	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		if err := uow.Rollback(); err != nil {
			log.WithError(err).Warn("Failed to roll back unit of work")
		}
	}()

	if err := fn(uow); err != nil {
		return err
	}
	return uow.Commit()
}

func (c *LifecycleController) read(ctx context.Context, fn func(uow UnitOfWork) error) error {
	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	return fn(uow)
}

// IsNotFound reports whether err means the requested ticket or payment does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, entities.ErrTicketNotFound) ||
		errors.Is(err, entities.ErrNoPaymentReference) ||
		errors.Is(err, entities.ErrPaymentNotFound)
}
