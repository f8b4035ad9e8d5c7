package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"lotterypay/database"
	"lotterypay/domain/entities"
	"lotterypay/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

const ticketColumns = `id, customer_email, customer_name, lottery_numbers, ticket_count,
	amount_cents, payment_id, payment_status, created_at, paid_at`

// TicketRepository implements ticket data access
type TicketRepository struct {
	q Queryable
}

// NewTicketRepository creates a ticket repository on the pool
func NewTicketRepository(db *database.DB) interfaces.TicketRepository {
	return &TicketRepository{q: db.Pool}
}

func newTicketRepositoryWithTx(tx Queryable) interfaces.TicketRepository {
	return &TicketRepository{q: tx}
}

// Create inserts a new ticket
func (r *TicketRepository) Create(ctx context.Context, ticket *entities.Ticket) error {
	numbers, err := json.Marshal(ticket.Numbers)
	if err != nil {
		return fmt.Errorf("failed to encode lottery numbers: %w", err)
	}

	query := `
		INSERT INTO lottery_tickets (id, customer_email, customer_name, lottery_numbers,
			ticket_count, amount_cents, payment_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.q.Exec(ctx, query,
		ticket.ID,
		ticket.CustomerEmail,
		ticket.CustomerName,
		numbers,
		ticket.TicketCount,
		int64(ticket.Amount),
		string(ticket.PaymentStatus),
		ticket.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create ticket %s: %w", ticket.ID, err)
	}

	return nil
}

// GetByID retrieves a ticket by ID
func (r *TicketRepository) GetByID(ctx context.Context, id string) (*entities.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM lottery_tickets WHERE id = $1`

	ticket, err := scanTicket(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket %s: %w", id, err)
	}
	return ticket, nil
}

// GetByEmail returns all tickets for an email address, newest first
func (r *TicketRepository) GetByEmail(ctx context.Context, email string) ([]*entities.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM lottery_tickets
		WHERE customer_email = $1
		ORDER BY created_at DESC, id
	`

	rows, err := r.q.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets by email: %w", err)
	}
	defer rows.Close()

	tickets := make([]*entities.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tickets: %w", err)
	}

	return tickets, nil
}

// AttachPayment links the gateway reference to a ticket exactly once
func (r *TicketRepository) AttachPayment(ctx context.Context, ticketID, paymentID string) error {
	query := `
		UPDATE lottery_tickets
		SET payment_id = $2
		WHERE id = $1 AND payment_id IS NULL
	`

	tag, err := r.q.Exec(ctx, query, ticketID, paymentID)
	if err != nil {
		return fmt.Errorf("failed to attach payment to ticket %s: %w", ticketID, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	existing, err := r.GetByID(ctx, ticketID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("%w: %s", entities.ErrTicketNotFound, ticketID)
	}
	return fmt.Errorf("%w: %s", entities.ErrPaymentAlreadyLinked, ticketID)
}

// TransitionStatus moves a ticket out of pending.
// Only one caller can win the transition; the others get nil.
func (r *TicketRepository) TransitionStatus(ctx context.Context, ticketID string, to entities.TicketStatus) (*entities.Ticket, error) {
	if !to.IsTerminal() {
		return nil, fmt.Errorf("cannot transition ticket %s to non-terminal status %s", ticketID, to)
	}

	query := `
		UPDATE lottery_tickets
		SET payment_status = $2::varchar,
			paid_at = CASE WHEN $2::varchar = 'paid' THEN NOW() ELSE paid_at END
		WHERE id = $1 AND payment_status = 'pending'
		RETURNING ` + ticketColumns

	ticket, err := scanTicket(r.q.QueryRow(ctx, query, ticketID, string(to)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to transition ticket %s to %s: %w", ticketID, to, err)
	}
	return ticket, nil
}

func scanTicket(row pgx.Row) (*entities.Ticket, error) {
	var ticket entities.Ticket
	var numbers []byte
	var amount int64
	var status string

	err := row.Scan(
		&ticket.ID,
		&ticket.CustomerEmail,
		&ticket.CustomerName,
		&numbers,
		&ticket.TicketCount,
		&amount,
		&ticket.PaymentID,
		&status,
		&ticket.CreatedAt,
		&ticket.PaidAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(numbers, &ticket.Numbers); err != nil {
		return nil, fmt.Errorf("failed to decode lottery numbers: %w", err)
	}
	ticket.Amount = entities.Cents(amount)
	ticket.PaymentStatus = entities.TicketStatus(status)

	return &ticket, nil
}
