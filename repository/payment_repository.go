package repository

import (
	"context"
	"errors"
	"fmt"

	"lotterypay/database"
	"lotterypay/domain/entities"
	"lotterypay/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

const paymentColumns = `id, mollie_payment_id, ticket_id, amount_cents, status, checkout_url, created_at, updated_at`

// PaymentRepository implements payment record data access
type PaymentRepository struct {
	q Queryable
}

// NewPaymentRepository creates a payment repository on the pool
func NewPaymentRepository(db *database.DB) interfaces.PaymentRepository {
	return &PaymentRepository{q: db.Pool}
}

func newPaymentRepositoryWithTx(tx Queryable) interfaces.PaymentRepository {
	return &PaymentRepository{q: tx}
}

// Create inserts a payment record and fills in its timestamps
func (r *PaymentRepository) Create(ctx context.Context, payment *entities.Payment) error {
	query := `
		INSERT INTO payments (id, mollie_payment_id, ticket_id, amount_cents, status, checkout_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		payment.ID,
		payment.MolliePaymentID,
		payment.TicketID,
		int64(payment.Amount),
		string(payment.Status),
		payment.CheckoutURL,
	).Scan(&payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment %s: %w", payment.MolliePaymentID, err)
	}

	return nil
}

// GetByExternalReference retrieves a payment by its gateway reference
func (r *PaymentRepository) GetByExternalReference(ctx context.Context, reference string) (*entities.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE mollie_payment_id = $1`

	payment, err := scanPayment(r.q.QueryRow(ctx, query, reference))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment %s: %w", reference, err)
	}
	return payment, nil
}

// GetByTicketID retrieves the payment opened for a ticket
func (r *PaymentRepository) GetByTicketID(ctx context.Context, ticketID string) (*entities.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE ticket_id = $1 ORDER BY created_at DESC LIMIT 1`

	payment, err := scanPayment(r.q.QueryRow(ctx, query, ticketID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment for ticket %s: %w", ticketID, err)
	}
	return payment, nil
}

// UpdateStatus records the latest gateway status
func (r *PaymentRepository) UpdateStatus(ctx context.Context, reference string, status entities.PaymentStatus) error {
	query := `
		UPDATE payments
		SET status = $2, updated_at = NOW()
		WHERE mollie_payment_id = $1
	`

	tag, err := r.q.Exec(ctx, query, reference, string(status))
	if err != nil {
		return fmt.Errorf("failed to update payment %s: %w", reference, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", entities.ErrPaymentNotFound, reference)
	}

	return nil
}

func scanPayment(row pgx.Row) (*entities.Payment, error) {
	var payment entities.Payment
	var amount int64
	var status string

	err := row.Scan(
		&payment.ID,
		&payment.MolliePaymentID,
		&payment.TicketID,
		&amount,
		&status,
		&payment.CheckoutURL,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	payment.Amount = entities.Cents(amount)
	payment.Status = entities.PaymentStatus(status)
	return &payment, nil
}
