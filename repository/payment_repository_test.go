package repository

import (
	"context"
	"errors"
	"testing"

	"lotterypay/domain/entities"
	"lotterypay/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentRepository_CreateAndLookup(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ticketRepo := NewTicketRepository(testDB.DB)
	paymentRepo := NewPaymentRepository(testDB.DB)
	ctx := context.Background()

	ticket := testutil.CreateTestTicket("jan@example.nl", 2)
	require.NoError(t, ticketRepo.Create(ctx, ticket))

	payment := testutil.CreateTestPayment(ticket, "tr_lookup")
	require.NoError(t, paymentRepo.Create(ctx, payment))
	assert.False(t, payment.CreatedAt.IsZero())

	byRef, err := paymentRepo.GetByExternalReference(ctx, "tr_lookup")
	require.NoError(t, err)
	require.NotNil(t, byRef)
	assert.Equal(t, ticket.ID, byRef.TicketID)
	assert.Equal(t, ticket.Amount, byRef.Amount)
	assert.Equal(t, entities.PaymentStatusOpen, byRef.Status)
	require.NotNil(t, byRef.CheckoutURL)

	byTicket, err := paymentRepo.GetByTicketID(ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, byTicket)
	assert.Equal(t, payment.ID, byTicket.ID)

	missing, err := paymentRepo.GetByExternalReference(ctx, "tr_missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPaymentRepository_DuplicateReference(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ticketRepo := NewTicketRepository(testDB.DB)
	paymentRepo := NewPaymentRepository(testDB.DB)
	ctx := context.Background()

	ticket := testutil.CreateTestTicket("jan@example.nl", 1)
	require.NoError(t, ticketRepo.Create(ctx, ticket))
	require.NoError(t, paymentRepo.Create(ctx, testutil.CreateTestPayment(ticket, "tr_dup")))

	err := paymentRepo.Create(ctx, testutil.CreateTestPayment(ticket, "tr_dup"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payments_mollie_payment_id_key")
}

func TestPaymentRepository_UpdateStatus(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ticketRepo := NewTicketRepository(testDB.DB)
	paymentRepo := NewPaymentRepository(testDB.DB)
	ctx := context.Background()

	ticket := testutil.CreateTestTicket("jan@example.nl", 1)
	require.NoError(t, ticketRepo.Create(ctx, ticket))
	payment := testutil.CreateTestPayment(ticket, "tr_update")
	require.NoError(t, paymentRepo.Create(ctx, payment))

	require.NoError(t, paymentRepo.UpdateStatus(ctx, "tr_update", entities.PaymentStatusPaid))

	stored, err := paymentRepo.GetByExternalReference(ctx, "tr_update")
	require.NoError(t, err)
	assert.Equal(t, entities.PaymentStatusPaid, stored.Status)
	assert.False(t, stored.UpdatedAt.Before(payment.UpdatedAt))

	err = paymentRepo.UpdateStatus(ctx, "tr_unknown", entities.PaymentStatusPaid)
	assert.True(t, errors.Is(err, entities.ErrPaymentNotFound))
}
