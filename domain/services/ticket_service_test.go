package services

import (
	"errors"
	"testing"

	"lotterypay/domain/entities"
	"lotterypay/domain/testhelpers"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketService_Validate(t *testing.T) {
	t.Parallel()

	valid := TicketRequest{
		CustomerEmail:  "jan@example.nl",
		CustomerName:   "Jan",
		TicketCount:    1,
		PricePerTicket: 1,
	}

	tests := []struct {
		name    string
		mutate  func(r *TicketRequest)
		wantMsg string
	}{
		{name: "minimal valid request", mutate: func(r *TicketRequest) {}},
		{name: "maximum ticket count", mutate: func(r *TicketRequest) { r.TicketCount = 100 }},
		{name: "missing email", mutate: func(r *TicketRequest) { r.CustomerEmail = " " }, wantMsg: "Missing required fields"},
		{name: "missing name", mutate: func(r *TicketRequest) { r.CustomerName = "" }, wantMsg: "Missing required fields"},
		{name: "zero tickets", mutate: func(r *TicketRequest) { r.TicketCount = 0 }, wantMsg: "Ticket count must be between 1 and 100"},
		{name: "too many tickets", mutate: func(r *TicketRequest) { r.TicketCount = 101 }, wantMsg: "Ticket count must be between 1 and 100"},
		{name: "zero price", mutate: func(r *TicketRequest) { r.PricePerTicket = 0 }, wantMsg: "Price per ticket must be at least €0.01"},
	}

	service := NewTicketService(&testhelpers.MockNumberDrawer{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := valid
			tt.mutate(&req)

			err := service.Validate(req)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}

			var validationErr *entities.ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tt.wantMsg, validationErr.Message)
		})
	}
}

func TestTicketService_NewTicket(t *testing.T) {
	t.Parallel()

	drawn := entities.Numbers{{1, 2, 3, 4, 5, 6}, {7, 8, 9, 10, 11, 12}}
	drawer := &testhelpers.MockNumberDrawer{}
	drawer.On("Draw", 2).Return(drawn, nil)

	service := NewTicketService(drawer)
	ticket, err := service.NewTicket(TicketRequest{
		CustomerEmail:  " jan@example.nl ",
		CustomerName:   "Jan",
		TicketCount:    2,
		PricePerTicket: 500,
	})
	require.NoError(t, err)

	_, parseErr := uuid.Parse(ticket.ID)
	assert.NoError(t, parseErr)
	assert.Equal(t, "jan@example.nl", ticket.CustomerEmail)
	assert.Equal(t, entities.Cents(1000), ticket.Amount)
	assert.Equal(t, "10.00", ticket.Amount.Decimal())
	assert.Equal(t, drawn, ticket.Numbers)
	assert.Len(t, ticket.Numbers, ticket.TicketCount)
	assert.Equal(t, entities.TicketStatusPending, ticket.PaymentStatus)
	assert.Nil(t, ticket.PaymentID)
	assert.Nil(t, ticket.PaidAt)
	assert.False(t, ticket.CreatedAt.IsZero())
	drawer.AssertExpectations(t)
}

func TestTicketService_NewTicketDoesNotDrawOnInvalidInput(t *testing.T) {
	t.Parallel()

	drawer := &testhelpers.MockNumberDrawer{}
	service := NewTicketService(drawer)

	_, err := service.NewTicket(TicketRequest{CustomerEmail: "a@b.nl", CustomerName: "A", TicketCount: 101, PricePerTicket: 100})
	require.Error(t, err)
	drawer.AssertNotCalled(t, "Draw", 101)
}

func TestTicketService_NewTicketPropagatesDrawError(t *testing.T) {
	t.Parallel()

	drawer := &testhelpers.MockNumberDrawer{}
	drawer.On("Draw", 1).Return(nil, errors.New("entropy exhausted"))
	service := NewTicketService(drawer)

	_, err := service.NewTicket(TicketRequest{CustomerEmail: "a@b.nl", CustomerName: "A", TicketCount: 1, PricePerTicket: 100})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entropy exhausted")
}

func TestChargeDescription(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "De Boss Loterij - 3 lot(en)", ChargeDescription(3))
}
