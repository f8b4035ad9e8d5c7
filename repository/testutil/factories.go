package testutil

import (
	"time"

	"lotterypay/domain/entities"

	"github.com/google/uuid"
)

// CreateTestTicket creates a pending ticket with one number set per unit
func CreateTestTicket(email string, ticketCount int) *entities.Ticket {
	numbers := make(entities.Numbers, ticketCount)
	for i := range numbers {
		numbers[i] = []int{1, 2, 3, 4, 5, 6 + i%39}
	}
	return &entities.Ticket{
		ID:            uuid.NewString(),
		CustomerEmail: email,
		CustomerName:  "Test Klant",
		Numbers:       numbers,
		TicketCount:   ticketCount,
		Amount:        entities.Cents(250 * ticketCount),
		PaymentStatus: entities.TicketStatusPending,
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
}

// CreateTestPayment creates a payment record for ticket with the given gateway reference
func CreateTestPayment(ticket *entities.Ticket, reference string) *entities.Payment {
	checkout := "https://checkout.example/" + reference
	return &entities.Payment{
		ID:              uuid.NewString(),
		MolliePaymentID: reference,
		TicketID:        ticket.ID,
		Amount:          ticket.Amount,
		Status:          entities.PaymentStatusOpen,
		CheckoutURL:     &checkout,
	}
}
