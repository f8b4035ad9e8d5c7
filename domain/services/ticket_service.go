package services

import (
	"fmt"
	"strings"
	"time"

	"lotterypay/domain/entities"
	"lotterypay/domain/interfaces"

	"github.com/google/uuid"
)

const (
	MinTicketCount = 1
	MaxTicketCount = 100

	// MinPricePerTicket is one cent
	MinPricePerTicket entities.Cents = 1

	chargeDescriptionPrefix = "De Boss Loterij"
)

// TicketRequest is a validated-on-use purchase request
type TicketRequest struct {
	CustomerEmail  string
	CustomerName   string
	TicketCount    int
	PricePerTicket entities.Cents
}

// RequiredTicketFields lists the request fields that must be present
var RequiredTicketFields = []string{"customer_email", "customer_name", "ticket_count", "price_per_ticket"}

// TicketService holds the rules for building new tickets
type TicketService struct {
	drawer interfaces.NumberDrawer
	now    func() time.Time
}

// NewTicketService creates a ticket service drawing numbers from drawer
func NewTicketService(drawer interfaces.NumberDrawer) *TicketService {
	return &TicketService{
		drawer: drawer,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Validate checks a purchase request, returning a *entities.ValidationError
func (s *TicketService) Validate(req TicketRequest) error {
	var missing []string
	if strings.TrimSpace(req.CustomerEmail) == "" {
		missing = append(missing, "customer_email")
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		missing = append(missing, "customer_name")
	}
	if len(missing) > 0 {
		return entities.NewValidationError("Missing required fields", RequiredTicketFields...)
	}

	if req.TicketCount < MinTicketCount || req.TicketCount > MaxTicketCount {
		return entities.NewValidationError(
			fmt.Sprintf("Ticket count must be between %d and %d", MinTicketCount, MaxTicketCount))
	}
	if req.PricePerTicket < MinPricePerTicket {
		return entities.NewValidationError("Price per ticket must be at least " + MinPricePerTicket.Euro())
	}
	return nil
}

// NewTicket validates req and builds a pending ticket with freshly drawn numbers
func (s *TicketService) NewTicket(req TicketRequest) (*entities.Ticket, error) {
	if err := s.Validate(req); err != nil {
		return nil, err
	}

	amount, err := req.PricePerTicket.Multiply(req.TicketCount)
	if err != nil {
		return nil, entities.NewValidationError("Price per ticket is too large")
	}

	numbers, err := s.drawer.Draw(req.TicketCount)
	if err != nil {
		return nil, fmt.Errorf("failed to draw lottery numbers: %w", err)
	}

	return &entities.Ticket{
		ID:            uuid.NewString(),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		Numbers:       numbers,
		TicketCount:   req.TicketCount,
		Amount:        amount,
		PaymentStatus: entities.TicketStatusPending,
		CreatedAt:     s.now(),
	}, nil
}

// ChargeDescription is the text shown on the hosted checkout
func ChargeDescription(ticketCount int) string {
	return fmt.Sprintf("%s - %d lot(en)", chargeDescriptionPrefix, ticketCount)
}
