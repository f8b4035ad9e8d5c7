package testhelpers

import (
	"context"

	"lotterypay/domain/entities"
	"lotterypay/domain/interfaces"
	"lotterypay/events"

	"github.com/stretchr/testify/mock"
)

// MockTicketRepository is a mock implementation of TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) Create(ctx context.Context, ticket *entities.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockTicketRepository) GetByID(ctx context.Context, id string) (*entities.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Ticket), args.Error(1)
}

func (m *MockTicketRepository) GetByEmail(ctx context.Context, email string) ([]*entities.Ticket, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Ticket), args.Error(1)
}

func (m *MockTicketRepository) AttachPayment(ctx context.Context, ticketID, paymentID string) error {
	args := m.Called(ctx, ticketID, paymentID)
	return args.Error(0)
}

func (m *MockTicketRepository) TransitionStatus(ctx context.Context, ticketID string, to entities.TicketStatus) (*entities.Ticket, error) {
	args := m.Called(ctx, ticketID, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Ticket), args.Error(1)
}

// MockPaymentRepository is a mock implementation of PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *entities.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByExternalReference(ctx context.Context, reference string) (*entities.Payment, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByTicketID(ctx context.Context, ticketID string) (*entities.Payment, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payment), args.Error(1)
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, reference string, status entities.PaymentStatus) error {
	args := m.Called(ctx, reference, status)
	return args.Error(0)
}

// MockPaymentGateway is a mock implementation of PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) OpenCharge(ctx context.Context, req interfaces.ChargeRequest) (*entities.ChargeResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ChargeResult), args.Error(1)
}

func (m *MockPaymentGateway) GetStatus(ctx context.Context, reference string) (entities.PaymentStatus, error) {
	args := m.Called(ctx, reference)
	return args.Get(0).(entities.PaymentStatus), args.Error(1)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendConfirmation(ctx context.Context, ticket *entities.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

// MockNumberDrawer is a mock implementation of NumberDrawer
type MockNumberDrawer struct {
	mock.Mock
}

func (m *MockNumberDrawer) Draw(count int) (entities.Numbers, error) {
	args := m.Called(count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entities.Numbers), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}
