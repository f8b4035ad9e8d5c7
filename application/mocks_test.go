package application

import (
	"context"
	"sync"

	"lotterypay/domain/interfaces"
	"lotterypay/domain/testhelpers"
	"lotterypay/events"
)

// recordingPublisher keeps events published inside a unit of work
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

// mockUnitOfWork hands out shared mock repositories
type mockUnitOfWork struct {
	factory *mockUnitOfWorkFactory
}

func (u *mockUnitOfWork) Begin(ctx context.Context) error { return nil }

func (u *mockUnitOfWork) Commit() error {
	u.factory.mu.Lock()
	defer u.factory.mu.Unlock()
	u.factory.commits++
	return nil
}

func (u *mockUnitOfWork) Rollback() error { return nil }

func (u *mockUnitOfWork) TicketRepository() interfaces.TicketRepository {
	return u.factory.tickets
}

func (u *mockUnitOfWork) PaymentRepository() interfaces.PaymentRepository {
	return u.factory.payments
}

func (u *mockUnitOfWork) EventBus() interfaces.EventPublisher {
	return u.factory.publisher
}

type mockUnitOfWorkFactory struct {
	mu        sync.Mutex
	commits   int
	tickets   *testhelpers.MockTicketRepository
	payments  *testhelpers.MockPaymentRepository
	publisher *recordingPublisher
}

func newMockUnitOfWorkFactory() *mockUnitOfWorkFactory {
	return &mockUnitOfWorkFactory{
		tickets:   &testhelpers.MockTicketRepository{},
		payments:  &testhelpers.MockPaymentRepository{},
		publisher: &recordingPublisher{},
	}
}

func (f *mockUnitOfWorkFactory) Create() UnitOfWork {
	return &mockUnitOfWork{factory: f}
}

// recordingMetrics counts lifecycle measurements
type recordingMetrics struct {
	mu            sync.Mutex
	created       int
	notifications map[string]int
	callbacks     map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		notifications: make(map[string]int),
		callbacks:     make(map[string]int),
	}
}

func (m *recordingMetrics) RecordTicketCreated(ticketCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
}

func (m *recordingMetrics) RecordNotification(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications[result]++
}

func (m *recordingMetrics) RecordCallbackProcessed(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks[result]++
}
