package events

import (
	"context"
	"sync"
	"time"

	"lotterypay/domain/entities"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeTicketCreated       EventType = "ticket_created"
	EventTypeTicketStatusChanged EventType = "ticket_status_changed"
	EventTypeCallbackReceived    EventType = "callback_received"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// TicketCreatedEvent is emitted once a ticket has a gateway charge attached
type TicketCreatedEvent struct {
	TicketID      string
	PaymentID     string
	CustomerEmail string
	TicketCount   int
	Amount        entities.Cents
}

func (e TicketCreatedEvent) Type() EventType {
	return EventTypeTicketCreated
}

// TicketStatusChangedEvent represents a pending ticket settling as paid or failed
type TicketStatusChangedEvent struct {
	TicketID      string
	PaymentID     string
	CustomerEmail string
	TicketCount   int
	Amount        entities.Cents
	OldStatus     entities.TicketStatus
	NewStatus     entities.TicketStatus
	GatewayStatus entities.PaymentStatus
	ChangedAt     time.Time
}

func (e TicketStatusChangedEvent) Type() EventType {
	return EventTypeTicketStatusChanged
}

// CallbackReceivedEvent represents a gateway webhook waiting to be processed
type CallbackReceivedEvent struct {
	EventID    string
	Reference  string
	ReceivedAt time.Time
}

func (e CallbackReceivedEvent) Type() EventType {
	return EventTypeCallbackReceived
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	inflight sync.WaitGroup
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers.
// Handlers run on their own goroutines; a panicking handler is logged and dropped.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	for i, handler := range handlers {
		b.inflight.Add(1)
		go func(h Handler, handlerIndex int) {
			defer b.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// Wait blocks until every handler started by Emit has returned or ctx is done
func (b *Bus) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TransactionalBus holds events raised inside a unit of work until it commits
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits pending events after a successful commit.
// Handlers get a context detached from the request that committed.
func (b *TransactionalBus) Flush(ctx context.Context) {
	eventCtx := context.WithoutCancel(ctx)

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}

	log.WithField("eventCount", len(b.pending)).Debug("Flushed pending events")
	b.pending = nil
}

// Discard drops pending events after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
