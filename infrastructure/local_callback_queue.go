package infrastructure

import (
	"context"
	"errors"
	"sync"
	"time"

	"lotterypay/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ErrQueueClosed is returned when a callback arrives after shutdown began
var ErrQueueClosed = errors.New("callback queue is closed")

// CallbackProcessor performs the authoritative status check for one webhook
type CallbackProcessor interface {
	Process(ctx context.Context, reference string)
}

// LocalCallbackQueue hands webhooks to the worker through the in-process event bus.
// It only processes callbacks it enqueued itself, so several queues can share a bus.
type LocalCallbackQueue struct {
	bus       *events.Bus
	processor CallbackProcessor

	mu       sync.Mutex
	closed   bool
	pending  map[string]struct{}
	inflight sync.WaitGroup
}

// NewLocalCallbackQueue creates the queue and subscribes its worker to the bus
func NewLocalCallbackQueue(bus *events.Bus, processor CallbackProcessor) *LocalCallbackQueue {
	q := &LocalCallbackQueue{
		bus:       bus,
		processor: processor,
		pending:   make(map[string]struct{}),
	}
	bus.Subscribe(events.EventTypeCallbackReceived, q.handle)
	return q
}

// Enqueue schedules reference for processing and returns immediately
func (q *LocalCallbackQueue) Enqueue(ctx context.Context, reference string) error {
	eventID := uuid.NewString()

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.pending[eventID] = struct{}{}
	q.inflight.Add(1)
	q.mu.Unlock()

	q.bus.Emit(context.WithoutCancel(ctx), events.CallbackReceivedEvent{
		EventID:    eventID,
		Reference:  reference,
		ReceivedAt: time.Now().UTC(),
	})
	return nil
}

func (q *LocalCallbackQueue) handle(ctx context.Context, event events.Event) {
	received, ok := event.(events.CallbackReceivedEvent)
	if !ok {
		log.WithField("eventType", event.Type()).Error("Unexpected event on callback queue")
		return
	}
	if !q.claim(received.EventID) {
		return
	}
	defer q.inflight.Done()

	log.WithFields(log.Fields{
		"eventID":   received.EventID,
		"paymentID": received.Reference,
	}).Debug("Processing queued callback")
	q.processor.Process(ctx, received.Reference)
}

// claim removes eventID from the pending set; false means another queue enqueued it
func (q *LocalCallbackQueue) claim(eventID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.pending[eventID]; !ok {
		return false
	}
	delete(q.pending, eventID)
	return true
}

// Close stops accepting callbacks and waits for queued ones to finish
func (q *LocalCallbackQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("Local callback queue drained")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
