package infrastructure

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lotterypay/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	CallbackSubject = "lottery.payments.callback"
	CallbackStream  = "lottery_callbacks"
)

// NATSCallbackQueue hands webhooks to the worker through a JetStream work queue
type NATSCallbackQueue struct {
	client    *NATSClient
	processor CallbackProcessor

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

// NewNATSCallbackQueue creates a queue on an already connected client
func NewNATSCallbackQueue(client *NATSClient, processor CallbackProcessor) *NATSCallbackQueue {
	return &NATSCallbackQueue{
		client:    client,
		processor: processor,
	}
}

// Start ensures the stream exists and begins consuming callbacks
func (q *NATSCallbackQueue) Start() error {
	if err := q.client.EnsureStream(CallbackStream, []string{CallbackSubject}, "Payment gateway webhooks awaiting a status check"); err != nil {
		return fmt.Errorf("failed to ensure callback stream: %w", err)
	}
	if err := q.client.Subscribe(CallbackSubject, q.handle); err != nil {
		return fmt.Errorf("failed to subscribe to callbacks: %w", err)
	}
	return nil
}

// Enqueue publishes reference to the callback stream
func (q *NATSCallbackQueue) Enqueue(ctx context.Context, reference string) error {
	q.mu.Lock()
	closed := q.closed
	q.mu.Unlock()
	if closed {
		return ErrQueueClosed
	}

	data, err := encodeCallback(events.CallbackReceivedEvent{
		EventID:    uuid.NewString(),
		Reference:  reference,
		ReceivedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return q.client.Publish(ctx, CallbackSubject, data)
}

func (q *NATSCallbackQueue) handle(data []byte) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return fmt.Errorf("callback queue closed, dropping message")
	}
	q.inflight.Add(1)
	q.mu.Unlock()
	defer q.inflight.Done()

	event, err := decodeCallback(data)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"eventID":    event.EventID,
		"paymentID":  event.Reference,
		"receivedAt": event.ReceivedAt,
	}).Debug("Processing callback from NATS")
	q.processor.Process(context.Background(), event.Reference)
	return nil
}

// Close drains the subscription and waits for in-flight callbacks
func (q *NATSCallbackQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.client.Drain()

	done := make(chan struct{})
	go func() {
		q.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("NATS callback queue drained")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
