package application

import (
	"context"
	"errors"
	"time"

	"lotterypay/domain/entities"

	log "github.com/sirupsen/logrus"
)

// CallbackHandler settles a payment from its gateway reference
type CallbackHandler interface {
	HandleCallback(ctx context.Context, reference string) (*CallbackOutcome, error)
}

// CallbackMetrics counts processed webhooks by result
type CallbackMetrics interface {
	RecordCallbackProcessed(result string)
}

// CallbackWorker is the error boundary for webhook processing.
// Nothing it does is reported back to the gateway.
type CallbackWorker struct {
	handler CallbackHandler
	metrics CallbackMetrics
	timeout time.Duration
}

// NewCallbackWorker creates a worker; metrics may be nil
func NewCallbackWorker(handler CallbackHandler, metrics CallbackMetrics) *CallbackWorker {
	return &CallbackWorker{
		handler: handler,
		metrics: metrics,
		timeout: 60 * time.Second,
	}
}

// Process handles one webhook delivery, logging every failure and recovering panics
func (w *CallbackWorker) Process(ctx context.Context, reference string) {
	logger := log.WithField("paymentID", reference)

	result := "error"
	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Error("Callback processing panicked")
			result = "panic"
		}
		if w.metrics != nil {
			w.metrics.RecordCallbackProcessed(result)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	outcome, err := w.handler.HandleCallback(ctx, reference)
	switch {
	case errors.Is(err, entities.ErrPaymentNotFound):
		result = "unknown_reference"
		logger.Warn("Webhook for unknown payment reference")
	case err != nil:
		logger.WithError(err).Error("Failed to process payment webhook")
	default:
		result = "processed"
		logger.WithFields(log.Fields{
			"ticketID":      outcome.TicketID,
			"gatewayStatus": outcome.GatewayStatus,
			"transitioned":  outcome.Transitioned,
			"notified":      outcome.Notified,
		}).Info("Processed payment webhook")
	}
}
