package application

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"lotterypay/domain/entities"

	"github.com/stretchr/testify/assert"
)

type stubCallbackHandler struct {
	outcome *CallbackOutcome
	err     error
	panics  bool
}

func (h *stubCallbackHandler) HandleCallback(ctx context.Context, reference string) (*CallbackOutcome, error) {
	if h.panics {
		panic("nil map write")
	}
	return h.outcome, h.err
}

func TestCallbackWorker_Process(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		handler    *stubCallbackHandler
		wantResult string
	}{
		{
			name:       "processed",
			handler:    &stubCallbackHandler{outcome: &CallbackOutcome{TicketID: testTicketID, GatewayStatus: entities.PaymentStatusPaid}},
			wantResult: "processed",
		},
		{
			name:       "unknown reference",
			handler:    &stubCallbackHandler{err: fmt.Errorf("%w: tr_x", entities.ErrPaymentNotFound)},
			wantResult: "unknown_reference",
		},
		{
			name:       "gateway error is swallowed",
			handler:    &stubCallbackHandler{err: errors.New("gateway timeout")},
			wantResult: "error",
		},
		{
			name:       "panic is recovered",
			handler:    &stubCallbackHandler{panics: true},
			wantResult: "panic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			metrics := newRecordingMetrics()
			worker := NewCallbackWorker(tt.handler, metrics)

			assert.NotPanics(t, func() {
				worker.Process(context.Background(), "tr_x")
			})
			assert.Equal(t, 1, metrics.callbacks[tt.wantResult])
		})
	}
}
