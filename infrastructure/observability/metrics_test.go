package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"lotterypay/config"
	"lotterypay/domain/entities"
	"lotterypay/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestProvider(t *testing.T) (*MetricsProvider, *sdkmetric.ManualReader) {
	t.Helper()

	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true

	reader := sdkmetric.NewManualReader()
	mp := newMetricsProviderWithReader(cfg, reader)
	require.NoError(t, mp.Initialize(context.Background()))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumWhere(t *testing.T, data metricdata.Aggregation, key, value string) int64 {
	t.Helper()

	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", data)

	var total int64
	for _, dp := range sum.DataPoints {
		if key == "" {
			total += dp.Value
			continue
		}
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

func TestMetricsProvider_Counters(t *testing.T) {
	mp, reader := newTestProvider(t)

	mp.RecordTicketCreated(3)
	mp.RecordTicketCreated(1)
	mp.RecordNotification("sent")
	mp.RecordNotification("failed")
	mp.RecordNotification("sent")
	mp.RecordCallbackProcessed("processed")
	mp.RecordCallbackProcessed("unknown_reference")
	mp.RecordStatusChange(context.Background(), "paid")

	data := collect(t, reader)

	assert.Equal(t, int64(2), sumWhere(t, data[TicketsCreatedTotal], "", ""))
	assert.Equal(t, int64(4), sumWhere(t, data[TicketUnitsTotal], "", ""))
	assert.Equal(t, int64(2), sumWhere(t, data[NotificationsTotal], LabelResult, "sent"))
	assert.Equal(t, int64(1), sumWhere(t, data[NotificationsTotal], LabelResult, "failed"))
	assert.Equal(t, int64(1), sumWhere(t, data[CallbacksReceivedTotal], LabelResult, "unknown_reference"))
	assert.Equal(t, int64(1), sumWhere(t, data[PaymentStatusChangesTotal], LabelStatus, "paid"))
}

func TestMetricsProvider_GatewayHistogram(t *testing.T) {
	mp, reader := newTestProvider(t)

	mp.RecordGatewayRequest(context.Background(), "create_payment", 120*time.Millisecond, nil)
	mp.RecordGatewayRequest(context.Background(), "get_payment", 2*time.Second, errors.New("timeout"))

	data := collect(t, reader)
	hist, ok := data[GatewayRequestDuration].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 2)

	for _, dp := range hist.DataPoints {
		op, _ := dp.Attributes.Value(LabelOperation)
		outcome, _ := dp.Attributes.Value(LabelOutcome)
		switch op.AsString() {
		case "create_payment":
			assert.Equal(t, OutcomeSuccess, outcome.AsString())
		case "get_payment":
			assert.Equal(t, OutcomeError, outcome.AsString())
		default:
			t.Fatalf("unexpected operation %q", op.AsString())
		}
		assert.Equal(t, uint64(1), dp.Count)
	}
}

func TestMetricsProvider_SubscribeRecordsStatusChanges(t *testing.T) {
	mp, reader := newTestProvider(t)

	bus := events.NewBus()
	mp.Subscribe(bus)

	bus.Emit(context.Background(), events.TicketStatusChangedEvent{
		TicketID:  "t1",
		OldStatus: entities.TicketStatusPending,
		NewStatus: entities.TicketStatusFailed,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Wait(ctx))

	data := collect(t, reader)
	assert.Equal(t, int64(1), sumWhere(t, data[PaymentStatusChangesTotal], LabelStatus, "failed"))
}

func TestMetricsProvider_DisabledIsNoop(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		enabled  bool
		exporter string
	}{
		{name: "otel disabled", enabled: false, exporter: "console"},
		{name: "exporter none", enabled: true, exporter: "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewTestConfig()
			cfg.OTelEnabled = tt.enabled
			cfg.OTelExporterType = tt.exporter

			mp := NewMetricsProvider(cfg)
			require.NoError(t, mp.Initialize(context.Background()))

			assert.NotPanics(t, func() {
				mp.RecordTicketCreated(2)
				mp.RecordNotification("sent")
				mp.RecordCallbackProcessed("processed")
				mp.RecordStatusChange(context.Background(), "paid")
				mp.RecordGatewayRequest(context.Background(), "get_payment", time.Millisecond, nil)
			})
			assert.NoError(t, mp.Shutdown(context.Background()))
		})
	}
}

func TestMetricsProvider_UnknownExporter(t *testing.T) {
	t.Parallel()

	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelExporterType = "prometheus"

	err := NewMetricsProvider(cfg).Initialize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown exporter type")
}
