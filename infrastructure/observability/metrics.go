package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lotterypay/config"
	"lotterypay/events"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

// MetricsProvider manages OpenTelemetry metrics for the payment service
type MetricsProvider struct {
	config        *config.Config
	reader        sdkmetric.Reader
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	mu            sync.RWMutex

	// Metric instruments
	ticketsCreatedCounter      metric.Int64Counter
	ticketUnitsCounter         metric.Int64Counter
	statusChangesCounter       metric.Int64Counter
	notificationsCounter       metric.Int64Counter
	callbacksCounter           metric.Int64Counter
	gatewayRequestDurationHist metric.Float64Histogram
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// newMetricsProviderWithReader creates a provider that exports through reader instead of the configured exporter
func newMetricsProviderWithReader(cfg *config.Config, reader sdkmetric.Reader) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
		reader: reader,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Debug("Metrics provider already initialized")
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	reader := mp.reader
	if reader == nil {
		var exporter sdkmetric.Exporter
		switch mp.config.OTelExporterType {
		case "console":
			exporter, err = stdoutmetric.New()
			if err != nil {
				return fmt.Errorf("failed to create console exporter: %w", err)
			}
			log.Info("Using console metric exporter")

		case "otlp":
			ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			exporter, err = otlpmetricgrpc.New(ctx,
				otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
				otlpmetricgrpc.WithInsecure(),
			)
			if err != nil {
				return fmt.Errorf("failed to create OTLP exporter: %w", err)
			}
			log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

		case "none":
			log.Info("Metrics export disabled (exporter_type='none')")
			mp.initialized = true
			return nil

		default:
			return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
		}

		reader = sdkmetric.NewPeriodicReader(
			exporter,
			sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
		)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)

	otel.SetMeterProvider(mp.meterProvider)
	mp.meter = mp.meterProvider.Meter("lotterypay")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.ticketsCreatedCounter, err = mp.meter.Int64Counter(
		TicketsCreatedTotal,
		metric.WithDescription("Total number of tickets with an opened charge"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create tickets created counter: %w", err)
	}

	mp.ticketUnitsCounter, err = mp.meter.Int64Counter(
		TicketUnitsTotal,
		metric.WithDescription("Total number of lottery units sold across tickets"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create ticket units counter: %w", err)
	}

	mp.statusChangesCounter, err = mp.meter.Int64Counter(
		PaymentStatusChangesTotal,
		metric.WithDescription("Total number of tickets settled as paid or failed"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create status changes counter: %w", err)
	}

	mp.notificationsCounter, err = mp.meter.Int64Counter(
		NotificationsTotal,
		metric.WithDescription("Total number of confirmation emails attempted"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create notifications counter: %w", err)
	}

	mp.callbacksCounter, err = mp.meter.Int64Counter(
		CallbacksReceivedTotal,
		metric.WithDescription("Total number of payment webhooks processed"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create callbacks counter: %w", err)
	}

	mp.gatewayRequestDurationHist, err = mp.meter.Float64Histogram(
		GatewayRequestDuration,
		metric.WithDescription("Duration of payment gateway requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 15.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create gateway request duration histogram: %w", err)
	}

	return nil
}

// Shutdown flushes pending measurements and stops the exporter
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// Subscribe records settled tickets from the event bus
func (mp *MetricsProvider) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeTicketStatusChanged, func(ctx context.Context, event events.Event) {
		changed, ok := event.(events.TicketStatusChangedEvent)
		if !ok {
			return
		}
		mp.RecordStatusChange(ctx, string(changed.NewStatus))
	})
}

// RecordTicketCreated records a ticket whose charge was opened
func (mp *MetricsProvider) RecordTicketCreated(ticketCount int) {
	if !mp.isEnabled() {
		return
	}

	ctx := context.Background()
	mp.ticketsCreatedCounter.Add(ctx, 1)
	mp.ticketUnitsCounter.Add(ctx, int64(ticketCount))
}

// RecordStatusChange records a ticket leaving pending
func (mp *MetricsProvider) RecordStatusChange(ctx context.Context, status string) {
	if !mp.isEnabled() {
		return
	}

	mp.statusChangesCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String(LabelStatus, status),
		),
	)
}

// RecordNotification records a confirmation email attempt
func (mp *MetricsProvider) RecordNotification(result string) {
	if !mp.isEnabled() {
		return
	}

	mp.notificationsCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelResult, result),
		),
	)
}

// RecordCallbackProcessed records a webhook handled by the callback worker
func (mp *MetricsProvider) RecordCallbackProcessed(result string) {
	if !mp.isEnabled() {
		return
	}

	mp.callbacksCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelResult, result),
		),
	)
}

// RecordGatewayRequest records one round trip to the payment gateway
func (mp *MetricsProvider) RecordGatewayRequest(ctx context.Context, operation string, duration time.Duration, err error) {
	if !mp.isEnabled() {
		return
	}

	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}

	mp.gatewayRequestDurationHist.Record(context.WithoutCancel(ctx), duration.Seconds(),
		metric.WithAttributes(
			attribute.String(LabelOperation, operation),
			attribute.String(LabelOutcome, outcome),
		),
	)
}

// isEnabled checks if metrics are enabled and instruments exist
func (mp *MetricsProvider) isEnabled() bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.config.OTelEnabled && mp.meterProvider != nil
}
