package observability

// Metric name prefixes
const (
	MetricPrefix = "lotterypay"
)

// Metric names
const (
	// Ticket metrics
	TicketsCreatedTotal = MetricPrefix + ".tickets.created_total"
	TicketUnitsTotal    = MetricPrefix + ".tickets.units_total"

	// Payment metrics
	PaymentStatusChangesTotal = MetricPrefix + ".payments.status_changes_total"
	GatewayRequestDuration    = MetricPrefix + ".gateway.request_duration"

	// Callback metrics
	CallbacksReceivedTotal = MetricPrefix + ".callbacks.received_total"

	// Notification metrics
	NotificationsTotal = MetricPrefix + ".notifications_total"
)

// Label keys
const (
	LabelStatus    = "status"
	LabelResult    = "result"
	LabelOperation = "operation"
	LabelOutcome   = "outcome"
)

// Gateway request outcomes
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)
