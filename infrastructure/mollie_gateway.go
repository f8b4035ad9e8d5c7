package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lotterypay/config"
	"lotterypay/domain/entities"
	"lotterypay/domain/interfaces"

	"github.com/VictorAvelar/mollie-api-go/v4/mollie"
	log "github.com/sirupsen/logrus"
)

// GatewayMetrics records the latency of gateway round trips
type GatewayMetrics interface {
	RecordGatewayRequest(ctx context.Context, operation string, duration time.Duration, err error)
}

// MollieGateway implements interfaces.PaymentGateway against the Mollie payments API
type MollieGateway struct {
	client      *mollie.Client
	redirectURL string
	webhookURL  string
	currency    string
	metrics     GatewayMetrics
}

// NewMollieGateway creates a gateway client from config; metrics may be nil
func NewMollieGateway(cfg *config.Config, metrics GatewayMetrics) (*MollieGateway, error) {
	client, err := mollie.NewClient(&http.Client{Timeout: 15 * time.Second}, mollie.NewAPIConfig(false))
	if err != nil {
		return nil, fmt.Errorf("failed to create Mollie client: %w", err)
	}
	if err := client.WithAuthenticationValue(cfg.MollieAPIKey); err != nil {
		return nil, fmt.Errorf("failed to set Mollie API key: %w", err)
	}

	if cfg.MollieAPIURL != "" {
		base, err := url.Parse(strings.TrimRight(cfg.MollieAPIURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid MOLLIE_API_URL %q: %w", cfg.MollieAPIURL, err)
		}
		client.BaseURL = base
	}

	return &MollieGateway{
		client:      client,
		redirectURL: cfg.RedirectURL,
		webhookURL:  cfg.WebhookURL,
		currency:    cfg.Currency,
		metrics:     metrics,
	}, nil
}

// OpenCharge creates a payment and returns its id and hosted checkout URL
func (g *MollieGateway) OpenCharge(ctx context.Context, req interfaces.ChargeRequest) (*entities.ChargeResult, error) {
	create := mollie.CreatePayment{
		Amount: &mollie.Amount{
			Currency: g.currency,
			Value:    req.Amount.Decimal(),
		},
		Description: req.Description,
		RedirectURL: g.returnURL(req.TicketID),
		WebhookURL:  g.webhookURL,
		Metadata: map[string]string{
			"ticket_id":      req.TicketID,
			"customer_email": req.CustomerEmail,
		},
	}

	var payment *mollie.Payment
	if err := g.call(ctx, "create_payment", func() (err error) {
		_, payment, err = g.client.Payments.Create(ctx, create, nil)
		return err
	}); err != nil {
		return nil, err
	}
	if payment == nil || payment.ID == "" {
		return nil, fmt.Errorf("%w: response has no payment id", entities.ErrGatewayUnavailable)
	}
	if payment.Links.Checkout == nil || payment.Links.Checkout.Href == "" {
		return nil, fmt.Errorf("%w: payment %s has no checkout link", entities.ErrGatewayUnavailable, payment.ID)
	}

	log.WithFields(log.Fields{
		"ticketID":  req.TicketID,
		"paymentID": payment.ID,
		"status":    payment.Status,
	}).Debug("Opened Mollie payment")

	return &entities.ChargeResult{
		ExternalReference: payment.ID,
		CheckoutURL:       payment.Links.Checkout.Href,
		Status:            entities.PaymentStatus(payment.Status),
	}, nil
}

// GetStatus fetches the authoritative status of a payment
func (g *MollieGateway) GetStatus(ctx context.Context, reference string) (entities.PaymentStatus, error) {
	// The reference becomes a path segment of the request
	if reference == "" || strings.ContainsAny(reference, "/?#%") {
		return "", fmt.Errorf("%w: invalid payment reference %q", entities.ErrPaymentNotFound, reference)
	}

	var payment *mollie.Payment
	if err := g.call(ctx, "get_payment", func() (err error) {
		_, payment, err = g.client.Payments.Get(ctx, reference, nil)
		return err
	}); err != nil {
		return "", err
	}
	if payment == nil || payment.Status == "" {
		return "", fmt.Errorf("%w: payment %s has no status", entities.ErrGatewayUnavailable, reference)
	}
	return entities.PaymentStatus(payment.Status), nil
}

func (g *MollieGateway) returnURL(ticketID string) string {
	u, err := url.Parse(g.redirectURL)
	if err != nil {
		return g.redirectURL + "?ticket=" + url.QueryEscape(ticketID)
	}
	q := u.Query()
	q.Set("ticket", ticketID)
	u.RawQuery = q.Encode()
	return u.String()
}

// call runs one API round trip, records its latency and wraps failures in ErrGatewayUnavailable
func (g *MollieGateway) call(ctx context.Context, operation string, fn func() error) (err error) {
	start := time.Now()
	defer func() {
		if g.metrics != nil {
			g.metrics.RecordGatewayRequest(ctx, operation, time.Since(start), err)
		}
	}()

	if err = fn(); err != nil {
		err = gatewayError(operation, err)
	}
	return err
}

func gatewayError(operation string, err error) error {
	var apiErr *mollie.BaseError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %s returned %d: %s: %s",
			entities.ErrGatewayUnavailable, operation, apiErr.Status, apiErr.Title, apiErr.Detail)
	}
	return fmt.Errorf("%w: %s: %v", entities.ErrGatewayUnavailable, operation, err)
}
