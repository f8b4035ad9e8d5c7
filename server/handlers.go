package server

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"lotterypay/application"
	"lotterypay/domain/entities"
	"lotterypay/domain/services"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

const (
	serviceName    = "De Boss Loterij Payment Module"
	serviceVersion = "1.0.0"

	maxBodyBytes = 64 << 10
)

// TicketAPI is the lifecycle surface the HTTP handlers call
type TicketAPI interface {
	Create(ctx context.Context, req services.TicketRequest) (*application.CreateTicketResult, error)
	GetTicket(ctx context.Context, ticketID string) (*entities.Ticket, error)
	QueryStatus(ctx context.Context, ticketID string) (*entities.Ticket, error)
	ListTicketsByEmail(ctx context.Context, email string) ([]*entities.Ticket, error)
}

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	Healthy(ctx context.Context) error
}

// Handlers serves the lottery HTTP API
type Handlers struct {
	tickets TicketAPI
	queue   application.CallbackQueue
	health  HealthChecker
	now     func() time.Time
}

// NewHandlers creates the HTTP handlers
func NewHandlers(tickets TicketAPI, queue application.CallbackQueue, health HealthChecker) *Handlers {
	return &Handlers{
		tickets: tickets,
		queue:   queue,
		health:  health,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

type createTicketRequest struct {
	CustomerEmail  string      `json:"customer_email"`
	CustomerName   string      `json:"customer_name"`
	TicketCount    json.Number `json:"ticket_count"`
	PricePerTicket json.Number `json:"price_per_ticket"`
	UnitCount      json.Number `json:"unit_count"`
	UnitPrice      json.Number `json:"unit_price"`
}

type ticketStatusResponse struct {
	TicketID      string                `json:"ticket_id"`
	Status        entities.TicketStatus `json:"status"`
	PaymentStatus entities.TicketStatus `json:"payment_status"`
	PaidAt        *time.Time            `json:"paid_at"`
}

// CreateTicket handles POST /api/lottery/ticket
func (h *Handlers) CreateTicket(w http.ResponseWriter, r *http.Request) {
	body, err := decodeCreateTicket(w, r)
	if err != nil {
		log.WithError(err).Debug("Rejected malformed ticket request")
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, err := body.toTicketRequest()
	if err != nil {
		h.respondWithValidation(w, err)
		return
	}

	result, err := h.tickets.Create(r.Context(), req)
	if err != nil {
		var validationErr *entities.ValidationError
		if errors.As(err, &validationErr) {
			h.respondWithValidation(w, validationErr)
			return
		}
		log.WithFields(log.Fields{
			"email":       req.CustomerEmail,
			"ticketCount": req.TicketCount,
		}).WithError(err).Error("Failed to create ticket")
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Failed to create ticket",
			Message: err.Error(),
		})
		return
	}

	respondWithData(w, http.StatusCreated, result,
		"Ticket created successfully. Redirect customer to checkout_url to complete payment.")
}

// GetTicket handles GET /api/lottery/ticket/{ticketId}
func (h *Handlers) GetTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketId")

	ticket, err := h.tickets.GetTicket(r.Context(), ticketID)
	if err != nil {
		if application.IsNotFound(err) {
			respondWithError(w, http.StatusNotFound, "Ticket not found")
			return
		}
		log.WithField("ticketID", ticketID).WithError(err).Error("Failed to fetch ticket")
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch ticket")
		return
	}

	respondWithData(w, http.StatusOK, ticket, "")
}

// GetTicketStatus handles GET /api/lottery/ticket/{ticketId}/status
func (h *Handlers) GetTicketStatus(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketId")

	ticket, err := h.tickets.QueryStatus(r.Context(), ticketID)
	if err != nil {
		if application.IsNotFound(err) {
			respondWithError(w, http.StatusNotFound, "Ticket not found or no payment associated")
			return
		}
		log.WithField("ticketID", ticketID).WithError(err).Error("Failed to check payment status")
		respondWithError(w, http.StatusInternalServerError, "Failed to check payment status")
		return
	}

	respondWithData(w, http.StatusOK, ticketStatusResponse{
		TicketID:      ticket.ID,
		Status:        ticket.PaymentStatus,
		PaymentStatus: ticket.PaymentStatus,
		PaidAt:        ticket.PaidAt,
	}, "")
}

// ListTicketsByEmail handles GET /api/lottery/tickets/email/{email}
func (h *Handlers) ListTicketsByEmail(w http.ResponseWriter, r *http.Request) {
	// chi matches on the raw path, so an encoded "@" arrives as %40
	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid email address")
		return
	}

	tickets, err := h.tickets.ListTicketsByEmail(r.Context(), email)
	if err != nil {
		log.WithField("email", email).WithError(err).Error("Failed to fetch tickets")
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch tickets")
		return
	}
	if tickets == nil {
		tickets = []*entities.Ticket{}
	}

	respondWithList(w, tickets, len(tickets))
}

// Webhook handles POST /api/lottery/webhook.
// The gateway always gets its 200 once the id is present, before any processing
// happens; a callback that cannot be queued is logged and left to the status poll.
func (h *Handlers) Webhook(w http.ResponseWriter, r *http.Request) {
	reference := webhookReference(w, r)
	if reference == "" {
		respondWithError(w, http.StatusBadRequest, "Missing payment ID")
		return
	}

	if err := h.queue.Enqueue(r.Context(), reference); err != nil {
		log.WithField("paymentID", reference).WithError(err).Error("Failed to enqueue payment webhook")
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if err := h.health.Healthy(r.Context()); err != nil {
		log.WithError(err).Warn("Health check failed")
		status, code = "unavailable", http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]string{
		"status":    status,
		"timestamp": h.now().Format(time.RFC3339Nano),
		"service":   serviceName,
	})
}

// Index handles GET /
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    serviceName,
		"version": serviceVersion,
		"endpoints": map[string]string{
			"health":            "GET /health",
			"createTicket":      "POST /api/lottery/ticket",
			"getTicket":         "GET /api/lottery/ticket/:ticketId",
			"checkStatus":       "GET /api/lottery/ticket/:ticketId/status",
			"getTicketsByEmail": "GET /api/lottery/tickets/email/:email",
			"webhook":           "POST /api/lottery/webhook",
		},
	})
}

func (h *Handlers) respondWithValidation(w http.ResponseWriter, err error) {
	var validationErr *entities.ValidationError
	if !errors.As(err, &validationErr) {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	log.WithField("reason", validationErr.Message).Debug("Rejected ticket request")
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Error:    validationErr.Message,
		Required: validationErr.Fields,
	})
}

func decodeCreateTicket(w http.ResponseWriter, r *http.Request) (*createTicketRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if isFormRequest(r) {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return &createTicketRequest{
			CustomerEmail:  r.PostForm.Get("customer_email"),
			CustomerName:   r.PostForm.Get("customer_name"),
			TicketCount:    json.Number(r.PostForm.Get("ticket_count")),
			PricePerTicket: json.Number(r.PostForm.Get("price_per_ticket")),
			UnitCount:      json.Number(r.PostForm.Get("unit_count")),
			UnitPrice:      json.Number(r.PostForm.Get("unit_price")),
		}, nil
	}

	var body createTicketRequest
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&body); err != nil {
		return nil, err
	}
	return &body, nil
}

// toTicketRequest converts the wire body, accepting unit_count/unit_price as aliases
func (b *createTicketRequest) toTicketRequest() (services.TicketRequest, error) {
	count := strings.TrimSpace(b.TicketCount.String())
	if count == "" {
		count = strings.TrimSpace(b.UnitCount.String())
	}
	price := strings.TrimSpace(b.PricePerTicket.String())
	if price == "" {
		price = strings.TrimSpace(b.UnitPrice.String())
	}

	if strings.TrimSpace(b.CustomerEmail) == "" || strings.TrimSpace(b.CustomerName) == "" || count == "" || price == "" {
		return services.TicketRequest{}, entities.NewValidationError("Missing required fields", services.RequiredTicketFields...)
	}

	ticketCount, err := strconv.Atoi(count)
	if err != nil {
		return services.TicketRequest{}, entities.NewValidationError("Ticket count must be a whole number")
	}

	pricePerTicket, err := entities.ParseCents(price)
	if err != nil {
		if strings.HasPrefix(price, "-") {
			return services.TicketRequest{}, entities.NewValidationError("Price per ticket must be at least " + services.MinPricePerTicket.Euro())
		}
		return services.TicketRequest{}, entities.NewValidationError("Price per ticket must be an amount with at most two decimals")
	}

	return services.TicketRequest{
		CustomerEmail:  b.CustomerEmail,
		CustomerName:   b.CustomerName,
		TicketCount:    ticketCount,
		PricePerTicket: pricePerTicket,
	}, nil
}

// webhookReference reads the gateway id from a form or JSON body
func webhookReference(w http.ResponseWriter, r *http.Request) string {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if isFormRequest(r) {
		if err := r.ParseForm(); err != nil {
			return ""
		}
		return strings.TrimSpace(r.PostForm.Get("id"))
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.ID)
}

func isFormRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/x-www-form-urlencoded"
}
