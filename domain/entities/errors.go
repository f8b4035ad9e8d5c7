package entities

import (
	"errors"
	"strings"
)

var (
	ErrTicketNotFound       = errors.New("ticket not found")
	ErrNoPaymentReference   = errors.New("ticket has no payment reference")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrPaymentAlreadyLinked = errors.New("ticket already has a payment reference")
	ErrGatewayUnavailable   = errors.New("payment gateway unavailable")
	ErrInvalidSamplerConfig = errors.New("invalid number sampler configuration")
)

// ValidationError reports caller input that cannot be accepted
type ValidationError struct {
	Message string
	// Fields lists the required fields when input was missing
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Fields, ", ")
}

// NewValidationError creates a validation error with a caller facing message
func NewValidationError(message string, fields ...string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}
