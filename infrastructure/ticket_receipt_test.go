package infrastructure

import (
	"bytes"
	"testing"
	"time"

	"lotterypay/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketReceiptRenderer_Render(t *testing.T) {
	t.Parallel()

	paidAt := time.Date(2025, 3, 14, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		ticket func() *entities.Ticket
	}{
		{
			name:   "paid ticket",
			ticket: func() *entities.Ticket { tk := testTicket(); tk.PaidAt = &paidAt; return tk },
		},
		{
			name:   "without paid timestamp",
			ticket: testTicket,
		},
		{
			name: "accented customer name",
			ticket: func() *entities.Ticket {
				tk := testTicket()
				tk.CustomerName = "Zoë Brückner"
				return tk
			},
		},
	}

	renderer := NewTicketReceiptRenderer("De Boss Loterij")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := renderer.Render(tt.ticket())
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")), "output should be a PDF document")
			assert.True(t, bytes.Contains(data, []byte("%%EOF")))
		})
	}
}

func TestTicketReceiptRenderer_Attachment(t *testing.T) {
	t.Parallel()

	renderer := NewTicketReceiptRenderer("De Boss Loterij")
	ticket := testTicket()

	assert.Equal(t, "lot-"+ticket.ID+".pdf", renderer.FileName(ticket))
	assert.Equal(t, "application/pdf", renderer.ContentType())
}
