package infrastructure

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"lotterypay/config"
	"lotterypay/domain/entities"
	"lotterypay/domain/utils"

	"github.com/go-mail/mail/v2"
	log "github.com/sirupsen/logrus"
)

const confirmationSubject = "Bevestiging van uw loterij deelname - De Boss Loterij"

var confirmationHTML = htmltemplate.Must(htmltemplate.New("confirmation.html").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background-color: #4CAF50; color: white; padding: 20px; text-align: center; }
    .content { background-color: #f9f9f9; padding: 20px; margin-top: 20px; }
    .numbers { background-color: white; padding: 15px; margin: 15px 0; border-left: 4px solid #4CAF50; }
    .footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
    .ticket-info { background-color: #e8f5e9; padding: 15px; margin: 15px 0; border-radius: 5px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>{{.Brand}}</h1>
      <p>Bevestiging van uw deelname</p>
    </div>
    <div class="content">
      <h2>Beste {{.CustomerName}},</h2>
      <p>Bedankt voor uw deelname aan {{.Brand}}! Uw betaling is succesvol ontvangen.</p>
      <div class="ticket-info">
        <strong>Bestelling details:</strong><br>
        Aantal loten: {{.TicketCount}}<br>
        Totaalbedrag: {{.Amount}}<br>
        Ticket ID: {{.TicketID}}
      </div>
      <h3>Uw lotnummers:</h3>
      <div class="numbers">
        <pre style="font-size: 14px; margin: 0;">{{.Numbers}}</pre>
      </div>
      <p>Bewaar deze e-mail goed! U heeft deze nodig om uw prijs op te halen indien u wint.</p>
      <p><strong>Veel succes!</strong></p>
    </div>
    <div class="footer">
      <p>Dit is een automatisch gegenereerde e-mail. Bewaar deze e-mail als bewijs van deelname.</p>
      <p>&copy; {{.Year}} {{.Brand}}</p>
    </div>
  </div>
</body>
</html>
`))

var confirmationText = texttemplate.Must(texttemplate.New("confirmation.txt").Parse(`{{.Brand}} - Bevestiging van uw deelname

Beste {{.CustomerName}},

Bedankt voor uw deelname aan {{.Brand}}! Uw betaling is succesvol ontvangen.

Bestelling details:
Aantal loten: {{.TicketCount}}
Totaalbedrag: {{.Amount}}
Ticket ID: {{.TicketID}}

Uw lotnummers:
{{.Numbers}}

Bewaar deze e-mail goed! U heeft deze nodig om uw prijs op te halen indien u wint.

Veel succes!

---
Dit is een automatisch gegenereerde e-mail.
© {{.Year}} {{.Brand}}
`))

type confirmationData struct {
	Brand        string
	CustomerName string
	TicketCount  int
	Amount       string
	TicketID     string
	Numbers      string
	Year         int
}

// EmailNotifier sends purchase confirmations over SMTP
type EmailNotifier struct {
	dialer    *mail.Dialer
	sender    mail.Sender
	fromEmail string
	fromName  string
	documents []TicketDocument
}

// NewEmailNotifier creates a notifier that dials the configured SMTP server per message.
// Each document is rendered and attached to the confirmation; nil documents are skipped.
func NewEmailNotifier(cfg *config.Config, documents ...TicketDocument) *EmailNotifier {
	dialer := mail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	dialer.SSL = cfg.SMTPSecure
	dialer.RetryFailure = false

	return &EmailNotifier{
		dialer:    dialer,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		documents: documents,
	}
}

// newEmailNotifierWithSender creates a notifier that hands messages to sender
func newEmailNotifierWithSender(cfg *config.Config, sender mail.Sender, documents ...TicketDocument) *EmailNotifier {
	n := NewEmailNotifier(cfg, documents...)
	n.sender = sender
	return n
}

// SendConfirmation mails the ticket's numbers to its buyer
func (n *EmailNotifier) SendConfirmation(ctx context.Context, ticket *entities.Ticket) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("confirmation for ticket %s not sent: %w", ticket.ID, err)
	}

	msg, err := n.buildConfirmation(ticket)
	if err != nil {
		return err
	}

	if n.sender != nil {
		err = mail.Send(n.sender, msg)
	} else {
		err = n.dialer.DialAndSend(msg)
	}
	if err != nil {
		return fmt.Errorf("failed to send confirmation for ticket %s: %w", ticket.ID, err)
	}
	return nil
}

func (n *EmailNotifier) buildConfirmation(ticket *entities.Ticket) (*mail.Message, error) {
	data := confirmationData{
		Brand:        n.fromName,
		CustomerName: ticket.CustomerName,
		TicketCount:  ticket.TicketCount,
		Amount:       ticket.Amount.Euro(),
		TicketID:     ticket.ID,
		Numbers:      utils.FormatNumbers(ticket.Numbers),
		Year:         time.Now().Year(),
	}

	var html, text bytes.Buffer
	if err := confirmationHTML.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("failed to render confirmation html: %w", err)
	}
	if err := confirmationText.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("failed to render confirmation text: %w", err)
	}

	m := mail.NewMessage()
	m.SetAddressHeader("From", n.fromEmail, n.fromName)
	m.SetHeader("To", ticket.CustomerEmail)
	m.SetHeader("Subject", confirmationSubject)
	m.SetBody("text/plain", text.String())
	m.AddAlternative("text/html", html.String())

	for _, doc := range n.documents {
		if doc == nil {
			continue
		}
		name := doc.FileName(ticket)
		data, err := doc.Render(ticket)
		if err != nil {
			log.WithFields(log.Fields{
				"ticketID":   ticket.ID,
				"attachment": name,
			}).WithError(err).Warn("Failed to render attachment, sending without it")
			continue
		}
		m.AttachReader(name, bytes.NewReader(data), mail.SetHeader(map[string][]string{
			"Content-Type": {doc.ContentType()},
		}))
	}

	return m, nil
}

// CheckConnection dials and authenticates against the SMTP server without sending
func (n *EmailNotifier) CheckConnection(ctx context.Context) error {
	type result struct {
		conn mail.SendCloser
		err  error
	}
	done := make(chan result, 1)
	go func() {
		conn, err := n.dialer.Dial()
		done <- result{conn: conn, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return fmt.Errorf("failed to connect to SMTP server %s:%d: %w", n.dialer.Host, n.dialer.Port, r.err)
		}
		return r.conn.Close()
	case <-ctx.Done():
		go func() {
			if r := <-done; r.err == nil {
				r.conn.Close()
			}
		}()
		return ctx.Err()
	}
}
