package infrastructure

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"lotterypay/domain/entities"
	"lotterypay/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	colorSuccess = 0x57F287
	colorDanger  = 0xED4245
)

// EmbedSender posts an embed to a Discord channel
type EmbedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordAlerter posts an operator alert for every settled ticket
type DiscordAlerter struct {
	sender    EmbedSender
	channelID string
}

// NewDiscordAlerter creates an alerter backed by a bot token REST session
func NewDiscordAlerter(token, channelID string) (*DiscordAlerter, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	return newDiscordAlerterWithSender(session, channelID), nil
}

func newDiscordAlerterWithSender(sender EmbedSender, channelID string) *DiscordAlerter {
	return &DiscordAlerter{
		sender:    sender,
		channelID: channelID,
	}
}

// Subscribe posts alerts for status changes raised on bus
func (a *DiscordAlerter) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeTicketStatusChanged, func(ctx context.Context, event events.Event) {
		changed, ok := event.(events.TicketStatusChangedEvent)
		if !ok {
			return
		}
		if err := a.PostStatusChange(changed); err != nil {
			log.WithField("ticketID", changed.TicketID).WithError(err).Warn("Failed to post Discord alert")
		}
	})
}

// PostStatusChange sends one embed describing a settled ticket
func (a *DiscordAlerter) PostStatusChange(event events.TicketStatusChangedEvent) error {
	if _, err := a.sender.ChannelMessageSendEmbed(a.channelID, statusChangeEmbed(event)); err != nil {
		return fmt.Errorf("failed to send status alert: %w", err)
	}
	return nil
}

func statusChangeEmbed(event events.TicketStatusChangedEvent) *discordgo.MessageEmbed {
	title := "Betaling ontvangen"
	color := colorSuccess
	if event.NewStatus != entities.TicketStatusPaid {
		title = "Betaling mislukt"
		color = colorDanger
	}

	return &discordgo.MessageEmbed{
		Title:       title,
		Description: fmt.Sprintf("Ticket `%s`", event.TicketID),
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Loten",
				Value:  strconv.Itoa(event.TicketCount),
				Inline: true,
			},
			{
				Name:   "Bedrag",
				Value:  event.Amount.Euro(),
				Inline: true,
			},
			{
				Name:   "Mollie status",
				Value:  string(event.GatewayStatus),
				Inline: true,
			},
			{
				Name:   "Betaling",
				Value:  event.PaymentID,
				Inline: false,
			},
		},
		Timestamp: event.ChangedAt.Format(time.RFC3339),
	}
}
