package ticketing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/ticketdesk/pkg/entities"
	"github.com/Jacobbrewer1/ticketdesk/pkg/logging"
	"github.com/Jacobbrewer1/ticketdesk/pkg/messages"
	"github.com/Jacobbrewer1/ticketdesk/pkg/ticketing/monitoring"
	"github.com/bwmarrin/discordgo"
)

const (
	// requesterAllow is granted to the user that opened the ticket.
	requesterAllow = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory

	// adminAllow is granted to every resolvable admin grant.
	adminAllow = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages
)

const (
	colorGreen = 0x2ecc71
	colorBlue  = 0x3498db
	colorRed   = 0xe74c3c
)

// openTicket creates the ticket channel for the interaction user and the resolved category.
func (s *Service) openTicket(ctx context.Context, l *slog.Logger, i *discordgo.Interaction, category string) error {
	user, err := interactionUser(i)
	if err != nil {
		return err
	}

	ticket := &entities.Ticket{
		GuildID:  i.GuildID,
		UserID:   user.ID,
		Username: user.Username,
		Category: category,
	}

	l = l.With(
		slog.String(logging.KeyUser, user.ID),
		slog.String(logging.KeyCategory, category),
	)

	// Create the channel.
	channel, err := s.platform.CreateTextChannel(ticket.GuildID, ticket.Name())
	if err != nil {
		return fmt.Errorf("error creating ticket channel: %w", err)
	}
	ticket.ChannelID = channel.ID

	// Apply the permission template.
	if err := s.applyPermissions(ctx, l, ticket); err != nil {
		return err
	}

	// Post the welcome message.
	if _, err := s.platform.SendMessage(ticket.ChannelID, welcomeMessage(user, category)); err != nil {
		return fmt.Errorf("error sending welcome message: %w", err)
	}

	monitoring.TicketsOpened.Inc()
	l.Info("Ticket opened", slog.String(logging.KeyTicketChannel, ticket.ChannelID))

	return s.respondEphemeral(i, fmt.Sprintf(messages.TicketCreated, ticket.ChannelID))
}

// applyPermissions hides the channel from everyone except the requester and the admin grants.
func (s *Service) applyPermissions(ctx context.Context, l *slog.Logger, ticket *entities.Ticket) error {
	// Deny @everyone, whose role ID is the guild ID.
	if err := s.platform.SetPermission(ticket.ChannelID, ticket.GuildID, discordgo.PermissionOverwriteTypeRole, 0, discordgo.PermissionViewChannel); err != nil {
		return fmt.Errorf("error denying everyone: %w", err)
	}

	// Allow the requester.
	if err := s.platform.SetPermission(ticket.ChannelID, ticket.UserID, discordgo.PermissionOverwriteTypeMember, requesterAllow, 0); err != nil {
		return fmt.Errorf("error allowing requester: %w", err)
	}

	// Allow the admin grants.
	admins, err := s.store.GetAdmins(ctx)
	if err != nil {
		return fmt.Errorf("error getting admins: %w", err)
	}

	for _, a := range admins {
		targetType, ok := s.platform.ResolveGrant(ticket.GuildID, a.ID)
		if !ok {
			monitoring.SkippedGrants.Inc()
			l.Debug("Skipping unresolvable admin grant", slog.String("grant_id", a.ID))
			continue
		}

		if err := s.platform.SetPermission(ticket.ChannelID, a.ID, targetType, adminAllow, 0); err != nil {
			return fmt.Errorf("error allowing admin %s: %w", a.ID, err)
		}
	}
	return nil
}

func welcomeMessage(user *discordgo.User, category string) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content: fmt.Sprintf(messages.TicketWelcome, user.Mention()),
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       messages.TicketWelcomeTitle,
				Description: fmt.Sprintf(messages.TicketWelcomeDescription, category),
				Color:       colorGreen,
			},
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    messages.CloseButtonLabel,
						Style:    discordgo.DangerButton,
						CustomID: ActionClose.CustomID(),
					},
				},
			},
		},
	}
}
