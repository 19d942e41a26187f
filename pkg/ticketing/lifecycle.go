package ticketing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/ticketdesk/pkg/messages"
	"github.com/Jacobbrewer1/ticketdesk/pkg/ticketing/monitoring"
	"github.com/bwmarrin/discordgo"
)

// closeTicket revokes the requester's access and offers the delete control.
func (s *Service) closeTicket(l *slog.Logger, i *discordgo.Interaction) error {
	channel, err := s.platform.Channel(i.ChannelID)
	if err != nil {
		return fmt.Errorf("error getting channel: %w", err)
	}

	requesters := ticketRequesters(channel)
	if len(requesters) == 0 {
		l.Debug("No requester overwrite on ticket channel")
	}

	for _, id := range requesters {
		// Revoking a missing overwrite leaves the channel in the same state.
		if err := s.platform.RemovePermission(channel.ID, id); err != nil && !isNotFound(err) {
			return fmt.Errorf("error revoking access for %s: %w", id, err)
		}
	}

	l.Info("Ticket closed", slog.Any("requesters", requesters))

	if err := s.platform.Respond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       messages.TicketClosedTitle,
					Description: messages.TicketClosedDescription,
					Color:       colorRed,
				},
			},
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							Label:    messages.DeleteButtonLabel,
							Style:    discordgo.SecondaryButton,
							CustomID: ActionDelete.CustomID(),
						},
					},
				},
			},
		},
	}); err != nil {
		return fmt.Errorf("error responding to interaction: %w", err)
	}
	return nil
}

// deleteTicket archives the channel transcript to the log channel and deletes the channel.
func (s *Service) deleteTicket(ctx context.Context, l *slog.Logger, i *discordgo.Interaction) error {
	// Acknowledge now, reading the history can outlast the response window.
	if err := s.platform.Respond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		return fmt.Errorf("error acknowledging interaction: %w", err)
	}

	if err := s.archiveAndDelete(ctx, l, i); err != nil {
		return &ackedError{err: err}
	}
	return nil
}

func (s *Service) archiveAndDelete(ctx context.Context, l *slog.Logger, i *discordgo.Interaction) error {
	channel, err := s.platform.Channel(i.ChannelID)
	if err != nil {
		return fmt.Errorf("error getting channel: %w", err)
	}

	transcript, count, err := s.exportTranscript(ctx, channel)
	if err != nil {
		return err
	}
	monitoring.TranscriptMessages.Observe(float64(count))

	logChannel, err := s.logChannel(i.GuildID)
	if err != nil {
		return err
	}

	if _, err := s.platform.SendMessage(logChannel.ID, &discordgo.MessageSend{
		Content: fmt.Sprintf(messages.TranscriptCaption, channel.Name),
		Files: []*discordgo.File{
			{
				Name:        channel.Name + ".txt",
				ContentType: "text/plain; charset=utf-8",
				Reader:      transcript,
			},
		},
	}); err != nil {
		return fmt.Errorf("error sending transcript: %w", err)
	}

	if err := s.platform.DeleteChannel(channel.ID); err != nil {
		return fmt.Errorf("error deleting channel: %w", err)
	}

	l.Info("Ticket archived and deleted",
		slog.String("name", channel.Name),
		slog.Int("messages", count),
		slog.String("log_channel_id", logChannel.ID),
	)
	return nil
}

// ticketRequesters returns the members holding the requester overwrite on a ticket channel.
// Admin grants never carry the read history permission.
func ticketRequesters(c *discordgo.Channel) []string {
	ids := make([]string, 0, 1)
	for _, o := range c.PermissionOverwrites {
		if o.Type != discordgo.PermissionOverwriteTypeMember || o.ID == c.GuildID {
			continue
		}
		if o.Allow&requesterAllow == requesterAllow {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

// logChannel finds the transcript log channel, creating it when it does not exist.
func (s *Service) logChannel(guildID string) (*discordgo.Channel, error) {
	channels, err := s.platform.GuildChannels(guildID)
	if err != nil {
		return nil, fmt.Errorf("error getting guild channels: %w", err)
	}

	for _, c := range channels {
		if c.Type == discordgo.ChannelTypeGuildText && c.Name == s.opts.LogChannelName {
			return c, nil
		}
	}

	c, err := s.platform.CreateTextChannel(guildID, s.opts.LogChannelName)
	if err != nil {
		return nil, fmt.Errorf("error creating log channel: %w", err)
	}
	return c, nil
}
