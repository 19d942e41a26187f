package ticketing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/Jacobbrewer1/ticketdesk/pkg/dataaccess"
	"github.com/Jacobbrewer1/ticketdesk/pkg/logging"
	"github.com/Jacobbrewer1/ticketdesk/pkg/messages"
	"github.com/Jacobbrewer1/ticketdesk/pkg/ticketing/monitoring"
	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

// Options configures the ticketing service.
type Options struct {
	// LogChannelName is the channel transcripts are archived to.
	LogChannelName string

	// EnforceAdminPermissions gates every admin command on the administrator permission.
	// When false only the setup command is gated.
	EnforceAdminPermissions bool

	// InteractionTimeout bounds the handling of a single interaction.
	InteractionTimeout time.Duration

	// TranscriptTimeout bounds a transcript export.
	TranscriptTimeout time.Duration

	// HistoryRateLimit is the number of history pages requested per second.
	HistoryRateLimit rate.Limit
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() *Options {
	return &Options{
		LogChannelName:          messages.DefaultLogChannelName,
		EnforceAdminPermissions: true,
		InteractionTimeout:      30 * time.Second,
		TranscriptTimeout:       5 * time.Minute,
		HistoryRateLimit:        5,
	}
}

// Service handles every ticketing interaction.
type Service struct {
	// l is the logger.
	l *slog.Logger

	// store is where categories, config and admins are kept.
	store dataaccess.Store

	// platform is the chat platform.
	platform Platform

	// opts are the service options.
	opts *Options
}

// NewService creates a new ticketing service.
func NewService(l *slog.Logger, store dataaccess.Store, platform Platform, opts *Options) *Service {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.LogChannelName == "" {
		opts.LogChannelName = messages.DefaultLogChannelName
	}
	return &Service{
		l:        l,
		store:    store,
		platform: platform,
		opts:     opts,
	}
}

// ackedError marks an error returned after the interaction was already acknowledged.
type ackedError struct {
	err error
}

func (e *ackedError) Error() string {
	return e.err.Error()
}

func (e *ackedError) Unwrap() error {
	return e.err
}

// HandleInteraction handles a single interaction. Failures are logged and reported to the user.
func (s *Service) HandleInteraction(i *discordgo.Interaction) {
	name := InteractionName(i)
	l := s.l.With(
		slog.String(logging.KeyInteraction, name),
		slog.String(logging.KeyGuild, i.GuildID),
		slog.String(logging.KeyChannel, i.ChannelID),
	)

	// Recover from any panics that occur in the handler.
	defer func() {
		if rec := recover(); rec != nil {
			monitoring.InteractionErrors.WithLabelValues(name).Inc()
			l.Error("Panic in interaction handler",
				slog.String(logging.KeyError, fmt.Sprint(rec)),
				slog.String("stack", string(debug.Stack())),
			)
			s.fail(l, i, nil)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout(i))
	defer cancel()

	var err error
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		err = s.handleCommand(ctx, l, i)
	case discordgo.InteractionMessageComponent:
		err = s.handleComponent(ctx, l, i)
	default:
		l.Debug("Ignoring interaction type", slog.String("type", i.Type.String()))
		return
	}

	if err != nil {
		monitoring.InteractionErrors.WithLabelValues(name).Inc()
		l.Error("Error handling interaction", slog.String(logging.KeyError, err.Error()))
		s.fail(l, i, err)
	}
}

// fail attempts a generic failure response for the interaction.
// When the interaction was already acknowledged, or the initial response is rejected, it sends a follow up.
func (s *Service) fail(l *slog.Logger, i *discordgo.Interaction, err error) {
	if acked := new(ackedError); !errors.As(err, &acked) {
		respondErr := s.respondEphemeral(i, messages.ErrUserErrorProcessing)
		if respondErr == nil {
			return
		}
		// A panic can happen after the acknowledgement.
		l.Debug("Initial failure response rejected, sending a follow up", slog.String(logging.KeyError, respondErr.Error()))
	}

	if err := s.platform.FollowUp(i, &discordgo.WebhookParams{
		Content: messages.ErrUserErrorProcessing,
		Flags:   discordgo.MessageFlagsEphemeral,
	}); err != nil {
		l.Error("Error sending failure follow up", slog.String(logging.KeyError, err.Error()))
	}
}

func (s *Service) timeout(i *discordgo.Interaction) time.Duration {
	if i.Type == discordgo.InteractionMessageComponent &&
		ParseAction(i.MessageComponentData().CustomID) == ActionDelete {
		return s.opts.TranscriptTimeout
	}
	return s.opts.InteractionTimeout
}

func (s *Service) handleComponent(ctx context.Context, l *slog.Logger, i *discordgo.Interaction) error {
	data := i.MessageComponentData()

	if data.CustomID == CustomIDMainSelect {
		return s.selectMain(ctx, l, i, data.Values)
	}
	if main, ok := parseSubSelect(data.CustomID); ok {
		return s.selectSub(ctx, l, i, main, data.Values)
	}

	action := ParseAction(data.CustomID)
	monitoring.TicketActions.WithLabelValues(action.String()).Inc()

	switch action {
	case ActionClose:
		return s.closeTicket(l, i)
	case ActionDelete:
		return s.deleteTicket(ctx, l, i)
	case ActionUnknown:
		l.Debug("Ignoring unknown component", slog.String("custom_id", data.CustomID))
		return nil
	default:
		return fmt.Errorf("unhandled action %s", action)
	}
}

// InteractionName is the command name or component custom ID of an interaction.
func InteractionName(i *discordgo.Interaction) string {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		return i.ApplicationCommandData().Name
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		if _, ok := parseSubSelect(customID); ok {
			return CustomIDSubSelectPrefix
		}
		return customID
	default:
		return i.Type.String()
	}
}

func (s *Service) respondEphemeral(i *discordgo.Interaction, content string) error {
	return s.respondEphemeralComponents(i, content, nil)
}

func (s *Service) respondEphemeralComponents(i *discordgo.Interaction, content string, components []discordgo.MessageComponent) error {
	if err := s.platform.Respond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: components,
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	}); err != nil {
		return fmt.Errorf("error responding to interaction: %w", err)
	}
	return nil
}
