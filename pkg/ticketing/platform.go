package ticketing

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// Platform is the set of chat platform calls the ticketing flow makes.
type Platform interface {
	// CreateTextChannel creates a text channel in the guild.
	CreateTextChannel(guildID, name string) (*discordgo.Channel, error)

	// Channel gets a channel.
	Channel(channelID string) (*discordgo.Channel, error)

	// GuildChannels lists the channels of a guild.
	GuildChannels(guildID string) ([]*discordgo.Channel, error)

	// DeleteChannel deletes a channel.
	DeleteChannel(channelID string) error

	// SetPermission creates or replaces a permission overwrite on a channel.
	SetPermission(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64) error

	// RemovePermission deletes a permission overwrite from a channel.
	RemovePermission(channelID, targetID string) error

	// ResolveGrant reports whether id is a role or a member of the guild.
	ResolveGrant(guildID, id string) (discordgo.PermissionOverwriteType, bool)

	// SendMessage sends a message to a channel.
	SendMessage(channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error)

	// Messages gets up to limit messages posted after afterID.
	Messages(channelID string, limit int, afterID string) ([]*discordgo.Message, error)

	// Respond responds to an interaction.
	Respond(i *discordgo.Interaction, resp *discordgo.InteractionResponse) error

	// FollowUp sends a follow up message to an interaction that has already been responded to.
	FollowUp(i *discordgo.Interaction, params *discordgo.WebhookParams) error
}

type discordPlatform struct {
	s *discordgo.Session
}

// NewDiscordPlatform wraps a discord session.
func NewDiscordPlatform(s *discordgo.Session) Platform {
	return &discordPlatform{s: s}
}

func (p *discordPlatform) CreateTextChannel(guildID, name string) (*discordgo.Channel, error) {
	return p.s.GuildChannelCreate(guildID, name, discordgo.ChannelTypeGuildText)
}

// Channel reads through to the API, the cached overwrites can lag behind.
func (p *discordPlatform) Channel(channelID string) (*discordgo.Channel, error) {
	return p.s.Channel(channelID)
}

func (p *discordPlatform) GuildChannels(guildID string) ([]*discordgo.Channel, error) {
	return p.s.GuildChannels(guildID)
}

func (p *discordPlatform) DeleteChannel(channelID string) error {
	_, err := p.s.ChannelDelete(channelID)
	return err
}

func (p *discordPlatform) SetPermission(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64) error {
	return p.s.ChannelPermissionSet(channelID, targetID, targetType, allow, deny)
}

func (p *discordPlatform) RemovePermission(channelID, targetID string) error {
	return p.s.ChannelPermissionDelete(channelID, targetID)
}

func (p *discordPlatform) ResolveGrant(guildID, id string) (discordgo.PermissionOverwriteType, bool) {
	// Role lookup first, then member lookup.
	if _, err := p.s.State.Role(guildID, id); err == nil {
		return discordgo.PermissionOverwriteTypeRole, true
	}
	if _, err := p.s.State.Member(guildID, id); err == nil {
		return discordgo.PermissionOverwriteTypeMember, true
	}

	// The state may not be populated yet.
	if roles, err := p.s.GuildRoles(guildID); err == nil {
		for _, r := range roles {
			if r.ID == id {
				return discordgo.PermissionOverwriteTypeRole, true
			}
		}
	}
	if _, err := p.s.GuildMember(guildID, id); err == nil {
		return discordgo.PermissionOverwriteTypeMember, true
	}
	return 0, false
}

func (p *discordPlatform) SendMessage(channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	return p.s.ChannelMessageSendComplex(channelID, msg)
}

func (p *discordPlatform) Messages(channelID string, limit int, afterID string) ([]*discordgo.Message, error) {
	return p.s.ChannelMessages(channelID, limit, "", afterID, "")
}

func (p *discordPlatform) Respond(i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	return p.s.InteractionRespond(i, resp)
}

func (p *discordPlatform) FollowUp(i *discordgo.Interaction, params *discordgo.WebhookParams) error {
	_, err := p.s.FollowupMessageCreate(i, false, params)
	return err
}

// isNotFound reports whether err is a platform "unknown resource" error.
func isNotFound(err error) bool {
	restErr := new(discordgo.RESTError)
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownOverwrite, discordgo.ErrCodeUnknownChannel:
			return true
		}
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

// interactionUser returns the user that triggered the interaction.
func interactionUser(i *discordgo.Interaction) (*discordgo.User, error) {
	switch {
	case i.Member != nil && i.Member.User != nil:
		return i.Member.User, nil
	case i.User != nil:
		return i.User, nil
	default:
		return nil, fmt.Errorf("interaction %s has no user", i.ID)
	}
}
