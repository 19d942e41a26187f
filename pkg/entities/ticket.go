package entities

import "fmt"

// Ticket is a support ticket that is about to be opened. Tickets are not persisted; the channel is the ticket.
type Ticket struct {
	// GuildID is the ID of the guild that the ticket is in.
	GuildID string `json:"guild_id" bson:"guild_id"`

	// ChannelID is the ID of the channel that the ticket is in, once created.
	ChannelID string `json:"channel_id" bson:"channel_id"`

	// UserID is the ID of the user that created the ticket.
	UserID string `json:"user_id" bson:"user_id"`

	// Username is the username of the user that created the ticket.
	Username string `json:"username" bson:"username"`

	// Category is the resolved category (main, or sub for branching categories).
	Category string `json:"category" bson:"category"`
}

// MaxChannelNameLength is the longest channel name the platform accepts.
const MaxChannelNameLength = 100

// Name is the channel name of the ticket, cut to MaxChannelNameLength characters.
// For example, a user "wolf" asking about "billing" gets "ticket-billing-wolf".
func (t *Ticket) Name() string {
	name := []rune(fmt.Sprintf("ticket-%s-%s", t.Category, t.Username))
	if len(name) > MaxChannelNameLength {
		name = name[:MaxChannelNameLength]
	}
	return string(name)
}
