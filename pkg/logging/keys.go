package logging

const (
	// KeyApp is the key for the application name.
	KeyApp = "app"

	// KeyError is the key for an error.
	KeyError = "error"

	// KeyDal is the key for the data access layer.
	KeyDal = "dal"

	// KeyGuild is the key for a guild ID.
	KeyGuild = "guild_id"

	// KeyChannel is the key for a channel ID.
	KeyChannel = "channel_id"

	// KeyTicketChannel is the key for the ID of a ticket channel, when it differs from the interaction channel.
	KeyTicketChannel = "ticket_channel_id"

	// KeyUser is the key for a user ID.
	KeyUser = "user_id"

	// KeyInteraction is the key for an interaction identifier (command name or custom ID).
	KeyInteraction = "interaction"

	// KeyCategory is the key for a ticket category.
	KeyCategory = "category"
)
