package config

import "time"

const (
	// AppName is the name of the application.
	AppName = "ticketdesk"

	// EnvBotToken is the environment variable for the bot token.
	EnvBotToken = `BOT_TOKEN`

	// EnvApplicationId is the environment variable for the application ID.
	EnvApplicationId = `APPLICATION_ID`

	// EnvGuildId is the environment variable for the guild commands are registered in.
	EnvGuildId = `GUILD_ID`

	// EnvStoreDriver is the environment variable for the store driver (sqlite or mongo).
	EnvStoreDriver = `STORE_DRIVER`

	// EnvSQLitePath is the environment variable for the SQLite database file.
	EnvSQLitePath = `SQLITE_PATH`

	// EnvMongoUri is the environment variable for the MongoDB URI.
	EnvMongoUri = `MONGO_URI`

	// EnvMongoDatabase is the environment variable for the MongoDB database name.
	EnvMongoDatabase = `MONGO_DATABASE`

	// EnvMonitoringPort is the environment variable for the monitoring port.
	EnvMonitoringPort = `MONITORING_PORT`

	// EnvLogLevel is the environment variable for the log level.
	EnvLogLevel = `LOG_LEVEL`

	// EnvLogChannelName is the environment variable for the transcript channel name.
	EnvLogChannelName = `LOG_CHANNEL_NAME`

	// EnvEnforceAdminPermissions is the environment variable that gates every admin command.
	EnvEnforceAdminPermissions = `ENFORCE_ADMIN_PERMISSIONS`

	// EnvInteractionTimeout is the environment variable for the interaction timeout.
	EnvInteractionTimeout = `INTERACTION_TIMEOUT`

	// EnvTranscriptTimeout is the environment variable for the transcript timeout.
	EnvTranscriptTimeout = `TRANSCRIPT_TIMEOUT`

	// EnvHistoryRateLimit is the environment variable for the history pages requested per second.
	EnvHistoryRateLimit = `HISTORY_RATE_LIMIT`
)

const (
	defaultStoreDriver        = "sqlite"
	defaultSQLitePath         = "ticket_system.db"
	defaultMongoDatabase      = AppName
	defaultMonitoringPort     = "8080"
	defaultLogLevel           = "info"
	defaultInteractionTimeout = 30 * time.Second
	defaultTranscriptTimeout  = 5 * time.Minute
	defaultHistoryRateLimit   = 5.0
)

// Config is the runtime configuration of the bot.
type Config struct {
	// BotToken is the token for the bot.
	BotToken string

	// ApplicationId is the ID of the application. Empty means the bot user ID.
	ApplicationId string

	// GuildId restricts command registration to one guild. Empty means every joined guild.
	GuildId string

	// StoreDriver selects the store implementation.
	StoreDriver string

	// SQLitePath is the SQLite database file.
	SQLitePath string

	// MongoUri is the URI for the MongoDB database.
	MongoUri string

	// MongoDatabase is the MongoDB database name.
	MongoDatabase string

	// MonitoringPort is the port for the monitoring server.
	MonitoringPort string

	// LogLevel is the minimum log level.
	LogLevel string

	// LogChannelName is the channel transcripts are posted to.
	LogChannelName string

	// EnforceAdminPermissions requires the administrator permission for every admin command.
	EnforceAdminPermissions bool

	// InteractionTimeout bounds the handling of one interaction.
	InteractionTimeout time.Duration

	// TranscriptTimeout bounds a transcript export.
	TranscriptTimeout time.Duration

	// HistoryRateLimit is the number of history pages requested per second.
	HistoryRateLimit float64
}
