package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Jacobbrewer1/ticketdesk/pkg/dataaccess"
	"github.com/Jacobbrewer1/ticketdesk/pkg/logging"
	"github.com/Jacobbrewer1/ticketdesk/pkg/ticketing"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

// ErrMissingBotToken is returned when no bot token is configured.
var ErrMissingBotToken = errors.New("bot token is required (set " + EnvBotToken + ")")

// Load reads the configuration. Values come from the environment, then an optional .env file,
// then the config file at path (or config.yaml in the working directory when path is empty).
func Load(path string) (*Config, error) {
	// A missing .env file is not an error.
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", slog.String(logging.KeyError, err.Error()))
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		slog.Debug("No config file found, using environment only")
	}

	return FromViper(v)
}

// FromViper builds the configuration from v, applying defaults and environment overrides.
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(EnvStoreDriver, defaultStoreDriver)
	v.SetDefault(EnvSQLitePath, defaultSQLitePath)
	v.SetDefault(EnvMongoDatabase, defaultMongoDatabase)
	v.SetDefault(EnvMonitoringPort, defaultMonitoringPort)
	v.SetDefault(EnvLogLevel, defaultLogLevel)
	v.SetDefault(EnvLogChannelName, ticketing.DefaultOptions().LogChannelName)
	v.SetDefault(EnvEnforceAdminPermissions, true)
	v.SetDefault(EnvInteractionTimeout, defaultInteractionTimeout)
	v.SetDefault(EnvTranscriptTimeout, defaultTranscriptTimeout)
	v.SetDefault(EnvHistoryRateLimit, defaultHistoryRateLimit)

	cfg := &Config{
		BotToken:                strings.TrimSpace(v.GetString(EnvBotToken)),
		ApplicationId:           v.GetString(EnvApplicationId),
		GuildId:                 v.GetString(EnvGuildId),
		StoreDriver:             strings.ToLower(v.GetString(EnvStoreDriver)),
		SQLitePath:              v.GetString(EnvSQLitePath),
		MongoUri:                v.GetString(EnvMongoUri),
		MongoDatabase:           v.GetString(EnvMongoDatabase),
		MonitoringPort:          v.GetString(EnvMonitoringPort),
		LogLevel:                v.GetString(EnvLogLevel),
		LogChannelName:          v.GetString(EnvLogChannelName),
		EnforceAdminPermissions: v.GetBool(EnvEnforceAdminPermissions),
		InteractionTimeout:      v.GetDuration(EnvInteractionTimeout),
		TranscriptTimeout:       v.GetDuration(EnvTranscriptTimeout),
		HistoryRateLimit:        v.GetFloat64(EnvHistoryRateLimit),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return ErrMissingBotToken
	}

	switch c.StoreDriver {
	case dataaccess.DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%s is required for the %s store", EnvSQLitePath, dataaccess.DriverSQLite)
		}
	case dataaccess.DriverMongo:
		if c.MongoUri == "" {
			return fmt.Errorf("%s is required for the %s store", EnvMongoUri, dataaccess.DriverMongo)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}

	if c.InteractionTimeout <= 0 || c.TranscriptTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	return nil
}

// StoreConfig returns the store settings.
func (c *Config) StoreConfig() *dataaccess.StoreConfig {
	return &dataaccess.StoreConfig{
		Driver:        c.StoreDriver,
		SQLitePath:    c.SQLitePath,
		MongoURI:      c.MongoUri,
		MongoDatabase: c.MongoDatabase,
	}
}

// TicketingOptions returns the ticketing service options.
func (c *Config) TicketingOptions() *ticketing.Options {
	opts := ticketing.DefaultOptions()
	opts.LogChannelName = c.LogChannelName
	opts.EnforceAdminPermissions = c.EnforceAdminPermissions
	opts.InteractionTimeout = c.InteractionTimeout
	opts.TranscriptTimeout = c.TranscriptTimeout
	if c.HistoryRateLimit > 0 {
		opts.HistoryRateLimit = rate.Limit(c.HistoryRateLimit)
	} else {
		opts.HistoryRateLimit = rate.Inf
	}
	return opts
}
