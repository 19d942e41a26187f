package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Jacobbrewer1/ticketdesk/cmd/bot/config"
	"github.com/Jacobbrewer1/ticketdesk/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/ticketdesk/pkg/dataaccess"
	"github.com/Jacobbrewer1/ticketdesk/pkg/logging"
	"github.com/Jacobbrewer1/ticketdesk/pkg/request"
	"github.com/Jacobbrewer1/ticketdesk/pkg/ticketing"
	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// PathMetrics is the path for metrics.
	PathMetrics = "/metrics"

	// PathHealth is the path for health check.
	PathHealth = "/health"

	// shutdownTimeout bounds the graceful shutdown.
	shutdownTimeout = 10 * time.Second
)

// intents are the gateway intents the bot needs.
const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsMessageContent

type App struct {
	// l is the logger.
	l *slog.Logger

	// cfg is the application configuration.
	cfg *config.Config

	// r is the router for the application.
	r *mux.Router

	// svr is the server for the application.
	svr *http.Server

	// s is the discord session.
	s *discordgo.Session

	// store is the ticketing store.
	store dataaccess.Store

	// svc handles every interaction.
	svc *ticketing.Service
}

// NewApp creates a new instance of App.
func NewApp(l *slog.Logger, cfg *config.Config, r *mux.Router, s *discordgo.Session, store dataaccess.Store, svc *ticketing.Service) *App {
	return &App{
		l:     l,
		cfg:   cfg,
		r:     r,
		s:     s,
		store: store,
		svc:   svc,
		svr: &http.Server{
			Addr:              ":" + cfg.MonitoringPort,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// NewSession creates the discord session. The connection is not opened.
func NewSession(cfg *config.Config) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = intents
	return dg, nil
}

// Run connects to Discord and serves until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.registerDiscordHandlers()

	if err := a.s.Open(); err != nil {
		if closeErr := a.store.Close(context.Background()); closeErr != nil {
			a.l.Error("Error closing store", slog.String(logging.KeyError, closeErr.Error()))
		}
		return fmt.Errorf("error opening connection to Discord: %w", err)
	}

	a.l.Info("Bot is now running.")

	a.setupRoutes()
	a.runServer()

	<-ctx.Done()
	a.l.Info("Received shutdown signal", slog.String("cause", context.Cause(ctx).Error()))
	return a.ShutdownHook()
}

// ShutdownHook stops the monitoring server and closes the session and the store.
func (a *App) ShutdownHook() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	monitoring.TotalDiscordGuilds.Set(0)

	var errs []error
	if err := a.svr.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("error shutting down monitoring server: %w", err))
	}
	if err := a.s.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing connection to Discord: %w", err))
	}
	if err := a.store.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("error closing store: %w", err))
	}
	return errors.Join(errs...)
}

func (a *App) registerDiscordHandlers() {
	a.s.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		a.l.Info("Logged in", slog.String(logging.KeyUser, r.User.String()))

		// GuildCreate events follow and recount the guilds.
		monitoring.TotalDiscordGuilds.Set(0)
	})

	a.s.AddHandler(func(_ *discordgo.Session, e *discordgo.Event) {
		if e.Type != "" {
			monitoring.TotalDiscordEvents.WithLabelValues(e.Type).Inc()
		} else {
			// If there is no type, then use the operation code.
			monitoring.TotalDiscordEvents.WithLabelValues(fmt.Sprintf("OP_%d", e.Operation)).Inc()
		}
	})

	// Bot joined guild.
	a.s.AddHandler(a.guildJoinedHandler())

	// Bot left guild.
	a.s.AddHandler(a.guildLeaveHandler())

	// Interaction create handler.
	a.s.AddHandler(interactionHandler(a.svc))
}

func (a *App) setupRoutes() {
	a.r.HandleFunc(PathMetrics, promhttp.Handler().ServeHTTP).Methods(http.MethodGet)
	a.r.HandleFunc(PathHealth, middlewareHttp(a.l, a.healthCheck())).Methods(http.MethodGet)

	a.r.NotFoundHandler = request.NotFoundHandler(a.l)
	a.r.MethodNotAllowedHandler = request.MethodNotAllowedHandler(a.l)
}

func (a *App) runServer() {
	go func() {
		a.l.Info("Starting monitoring server", slog.String("addr", a.svr.Addr))
		if err := a.svr.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.l.Error("Error starting monitoring server", slog.String(logging.KeyError, err.Error()))
			a.l.Warn("Monitoring server will not be available")
		}
	}()
}

// applicationId is the configured application ID, or the bot user ID.
func (a *App) applicationId() (string, error) {
	if a.cfg.ApplicationId != "" {
		return a.cfg.ApplicationId, nil
	}
	if a.s.State != nil && a.s.State.User != nil {
		return a.s.State.User.ID, nil
	}

	u, err := a.s.User("@me")
	if err != nil {
		return "", fmt.Errorf("error getting bot user: %w", err)
	}
	return u.ID, nil
}

// registerCommands overwrites the slash commands of a guild with the current set.
func (a *App) registerCommands(guildId string) error {
	appId, err := a.applicationId()
	if err != nil {
		return err
	}

	if _, err := a.s.ApplicationCommandBulkOverwrite(appId, guildId, ticketing.Commands(a.cfg.EnforceAdminPermissions)); err != nil {
		monitoring.CommandRegistrations.WithLabelValues("error").Inc()
		return fmt.Errorf("error registering commands for guild %s: %w", guildId, err)
	}

	monitoring.CommandRegistrations.WithLabelValues("ok").Inc()
	a.l.Debug("Registered commands", slog.String(logging.KeyGuild, guildId))
	return nil
}

// joinedGuilds returns the guilds commands are managed in.
func (a *App) joinedGuilds() ([]string, error) {
	if a.cfg.GuildId != "" {
		return []string{a.cfg.GuildId}, nil
	}

	ids := make([]string, 0)
	after := ""
	for {
		guilds, err := a.s.UserGuilds(100, "", after, false)
		if err != nil {
			return nil, fmt.Errorf("error getting guilds: %w", err)
		}
		for _, g := range guilds {
			ids = append(ids, g.ID)
		}
		if len(guilds) < 100 {
			return ids, nil
		}
		after = guilds[len(guilds)-1].ID
	}
}

// PurgeCommands removes the slash commands from every managed guild.
func (a *App) PurgeCommands() error {
	appId, err := a.applicationId()
	if err != nil {
		return err
	}

	guilds, err := a.joinedGuilds()
	if err != nil {
		return err
	}

	var failed []string
	for _, id := range guilds {
		if _, err := a.s.ApplicationCommandBulkOverwrite(appId, id, []*discordgo.ApplicationCommand{}); err != nil {
			a.l.Error("Error removing commands",
				slog.String(logging.KeyGuild, id),
				slog.String(logging.KeyError, err.Error()),
			)
			failed = append(failed, id)
			continue
		}
		a.l.Info("Removed commands", slog.String(logging.KeyGuild, id))
	}

	if len(failed) > 0 {
		return fmt.Errorf("error removing commands from guilds %s", strings.Join(failed, ", "))
	}
	return nil
}
