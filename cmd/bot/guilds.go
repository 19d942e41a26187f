package main

import (
	"log/slog"

	"github.com/Jacobbrewer1/ticketdesk/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/ticketdesk/pkg/logging"
	"github.com/bwmarrin/discordgo"
)

// guildJoinedHandler counts the guild and registers the commands in it.
// The gateway sends a GuildCreate for every guild on connect as well as on join.
func (a *App) guildJoinedHandler() func(s *discordgo.Session, g *discordgo.GuildCreate) {
	return func(_ *discordgo.Session, g *discordgo.GuildCreate) {
		l := a.l.With(slog.String(logging.KeyGuild, g.ID))
		l.Info("Joined guild", slog.String("name", g.Name))

		monitoring.TotalDiscordGuilds.Inc()

		if a.cfg.GuildId != "" && a.cfg.GuildId != g.ID {
			return
		}
		if err := a.registerCommands(g.ID); err != nil {
			l.Error("Error registering commands", slog.String(logging.KeyError, err.Error()))
		}
	}
}

func (a *App) guildLeaveHandler() func(s *discordgo.Session, g *discordgo.GuildDelete) {
	return func(_ *discordgo.Session, g *discordgo.GuildDelete) {
		// An unavailable guild is an outage, not a leave.
		if g.Unavailable {
			return
		}

		a.l.Info("Left guild", slog.String(logging.KeyGuild, g.ID))
		monitoring.TotalDiscordGuilds.Dec()
	}
}
