package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/ticketdesk/cmd/bot/config"
	"github.com/Jacobbrewer1/ticketdesk/pkg/dataaccess"
	"github.com/Jacobbrewer1/ticketdesk/pkg/logging"
	"github.com/Jacobbrewer1/ticketdesk/pkg/ticketing"
	"github.com/bwmarrin/discordgo"
)

func newLoggingConfig(name logging.Name, cfg *config.Config) (*logging.Config, error) {
	lc := logging.NewConfig(name)
	if err := lc.WithLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("error configuring logger: %w", err)
	}
	return lc, nil
}

func newStore(ctx context.Context, l *slog.Logger, cfg *config.Config) (dataaccess.Store, error) {
	store, err := dataaccess.NewStore(ctx, l, cfg.StoreConfig())
	if err != nil {
		return nil, fmt.Errorf("error opening %s store: %w", cfg.StoreDriver, err)
	}
	return store, nil
}

func newTicketingService(l *slog.Logger, store dataaccess.Store, s *discordgo.Session, cfg *config.Config) *ticketing.Service {
	return ticketing.NewService(l, store, ticketing.NewDiscordPlatform(s), cfg.TicketingOptions())
}
