//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/Jacobbrewer1/ticketdesk/cmd/bot/config"
	"github.com/Jacobbrewer1/ticketdesk/pkg/logging"
	"github.com/google/wire"
	"github.com/gorilla/mux"
)

func InitializeApp(ctx context.Context, cfg *config.Config) (*App, error) {
	wire.Build(
		wire.Value(logging.Name(config.AppName)),
		newLoggingConfig,
		logging.CommonLogger,
		mux.NewRouter,
		NewSession,
		newStore,
		newTicketingService,
		NewApp,
	)
	return new(App), nil
}
