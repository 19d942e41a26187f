package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Jacobbrewer1/ticketdesk/cmd/bot/config"
	"github.com/Jacobbrewer1/ticketdesk/pkg/logging"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	run := func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := initApp(ctx, configPath)
		if err != nil {
			return err
		}

		a.l.Info("Starting application")
		if err := a.Run(ctx); err != nil {
			a.l.Error("Error running application", slog.String(logging.KeyError, err.Error()))
			return err
		}
		return nil
	}

	root := &cobra.Command{
		Use:          config.AppName,
		Short:        "Discord support ticket bot",
		SilenceUsage: true,
		RunE:         run,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (default ./config.yaml)")

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and handle tickets",
		Args:  cobra.NoArgs,
		RunE:  run,
	})
	root.AddCommand(newCommandsCmd(&configPath))
	return root
}

func newCommandsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commands",
		Short: "Manage the registered slash commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Remove the slash commands from every managed guild",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := initApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.store.Close(context.Background()); err != nil {
					a.l.Error("Error closing store", slog.String(logging.KeyError, err.Error()))
				}
			}()

			return a.PurgeCommands()
		},
	})
	return cmd
}

func initApp(ctx context.Context, configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	a, err := InitializeApp(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("error initializing application: %w", err)
	}
	return a, nil
}
