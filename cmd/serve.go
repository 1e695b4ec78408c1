package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/slotbook/internal/config"
	"github.com/example/slotbook/internal/gateway"
	"github.com/example/slotbook/internal/logging"
	"github.com/example/slotbook/internal/web"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the booking web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.RequireSessionKeys(); err != nil {
				return err
			}

			log, err := logging.New(cfg.LogLevel, cfg.DevMode)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			tmpl, err := web.ParseTemplates()
			if err != nil {
				return err
			}

			api := gateway.New(cfg.APIBaseURL, cfg.APITimeout)
			sessions := web.NewSessionManager(cfg.SessionHashKey, cfg.SessionBlockKey)
			srv := web.NewServer(api, sessions, tmpl, log)

			return web.Start(ctx, cfg.ListenAddr, srv.Routes(), log)
		},
	}
}
