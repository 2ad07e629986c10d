package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"site_crawler/internal/api"
)

func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP crawl service",
		Long: `Serve exposes POST /crawl on server.port (4000 unless PORT is set).

Example:
  curl -X POST localhost:4000/crawl -H 'Content-Type: application/json' \
    -d '{"url":"https://example.com","pageBudget":5}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.close()

			handler := api.NewHandler(a.spider, a.log, a.cfg.Logic.DefaultPageBudget)
			if a.archive != nil {
				handler.WithArchive(a.archive)
			}
			return api.NewServer(a.cfg.Server.Port, handler, a.log).Run(ctx)
		},
	}
}
