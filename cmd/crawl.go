package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"site_crawler/internal/models"
)

func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <url>",
		Short: "Crawl one site and print the results as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.close()

			budget, err := cmd.Flags().GetInt("budget")
			if err != nil {
				return err
			}
			if budget < 1 {
				budget = a.cfg.Logic.DefaultPageBudget
			}

			results, err := a.spider.CrawlSite(ctx, models.CrawlRequest{RootURL: args[0], PageBudget: budget})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		},
	}

	cmd.Flags().IntP("budget", "b", 0, "Maximum number of pages to accept (config default when 0)")

	return cmd
}
