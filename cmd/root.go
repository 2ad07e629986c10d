package main

import (
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "site_crawler",
		Short: "Crawl a site and extract the readable text of its pages",
		Long: `site_crawler walks the pages of one origin depth-first, up to a page budget,
and returns the main text of every page that has enough of it.

It runs either as an HTTP service (serve) or once from the command line (crawl).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Path to the YAML config file (defaults are used when empty)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewCrawlCmd())

	return cmd
}
