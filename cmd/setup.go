package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"site_crawler/internal/app"
	"site_crawler/internal/config"
	"site_crawler/internal/db"
	"site_crawler/internal/extractor"
	"site_crawler/internal/fetcher"
	"site_crawler/internal/logger"
	urlqueue "site_crawler/internal/url_queue"
)

// crawlerApp holds everything a command needs. close releases the archive
// and flushes the logger.
type crawlerApp struct {
	cfg     *config.SpiderConfig
	log     logger.Interface
	spider  *app.Spider
	archive *db.MongoDB
}

func setup(ctx context.Context, cmd *cobra.Command) (*crawlerApp, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Encoding:    cfg.Log.Encoding,
		Development: cfg.Log.Development,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return nil, err
	}

	scopeMode, err := urlqueue.ParseScopeMode(cfg.Logic.ScopeMode)
	if err != nil {
		return nil, err
	}

	f := fetcher.New(fetcher.Options{
		UserAgent:    cfg.Logic.UserAgent,
		Timeout:      cfg.Logic.Timeout(),
		MaxBodyBytes: cfg.Logic.MaxBodyBytes,
		MaxRedirects: cfg.Logic.MaxRedirects,
		Logger:       log,
	})

	a := &crawlerApp{cfg: cfg, log: log}
	opts := []app.Option{
		app.WithScopeMode(scopeMode),
		app.WithExtractor(extractor.New(cfg.Logic.MinContentLength)),
		app.WithLogger(log),
	}

	if cfg.DB.Enabled() {
		archive, err := db.NewMongoDB(ctx, cfg.DB, log)
		if err != nil {
			return nil, fmt.Errorf("open archive: %w", err)
		}
		a.archive = archive
		opts = append(opts, app.WithResultSink(archive))
		log.Info("Archiving pages", "database", cfg.DB.Database, "collection", cfg.DB.Collections.Documents)
	}

	a.spider = app.NewSpider(f, opts...)
	return a, nil
}

func (a *crawlerApp) close() {
	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			a.log.Warn("Failed to close archive", "error", err)
		}
	}
	_ = a.log.Sync()
}
