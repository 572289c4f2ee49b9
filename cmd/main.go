// Command kitefolio prints a read-only status report of a Zerodha Kite
// account: holdings with unrealized P&L, intraday and net positions,
// available funds, and optional CSV snapshots of all of it.
//
// Usage:
//
//	kitefolio                      simple summary (default)
//	kitefolio -detailed            all tables
//	kitefolio -holdings -sort pnl  holdings only, sorted
//	kitefolio -export              also write CSV snapshots
//
// Credentials come from KITE_ACCESS_TOKEN, or from KITE_API_KEY,
// KITE_API_SECRET and KITE_REQUEST_TOKEN for a one-time session
// exchange. A YAML file passed via -config can carry the same values
// plus display defaults; environment variables win.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"kitefolio/config"
	"kitefolio/internal/clients"
	"kitefolio/internal/metrics"
	"kitefolio/internal/services/fetcher"
	"kitefolio/internal/services/render"
	"kitefolio/internal/services/snapshot"
)

const kiteHTTPTimeout = 10 * time.Second

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Get()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	client, err := clients.NewKiteClient(clients.Credentials{
		APIKey:       cfg.APIKey,
		APISecret:    cfg.APISecret,
		RequestToken: cfg.RequestToken,
		AccessToken:  cfg.AccessToken,
	}, kiteHTTPTimeout, logger)
	if err != nil {
		logger.Fatal("failed to open Kite session", zap.Error(err))
	}

	snap, err := fetcher.New(client, clients.IsTransient, logger).Snapshot(context.Background())
	if err != nil {
		logger.Error("fetch failed after retries", zap.Error(err))
		os.Exit(2)
	}

	rep := metrics.Summarize(snap)
	render.New(os.Stdout, cfg.SortBy, cfg.Order, cfg.Debug).Render(cfg.Mode, snap, rep)

	// Snapshot write failures never fail the run once the report printed.
	if cfg.ExportCSV {
		written, err := snapshot.NewWriter(cfg.SnapshotDir).Write(snap, rep)
		if err != nil {
			logger.Warn("failed to write CSV snapshots", zap.Error(err))
		}
		if len(written) > 0 {
			fmt.Printf("\nCSV snapshots saved under: %s\n", cfg.SnapshotDir)
		}
	}
}
