package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"netsweep/config"
	"netsweep/logging"
	"netsweep/netutil"
	"netsweep/output"
	"netsweep/scanner"
)

// app bundles the collaborators every sub-command needs.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	mgr      *scanner.Manager
	resolver *netutil.Resolver
}

func setup(cmd *cobra.Command) (*app, error) {
	cfg := config.Default()
	created := false
	if flags.config != "" {
		loaded, err := config.Load(flags.config)
		switch {
		case errors.Is(err, config.ErrCreatedDefault):
			created = true
		case err != nil:
			return nil, usageError{err}
		}
		cfg = loaded
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, usageError{err}
	}

	level := cfg.Logging.Level
	if flags.verbose {
		level = "debug"
	}
	log, err := logging.New(logging.Options{
		Level:       level,
		Development: cfg.Logging.Development,
		File:        cfg.Logging.File,
	})
	if err != nil {
		return nil, err
	}
	if created {
		log.Info("wrote default config", zap.String("path", flags.config))
	}

	mgr := scanner.NewManager(scanner.Config{
		Workers:       cfg.Scan.Workers,
		Timeout:       cfg.Scan.Timeout,
		BannerTimeout: cfg.Scan.BannerTimeout,
		GrabBanner:    cfg.Scan.GrabBanner,
		RateLimit:     cfg.Scan.RateLimit,
		Logger:        log,
	})
	return &app{
		cfg:      cfg,
		log:      log,
		mgr:      mgr,
		resolver: netutil.NewResolver(cfg.DNS.Server, cfg.DNS.Timeout),
	}, nil
}

// applyFlags lets explicitly set command-line flags win over the file.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("workers") {
		cfg.Scan.Workers = flags.workers
	}
	if f.Changed("timeout") {
		cfg.Scan.Timeout = flags.timeout
	}
	if f.Changed("rate") {
		cfg.Scan.RateLimit = flags.rate
	}
	if f.Changed("format") {
		cfg.Output.Format = flags.format
	}
	if f.Changed("db") {
		cfg.Output.SQLite = flags.db
	}
	if f.Changed("dns") {
		cfg.DNS.Server = flags.dnsServer
	}
	if f.Changed("no-banner") {
		cfg.Scan.GrabBanner = !portsFlags.noBanner
	}
	if f.Changed("banner-timeout") {
		cfg.Scan.BannerTimeout = portsFlags.bannerTimeout
	}
}

// signalContext is cancelled on SIGINT/SIGTERM so a long sweep can be
// aborted and still report what it found.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// finish exports and stores the report as configured.
func (a *app) finish(r output.Report) error {
	defer func() { _ = a.log.Sync() }()

	if flags.output != "" {
		path := flags.output
		if !filepath.IsAbs(path) && filepath.Dir(path) == "." && a.cfg.Output.Dir != "" {
			path = filepath.Join(a.cfg.Output.Dir, path)
		}
		format := output.FormatFor(path, a.cfg.Output.Format)
		if err := output.Export(path, format, r); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		a.log.Info("results exported", zap.String("path", path), zap.String("format", format))
	}

	if a.cfg.Output.SQLite != "" {
		store, err := output.OpenStore(a.cfg.Output.SQLite)
		if err != nil {
			return fmt.Errorf("results db: %w", err)
		}
		defer store.Close()
		id, err := store.Save(r)
		if err != nil {
			return fmt.Errorf("results db: %w", err)
		}
		a.log.Info("results stored", zap.String("db", a.cfg.Output.SQLite), zap.Int64("scan_id", id))
	}
	return nil
}

func newReport(kind output.Kind, target string, start time.Time, scanned int) output.Report {
	return output.Report{
		Kind:       kind,
		Target:     target,
		StartedAt:  start,
		DurationMS: time.Since(start).Milliseconds(),
		Scanned:    scanned,
	}
}
