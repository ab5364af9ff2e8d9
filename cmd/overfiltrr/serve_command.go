package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/overfiltrr/overfiltrr/internal/api"
	"github.com/overfiltrr/overfiltrr/internal/category"
	"github.com/overfiltrr/overfiltrr/internal/config"
	"github.com/overfiltrr/overfiltrr/internal/health"
	"github.com/overfiltrr/overfiltrr/internal/logger"
	"github.com/overfiltrr/overfiltrr/internal/notification"
	"github.com/overfiltrr/overfiltrr/internal/overseerr"
	"github.com/overfiltrr/overfiltrr/internal/pipeline"
	"github.com/overfiltrr/overfiltrr/internal/scheduler"
	"github.com/overfiltrr/overfiltrr/internal/scheduler/tasks"
	"github.com/overfiltrr/overfiltrr/internal/startup"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx)
		},
	}
}

func newLogger(cfg config.LoggingConfig) *logger.Logger {
	return logger.New(logger.Config{
		Level:       cfg.Level,
		Format:      cfg.Format,
		Color:       cfg.Color,
		FileEnabled: cfg.FileEnabled,
		Path:        cfg.Path,
		FileFormat:  cfg.FileFormat,
		MaxSizeMB:   cfg.MaxSizeMB,
		MaxBackups:  cfg.MaxBackups,
		MaxAgeDays:  cfg.MaxAgeDays,
		Compress:    cfg.Compress,
	})
}

func runServe(parent context.Context, cc *commandContext) error {
	if parent == nil {
		parent = context.Background()
	}

	cfg, err := cc.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	appLog := newLogger(cfg.Logging)
	defer appLog.Close()
	log := appLog.Logger

	log.Info().
		Str("version", config.Version).
		Str("config", cfg.File).
		Bool("dryRun", cfg.DryRun).
		Bool("autoApprove", cfg.AutoApprove).
		Msg("Starting overfiltrr")
	if cfg.DryRun {
		log.Warn().Msg("Dry run enabled, requests will not be modified")
	}
	for _, set := range []*category.Set{cfg.TVCategories, cfg.MovieCategories} {
		for _, name := range set.Deprecations() {
			log.Warn().
				Str("mediaType", set.MediaType.String()).
				Str("category", name).
				Msg("filters.ratings is deprecated and ignored, use filters.excluded_ratings")
		}
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := overseerr.NewClient(cfg.Overseerr, log)
	probeOverseerr(ctx, client, log)

	proc, err := pipeline.NewProcessor(cfg, client, client, log)
	if err != nil {
		return err
	}

	notifiers := notification.NewFactory(log).FromConfig(cfg)
	notifications := notification.NewService(notifiers, log)
	if len(notifiers) > 0 {
		proc.SetNotifier(notifications)
	}

	hs := health.NewService(log)
	sched, err := scheduler.New(log)
	if err != nil {
		return err
	}

	srv := api.NewServer(cfg, proc, api.Options{
		Logs:          appLog.Buffer(),
		Notifications: notifications,
		Scheduler:     sched,
		Health:        hs,
	}, log)

	deps := tasks.Deps{
		Overseerr: client,
		Notifiers: notifications,
		Lockouts:  srv.Limiter(),
		Health:    hs,
	}
	if ledger := proc.Ledger(); ledger != nil {
		deps.Ledger = ledger
	}
	if err := tasks.RegisterAll(sched, deps, log); err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(cfg.Server.Address())
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		if serr := sched.Stop(); serr != nil {
			log.Warn().Err(serr).Msg("Scheduler did not stop cleanly")
		}
		if werr := notifications.Wait(shutdownCtx); werr != nil {
			log.Warn().Err(werr).Msg("Gave up waiting for notifications")
		}
		return err
	})

	err = g.Wait()
	log.Info().Msg("overfiltrr stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// probeOverseerr checks the API once at startup, retrying while the network
// is not up yet. Failure is logged, not fatal.
func probeOverseerr(ctx context.Context, client *overseerr.Client, log zerolog.Logger) {
	err := startup.WithRetry(ctx, "overseerr status", startup.DefaultRetryConfig(), func(ctx context.Context) error {
		status, err := client.Status(ctx)
		if err != nil {
			return err
		}
		log.Info().Str("version", status.Version).Msg("Connected to Overseerr")
		return nil
	}, log)
	if err != nil {
		log.Warn().Err(err).Msg("Overseerr is not reachable yet, continuing; webhooks will fail until it is")
	}
}
