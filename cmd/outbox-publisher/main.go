package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/riderschoice/riderschoice-backend/pkg/config"
	"github.com/riderschoice/riderschoice-backend/pkg/db"
	"github.com/riderschoice/riderschoice-backend/pkg/logger"
	"github.com/riderschoice/riderschoice-backend/pkg/migrate"
	"github.com/riderschoice/riderschoice-backend/pkg/outbox"
	"github.com/riderschoice/riderschoice-backend/pkg/pubsub"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var once bool
	root := &cobra.Command{
		Use:   "outbox-publisher",
		Short: "Relay committed order and review events from the outbox table to Pub/Sub",
		Long: `outbox-publisher polls outbox_events, publishes each row to its topic and
marks it published. Rows that cannot be delivered are copied to outbox_dlq.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), once)
		},
	}
	root.Flags().BoolVar(&once, "once", false, "drain a single batch and exit")
	return root
}

func run(ctx context.Context, once bool) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "outbox-publisher",
		Env:         cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "close database", err)
		}
	}()
	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	router, err := outbox.NewRouter(cfg.PubSub)
	if err != nil {
		return err
	}
	sink, err := pubsub.NewClient(ctx, cfg.GCP, router.Topics(), logg)
	if err != nil {
		return fmt.Errorf("connect pubsub: %w", err)
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logg.Error(ctx, "close pubsub", err)
		}
	}()

	relay, err := outbox.NewRelay(dbClient, router, sink, logg, outbox.OptionsFromConfig(cfg.Outbox))
	if err != nil {
		return err
	}

	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	if once {
		n, err := relay.Drain(ctx)
		if err != nil {
			return fmt.Errorf("drain outbox: %w", err)
		}
		logg.Info(logg.WithField(ctx, "settled", n), "outbox batch drained")
		return nil
	}

	logg.Info(ctx, "outbox publisher started")
	if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logg.Info(ctx, "outbox publisher stopped")
	return nil
}
