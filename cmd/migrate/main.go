package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/riderschoice/riderschoice-backend/pkg/config"
	"github.com/riderschoice/riderschoice-backend/pkg/db"
	"github.com/riderschoice/riderschoice-backend/pkg/logger"
	"github.com/riderschoice/riderschoice-backend/pkg/migrate"
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
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the Rider's Choice database schema",
		SilenceUsage: true,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration (gorm AutoMigrate on sqlite)",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withSchema(cmd.Context(), func(ctx context.Context, env *schemaEnv) error {
					applied, err := migrate.Latest(ctx, env.cfg.DB, env.db)
					if err != nil {
						return err
					}
					fmt.Printf("applied %d migration(s) %v\n", len(applied), applied)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withRunner(cmd.Context(), func(ctx context.Context, r *migrate.Runner) error {
					version, err := r.Down(ctx)
					if err != nil {
						return err
					}
					fmt.Printf("rolled back %d\n", version)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "to <version>",
			Short: "Migrate up or down to the given version",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				target, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("version %q: %w", args[0], err)
				}
				return withRunner(cmd.Context(), func(ctx context.Context, r *migrate.Runner) error {
					ran, err := r.To(ctx, target)
					if err != nil {
						return err
					}
					fmt.Printf("now at %d, ran %v\n", target, ran)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "List bundled migrations and whether they are applied",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withRunner(cmd.Context(), func(ctx context.Context, r *migrate.Runner) error {
					rows, err := r.Status(ctx)
					if err != nil {
						return err
					}
					w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED AT")
					for _, row := range rows {
						at := "pending"
						if row.Applied {
							at = row.AppliedAt.Format(time.RFC3339)
						}
						fmt.Fprintf(w, "%d\t%s\t%s\n", row.Version, row.Name, at)
					}
					return w.Flush()
				})
			},
		},
		newCreateCmd(),
		&cobra.Command{
			Use:   "validate [dir]",
			Short: "Check migration filenames and goose annotations",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				fsys := migrate.Files()
				if len(args) == 1 {
					fsys = os.DirFS(args[0])
				}
				if err := migrate.Validate(fsys); err != nil {
					return err
				}
				fmt.Println("migrations valid")
				return nil
			},
		},
	)
	return root
}

func newCreateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Scaffold an empty SQL migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path, err := migrate.Scaffold(dir, args[0], time.Now())
			if err != nil {
				return err
			}
			fmt.Println("created", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", migrate.SourceDir, "directory to write the migration into")
	return cmd
}

type schemaEnv struct {
	cfg  *config.Config
	db   *db.Client
	logg *logger.Logger
}

func withSchema(ctx context.Context, fn func(context.Context, *schemaEnv) error) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Env:         cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithField(ctx, "driver", cfg.DB.Driver)

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "database unavailable", err)
		return err
	}
	defer client.Close()

	return fn(ctx, &schemaEnv{cfg: cfg, db: client, logg: logg})
}

func withRunner(ctx context.Context, fn func(context.Context, *migrate.Runner) error) error {
	return withSchema(ctx, func(ctx context.Context, env *schemaEnv) error {
		if env.cfg.DB.IsSQLite() {
			return errors.New("sqlite schemas are managed by AutoMigrate; only `up` is supported")
		}
		sqlDB, err := env.db.DB().DB()
		if err != nil {
			return err
		}
		runner, err := migrate.NewRunner(sqlDB)
		if err != nil {
			return err
		}
		env.logg.Info(ctx, "migration runner ready")
		return fn(ctx, runner)
	})
}
