package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/riderschoice/riderschoice-backend/internal/seed"
	"github.com/riderschoice/riderschoice-backend/pkg/config"
	"github.com/riderschoice/riderschoice-backend/pkg/db"
	"github.com/riderschoice/riderschoice-backend/pkg/enums"
	"github.com/riderschoice/riderschoice-backend/pkg/logger"
	"github.com/riderschoice/riderschoice-backend/pkg/migrate"
)

type options struct {
	catalogFile   string
	adminEmail    string
	adminPassword string
	sampleUser    bool
	autoMigrate   bool
}

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
	opts := &options{}
	root := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo catalog and accounts into the Rider's Choice database",
		Long: `Seed inserts the bundled catalog of bikes and travel packages, an admin
account and optionally a sample rider. Existing rows are left untouched, so the
command can be re-run safely.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	flags := root.Flags()
	flags.StringVar(&opts.catalogFile, "catalog", "", "path to a catalog YAML file (defaults to the bundled catalog)")
	flags.StringVar(&opts.adminEmail, "admin-email", "admin@riderschoice.com", "email of the admin account to ensure")
	flags.StringVar(&opts.adminPassword, "admin-password", "", "admin password; generated and printed when empty")
	flags.BoolVar(&opts.sampleUser, "sample-user", true, "also ensure a sample rider account")
	flags.BoolVar(&opts.autoMigrate, "migrate", false, "apply schema migrations before seeding (goose on postgres, gorm on sqlite)")
	return root
}

func run(ctx context.Context, opts *options) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "seed",
		Env:         cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer dbClient.Close()

	if opts.autoMigrate {
		if err := migrateSchema(ctx, cfg, dbClient); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	catalogFile, err := loadCatalog(opts.catalogFile)
	if err != nil {
		return err
	}

	seeder, err := seed.NewSeeder(dbClient.DB(), cfg.Password, logg)
	if err != nil {
		return err
	}

	created, err := seeder.SeedCatalog(ctx, catalogFile)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	fmt.Printf("catalog: %d of %d items created\n", created, len(catalogFile.Items))

	accounts := []seed.Account{{
		Name:     "Rider's Choice Admin",
		Email:    opts.adminEmail,
		Password: opts.adminPassword,
		Role:     enums.AccountRoleAdmin,
	}}
	if opts.sampleUser {
		accounts = append(accounts, seed.Account{
			Name:  "Sample Rider",
			Email: "rider@riderschoice.com",
			Role:  enums.AccountRoleUser,
		})
	}

	for _, account := range accounts {
		result, err := seeder.EnsureAccount(ctx, account)
		if err != nil {
			return err
		}
		switch {
		case !result.Created:
			fmt.Printf("account %s already exists\n", result.Email)
		case result.GeneratedPassword != "":
			fmt.Printf("account %s created with password %s\n", result.Email, result.GeneratedPassword)
		default:
			fmt.Printf("account %s created\n", result.Email)
		}
	}
	return nil
}

func migrateSchema(ctx context.Context, cfg *config.Config, dbClient *db.Client) error {
	applied, err := migrate.Latest(ctx, cfg.DB, dbClient)
	if err != nil {
		return err
	}
	if len(applied) > 0 {
		fmt.Printf("migrations applied: %v\n", applied)
	}
	return nil
}

func loadCatalog(path string) (*seed.CatalogFile, error) {
	if path == "" {
		return seed.DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return seed.ParseCatalog(data)
}
