package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/riderschoice/riderschoice-backend/pkg/config"
	"github.com/riderschoice/riderschoice-backend/pkg/db"
	"github.com/riderschoice/riderschoice-backend/pkg/db/models"
	"github.com/riderschoice/riderschoice-backend/pkg/logger"
)

// SourceDir is where new migrations are scaffolded, relative to the repo root.
const SourceDir = "pkg/migrate/migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// Files returns the bundled SQL migrations with the migrations/ prefix
// stripped, the layout goose expects.
func Files() fs.FS {
	sub, err := fs.Sub(embedded, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Status is one migration's applied state.
type Status struct {
	Version   int64
	Name      string
	Applied   bool
	AppliedAt time.Time
}

// Runner applies the bundled migrations to a postgres database.
type Runner struct {
	provider *goose.Provider
}

func NewRunner(sqlDB *sql.DB) (*Runner, error) {
	p, err := goose.NewProvider(goose.DialectPostgres, sqlDB, Files())
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Runner{provider: p}, nil
}

// Up applies every pending migration and returns the versions it ran.
func (r *Runner) Up(ctx context.Context) ([]int64, error) {
	results, err := r.provider.Up(ctx)
	return versions(results), err
}

// Down rolls back the most recent migration.
func (r *Runner) Down(ctx context.Context) (int64, error) {
	res, err := r.provider.Down(ctx)
	if err != nil {
		return 0, err
	}
	return res.Source.Version, nil
}

// To migrates up or down until target is the current version.
func (r *Runner) To(ctx context.Context, target int64) ([]int64, error) {
	current, err := r.provider.GetDBVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate: current version: %w", err)
	}
	var results []*goose.MigrationResult
	switch {
	case target > current:
		results, err = r.provider.UpTo(ctx, target)
	case target < current:
		results, err = r.provider.DownTo(ctx, target)
	}
	return versions(results), err
}

func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	rows, err := r.provider.Status(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Status, 0, len(rows))
	for _, s := range rows {
		out = append(out, Status{
			Version:   s.Source.Version,
			Name:      path.Base(s.Source.Path),
			Applied:   s.State == goose.StateApplied,
			AppliedAt: s.AppliedAt,
		})
	}
	return out, nil
}

func versions(results []*goose.MigrationResult) []int64 {
	out := make([]int64, 0, len(results))
	for _, res := range results {
		if res != nil && res.Source != nil {
			out = append(out, res.Source.Version)
		}
	}
	return out
}

// Latest brings the schema up to date: goose on postgres, gorm AutoMigrate
// on sqlite where the postgres DDL does not apply.
func Latest(ctx context.Context, cfg config.DBConfig, client *db.Client) ([]int64, error) {
	if client == nil {
		return nil, errors.New("migrate: db client is required")
	}
	if cfg.IsSQLite() {
		if err := client.DB().WithContext(ctx).AutoMigrate(models.All()...); err != nil {
			return nil, fmt.Errorf("migrate: sqlite automigrate: %w", err)
		}
		return nil, nil
	}
	sqlDB, err := client.DB().DB()
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	runner, err := NewRunner(sqlDB)
	if err != nil {
		return nil, err
	}
	return runner.Up(ctx)
}

// MaybeRunDev runs Latest when the app is in dev mode with the auto-migrate
// flag set, and is a no-op otherwise.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	ctx = logg.WithField(ctx, "driver", cfg.DB.Driver)
	applied, err := Latest(ctx, cfg.DB, client)
	if err != nil {
		return err
	}
	logg.Info(logg.WithField(ctx, "applied", applied), "dev schema migrated")
	return nil
}
