package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/pressly/goose/v3"
)

const DefaultDir = "pkg/migrate/migrations"

// EmbeddedDir is the directory name inside Migrations.
const EmbeddedDir = "migrations"

//go:embed migrations/*.sql
var Migrations embed.FS

// Applied describes one migration that ran in either direction.
type Applied struct {
	Version   int64
	Path      string
	Direction string
	Duration  time.Duration
}

type Status struct {
	Version   int64
	Path      string
	Applied   bool
	AppliedAt time.Time
}

// Runner applies the configurator schema through a goose provider. It holds no
// package-level goose state, so disk and embedded runners can coexist.
type Runner struct {
	provider *goose.Provider
}

// DiskFS serves migrations from dir on the local filesystem.
func DiskFS(dir string) (fs.FS, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir is required")
	}
	return os.DirFS(dir), nil
}

// EmbeddedFS serves the migrations compiled into the binary.
func EmbeddedFS() (fs.FS, error) {
	return fs.Sub(Migrations, EmbeddedDir)
}

func NewRunner(db *sql.DB, fsys fs.FS) (*Runner, error) {
	return newRunner(goose.DialectPostgres, db, fsys)
}

func newRunner(dialect goose.Dialect, db *sql.DB, fsys fs.FS) (*Runner, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return &Runner{provider: provider}, nil
}

func (r *Runner) Up(ctx context.Context) ([]Applied, error) {
	results, err := r.provider.Up(ctx)
	if err != nil {
		return appliedFrom(results), fmt.Errorf("goose up: %w", err)
	}
	return appliedFrom(results), nil
}

// Down rolls back the most recent migration.
func (r *Runner) Down(ctx context.Context) ([]Applied, error) {
	result, err := r.provider.Down(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose down: %w", err)
	}
	return appliedFrom([]*goose.MigrationResult{result}), nil
}

func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	rows, err := r.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose status: %w", err)
	}
	out := make([]Status, 0, len(rows))
	for _, row := range rows {
		if row == nil || row.Source == nil {
			continue
		}
		out = append(out, Status{
			Version:   row.Source.Version,
			Path:      row.Source.Path,
			Applied:   row.State == goose.StateApplied,
			AppliedAt: row.AppliedAt,
		})
	}
	return out, nil
}

// To migrates up or down until the database is at version (YYYYMMDDHHMMSS).
func (r *Runner) To(ctx context.Context, version string) ([]Applied, error) {
	target, err := strconv.ParseInt(version, 10, 64)
	if err != nil || target < 0 {
		return nil, fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS)", version)
	}
	current, err := r.provider.GetDBVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("get db version: %w", err)
	}

	var results []*goose.MigrationResult
	switch {
	case current == target:
		return nil, nil
	case current < target:
		results, err = r.provider.UpTo(ctx, target)
	default:
		results, err = r.provider.DownTo(ctx, target)
	}
	if err != nil {
		return appliedFrom(results), fmt.Errorf("goose to %d: %w", target, err)
	}
	return appliedFrom(results), nil
}

func appliedFrom(results []*goose.MigrationResult) []Applied {
	out := make([]Applied, 0, len(results))
	for _, res := range results {
		if res == nil || res.Source == nil {
			continue
		}
		out = append(out, Applied{
			Version:   res.Source.Version,
			Path:      res.Source.Path,
			Direction: res.Direction,
			Duration:  res.Duration,
		})
	}
	return out
}
