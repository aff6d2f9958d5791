package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/configurator-backend/pkg/config"
	"github.com/angelmondragon/configurator-backend/pkg/db"
	"github.com/angelmondragon/configurator-backend/pkg/logger"
	"github.com/angelmondragon/configurator-backend/pkg/migrate"
)

type options struct {
	cmd      string
	dir      string
	embedded bool
	name     string
	version  string
}

func main() {
	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "up|down|status|version|create|validate")
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "migrations directory")
	flag.BoolVar(&opts.embedded, "embedded", false, "use the migrations compiled into the binary instead of -dir")
	flag.StringVar(&opts.name, "name", "", "migration name for -cmd=create")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	_ = godotenv.Load()
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"cmd":      opts.cmd,
		"dir":      opts.dir,
		"embedded": opts.embedded,
	})

	if err := run(ctx, cfg, logg, opts); err != nil {
		logg.Error(ctx, "migrate failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, opts options) error {
	fsys, err := migrationsFS(opts)
	if err != nil {
		return err
	}

	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return fmt.Errorf("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		if err != nil {
			return err
		}
		logg.Info(logg.WithField(ctx, "path", path), "migrate.created")
		return nil
	case "validate":
		if err := migrate.ValidateFS(fsys, "."); err != nil {
			return err
		}
		logg.Info(ctx, "migrate.valid")
		return nil
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer dbClient.Close()
	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return err
	}
	runner, err := migrate.NewRunner(sqlDB, fsys)
	if err != nil {
		return err
	}

	var applied []migrate.Applied
	switch opts.cmd {
	case "up":
		applied, err = runner.Up(ctx)
	case "down":
		applied, err = runner.Down(ctx)
	case "version":
		if opts.version == "" {
			return fmt.Errorf("missing -version for version command")
		}
		applied, err = runner.To(ctx, opts.version)
	case "status":
		statuses, err := runner.Status(ctx)
		if err != nil {
			return err
		}
		for _, st := range statuses {
			logg.Info(logg.WithFields(ctx, map[string]any{
				"version":    st.Version,
				"path":       st.Path,
				"applied":    st.Applied,
				"applied_at": st.AppliedAt,
			}), "migrate.status")
		}
		return nil
	default:
		return fmt.Errorf("unknown -cmd value %q", opts.cmd)
	}

	for _, a := range applied {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"version":     a.Version,
			"path":        a.Path,
			"direction":   a.Direction,
			"duration_ms": a.Duration.Milliseconds(),
		}), "migrate.applied")
	}
	return err
}

func migrationsFS(opts options) (fs.FS, error) {
	if opts.embedded {
		return migrate.EmbeddedFS()
	}
	if opts.cmd == "create" {
		return nil, nil
	}
	return migrate.DiskFS(opts.dir)
}
