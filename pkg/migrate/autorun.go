package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/configurator-backend/pkg/config"
	"github.com/angelmondragon/configurator-backend/pkg/db"
	"github.com/angelmondragon/configurator-backend/pkg/logger"
)

// MaybeRunDev applies the embedded schema when running in dev with
// CONFIGURATOR_AUTO_MIGRATE enabled.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	fsys, err := EmbeddedFS()
	if err != nil {
		return err
	}
	runner, err := NewRunner(sqlDB, fsys)
	if err != nil {
		return err
	}

	applied, err := runner.Up(ctx)
	if err != nil {
		return err
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "applied": len(applied)}), "migrate.dev_autorun_complete")
	}
	return nil
}
