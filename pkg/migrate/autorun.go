package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/craftbazaar/pkg/config"
	"github.com/angelmondragon/craftbazaar/pkg/db"
	"github.com/angelmondragon/craftbazaar/pkg/logger"
)

// MaybeRun applies pending migrations when the local store is SQL backed and
// auto-migrate is enabled.
func MaybeRun(ctx context.Context, cfg config.LocalStoreConfig, logg *logger.Logger, client *db.Client) error {
	if !cfg.AutoMigrate || client == nil {
		return nil
	}
	if cfg.Driver != config.LocalDriverSQLite && cfg.Driver != config.LocalDriverPostgres {
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{"driver": cfg.Driver, "dir": DefaultDir})
		logg.Info(ctx, "running goose migrations for local store")
	}

	if err := Run(ctx, sqlDB, cfg.Driver, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "goose migrations completed")
	}
	return nil
}
