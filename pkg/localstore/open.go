package localstore

import (
	"context"
	"fmt"

	"github.com/angelmondragon/craftbazaar/pkg/config"
	"github.com/angelmondragon/craftbazaar/pkg/db"
	"github.com/angelmondragon/craftbazaar/pkg/logger"
	"github.com/angelmondragon/craftbazaar/pkg/migrate"
	"github.com/angelmondragon/craftbazaar/pkg/redis"
)

// Opened is a ready Store plus the hook that releases its connections.
type Opened struct {
	Store Store
	Close func() error
}

// Open builds the backend selected by cfg.LocalStore.Driver.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*Opened, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	local := cfg.LocalStore

	switch local.Driver {
	case config.LocalDriverMemory:
		return &Opened{Store: NewMemory(), Close: func() error { return nil }}, nil

	case config.LocalDriverSQLite, config.LocalDriverPostgres:
		client, err := db.New(ctx, local, logg)
		if err != nil {
			return nil, fmt.Errorf("opening local store database: %w", err)
		}
		if err := migrate.MaybeRun(ctx, local, logg, client); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("migrating local store: %w", err)
		}
		store, err := NewSQL(client, local.Namespace)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return &Opened{Store: store, Close: client.Close}, nil

	case config.LocalDriverRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, fmt.Errorf("opening local store redis: %w", err)
		}
		store, err := NewRedis(client, local.Namespace, cfg.Redis.GuestTTL)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return &Opened{Store: store, Close: client.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported local store driver %q", local.Driver)
	}
}
