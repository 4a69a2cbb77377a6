package localstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/angelmondragon/craftbazaar/pkg/config"
	"github.com/angelmondragon/craftbazaar/pkg/db"
	"github.com/angelmondragon/craftbazaar/pkg/migrate"
	"github.com/angelmondragon/craftbazaar/pkg/redis"
	"gorm.io/driver/sqlite"
)

func newSQLStore(t *testing.T, namespace string) *SQL {
	t.Helper()
	conn, err := db.Open(sqlite.Open(filepath.Join(t.TempDir(), "local.db")))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	client := db.Wrap(conn, config.LocalDriverSQLite)
	t.Cleanup(func() { _ = client.Close() })

	cfg := config.LocalStoreConfig{Driver: config.LocalDriverSQLite, AutoMigrate: true}
	if err := migrate.MaybeRun(context.Background(), cfg, nil, client); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store, err := NewSQL(client, namespace)
	if err != nil {
		t.Fatalf("NewSQL: %v", err)
	}
	return store
}

func backends(t *testing.T) map[string]Store {
	t.Helper()
	redisStore, err := NewRedis(redis.NewFromCmdable(redis.NewMockCmdable()), "shopper", time.Hour)
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	return map[string]Store{
		"memory": NewMemory(),
		"sql":    newSQLStore(t, "shopper"),
		"redis":  redisStore,
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Get(ctx, KeyCart); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound for missing key, got %v", err)
			}

			if err := store.Set(ctx, KeyCart, `[{"productId":"p1","quantity":1}]`); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := store.Set(ctx, KeyCart, `[]`); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, err := store.Get(ctx, KeyCart)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got != `[]` {
				t.Fatalf("expected overwritten value, got %q", got)
			}

			if err := store.Set(ctx, KeyWishlist, `[]`); err != nil {
				t.Fatalf("Set wishlist: %v", err)
			}
			if err := store.Del(ctx, KeyCart, KeyWishlist, "never-set"); err != nil {
				t.Fatalf("Del: %v", err)
			}
			for _, key := range []string{KeyCart, KeyWishlist} {
				if _, err := store.Get(ctx, key); !errors.Is(err, ErrNotFound) {
					t.Fatalf("expected %s deleted, got %v", key, err)
				}
			}
			if err := store.Del(ctx); err != nil {
				t.Fatalf("Del with no keys: %v", err)
			}
		})
	}
}

func TestSQLStoreIsolatesNamespaces(t *testing.T) {
	ctx := context.Background()
	first := newSQLStore(t, "alpha")
	second, err := NewSQL(first.client, "beta")
	if err != nil {
		t.Fatalf("NewSQL: %v", err)
	}

	if err := first.Set(ctx, KeyCart, "alpha-cart"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := second.Get(ctx, KeyCart); !errors.Is(err, ErrNotFound) {
		t.Fatalf("namespace beta should not see alpha values, got %v", err)
	}
}

func TestRedisStoreNamespacesKeysAndAppliesTTL(t *testing.T) {
	ctx := context.Background()
	mock := redis.NewMockCmdable()
	store, err := NewRedis(redis.NewFromCmdable(mock), "guest-42", 30*time.Minute)
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	if err := store.Set(ctx, KeyWishlist, "[]"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ttl := mock.TTL("cb:local:guest-42:wishlist"); ttl != 30*time.Minute {
		t.Fatalf("expected ttl on namespaced key, got %v", ttl)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()

	memCfg := &config.Config{LocalStore: config.LocalStoreConfig{Driver: config.LocalDriverMemory}}
	opened, err := Open(ctx, memCfg, nil)
	if err != nil {
		t.Fatalf("Open memory: %v", err)
	}
	if _, ok := opened.Store.(*Memory); !ok {
		t.Fatalf("expected memory store, got %T", opened.Store)
	}

	sqlCfg := &config.Config{LocalStore: config.LocalStoreConfig{
		Driver:      config.LocalDriverSQLite,
		DSN:         filepath.Join(t.TempDir(), "open.db"),
		Namespace:   "default",
		AutoMigrate: true,
	}}
	opened, err = Open(ctx, sqlCfg, nil)
	if err != nil {
		t.Fatalf("Open sqlite: %v", err)
	}
	defer opened.Close()
	if err := opened.Store.Set(ctx, KeyCart, "[]"); err != nil {
		t.Fatalf("Set after open: %v", err)
	}

	if _, err := Open(ctx, &config.Config{LocalStore: config.LocalStoreConfig{Driver: "floppy"}}, nil); err == nil {
		t.Fatalf("expected unknown driver to fail")
	}
}
