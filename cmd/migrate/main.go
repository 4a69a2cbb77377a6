package main

import (
	"context"
	"fmt"
	"os"

	"github.com/angelmondragon/craftbazaar/pkg/config"
	"github.com/angelmondragon/craftbazaar/pkg/db"
	"github.com/angelmondragon/craftbazaar/pkg/logger"
	"github.com/angelmondragon/craftbazaar/pkg/migrate"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {
	ctx := context.Background()
	// bootstrap logger early (then re-init after config load)
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	cmd := pflag.String("cmd", "up", "migration command: up|down|status|version|current|validate")
	version := pflag.String("version", "", "target version (YYYYMMDDHHMMSS) for --cmd=version")
	pflag.Parse()

	if *cmd == "validate" {
		if err := migrate.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "migration validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("migration validation passed")
		return
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx = logg.WithFields(context.Background(), map[string]any{
		"env":    cfg.App.Env,
		"cmd":    *cmd,
		"driver": cfg.LocalStore.Driver,
	})

	if _, err := migrate.Dialect(cfg.LocalStore.Driver); err != nil {
		fmt.Fprintf(os.Stderr, "local store driver %q has no schema to migrate\n", cfg.LocalStore.Driver)
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.LocalStore, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.SQL()
	requireResource(ctx, logg, "sql database", err)

	logg.Info(ctx, "migrate ready")

	driver := cfg.LocalStore.Driver
	switch *cmd {
	case "up", "down", "status":
		if err := migrate.Run(ctx, sqlDB, driver, *cmd); err != nil {
			fmt.Fprintf(os.Stderr, "goose %s failed: %v\n", *cmd, err)
			os.Exit(1)
		}

	case "version":
		if *version == "" {
			fmt.Fprintln(os.Stderr, "missing --version for version command")
			os.Exit(1)
		}
		if err := migrate.MigrateToVersion(ctx, sqlDB, driver, *version); err != nil {
			fmt.Fprintf(os.Stderr, "goose version migrate failed: %v\n", err)
			os.Exit(1)
		}

	case "current":
		current, err := migrate.Version(ctx, sqlDB, driver)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reading schema version failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(current)

	default:
		fmt.Fprintln(os.Stderr, "unknown --cmd value:", *cmd)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
