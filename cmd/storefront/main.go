package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/angelmondragon/craftbazaar/internal/catalog"
	"github.com/angelmondragon/craftbazaar/internal/clientstate"
	"github.com/angelmondragon/craftbazaar/pkg/config"
	"github.com/angelmondragon/craftbazaar/pkg/localstore"
	"github.com/angelmondragon/craftbazaar/pkg/logger"
	"github.com/angelmondragon/craftbazaar/pkg/metrics"
	"github.com/angelmondragon/craftbazaar/pkg/storefrontapi"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
)

func main() {
	// the shell owns stdout, logs go to stderr
	logg := logger.New(logger.Options{ServiceName: "storefront", Output: os.Stderr})

	if err := godotenv.Load(); err != nil {
		logg.Debug(context.Background(), ".env file not found, relying on environment")
	}

	flags := pflag.NewFlagSet("storefront", pflag.ExitOnError)
	apiURL := flags.String("api", "", "storefront api base url")
	driver := flags.String("local-store", "", "guest storage driver: memory|sqlite|postgres|redis")
	dsn := flags.String("local-dsn", "", "guest storage dsn")
	fixture := flags.String("fixture", "", "catalog fixture yaml used when the api is unavailable")
	offline := flags.Bool("offline", false, "serve the catalog from the fixture only")
	logFormat := flags.String("log-format", "", "json|console")
	_ = flags.Parse(os.Args[1:])

	overrides := map[string]string{
		"api":         config.EnvAPIBaseURL,
		"local-store": config.EnvLocalStoreDriver,
		"local-dsn":   config.EnvLocalStoreDSN,
		"fixture":     config.EnvCatalogFixturePath,
	}
	values := map[string]string{"api": *apiURL, "local-store": *driver, "local-dsn": *dsn, "fixture": *fixture}
	for flag, env := range overrides {
		if flags.Changed(flag) {
			_ = os.Setenv(env, values[flag])
		}
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	format := cfg.App.LogFormat
	if flags.Changed("log-format") {
		format = *logFormat
	}
	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      format,
		WarnStack:   cfg.App.LogWarnStack,
		Output:      os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"api":         cfg.API.BaseURL,
		"local_store": cfg.LocalStore.Driver,
	})

	var (
		registerer prometheus.Registerer
		gatherer   prometheus.Gatherer
	)
	if cfg.Metrics.Enabled {
		registerer = prometheus.DefaultRegisterer
		gatherer = prometheus.DefaultGatherer
	}
	storefrontMetrics := metrics.NewStorefrontMetrics(registerer)

	opened, err := localstore.Open(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to open local store", err)
		os.Exit(1)
	}
	defer func() {
		if err := opened.Close(); err != nil {
			logg.Error(ctx, "error closing local store", err)
		}
	}()

	guest, err := localstore.NewGuest(opened.Store, logg, storefrontMetrics)
	if err != nil {
		logg.Error(ctx, "failed to create guest store", err)
		os.Exit(1)
	}

	client, err := storefrontapi.NewClient(cfg.API.BaseURL,
		storefrontapi.WithTimeout(cfg.API.Timeout),
		storefrontapi.WithRetry(cfg.API.RetryAttempts, cfg.API.RetryDelay),
		storefrontapi.WithMetrics(storefrontMetrics),
		storefrontapi.WithLogger(logg),
	)
	if err != nil {
		logg.Error(ctx, "failed to create storefront client", err)
		os.Exit(1)
	}

	source, err := buildCatalog(cfg.Catalog, *offline, client, logg, storefrontMetrics)
	if err != nil {
		logg.Error(ctx, "failed to build catalog source", err)
		os.Exit(1)
	}

	store, err := clientstate.NewStore(clientstate.StoreParams{
		API:      client,
		Local:    guest,
		Logger:   logg,
		Metrics:  storefrontMetrics,
		Notifier: printNotifier(os.Stdout),
	})
	if err != nil {
		logg.Error(ctx, "failed to create client state store", err)
		os.Exit(1)
	}
	if err := store.Restore(ctx); err != nil {
		logg.Warn(ctx, "failed to restore saved cart")
	}

	logg.Info(ctx, "storefront shell ready")

	sh := newShell(shellParams{
		Store:       store,
		Catalog:     source,
		Out:         os.Stdout,
		Logger:      logg,
		Gatherer:    gatherer,
		RemoteLimit: cfg.Catalog.RemoteLimit,
		PageSize:    cfg.Catalog.PageSize,
	})
	if err := sh.Run(ctx, os.Stdin); err != nil {
		logg.Error(ctx, "shell stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildCatalog(cfg config.CatalogConfig, offline bool, client *storefrontapi.Client, logg *logger.Logger, m *metrics.StorefrontMetrics) (catalog.Source, error) {
	var (
		static *catalog.StaticSource
		err    error
	)
	if cfg.FixturePath != "" {
		static, err = catalog.LoadStaticSource(cfg.FixturePath)
	} else {
		static, err = catalog.DefaultStaticSource()
	}
	if err != nil {
		return nil, err
	}
	if offline {
		return static, nil
	}

	remote, err := catalog.NewRemoteSource(client)
	if err != nil {
		return nil, err
	}
	if !cfg.FallbackEnabled {
		return remote, nil
	}
	return catalog.NewFallbackSource(remote, static, logg, m)
}

func printNotifier(out io.Writer) clientstate.Notifier {
	return clientstate.NotifierFunc(func(_ context.Context, n clientstate.Notification) {
		fmt.Fprintf(out, "[%s] %s\n", n.Level, n.Message)
	})
}
