// Package main is the entry point for the CryptoBridge spread scanner.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/protsenkopavel/CryptoBridge/business/coinlist"
	marketapp "github.com/protsenkopavel/CryptoBridge/business/market/app"
	marketinfra "github.com/protsenkopavel/CryptoBridge/business/market/infra"
	"github.com/protsenkopavel/CryptoBridge/business/scanner"
	spreadapp "github.com/protsenkopavel/CryptoBridge/business/spread/app"
	tradinginfoapp "github.com/protsenkopavel/CryptoBridge/business/tradinginfo/app"
	tibybit "github.com/protsenkopavel/CryptoBridge/business/tradinginfo/infra/bybit"
	tigateio "github.com/protsenkopavel/CryptoBridge/business/tradinginfo/infra/gateio"
	timexc "github.com/protsenkopavel/CryptoBridge/business/tradinginfo/infra/mexc"
	tiokx "github.com/protsenkopavel/CryptoBridge/business/tradinginfo/infra/okx"
	"github.com/protsenkopavel/CryptoBridge/internal/apm"
	"github.com/protsenkopavel/CryptoBridge/internal/cache"
	"github.com/protsenkopavel/CryptoBridge/internal/config"
	"github.com/protsenkopavel/CryptoBridge/internal/health"
	"github.com/protsenkopavel/CryptoBridge/internal/logger"
	"github.com/protsenkopavel/CryptoBridge/internal/metrics"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	runOnce := flag.Bool("once", false, "Run a single scan cycle and exit")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("cryptobridge %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		cancel()
	}()

	if err := run(ctx, *configPath, *runOnce); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, runOnce bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(os.Stderr, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, nil)
	log.Info(ctx, "starting CryptoBridge",
		"version", version,
		"environment", cfg.App.Environment,
	)

	// Observability is opt-in; tracing and metrics fall back to no-ops
	// rather than failing startup.
	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(traceExporter(cfg.Telemetry.TraceExporter), log))
		log.Info(ctx, "tracing initialized", "exporter", cfg.Telemetry.TraceExporter)

		if _, err := metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithExporterConfig(metrics.NewPrometheusConfig()),
		); err != nil {
			log.Warn(ctx, "failed to initialize metrics", "error", err)
		} else {
			port := cfg.Telemetry.PrometheusPort
			if port == 0 {
				port = 9090
			}
			go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
			log.Info(ctx, "prometheus metrics server started", "port", port)
		}
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	healthServer := health.NewServer(8081, version, log)

	// Quote and trading-info cache. Without Redis the process keeps an
	// in-memory cache, which is fine for a single instance.
	var store cache.Store
	var redisStore *cache.RedisStore
	if cfg.Redis.Addr != "" {
		redisStore = cache.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if err := redisStore.Ping(ctx); err != nil {
			return fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		store = redisStore
		healthServer.RegisterCheck("redis", func(ctx context.Context) (bool, string) {
			if err := redisStore.Ping(ctx); err != nil {
				return false, err.Error()
			}
			return true, "ok"
		})
		log.Info(ctx, "redis cache connected", "addr", cfg.Redis.Addr)
	} else {
		store = cache.NewMemoryStore()
		log.Info(ctx, "using in-memory cache")
	}
	defer store.Close()

	// Coin allow/deny lists. Without Postgres every pair passes.
	var listStore coinlist.Store = &coinlist.StaticStore{}
	if cfg.Postgres.DSN != "" {
		pgStore, err := coinlist.NewPostgresStore(ctx, cfg.Postgres.DSN)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		defer pgStore.Close()
		listStore = pgStore
		healthServer.RegisterCheck("postgres", func(ctx context.Context) (bool, string) {
			if err := pgStore.Ping(ctx); err != nil {
				return false, err.Error()
			}
			return true, "ok"
		})
		log.Info(ctx, "coin list store connected")
	}

	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", 8081)
	}
	defer healthServer.Stop(ctx)

	// Market aggregation.
	factory := marketinfra.NewFactory(cfg.Exchanges, log)
	registry := marketapp.NewClientRegistry(factory, cfg.Registry.FailureCooldown, log)
	aggregator := marketapp.NewAggregator(registry, store, log,
		marketapp.WithQuoteTTL(cfg.Cache.QuoteTTL),
		marketapp.WithBulkThreshold(cfg.Cache.BulkThreshold),
	)

	// Trading-info enrichment. Venues without credentials are skipped;
	// the service answers with stubs for them.
	providers := buildInfoProviders(ctx, cfg, log)
	infoService := tradinginfoapp.NewService(providers, store, log,
		tradinginfoapp.WithInfoTTL(cfg.Cache.TradingInfoTTL),
	)

	engine := spreadapp.NewEngine(infoService, log)
	filter := coinlist.NewFilter(listStore, log)

	var publisher scanner.Publisher = scanner.NewLogPublisher(log)
	if redisStore != nil && cfg.Redis.OpportunityChannel != "" {
		publisher = scanner.NewRedisPublisher(redisStore.Client(), cfg.Redis.OpportunityChannel)
		log.Info(ctx, "publishing opportunities to redis", "channel", cfg.Redis.OpportunityChannel)
	}

	svc := scanner.NewService(aggregator, engine, filter, publisher, cfg.Scanner, log)

	if runOnce {
		results := svc.Scan(ctx)
		log.Info(ctx, "single scan complete", "opportunities", len(results))
		return nil
	}

	if !cfg.Scanner.Enabled {
		log.Info(ctx, "scanner disabled, serving health and metrics only")
		<-ctx.Done()
		return nil
	}

	if err := svc.Run(ctx); err != nil && err != context.Canceled {
		return err
	}

	log.Info(ctx, "shutting down")
	return nil
}

func traceExporter(name string) apm.Provider {
	switch name {
	case "zipkin":
		return apm.ZipkinProvider
	case "otlp":
		return apm.OTLPProvider
	case "stdout":
		return apm.ConsoleProvider
	}
	return apm.EmptyProvider
}

func buildInfoProviders(ctx context.Context, cfg *config.Config, log logger.LoggerInterface) []tradinginfoapp.Provider {
	var providers []tradinginfoapp.Provider

	if v := cfg.Exchanges.OKX; v.APIKey != "" && v.APISecret != "" && v.Passphrase != "" {
		p, err := tiokx.New(tiokx.Config{
			APIKey:     v.APIKey,
			APISecret:  v.APISecret,
			Passphrase: v.Passphrase,
			Timeout:    v.Timeout,
		}, log)
		if err != nil {
			log.Warn(ctx, "failed to build okx trading-info provider", "error", err)
		} else {
			providers = append(providers, p)
		}
	}

	if v := cfg.Exchanges.GateIO; v.APIKey != "" && v.APISecret != "" {
		p, err := tigateio.New(tigateio.Config{
			APIKey:    v.APIKey,
			APISecret: v.APISecret,
			Timeout:   v.Timeout,
		}, log)
		if err != nil {
			log.Warn(ctx, "failed to build gateio trading-info provider", "error", err)
		} else {
			providers = append(providers, p)
		}
	}

	if v := cfg.Exchanges.Bybit; v.APIKey != "" && v.APISecret != "" {
		p, err := tibybit.New(tibybit.Config{
			APIKey:    v.APIKey,
			APISecret: v.APISecret,
			Timeout:   v.Timeout,
		}, log)
		if err != nil {
			log.Warn(ctx, "failed to build bybit trading-info provider", "error", err)
		} else {
			providers = append(providers, p)
		}
	}

	if v := cfg.Exchanges.MEXC; v.APIKey != "" && v.APISecret != "" {
		p, err := timexc.New(timexc.Config{
			APIKey:    v.APIKey,
			APISecret: v.APISecret,
			Timeout:   v.Timeout,
		}, log)
		if err != nil {
			log.Warn(ctx, "failed to build mexc trading-info provider", "error", err)
		} else {
			providers = append(providers, p)
		}
	}

	log.Info(ctx, "trading-info providers configured", "count", len(providers))
	return providers
}
