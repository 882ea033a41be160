package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/yndnr/discountd/internal/core/service"
	"github.com/yndnr/discountd/internal/infra/buildinfo"
	"github.com/yndnr/discountd/internal/infra/confloader"
	"github.com/yndnr/discountd/internal/infra/shutdown"
	"github.com/yndnr/discountd/internal/server/codeserver"
	"github.com/yndnr/discountd/internal/server/config"
	"github.com/yndnr/discountd/internal/server/httpserver"
	"github.com/yndnr/discountd/internal/storage"
	"github.com/yndnr/discountd/internal/telemetry/logger"
	"github.com/yndnr/discountd/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(buildinfo.Banner("discount-server"))
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	log.Info("starting discount-server",
		append([]any{
			"version", buildinfo.Version,
			"commit", buildinfo.Commit,
			"config", *configFile,
		}, config.LogAttrs(config.Normalize(cfg))...)...)

	metrics := metric.NewRegistry()

	// A malformed snapshot aborts startup here.
	engine, err := initStorage(cfg, metrics)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	metrics.MustRegister(metric.NewCollector(engine))

	svc := service.NewCodeService(engine, &service.CodeServiceConfig{
		MaxAttempts: cfg.Codes.MaxAttempts,
		Logger:      logger.Component("service"),
		Metrics:     metrics,
	})

	srv := codeserver.New(&codeserver.Config{
		Addr:                 cfg.Server.TCP.Addr,
		PollInterval:         cfg.Server.TCP.PollInterval,
		ReadTimeout:          cfg.Server.TCP.ReadTimeout,
		WriteTimeout:         cfg.Server.TCP.WriteTimeout,
		RateLimit:            cfg.Server.TCP.RateLimit,
		CloseOnUnknownOpcode: cfg.Server.TCP.CloseOnUnknownOpcode,
	}, svc, logger.Component("server"), metrics)

	if err := srv.Listen(); err != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		_ = engine.Close(closeCtx)
		return fmt.Errorf("listen %s: %w", cfg.Server.TCP.Addr, err)
	}

	var metricsServer *httpserver.Server
	if cfg.Metrics.Addr != "" {
		metricsServer = httpserver.New(cfg.Metrics.Addr, httpserver.NewRouter(&httpserver.RouterConfig{
			Metrics:   metrics.Handler(),
			Health:    engine,
			Logger:    logger.Component("http"),
			AllowList: cfg.Metrics.AllowList,
		}), logger.Component("http"))
		if err := metricsServer.Listen(); err != nil {
			_ = srv.Shutdown(context.Background())
			closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			_ = engine.Close(closeCtx)
			return fmt.Errorf("listen %s: %w", cfg.Metrics.Addr, err)
		}
	}

	shutdownHandler := shutdown.NewHandler(cfg.Shutdown.Timeout)

	// Register shutdown hooks (reverse order of startup)
	if *configFile != "" {
		watcher, err := watchLogLevel(*configFile)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(ctx context.Context) error {
				return watcher.Stop()
			})
		}
	}

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down storage engine")
		return engine.Close(ctx)
	})

	if metricsServer != nil {
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down metrics server")
			return metricsServer.Shutdown(ctx)
		})
	}

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down TCP server")
		return srv.Shutdown(ctx)
	})

	g, gctx := errgroup.WithContext(shutdownHandler.Context())

	g.Go(func() error {
		return srv.Serve(gctx)
	})

	if metricsServer != nil {
		g.Go(func() error {
			if err := metricsServer.Serve(); err != nil {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	// A failed listener shuts the whole process down.
	go func() {
		<-gctx.Done()
		shutdownHandler.Trigger()
	}()

	log.Info("server started, press Ctrl+C to stop")
	shutdownErr := shutdownHandler.Wait()
	groupErr := g.Wait()

	if groupErr != nil {
		log.Error("server error", "error", groupErr)
		return groupErr
	}
	if shutdownErr != nil {
		log.Error("shutdown error", "error", shutdownErr)
		return shutdownErr
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from defaults, file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{
		confloader.WithDefaults(config.ToMap(cfg)),
	}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// initLogger initializes the structured logger and makes it the default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Output:    os.Stderr,
		ShowCodes: cfg.Log.ShowCodes,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

// initStorage opens the storage engine and loads the snapshot.
func initStorage(cfg *config.ServerConfig, metrics *metric.Registry) (*storage.Engine, error) {
	storageCfg := storage.DefaultConfig(cfg.Storage.File)
	storageCfg.Queue.RetryInitial = cfg.Storage.RetryInitial
	storageCfg.Queue.RetryMax = cfg.Storage.RetryMax
	storageCfg.Logger = logger.Component("storage")
	storageCfg.Queue.Logger = logger.Component("persist")
	storageCfg.Metrics = metrics

	return storage.Open(storageCfg)
}

// watchLogLevel reloads log.level whenever the config file changes.
func watchLogLevel(configFile string) (*confloader.Watcher, error) {
	watchLog := logger.Component("config")

	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(watchLog))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(configFile); err != nil {
		_ = watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(path string) {
		loader := confloader.NewLoader()
		if err := loader.LoadFile(path); err != nil {
			watchLog.Warn("config reload failed", "error", err)
			return
		}
		level := loader.GetString("log.level")
		if level == "" || !logger.ValidLevel(level) {
			return
		}
		if level != logger.GetLevel() {
			logger.SetLevel(level)
			watchLog.Info("log level changed", "level", level)
		}
	})
	watcher.StartAsync()

	return watcher, nil
}
