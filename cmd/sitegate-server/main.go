package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/yndnr/sitegate/internal/core/service"
	"github.com/yndnr/sitegate/internal/infra/buildinfo"
	"github.com/yndnr/sitegate/internal/infra/confloader"
	"github.com/yndnr/sitegate/internal/infra/shutdown"
	"github.com/yndnr/sitegate/internal/infra/tlsroots"
	"github.com/yndnr/sitegate/internal/server/config"
	"github.com/yndnr/sitegate/internal/server/httpserver"
	"github.com/yndnr/sitegate/internal/server/httpserver/handler"
	"github.com/yndnr/sitegate/internal/server/static"
	"github.com/yndnr/sitegate/internal/storage/credential"
	"github.com/yndnr/sitegate/internal/storage/memory"
	"github.com/yndnr/sitegate/internal/telemetry/logger"
	"github.com/yndnr/sitegate/internal/telemetry/metric"
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
		fmt.Printf("sitegate-server %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return err
	}

	log, slogLogger, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	info := buildinfo.Get()
	log.Info("starting sitegate-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", *configFile)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	metrics := metric.NewRegistry()

	store := memory.New(
		memory.WithTTL(cfg.Session.TTL),
		memory.WithObserver(metrics),
	)
	metrics.TrackActiveSessions(store.Count)

	creds, err := credential.NewPostgresStore(cfg.Credentials.StoreConfig(),
		credential.WithLogger(slogLogger))
	if err != nil {
		return fmt.Errorf("init credential store: %w", err)
	}
	if cfg.Credentials.DSN == "" {
		log.Warn("credentials.dsn is empty; admin login will answer 503")
	}

	cookieCfg, err := cfg.Session.CookieConfig()
	if err != nil {
		return fmt.Errorf("session cookie: %w", err)
	}

	if err := static.CheckRoot(cfg.Server.Static.Root); err != nil {
		log.Warn("static root unavailable", "root", cfg.Server.Static.Root, "error", err)
	}

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Handler: handler.Config{
			Auth:     service.NewAuthService(creds, store, service.WithLoginObserver(metrics)),
			Sessions: service.NewSessionService(store),
			Cookie:   cookieCfg,
			Static: static.New(cfg.Server.Static.Root,
				static.WithFallback(cfg.Server.Static.Fallback),
				static.WithLogger(slogLogger)),
			Metrics:      metrics.Handler(),
			MaxBodyBytes: cfg.Security.MaxBodyBytes,
		},
		Logger:      slogLogger,
		Metrics:     metrics,
		LoginRate:   cfg.Security.LoginRate,
		LoginBurst:  cfg.Security.LoginBurst,
		EnableAudit: cfg.Log.Audit,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverOpts := []httpserver.Option{
		httpserver.WithReadHeaderTimeout(cfg.Server.HTTP.ReadHeaderTimeout),
	}
	if cfg.Server.HTTP.TLSCertFile != "" {
		certs, err := tlsroots.NewReloader(cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile,
			tlsroots.WithLogger(slogLogger))
		if err != nil {
			return fmt.Errorf("init TLS: %w", err)
		}
		go func() {
			if err := certs.Run(ctx); err != nil {
				log.Warn("certificate reload disabled", "error", err)
			}
		}()
		serverOpts = append(serverOpts, httpserver.WithTLSConfig(certs.TLSConfig()))
	}
	httpServer := httpserver.New(cfg.Server.HTTP.Addr, router, serverOpts...)

	shutdownHandler := shutdown.NewHandler(cfg.Server.HTTP.ShutdownTimeout,
		shutdown.WithLogger(slogLogger))

	// Hooks run in reverse registration order.
	shutdownHandler.OnShutdown("session-store", func(context.Context) error {
		log.Info("dropping sessions", "count", store.Count())
		store.Reset()
		return nil
	})
	shutdownHandler.OnShutdown("credential-store", func(context.Context) error {
		creds.Close()
		return nil
	})
	shutdownHandler.OnShutdown("http", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpServer.Shutdown(ctx)
	})

	if *configFile != "" {
		if err := watchLogLevel(ctx, *configFile, slogLogger); err != nil {
			log.Warn("config watcher disabled", "error", err)
		}
	}

	go func() {
		log.Info("HTTP server listening",
			"addr", cfg.Server.HTTP.Addr,
			"tls", httpServer.TLS(),
			"static_root", cfg.Server.Static.Root)
		if err := httpServer.ListenAndServe(); err != nil {
			log.Error("HTTP server error", "error", err)
			shutdownHandler.Trigger()
		}
	}()

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads and verifies configuration from defaults, file and
// environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// initLogger initializes the structured logger.
// Returns both the logger interface and slog.Logger for components that need it.
func initLogger(cfg *config.ServerConfig) (logger.Logger, *slog.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, nil, err
	}

	logger.SetDefault(log)
	return log, logger.Slog(log), nil
}

// watchLogLevel reloads the config file on change and applies its log
// level. Other settings need a restart.
func watchLogLevel(ctx context.Context, path string, log *slog.Logger) error {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return err
	}
	if err := w.Watch(path); err != nil {
		w.Stop()
		return err
	}

	w.OnChange(func(string) {
		cfg, err := loadConfig(path)
		if err != nil {
			log.Warn("config reload rejected", "path", path, "error", err)
			return
		}
		prev := logger.GetLevel()
		if err := logger.SetLevel(cfg.Log.Level); err != nil {
			log.Warn("config reload rejected", "path", path, "error", err)
			return
		}
		if now := logger.GetLevel(); now != prev {
			log.Info("log level changed", "from", prev, "to", now)
		}
	})

	go func() {
		w.Run(ctx)
		w.Stop()
	}()
	return nil
}
