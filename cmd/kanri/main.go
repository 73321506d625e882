// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"

	"github.com/olegiv/kanri-go/internal/adminapi"
	"github.com/olegiv/kanri-go/internal/config"
	"github.com/olegiv/kanri-go/internal/handler"
	"github.com/olegiv/kanri-go/internal/i18n"
	"github.com/olegiv/kanri-go/internal/inflight"
	"github.com/olegiv/kanri-go/internal/logging"
	"github.com/olegiv/kanri-go/internal/middleware"
	"github.com/olegiv/kanri-go/internal/render"
	"github.com/olegiv/kanri-go/internal/session"
	"github.com/olegiv/kanri-go/internal/store"
	"github.com/olegiv/kanri-go/internal/version"
	"github.com/olegiv/kanri-go/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "kanri - admin console for a remote admin API\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  KANRI_API_BASE_URL     Base URL of the admin API (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  KANRI_AUTH_MODE        token|cookie (default: token)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  KANRI_SESSION_SECRET   Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  KANRI_SESSION_STORE    memory|sqlite|redis (default: memory)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  KANRI_DB_PATH          SQLite session database (default: ./data/kanri.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  KANRI_REDIS_URL        Redis URL for the redis session store\n")
		_, _ = fmt.Fprintf(os.Stderr, "  KANRI_SERVER_PORT      Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  KANRI_ENV              Environment: development|production (default: development)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("kanri %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logging.ParseLevel(cfg.LogLevel)})
	logger := slog.New(logging.NewContextHandler(textHandler))
	slog.SetDefault(logger)

	if err := i18n.Init(logger); err != nil {
		return fmt.Errorf("initializing i18n: %w", err)
	}

	sessionStore, pinger, closeStore, err := openSessionStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	sealer, err := session.NewSealer(cfg.SessionSecret)
	if err != nil {
		return fmt.Errorf("creating credential sealer: %w", err)
	}
	sessions := session.NewManager(session.New(sessionStore, cfg.IsDevelopment()), cfg.APIAuthMode(), sealer, handler.RouteLogin, logger)
	slog.Info("session manager initialized", "store", cfg.SessionStore, "auth_mode", cfg.AuthMode)

	api, err := adminapi.New(adminapi.Config{
		BaseURL:   cfg.APIBaseURL,
		Mode:      cfg.APIAuthMode(),
		Endpoints: cfg.Endpoints,
		Timeout:   cfg.APITimeout,
		UserAgent: versionInfo.UserAgent(),
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("creating admin API client: %w", err)
	}

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessions.SessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}

	lpCfg := middleware.DefaultLoginProtectionConfig()
	lpCfg.IPRatePerMinute = cfg.LoginRatePerMinute
	lpCfg.MaxFailedAttempts = cfg.LoginMaxFailures
	lpCfg.LockoutDuration = cfg.LoginLockout
	loginProtection := middleware.NewLoginProtection(lpCfg)

	r := handler.NewRouter(handler.RouterConfig{
		Deps: handler.Deps{
			API:      api,
			Sessions: sessions,
			Renderer: renderer,
			Inflight: inflight.New(),
			Logger:   logger,
		},
		UserRoles:       cfg.UserRoles,
		PostStatuses:    cfg.PostStatuses,
		LoginProtection: loginProtection,
		CSRF:            middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.ServerPort),
		Security:        middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment()),
		Health:          handler.NewHealthHandler(pinger, versionInfo.Version),
		Static:          staticFS,
		AccessLog:       cfg.IsDevelopment(),
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "api", cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// openSessionStore opens the configured session backend. The returned
// pinger is nil for the in-memory store.
func openSessionStore(cfg *config.Config) (scs.Store, handler.Pinger, func(), error) {
	switch cfg.SessionStore {
	case config.SessionStoreSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o750); err != nil {
			return nil, nil, nil, fmt.Errorf("creating data directory: %w", err)
		}
		slog.Info("initializing session database", "path", cfg.DBPath)
		db, err := store.NewDB(cfg.DBPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("initializing database: %w", err)
		}
		if err := store.Migrate(db); err != nil {
			_ = db.Close()
			return nil, nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		closeDB := func() {
			if err := db.Close(); err != nil {
				slog.Error("error closing database connection", "error", err)
			}
		}
		ping := handler.PingerFunc(func(ctx context.Context) error { return store.Ping(ctx, db) })
		return session.NewSQLiteStore(db), ping, closeDB, nil

	case config.SessionStoreRedis:
		rs, err := session.NewRedisStore(session.RedisStoreOptions{
			URL:    cfg.RedisURL,
			Prefix: cfg.RedisPrefix,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		closeRedis := func() {
			if err := rs.Close(); err != nil {
				slog.Error("error closing redis connection", "error", err)
			}
		}
		return rs, rs, closeRedis, nil

	default:
		return nil, nil, func() {}, nil
	}
}
