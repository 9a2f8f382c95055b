package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BradenHooton/roster/internal/auth"
	"github.com/BradenHooton/roster/internal/background"
	"github.com/BradenHooton/roster/internal/config"
	"github.com/BradenHooton/roster/internal/filter"
	"github.com/BradenHooton/roster/internal/handlers"
	"github.com/BradenHooton/roster/internal/metrics"
	"github.com/BradenHooton/roster/internal/routes"
	"github.com/BradenHooton/roster/internal/services"
	pkghttp "github.com/BradenHooton/roster/pkg/http"
	pkglogger "github.com/BradenHooton/roster/pkg/logger"
)

func main() {
	// Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Server.LogLevel)}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("driver", cfg.Database.Driver))

	// Connect to the configured store and bring its schema up to date
	st, err := openStore(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer st.close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	err = st.migrate(migrateCtx)
	cancel()
	if err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	// The filter needs lower() and replace() from the store; refuse to start without them
	builder, err := filter.NewBuilder(st.accounts.Dialect())
	if err != nil {
		logger.Error("store cannot evaluate account filters", slog.Any("error", err))
		os.Exit(1)
	}

	ipConfig, err := pkghttp.NewIPConfig(cfg.Server.TrustedProxies)
	if err != nil {
		logger.Error("invalid TRUSTED_PROXIES", slog.Any("error", err))
		os.Exit(1)
	}

	m := metrics.New()
	auditLogger := pkglogger.NewAuditLogger(logger)
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenExpiry)

	// Initialize services
	accountService := services.NewAccountService(st.accounts, builder, cfg.Listing, m, logger, auditLogger)
	authService := services.NewAuthService(st.accounts, tokenManager, m, logger, auditLogger)

	bootstrapCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = accountService.EnsureAdmin(bootstrapCtx, cfg.Bootstrap)
	cancel()
	if err != nil {
		logger.Error("failed to ensure admin account", slog.Any("error", err))
		os.Exit(1)
	}

	handler := routes.NewRouter(cfg, routes.Dependencies{
		AccountHandler: handlers.NewAccountHandler(accountService, logger),
		AuthHandler:    handlers.NewAuthHandler(authService, ipConfig),
		TokenManager:   tokenManager,
		Accounts:       st.accounts,
		Metrics:        m,
		IPConfig:       ipConfig,
		HealthCheck:    st.healthCheck,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	statsCtx, statsCancel := context.WithCancel(context.Background())
	defer statsCancel()

	stats := background.NewStatsCollector(st.accounts, builder, m, logger, cfg.Listing.StatsInterval)
	go stats.Start(statsCtx)

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	stats.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		return
	}

	logger.Info("server stopped gracefully")
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
