package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/custody/internal/api"
	"github.com/erazemk/custody/internal/auth"
	"github.com/erazemk/custody/internal/config"
	"github.com/erazemk/custody/internal/db"
	"github.com/erazemk/custody/internal/ledger"
	"github.com/erazemk/custody/internal/metrics"
	"github.com/erazemk/custody/internal/notify"
	"github.com/erazemk/custody/internal/store"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringP("addr", "a", "", "listen address (default: :8080)")
	f.String("notify-url", "", "front-end webhook for transfer events (default: log only)")
	f.Duration("notify-timeout", 0, "webhook delivery timeout (default: 5s)")
	f.Duration("token-ttl", 0, "session token lifetime (default: 168h)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	level, _ := cfg.Level()
	closeLog, err := setupLogger(cfg.Log, level)
	if err != nil {
		return err
	}
	defer closeLog()

	// Check if DB exists, auto-init if not.
	if _, err := os.Stat(cfg.DB); errors.Is(err, os.ErrNotExist) {
		database, secret, err := initDatabase(ctx, cfg.DB)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		database.Close()

		printInitResult(os.Stdout, cfg.DB, secret)
		fmt.Println()
	}

	database, err := db.Open(cfg.DB, cfg.MaxOpenConns)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Ensure schema exists (idempotent).
	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring database schema: %w", err)
	}

	slog.Info("database ready", "path", cfg.DB)

	jwtSecret, err := store.GetOrCreateSetting(ctx, database, store.SettingJWTSecret, func() (string, error) {
		return auth.GenerateSecret(32)
	})
	if err != nil {
		return fmt.Errorf("loading JWT secret: %w", err)
	}

	var notifier notify.Notifier = notify.Log{Logger: slog.Default()}
	if cfg.NotifyURL != "" {
		notifier = notify.NewWebhook(cfg.NotifyURL, cfg.NotifyTimeout)
		slog.Info("delivering notifications", "url", cfg.NotifyURL)
	}

	m := metrics.New()
	svc := ledger.New(database,
		ledger.WithNotifier(notifier),
		ledger.WithMetrics(m),
		ledger.WithLogger(slog.Default()),
		ledger.WithContactsLimit(cfg.ContactsLimit),
	)

	server := &http.Server{
		Addr: cfg.Addr,
		Handler: api.NewRouter(api.Config{
			Ledger:    svc,
			JWTSecret: jwtSecret,
			TokenTTL:  cfg.TokenTTL,
			Metrics:   m,
			Logger:    slog.Default(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr, "version", version)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}
