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
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/friendsplit/internal/config"
	"github.com/mmynk/friendsplit/internal/ledger"
	"github.com/mmynk/friendsplit/internal/metrics"
	"github.com/mmynk/friendsplit/internal/server"
	"github.com/mmynk/friendsplit/internal/service"
	"github.com/mmynk/friendsplit/internal/storage"
	"github.com/mmynk/friendsplit/internal/storage/memory"
	"github.com/mmynk/friendsplit/internal/storage/sqlite"
	"github.com/mmynk/friendsplit/internal/token"
	"github.com/mmynk/friendsplit/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cmd := &cobra.Command{
		Use:           "friendsplit",
		Short:         "Serve per-session friend balances and bill splits over Connect",
		Long:          "Serve per-session friend balances and bill splits over Connect.\n\n" + config.Usage(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			logging.SetupWithFormat(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := run(ctx, cfg); err != nil {
				slog.Error("Server failed", "error", err)
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfg.Addr, "addr", "a", cfg.Addr, "HTTP listen address")
	flags.StringVar(&cfg.StoreBackend, "store", cfg.StoreBackend, "session store backend: memory or sqlite")
	flags.StringVarP(&cfg.DBPath, "db", "d", cfg.DBPath, "SQLite database path, cleared at startup")
	flags.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "idle time after which a session is discarded")
	flags.DurationVar(&cfg.ReapInterval, "reap-interval", cfg.ReapInterval, "how often idle sessions are discarded")
	flags.StringVar(&cfg.DefaultAvatarURL, "default-avatar", cfg.DefaultAvatarURL, "avatar URL prefilled in the add-friend form")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")
	flags.BoolVar(&cfg.MetricsEnabled, "metrics", cfg.MetricsEnabled, "serve Prometheus metrics on /metrics")

	return cmd
}

func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.StoreBackend == config.BackendSQLite {
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "backend", cfg.StoreBackend, "database", cfg.DBPath)
		return store, nil
	}
	slog.Info("Storage initialized", "backend", cfg.StoreBackend)
	return memory.New(), nil
}

func run(ctx context.Context, cfg *config.Config) error {
	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	tokens := token.NewManager(cfg.SessionSecret, cfg.SessionTTL)

	deps := server.Deps{Tokens: tokens}
	var observer service.SessionObserver
	if cfg.MetricsEnabled {
		deps.Metrics = metrics.New()
		observer = deps.Metrics
	}
	deps.Sessions = service.NewSessionManager(store, tokens, cfg.SessionTTL, observer,
		ledger.WithDefaultAvatarURL(cfg.DefaultAvatarURL),
	)

	go deps.Sessions.Run(ctx, cfg.ReapInterval)

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h2c.NewHandler(server.Router(deps), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", cfg.Addr, "metrics", cfg.MetricsEnabled)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("Graceful shutdown failed", "error", err)
	}
	deps.Sessions.CloseAll(shutdownCtx)
	return nil
}
