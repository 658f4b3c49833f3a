// economyd runs the economy subsystem as a standalone daemon: a console
// host on stdin/stdout stands in for the game runtime, and a small chi
// server exposes liveness and readiness probes.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/playerledger/playerledger/internal/command"
	"github.com/playerledger/playerledger/internal/config"
	"github.com/playerledger/playerledger/internal/consolehost"
	"github.com/playerledger/playerledger/internal/infra/logging"
	"github.com/playerledger/playerledger/internal/session"
	"github.com/playerledger/playerledger/pkg/envconf"
	"github.com/playerledger/playerledger/pkg/shutdownqueue"
)

// options carries the daemon settings. Environment variables provide the
// defaults; flags override them.
type options struct {
	DataDir    string `env:"ECONOMY_DATA_DIR" default:"data"`
	Locale     string `env:"ECONOMY_LOCALE" default:"en"`
	HealthAddr string `env:"ECONOMY_HEALTH_ADDR" default:":8080"`
	LogLevel   string `env:"ECONOMY_LOG_LEVEL" default:"info"`
}

func main() {
	opts := options{}

	err := envconf.Load(&opts)
	if err != nil {
		slog.Error("load environment config", "error", err)
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:          "economyd",
		Short:        "Per-player balance daemon with a console player host",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	root.Flags().StringVar(&opts.DataDir, "data-dir", opts.DataDir, "directory for credentials.yml and dialog catalogs (env: ECONOMY_DATA_DIR)")
	root.Flags().StringVar(&opts.Locale, "locale", opts.Locale, "dialog catalog locale (env: ECONOMY_LOCALE)")
	root.Flags().StringVar(&opts.HealthAddr, "health-addr", opts.HealthAddr, "listen address for health probes, empty to disable (env: ECONOMY_HEALTH_ADDR)")
	root.Flags().StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "slog level (debug, info, warn, error) (env: ECONOMY_LOG_LEVEL)")

	err = root.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	var level slog.Level

	err := level.UnmarshalText([]byte(opts.LogLevel))
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}

	logging.SetupJSON(level)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	console := consolehost.New(os.Stdout)

	mgr, err := session.Bootstrap(ctx, console, session.Config{
		DataDir: opts.DataDir,
		Locale:  opts.Locale,
	})
	if errors.Is(err, config.ErrTemplateCreated) {
		slog.Info("credentials template written, fill it in and restart", "dir", opts.DataDir)
		return nil
	}

	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	var queue shutdownqueue.Queue
	queue.Add(mgr.Shutdown)

	console.SetRecordLookup(func(playerID uuid.UUID) bool {
		ok, lookupErr := mgr.HasAccount(ctx, playerID)
		return lookupErr == nil && ok
	})

	if opts.HealthAddr != "" {
		startHealthServer(&queue, opts.HealthAddr, console)
	}

	cmd := command.New(mgr, console)

	slog.Info("economy daemon ready", "locale", opts.Locale)

	err = console.Run(ctx, bufio.NewScanner(os.Stdin), mgr, cmd)
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("dispatch loop failed", "error", err)
	}

	// Drain on a fresh context: the signal that stopped the loop must not
	// also abort the store flush.
	drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return queue.Shutdown(drainCtx)
}

// startHealthServer serves liveness and readiness probes. Readiness drops
// once the subsystem disables itself or unloads.
func startHealthServer(queue *shutdownqueue.Queue, addr string, console *consolehost.Console) {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if console.Unloaded() {
			http.Error(w, "subsystem unloaded", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	queue.Add(srv.Shutdown)

	go func() {
		slog.Info("health server listening", "addr", addr)

		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("health server failed", "error", err)
		}
	}()
}
