package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	"tailscale.com/tsnet"

	"github.com/claude/fittrack/internal/catalog"
	"github.com/claude/fittrack/internal/config"
	"github.com/claude/fittrack/internal/logging"
	"github.com/claude/fittrack/internal/mcp"
	"github.com/claude/fittrack/internal/metrics"
	"github.com/claude/fittrack/internal/player"
	"github.com/claude/fittrack/internal/server"
	"github.com/claude/fittrack/internal/storage"
	"github.com/claude/fittrack/internal/suggest"
)

// Version is set at build time via -ldflags.
var Version = "dev"

const reapInterval = time.Minute

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	envFile := flag.String("env", ".env", "optional dotenv file with FITTRACK_* overrides")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Log)
	log.Info("FitTrack starting", "version", Version, "store", cfg.Store.Backend)

	// Run migrations
	if cfg.Store.Backend == config.BackendPostgres {
		if err := storage.RunMigrations(cfg.Store.Database.DSN(), cfg.Store.MigrationsPath); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")
	}
	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	if err := run(cfg, log); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()
	log.Info("store opened", "backend", cfg.Store.Backend)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewManager("fittrack", "server", reg)

	svc := catalog.NewService(store, catalog.NewIDGen(), log)
	players := player.NewManager(store, svc, player.Options{
		RestExtendSeconds: cfg.Player.RestExtendSeconds,
		Observer:          m,
	}, log)

	var sugg suggest.Suggester
	if cfg.Suggest.Enabled() {
		sugg = suggest.NewOpenRouterClient(cfg.Suggest, log)
		log.Info("workout suggestions enabled", "model", cfg.Suggest.Model)
	} else {
		log.Warn("suggest.api_key not set, workout suggestions disabled")
	}

	deps := server.Deps{
		Catalog:   svc,
		Players:   players,
		Suggester: sugg,
		Metrics:   m,
		Gatherer:  reg,
		MCP:       mcpserver.NewStreamableHTTPServer(mcp.New(svc, sugg, Version, log)),
	}

	// Start server, tsnet or plain HTTP
	var listener net.Listener
	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			return fmt.Errorf("tsnet start: %w", err)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			return fmt.Errorf("tsnet local client: %w", err)
		}
		deps.Identity = server.TailscaleIdentity(lc, log)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			return fmt.Errorf("tsnet listen: %w", err)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{
		Handler:           server.New(deps, cfg.Auth.APIKey, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return players.RunReaper(gctx, reapInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		// Graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		var errs []error
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		if err := players.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("saving sessions: %w", err))
		}
		return errors.Join(errs...)
	})
	return g.Wait()
}
