package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/claude/fittrack/internal/catalog"
	"github.com/claude/fittrack/internal/config"
	"github.com/claude/fittrack/internal/logging"
	"github.com/claude/fittrack/internal/mcp"
	"github.com/claude/fittrack/internal/storage"
	"github.com/claude/fittrack/internal/suggest"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	envFile := flag.String("env", ".env", "optional dotenv file with FITTRACK_* overrides")
	remote := flag.String("remote", "", "FitTrack server URL; serve its data instead of a local store (e.g. https://fittrack.tail1234.ts.net)")
	apiKey := flag.String("api-key", os.Getenv("FITTRACK_AUTH_API_KEY"), "API key for the remote server's suggestion endpoint")
	logLevel := flag.String("log-level", "warn", "stderr log level")
	flag.Parse()

	// stdout carries the MCP protocol
	log := logging.Stderr(*logLevel)

	if err := config.LoadEnvFile(*envFile); err != nil {
		log.Error("env file", "error", err)
		os.Exit(1)
	}

	var (
		ds   mcp.DataSource
		sugg suggest.Suggester
	)
	if *remote != "" {
		client := mcp.NewHTTPClient(*remote, *apiKey)
		ds, sugg = client, client
		log.Info("serving remote data", "server", *remote)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		store, err := storage.Open(context.Background(), cfg.Store)
		if err != nil {
			log.Error("failed to open store", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		ds = catalog.NewService(store, catalog.NewIDGen(), log)
		if cfg.Suggest.Enabled() {
			sugg = suggest.NewOpenRouterClient(cfg.Suggest, log)
		}
	}

	if err := mcpserver.ServeStdio(mcp.New(ds, sugg, Version, log)); err != nil {
		fmt.Fprintln(os.Stderr, "mcp server:", err)
		os.Exit(1)
	}
}
