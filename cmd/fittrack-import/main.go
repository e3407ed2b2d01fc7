package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/claude/fittrack/internal/catalog"
	"github.com/claude/fittrack/internal/config"
	"github.com/claude/fittrack/internal/logging"
	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/storage"
	"github.com/claude/fittrack/internal/upload"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	envFile := flag.String("env", ".env", "optional dotenv file with FITTRACK_* overrides")
	path := flag.String("file", "", "AppData JSON document (db.json or an export) (required)")
	export := flag.Bool("export", false, "write the stored document to -file instead of importing it")
	dryRun := flag.Bool("dry-run", false, "validate the document without writing to the store")
	serverURL := flag.String("server", "", "push the document to this FitTrack server instead of the local store")
	apiKey := flag.String("api-key", "", "API key for -server (default $FITTRACK_AUTH_API_KEY)")
	force := flag.Bool("force", false, "with -server, push even if the file is unchanged since the last push")
	flag.Parse()

	if *path == "" {
		fmt.Fprintf(os.Stderr, "Usage: fittrack-import -config config.yaml -file db.json [-dry-run | -export]\n")
		fmt.Fprintf(os.Stderr, "       fittrack-import -server <URL> -file db.json [-api-key KEY] [-force] [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := config.LoadEnvFile(*envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *serverURL != "" {
		key := *apiKey
		if key == "" {
			key = os.Getenv("FITTRACK_AUTH_API_KEY")
		}
		log := logging.New(config.LogConfig{Level: "info", Format: "text"})
		if err := runPush(*serverURL, key, *path, *dryRun, *force, log); err != nil {
			log.Error("push failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log)

	ctx := context.Background()
	if *export {
		err = runExport(ctx, cfg, *path, log)
	} else {
		err = runImport(ctx, cfg, *path, *dryRun, log)
	}
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}
}

func runImport(ctx context.Context, cfg *config.Config, path string, dryRun bool, log *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	var doc models.AppData
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	var store storage.Store
	if dryRun {
		log.Info("DRY RUN mode, nothing will be written to the store")
		store = storage.NewMemoryStore(nil)
	} else {
		store, err = openStore(ctx, cfg, log)
		if err != nil {
			return err
		}
	}
	defer store.Close()

	svc := catalog.NewService(store, catalog.NewIDGen(), log)
	if err := svc.Replace(ctx, &doc); err != nil {
		return err
	}
	printStats(log, &doc)
	log.Info("import complete", "backend", cfg.Store.Backend, "dry_run", dryRun)
	return nil
}

func runExport(ctx context.Context, cfg *config.Config, path string, log *slog.Logger) error {
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	doc, err := catalog.NewService(store, catalog.NewIDGen(), log).Document(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	printStats(log, doc)
	log.Info("export complete", "file", path)
	return nil
}

func runPush(serverURL, apiKey, path string, dryRun, force bool, log *slog.Logger) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("finding home directory: %w", err)
	}
	state, err := upload.OpenStateDB(filepath.Join(homeDir, ".fittrack"))
	if err != nil {
		return err
	}
	defer state.Close()

	u := upload.New(upload.NewClient(serverURL, apiKey), state, dryRun, log)
	stats, err := u.Push(context.Background(), path, force)
	if err != nil {
		return err
	}
	if !stats.Skipped {
		log.Info("document stats",
			"exercises", stats.Counts.Exercises,
			"workouts", stats.Counts.Workouts,
			"workout_logs", stats.Counts.WorkoutLogs,
			"body_measurements", stats.Counts.BodyMeasurements,
		)
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Store, error) {
	if cfg.Store.Backend == config.BackendPostgres {
		if err := storage.RunMigrations(cfg.Store.Database.DSN(), cfg.Store.MigrationsPath); err != nil {
			return nil, err
		}
		log.Info("migrations applied")
	}
	store, err := storage.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return store, nil
}

func printStats(log *slog.Logger, doc *models.AppData) {
	log.Info("document stats",
		"exercises", len(doc.Exercises),
		"workouts", len(doc.Workouts),
		"workout_logs", len(doc.WorkoutLogs),
		"body_measurements", len(doc.BodyMeasurements),
	)
}
