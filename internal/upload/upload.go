package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/claude/fittrack/internal/models"
)

// Stats reports what a push did.
type Stats struct {
	Skipped bool
	Counts  Counts
}

// Uploader validates a local AppData file and pushes it to a FitTrack
// server, remembering what it sent.
type Uploader struct {
	client    *Client
	state     *StateDB
	serverURL string
	dryRun    bool
	log       *slog.Logger
}

// New creates a new Uploader. state may be nil to always push.
func New(client *Client, state *StateDB, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client:    client,
		state:     state,
		serverURL: client.serverURL,
		dryRun:    dryRun,
		log:       log,
	}
}

// Push sends the document at path unless the same content was already
// pushed to this server. force ignores the recorded state.
func (u *Uploader) Push(ctx context.Context, path string, force bool) (*Stats, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	hash, err := HashFile(abs)
	if err != nil {
		return nil, fmt.Errorf("hashing %s: %w", abs, err)
	}

	if u.state != nil && !force {
		done, err := u.state.IsPushed(u.serverURL, abs, hash)
		if err != nil {
			return nil, fmt.Errorf("checking upload state: %w", err)
		}
		if done {
			u.log.Info("document unchanged since last push, skipping", "file", abs, "server", u.serverURL)
			return &Stats{Skipped: true}, nil
		}
	}

	doc, err := readDocument(abs)
	if err != nil {
		return nil, err
	}
	local := Counts{
		Exercises:        len(doc.Exercises),
		Workouts:         len(doc.Workouts),
		WorkoutLogs:      len(doc.WorkoutLogs),
		BodyMeasurements: len(doc.BodyMeasurements),
	}

	if u.dryRun {
		u.log.Info("dry run: document is valid, not sending", "file", abs)
		return &Stats{Counts: local}, nil
	}

	counts, err := u.client.SendDocument(ctx, doc)
	if err != nil {
		return nil, err
	}
	if u.state != nil {
		if err := u.state.MarkPushed(u.serverURL, abs, hash); err != nil {
			u.log.Warn("failed to record push", "file", abs, "error", err)
		}
	}
	u.log.Info("document pushed", "file", abs, "server", u.serverURL)
	return &Stats{Counts: *counts}, nil
}

// readDocument parses and validates an AppData file so that a broken
// document never reaches the server.
func readDocument(path string) (*models.AppData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var doc models.AppData
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	doc.Normalize()
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &doc, nil
}
