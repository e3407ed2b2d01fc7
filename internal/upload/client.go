package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/fittrack/internal/models"
)

// Counts is the server's summary of an imported document.
type Counts struct {
	Exercises        int `json:"exercises"`
	Workouts         int `json:"workouts"`
	WorkoutLogs      int `json:"workoutLogs"`
	BodyMeasurements int `json:"bodyMeasurements"`
}

// RejectedError is returned when the server refuses the document itself.
// Retrying will not help.
type RejectedError struct {
	Status int
	Body   string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("import rejected (status %d): %s", e.Status, e.Body)
}

// Client sends documents to the FitTrack server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a new HTTP client for the FitTrack server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: time.Second,
	}
}

// SendDocument POSTs doc to the server's import endpoint, replacing the
// server's data. Retries up to 3 times with exponential backoff on network
// errors and 5xx responses.
func (c *Client) SendDocument(ctx context.Context, doc *models.AppData) (*Counts, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling document: %w", err)
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff << (attempt - 1)):
			}
		}

		counts, err := c.post(ctx, data)
		if err == nil {
			return counts, nil
		}
		var rejected *RejectedError
		if errors.As(err, &rejected) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}

func (c *Client) post(ctx context.Context, data []byte) (*Counts, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/v1/import", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var counts Counts
		if err := json.Unmarshal(body, &counts); err != nil {
			return nil, fmt.Errorf("decoding import response: %w", err)
		}
		return &counts, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, &RejectedError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	default:
		return nil, fmt.Errorf("import failed (status %d): %s", resp.StatusCode, body)
	}
}
