package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/fittrack/internal/catalog"
	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/suggest"
)

// HTTPClient implements DataSource by calling the FitTrack REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time checks: HTTPClient serves data and proxies suggestions.
var (
	_ DataSource        = (*HTTPClient)(nil)
	_ suggest.Suggester = (*HTTPClient)(nil)
)

// NewHTTPClient creates an HTTPClient targeting the given base URL. The API
// key is only sent on requests that need it.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// httpStatusError carries a non-2xx response.
type httpStatusError struct {
	path   string
	status int
	body   string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("httpclient: %s returned %d: %s", e.path, e.status, e.body)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, payload any) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("httpclient: encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet && c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &httpStatusError{path: path, status: resp.StatusCode, body: strings.TrimSpace(string(respBody))}
	}

	return respBody, nil
}

func getJSON[T any](ctx context.Context, c *HTTPClient, path string, params url.Values) (T, error) {
	var v T
	body, err := c.do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return v, nil
}

func (c *HTTPClient) ListExercises(ctx context.Context, muscleGroup string) ([]models.Exercise, error) {
	params := url.Values{}
	if muscleGroup != "" {
		params.Set("muscleGroup", muscleGroup)
	}
	return getJSON[[]models.Exercise](ctx, c, "/api/v1/exercises", params)
}

func (c *HTTPClient) ListWorkouts(ctx context.Context) ([]catalog.WorkoutDetail, error) {
	return getJSON[[]catalog.WorkoutDetail](ctx, c, "/api/v1/workouts", nil)
}

// GetWorkout maps a remote 404 onto catalog.ErrNotFound.
func (c *HTTPClient) GetWorkout(ctx context.Context, id string) (*catalog.WorkoutDetail, error) {
	detail, err := getJSON[catalog.WorkoutDetail](ctx, c, "/api/v1/workouts/"+url.PathEscape(id), nil)
	if err != nil {
		var se *httpStatusError
		if errors.As(err, &se) && se.status == http.StatusNotFound {
			return nil, fmt.Errorf("%w: workout %s", catalog.ErrNotFound, id)
		}
		return nil, err
	}
	return &detail, nil
}

func (c *HTTPClient) ListHistory(ctx context.Context) ([]catalog.HistoryEntry, error) {
	return getJSON[[]catalog.HistoryEntry](ctx, c, "/api/v1/history", nil)
}

func (c *HTTPClient) ListMeasurements(ctx context.Context) ([]models.BodyMeasurement, error) {
	return getJSON[[]models.BodyMeasurement](ctx, c, "/api/v1/measurements", nil)
}

func (c *HTTPClient) Document(ctx context.Context) (*models.AppData, error) {
	doc, err := getJSON[models.AppData](ctx, c, "/api/v1/export", nil)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Suggest proxies to the server's suggestion endpoint so the remote
// server's OpenRouter key is used.
func (c *HTTPClient) Suggest(ctx context.Context, req suggest.Request) (*suggest.Response, error) {
	if strings.TrimSpace(req.WorkoutHistory) == "" || strings.TrimSpace(req.FitnessGoals) == "" {
		return nil, suggest.ErrMissingInput
	}
	body, err := c.do(ctx, http.MethodPost, "/api/v1/suggest", nil, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", suggest.ErrSuggestionFailed, err)
	}
	var resp suggest.Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", suggest.ErrSuggestionFailed, err)
	}
	return &resp, nil
}
