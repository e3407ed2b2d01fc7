package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/claude/fittrack/internal/config"
)

var (
	// ErrMissingInput is returned when either input is blank.
	ErrMissingInput = errors.New("please fill in both fields")
	// ErrSuggestionFailed covers every transport and model failure.
	ErrSuggestionFailed = errors.New("could not get a suggestion, please try again")
)

const (
	systemPrompt = `You are a personal fitness trainer who suggests workout routines based on the user past workout history and fitness goals.`

	userPromptTmpl = `Suggest a workout routine that aligns with the user's goals and takes into consideration their past workout experience. Provide a workout routine that includes exercises, sets, reps, and rest times.

Workout History: {{.WorkoutHistory}}
Fitness Goals: {{.FitnessGoals}}`
)

// Request is the input of a suggestion. Both fields are required.
type Request struct {
	WorkoutHistory string `json:"workoutHistory"`
	FitnessGoals   string `json:"fitnessGoals"`
}

// Response carries the suggested routine as free text.
type Response struct {
	SuggestedWorkout string `json:"suggestedWorkout"`
}

// Suggester produces workout suggestions.
type Suggester interface {
	Suggest(ctx context.Context, req Request) (*Response, error)
}

// OpenRouterClient asks an OpenAI-compatible chat completions endpoint for
// a workout routine. Each call is a single attempt.
type OpenRouterClient struct {
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
	userTmpl   *template.Template
	log        *slog.Logger
}

// NewOpenRouterClient creates a client from the suggest config.
func NewOpenRouterClient(cfg config.SuggestConfig, logger *slog.Logger) *OpenRouterClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenRouterClient{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: timeout},
		userTmpl:   template.Must(template.New("suggest").Parse(userPromptTmpl)),
		log:        logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Suggest validates the inputs and returns the model's routine. Any failure
// after validation is reported as ErrSuggestionFailed; the cause is logged.
func (c *OpenRouterClient) Suggest(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.WorkoutHistory) == "" || strings.TrimSpace(req.FitnessGoals) == "" {
		return nil, ErrMissingInput
	}
	text, err := c.complete(ctx, req)
	if err != nil {
		c.log.Error("workout suggestion failed", "model", c.model, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrSuggestionFailed, err)
	}
	return &Response{SuggestedWorkout: text}, nil
}

func (c *OpenRouterClient) complete(ctx context.Context, req Request) (string, error) {
	var prompt bytes.Buffer
	if err := c.userTmpl.Execute(&prompt, req); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt.String()},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Title", "FitTrack")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("api error (status %d): %s", resp.StatusCode, body)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("model error: %s (code: %d)", parsed.Error.Message, parsed.Error.Code)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("empty suggestion")
	}
	return text, nil
}
