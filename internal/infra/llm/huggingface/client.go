package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

const defaultBaseURL = "https://api-inference.huggingface.co"

// ErrUnavailable is returned while the circuit breaker rejects calls.
var ErrUnavailable = errors.New("huggingface inference temporarily unavailable")

// Config configures the Inference API client.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Breaker BreakerConfig
}

// BreakerConfig tunes the circuit breaker guarding the Inference API.
type BreakerConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	OpenTimeout  time.Duration
	MinRequests  uint32
	FailureRatio float64
}

// Parameters are the summarization task's generation settings.
type Parameters struct {
	MaxLength int  `json:"max_length"`
	MinLength int  `json:"min_length"`
	NumBeams  int  `json:"num_beams"`
	DoSample  bool `json:"do_sample"`
}

type summarizationRequest struct {
	Inputs     string          `json:"inputs"`
	Parameters Parameters      `json:"parameters"`
	Options    map[string]bool `json:"options,omitempty"`
}

type summarizationOutput struct {
	SummaryText string `json:"summary_text"`
}

type apiError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

// ModelStatus is the Inference API view of a model deployment.
type ModelStatus struct {
	Loaded bool   `json:"loaded"`
	State  string `json:"state"`
}

// Client calls the Hugging Face Inference API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewClient constructs a client. An empty token is allowed for public, rate limited access.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    newBreaker(cfg.Breaker, logger),
	}
}

func newBreaker(cfg BreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker {
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 3
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = 5
	}
	if cfg.FailureRatio <= 0 {
		cfg.FailureRatio = 0.6
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "huggingface",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		// a caller giving up says nothing about the backend
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// Summarize runs the summarization task on model.
func (c *Client) Summarize(ctx context.Context, model, text string, params Parameters) (string, error) {
	payload, err := json.Marshal(summarizationRequest{
		Inputs:     text,
		Parameters: params,
		Options:    map[string]bool{"wait_for_model": true},
	})
	if err != nil {
		return "", fmt.Errorf("encode summarization request: %w", err)
	}
	body, err := c.execute(ctx, http.MethodPost, "/models/"+escapeModel(model), payload)
	if err != nil {
		return "", err
	}
	var outputs []summarizationOutput
	if err := json.Unmarshal(body, &outputs); err != nil {
		return "", fmt.Errorf("decode summarization response: %w", err)
	}
	if len(outputs) == 0 {
		return "", errors.New("huggingface returned no summaries")
	}
	return strings.TrimSpace(outputs[0].SummaryText), nil
}

// Status fetches the deployment status of model.
func (c *Client) Status(ctx context.Context, model string) (ModelStatus, error) {
	var status ModelStatus
	body, err := c.execute(ctx, http.MethodGet, "/status/"+escapeModel(model), nil)
	if err != nil {
		return status, err
	}
	if err := json.Unmarshal(body, &status); err != nil {
		return status, fmt.Errorf("decode model status: %w", err)
	}
	return status, nil
}

func (c *Client) execute(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, method, path, payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	return out.([]byte), nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build huggingface request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read huggingface response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("huggingface request failed: status=%d error=%s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("huggingface request failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// escapeModel keeps the namespace separator of ids like facebook/bart-large-cnn.
func escapeModel(model string) string {
	parts := strings.Split(model, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
