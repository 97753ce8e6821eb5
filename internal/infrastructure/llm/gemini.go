package llm

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
	"time"

	"ChannelScanner/internal/config"
	"ChannelScanner/internal/domain"
	"ChannelScanner/internal/ports"
	"ChannelScanner/internal/retry"
)

// GeminiClient implements ports.CompletionClient against the Gemini REST API.
// Rate-limited attempts are retried under the injected policy; any other
// provider failure is surfaced immediately.
type GeminiClient struct {
	endpoint   string
	model      string
	apiKey     string
	policy     retry.Policy
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.CompletionClient = (*GeminiClient)(nil)

// NewGeminiClient builds a client from configuration and a retry policy.
func NewGeminiClient(cfg config.GeminiConfig, policy retry.Policy, logger *slog.Logger) *GeminiClient {
	return &GeminiClient{
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		policy:   policy,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Complete sends the prompt and returns the raw model text. The retry budget
// applies to rate limiting only.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("%w: gemini client misconfigured", domain.ErrCompletion)
	}

	var raw string
	err := c.policy.Do(func(attempt int) error {
		text, err := c.generate(ctx, prompt, attempt)
		if err != nil {
			return err
		}
		raw = text
		return nil
	}, func(err error) bool {
		return errors.Is(err, domain.ErrRateLimited)
	})

	return raw, err
}

func (c *GeminiClient) generate(ctx context.Context, prompt string, attempt int) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", domain.ErrCompletion, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.endpoint, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: new request: %v", domain.ErrCompletion, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	c.debug("sending completion request", "attempt", attempt, "model", c.model)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: do request: %v", domain.ErrCompletion, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", domain.ErrCompletion, err)
	}

	c.debug("completion attempt finished", "attempt", attempt, "status", resp.StatusCode, "raw", string(payload))

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("%w: status %s", domain.ErrRateLimited, resp.Status)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("%w: status %s: %s", domain.ErrCompletion, resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded generateResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrCompletion, err)
	}

	if len(decoded.Candidates) == 0 {
		if reason := decoded.PromptFeedback.BlockReason; reason != "" {
			return "", fmt.Errorf("%w: prompt blocked: %s", domain.ErrCompletion, reason)
		}
		return "", fmt.Errorf("%w: empty response with no block reason", domain.ErrCompletion)
	}

	var text strings.Builder
	for _, p := range decoded.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return text.String(), nil
}

func (c *GeminiClient) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
