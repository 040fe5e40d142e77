// Package mirrorclient implements tracker.Backend over the Oxbow REST API.
package mirrorclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"oxbow-be/pkg/tracker"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultRateLimit = 5
	defaultBurst     = 5

	basePath = "/api/mirror/v1"
)

// Client talks to the mirror routes as the user identified by the bearer
// token. The userID arguments of tracker.Backend are ignored by the server,
// which reads the user from the token; they are sent for logging only.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ tracker.Backend = (*Client)(nil)

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) UnassignedCount(ctx context.Context, userID string) (int, error) {
	var data countData
	if err := c.do(ctx, http.MethodGet, "/unassigned-count", userID, nil, &data); err != nil {
		return 0, err
	}
	return data.Count, nil
}

func (c *Client) CheckStatus(ctx context.Context, userID string) (*tracker.StatusReport, error) {
	var data statusData
	if err := c.do(ctx, http.MethodGet, "/status", userID, nil, &data); err != nil {
		return nil, err
	}

	report := &tracker.StatusReport{
		Status:       tracker.Status(data.Status),
		ErrorCode:    data.ErrorCode,
		ErrorMessage: data.ErrorMessage,
	}
	if data.RequestedAt != nil {
		report.RequestedAt = *data.RequestedAt
	}
	if data.Mirror != nil {
		report.Result = data.Mirror.toResult()
	}
	switch report.Status {
	case tracker.StatusNone, tracker.StatusPending, tracker.StatusProcessing, tracker.StatusCompleted, tracker.StatusFailed:
	default:
		return nil, tracker.NewError(tracker.KindParse, "", fmt.Errorf("unknown generation status %q", data.Status))
	}
	return report, nil
}

func (c *Client) CheckEligibility(ctx context.Context, userID string) (*tracker.Eligibility, error) {
	var data eligibilityData
	if err := c.do(ctx, http.MethodGet, "/eligibility", userID, nil, &data); err != nil {
		return nil, err
	}

	elig := &tracker.Eligibility{
		CanGenerate: data.CanGenerate,
		Reason:      data.Reason,
		Message:     data.Message,
	}
	if data.RetryAt != nil {
		elig.RetryAt = *data.RetryAt
	}
	return elig, nil
}

func (c *Client) RequestGeneration(ctx context.Context, userID string) (*tracker.Outcome, error) {
	var data generateData
	if err := c.do(ctx, http.MethodPost, "/generate", userID, struct{}{}, &data); err != nil {
		return nil, err
	}

	out := &tracker.Outcome{}
	if data.Status == string(tracker.StatusCompleted) && data.Mirror != nil {
		out.Result = data.Mirror.toResult()
	}
	return out, nil
}

func (c *Client) MarkViewed(ctx context.Context, resultID string) error {
	return c.do(ctx, http.MethodPost, "/"+resultID+"/viewed", "", struct{}{}, nil)
}

func (c *Client) do(ctx context.Context, method, path, userID string, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return tracker.NewError(tracker.KindNetwork, "", fmt.Errorf("rate limiter: %w", err))
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+basePath+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if userID != "" {
		req.Header.Set("X-Oxbow-User", userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return tracker.NewError(tracker.KindNetwork, "", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return tracker.NewError(tracker.KindNetwork, "", fmt.Errorf("failed to read response: %w", err))
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= 300 {
		return errorFromResponse(resp.StatusCode, env, decodeErr == nil)
	}
	if decodeErr != nil {
		return tracker.NewError(tracker.KindParse, "", fmt.Errorf("failed to parse response: %w", decodeErr))
	}
	if !env.Success {
		return errorFromResponse(resp.StatusCode, env, true)
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return tracker.NewError(tracker.KindParse, "", fmt.Errorf("failed to parse response data: %w", err))
	}
	return nil
}
