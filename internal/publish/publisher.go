// Package publish posts scored rounds to an external consumer.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/entrain/internal/config"
	"github.com/tensorplex-labs/entrain/internal/coupling"
)

// RoundResult is the payload posted for every scored round.
type RoundResult struct {
	// ID is unique per scoring run and doubles as the idempotency key, so a
	// consumer can drop posts repeated by retries.
	ID        string               `json:"id"`
	Round     int64                `json:"round"`
	ScoredAt  time.Time            `json:"scoredAt"`
	Coupling  coupling.CouplingMap `json:"coupling"`
	Summary   coupling.Summary     `json:"summary"`
	Traces    int                  `json:"traces"`
	ElapsedMS int64                `json:"elapsedMs"`
}

type Publisher interface {
	Publish(ctx context.Context, result RoundResult) error
}

// Nop drops every result. It stands in when no PUBLISH_URL is configured.
type Nop struct{}

func (Nop) Publish(context.Context, RoundResult) error { return nil }

// HTTP posts results as JSON with retries.
type HTTP struct {
	httpClient *retryablehttp.Client
	url        string
}

// New returns an HTTP publisher, or Nop when cfg has no URL.
func New(cfg *config.PublisherEnvConfig) (Publisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("publisher env configuration cannot be nil")
	}
	if cfg.PublishURL == "" {
		log.Info().Msg("PUBLISH_URL not set, round results will not be published")
		return Nop{}, nil
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.RetryWaitMin = cfg.RetryWaitMin
	client.RetryWaitMax = cfg.RetryWaitMax
	client.HTTPClient.Timeout = cfg.Timeout

	// retries are reported through zerolog instead
	client.Logger = nil
	client.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			log.Warn().Str("url", req.URL.String()).Int("attempt", attempt).Msg("retrying round result publish")
		}
	}

	log.Info().
		Str("url", cfg.PublishURL).
		Int("retry_max", client.RetryMax).
		Str("timeout", client.HTTPClient.Timeout.String()).
		Str("retry_wait_min", client.RetryWaitMin.String()).
		Str("retry_wait_max", client.RetryWaitMax.String()).
		Msg("round result publisher initialized")

	return &HTTP{httpClient: client, url: cfg.PublishURL}, nil
}

func (p *HTTP) Publish(ctx context.Context, result RoundResult) error {
	body, err := sonic.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal round result: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if result.ID != "" {
		req.Header.Set("Idempotency-Key", result.ID)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("publish round %d: %w", result.Round, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("publish round %d: HTTP %d: %s", result.Round, resp.StatusCode, string(respBody))
	}

	log.Debug().
		Int64("round", result.Round).
		Int("agents", len(result.Coupling)).
		Int("body_size", len(body)).
		Msg("published round result")
	return nil
}
