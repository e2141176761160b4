// Package source implements the four platform adapters behind the uniform
// domain.SourceAdapter contract. Authentication, pagination, payload
// parsing and adapter-local resilience (token bucket, circuit breaker)
// live here and never leak into the orchestrator.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/zach-wendland/stonkzap/internal/domain"
)

// client is the shared HTTP base every adapter embeds. The limiter and
// breaker are adapter-local cross-query state; the per-query pipeline
// never shares mutable state with another query through them beyond
// admission decisions.
type client struct {
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

func newClient(name string, rps rate.Limit, burst int) *client {
	return &client{
		http: &http.Client{Timeout: 10 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    name,
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
		limiter: rate.NewLimiter(rps, burst),
	}
}

// getJSON performs a rate-limited, breaker-guarded GET and decodes the
// response into v. HTTP status codes are mapped onto the adapter error
// taxonomy: 429 to ErrRateLimited, 401/403 to ErrAuth, 5xx to a transient
// error the orchestrator may retry.
func (c *client) getJSON(ctx context.Context, url string, header http.Header, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	body, err := c.breaker.Execute(func() (any, error) {
		return c.fetch(ctx, url, header)
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body.([]byte), v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeJSON(r io.Reader, v any) error {
	if err := json.NewDecoder(io.LimitReader(r, 4<<20)).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *client) fetch(ctx context.Context, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vals := range header {
		for _, val := range vals {
			req.Header.Add(k, val)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, domain.ErrAuth
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}
