package domain

import "errors"

var (
	// ErrSymbolNotFound means the query resolved to no known instrument.
	// User-facing input, surfaced as a client error, never retried.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrRateLimited is returned by an adapter on a 429-equivalent
	// response. The orchestrator stops asking that source for the rest
	// of the query.
	ErrRateLimited = errors.New("rate limited")

	// ErrAuth is returned by an adapter when credentials are rejected.
	ErrAuth = errors.New("authentication failed")

	// ErrNotConfigured is returned by an adapter missing credentials.
	ErrNotConfigured = errors.New("source not configured")
)
