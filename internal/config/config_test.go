package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.SourceTimeout)
	assert.Equal(t, 20*time.Second, cfg.QueryTimeout)
	assert.Equal(t, 3, cfg.MaxFetchAttempts)
	assert.Equal(t, 7*24*time.Hour, cfg.ResolverCacheTTL)
	assert.Equal(t, "stonkzap/1.0", cfg.RedditUserAgent)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("SOURCE_TIMEOUT", "2s")
	t.Setenv("QUERY_TIMEOUT", "8s")
	t.Setenv("X_BEARER_TOKEN", "token-123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.SourceTimeout)
	assert.Equal(t, 8*time.Second, cfg.QueryTimeout)
	assert.Equal(t, "token-123", cfg.XBearerToken)
}

func TestLoad_RejectsQueryTimeoutBelowSourceTimeout(t *testing.T) {
	t.Setenv("SOURCE_TIMEOUT", "10s")
	t.Setenv("QUERY_TIMEOUT", "5s")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			SourceTimeout:    5 * time.Second,
			QueryTimeout:     20 * time.Second,
			MaxFetchAttempts: 3,
			ResolverCacheTTL: 168 * time.Hour,
		}
	}

	assert.NoError(t, validate(base()))

	zeroTimeout := base()
	zeroTimeout.SourceTimeout = 0
	assert.Error(t, validate(zeroTimeout))

	noAttempts := base()
	noAttempts.MaxFetchAttempts = 0
	assert.Error(t, validate(noAttempts))

	zeroTTL := base()
	zeroTTL.ResolverCacheTTL = 0
	assert.Error(t, validate(zeroTTL))
}
