package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgconfig "github.com/starford/reinforcer/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	require.NoError(t, cfg.Validate(), "disabled mode should pass")
	assert.False(t, cfg.AuthEnabled(), "disabled mode should not be enabled")
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	require.NoError(t, cfg.Validate(), "empty mode should default to disabled")
	assert.Equal(t, AuthModeDisabled, cfg.Mode)
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	require.NoError(t, cfg.Validate(), "token mode with token should pass")
	assert.True(t, cfg.AuthEnabled(), "token mode should be enabled")
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	require.Error(t, err, "token mode with empty token should fail")
	assert.Contains(t, err.Error(), "token is empty")
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	assert.Error(t, cfg.Validate(), "invalid mode should fail validation")
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	assert.Error(t, cfg.Validate(), "full config validate should catch auth error")
}

func TestDefaultConfig_Valid(t *testing.T) {
	assert.NoError(t, NewDefaultConfig().Validate())
}

func TestStagingConfig_SweepIntervalRequiredWithTTL(t *testing.T) {
	cfg := StagingConfig{Path: "./staging", TTL: time.Hour}
	assert.Error(t, cfg.Validate(), "ttl without sweep interval should fail")

	cfg.TTL = 0
	assert.NoError(t, cfg.Validate(), "zero ttl disables sweeping")
}

func TestAnalysisConfig_Positive(t *testing.T) {
	cfg := AnalysisConfig{SummarySentences: 0, KeywordCount: 3}
	assert.Error(t, cfg.Validate(), "zero summary sentences should fail")
}

func TestFetchConfig_ZeroRetriesPassThrough(t *testing.T) {
	cfg := NewDefaultConfig().Fetch
	cfg.MaxRetries = 0
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0, cfg.FetcherConfig().MaxRetries, "zero must reach the fetcher unchanged")

	cfg.MaxRetries = -1
	assert.Error(t, cfg.Validate())
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `app:
  log_level: debug
  http:
    port: 9000
knowledge_base:
  path: /tmp/kb
staging:
  ttl: 2h
  sweep_interval: 10m
fetch:
  timeout: 5s
  max_retries: 0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := NewDefaultConfig()
	require.NoError(t, pkgconfig.Load(path, cfg))

	assert.Equal(t, slog.LevelDebug, cfg.App.LogLevel)
	assert.Equal(t, 9000, cfg.App.HTTP.Port)
	assert.Equal(t, "/tmp/kb", cfg.KnowledgeBase.Path)
	assert.Equal(t, 2*time.Hour, cfg.Staging.TTL)
	assert.Equal(t, 10*time.Minute, cfg.Staging.SweepInterval)
	assert.Equal(t, "./staging", cfg.Staging.Path, "unset staging path keeps the default")
	assert.Equal(t, 5*time.Second, cfg.Fetch.FetcherConfig().Timeout)
	assert.Equal(t, 0, cfg.Fetch.MaxRetries, "explicit zero overrides the default")
}
