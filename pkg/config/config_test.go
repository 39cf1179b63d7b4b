package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawscraper/pkg/utils"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
site:
  primary_base_url: https://new.kenyalaw.org
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultRequestDelay, cfg.RequestDelay)
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, DefaultMaxConcurrency, cfg.MaxConcurrency)
	assert.Equal(t, "/feeds/all.xml", cfg.Site.FeedPath)
	assert.Equal(t, "kenya_law", cfg.Elasticsearch.Index)
	assert.NotEmpty(t, cfg.UserAgents)
	assert.Equal(t, time.Duration(0), cfg.BatchTimeout, "batch timeout defaults to disabled")
}

func TestLoadExplicitValuesSurviveDefaults(t *testing.T) {
	path := writeConfig(t, `
request_delay: 5s
max_concurrency: 2
site:
  primary_base_url: https://new.kenyalaw.org
  fallback_base_url: https://kenyalaw.org/kl
  mirror_rules:
    - host: new.kenyalaw.org
      mirror_host: kenyalaw.org
      path_prefix: /judgments/
      mirror_prefix: /caselaw/cases/
elasticsearch:
  addresses: ["http://localhost:9200"]
  index: legal_docs
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.RequestDelay)
	assert.Equal(t, 2, cfg.MaxConcurrency)
	assert.Equal(t, "legal_docs", cfg.Elasticsearch.Index)
	require.Len(t, cfg.Site.MirrorRules, 1)
	assert.Equal(t, "/caselaw/cases/", cfg.Site.MirrorRules[0].MirrorPrefix)

	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestValidateRequiresPrimaryBaseURL(t *testing.T) {
	cfg := &AppConfig{}
	cfg.ApplyDefaults()

	_, err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrConfigValidation)
}

func TestValidateRejectsBadScheme(t *testing.T) {
	cfg := &AppConfig{Site: SiteConfig{PrimaryBaseURL: "ftp://kenyalaw.org"}}
	cfg.ApplyDefaults()

	_, err := cfg.Validate()
	assert.ErrorIs(t, err, utils.ErrConfigValidation)
}

func TestValidateRejectsHalfMirrorRule(t *testing.T) {
	cfg := &AppConfig{Site: SiteConfig{
		PrimaryBaseURL:  "https://new.kenyalaw.org",
		FallbackBaseURL: "https://kenyalaw.org/kl",
		MirrorRules: []MirrorRule{
			{Host: "new.kenyalaw.org", MirrorHost: "kenyalaw.org", PathPrefix: "/judgments/"},
		},
	}}
	cfg.ApplyDefaults()

	_, err := cfg.Validate()
	assert.ErrorIs(t, err, utils.ErrConfigValidation)
}

func TestValidateWarnsOnAggressiveSettings(t *testing.T) {
	cfg := &AppConfig{
		RequestDelay:   100 * time.Millisecond,
		MaxConcurrency: 50,
		Site:           SiteConfig{PrimaryBaseURL: "https://new.kenyalaw.org"},
	}
	cfg.ApplyDefaults()

	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(warnings), 3, "expect pace, concurrency, and missing-fallback warnings")
}

func TestValidateRejectsInvertedRetryDelays(t *testing.T) {
	cfg := &AppConfig{
		InitialRetryDelay: 2 * time.Minute,
		MaxRetryDelay:     time.Second,
		Site:              SiteConfig{PrimaryBaseURL: "https://new.kenyalaw.org"},
	}
	cfg.ApplyDefaults()

	_, err := cfg.Validate()
	assert.ErrorIs(t, err, utils.ErrConfigValidation)
}
