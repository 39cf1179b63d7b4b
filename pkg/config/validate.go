package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"lawscraper/pkg/utils"
)

// Validate checks the configuration for fatal problems and returns advisory
// warnings for settings that are legal but likely unintended. A non-nil error
// means the config must not be used.
func (c *AppConfig) Validate() ([]string, error) {
	var warnings []string

	if c.Site.PrimaryBaseURL == "" {
		return nil, fmt.Errorf("%w: site.primary_base_url is required", utils.ErrConfigValidation)
	}
	if err := checkBaseURL("site.primary_base_url", c.Site.PrimaryBaseURL); err != nil {
		return nil, err
	}
	if c.Site.FallbackBaseURL != "" {
		if err := checkBaseURL("site.fallback_base_url", c.Site.FallbackBaseURL); err != nil {
			return nil, err
		}
	} else {
		warnings = append(warnings, "site.fallback_base_url is empty; fetches will not fail over to a mirror")
	}

	for i, rule := range c.Site.MirrorRules {
		if rule.Host == "" || rule.MirrorHost == "" {
			return nil, fmt.Errorf("%w: site.mirror_rules[%d]: host and mirror_host are required", utils.ErrConfigValidation, i)
		}
		if (rule.PathPrefix == "") != (rule.MirrorPrefix == "") {
			return nil, fmt.Errorf("%w: site.mirror_rules[%d]: path_prefix and mirror_prefix must be set together", utils.ErrConfigValidation, i)
		}
	}

	if c.InitialRetryDelay > c.MaxRetryDelay {
		return nil, fmt.Errorf("%w: initial_retry_delay (%s) exceeds max_retry_delay (%s)",
			utils.ErrConfigValidation, c.InitialRetryDelay, c.MaxRetryDelay)
	}

	if c.RequestDelay < time.Second {
		warnings = append(warnings, fmt.Sprintf("request_delay %s is below 1s; consider a slower pace for shared public sites", c.RequestDelay))
	}
	if c.MaxConcurrency > 10 {
		warnings = append(warnings, fmt.Sprintf("max_concurrency %d is high for a politeness-limited scraper", c.MaxConcurrency))
	}
	if c.MaxRetries > 10 {
		warnings = append(warnings, fmt.Sprintf("max_retries %d will retry failing documents for a very long time", c.MaxRetries))
	}
	if c.BatchTimeout > 0 && c.BatchTimeout < c.HTTPClientSettings.Timeout {
		warnings = append(warnings, fmt.Sprintf("batch_timeout %s is shorter than the per-request timeout %s; whole batches may expire on one slow fetch",
			c.BatchTimeout, c.HTTPClientSettings.Timeout))
	}

	if len(c.Elasticsearch.Addresses) == 0 {
		warnings = append(warnings, "elasticsearch.addresses is empty; records will be written to disk only")
	} else {
		for _, addr := range c.Elasticsearch.Addresses {
			if err := checkBaseURL("elasticsearch.addresses", addr); err != nil {
				return nil, err
			}
		}
	}

	return warnings, nil
}

func checkBaseURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %s %q: %v", utils.ErrConfigValidation, field, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %s %q: scheme must be http or https", utils.ErrConfigValidation, field, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %s %q: missing host", utils.ErrConfigValidation, field, raw)
	}
	if strings.Contains(u.Host, " ") {
		return fmt.Errorf("%w: %s %q: invalid host", utils.ErrConfigValidation, field, raw)
	}
	return nil
}
