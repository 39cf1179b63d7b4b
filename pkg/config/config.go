package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// MirrorRule maps a primary-site URL shape to its fallback-mirror equivalent.
// The mapping is an explicit configuration table; nothing is inferred from
// URL string patterns at runtime.
type MirrorRule struct {
	Host         string `yaml:"host"`                    // Primary hostname this rule applies to
	MirrorHost   string `yaml:"mirror_host"`             // Replacement hostname
	PathPrefix   string `yaml:"path_prefix,omitempty"`   // Optional: only rewrite paths under this prefix
	MirrorPrefix string `yaml:"mirror_prefix,omitempty"` // Optional: replacement for PathPrefix
}

// SiteConfig describes the legal-records site topology: the primary site, the
// fallback mirror, and the well-known listing entry points.
type SiteConfig struct {
	PrimaryBaseURL  string       `yaml:"primary_base_url"`
	FallbackBaseURL string       `yaml:"fallback_base_url,omitempty"`
	JudgmentsPath   string       `yaml:"judgments_path,omitempty"`
	LegislationPath string       `yaml:"legislation_path,omitempty"`
	FeedPath        string       `yaml:"feed_path,omitempty"`
	MirrorRules     []MirrorRule `yaml:"mirror_rules,omitempty"`
}

// ElasticsearchConfig holds the optional search-index sink settings. An empty
// address list disables indexing entirely.
type ElasticsearchConfig struct {
	Addresses []string `yaml:"addresses,omitempty"`
	Index     string   `yaml:"index,omitempty"`
	Username  string   `yaml:"username,omitempty"`
	Password  string   `yaml:"password,omitempty"`
}

// HTTPClientConfig holds settings for the shared HTTP client
type HTTPClientConfig struct {
	Timeout               time.Duration `yaml:"timeout,omitempty"`                 // Overall request timeout
	MaxIdleConns          int           `yaml:"max_idle_conns,omitempty"`          // Max total idle connections
	MaxIdleConnsPerHost   int           `yaml:"max_idle_conns_per_host,omitempty"` // Max idle connections per host
	IdleConnTimeout       time.Duration `yaml:"idle_conn_timeout,omitempty"`
	TLSHandshakeTimeout   time.Duration `yaml:"tls_handshake_timeout,omitempty"`
	ExpectContinueTimeout time.Duration `yaml:"expect_continue_timeout,omitempty"`
	DialerTimeout         time.Duration `yaml:"dialer_timeout,omitempty"`
	DialerKeepAlive       time.Duration `yaml:"dialer_keep_alive,omitempty"`
	ForceAttemptHTTP2     *bool         `yaml:"force_attempt_http2,omitempty"` // Pointer to detect explicit false
}

// AppConfig holds the global application configuration
type AppConfig struct {
	UserAgents         []string            `yaml:"user_agents,omitempty"` // Identification header pool, rotated per request
	RequestDelay       time.Duration       `yaml:"request_delay,omitempty"`
	MaxRetries         int                 `yaml:"max_retries,omitempty"`
	InitialRetryDelay  time.Duration       `yaml:"initial_retry_delay,omitempty"`
	MaxRetryDelay      time.Duration       `yaml:"max_retry_delay,omitempty"`
	MaxConcurrency     int                 `yaml:"max_concurrency,omitempty"`
	BatchTimeout       time.Duration       `yaml:"batch_timeout,omitempty"` // 0 = no batch-level timeout
	MaxListingPages    int                 `yaml:"max_listing_pages,omitempty"`
	DBGCInterval       time.Duration       `yaml:"db_gc_interval,omitempty"` // State store value-log GC interval
	MaxPageSizeBytes   int64               `yaml:"max_page_size_bytes,omitempty"`
	OutputDir          string              `yaml:"output_dir,omitempty"`
	StateDir           string              `yaml:"state_dir,omitempty"`
	ArchiveJudgments   bool                `yaml:"archive_judgments,omitempty"` // Save per-case judgment markdown alongside JSON
	Site               SiteConfig          `yaml:"site"`
	Elasticsearch      ElasticsearchConfig `yaml:"elasticsearch,omitempty"`
	HTTPClientSettings HTTPClientConfig    `yaml:"http_client_settings,omitempty"`
}

// Defaults applied by ApplyDefaults for zero-valued fields.
const (
	DefaultRequestDelay      = 3 * time.Second
	DefaultMaxRetries        = 5
	DefaultInitialRetryDelay = 1 * time.Second
	DefaultMaxRetryDelay     = 60 * time.Second
	DefaultMaxConcurrency    = 3
	DefaultMaxListingPages   = 10
	DefaultDBGCInterval      = 10 * time.Minute
	DefaultMaxPageSizeBytes  = 10 << 20
	DefaultOutputDir         = "output"
	DefaultStateDir          = "state"
)

// DefaultUserAgents is used when the config supplies no pool of its own.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
}

// Load reads and parses the config file at path.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills zero-valued fields with their documented defaults.
func (c *AppConfig) ApplyDefaults() {
	if len(c.UserAgents) == 0 {
		c.UserAgents = DefaultUserAgents
	}
	if c.RequestDelay <= 0 {
		c.RequestDelay = DefaultRequestDelay
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.InitialRetryDelay <= 0 {
		c.InitialRetryDelay = DefaultInitialRetryDelay
	}
	if c.MaxRetryDelay <= 0 {
		c.MaxRetryDelay = DefaultMaxRetryDelay
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = DefaultMaxConcurrency
	}
	if c.MaxListingPages <= 0 {
		c.MaxListingPages = DefaultMaxListingPages
	}
	if c.DBGCInterval <= 0 {
		c.DBGCInterval = DefaultDBGCInterval
	}
	if c.MaxPageSizeBytes <= 0 {
		c.MaxPageSizeBytes = DefaultMaxPageSizeBytes
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.StateDir == "" {
		c.StateDir = DefaultStateDir
	}
	if c.Site.JudgmentsPath == "" {
		c.Site.JudgmentsPath = "/judgments/"
	}
	if c.Site.LegislationPath == "" {
		c.Site.LegislationPath = "/legislation/"
	}
	if c.Site.FeedPath == "" {
		c.Site.FeedPath = "/feeds/all.xml"
	}
	if c.Elasticsearch.Index == "" {
		c.Elasticsearch.Index = "kenya_law"
	}
	if c.HTTPClientSettings.Timeout <= 0 {
		c.HTTPClientSettings.Timeout = 180 * time.Second
	}
}
