// Package config holds the runtime configuration for the discovery engine.
// Defaults come first, then an optional YAML file overlays thresholds and
// endpoints, then environment variables overlay everything. Secrets are
// accepted from the environment only.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full engine configuration. Values are copied at construction
// time; nothing mutates a Config after Load returns.
type Config struct {
	CodeHost  CodeHost  `yaml:"code_host"`
	Browser   Browser   `yaml:"browser"`
	SearchAPI SearchAPI `yaml:"search_api"`
	Cache     Cache     `yaml:"cache"`
	Discovery Discovery `yaml:"discovery"`
}

// CodeHost configures the code-hosting platform REST client.
type CodeHost struct {
	BaseURL         string        `yaml:"base_url"`
	Token           string        `yaml:"-"`
	RequestInterval time.Duration `yaml:"request_interval"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
}

// Browser configures the automated browser used against the professional
// network.
type Browser struct {
	Headless        bool          `yaml:"headless"`
	RequestInterval time.Duration `yaml:"request_interval"`
	RequestJitter   time.Duration `yaml:"request_jitter"`
	SessionBudget   int           `yaml:"session_budget"`
	NavigateTimeout time.Duration `yaml:"navigate_timeout"`
	NetworkHost     string        `yaml:"network_host"`
}

// SearchAPI configures the search-engine fallback client.
type SearchAPI struct {
	APIKey          string        `yaml:"-"`
	Model           string        `yaml:"model"`
	BaseURL         string        `yaml:"base_url"`
	RequestInterval time.Duration `yaml:"request_interval"`
	MonthlyQuota    int           `yaml:"monthly_quota"`
}

// Cache configures the Redis-backed result cache.
type Cache struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"-"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// Discovery holds the orchestration thresholds.
type Discovery struct {
	MaxCodeHostResults          int           `yaml:"max_code_host_results"`
	MaxNetworkResults           int           `yaml:"max_network_results"`
	MinConfidence               float64       `yaml:"min_confidence"`
	NameSimilarityFloor         float64       `yaml:"name_similarity_floor"`
	ShortCircuitConfidence      float64       `yaml:"short_circuit_confidence"`
	DirectURLFallbackConfidence float64       `yaml:"direct_url_fallback_confidence"`
	ParallelPlatforms           bool          `yaml:"parallel_platforms"`
	LookupWorkers               int           `yaml:"lookup_workers"`
	MaxUsernameProbes           int           `yaml:"max_username_probes"`
	Timeout                     time.Duration `yaml:"timeout"`
}

// Default returns the engine defaults.
func Default() Config {
	return Config{
		CodeHost: CodeHost{
			BaseURL:         "https://api.github.com",
			RequestInterval: 1 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Browser: Browser{
			Headless:        true,
			RequestInterval: 3 * time.Second,
			RequestJitter:   1 * time.Second,
			SessionBudget:   50,
			NavigateTimeout: 30 * time.Second,
			NetworkHost:     "www.linkedin.com",
		},
		SearchAPI: SearchAPI{
			Model:           "gemini-2.0-flash",
			RequestInterval: 2 * time.Second,
			MonthlyQuota:    100,
		},
		Cache: Cache{
			Addr: "localhost:6379",
			TTL:  24 * time.Hour,
		},
		Discovery: Discovery{
			MaxCodeHostResults:          5,
			MaxNetworkResults:           3,
			MinConfidence:               0.3,
			NameSimilarityFloor:         0.6,
			ShortCircuitConfidence:      0.8,
			DirectURLFallbackConfidence: 0.9,
			LookupWorkers:               4,
			MaxUsernameProbes:           5,
			Timeout:                     2 * time.Minute,
		},
	}
}

// Load builds a Config from defaults, an optional YAML file and the
// environment, in that order.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.CodeHost.Token = strings.TrimSpace(os.Getenv("CODE_HOST_TOKEN"))
	if v := strings.TrimSpace(os.Getenv("CODE_HOST_BASE_URL")); v != "" {
		c.CodeHost.BaseURL = v
	}
	c.SearchAPI.APIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if v := strings.TrimSpace(os.Getenv("GEMINI_MODEL")); v != "" {
		c.SearchAPI.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("GEMINI_BASE_URL")); v != "" {
		c.SearchAPI.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_ADDR")); v != "" {
		c.Cache.Addr = v
	}
	c.Cache.Password = strings.TrimSpace(os.Getenv("REDIS_PASSWORD"))

	var err error
	if c.Cache.DB, err = envInt("REDIS_DB", c.Cache.DB); err != nil {
		return err
	}
	if c.Cache.TTL, err = envDuration("CACHE_TTL", c.Cache.TTL); err != nil {
		return err
	}
	if c.Discovery.LookupWorkers, err = envInt("LOOKUP_WORKERS", c.Discovery.LookupWorkers); err != nil {
		return err
	}
	if c.Discovery.Timeout, err = envDuration("DISCOVERY_TIMEOUT", c.Discovery.Timeout); err != nil {
		return err
	}
	if c.Discovery.ParallelPlatforms, err = envBool("PARALLEL_PLATFORMS", c.Discovery.ParallelPlatforms); err != nil {
		return err
	}
	if c.Discovery.MinConfidence, err = envFloat("MIN_CONFIDENCE", c.Discovery.MinConfidence); err != nil {
		return err
	}
	if c.SearchAPI.MonthlyQuota, err = envInt("SEARCH_MONTHLY_QUOTA", c.SearchAPI.MonthlyQuota); err != nil {
		return err
	}
	if c.Browser.Headless, err = envBool("BROWSER_HEADLESS", c.Browser.Headless); err != nil {
		return err
	}
	return nil
}

// Validate rejects configurations that would misbehave at runtime.
func (c Config) Validate() error {
	if strings.TrimSpace(c.CodeHost.BaseURL) == "" {
		return fmt.Errorf("code_host.base_url is required")
	}
	if c.Discovery.MinConfidence < 0 || c.Discovery.MinConfidence > 1 {
		return fmt.Errorf("discovery.min_confidence must be in [0,1], got %v", c.Discovery.MinConfidence)
	}
	if c.Discovery.NameSimilarityFloor < 0 || c.Discovery.NameSimilarityFloor > 1 {
		return fmt.Errorf("discovery.name_similarity_floor must be in [0,1], got %v", c.Discovery.NameSimilarityFloor)
	}
	if c.Discovery.MaxCodeHostResults <= 0 || c.Discovery.MaxNetworkResults <= 0 {
		return fmt.Errorf("discovery result limits must be positive")
	}
	if c.Browser.SessionBudget <= 0 {
		return fmt.Errorf("browser.session_budget must be positive, got %d", c.Browser.SessionBudget)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %v", c.Cache.TTL)
	}
	return nil
}

func envInt(varName string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return fallback, nil
	}
	out, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}

func envFloat(varName string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return fallback, nil
	}
	out, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}

func envDuration(varName string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return fallback, nil
	}
	out, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}

func envBool(varName string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return fallback, nil
	}
	out, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}
