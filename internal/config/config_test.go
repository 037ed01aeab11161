package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/seekwell/profile-discovery/internal/config"
)

func TestDefaults(t *testing.T) {
	cfg := config.Default()
	if cfg.Discovery.MaxCodeHostResults != 5 || cfg.Discovery.MaxNetworkResults != 3 {
		t.Fatalf("unexpected result limits: %+v", cfg.Discovery)
	}
	if cfg.Discovery.MinConfidence != 0.3 {
		t.Fatalf("min confidence default=%v want 0.3", cfg.Discovery.MinConfidence)
	}
	if cfg.Cache.TTL != 24*time.Hour {
		t.Fatalf("cache ttl default=%v want 24h", cfg.Cache.TTL)
	}
	if cfg.Browser.SessionBudget != 50 {
		t.Fatalf("session budget default=%d want 50", cfg.Browser.SessionBudget)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "discovery.yaml")
	body := strings.Join([]string{
		"discovery:",
		"  min_confidence: 0.5",
		"  max_code_host_results: 2",
		"cache:",
		"  ttl: 1h",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Discovery.MinConfidence != 0.5 {
		t.Fatalf("min confidence=%v want 0.5", cfg.Discovery.MinConfidence)
	}
	if cfg.Discovery.MaxCodeHostResults != 2 {
		t.Fatalf("max code host results=%d want 2", cfg.Discovery.MaxCodeHostResults)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Fatalf("cache ttl=%v want 1h", cfg.Cache.TTL)
	}
	// Untouched sections keep their defaults.
	if cfg.Discovery.MaxNetworkResults != 3 {
		t.Fatalf("max network results=%d want default 3", cfg.Discovery.MaxNetworkResults)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("MIN_CONFIDENCE", "0.7")
	t.Setenv("CODE_HOST_TOKEN", "tok-123")
	t.Setenv("CACHE_TTL", "30m")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Discovery.MinConfidence != 0.7 {
		t.Fatalf("min confidence=%v want 0.7", cfg.Discovery.MinConfidence)
	}
	if cfg.CodeHost.Token != "tok-123" {
		t.Fatalf("token=%q", cfg.CodeHost.Token)
	}
	if cfg.Cache.TTL != 30*time.Minute {
		t.Fatalf("cache ttl=%v want 30m", cfg.Cache.TTL)
	}
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("LOOKUP_WORKERS", "many")
	if _, err := config.Load(""); err == nil {
		t.Fatal("expected error for non-numeric LOOKUP_WORKERS")
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	cfg := config.Default()
	cfg.Discovery.MinConfidence = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for min_confidence > 1")
	}

	cfg = config.Default()
	cfg.Browser.SessionBudget = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero session budget")
	}
}
