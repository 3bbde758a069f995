package fetcher

import (
	"testing"
	"time"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig invalid: %v", err)
	}
	if !cfg.DenyPrivateIPs {
		t.Error("DenyPrivateIPs must default to true")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"timeout too short", func(c *Config) { c.Timeout = 10 * time.Millisecond }},
		{"timeout too long", func(c *Config) { c.Timeout = time.Hour }},
		{"body too small", func(c *Config) { c.MaxBodySize = 10 }},
		{"body too large", func(c *Config) { c.MaxBodySize = 1 << 30 }},
		{"negative redirects", func(c *Config) { c.MaxRedirects = -1 }},
		{"too many redirects", func(c *Config) { c.MaxRedirects = 11 }},
		{"empty user agent", func(c *Config) { c.UserAgent = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PAGE_FETCH_TIMEOUT", "15s")
	t.Setenv("PAGE_FETCH_MAX_REDIRECTS", "3")
	t.Setenv("PAGE_FETCH_DENY_PRIVATE_IPS", "false")
	t.Setenv("PAGE_FETCH_USER_AGENT", "TestBot/2.0")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv() error = %v", err)
	}
	if cfg.Timeout != 15*time.Second || cfg.MaxRedirects != 3 || cfg.DenyPrivateIPs || cfg.UserAgent != "TestBot/2.0" {
		t.Errorf("unexpected config: %+v", cfg)
	}

	t.Setenv("PAGE_FETCH_MAX_REDIRECTS", "50")
	if _, err := LoadConfigFromEnv(); err == nil {
		t.Error("expected error for out-of-range redirects")
	}
}
