package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "analytics.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoaderReadsFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
analytics:
  fee_percent: 5.0
  currency: eur
  window_days: 90
  ad_spend:
    "2024-01": 1500.50
`)
	l, err := NewLoader(path)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	cfg := l.Config()
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.Analytics.FeePercent != 5.0 || cfg.Analytics.Currency != "eur" {
		t.Errorf("analytics = %+v", cfg.Analytics)
	}
	if cfg.Analytics.WindowDays != 90 {
		t.Errorf("window_days = %d, want 90", cfg.Analytics.WindowDays)
	}
	if cfg.Analytics.AdSpend["2024-01"] != 1500.50 {
		t.Errorf("ad_spend = %v", cfg.Analytics.AdSpend)
	}
	// Unset fields still get defaults.
	if cfg.Server.MaxBodyMB != 64 {
		t.Errorf("max_body_mb = %d, want default 64", cfg.Server.MaxBodyMB)
	}
	if cfg.Analytics.Bands.SubscriptionMin != 2.00 {
		t.Errorf("bands = %+v, want defaults", cfg.Analytics.Bands)
	}
}

func TestLoaderMissingFile(t *testing.T) {
	if _, err := NewLoader(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoaderBadYAML(t *testing.T) {
	path := writeConfig(t, "analytics: [not a map")
	if _, err := NewLoader(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoaderReload(t *testing.T) {
	path := writeConfig(t, "analytics:\n  fee_percent: 5.0\n")
	l, err := NewLoader(path)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	var seen *Config
	l.OnChange(func(c *Config) { seen = c })

	if err := os.WriteFile(path, []byte("analytics:\n  fee_percent: 3.25\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	cfg, err := l.Reload()
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if cfg.Analytics.FeePercent != 3.25 {
		t.Errorf("fee after reload = %g, want 3.25", cfg.Analytics.FeePercent)
	}
	if l.Config().Analytics.FeePercent != 3.25 {
		t.Errorf("Config() still serves the old fee")
	}
	if seen == nil || seen.Analytics.FeePercent != 3.25 {
		t.Errorf("OnChange callback not invoked with the new config")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Analytics.FeePercent != 7.5 || cfg.Analytics.Currency != "usd" {
		t.Errorf("analytics defaults = %+v", cfg.Analytics)
	}
	b := cfg.Analytics.Bands
	if b.TrialMin != 0.90 || b.TrialMax != 1.10 || b.SubscriptionMin != 2.00 {
		t.Errorf("band defaults = %+v", b)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"fee too high", func(c *Config) { c.Analytics.FeePercent = 100 }, "fee_percent"},
		{"negative fee", func(c *Config) { c.Analytics.FeePercent = -1 }, "fee_percent"},
		{"missing currency", func(c *Config) { c.Analytics.Currency = "" }, "currency is required"},
		{"negative window", func(c *Config) { c.Analytics.WindowDays = -7 }, "window_days"},
		{"inverted trial band", func(c *Config) { c.Analytics.Bands.TrialMax = 0.50 }, "trial_max"},
		{"subscription below trial", func(c *Config) { c.Analytics.Bands.SubscriptionMin = 1.00 }, "subscription_min"},
		{"bad ad-spend key", func(c *Config) { c.Analytics.AdSpend = map[string]float64{"2024-13": 10} }, "cohort month"},
		{"negative ad spend", func(c *Config) { c.Analytics.AdSpend = map[string]float64{"2024-01": -5} }, "spend must not be negative"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := Validate(cfg)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("err = %v, want mention of %q", err, tc.wantErr)
			}
		})
	}
}

func TestValidateAggregatesErrors(t *testing.T) {
	cfg := Default()
	cfg.Analytics.FeePercent = -1
	cfg.Analytics.Currency = ""
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"fee_percent", "currency"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}
