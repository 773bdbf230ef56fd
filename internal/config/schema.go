package config

import (
	"github.com/shopspring/decimal"

	"github.com/aaronyarm/moveclub-cohort-ultra/internal/txn"
)

// Config is the top-level YAML structure.
type Config struct {
	Server    ServerConf    `yaml:"server"`
	Analytics AnalyticsConf `yaml:"analytics"`
}

// ServerConf holds HTTP tunables.
type ServerConf struct {
	Addr            string `yaml:"addr"`
	ReadTimeoutSec  int    `yaml:"read_timeout_sec"`
	WriteTimeoutSec int    `yaml:"write_timeout_sec"`
	IdleTimeoutSec  int    `yaml:"idle_timeout_sec"`
	MaxBodyMB       int    `yaml:"max_body_mb"`
}

// AnalyticsConf holds the engine's configuration: processor fee rate,
// accepted currency, amount bands, the optional trailing window, and
// the ad-spend-by-cohort-month map.
type AnalyticsConf struct {
	FeePercent float64            `yaml:"fee_percent"`
	Currency   string             `yaml:"currency"`
	Bands      BandsConf          `yaml:"bands"`
	WindowDays int                `yaml:"window_days"` // 0 = whole dataset
	AdSpend    map[string]float64 `yaml:"ad_spend"`    // "YYYY-MM" → spend
}

// BandsConf mirrors txn.Bands in plain floats for YAML.
type BandsConf struct {
	TrialMin        float64 `yaml:"trial_min"`
	TrialMax        float64 `yaml:"trial_max"`
	SubscriptionMin float64 `yaml:"subscription_min"`
}

// TxnBands converts the YAML band bounds to the decimal form the engine
// uses.
func (a AnalyticsConf) TxnBands() txn.Bands {
	return txn.Bands{
		TrialMin:        decimal.NewFromFloat(a.Bands.TrialMin),
		TrialMax:        decimal.NewFromFloat(a.Bands.TrialMax),
		SubscriptionMin: decimal.NewFromFloat(a.Bands.SubscriptionMin),
	}
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeoutSec == 0 {
		cfg.Server.ReadTimeoutSec = 10
	}
	if cfg.Server.WriteTimeoutSec == 0 {
		cfg.Server.WriteTimeoutSec = 30
	}
	if cfg.Server.IdleTimeoutSec == 0 {
		cfg.Server.IdleTimeoutSec = 60
	}
	if cfg.Server.MaxBodyMB == 0 {
		cfg.Server.MaxBodyMB = 64
	}
	if cfg.Analytics.FeePercent == 0 {
		cfg.Analytics.FeePercent = 7.5
	}
	if cfg.Analytics.Currency == "" {
		cfg.Analytics.Currency = "usd"
	}
	if cfg.Analytics.Bands == (BandsConf{}) {
		cfg.Analytics.Bands = BandsConf{TrialMin: 0.90, TrialMax: 1.10, SubscriptionMin: 2.00}
	}
	if cfg.Analytics.AdSpend == nil {
		cfg.Analytics.AdSpend = map[string]float64{}
	}
}
