package config

import (
	"fmt"
	"regexp"
	"strings"
)

var cohortKeyPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Validate checks the config for:
//   - Fee rate and band bounds within sensible ranges
//   - Band ordering (trial band below the subscription threshold)
//   - Ad-spend keys shaped like "YYYY-MM" with non-negative values
func Validate(cfg *Config) error {
	var errs []string

	a := cfg.Analytics
	if a.FeePercent < 0 || a.FeePercent >= 100 {
		errs = append(errs, fmt.Sprintf("analytics.fee_percent must be in [0, 100), got %g", a.FeePercent))
	}
	if a.Currency == "" {
		errs = append(errs, "analytics.currency is required")
	}
	if a.WindowDays < 0 {
		errs = append(errs, fmt.Sprintf("analytics.window_days must not be negative, got %d", a.WindowDays))
	}

	b := a.Bands
	if b.TrialMin < 0 {
		errs = append(errs, fmt.Sprintf("analytics.bands.trial_min must not be negative, got %g", b.TrialMin))
	}
	if b.TrialMax < b.TrialMin {
		errs = append(errs, fmt.Sprintf("analytics.bands: trial_max %g below trial_min %g", b.TrialMax, b.TrialMin))
	}
	if b.SubscriptionMin <= b.TrialMax {
		errs = append(errs, fmt.Sprintf("analytics.bands: subscription_min %g must exceed trial_max %g", b.SubscriptionMin, b.TrialMax))
	}

	for key, spend := range a.AdSpend {
		if !cohortKeyPattern.MatchString(key) {
			errs = append(errs, fmt.Sprintf("analytics.ad_spend: key %q is not a YYYY-MM cohort month", key))
		}
		if spend < 0 {
			errs = append(errs, fmt.Sprintf("analytics.ad_spend[%s]: spend must not be negative, got %g", key, spend))
		}
	}

	if cfg.Server.MaxBodyMB < 0 {
		errs = append(errs, fmt.Sprintf("server.max_body_mb must not be negative, got %d", cfg.Server.MaxBodyMB))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
