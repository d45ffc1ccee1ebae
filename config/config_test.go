package config

import (
	"testing"
	"time"
)

// routedActions are the rate-limited write actions the router registers.
// Each needs its own rule so no two routes silently share a budget.
var routedActions = []string{
	"upsert_rsvp",
	"remove_rsvp",
	"request_approval",
	"review_approval",
	"check_in",
	"check_out",
	"remove_attendee",
}

func TestDefaultRateLimits_CoverAllRoutedActions(t *testing.T) {
	rules := defaultRateLimits()

	for _, action := range routedActions {
		rule, ok := rules[action]
		if !ok {
			t.Errorf("no default rule for action %q", action)
			continue
		}
		if rule.Limit <= 0 || rule.Window <= 0 {
			t.Errorf("action %q has a degenerate rule: %+v", action, rule)
		}
	}
	if len(rules) != len(routedActions) {
		t.Errorf("got %d default rules, want %d", len(rules), len(routedActions))
	}
}

func TestLoad_RateLimitOverride(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("RATE_LIMIT_CHECK_OUT", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rule := cfg.RateLimits["check_out"]
	if rule.Limit != 5 {
		t.Errorf("check_out limit = %d, want 5 from env override", rule.Limit)
	}
	if rule.Window != time.Minute {
		t.Errorf("check_out window = %v, want the default window", rule.Window)
	}
}
