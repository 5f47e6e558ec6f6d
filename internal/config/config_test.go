package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.API.BaseURL != "https://generativelanguage.googleapis.com/v1beta/models" {
		t.Errorf("base url = %q", cfg.API.BaseURL)
	}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", cfg.Timeout())
	}
	if cfg.Fallback.DefaultBudgetHours != 8 {
		t.Errorf("default budget = %d, want 8", cfg.Fallback.DefaultBudgetHours)
	}
}

func TestDefaultModelOrder(t *testing.T) {
	// The list order encodes a reliability preference; nothing may re-sort it.
	want := []string{
		"gemini-2.0-flash",
		"gemini-2.0-flash-001",
		"gemini-2.0-flash-lite",
		"gemini-2.0-flash-lite-001",
		"gemini-pro-latest",
		"gemini-2.5-flash",
		"gemini-2.5-pro",
	}
	cfg := Default()
	if len(cfg.Models) != len(want) {
		t.Fatalf("models = %v", cfg.Models)
	}
	for i, m := range want {
		if cfg.Models[i] != m {
			t.Errorf("models[%d] = %q, want %q", i, cfg.Models[i], m)
		}
	}
}

func TestFromYAMLOverridesKeepDefaults(t *testing.T) {
	cfg, err := FromYAML([]byte("api:\n  base_url: http://localhost:9999\n  timeout_seconds: 5\n"))
	if err != nil {
		t.Fatalf("from yaml: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:9999" {
		t.Errorf("base url = %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSeconds != 5 {
		t.Errorf("timeout = %d", cfg.API.TimeoutSeconds)
	}
	if len(cfg.Models) == 0 {
		t.Error("models default lost on override")
	}
	if cfg.Generation.Temperature != 0.7 {
		t.Errorf("temperature default lost: %v", cfg.Generation.Temperature)
	}
}

func TestFromYAMLRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"bad yaml", "api: [", "invalid config yaml"},
		{"empty models", "models: []\n", "config.models"},
		{"zero timeout", "api:\n  timeout_seconds: 0\n", "timeout_seconds"},
		{"bad temperature", "generation:\n  temperature: 3.5\n", "temperature"},
		{"bad budget", "fallback:\n  default_budget_hours: 0\n", "default_budget_hours"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromYAML([]byte(tc.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error = %v, want mention of %s", err, tc.want)
			}
		})
	}
}
