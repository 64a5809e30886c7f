package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsToLocalGateway(t *testing.T) {
	path := writeConfig(t, "server:\n  port: \"9000\"\nquiz:\n  questionSeconds: 20\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Gateway.Mode != GatewayLocal {
		t.Fatalf("expected local gateway, got %q", cfg.Gateway.Mode)
	}
	if cfg.Server.Port != "9000" || cfg.Quiz.QuestionSeconds != 20 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadRemoteGateway(t *testing.T) {
	path := writeConfig(t, "gateway:\n  mode: remote\n  baseURL: https://quiz.example.com\n  token: abc\n  timeout: 5s\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Gateway.BaseURL != "https://quiz.example.com" || cfg.Gateway.Token != "abc" {
		t.Fatalf("unexpected gateway %+v", cfg.Gateway)
	}
	if got := TTLDuration(cfg.Gateway.Timeout, time.Second); got != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %s", got)
	}
}

func TestLoadRejectsBadGateway(t *testing.T) {
	cases := map[string]string{
		"remote without url": "gateway:\n  mode: remote\n",
		"unknown mode":       "gateway:\n  mode: carrier-pigeon\n",
		"negative seconds":   "quiz:\n  questionSeconds: -1\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for empty, got %s", got)
	}
	if got := TTLDuration("soon", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for garbage, got %s", got)
	}
	if got := TTLDuration("90s", time.Minute); got != 90*time.Second {
		t.Fatalf("expected 90s, got %s", got)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
