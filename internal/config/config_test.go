package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tonearm/internal/config"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing config file")
	}
	if cfg.Source.Path != "/tmp/shairport-sync-metadata" {
		t.Fatalf("unexpected default source path %q", cfg.Source.Path)
	}
	if cfg.Source.Mode != config.ModeContinuous {
		t.Fatalf("unexpected default mode %q", cfg.Source.Mode)
	}
	if cfg.Source.ChannelBuffer != 64 {
		t.Fatalf("unexpected default channel buffer %d", cfg.Source.ChannelBuffer)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[source]
path = "-"
mode = "ONCE"

[paths]
state_dir = "` + filepath.Join(dir, "state") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[nats]
url = "nats://127.0.0.1:4222"
subject_prefix = ".airplay.events."
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution exists=%v path=%q", exists, resolved)
	}
	if cfg.Source.Path != "-" {
		t.Fatalf("stdin path must not be expanded, got %q", cfg.Source.Path)
	}
	if cfg.Source.Mode != config.ModeOnce {
		t.Fatalf("mode not lowercased: %q", cfg.Source.Mode)
	}
	if cfg.NATS.SubjectPrefix != "airplay.events" {
		t.Fatalf("subject prefix not trimmed: %q", cfg.NATS.SubjectPrefix)
	}
	if got := cfg.SocketPath(); !strings.HasSuffix(got, "tonearmd.sock") {
		t.Fatalf("unexpected socket path %q", got)
	}
}

func TestValidateRejectsBadMode(t *testing.T) {
	cfg := config.Default()
	cfg.Source.Mode = "forever"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for bad mode")
	}
}

func TestValidateRejectsBackoffInversion(t *testing.T) {
	cfg := config.Default()
	cfg.Source.ReopenBackoffMS = 5000
	cfg.Source.MaxBackoffMS = 100
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for max backoff below initial backoff")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[source]") {
		t.Fatal("sample config missing [source] section")
	}
}
