// Package testsupport provides shared fixtures for package tests: a config
// builder seeded with per-test temp directories and frame/stream builders
// for synthesizing pipe input.
package testsupport

import (
	"path/filepath"
	"testing"

	"tonearm/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options. History,
// artwork, notifications, and the HTTP API start disabled so tests opt in
// to what they exercise.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Source.Path = filepath.Join(base, "metadata")
	cfgVal.Source.ReopenBackoffMS = 10
	cfgVal.Source.MaxBackoffMS = 50
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ArtworkDir = filepath.Join(base, "artwork")
	cfgVal.Paths.APIBind = ""
	cfgVal.History.Enabled = false
	cfgVal.Artwork.Enabled = false
	cfgVal.Notifications.NtfyTopic = ""
	cfgVal.NATS.URL = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSourcePath overrides the metadata source on the test config.
func WithSourcePath(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Source.Path = path
	}
}

// WithMode sets the source consumption mode.
func WithMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Source.Mode = mode
	}
}

// WithHistory toggles the SQLite play log.
func WithHistory(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = enabled
	}
}

// WithArtwork toggles cover export.
func WithArtwork(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Artwork.Enabled = enabled
	}
}

// WithAPIBind enables the HTTP API on the given address.
func WithAPIBind(bind string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIBind = bind
	}
}

// WithNtfyTopic points notifications at a topic URL (usually an httptest
// server).
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
		b.cfg.Notifications.TrackChanges = true
		b.cfg.Notifications.Playback = true
		b.cfg.Notifications.Errors = true
	}
}
