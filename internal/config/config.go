package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Mode values accepted by source.mode.
const (
	ModeContinuous = "continuous"
	ModeOnce       = "once"
)

// Source configures the metadata stream input.
type Source struct {
	Path            string `toml:"path"`
	Mode            string `toml:"mode"`
	CreateFifo      bool   `toml:"create_fifo"`
	MaxFrameBytes   int    `toml:"max_frame_bytes"`
	ChannelBuffer   int    `toml:"channel_buffer"`
	ReopenBackoffMS int    `toml:"reopen_backoff_ms"`
	MaxBackoffMS    int    `toml:"max_backoff_ms"`
}

// Paths contains directory and bind address configuration.
type Paths struct {
	StateDir   string `toml:"state_dir"`
	LogDir     string `toml:"log_dir"`
	ArtworkDir string `toml:"artwork_dir"`
	APIBind    string `toml:"api_bind"`
}

// History configures the SQLite play log.
type History struct {
	Enabled  bool `toml:"enabled"`
	KeepDays int  `toml:"keep_days"`
}

// Artwork configures cover-art export.
type Artwork struct {
	Enabled  bool `toml:"enabled"`
	MaxFiles int  `toml:"max_files"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	TrackChanges   bool   `toml:"track_changes"`
	Playback       bool   `toml:"playback"`
	Errors         bool   `toml:"errors"`
}

// NATS configures the optional event republisher.
type NATS struct {
	URL           string `toml:"url"`
	SubjectPrefix string `toml:"subject_prefix"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for tonearm.
//
// Configuration sections by subsystem:
//   - Source: metadata pipe path, consumption mode, and stream tuning
//   - Paths: state/log/artwork directories and the HTTP API bind address
//   - History: SQLite play log retention
//   - Artwork: cover art export limits
//   - Notifications: ntfy push notification settings
//   - NATS: optional event republishing
//   - Logging: log format and level
type Config struct {
	Source        Source        `toml:"source"`
	Paths         Paths         `toml:"paths"`
	History       History       `toml:"history"`
	Artwork       Artwork       `toml:"artwork"`
	Notifications Notifications `toml:"notifications"`
	NATS          NATS          `toml:"nats"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tonearm/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tonearm.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.StateDir, c.Paths.LogDir}
	if c.Artwork.Enabled {
		dirs = append(dirs, c.Paths.ArtworkDir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SocketPath returns the daemon IPC socket location.
func (c *Config) SocketPath() string {
	return filepath.Join(c.Paths.StateDir, "tonearmd.sock")
}

// HistoryDBPath returns the SQLite play log location.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockPath returns the single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "tonearmd.lock")
}

// Continuous reports whether the source mode keeps the stream open and
// reopens it when the writer disconnects.
func (c *Config) Continuous() bool {
	return c.Source.Mode == ModeContinuous
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
