package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeSource(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeNATS()
	c.normalizeLogging()
	if c.Artwork.MaxFiles <= 0 {
		c.Artwork.MaxFiles = defaultArtworkMaxFiles
	}
	if c.History.KeepDays < 0 {
		c.History.KeepDays = 0
	}
	return nil
}

func (c *Config) normalizeSource() error {
	var err error
	c.Source.Path = strings.TrimSpace(c.Source.Path)
	if c.Source.Path == "" {
		c.Source.Path = defaultSourcePath
	}
	// "-" means stdin and must not be path-expanded.
	if c.Source.Path != "-" {
		if c.Source.Path, err = expandPath(c.Source.Path); err != nil {
			return fmt.Errorf("source.path: %w", err)
		}
	}
	c.Source.Mode = strings.ToLower(strings.TrimSpace(c.Source.Mode))
	if c.Source.Mode == "" {
		c.Source.Mode = ModeContinuous
	}
	if c.Source.MaxFrameBytes <= 0 {
		c.Source.MaxFrameBytes = defaultMaxFrameBytes
	}
	if c.Source.ChannelBuffer <= 0 {
		c.Source.ChannelBuffer = defaultChannelBuffer
	}
	if c.Source.ReopenBackoffMS <= 0 {
		c.Source.ReopenBackoffMS = defaultReopenBackoffMS
	}
	if c.Source.MaxBackoffMS <= 0 {
		c.Source.MaxBackoffMS = defaultMaxBackoffMS
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ArtworkDir) == "" {
		c.Paths.ArtworkDir = defaultArtworkDir
	}
	if c.Paths.ArtworkDir, err = expandPath(c.Paths.ArtworkDir); err != nil {
		return fmt.Errorf("paths.artwork_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("TONEARM_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = 10
	}
}

func (c *Config) normalizeNATS() {
	c.NATS.URL = strings.TrimSpace(c.NATS.URL)
	if c.NATS.URL == "" {
		if value, ok := os.LookupEnv("TONEARM_NATS_URL"); ok {
			c.NATS.URL = strings.TrimSpace(value)
		}
	}
	c.NATS.SubjectPrefix = strings.Trim(strings.TrimSpace(c.NATS.SubjectPrefix), ".")
	if c.NATS.SubjectPrefix == "" {
		c.NATS.SubjectPrefix = defaultNATSPrefix
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
