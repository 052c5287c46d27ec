package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateArtwork(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSource() error {
	if strings.TrimSpace(c.Source.Path) == "" {
		return errors.New("source.path must be set")
	}
	switch c.Source.Mode {
	case ModeContinuous, ModeOnce:
	default:
		return fmt.Errorf("source.mode must be %q or %q, got %q", ModeContinuous, ModeOnce, c.Source.Mode)
	}
	if c.Source.MaxFrameBytes <= 0 {
		return errors.New("source.max_frame_bytes must be positive")
	}
	if c.Source.ChannelBuffer <= 0 {
		return errors.New("source.channel_buffer must be positive")
	}
	if c.Source.MaxBackoffMS < c.Source.ReopenBackoffMS {
		return errors.New("source.max_backoff_ms must be >= source.reopen_backoff_ms")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	if c.Artwork.Enabled && strings.TrimSpace(c.Paths.ArtworkDir) == "" {
		return errors.New("paths.artwork_dir must be set when artwork.enabled is true")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateArtwork() error {
	if c.Artwork.Enabled && c.Artwork.MaxFiles <= 0 {
		return errors.New("artwork.max_files must be positive when artwork.enabled is true")
	}
	return nil
}
