// Package preflight validates the environment before the daemon starts:
// the metadata source exists (creating the FIFO when asked to), is a
// readable pipe or file, and the state directories are writable. Failing
// fast here beats a reopen loop against a path that can never work.
package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"

	"tonearm/internal/config"
	"tonearm/internal/reader"
)

// CheckSource verifies the configured metadata source. When the path is
// missing and create_fifo is set, the FIFO is created with pipe-appropriate
// permissions.
func CheckSource(cfg *config.Config) error {
	path := cfg.Source.Path
	if path == reader.StdinPath {
		return nil
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		if !cfg.Source.CreateFifo {
			return fmt.Errorf("metadata source %s does not exist (set source.create_fifo or point shairport-sync at an existing pipe)", path)
		}
		if err := unix.Mkfifo(path, 0o644); err != nil {
			return fmt.Errorf("create fifo %s: %w", path, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat source %s: %w", path, err)
	}

	mode := info.Mode()
	switch {
	case mode&os.ModeNamedPipe != 0, mode.IsRegular():
	default:
		return fmt.Errorf("metadata source %s is neither a pipe nor a regular file", path)
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return fmt.Errorf("metadata source %s is not readable: %w", path, err)
	}
	return nil
}

// CheckDirectories verifies the state, log, and (when enabled) artwork
// directories exist and are writable.
func CheckDirectories(cfg *config.Config) error {
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	dirs := []string{cfg.Paths.StateDir, cfg.Paths.LogDir}
	if cfg.Artwork.Enabled {
		dirs = append(dirs, cfg.Paths.ArtworkDir)
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := unix.Access(dir, unix.W_OK); err != nil {
			return fmt.Errorf("directory %s is not writable: %w", dir, err)
		}
	}
	return nil
}

// Run performs all startup checks.
func Run(cfg *config.Config) error {
	if err := CheckDirectories(cfg); err != nil {
		return err
	}
	return CheckSource(cfg)
}
