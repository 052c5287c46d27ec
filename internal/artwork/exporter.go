package artwork

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tonearm/internal/logging"
	"tonearm/internal/metadata"
)

// CurrentLink is the symlink name kept pointing at the newest cover.
const CurrentLink = "current"

// ErrEmptyPayload is returned for zero-length picture data, which
// shairport-sync sends when a track has no cover.
var ErrEmptyPayload = errors.New("empty picture payload")

// Exporter writes covers into one directory.
type Exporter struct {
	dir      string
	maxFiles int
	logger   *slog.Logger
}

// New builds an exporter rooted at dir. maxFiles of zero or less disables
// pruning. A nil logger is replaced with a nop.
func New(dir string, maxFiles int, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Exporter{dir: dir, maxFiles: maxFiles, logger: logger}
}

// Dir reports the export directory.
func (e *Exporter) Dir() string {
	return e.dir
}

// Save writes data to the directory, returning the file path. A cover whose
// hash is already on disk is not rewritten, but the current symlink still
// moves to it. Unknown image formats get a .img extension rather than being
// rejected.
func (e *Exporter) Save(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyPayload
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create artwork dir: %w", err)
	}

	sum := sha256.Sum256(data)
	ext := metadata.SniffImage(data)
	if ext == "" {
		ext = "img"
	}
	name := hex.EncodeToString(sum[:8]) + "." + ext
	path := filepath.Join(e.dir, name)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, data, 0o644); err != nil {
			return "", fmt.Errorf("write artwork: %w", err)
		}
		if err := os.Rename(tmp, path); err != nil {
			return "", fmt.Errorf("place artwork: %w", err)
		}
		e.logger.Debug("artwork saved",
			logging.String(logging.FieldComponent, "artwork"),
			logging.String("file", name),
			logging.Int("bytes", len(data)))
	}

	if err := e.relink(name); err != nil {
		return path, err
	}
	if err := e.prune(); err != nil {
		e.logger.Warn("artwork prune failed", logging.Error(err))
	}
	return path, nil
}

// Current resolves the current symlink to a cover path, or "" when no cover
// has been exported yet.
func (e *Exporter) Current() string {
	target, err := os.Readlink(filepath.Join(e.dir, CurrentLink))
	if err != nil {
		return ""
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(e.dir, target)
	}
	if _, err := os.Stat(target); err != nil {
		return ""
	}
	return target
}

// relink atomically repoints the current symlink at name.
func (e *Exporter) relink(name string) error {
	link := filepath.Join(e.dir, CurrentLink)
	tmp := link + ".tmp"
	_ = os.Remove(tmp)
	if err := os.Symlink(name, tmp); err != nil {
		return fmt.Errorf("stage current link: %w", err)
	}
	if err := os.Rename(tmp, link); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("update current link: %w", err)
	}
	return nil
}

// prune drops the oldest covers once the cap is exceeded, never touching
// the one the current symlink points at.
func (e *Exporter) prune() error {
	if e.maxFiles <= 0 {
		return nil
	}
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		return fmt.Errorf("list artwork dir: %w", err)
	}
	current := filepath.Base(e.Current())

	type cover struct {
		name string
		mod  int64
	}
	var covers []cover
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || strings.HasSuffix(name, ".tmp") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		covers = append(covers, cover{name: name, mod: info.ModTime().UnixNano()})
	}
	if len(covers) <= e.maxFiles {
		return nil
	}
	sort.Slice(covers, func(i, j int) bool { return covers[i].mod < covers[j].mod })

	excess := len(covers) - e.maxFiles
	for _, c := range covers {
		if excess == 0 {
			break
		}
		if c.name == current {
			continue
		}
		if err := os.Remove(filepath.Join(e.dir, c.name)); err != nil {
			return fmt.Errorf("prune %s: %w", c.name, err)
		}
		excess--
	}
	return nil
}
