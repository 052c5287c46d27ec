package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tonearm/internal/config"
	"tonearm/internal/logging"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Format = "json"
	cfg.Logging.Level = "debug"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Info("hello", logging.String("k", "v"))

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "tonearm.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, `"msg":"hello"`) {
		t.Fatalf("log line missing message: %s", line)
	}
	if !strings.Contains(line, `"k":"v"`) {
		t.Fatalf("log line missing attribute: %s", line)
	}
}

func TestComponentLoggerFallsBackToNop(t *testing.T) {
	logger := logging.NewComponentLogger(nil, "reader")
	// Must not panic and must swallow output.
	logger.Info("dropped")
}
