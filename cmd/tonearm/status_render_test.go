package main

import (
	"strings"
	"testing"
)

func TestRenderStatusLine(t *testing.T) {
	line := renderStatusLine("Running", statusOK, "yes", false)
	if !strings.Contains(line, "Running:") || !strings.Contains(line, "[OK] yes") {
		t.Fatalf("unexpected line: %q", line)
	}
	if strings.Contains(line, ansiGreen) {
		t.Fatalf("uncolorized line carries ANSI codes: %q", line)
	}

	colored := renderStatusLine("Running", statusError, "no", true)
	if !strings.HasPrefix(colored, ansiRed) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("colorized line missing ANSI wrapping: %q", colored)
	}
}

func TestRenderSectionHeader(t *testing.T) {
	lines := renderSectionHeader("Source", false)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0] != "== Source ==" {
		t.Fatalf("header = %q", lines[0])
	}
	if len(lines[1]) != len(lines[0]) {
		t.Fatalf("rule length %d != header length %d", len(lines[1]), len(lines[0]))
	}
}
