package main

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]tableColumn{
		{title: "#", right: true},
		{title: "Title"},
		{title: "Stream"},
	}, [][]string{
		{"1", "So What", "Living Room"},
		{"2", "Freddie Freeloader"},
	})

	lines := strings.Split(out, "\n")
	if len(lines) < 5 {
		t.Fatalf("table has %d lines:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "So What") || !strings.Contains(out, "Freddie Freeloader") {
		t.Fatalf("table missing rows:\n%s", out)
	}
	width := utf8.RuneCountInString(lines[0])
	for _, line := range lines[1:] {
		if utf8.RuneCountInString(line) != width {
			t.Fatalf("ragged table output:\n%s", out)
		}
	}
}

func TestRenderTableRightAligns(t *testing.T) {
	out := renderTable([]tableColumn{
		{title: "#", right: true},
		{title: "Title"},
	}, [][]string{
		{"7", "So What"},
		{"1234", "All Blues"},
	})

	var short, long string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "So What") {
			short = line
		}
		if strings.Contains(line, "All Blues") {
			long = line
		}
	}
	if short == "" || long == "" {
		t.Fatalf("rows missing from table:\n%s", out)
	}
	if strings.Index(short, "7")+1 != strings.Index(long, "1234")+len("1234") {
		t.Fatalf("numeric column not right aligned:\n%s", out)
	}
}

func TestRenderTableEmptyColumns(t *testing.T) {
	if out := renderTable(nil, nil); out != "" {
		t.Fatalf("renderTable(nil) = %q, want empty", out)
	}
}

func TestWriteJSONIndents(t *testing.T) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, map[string]string{"title": "So What"}); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}
	want := "{\n  \"title\": \"So What\"\n}\n"
	if buf.String() != want {
		t.Fatalf("writeJSON output = %q, want %q", buf.String(), want)
	}
}
