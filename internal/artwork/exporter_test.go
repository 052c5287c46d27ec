package artwork_test

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"tonearm/internal/artwork"
)

func jpegPayload(fill byte, size int) []byte {
	data := make([]byte, size)
	copy(data, []byte{0xFF, 0xD8, 0xFF, 0xE0})
	for i := 4; i < size; i++ {
		data[i] = fill
	}
	return data
}

var pngPayload = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, []byte("body")...)

func TestSaveNamesByContent(t *testing.T) {
	dir := t.TempDir()
	exp := artwork.New(dir, 0, nil)

	first, err := exp.Save(jpegPayload(1, 64))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasSuffix(first, ".jpeg") {
		t.Fatalf("jpeg payload saved as %s", first)
	}

	again, err := exp.Save(jpegPayload(1, 64))
	if err != nil {
		t.Fatalf("Save duplicate: %v", err)
	}
	if again != first {
		t.Fatalf("duplicate payload landed at %s, want %s", again, first)
	}

	png, err := exp.Save(pngPayload)
	if err != nil {
		t.Fatalf("Save png: %v", err)
	}
	if !strings.HasSuffix(png, ".png") {
		t.Fatalf("png payload saved as %s", png)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var files int
	for _, e := range entries {
		if e.Type().IsRegular() {
			files++
		}
	}
	if files != 2 {
		t.Fatalf("directory holds %d covers, want 2", files)
	}
}

func TestCurrentFollowsLatest(t *testing.T) {
	dir := t.TempDir()
	exp := artwork.New(dir, 0, nil)

	if got := exp.Current(); got != "" {
		t.Fatalf("Current() before any save = %q, want empty", got)
	}

	first, err := exp.Save(jpegPayload(1, 32))
	if err != nil {
		t.Fatal(err)
	}
	if got := exp.Current(); got != first {
		t.Fatalf("Current() = %q, want %q", got, first)
	}

	second, err := exp.Save(jpegPayload(2, 32))
	if err != nil {
		t.Fatal(err)
	}
	if got := exp.Current(); got != second {
		t.Fatalf("Current() after second save = %q, want %q", got, second)
	}

	// Re-saving an old cover moves the link back to it.
	if _, err := exp.Save(jpegPayload(1, 32)); err != nil {
		t.Fatal(err)
	}
	if got := exp.Current(); got != first {
		t.Fatalf("Current() after re-save = %q, want %q", got, first)
	}
}

func TestSaveRejectsEmptyPayload(t *testing.T) {
	exp := artwork.New(t.TempDir(), 0, nil)
	if _, err := exp.Save(nil); !errors.Is(err, artwork.ErrEmptyPayload) {
		t.Fatalf("Save(nil) = %v, want ErrEmptyPayload", err)
	}
}

func TestPruneKeepsNewestAndCurrent(t *testing.T) {
	dir := t.TempDir()
	exp := artwork.New(dir, 2, nil)

	var paths []string
	base := time.Now().Add(-time.Hour)
	for i := range 4 {
		p, err := exp.Save(jpegPayload(byte(i), 48))
		if err != nil {
			t.Fatal(err)
		}
		// Distinct mod times make prune order deterministic.
		if err := os.Chtimes(p, time.Time{}, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	// One more save triggers the prune with fresh knowledge of mod times.
	last, err := exp.Save(jpegPayload(9, 48))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(paths[0]); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("oldest cover survived prune: %v", err)
	}
	if _, err := os.Stat(last); err != nil {
		t.Fatalf("latest cover pruned: %v", err)
	}
	if got := exp.Current(); got != last {
		t.Fatalf("Current() = %q, want %q", got, last)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var files int
	for _, e := range entries {
		if e.Type().IsRegular() {
			files++
		}
	}
	if files != 2 {
		t.Fatalf("directory holds %d covers after prune, want 2", files)
	}
}
