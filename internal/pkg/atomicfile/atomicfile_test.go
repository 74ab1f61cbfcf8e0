package atomicfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteCreatesFileAndParents(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "deeper", "record.txt")

	res := NewWriter().Write(target, []byte("hello"))
	if !res.OK {
		t.Fatalf("Write failed: %s", res.Reason)
	}
	if res.Path != target {
		t.Fatalf("expected final path %s, got %s", target, res.Path)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("unexpected contents: %q", data)
	}
}

func TestWriteLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "record.txt")

	if res := NewWriter().Write(target, []byte("x")); !res.OK {
		t.Fatalf("Write failed: %s", res.Reason)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestPromoteFallsBackToPartial(t *testing.T) {
	dir := t.TempDir()
	// A non-empty directory at the final path makes every rename fail.
	final := filepath.Join(dir, "blocked.txt")
	if err := os.MkdirAll(filepath.Join(final, "occupant"), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}

	w := &Writer{Attempts: 2, Backoff: time.Millisecond}
	res := w.Write(final, []byte("precious bytes"))
	if res.OK {
		t.Fatal("expected failure when destination is a directory")
	}
	if res.Reason == "" {
		t.Fatal("expected a failure reason")
	}
	if !strings.Contains(res.Path, ".partial-") {
		t.Fatalf("expected partial fallback path, got %s", res.Path)
	}

	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("partial file unreadable: %v", err)
	}
	if string(data) != "precious bytes" {
		t.Fatalf("partial file lost bytes: %q", data)
	}
}

func TestTempSiblingUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		name := TempSibling("/tmp/record.txt")
		if seen[name] {
			t.Fatalf("duplicate temp name: %s", name)
		}
		seen[name] = true
	}
}
