package logsource

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeLog(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestDirSourceReadsFilesInOrder(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeLog(t, dir, "b.log", "b1\nb2\n")
	writeLog(t, dir, "a.log", "a1\n")
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeLog(t, filepath.Join(dir, "nested"), "c.log", "c1\n")

	src, err := NewDirSource(dir)
	if err != nil {
		t.Fatalf("NewDirSource: %v", err)
	}
	got := collect(t, src)

	want := []string{"a1", "b1", "b2"}
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d", len(got), len(want))
	}
	for i, line := range want {
		if got[i].Line != line {
			t.Errorf("line %d = %q, want %q", i, got[i].Line, line)
		}
	}
	if got[0].Source != "a.log" {
		t.Errorf("Source = %q, want a.log", got[0].Source)
	}
}

func TestDirSourceInclude(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeLog(t, dir, "access.log", "kept\n")
	writeLog(t, dir, "error.txt", "dropped\n")

	src, err := NewDirSource(dir, DirConfig{Include: "*.log"})
	if err != nil {
		t.Fatalf("NewDirSource: %v", err)
	}
	got := collect(t, src)
	if len(got) != 1 || got[0].Line != "kept" {
		t.Errorf("got %+v, want only access.log line", got)
	}
}

func TestDirSourceInvalidPattern(t *testing.T) {
	t.Parallel()
	if _, err := NewDirSource(t.TempDir(), DirConfig{Include: "[unclosed"}); err == nil {
		t.Fatal("expected error for invalid glob")
	}
}

func TestDirSourceEmptyAndMissing(t *testing.T) {
	t.Parallel()

	src, _ := NewDirSource(t.TempDir())
	if _, err := src.Files(); !errors.Is(err, ErrNoFiles) {
		t.Errorf("empty dir err = %v, want ErrNoFiles", err)
	}

	missing, _ := NewDirSource(filepath.Join(t.TempDir(), "absent"))
	if _, err := missing.Files(); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing dir err = %v, want ErrNotExist", err)
	}
}
