package fileutil_test

// Notes:
// - WriteFileAtomic: write/close failures of the temp file are not tested
//   because triggering disk write failures is platform-specific.

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/alnah/go-cardsheet/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestFileExists - Regular file detection
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "cards.csv")
	if err := os.WriteFile(file, []byte("@Name\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"existing file", file, true},
		{"directory", dir, false},
		{"missing", filepath.Join(dir, "nope.csv"), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.FileExists(tt.path); got != tt.want {
				t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestIsFilePath - Name vs path
// ---------------------------------------------------------------------------

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"cardsheet", false},
		{"my-config", false},
		{"./cards.yaml", true},
		{"conf/cards.yaml", true},
		{`C:\cards.yaml`, true},
	}

	for _, tt := range tests {
		tt := tt
		if got := fileutil.IsFilePath(tt.input); got != tt.want {
			t.Errorf("IsFilePath(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestResolvePath - Base directory joining
// ---------------------------------------------------------------------------

func TestResolvePath(t *testing.T) {
	t.Parallel()

	abs := filepath.Join(t.TempDir(), "art.png")

	tests := []struct {
		name string
		base string
		path string
		want string
	}{
		{"empty path", "/data", "", ""},
		{"relative joined", "/data", "img/a.png", filepath.Join("/data", "img/a.png")},
		{"absolute unchanged", "/data", abs, abs},
		{"empty base cleans", "", "./img/../a.png", "a.png"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.ResolvePath(tt.base, tt.path); got != tt.want {
				t.Errorf("ResolvePath(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWriteFileAtomic - Temp file + rename
// ---------------------------------------------------------------------------

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	t.Run("creates parents and writes content", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "out", "deck", "cards.pdf")
		if err := fileutil.WriteFileAtomic(path, []byte("%PDF-1.3"), 0o644); err != nil {
			t.Fatalf("WriteFileAtomic() error = %v", err)
		}
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "%PDF-1.3" {
			t.Errorf("content = %q", got)
		}

		entries, err := os.ReadDir(filepath.Dir(path))
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("expected only the output file, found %d entries", len(entries))
		}
	})

	t.Run("replaces existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "cards.pdf")
		if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
			t.Fatal(err)
		}
		if err := fileutil.WriteFileAtomic(path, []byte("new"), 0o600); err != nil {
			t.Fatalf("WriteFileAtomic() error = %v", err)
		}
		got, _ := os.ReadFile(path)
		if string(got) != "new" {
			t.Errorf("content = %q, want new", got)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()

		if err := fileutil.WriteFileAtomic("", nil, 0o600); !errors.Is(err, fileutil.ErrEmptyPath) {
			t.Errorf("error = %v, want ErrEmptyPath", err)
		}
	})

	t.Run("parent is a file", func(t *testing.T) {
		t.Parallel()

		if runtime.GOOS == "windows" {
			t.Skip("path semantics differ on windows")
		}
		blocker := filepath.Join(t.TempDir(), "blocker")
		if err := os.WriteFile(blocker, nil, 0o600); err != nil {
			t.Fatal(err)
		}
		if err := fileutil.WriteFileAtomic(filepath.Join(blocker, "cards.pdf"), []byte("x"), 0o600); err == nil {
			t.Error("expected error when parent is a regular file")
		}
	})
}
