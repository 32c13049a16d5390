package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReplaceWhitespace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no whitespace", "ipa-info", "ipa-info"},
		{"single space", "my cache", "my-cache"},
		{"run of whitespace", "my \t cache\ndir", "my-cache-dir"},
		{"path", "/tmp/ipa cache/out", "/tmp/ipa-cache/out"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReplaceWhitespace(tt.in); got != tt.want {
				t.Errorf("ReplaceWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDirSize(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "a", "b"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "one"), make([]byte, 10), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a", "b", "two"), make([]byte, 32), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := DirSize(dir)
	if err != nil {
		t.Fatalf("DirSize() error = %v", err)
	}
	if got != 42 {
		t.Errorf("DirSize() = %d, want 42", got)
	}
}
