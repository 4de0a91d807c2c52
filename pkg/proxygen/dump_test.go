package proxygen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/janus/pkg/classfile"
)

func TestDumpWritesClassFileUnderPackagePath(t *testing.T) {
	dir := t.TempDir()
	data, err := Generate("com.example.$Proxy0", classfile.AccPublic, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	Dump(dir, "com.example.$Proxy0", data)

	path := filepath.Join(dir, "com", "example", "$Proxy0.class")
	written, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading dump: %v", err)
	}
	if len(written) != len(data) {
		t.Errorf("dumped %d bytes, want %d", len(written), len(data))
	}
}

func TestDumpDisabledWithEmptyDir(t *testing.T) {
	// Must be a no-op, not a panic or a write to the working directory.
	Dump("", "com.example.$Proxy0", []byte{1, 2, 3})
}

func TestDumpSwallowsWriteErrors(t *testing.T) {
	// A file where the directory should be makes MkdirAll fail; Dump
	// must log and return, never propagate.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "com")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	Dump(dir, "com.example.$Proxy0", []byte{1, 2, 3})
}
