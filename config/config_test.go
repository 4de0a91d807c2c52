package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "janus.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("writing janus.toml: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[generator]
dump-dir = "dumps"

[store]
path = "artifacts.db"
`)
	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Generator.DumpDir != "dumps" {
		t.Errorf("DumpDir = %q", c.Generator.DumpDir)
	}
	if want := filepath.Join(c.Dir, "dumps"); c.DumpDir() != want {
		t.Errorf("DumpDir() = %q, want %q", c.DumpDir(), want)
	}
	if want := filepath.Join(c.Dir, "artifacts.db"); c.StorePath() != want {
		t.Errorf("StorePath() = %q, want %q", c.StorePath(), want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected error for missing janus.toml")
	}
}

func TestEmptyPathsStayEmpty(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "")
	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.DumpDir() != "" {
		t.Errorf("DumpDir() = %q, want empty", c.DumpDir())
	}
	if c.StorePath() != "" {
		t.Errorf("StorePath() = %q, want empty", c.StorePath())
	}
}

func TestFindAndLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[generator]\ndump-dir = \"out\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	c, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad: %v", err)
	}
	if c == nil {
		t.Fatal("config not found")
	}
	if c.Generator.DumpDir != "out" {
		t.Errorf("DumpDir = %q", c.Generator.DumpDir)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	c, err := FindAndLoad(t.TempDir())
	if err != nil {
		t.Fatalf("FindAndLoad: %v", err)
	}
	if c != nil {
		t.Errorf("expected nil config, got %+v", c)
	}
}
