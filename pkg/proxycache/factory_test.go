package proxycache

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/chazu/janus/pkg/classfile"
	"github.com/chazu/janus/pkg/proxygen"
)

func shapeContracts() []*proxygen.Contract {
	return []*proxygen.Contract{{
		Name: "com.example.Shape",
		Methods: []proxygen.Method{
			{Name: "area", Return: classfile.Double},
		},
	}}
}

func TestFingerprintStability(t *testing.T) {
	a := Fingerprint("com.example.$Proxy0", 0x11, shapeContracts())
	b := Fingerprint("com.example.$Proxy0", 0x11, shapeContracts())
	if a != b {
		t.Error("identical requests fingerprint differently")
	}
	if c := Fingerprint("com.example.$Proxy0", 0x01, shapeContracts()); c == a {
		t.Error("flag change did not change the fingerprint")
	}
	if c := Fingerprint("com.example.$Proxy1", 0x11, shapeContracts()); c == a {
		t.Error("name change did not change the fingerprint")
	}
	if c := Fingerprint("com.example.$Proxy0", 0x11, nil); c == a {
		t.Error("contract change did not change the fingerprint")
	}
}

func TestFactoryCachesGeneratedArtifact(t *testing.T) {
	f := NewFactory()
	first, err := f.Artifact("com.example.$Proxy0", classfile.AccPublic, shapeContracts())
	if err != nil {
		t.Fatalf("Artifact: %v", err)
	}
	second, err := f.Artifact("com.example.$Proxy0", classfile.AccPublic, shapeContracts())
	if err != nil {
		t.Fatalf("Artifact: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("cache returned different bytes for the same request")
	}
	if pc, err := classfile.Parse(first); err != nil {
		t.Errorf("generated artifact does not parse: %v", err)
	} else if pc.ThisClass != "com/example/$Proxy0" {
		t.Errorf("ThisClass = %q", pc.ThisClass)
	}
}

func TestFactoryPersistsThroughStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifacts.db")
	store, err := OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()

	f := NewFactory()
	f.SetStore(store)
	data, err := f.Artifact("com.example.$Proxy0", classfile.AccPublic, shapeContracts())
	if err != nil {
		t.Fatalf("Artifact: %v", err)
	}

	fp := Fingerprint("com.example.$Proxy0", classfile.AccPublic, shapeContracts())
	stored, md, err := store.Get(fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(stored, data) {
		t.Error("stored bytes differ from returned bytes")
	}
	if md.ClassName != "com.example.$Proxy0" {
		t.Errorf("metadata class = %q", md.ClassName)
	}
	if len(md.Contracts) != 1 || md.Contracts[0] != "com.example.Shape" {
		t.Errorf("metadata contracts = %v", md.Contracts)
	}

	// A fresh factory sharing the store must hit it instead of
	// regenerating.
	g := NewFactory()
	g.SetStore(store)
	again, err := g.Artifact("com.example.$Proxy0", classfile.AccPublic, shapeContracts())
	if err != nil {
		t.Fatalf("Artifact: %v", err)
	}
	if !bytes.Equal(again, data) {
		t.Error("store-backed lookup returned different bytes")
	}
}

func TestFactoryPropagatesGenerationErrors(t *testing.T) {
	f := NewFactory()
	if _, err := f.Artifact("", classfile.AccPublic, nil); err == nil {
		t.Error("expected error for empty class name")
	}
}
