package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/janus/pkg/classfile"
)

const shapeSpec = `
class = "com.example.$ShapeProxy"
flags = ["public", "final"]

[[contract]]
name = "com.example.Shape"

[[contract.method]]
name = "area"
returns = "double"

[[contract.method]]
name = "scale"
params = ["double", "java.lang.String[]"]
returns = "void"
`

func TestLoadProxySpec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shape.toml")
	if err := os.WriteFile(path, []byte(shapeSpec), 0o644); err != nil {
		t.Fatalf("writing spec: %v", err)
	}

	name, flags, contracts, err := LoadProxySpec(path)
	if err != nil {
		t.Fatalf("LoadProxySpec: %v", err)
	}
	if name != "com.example.$ShapeProxy" {
		t.Errorf("name = %q", name)
	}
	if flags != classfile.AccPublic|classfile.AccFinal {
		t.Errorf("flags = %#x, want public final", flags)
	}
	if len(contracts) != 1 || contracts[0].Name != "com.example.Shape" {
		t.Fatalf("contracts = %+v", contracts)
	}
	methods := contracts[0].Methods
	if len(methods) != 2 {
		t.Fatalf("got %d methods, want 2", len(methods))
	}
	if got := methods[0].Descriptor(); got != "()D" {
		t.Errorf("area descriptor = %q, want ()D", got)
	}
	if got := methods[1].Descriptor(); got != "(D[Ljava/lang/String;)V" {
		t.Errorf("scale descriptor = %q", got)
	}
	if methods[0].Declaring != "com.example.Shape" {
		t.Errorf("declaring = %q", methods[0].Declaring)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want string // descriptor form
	}{
		{"int", "I"},
		{"double", "D"},
		{"void", "V"},
		{"java.lang.String", "Ljava/lang/String;"},
		{"int[]", "[I"},
		{"java.lang.Object[]", "[Ljava/lang/Object;"},
		{"long[][]", "[[J"},
	}
	for _, tt := range tests {
		k, err := ParseKind(tt.in)
		if err != nil {
			t.Errorf("ParseKind(%q): %v", tt.in, err)
			continue
		}
		if got := k.Descriptor(); got != tt.want {
			t.Errorf("ParseKind(%q).Descriptor() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseKindRejects(t *testing.T) {
	for _, in := range []string{"void[]", "bad;name", "has/slash"} {
		if _, err := ParseKind(in); err == nil {
			t.Errorf("ParseKind(%q) succeeded, want error", in)
		}
	}
}

func TestParseFlagsRejectsUnknown(t *testing.T) {
	if _, err := parseFlags([]string{"native"}); err == nil {
		t.Error("expected error for unknown flag")
	}
}

func TestParseFlagsDefaultsToPublic(t *testing.T) {
	flags, err := parseFlags(nil)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if flags != classfile.AccPublic {
		t.Errorf("flags = %#x, want public", flags)
	}
}
