package proxygen

import (
	"errors"
	"testing"

	"github.com/chazu/janus/pkg/classfile"
)

func shapeContract() *Contract {
	return &Contract{
		Name: "com.example.Shape",
		Methods: []Method{
			{Name: "area", Return: classfile.Double},
		},
	}
}

func TestUniversalOperationsOccupyFirstSlots(t *testing.T) {
	slots, err := collectMethods([]*Contract{shapeContract()})
	if err != nil {
		t.Fatalf("collectMethods: %v", err)
	}
	want := []string{"equals", "hashCode", "toString", "area"}
	if len(slots) != len(want) {
		t.Fatalf("got %d slots, want %d", len(slots), len(want))
	}
	for i, name := range want {
		if slots[i].method.Name != name {
			t.Errorf("slot %d = %q, want %q", i, slots[i].method.Name, name)
		}
		if wantField := "m" + string(rune('0'+i)); slots[i].field != wantField {
			t.Errorf("slot %d field = %q, want %q", i, slots[i].field, wantField)
		}
	}
	for i := 0; i < 3; i++ {
		if !slots[i].universal {
			t.Errorf("slot %d not marked universal", i)
		}
	}
	if slots[3].universal {
		t.Error("contract slot marked universal")
	}
}

func TestOverlappingSignaturesShareOneSlot(t *testing.T) {
	ping := Method{Name: "ping", Return: classfile.Void}
	a := &Contract{Name: "com.example.A", Methods: []Method{ping}}
	b := &Contract{Name: "com.example.B", Methods: []Method{ping, {Name: "extra", Return: classfile.Int}}}

	slots, err := collectMethods([]*Contract{a, b})
	if err != nil {
		t.Fatalf("collectMethods: %v", err)
	}
	// 3 universal + ping + extra; the duplicate ping folds away.
	if len(slots) != 5 {
		t.Fatalf("got %d slots, want 5", len(slots))
	}
	if slots[3].method.Name != "ping" || slots[3].method.Declaring != "com.example.A" {
		t.Errorf("slot 3 = %s from %s, want ping from com.example.A (first seen)",
			slots[3].method.Name, slots[3].method.Declaring)
	}
}

func TestOverloadsGetDistinctSlots(t *testing.T) {
	c := &Contract{
		Name: "com.example.Overloaded",
		Methods: []Method{
			{Name: "run", Return: classfile.Void},
			{Name: "run", Params: []classfile.Kind{classfile.Int}, Return: classfile.Void},
		},
	}
	slots, err := collectMethods([]*Contract{c})
	if err != nil {
		t.Fatalf("collectMethods: %v", err)
	}
	if len(slots) != 5 {
		t.Fatalf("got %d slots, want 5 (overloads differ by signature)", len(slots))
	}
}

func TestUniversalSignatureInContractFoldsAway(t *testing.T) {
	c := &Contract{
		Name: "com.example.Printable",
		Methods: []Method{
			{Name: "toString", Return: classfile.Object("java.lang.String")},
		},
	}
	slots, err := collectMethods([]*Contract{c})
	if err != nil {
		t.Fatalf("collectMethods: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("got %d slots, want 3: a redeclared toString shares the universal slot", len(slots))
	}
}

func TestEmptyContractListIsLegal(t *testing.T) {
	slots, err := collectMethods(nil)
	if err != nil {
		t.Fatalf("collectMethods: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("got %d slots, want 3", len(slots))
	}
}

func TestCollectRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name      string
		contracts []*Contract
	}{
		{"nil contract", []*Contract{nil}},
		{"empty contract name", []*Contract{{Methods: []Method{{Name: "x", Return: classfile.Void}}}}},
		{"empty method name", []*Contract{{Name: "com.example.C", Methods: []Method{{Return: classfile.Void}}}}},
		{"void parameter", []*Contract{{Name: "com.example.C", Methods: []Method{
			{Name: "x", Params: []classfile.Kind{classfile.Void}, Return: classfile.Void},
		}}}},
		{"illegal method name", []*Contract{{Name: "com.example.C", Methods: []Method{
			{Name: "<oops>", Return: classfile.Void},
		}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := collectMethods(tt.contracts)
			if !errors.Is(err, ErrInvalidContract) {
				t.Errorf("err = %v, want ErrInvalidContract", err)
			}
		})
	}
}
