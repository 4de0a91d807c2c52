package classfile

import (
	"encoding/binary"
	"testing"
)

func TestPoolDeduplicates(t *testing.T) {
	p := NewConstantPool()

	idx0 := p.Utf8("hello")
	idx1 := p.Utf8("world")
	if idx0 == idx1 {
		t.Errorf("distinct strings share index %d", idx0)
	}
	if again := p.Utf8("hello"); again != idx0 {
		t.Errorf("Utf8(\"hello\") = %d on second intern, want %d", again, idx0)
	}
}

func TestPoolIndicesAreOneBased(t *testing.T) {
	p := NewConstantPool()
	if idx := p.Utf8("first"); idx != 1 {
		t.Errorf("first entry index = %d, want 1", idx)
	}
}

func TestPoolCompositeEntries(t *testing.T) {
	p := NewConstantPool()

	// A Methodref drags in Class, NameAndType, and three Utf8 entries.
	idx := p.Methodref("java/lang/Object", "<init>", "()V")
	if idx == 0 {
		t.Fatal("Methodref returned index 0")
	}
	if p.Size() != 6 {
		t.Errorf("pool size = %d, want 6", p.Size())
	}

	// Interning the same ref again adds nothing.
	if again := p.Methodref("java/lang/Object", "<init>", "()V"); again != idx {
		t.Errorf("second Methodref = %d, want %d", again, idx)
	}
	if p.Size() != 6 {
		t.Errorf("pool size after re-intern = %d, want 6", p.Size())
	}

	// A second ref to the same class reuses the Class entry.
	p.Fieldref("java/lang/Object", "x", "I")
	// adds: NameAndType, Fieldref, Utf8 "x", Utf8 "I" = 4 entries
	if p.Size() != 10 {
		t.Errorf("pool size = %d, want 10", p.Size())
	}
}

func TestPoolSerializedCount(t *testing.T) {
	p := NewConstantPool()
	p.String("abc")
	buf := p.appendTo(nil)

	// constant_pool_count is entries+1.
	if got := binary.BigEndian.Uint16(buf); got != uint16(p.Size()+1) {
		t.Errorf("serialized count = %d, want %d", got, p.Size()+1)
	}
	// Tag of the first entry follows the count.
	if buf[2] != TagUtf8 {
		t.Errorf("first tag = %d, want Utf8 (%d)", buf[2], TagUtf8)
	}
}

func TestPoolInterfaceMethodrefDistinctFromMethodref(t *testing.T) {
	p := NewConstantPool()
	a := p.Methodref("p/I", "m", "()V")
	b := p.InterfaceMethodref("p/I", "m", "()V")
	if a == b {
		t.Error("Methodref and InterfaceMethodref share an index")
	}
}
