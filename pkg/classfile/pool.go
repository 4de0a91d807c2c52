package classfile

import (
	"encoding/binary"
	"fmt"
)

// poolEntry is one constant pool slot. The same representation covers
// every tag this package emits: str carries Utf8 payloads, i1/i2 carry
// index operands.
type poolEntry struct {
	tag    uint8
	str    string
	i1, i2 uint16
}

// ConstantPool is a deduplicating, append-only constant pool. Interning
// the same symbolic constant twice returns the same index, so code
// generated in independent passes (static init vs. trampolines) agrees on
// every reference. Indices are 1-based per the class-file format.
type ConstantPool struct {
	entries  []poolEntry
	index    map[string]uint16
	overflow bool
}

// NewConstantPool returns an empty pool.
func NewConstantPool() *ConstantPool {
	return &ConstantPool{index: make(map[string]uint16)}
}

func (p *ConstantPool) add(key string, e poolEntry) uint16 {
	if idx, ok := p.index[key]; ok {
		return idx
	}
	if len(p.entries) >= 0xFFFE {
		p.overflow = true
		return 0
	}
	p.entries = append(p.entries, e)
	idx := uint16(len(p.entries)) // 1-based
	p.index[key] = idx
	return idx
}

// Utf8 interns a modified-UTF8 string constant.
func (p *ConstantPool) Utf8(s string) uint16 {
	return p.add("utf8:"+s, poolEntry{tag: TagUtf8, str: s})
}

// Class interns a Class entry for the given internal (slash) name.
func (p *ConstantPool) Class(internalName string) uint16 {
	nameIdx := p.Utf8(internalName)
	return p.add("class:"+internalName, poolEntry{tag: TagClass, i1: nameIdx})
}

// String interns a String entry for the given literal.
func (p *ConstantPool) String(s string) uint16 {
	utf8Idx := p.Utf8(s)
	return p.add("string:"+s, poolEntry{tag: TagString, i1: utf8Idx})
}

// NameAndType interns a NameAndType entry.
func (p *ConstantPool) NameAndType(name, descriptor string) uint16 {
	nameIdx := p.Utf8(name)
	descIdx := p.Utf8(descriptor)
	return p.add("nat:"+name+":"+descriptor, poolEntry{tag: TagNameAndType, i1: nameIdx, i2: descIdx})
}

// Fieldref interns a Fieldref entry for class.name:descriptor.
func (p *ConstantPool) Fieldref(class, name, descriptor string) uint16 {
	classIdx := p.Class(class)
	natIdx := p.NameAndType(name, descriptor)
	return p.add("field:"+class+"."+name+":"+descriptor, poolEntry{tag: TagFieldref, i1: classIdx, i2: natIdx})
}

// Methodref interns a Methodref entry for class.name:descriptor.
func (p *ConstantPool) Methodref(class, name, descriptor string) uint16 {
	classIdx := p.Class(class)
	natIdx := p.NameAndType(name, descriptor)
	return p.add("method:"+class+"."+name+":"+descriptor, poolEntry{tag: TagMethodref, i1: classIdx, i2: natIdx})
}

// InterfaceMethodref interns an InterfaceMethodref entry.
func (p *ConstantPool) InterfaceMethodref(class, name, descriptor string) uint16 {
	classIdx := p.Class(class)
	natIdx := p.NameAndType(name, descriptor)
	return p.add("imethod:"+class+"."+name+":"+descriptor, poolEntry{tag: TagInterfaceMethodref, i1: classIdx, i2: natIdx})
}

// Size returns the number of entries currently in the pool.
func (p *ConstantPool) Size() int { return len(p.entries) }

// err returns a descriptive error if the pool overflowed.
func (p *ConstantPool) err() error {
	if p.overflow {
		return fmt.Errorf("constant pool overflow: more than %d entries", 0xFFFE)
	}
	return nil
}

// appendTo serializes the pool (count word plus entries) onto buf.
func (p *ConstantPool) appendTo(buf []byte) []byte {
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(p.entries)+1))
	for _, e := range p.entries {
		buf = append(buf, e.tag)
		switch e.tag {
		case TagUtf8:
			buf = binary.BigEndian.AppendUint16(buf, uint16(len(e.str)))
			buf = append(buf, e.str...)
		case TagClass, TagString:
			buf = binary.BigEndian.AppendUint16(buf, e.i1)
		default:
			buf = binary.BigEndian.AppendUint16(buf, e.i1)
			buf = binary.BigEndian.AppendUint16(buf, e.i2)
		}
	}
	return buf
}
