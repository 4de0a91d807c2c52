package classfile

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// ParsedClass is a decoded class file, resolved far enough for
// inspection: names and descriptors are materialized, attribute payloads
// are kept raw except for Code, which is decoded on demand.
type ParsedClass struct {
	MinorVersion uint16
	MajorVersion uint16
	Flags        uint16
	ThisClass    string // internal name
	SuperClass   string
	Interfaces   []string
	Fields       []ParsedMember
	Methods      []ParsedMember
	Attributes   []ParsedAttribute

	pool []poolEntry
}

// ParsedMember is a decoded field or method.
type ParsedMember struct {
	Flags      uint16
	Name       string
	Descriptor string
	Attributes []ParsedAttribute

	pc *ParsedClass
}

// ParsedAttribute is a raw attribute.
type ParsedAttribute struct {
	Name string
	Data []byte
}

// ParsedCode is a decoded Code attribute.
type ParsedCode struct {
	MaxStack   uint16
	MaxLocals  uint16
	Code       []byte
	Exceptions []ParsedRegion
	Attributes []ParsedAttribute
}

// ParsedRegion is a decoded exception-table entry with the caught class
// resolved ("" for catch-all).
type ParsedRegion struct {
	Start, End, Handler uint16
	CatchType           string
}

// reader is a bounds-checked cursor over class-file bytes.
type reader struct {
	data []byte
	pos  int
	err  error
}

func (r *reader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf(format+" at offset %d", append(args, r.pos)...)
	}
}

func (r *reader) u8() uint8 {
	if r.err != nil {
		return 0
	}
	if r.pos+1 > len(r.data) {
		r.fail("unexpected end of class file")
		return 0
	}
	v := r.data[r.pos]
	r.pos++
	return v
}

func (r *reader) u16() uint16 {
	if r.err != nil {
		return 0
	}
	if r.pos+2 > len(r.data) {
		r.fail("unexpected end of class file")
		return 0
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v
}

func (r *reader) u32() uint32 {
	if r.err != nil {
		return 0
	}
	if r.pos+4 > len(r.data) {
		r.fail("unexpected end of class file")
		return 0
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

func (r *reader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.fail("unexpected end of class file reading %d bytes", n)
		return nil
	}
	v := r.data[r.pos : r.pos+n]
	r.pos += n
	return v
}

// Parse decodes a class file. It understands the constant-pool tags this
// package emits plus the numeric tags, enough to inspect any artifact
// the generator produces.
func Parse(data []byte) (*ParsedClass, error) {
	r := &reader{data: data}
	if magic := r.u32(); magic != Magic && r.err == nil {
		return nil, fmt.Errorf("bad magic 0x%08X", magic)
	}
	pc := &ParsedClass{}
	pc.MinorVersion = r.u16()
	pc.MajorVersion = r.u16()

	poolCount := int(r.u16())
	pc.pool = make([]poolEntry, poolCount) // index 0 unused
	for i := 1; i < poolCount && r.err == nil; i++ {
		tag := r.u8()
		e := poolEntry{tag: tag}
		switch tag {
		case TagUtf8:
			n := int(r.u16())
			e.str = string(r.bytes(n))
		case TagClass, TagString:
			e.i1 = r.u16()
		case TagInteger, TagFloat:
			r.u32()
		case TagLong, TagDouble:
			r.u32()
			r.u32()
			pc.pool[i] = e
			i++ // wide entries take two slots
			continue
		case TagFieldref, TagMethodref, TagInterfaceMethodref, TagNameAndType:
			e.i1 = r.u16()
			e.i2 = r.u16()
		default:
			return nil, fmt.Errorf("unsupported constant pool tag %d at index %d", tag, i)
		}
		pc.pool[i] = e
	}

	pc.Flags = r.u16()
	pc.ThisClass = pc.classNameAt(r, r.u16())
	pc.SuperClass = pc.classNameAt(r, r.u16())

	ifaceCount := int(r.u16())
	for i := 0; i < ifaceCount && r.err == nil; i++ {
		pc.Interfaces = append(pc.Interfaces, pc.classNameAt(r, r.u16()))
	}

	pc.Fields = pc.readMembers(r)
	pc.Methods = pc.readMembers(r)
	pc.Attributes = pc.readAttributes(r)

	if r.err != nil {
		return nil, r.err
	}
	return pc, nil
}

func (pc *ParsedClass) readMembers(r *reader) []ParsedMember {
	count := int(r.u16())
	members := make([]ParsedMember, 0, count)
	for i := 0; i < count && r.err == nil; i++ {
		m := ParsedMember{pc: pc}
		m.Flags = r.u16()
		m.Name = pc.utf8At(r, r.u16())
		m.Descriptor = pc.utf8At(r, r.u16())
		m.Attributes = pc.readAttributes(r)
		members = append(members, m)
	}
	return members
}

func (pc *ParsedClass) readAttributes(r *reader) []ParsedAttribute {
	count := int(r.u16())
	attrs := make([]ParsedAttribute, 0, count)
	for i := 0; i < count && r.err == nil; i++ {
		name := pc.utf8At(r, r.u16())
		length := int(r.u32())
		attrs = append(attrs, ParsedAttribute{Name: name, Data: r.bytes(length)})
	}
	return attrs
}

func (pc *ParsedClass) utf8At(r *reader, idx uint16) string {
	if int(idx) >= len(pc.pool) || pc.pool[idx].tag != TagUtf8 {
		r.fail("constant %d is not a Utf8 entry", idx)
		return ""
	}
	return pc.pool[idx].str
}

func (pc *ParsedClass) classNameAt(r *reader, idx uint16) string {
	if idx == 0 {
		return ""
	}
	if int(idx) >= len(pc.pool) || pc.pool[idx].tag != TagClass {
		r.fail("constant %d is not a Class entry", idx)
		return ""
	}
	return pc.utf8At(r, pc.pool[idx].i1)
}

// Method returns the first method matching name, and descriptor when
// descriptor is non-empty. Returns nil if absent.
func (pc *ParsedClass) Method(name, descriptor string) *ParsedMember {
	for i := range pc.Methods {
		m := &pc.Methods[i]
		if m.Name == name && (descriptor == "" || m.Descriptor == descriptor) {
			return m
		}
	}
	return nil
}

// Field returns the named field, or nil.
func (pc *ParsedClass) Field(name string) *ParsedMember {
	for i := range pc.Fields {
		if pc.Fields[i].Name == name {
			return &pc.Fields[i]
		}
	}
	return nil
}

// Attribute returns the named attribute of the member, or nil.
func (m *ParsedMember) Attribute(name string) *ParsedAttribute {
	for i := range m.Attributes {
		if m.Attributes[i].Name == name {
			return &m.Attributes[i]
		}
	}
	return nil
}

// Code decodes the member's Code attribute.
func (m *ParsedMember) Code() (*ParsedCode, error) {
	attr := m.Attribute(AttrCode)
	if attr == nil {
		return nil, fmt.Errorf("method %s%s has no Code attribute", m.Name, m.Descriptor)
	}
	r := &reader{data: attr.Data}
	code := &ParsedCode{}
	code.MaxStack = r.u16()
	code.MaxLocals = r.u16()
	codeLen := int(r.u32())
	code.Code = r.bytes(codeLen)
	excCount := int(r.u16())
	for i := 0; i < excCount && r.err == nil; i++ {
		entry := ParsedRegion{Start: r.u16(), End: r.u16(), Handler: r.u16()}
		catchIdx := r.u16()
		entry.CatchType = m.pc.classNameAt(r, catchIdx)
		code.Exceptions = append(code.Exceptions, entry)
	}
	code.Attributes = m.pc.readAttributes(r)
	if r.err != nil {
		return nil, r.err
	}
	return code, nil
}

// Throws resolves the member's Exceptions attribute into internal class
// names, or nil when absent.
func (m *ParsedMember) Throws() []string {
	attr := m.Attribute(AttrExceptions)
	if attr == nil {
		return nil
	}
	r := &reader{data: attr.Data}
	count := int(r.u16())
	names := make([]string, 0, count)
	for i := 0; i < count && r.err == nil; i++ {
		names = append(names, m.pc.classNameAt(r, r.u16()))
	}
	return names
}

// FrameCount returns the number of StackMapTable entries attached to the
// decoded code, or 0 when none are present.
func (c *ParsedCode) FrameCount() int {
	for _, a := range c.Attributes {
		if a.Name == AttrStackMapTable && len(a.Data) >= 2 {
			return int(binary.BigEndian.Uint16(a.Data))
		}
	}
	return 0
}

// HasInterface reports whether the class declares the given internal
// interface name.
func (pc *ParsedClass) HasInterface(internalName string) bool {
	for _, name := range pc.Interfaces {
		if name == internalName {
			return true
		}
	}
	return false
}

// MethodsNamed returns all methods whose name matches a prefix. Used by
// tests and tooling to enumerate generated families like direct-invoke
// methods.
func (pc *ParsedClass) MethodsNamed(prefix string) []*ParsedMember {
	var out []*ParsedMember
	for i := range pc.Methods {
		if strings.HasPrefix(pc.Methods[i].Name, prefix) {
			out = append(out, &pc.Methods[i])
		}
	}
	return out
}
