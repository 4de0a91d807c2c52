package classfile

import (
	"encoding/binary"
	"fmt"
)

// attribute is an assembled attribute: a name index plus raw payload.
type attribute struct {
	nameIdx uint16
	data    []byte
}

// member is a field_info or method_info structure.
type member struct {
	flags   uint16
	nameIdx uint16
	descIdx uint16
	attrs   []attribute
}

// ClassFile is an in-progress class-file artifact: constant pool, field
// and method lists, a single superclass link, and the implemented
// interface set. A ClassFile is exclusively owned by one generation pass
// and serialized exactly once.
type ClassFile struct {
	pool       *ConstantPool
	minor      uint16
	major      uint16
	flags      uint16
	className  string // internal name, kept for frame computation
	thisClass  uint16
	superClass uint16
	interfaces []uint16
	fields     []member
	methods    []member
	attrs      []attribute
}

// New starts a class file for the given internal name, superclass
// internal name, and access flags, at the default class-file version.
func New(internalName, superName string, flags uint16) *ClassFile {
	pool := NewConstantPool()
	return &ClassFile{
		pool:       pool,
		minor:      DefaultMinorVersion,
		major:      DefaultMajorVersion,
		flags:      flags,
		className:  internalName,
		thisClass:  pool.Class(internalName),
		superClass: pool.Class(superName),
	}
}

// Pool exposes the constant pool for interning references while emitting
// code.
func (cf *ClassFile) Pool() *ConstantPool { return cf.pool }

// ClassName returns the internal name this file was created with.
func (cf *ClassFile) ClassName() string { return cf.className }

// SetVersion overrides the class-file version.
func (cf *ClassFile) SetVersion(major, minor uint16) {
	cf.major, cf.minor = major, minor
}

// AddInterface records an implemented interface by internal name.
func (cf *ClassFile) AddInterface(internalName string) {
	cf.interfaces = append(cf.interfaces, cf.pool.Class(internalName))
}

// AddField adds a field with no attributes.
func (cf *ClassFile) AddField(flags uint16, name, descriptor string) {
	cf.fields = append(cf.fields, member{
		flags:   flags,
		nameIdx: cf.pool.Utf8(name),
		descIdx: cf.pool.Utf8(descriptor),
	})
}

// SetSourceFile attaches a SourceFile attribute to the class.
func (cf *ClassFile) SetSourceFile(name string) {
	data := binary.BigEndian.AppendUint16(nil, cf.pool.Utf8(name))
	cf.attrs = append(cf.attrs, attribute{nameIdx: cf.pool.Utf8(AttrSourceFile), data: data})
}

// AddMarkerAnnotation attaches a RuntimeVisibleAnnotations attribute
// holding a single annotation with no element-value pairs, e.g. a
// generated-class marker.
func (cf *ClassFile) AddMarkerAnnotation(typeDescriptor string) {
	data := binary.BigEndian.AppendUint16(nil, 1) // num_annotations
	data = binary.BigEndian.AppendUint16(data, cf.pool.Utf8(typeDescriptor))
	data = binary.BigEndian.AppendUint16(data, 0) // num_element_value_pairs
	cf.attrs = append(cf.attrs, attribute{nameIdx: cf.pool.Utf8(AttrRuntimeVisibleAnnotations), data: data})
}

// MethodSpec describes one method to add: flags, name, descriptor, the
// assembled code, verification frames for its merge points, and the
// classes it declares in a throws clause.
type MethodSpec struct {
	Flags      uint16
	Name       string
	Descriptor string
	Code       *CodeBuffer
	Frames     []Frame
	Throws     []string // internal names
}

// AddMethod finalizes a method: the code buffer's tracked stack and local
// sizes, exception regions, and frames are assembled into a Code
// attribute, after which the method is immutable.
func (cf *ClassFile) AddMethod(spec MethodSpec) error {
	if spec.Code == nil {
		return fmt.Errorf("method %s%s has no code", spec.Name, spec.Descriptor)
	}
	if err := spec.Code.Err(); err != nil {
		return fmt.Errorf("method %s%s: %w", spec.Name, spec.Descriptor, err)
	}
	m := member{
		flags:   spec.Flags,
		nameIdx: cf.pool.Utf8(spec.Name),
		descIdx: cf.pool.Utf8(spec.Descriptor),
	}
	codeAttr, err := cf.buildCodeAttribute(spec)
	if err != nil {
		return fmt.Errorf("method %s%s: %w", spec.Name, spec.Descriptor, err)
	}
	m.attrs = append(m.attrs, codeAttr)
	if len(spec.Throws) > 0 {
		data := binary.BigEndian.AppendUint16(nil, uint16(len(spec.Throws)))
		for _, t := range spec.Throws {
			data = binary.BigEndian.AppendUint16(data, cf.pool.Class(t))
		}
		m.attrs = append(m.attrs, attribute{nameIdx: cf.pool.Utf8(AttrExceptions), data: data})
	}
	cf.methods = append(cf.methods, m)
	return nil
}

func (cf *ClassFile) buildCodeAttribute(spec MethodSpec) (attribute, error) {
	cb := spec.Code
	code := cb.Bytes()

	var sub []attribute
	if len(spec.Frames) > 0 {
		static := spec.Flags&AccStatic != 0
		initial, err := initialFrameLocals(cf.className, static, spec.Descriptor)
		if err != nil {
			return attribute{}, err
		}
		frameData, err := encodeStackMapTable(cf.pool, initial, spec.Frames)
		if err != nil {
			return attribute{}, err
		}
		sub = append(sub, attribute{nameIdx: cf.pool.Utf8(AttrStackMapTable), data: frameData})
	}

	// Locals include the implicit receiver and parameters even when the
	// body never touches the upper slots.
	args, _ := descriptorWords(spec.Descriptor)
	minLocals := args
	if spec.Flags&AccStatic == 0 {
		minLocals++
	}
	cb.ReserveLocals(minLocals)

	data := binary.BigEndian.AppendUint16(nil, uint16(cb.MaxStack()))
	data = binary.BigEndian.AppendUint16(data, uint16(cb.MaxLocals()))
	data = binary.BigEndian.AppendUint32(data, uint32(len(code)))
	data = append(data, code...)
	data = binary.BigEndian.AppendUint16(data, uint16(len(cb.Regions())))
	for _, r := range cb.Regions() {
		data = binary.BigEndian.AppendUint16(data, uint16(r.Start))
		data = binary.BigEndian.AppendUint16(data, uint16(r.End))
		data = binary.BigEndian.AppendUint16(data, uint16(r.Handler))
		if r.CatchType == "" {
			data = binary.BigEndian.AppendUint16(data, 0)
		} else {
			data = binary.BigEndian.AppendUint16(data, cf.pool.Class(r.CatchType))
		}
	}
	data = binary.BigEndian.AppendUint16(data, uint16(len(sub)))
	for _, a := range sub {
		data = appendAttribute(data, a)
	}
	return attribute{nameIdx: cf.pool.Utf8(AttrCode), data: data}, nil
}

// Serialize encodes the complete class file in the loader's binary
// format. Nothing may be added to the file after Serialize is called.
func (cf *ClassFile) Serialize() ([]byte, error) {
	if err := cf.pool.err(); err != nil {
		return nil, err
	}
	buf := make([]byte, 0, 1024)
	buf = binary.BigEndian.AppendUint32(buf, Magic)
	buf = binary.BigEndian.AppendUint16(buf, cf.minor)
	buf = binary.BigEndian.AppendUint16(buf, cf.major)
	buf = cf.pool.appendTo(buf)
	buf = binary.BigEndian.AppendUint16(buf, cf.flags)
	buf = binary.BigEndian.AppendUint16(buf, cf.thisClass)
	buf = binary.BigEndian.AppendUint16(buf, cf.superClass)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(cf.interfaces)))
	for _, iface := range cf.interfaces {
		buf = binary.BigEndian.AppendUint16(buf, iface)
	}
	buf = appendMembers(buf, cf.fields)
	buf = appendMembers(buf, cf.methods)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(cf.attrs)))
	for _, a := range cf.attrs {
		buf = appendAttribute(buf, a)
	}
	return buf, nil
}

func appendMembers(buf []byte, members []member) []byte {
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(members)))
	for _, m := range members {
		buf = binary.BigEndian.AppendUint16(buf, m.flags)
		buf = binary.BigEndian.AppendUint16(buf, m.nameIdx)
		buf = binary.BigEndian.AppendUint16(buf, m.descIdx)
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(m.attrs)))
		for _, a := range m.attrs {
			buf = appendAttribute(buf, a)
		}
	}
	return buf
}

func appendAttribute(buf []byte, a attribute) []byte {
	buf = binary.BigEndian.AppendUint16(buf, a.nameIdx)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(a.data)))
	return append(buf, a.data...)
}
