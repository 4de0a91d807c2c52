package classfile

import (
	"encoding/binary"
	"fmt"
)

// Verification type tags for StackMapTable entries.
const (
	vtTop     uint8 = 0
	vtInteger uint8 = 1
	vtFloat   uint8 = 2
	vtDouble  uint8 = 3
	vtLong    uint8 = 4
	vtNull    uint8 = 5
	vtObject  uint8 = 7
)

// VerificationType is one slot in a verification frame: a primitive
// category or an object type carrying its internal class name.
type VerificationType struct {
	tag   uint8
	class string // object types only
}

// Verification type constructors. Booleans through ints all verify as
// integer; VTObject covers classes and arrays.
var (
	VTInteger = VerificationType{tag: vtInteger}
	VTFloat   = VerificationType{tag: vtFloat}
	VTLong    = VerificationType{tag: vtLong}
	VTDouble  = VerificationType{tag: vtDouble}
	VTNull    = VerificationType{tag: vtNull}
	VTTop     = VerificationType{tag: vtTop}
)

// VTObject returns the verification type for an internal class name.
func VTObject(internalName string) VerificationType {
	return VerificationType{tag: vtObject, class: internalName}
}

// VTForKind maps a value kind to its verification type.
func VTForKind(k Kind) VerificationType {
	switch {
	case k.IsReference():
		return VTObject(k.InternalName())
	case k == Long:
		return VTLong
	case k == Float:
		return VTFloat
	case k == Double:
		return VTDouble
	case k.IsVoid():
		panic("classfile: void has no verification type")
	default:
		return VTInteger
	}
}

// Frame is the type state required at one control-flow merge point: the
// bytecode offset plus full local and stack slot lists. The encoder
// derives the compact delta forms; callers always supply complete
// snapshots.
type Frame struct {
	Offset int
	Locals []VerificationType
	Stack  []VerificationType
}

// encodeStackMapTable serializes frames (which must be in increasing
// offset order) into StackMapTable attribute data, choosing the smallest
// frame form for each entry relative to its predecessor: same_frame,
// same_locals_1_stack_item (plus extended variants), append_frame, or
// full_frame as a fallback.
func encodeStackMapTable(pool *ConstantPool, initial []VerificationType, frames []Frame) ([]byte, error) {
	buf := binary.BigEndian.AppendUint16(nil, uint16(len(frames)))
	prevOffset := -1
	prevLocals := initial
	for i, f := range frames {
		if f.Offset <= prevOffset {
			return nil, fmt.Errorf("frame %d at offset %d not after previous offset %d", i, f.Offset, prevOffset)
		}
		delta := f.Offset - prevOffset - 1
		switch {
		case len(f.Stack) == 0 && sameTypes(f.Locals, prevLocals):
			if delta < 64 {
				buf = append(buf, uint8(delta))
			} else {
				buf = append(buf, 251)
				buf = binary.BigEndian.AppendUint16(buf, uint16(delta))
			}
		case len(f.Stack) == 1 && sameTypes(f.Locals, prevLocals):
			if delta < 64 {
				buf = append(buf, uint8(64+delta))
			} else {
				buf = append(buf, 247)
				buf = binary.BigEndian.AppendUint16(buf, uint16(delta))
			}
			buf = appendVerificationType(buf, pool, f.Stack[0])
		case len(f.Stack) == 0 && isAppend(f.Locals, prevLocals):
			k := len(f.Locals) - len(prevLocals)
			buf = append(buf, uint8(251+k))
			buf = binary.BigEndian.AppendUint16(buf, uint16(delta))
			for _, vt := range f.Locals[len(prevLocals):] {
				buf = appendVerificationType(buf, pool, vt)
			}
		default:
			buf = append(buf, 255)
			buf = binary.BigEndian.AppendUint16(buf, uint16(delta))
			buf = binary.BigEndian.AppendUint16(buf, uint16(len(f.Locals)))
			for _, vt := range f.Locals {
				buf = appendVerificationType(buf, pool, vt)
			}
			buf = binary.BigEndian.AppendUint16(buf, uint16(len(f.Stack)))
			for _, vt := range f.Stack {
				buf = appendVerificationType(buf, pool, vt)
			}
		}
		prevOffset = f.Offset
		prevLocals = f.Locals
	}
	return buf, nil
}

// initialFrameLocals derives the implicit method-entry locals the
// verifier assumes before the first explicit frame: the receiver (for
// instance methods) followed by one entry per parameter, wide kinds
// contributing a single verification slot.
func initialFrameLocals(className string, static bool, descriptor string) ([]VerificationType, error) {
	var locals []VerificationType
	if !static {
		locals = append(locals, VTObject(className))
	}
	params, err := parseParamDescriptors(descriptor)
	if err != nil {
		return nil, err
	}
	for _, p := range params {
		k, err := KindFromDescriptor(p)
		if err != nil {
			return nil, err
		}
		locals = append(locals, VTForKind(k))
	}
	return locals, nil
}

func appendVerificationType(buf []byte, pool *ConstantPool, vt VerificationType) []byte {
	buf = append(buf, vt.tag)
	if vt.tag == vtObject {
		buf = binary.BigEndian.AppendUint16(buf, pool.Class(vt.class))
	}
	return buf
}

func sameTypes(a, b []VerificationType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isAppend(locals, prev []VerificationType) bool {
	k := len(locals) - len(prev)
	if k < 1 || k > 3 {
		return false
	}
	return sameTypes(locals[:len(prev)], prev)
}
