package classfile

import (
	"fmt"
	"strings"
)

// Kind classifies a JVM value type: one of the eight primitives, void, or
// a reference type carrying its binary (dot-separated) class name. Kind is
// a small comparable value; signature-equal kinds compare equal with ==.
type Kind struct {
	base byte   // 'Z','B','S','C','I','J','F','D','V', or 'L' for references
	name string // binary class name, reference kinds only
}

// Primitive and void kinds.
var (
	Boolean = Kind{base: 'Z'}
	Byte    = Kind{base: 'B'}
	Short   = Kind{base: 'S'}
	Char    = Kind{base: 'C'}
	Int     = Kind{base: 'I'}
	Long    = Kind{base: 'J'}
	Float   = Kind{base: 'F'}
	Double  = Kind{base: 'D'}
	Void    = Kind{base: 'V'}
)

// Object returns the reference kind for the given binary class name,
// e.g. "java.lang.String".
func Object(binaryName string) Kind {
	return Kind{base: 'L', name: binaryName}
}

// Array returns the kind describing an array of elem. The binary name of
// an array type is its descriptor in dot form, per Class.getName.
func Array(elem Kind) Kind {
	if elem.base == 'V' {
		panic("classfile: array of void")
	}
	if elem.base == 'L' && !strings.HasPrefix(elem.name, "[") {
		return Kind{base: 'L', name: "[L" + elem.name + ";"}
	}
	if elem.base == 'L' {
		return Kind{base: 'L', name: "[" + elem.name}
	}
	return Kind{base: 'L', name: "[" + string(elem.base)}
}

// IsPrimitive reports whether k is one of the eight primitive kinds.
func (k Kind) IsPrimitive() bool { return k.base != 'L' && k.base != 'V' }

// IsVoid reports whether k is the void kind.
func (k Kind) IsVoid() bool { return k.base == 'V' }

// IsReference reports whether k is a class or array type.
func (k Kind) IsReference() bool { return k.base == 'L' }

// IsWide reports whether k occupies two local/stack slots (long or double).
func (k Kind) IsWide() bool { return k.base == 'J' || k.base == 'D' }

// SlotWidth returns the number of local-variable or stack words k
// occupies: 2 for long/double, 0 for void, 1 otherwise.
func (k Kind) SlotWidth() int {
	switch k.base {
	case 'J', 'D':
		return 2
	case 'V':
		return 0
	default:
		return 1
	}
}

// Descriptor returns the field descriptor for k, e.g. "I" or
// "Ljava/lang/String;". Array kinds yield their bracketed form directly.
func (k Kind) Descriptor() string {
	if k.base != 'L' {
		return string(k.base)
	}
	internal := strings.ReplaceAll(k.name, ".", "/")
	if strings.HasPrefix(internal, "[") {
		return internal
	}
	return "L" + internal + ";"
}

// InternalName returns the slash-separated name used in constant-pool
// Class entries. For array kinds this is the descriptor form. Primitives
// have no internal name; calling this on one is a programming error.
func (k Kind) InternalName() string {
	if k.base != 'L' {
		panic(fmt.Sprintf("classfile: no internal name for kind %s", k))
	}
	return strings.ReplaceAll(k.name, ".", "/")
}

// BinaryName returns the dot-separated name reported by Class.getName,
// used for Class.forName string constants in generated code.
func (k Kind) BinaryName() string {
	if k.base != 'L' {
		panic(fmt.Sprintf("classfile: no binary name for kind %s", k))
	}
	return k.name
}

// WrapperClass returns the internal name of the boxed counterpart of a
// primitive kind, e.g. "java/lang/Integer" for Int.
func (k Kind) WrapperClass() string {
	switch k.base {
	case 'Z':
		return "java/lang/Boolean"
	case 'B':
		return "java/lang/Byte"
	case 'S':
		return "java/lang/Short"
	case 'C':
		return "java/lang/Character"
	case 'I':
		return "java/lang/Integer"
	case 'J':
		return "java/lang/Long"
	case 'F':
		return "java/lang/Float"
	case 'D':
		return "java/lang/Double"
	case 'V':
		return "java/lang/Void"
	}
	panic(fmt.Sprintf("classfile: no wrapper for kind %s", k))
}

// UnboxMethod returns the wrapper method that extracts the primitive
// value, with its descriptor, e.g. ("intValue", "()I").
func (k Kind) UnboxMethod() (name, descriptor string) {
	switch k.base {
	case 'Z':
		return "booleanValue", "()Z"
	case 'B':
		return "byteValue", "()B"
	case 'S':
		return "shortValue", "()S"
	case 'C':
		return "charValue", "()C"
	case 'I':
		return "intValue", "()I"
	case 'J':
		return "longValue", "()J"
	case 'F':
		return "floatValue", "()F"
	case 'D':
		return "doubleValue", "()D"
	}
	panic(fmt.Sprintf("classfile: kind %s cannot be unboxed", k))
}

// BoxMethodDescriptor returns the descriptor of Wrapper.valueOf for a
// primitive kind, e.g. "(I)Ljava/lang/Integer;".
func (k Kind) BoxMethodDescriptor() string {
	return "(" + string(k.base) + ")L" + k.WrapperClass() + ";"
}

// String returns a human-readable form: "int", "java.lang.String",
// "long[]".
func (k Kind) String() string {
	switch k.base {
	case 'Z':
		return "boolean"
	case 'B':
		return "byte"
	case 'S':
		return "short"
	case 'C':
		return "char"
	case 'I':
		return "int"
	case 'J':
		return "long"
	case 'F':
		return "float"
	case 'D':
		return "double"
	case 'V':
		return "void"
	}
	if strings.HasPrefix(k.name, "[") {
		if elem, err := KindFromDescriptor(strings.ReplaceAll(k.name[1:], ".", "/")); err == nil {
			return elem.String() + "[]"
		}
	}
	return k.name
}

// MethodDescriptor assembles a method descriptor from parameter kinds and
// a return kind, e.g. "(ILjava/lang/String;)V".
func MethodDescriptor(params []Kind, ret Kind) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for _, p := range params {
		sb.WriteString(p.Descriptor())
	}
	sb.WriteByte(')')
	if ret.IsVoid() {
		sb.WriteByte('V')
	} else {
		sb.WriteString(ret.Descriptor())
	}
	return sb.String()
}

// KindFromDescriptor parses a single field descriptor (slash form) back
// into a Kind. Used by the reader and the disassembler.
func KindFromDescriptor(desc string) (Kind, error) {
	if desc == "" {
		return Kind{}, fmt.Errorf("empty descriptor")
	}
	switch desc[0] {
	case 'Z', 'B', 'S', 'C', 'I', 'J', 'F', 'D', 'V':
		if len(desc) != 1 {
			return Kind{}, fmt.Errorf("trailing characters in descriptor %q", desc)
		}
		return Kind{base: desc[0]}, nil
	case 'L':
		if !strings.HasSuffix(desc, ";") {
			return Kind{}, fmt.Errorf("unterminated class descriptor %q", desc)
		}
		return Object(strings.ReplaceAll(desc[1:len(desc)-1], "/", ".")), nil
	case '[':
		elem, err := KindFromDescriptor(desc[1:])
		if err != nil {
			return Kind{}, err
		}
		return Array(elem), nil
	}
	return Kind{}, fmt.Errorf("unknown descriptor %q", desc)
}

// descriptorWords returns the number of argument words and return words
// of a method descriptor. Used by the code buffer to track stack effects
// of invoke instructions.
func descriptorWords(desc string) (args, ret int) {
	i := 1 // skip '('
	for i < len(desc) && desc[i] != ')' {
		switch desc[i] {
		case 'J', 'D':
			args += 2
			i++
		case 'L':
			args++
			for i < len(desc) && desc[i] != ';' {
				i++
			}
			i++
		case '[':
			args++
			for i < len(desc) && desc[i] == '[' {
				i++
			}
			if i < len(desc) && desc[i] == 'L' {
				for i < len(desc) && desc[i] != ';' {
					i++
				}
			}
			i++
		default:
			args++
			i++
		}
	}
	i++ // skip ')'
	if i < len(desc) {
		switch desc[i] {
		case 'V':
			ret = 0
		case 'J', 'D':
			ret = 2
		default:
			ret = 1
		}
	}
	return args, ret
}

// parseParamDescriptors splits a method descriptor into its parameter
// field descriptors.
func parseParamDescriptors(desc string) ([]string, error) {
	if len(desc) < 2 || desc[0] != '(' {
		return nil, fmt.Errorf("malformed method descriptor %q", desc)
	}
	var params []string
	i := 1
	for i < len(desc) && desc[i] != ')' {
		start := i
		for i < len(desc) && desc[i] == '[' {
			i++
		}
		if i >= len(desc) {
			return nil, fmt.Errorf("malformed method descriptor %q", desc)
		}
		if desc[i] == 'L' {
			for i < len(desc) && desc[i] != ';' {
				i++
			}
			if i >= len(desc) {
				return nil, fmt.Errorf("unterminated class descriptor in %q", desc)
			}
		}
		i++
		params = append(params, desc[start:i])
	}
	if i >= len(desc) || desc[i] != ')' {
		return nil, fmt.Errorf("malformed method descriptor %q", desc)
	}
	return params, nil
}

// fieldWords returns the stack width of a field descriptor.
func fieldWords(desc string) int {
	switch desc[0] {
	case 'J', 'D':
		return 2
	}
	return 1
}
