// Package classfile builds and serializes JVM class files in memory.
// It provides the binary substrate for the proxygen synthesizers: a
// deduplicating constant pool, a code assembler with branch patching and
// exception regions, StackMapTable encoding, and big-endian serialization
// of the complete class-file structure.
//
// The package covers exactly the subset of the class-file format that
// generated proxy classes need:
//
//   - Constant pool entries: Utf8, Class, String, NameAndType, Fieldref,
//     Methodref, InterfaceMethodref
//   - Fields and methods with access flags and descriptors
//   - Code attributes with exception tables and StackMapTable frames
//   - Exceptions, SourceFile, and RuntimeVisibleAnnotations attributes
//
// # Writing code
//
// A CodeBuffer accumulates instructions and tracks operand stack depth as
// a side effect of emission, so max_stack and max_locals fall out of the
// instruction stream rather than being guessed:
//
//	cb := classfile.NewCodeBuffer()
//	cb.EmitALoad(0)
//	cb.EmitInvoke(classfile.OpInvokespecial, ref, "()V")
//	cb.Emit(classfile.OpReturn)
//
// Branch targets are patched after the fact (EmitBranch / PatchBranch),
// and exception regions are registered with AddRegion. The finished buffer
// is handed to ClassFile.AddMethod together with any verification frames.
//
// # Reading back
//
// Parse decodes a serialized class file into an inspectable structure.
// It exists for the disassembler and for tests; it is not a verifier.
package classfile
