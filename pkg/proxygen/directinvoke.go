package proxygen

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/chazu/janus/pkg/classfile"
)

// synthesizeDirectInvoke emits the private late-bound invoker backing
// the dispatch path for one contract operation: resolve a method handle
// against the live runtime by declaring interface, name, and exact
// type, bind it to the supplied receiver, unbox the incoming arguments
// to their parameter kinds, and invoke exactly. Resolution happens per
// call; there is no second cache. Failures propagate to the dispatch
// method through the declared Throwable.
func synthesizeDirectInvoke(ctx *genContext, s slot) error {
	pool := ctx.pool
	m := s.method
	cb := classfile.NewCodeBuffer()

	lookup := pool.Methodref("java/lang/invoke/MethodHandles", "lookup",
		"()Ljava/lang/invoke/MethodHandles$Lookup;")
	findVirtual := pool.Methodref("java/lang/invoke/MethodHandles$Lookup", "findVirtual",
		"(Ljava/lang/Class;Ljava/lang/String;Ljava/lang/invoke/MethodType;)Ljava/lang/invoke/MethodHandle;")
	bindTo := pool.Methodref("java/lang/invoke/MethodHandle", "bindTo",
		"(Ljava/lang/Object;)Ljava/lang/invoke/MethodHandle;")

	cb.EmitInvoke(classfile.OpInvokestatic, lookup,
		"()Ljava/lang/invoke/MethodHandles$Lookup;")
	cb.EmitLdc(pool.Class(internalName(m.Declaring)))
	cb.EmitLdc(pool.String(m.Name))
	ctx.emitKindClass(cb, m.Return)

	if len(m.Params) == 0 {
		desc := "(Ljava/lang/Class;)Ljava/lang/invoke/MethodType;"
		cb.EmitInvoke(classfile.OpInvokestatic,
			pool.Methodref("java/lang/invoke/MethodType", "methodType", desc), desc)
	} else {
		cb.EmitIconst(len(m.Params))
		cb.EmitType(classfile.OpAnewarray, pool.Class("java/lang/Class"))
		for i, p := range m.Params {
			cb.Emit(classfile.OpDup)
			cb.EmitIconst(i)
			ctx.emitKindClass(cb, p)
			cb.Emit(classfile.OpAastore)
		}
		desc := "(Ljava/lang/Class;[Ljava/lang/Class;)Ljava/lang/invoke/MethodType;"
		cb.EmitInvoke(classfile.OpInvokestatic,
			pool.Methodref("java/lang/invoke/MethodType", "methodType", desc), desc)
	}

	cb.EmitInvoke(classfile.OpInvokevirtual, findVirtual,
		"(Ljava/lang/Class;Ljava/lang/String;Ljava/lang/invoke/MethodType;)Ljava/lang/invoke/MethodHandle;")
	cb.EmitALoad(1)
	cb.EmitInvoke(classfile.OpInvokevirtual, bindTo,
		"(Ljava/lang/Object;)Ljava/lang/invoke/MethodHandle;")

	// Locals: 0 this, 1 receiver, then the argument array (when the
	// operation has parameters) and the bound handle.
	handleLocal := 2
	if len(m.Params) > 0 {
		handleLocal = 3
	}
	cb.EmitAStore(handleLocal)
	cb.EmitALoad(handleLocal)

	for i, p := range m.Params {
		cb.EmitALoad(2)
		cb.EmitIconst(i)
		cb.Emit(classfile.OpAaload)
		if p.IsPrimitive() {
			cb.EmitType(classfile.OpCheckcast, pool.Class(p.WrapperClass()))
			emitUnbox(ctx, cb, p)
		} else {
			cb.EmitType(classfile.OpCheckcast, pool.Class(p.InternalName()))
		}
	}

	exactDesc := m.Descriptor()
	cb.EmitInvoke(classfile.OpInvokevirtual,
		pool.Methodref("java/lang/invoke/MethodHandle", "invokeExact", exactDesc), exactDesc)

	switch {
	case m.Return.IsVoid():
		cb.Emit(classfile.OpReturn)
	case m.Return.IsPrimitive():
		cb.Emit(returnOpcode(m.Return))
	default:
		cb.Emit(classfile.OpAreturn)
	}

	return ctx.class.AddMethod(classfile.MethodSpec{
		Flags:      classfile.AccPrivate,
		Name:       directInvokeName(m),
		Descriptor: directInvokeDescriptor(m),
		Code:       cb,
		Throws:     []string{"java/lang/Throwable"},
	})
}

// directInvokeName derives the private invoker's name: "do" plus the
// operation name with its first rune upper-cased.
func directInvokeName(m Method) string {
	r, size := utf8.DecodeRuneInString(m.Name)
	return "do" + string(unicode.ToUpper(r)) + m.Name[size:]
}

// directInvokeDescriptor is (Object)R for a no-parameter operation,
// (Object, Object[])R otherwise: the receiver to bind plus the boxed
// argument array when one exists.
func directInvokeDescriptor(m Method) string {
	if len(m.Params) == 0 {
		return "(Ljava/lang/Object;)" + m.Return.Descriptor()
	}
	return "(Ljava/lang/Object;[Ljava/lang/Object;)" + m.Return.Descriptor()
}

func internalName(binary string) string {
	return strings.ReplaceAll(binary, ".", "/")
}
