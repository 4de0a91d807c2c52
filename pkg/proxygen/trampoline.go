package proxygen

import "github.com/chazu/janus/pkg/classfile"

// synthesizeTrampoline emits the public forwarding method for one slot:
// box the arguments, call handler.invoke(this, slot, args), and marshal
// the result back to the declared return kind. A zero-parameter
// operation passes a null array reference rather than an empty array so
// the handler can tell "no arguments" from "zero-length argument list".
//
// Unchecked failures and errors rethrow unchanged; any other throwable
// wraps in UndeclaredThrowableException so no checked failure escapes a
// signature that never declared it.
func synthesizeTrampoline(ctx *genContext, s slot) error {
	pool := ctx.pool
	m := s.method
	cb := classfile.NewCodeBuffer()

	tryStart := cb.Len()
	cb.EmitALoad(0)
	cb.EmitField(classfile.OpGetfield,
		pool.Fieldref(ctx.name, handlerField, interceptorDesc), interceptorDesc)
	cb.EmitALoad(0)
	cb.EmitField(classfile.OpGetstatic,
		pool.Fieldref(ctx.name, s.field, proxyMethodDesc), proxyMethodDesc)

	if len(m.Params) == 0 {
		cb.Emit(classfile.OpAconstNull)
		cb.EmitType(classfile.OpCheckcast, pool.Class("[Ljava/lang/Object;"))
	} else {
		cb.EmitIconst(len(m.Params))
		cb.EmitType(classfile.OpAnewarray, pool.Class(objectClass))
		local := 1 // slot 0 is the receiver
		for i, p := range m.Params {
			cb.Emit(classfile.OpDup)
			cb.EmitIconst(i)
			cb.EmitLoad(p, local)
			local += p.SlotWidth()
			if p.IsPrimitive() {
				emitBox(ctx, cb, p)
			}
			cb.Emit(classfile.OpAastore)
		}
	}

	cb.EmitInvoke(classfile.OpInvokeinterface,
		pool.InterfaceMethodref(interceptorClass, "invoke", invokeDesc), invokeDesc)

	switch {
	case m.Return.IsVoid():
		cb.Emit(classfile.OpPop)
		cb.Emit(classfile.OpReturn)
	case m.Return.IsPrimitive():
		cb.EmitType(classfile.OpCheckcast, pool.Class(m.Return.WrapperClass()))
		emitUnbox(ctx, cb, m.Return)
		cb.Emit(returnOpcode(m.Return))
	default:
		cb.EmitType(classfile.OpCheckcast, pool.Class(m.Return.InternalName()))
		cb.Emit(classfile.OpAreturn)
	}
	tryEnd := cb.Len()

	// RuntimeException and Error share one rethrow handler.
	caught := 1
	for _, p := range m.Params {
		caught += p.SlotWidth()
	}
	rethrow := cb.Len()
	cb.SetDepth(1)
	cb.EmitAStore(caught)
	cb.EmitALoad(caught)
	cb.Emit(classfile.OpAthrow)
	cb.AddRegion(tryStart, tryEnd, rethrow, "java/lang/Error")
	cb.AddRegion(tryStart, tryEnd, rethrow, "java/lang/RuntimeException")

	wrap := cb.Len()
	cb.SetDepth(1)
	cb.EmitAStore(caught)
	cb.EmitType(classfile.OpNew, pool.Class("java/lang/reflect/UndeclaredThrowableException"))
	cb.Emit(classfile.OpDup)
	cb.EmitALoad(caught)
	cb.EmitInvoke(classfile.OpInvokespecial,
		pool.Methodref("java/lang/reflect/UndeclaredThrowableException", "<init>", "(Ljava/lang/Throwable;)V"),
		"(Ljava/lang/Throwable;)V")
	cb.Emit(classfile.OpAthrow)
	cb.AddRegion(tryStart, tryEnd, wrap, "java/lang/Throwable")

	throwable := classfile.VTObject("java/lang/Throwable")
	frames := []classfile.Frame{
		{Offset: rethrow, Locals: trampolineLocals(ctx, m), Stack: []classfile.VerificationType{throwable}},
		{Offset: wrap, Locals: trampolineLocals(ctx, m), Stack: []classfile.VerificationType{throwable}},
	}

	return ctx.class.AddMethod(classfile.MethodSpec{
		Flags:      classfile.AccPublic | classfile.AccFinal,
		Name:       m.Name,
		Descriptor: m.Descriptor(),
		Code:       cb,
		Frames:     frames,
	})
}

// trampolineLocals is the verification state at the trampoline's
// handler entries: receiver plus declared parameters, untouched.
func trampolineLocals(ctx *genContext, m Method) []classfile.VerificationType {
	locals := []classfile.VerificationType{classfile.VTObject(ctx.name)}
	for _, p := range m.Params {
		locals = append(locals, classfile.VTForKind(p))
	}
	return locals
}

// emitBox converts the primitive on top of the stack to its wrapper via
// Wrapper.valueOf.
func emitBox(ctx *genContext, cb *classfile.CodeBuffer, k classfile.Kind) {
	desc := k.BoxMethodDescriptor()
	cb.EmitInvoke(classfile.OpInvokestatic,
		ctx.pool.Methodref(k.WrapperClass(), "valueOf", desc), desc)
}

// emitUnbox extracts the primitive from the wrapper reference on top of
// the stack, e.g. Integer.intValue.
func emitUnbox(ctx *genContext, cb *classfile.CodeBuffer, k classfile.Kind) {
	name, desc := k.UnboxMethod()
	cb.EmitInvoke(classfile.OpInvokevirtual,
		ctx.pool.Methodref(k.WrapperClass(), name, desc), desc)
}

// returnOpcode picks the typed return instruction for a primitive kind.
func returnOpcode(k classfile.Kind) classfile.Opcode {
	switch k {
	case classfile.Long:
		return classfile.OpLreturn
	case classfile.Float:
		return classfile.OpFreturn
	case classfile.Double:
		return classfile.OpDreturn
	default:
		return classfile.OpIreturn
	}
}
