package proxygen

import "github.com/chazu/janus/pkg/classfile"

// synthesizeDispatch emits the name-routed secondary invocation method,
// dispatch(Object, Method, Object[]) Object. The incoming method's name
// is tested against each implemented operation in collection order via
// a linear chain of String.equals: the three universal names route to
// superclass calls, each contract operation to its private direct-invoke
// method with the result boxed, and an unrecognized name falls through
// to a null return. Matching is by name only; when overloads share a
// name the first in collection order wins.
func synthesizeDispatch(ctx *genContext) error {
	pool := ctx.pool
	cb := classfile.NewCodeBuffer()

	stringEquals := pool.Methodref("java/lang/String", "equals", "(Ljava/lang/Object;)Z")
	getName := pool.Methodref("java/lang/reflect/Method", "getName", "()Ljava/lang/String;")

	// Locals: 0 this, 1 receiver, 2 method, 3 args, 4 name.
	const nameLocal = 4
	cb.EmitALoad(2)
	cb.EmitInvoke(classfile.OpInvokevirtual, getName, "()Ljava/lang/String;")
	cb.EmitAStore(nameLocal)

	chainLocals := dispatchChainLocals(ctx)
	var frames []classfile.Frame
	pending := -1

	beginCase := func(name string) {
		if pending >= 0 {
			entry := cb.Len()
			cb.SetDepth(0)
			cb.PatchBranch(pending, entry)
			frames = append(frames, classfile.Frame{Offset: entry, Locals: chainLocals})
		}
		cb.EmitLdc(pool.String(name))
		cb.EmitALoad(nameLocal)
		cb.EmitInvoke(classfile.OpInvokevirtual, stringEquals, "(Ljava/lang/Object;)Z")
		pending = cb.EmitBranch(classfile.OpIfeq)
	}

	// Universal operations resolve against the superclass on this.
	beginCase("equals")
	cb.EmitALoad(0)
	cb.EmitALoad(3)
	cb.EmitIconst(0)
	cb.Emit(classfile.OpAaload)
	cb.EmitInvoke(classfile.OpInvokespecial,
		pool.Methodref(objectClass, "equals", "(Ljava/lang/Object;)Z"), "(Ljava/lang/Object;)Z")
	emitBox(ctx, cb, classfile.Boolean)
	cb.Emit(classfile.OpAreturn)

	beginCase("hashCode")
	cb.EmitALoad(0)
	cb.EmitInvoke(classfile.OpInvokespecial,
		pool.Methodref(objectClass, "hashCode", "()I"), "()I")
	emitBox(ctx, cb, classfile.Int)
	cb.Emit(classfile.OpAreturn)

	beginCase("toString")
	cb.EmitALoad(0)
	cb.EmitInvoke(classfile.OpInvokespecial,
		pool.Methodref(objectClass, "toString", "()Ljava/lang/String;"), "()Ljava/lang/String;")
	cb.Emit(classfile.OpAreturn)

	for _, s := range ctx.slots {
		if s.universal {
			continue
		}
		m := s.method
		beginCase(m.Name)
		cb.EmitALoad(0)
		cb.EmitALoad(1)
		doDesc := directInvokeDescriptor(m)
		if len(m.Params) > 0 {
			cb.EmitALoad(3)
		}
		cb.EmitInvoke(classfile.OpInvokevirtual,
			pool.Methodref(ctx.name, directInvokeName(m), doDesc), doDesc)
		switch {
		case m.Return.IsVoid():
			cb.Emit(classfile.OpAconstNull)
		case m.Return.IsPrimitive():
			emitBox(ctx, cb, m.Return)
		}
		cb.Emit(classfile.OpAreturn)
	}

	// Fall-through: unrecognized name yields an absent result.
	miss := cb.Len()
	cb.SetDepth(0)
	cb.PatchBranch(pending, miss)
	frames = append(frames, classfile.Frame{Offset: miss, Locals: chainLocals})
	cb.Emit(classfile.OpAconstNull)
	cb.Emit(classfile.OpAreturn)

	return ctx.class.AddMethod(classfile.MethodSpec{
		Flags:      classfile.AccPublic | classfile.AccFinal,
		Name:       "dispatch",
		Descriptor: dispatchDesc,
		Code:       cb,
		Frames:     frames,
		Throws:     []string{"java/lang/Throwable"},
	})
}

// dispatchChainLocals is the verification state at every chain join:
// the declared parameters plus the extracted name local.
func dispatchChainLocals(ctx *genContext) []classfile.VerificationType {
	return []classfile.VerificationType{
		classfile.VTObject(ctx.name),
		classfile.VTObject(objectClass),
		classfile.VTObject("java/lang/reflect/Method"),
		classfile.VTObject("[Ljava/lang/Object;"),
		classfile.VTObject("java/lang/String"),
	}
}
