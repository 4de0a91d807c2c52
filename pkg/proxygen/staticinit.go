package proxygen

import "github.com/chazu/janus/pkg/classfile"

// synthesizeStaticInit emits <clinit>: for each slot in table order,
// resolve the declaring class by name, resolve the method by name and
// exact parameter classes, wrap it in a ProxyMethod, and store it into
// the slot's static field. All resolutions share one guarded region
// with two failure translations, so a proxy whose backing contracts
// changed since generation fails at type initialization, not at first
// call: NoSuchMethodException becomes NoSuchMethodError and
// ClassNotFoundException becomes NoClassDefFoundError.
func synthesizeStaticInit(ctx *genContext) error {
	pool := ctx.pool
	cb := classfile.NewCodeBuffer()

	forName := pool.Methodref("java/lang/Class", "forName", "(Ljava/lang/String;)Ljava/lang/Class;")
	getMethod := pool.Methodref("java/lang/Class", "getMethod",
		"(Ljava/lang/String;[Ljava/lang/Class;)Ljava/lang/reflect/Method;")
	proxyMethodOf := pool.Methodref(proxyMethodClass, "of",
		"(Ljava/lang/reflect/Method;)"+proxyMethodDesc)
	classClass := pool.Class("java/lang/Class")

	tryStart := cb.Len()
	for _, s := range ctx.slots {
		m := s.method
		cb.EmitLdc(pool.String(m.Declaring))
		cb.EmitInvoke(classfile.OpInvokestatic, forName, "(Ljava/lang/String;)Ljava/lang/Class;")
		cb.EmitLdc(pool.String(m.Name))
		cb.EmitIconst(len(m.Params))
		cb.EmitType(classfile.OpAnewarray, classClass)
		for i, p := range m.Params {
			cb.Emit(classfile.OpDup)
			cb.EmitIconst(i)
			ctx.emitKindClass(cb, p)
			cb.Emit(classfile.OpAastore)
		}
		cb.EmitInvoke(classfile.OpInvokevirtual, getMethod,
			"(Ljava/lang/String;[Ljava/lang/Class;)Ljava/lang/reflect/Method;")
		cb.EmitInvoke(classfile.OpInvokestatic, proxyMethodOf,
			"(Ljava/lang/reflect/Method;)"+proxyMethodDesc)
		cb.EmitField(classfile.OpPutstatic, pool.Fieldref(ctx.name, s.field, proxyMethodDesc), proxyMethodDesc)
	}
	tryEnd := cb.Len()
	exit := cb.EmitBranch(classfile.OpGoto)

	missingMethod := cb.Len()
	cb.SetDepth(1)
	emitLinkageTranslation(ctx, cb, "java/lang/NoSuchMethodException", "java/lang/NoSuchMethodError")
	cb.AddRegion(tryStart, tryEnd, missingMethod, "java/lang/NoSuchMethodException")

	missingClass := cb.Len()
	cb.SetDepth(1)
	emitLinkageTranslation(ctx, cb, "java/lang/ClassNotFoundException", "java/lang/NoClassDefFoundError")
	cb.AddRegion(tryStart, tryEnd, missingClass, "java/lang/ClassNotFoundException")

	ret := cb.Len()
	cb.SetDepth(0)
	cb.Emit(classfile.OpReturn)
	cb.PatchBranch(exit, ret)

	frames := []classfile.Frame{
		{Offset: missingMethod, Stack: []classfile.VerificationType{classfile.VTObject("java/lang/NoSuchMethodException")}},
		{Offset: missingClass, Stack: []classfile.VerificationType{classfile.VTObject("java/lang/ClassNotFoundException")}},
		{Offset: ret},
	}

	return ctx.class.AddMethod(classfile.MethodSpec{
		Flags:      classfile.AccStatic,
		Name:       "<clinit>",
		Descriptor: "()V",
		Code:       cb,
		Frames:     frames,
	})
}

// emitLinkageTranslation emits one handler body: store the caught
// exception, raise the corresponding linkage error carrying its
// message.
func emitLinkageTranslation(ctx *genContext, cb *classfile.CodeBuffer, caught, raised string) {
	pool := ctx.pool
	cb.EmitAStore(0)
	cb.EmitType(classfile.OpNew, pool.Class(raised))
	cb.Emit(classfile.OpDup)
	cb.EmitALoad(0)
	cb.EmitInvoke(classfile.OpInvokevirtual,
		pool.Methodref(caught, "getMessage", "()Ljava/lang/String;"), "()Ljava/lang/String;")
	cb.EmitInvoke(classfile.OpInvokespecial,
		pool.Methodref(raised, "<init>", "(Ljava/lang/String;)V"), "(Ljava/lang/String;)V")
	cb.Emit(classfile.OpAthrow)
}
