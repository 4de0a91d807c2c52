package proxygen

import "github.com/chazu/janus/pkg/classfile"

// synthesizeConstructor emits the single public constructor: delegate
// to Object.<init>, then store the interception handler into the final
// instance field. The handler value is stored as given, without
// validation.
func synthesizeConstructor(ctx *genContext) error {
	pool := ctx.pool
	cb := classfile.NewCodeBuffer()
	cb.EmitALoad(0)
	cb.EmitInvoke(classfile.OpInvokespecial,
		pool.Methodref(objectClass, "<init>", "()V"), "()V")
	cb.EmitALoad(0)
	cb.EmitALoad(1)
	cb.EmitField(classfile.OpPutfield,
		pool.Fieldref(ctx.name, handlerField, interceptorDesc), interceptorDesc)
	cb.Emit(classfile.OpReturn)

	return ctx.class.AddMethod(classfile.MethodSpec{
		Flags:      classfile.AccPublic,
		Name:       "<init>",
		Descriptor: "(" + interceptorDesc + ")V",
		Code:       cb,
	})
}
