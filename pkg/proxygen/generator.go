package proxygen

import (
	"fmt"
	"strings"

	"github.com/chazu/janus/pkg/classfile"
)

// Runtime support types referenced by generated code. They live on the
// Java side; the generator only names them.
const (
	objectClass      = "java/lang/Object"
	interceptorClass = "dev/janus/runtime/Interceptor"
	proxyMethodClass = "dev/janus/runtime/ProxyMethod"
	dispatcherClass  = "dev/janus/runtime/Dispatcher"
	markerAnnotation = "Ldev/janus/runtime/Proxied;"

	interceptorDesc = "L" + interceptorClass + ";"
	proxyMethodDesc = "L" + proxyMethodClass + ";"
	invokeDesc      = "(Ljava/lang/Object;" + proxyMethodDesc + "[Ljava/lang/Object;)Ljava/lang/Object;"
	dispatchDesc    = "(Ljava/lang/Object;Ljava/lang/reflect/Method;[Ljava/lang/Object;)Ljava/lang/Object;"

	handlerField = "handler"
	sourceFile   = "<generated>"
)

// allowedFlags are the class access flags Generate accepts.
const allowedFlags = classfile.AccPublic | classfile.AccFinal | classfile.AccSuper

// genContext carries the state of one generation pass: the artifact
// under construction and the slot table. A context is built per Generate
// call and discarded with it; nothing is shared across calls.
type genContext struct {
	class *classfile.ClassFile
	pool  *classfile.ConstantPool
	name  string // internal name of the class being generated
	slots []slot
}

// Generate synthesizes a proxy class file. name is the binary class
// name, flags the class access flags (public/final; ACC_SUPER is set
// regardless), contracts the interfaces to implement. The returned
// bytes are a complete class file ready for a JVM class loader.
func Generate(name string, flags uint16, contracts []*Contract) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty class name", ErrInvalidContract)
	}
	if strings.ContainsAny(name, ";/[") {
		return nil, fmt.Errorf("%w: illegal class name %q", ErrInvalidContract, name)
	}
	if flags&^allowedFlags != 0 {
		return nil, fmt.Errorf("%w: unsupported class access flags %#x", ErrInvalidContract, flags&^allowedFlags)
	}

	slots, err := collectMethods(contracts)
	if err != nil {
		return nil, err
	}

	internal := strings.ReplaceAll(name, ".", "/")
	cf := classfile.New(internal, objectClass, flags|classfile.AccSuper)
	cf.SetSourceFile(sourceFile)
	cf.AddMarkerAnnotation(markerAnnotation)
	for _, c := range contracts {
		cf.AddInterface(c.InternalName())
	}
	cf.AddInterface(dispatcherClass)

	ctx := &genContext{class: cf, pool: cf.Pool(), name: internal, slots: slots}

	for _, s := range ctx.slots {
		cf.AddField(classfile.AccPrivate|classfile.AccStatic|classfile.AccFinal, s.field, proxyMethodDesc)
	}
	cf.AddField(classfile.AccPrivate|classfile.AccFinal, handlerField, interceptorDesc)

	if err := synthesizeStaticInit(ctx); err != nil {
		return nil, err
	}
	if err := synthesizeConstructor(ctx); err != nil {
		return nil, err
	}
	for _, s := range ctx.slots {
		if err := synthesizeTrampoline(ctx, s); err != nil {
			return nil, err
		}
	}
	if err := synthesizeDispatch(ctx); err != nil {
		return nil, err
	}
	for _, s := range ctx.slots {
		if s.universal {
			continue
		}
		if err := synthesizeDirectInvoke(ctx, s); err != nil {
			return nil, err
		}
	}

	return cf.Serialize()
}

// wrapperTypeRef interns the Wrapper.TYPE field reference that yields a
// primitive kind's Class object, e.g. Integer.TYPE for int.
func (ctx *genContext) wrapperTypeRef(k classfile.Kind) uint16 {
	return ctx.pool.Fieldref(k.WrapperClass(), "TYPE", "Ljava/lang/Class;")
}

// emitKindClass pushes the Class object for a kind: Wrapper.TYPE for
// primitives and void, an ldc class constant for references.
func (ctx *genContext) emitKindClass(cb *classfile.CodeBuffer, k classfile.Kind) {
	if k.IsReference() {
		cb.EmitLdc(ctx.pool.Class(k.InternalName()))
		return
	}
	cb.EmitField(classfile.OpGetstatic, ctx.wrapperTypeRef(k), "Ljava/lang/Class;")
}
