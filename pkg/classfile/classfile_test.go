package classfile

import (
	"encoding/binary"
	"testing"
)

// buildSampleClass assembles a minimal class with one field and one
// method carrying an exception region and a handler frame.
func buildSampleClass(t *testing.T) []byte {
	t.Helper()
	cf := New("demo/Sample", "java/lang/Object", AccPublic|AccSuper|AccFinal)
	cf.SetSourceFile("<generated>")
	cf.AddInterface("demo/Marker")
	cf.AddField(AccPrivate|AccFinal, "value", "I")

	pool := cf.Pool()
	cb := NewCodeBuffer()
	start := cb.Len()
	cb.EmitALoad(0)
	cb.EmitInvoke(OpInvokespecial, pool.Methodref("java/lang/Object", "<init>", "()V"), "()V")
	end := cb.Emit(OpReturn)
	handler := cb.Len()
	cb.SetDepth(1)
	cb.EmitAStore(1)
	cb.Emit(OpReturn)
	cb.AddRegion(start, end, handler, "java/lang/Exception")

	frames := []Frame{{
		Offset: handler,
		Locals: []VerificationType{VTObject("demo/Sample")},
		Stack:  []VerificationType{VTObject("java/lang/Exception")},
	}}
	spec := MethodSpec{
		Flags:      AccPublic,
		Name:       "<init>",
		Descriptor: "()V",
		Code:       cb,
		Frames:     frames,
	}
	if err := cf.AddMethod(spec); err != nil {
		t.Fatalf("AddMethod: %v", err)
	}

	data, err := cf.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	return data
}

func TestSerializeHeader(t *testing.T) {
	data := buildSampleClass(t)
	if got := binary.BigEndian.Uint32(data); got != Magic {
		t.Errorf("magic = 0x%08X, want 0x%08X", got, Magic)
	}
	if got := binary.BigEndian.Uint16(data[6:]); got != DefaultMajorVersion {
		t.Errorf("major version = %d, want %d", got, DefaultMajorVersion)
	}
}

func TestRoundTripThroughReader(t *testing.T) {
	data := buildSampleClass(t)
	pc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if pc.ThisClass != "demo/Sample" {
		t.Errorf("ThisClass = %q, want %q", pc.ThisClass, "demo/Sample")
	}
	if pc.SuperClass != "java/lang/Object" {
		t.Errorf("SuperClass = %q, want %q", pc.SuperClass, "java/lang/Object")
	}
	if !pc.HasInterface("demo/Marker") {
		t.Error("interface demo/Marker missing")
	}
	if f := pc.Field("value"); f == nil || f.Descriptor != "I" {
		t.Errorf("field value not round-tripped: %+v", f)
	}

	m := pc.Method("<init>", "()V")
	if m == nil {
		t.Fatal("constructor missing")
	}
	code, err := m.Code()
	if err != nil {
		t.Fatalf("Code: %v", err)
	}
	if len(code.Exceptions) != 1 {
		t.Fatalf("got %d exception entries, want 1", len(code.Exceptions))
	}
	if code.Exceptions[0].CatchType != "java/lang/Exception" {
		t.Errorf("catch type = %q, want java/lang/Exception", code.Exceptions[0].CatchType)
	}
	if code.FrameCount() != 1 {
		t.Errorf("frame count = %d, want 1", code.FrameCount())
	}
	// Constructor: this + exception store slot.
	if code.MaxLocals != 2 {
		t.Errorf("MaxLocals = %d, want 2", code.MaxLocals)
	}
}

func TestMethodThrowsAttribute(t *testing.T) {
	cf := New("demo/Thrower", "java/lang/Object", AccPublic|AccSuper)
	cb := NewCodeBuffer()
	cb.Emit(OpAconstNull)
	cb.Emit(OpAreturn)
	err := cf.AddMethod(MethodSpec{
		Flags:      AccPublic,
		Name:       "run",
		Descriptor: "()Ljava/lang/Object;",
		Code:       cb,
		Throws:     []string{"java/lang/Throwable"},
	})
	if err != nil {
		t.Fatalf("AddMethod: %v", err)
	}
	data, err := cf.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	pc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	throws := pc.Method("run", "").Throws()
	if len(throws) != 1 || throws[0] != "java/lang/Throwable" {
		t.Errorf("Throws = %v, want [java/lang/Throwable]", throws)
	}
}

func TestAddMethodRejectsBrokenCode(t *testing.T) {
	cf := New("demo/Broken", "java/lang/Object", AccPublic)
	cb := NewCodeBuffer()
	cb.Emit(OpPop) // underflow
	if err := cf.AddMethod(MethodSpec{Flags: AccPublic, Name: "m", Descriptor: "()V", Code: cb}); err == nil {
		t.Error("expected error from broken code buffer")
	}
}

func TestMarkerAnnotationSerializes(t *testing.T) {
	cf := New("demo/Annotated", "java/lang/Object", AccPublic)
	cf.AddMarkerAnnotation("Ldemo/Marker;")
	cb := NewCodeBuffer()
	cb.Emit(OpReturn)
	if err := cf.AddMethod(MethodSpec{Flags: AccPublic, Name: "m", Descriptor: "()V", Code: cb}); err != nil {
		t.Fatalf("AddMethod: %v", err)
	}
	data, err := cf.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	pc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	found := false
	for _, a := range pc.Attributes {
		if a.Name == AttrRuntimeVisibleAnnotations {
			found = true
			if got := binary.BigEndian.Uint16(a.Data); got != 1 {
				t.Errorf("num_annotations = %d, want 1", got)
			}
		}
	}
	if !found {
		t.Error("RuntimeVisibleAnnotations attribute missing")
	}
}
