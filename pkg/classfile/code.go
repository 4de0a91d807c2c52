package classfile

import (
	"encoding/binary"
	"fmt"
)

// Region is one exception-table entry: [Start, End) is the guarded range,
// Handler the entry offset of the handler, CatchType the internal name of
// the caught class ("" catches everything).
type Region struct {
	Start, End, Handler int
	CatchType           string
}

// CodeBuffer assembles the bytecode of one method. It tracks operand
// stack depth as instructions are emitted so max_stack comes out of the
// emission itself, and it records the local-variable high-water mark from
// load/store slots. Branches are emitted with placeholder offsets and
// patched once their target offset is known.
//
// Depth tracking is linear: at points the verifier treats as fresh
// entries (branch targets after a terminator, exception handler entries)
// the synthesizer must re-seed the depth with SetDepth.
type CodeBuffer struct {
	code      []byte
	depth     int
	maxStack  int
	maxLocals int
	regions   []Region
	err       error
}

// NewCodeBuffer returns an empty buffer.
func NewCodeBuffer() *CodeBuffer {
	return &CodeBuffer{code: make([]byte, 0, 64)}
}

func (cb *CodeBuffer) fail(format string, args ...any) {
	if cb.err == nil {
		cb.err = fmt.Errorf(format, args...)
	}
}

func (cb *CodeBuffer) track(delta int) {
	cb.depth += delta
	if cb.depth < 0 {
		cb.fail("operand stack underflow at offset %d", len(cb.code))
		cb.depth = 0
	}
	if cb.depth > cb.maxStack {
		cb.maxStack = cb.depth
	}
}

// Len returns the current code length, which is also the offset of the
// next instruction.
func (cb *CodeBuffer) Len() int { return len(cb.code) }

// Bytes returns the assembled code.
func (cb *CodeBuffer) Bytes() []byte { return cb.code }

// Err returns the first assembly error, if any.
func (cb *CodeBuffer) Err() error { return cb.err }

// MaxStack returns the tracked operand stack high-water mark.
func (cb *CodeBuffer) MaxStack() int { return cb.maxStack }

// MaxLocals returns the local-variable high-water mark.
func (cb *CodeBuffer) MaxLocals() int { return cb.maxLocals }

// ReserveLocals raises the local high-water mark to at least n slots.
// Parameters occupy locals whether or not the body touches them.
func (cb *CodeBuffer) ReserveLocals(n int) {
	if n > cb.maxLocals {
		cb.maxLocals = n
	}
}

// SetDepth re-seeds the tracked stack depth. Call at exception handler
// entries (depth 1: the thrown value) and at branch targets that follow a
// terminating instruction.
func (cb *CodeBuffer) SetDepth(n int) {
	cb.depth = n
	if n > cb.maxStack {
		cb.maxStack = n
	}
}

// Emit appends an operand-less instruction with a fixed stack effect.
func (cb *CodeBuffer) Emit(op Opcode) int {
	info, ok := opTable[op]
	if !ok || info.operands != operandNone || info.effectVaries {
		cb.fail("opcode %s cannot be emitted without operands", op)
		return len(cb.code)
	}
	offset := len(cb.code)
	cb.code = append(cb.code, byte(op))
	cb.track(info.effect)
	return offset
}

// EmitIconst pushes a small int constant using the shortest encoding.
func (cb *CodeBuffer) EmitIconst(n int) {
	switch {
	case n >= -1 && n <= 5:
		cb.code = append(cb.code, byte(OpIconst0)+byte(n))
	case n >= -128 && n <= 127:
		cb.code = append(cb.code, byte(OpBipush), byte(int8(n)))
	case n >= -32768 && n <= 32767:
		cb.code = append(cb.code, byte(OpSipush))
		cb.code = binary.BigEndian.AppendUint16(cb.code, uint16(int16(n)))
	default:
		cb.fail("iconst operand %d out of range", n)
		return
	}
	cb.track(+1)
}

// EmitLdc pushes a loadable constant-pool entry, choosing ldc or ldc_w by
// index width. Only single-word constants (Class, String) are emitted by
// this package.
func (cb *CodeBuffer) EmitLdc(index uint16) {
	if index <= 0xFF {
		cb.code = append(cb.code, byte(OpLdc), byte(index))
	} else {
		cb.code = append(cb.code, byte(OpLdcW))
		cb.code = binary.BigEndian.AppendUint16(cb.code, index)
	}
	cb.track(+1)
}

// EmitLoad loads a value of the given kind from a local slot, using the
// short form when one exists.
func (cb *CodeBuffer) EmitLoad(k Kind, slot int) {
	var long, short Opcode
	switch {
	case k.IsReference():
		long, short = OpAload, OpAload0
	case k == Long:
		long, short = OpLload, OpLload0
	case k == Float:
		long, short = OpFload, OpFload0
	case k == Double:
		long, short = OpDload, OpDload0
	case k.IsVoid():
		cb.fail("cannot load a void value")
		return
	default:
		long, short = OpIload, OpIload0 // boolean..int share the int loads
	}
	cb.emitSlot(long, short, slot)
	cb.track(k.SlotWidth())
	cb.noteLocal(slot + k.SlotWidth())
}

// EmitALoad loads a reference from a local slot.
func (cb *CodeBuffer) EmitALoad(slot int) { cb.EmitLoad(Object("java.lang.Object"), slot) }

// EmitAStore stores a reference to a local slot.
func (cb *CodeBuffer) EmitAStore(slot int) {
	cb.emitSlot(OpAstore, OpAstore0, slot)
	cb.track(-1)
	cb.noteLocal(slot + 1)
}

func (cb *CodeBuffer) emitSlot(long, short Opcode, slot int) {
	if slot < 0 || slot > 0xFF {
		cb.fail("local slot %d out of range", slot)
		return
	}
	if slot < 4 {
		cb.code = append(cb.code, byte(short)+byte(slot))
		return
	}
	cb.code = append(cb.code, byte(long), byte(slot))
}

func (cb *CodeBuffer) noteLocal(n int) {
	if n > cb.maxLocals {
		cb.maxLocals = n
	}
}

// EmitField emits a get/put static/field instruction. The descriptor
// determines the stack effect.
func (cb *CodeBuffer) EmitField(op Opcode, index uint16, descriptor string) {
	w := fieldWords(descriptor)
	var delta int
	switch op {
	case OpGetstatic:
		delta = w
	case OpPutstatic:
		delta = -w
	case OpGetfield:
		delta = w - 1
	case OpPutfield:
		delta = -w - 1
	default:
		cb.fail("EmitField: %s is not a field instruction", op)
		return
	}
	cb.code = append(cb.code, byte(op))
	cb.code = binary.BigEndian.AppendUint16(cb.code, index)
	cb.track(delta)
}

// EmitInvoke emits an invoke instruction; the method descriptor drives the
// stack effect and the invokeinterface count byte.
func (cb *CodeBuffer) EmitInvoke(op Opcode, index uint16, descriptor string) {
	args, ret := descriptorWords(descriptor)
	recv := 1
	if op == OpInvokestatic {
		recv = 0
	}
	switch op {
	case OpInvokevirtual, OpInvokespecial, OpInvokestatic, OpInvokeinterface:
	default:
		cb.fail("EmitInvoke: %s is not an invoke instruction", op)
		return
	}
	cb.code = append(cb.code, byte(op))
	cb.code = binary.BigEndian.AppendUint16(cb.code, index)
	if op == OpInvokeinterface {
		cb.code = append(cb.code, byte(args+1), 0)
	}
	cb.track(ret - args - recv)
}

// EmitType emits new / anewarray / checkcast / instanceof with a Class
// constant operand.
func (cb *CodeBuffer) EmitType(op Opcode, index uint16) {
	switch op {
	case OpNew:
		cb.track(+1)
	case OpAnewarray, OpCheckcast, OpInstanceof:
		// count in, reference out: net zero
	default:
		cb.fail("EmitType: %s does not take a class operand", op)
		return
	}
	cb.code = append(cb.code, byte(op))
	cb.code = binary.BigEndian.AppendUint16(cb.code, index)
}

// EmitBranch emits a branch instruction with a placeholder offset and
// returns the instruction's offset for later patching.
func (cb *CodeBuffer) EmitBranch(op Opcode) int {
	info, ok := opTable[op]
	if !ok || info.operands != operandBranch {
		cb.fail("EmitBranch: %s is not a branch instruction", op)
		return len(cb.code)
	}
	site := len(cb.code)
	cb.code = append(cb.code, byte(op), 0xFF, 0xFF)
	cb.track(info.effect)
	return site
}

// PatchBranch resolves a branch emitted by EmitBranch to jump to target.
// Branch offsets are relative to the branch instruction itself.
func (cb *CodeBuffer) PatchBranch(site, target int) {
	delta := target - site
	if delta < -32768 || delta > 32767 {
		cb.fail("branch offset %d out of 16-bit range", delta)
		return
	}
	binary.BigEndian.PutUint16(cb.code[site+1:], uint16(int16(delta)))
}

// AddRegion registers an exception-table entry covering [start, end) with
// the given handler offset and caught class (internal name).
func (cb *CodeBuffer) AddRegion(start, end, handler int, catchType string) {
	cb.regions = append(cb.regions, Region{Start: start, End: end, Handler: handler, CatchType: catchType})
}

// Regions returns the registered exception-table entries in emission
// order.
func (cb *CodeBuffer) Regions() []Region { return cb.regions }
