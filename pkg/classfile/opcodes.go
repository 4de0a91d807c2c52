package classfile

import "fmt"

// Opcode is a JVM instruction opcode. Only the subset that generated
// proxy classes use is listed; the disassembler falls back to a numeric
// form for anything else.
type Opcode byte

const (
	// ========================================================================
	// Constants
	// ========================================================================

	OpNop        Opcode = 0x00
	OpAconstNull Opcode = 0x01 // Push null
	OpIconstM1   Opcode = 0x02 // Push int -1
	OpIconst0    Opcode = 0x03 // Push int 0 (OpIconst0+n for 0..5)
	OpIconst1    Opcode = 0x04
	OpIconst2    Opcode = 0x05
	OpIconst3    Opcode = 0x06
	OpIconst4    Opcode = 0x07
	OpIconst5    Opcode = 0x08
	OpBipush     Opcode = 0x10 // Push sign-extended byte
	OpSipush     Opcode = 0x11 // Push sign-extended short
	OpLdc        Opcode = 0x12 // Push constant pool entry (1-byte index)
	OpLdcW       Opcode = 0x13 // Push constant pool entry (2-byte index)

	// ========================================================================
	// Loads and stores
	// ========================================================================

	OpIload  Opcode = 0x15 // Load int from local slot
	OpLload  Opcode = 0x16 // Load long from local slot
	OpFload  Opcode = 0x17 // Load float from local slot
	OpDload  Opcode = 0x18 // Load double from local slot
	OpAload  Opcode = 0x19 // Load reference from local slot
	OpIload0 Opcode = 0x1A // Short forms: OpXload0+n for slots 0..3
	OpLload0 Opcode = 0x1E
	OpFload0 Opcode = 0x22
	OpDload0 Opcode = 0x26
	OpAload0 Opcode = 0x2A
	OpAaload Opcode = 0x32 // Load reference from array

	OpIstore  Opcode = 0x36
	OpAstore  Opcode = 0x3A // Store reference to local slot
	OpAstore0 Opcode = 0x4B // Short forms for slots 0..3
	OpAastore Opcode = 0x53 // Store reference to array

	// ========================================================================
	// Stack
	// ========================================================================

	OpPop  Opcode = 0x57
	OpDup  Opcode = 0x59
	OpSwap Opcode = 0x5F

	// ========================================================================
	// Control flow
	// ========================================================================

	OpIfeq Opcode = 0x99 // Branch if int == 0
	OpIfne Opcode = 0x9A // Branch if int != 0
	OpGoto Opcode = 0xA7

	OpIreturn Opcode = 0xAC
	OpLreturn Opcode = 0xAD
	OpFreturn Opcode = 0xAE
	OpDreturn Opcode = 0xAF
	OpAreturn Opcode = 0xB0
	OpReturn  Opcode = 0xB1

	// ========================================================================
	// Field and method access
	// ========================================================================

	OpGetstatic       Opcode = 0xB2
	OpPutstatic       Opcode = 0xB3
	OpGetfield        Opcode = 0xB4
	OpPutfield        Opcode = 0xB5
	OpInvokevirtual   Opcode = 0xB6
	OpInvokespecial   Opcode = 0xB7
	OpInvokestatic    Opcode = 0xB8
	OpInvokeinterface Opcode = 0xB9

	// ========================================================================
	// Objects and arrays
	// ========================================================================

	OpNew         Opcode = 0xBB
	OpAnewarray   Opcode = 0xBD
	OpArraylength Opcode = 0xBE
	OpAthrow      Opcode = 0xBF
	OpCheckcast   Opcode = 0xC0
	OpInstanceof  Opcode = 0xC1
)

// operandKind tells the disassembler how to render an instruction's
// operand bytes.
type operandKind uint8

const (
	operandNone      operandKind = iota
	operandCP                    // 2-byte constant pool index
	operandCPByte                // 1-byte constant pool index (ldc)
	operandSlot                  // 1-byte local variable slot
	operandBranch                // 2-byte signed branch offset
	operandByte                  // 1-byte immediate (bipush)
	operandShort                 // 2-byte immediate (sipush)
	operandInterface             // 2-byte cp index + count byte + zero byte
)

// opInfo describes an opcode's mnemonic, operand layout, and its fixed
// operand-stack effect. Opcodes whose effect depends on a descriptor
// (field and invoke instructions) carry effectVaries and must be emitted
// through the typed CodeBuffer helpers.
type opInfo struct {
	mnemonic     string
	operands     operandKind
	effect       int
	effectVaries bool
	terminates   bool // ends a basic block (returns, athrow, goto)
}

var opTable = map[Opcode]opInfo{
	OpNop:        {mnemonic: "nop"},
	OpAconstNull: {mnemonic: "aconst_null", effect: +1},
	OpIconstM1:   {mnemonic: "iconst_m1", effect: +1},
	OpIconst0:    {mnemonic: "iconst_0", effect: +1},
	OpIconst1:    {mnemonic: "iconst_1", effect: +1},
	OpIconst2:    {mnemonic: "iconst_2", effect: +1},
	OpIconst3:    {mnemonic: "iconst_3", effect: +1},
	OpIconst4:    {mnemonic: "iconst_4", effect: +1},
	OpIconst5:    {mnemonic: "iconst_5", effect: +1},
	OpBipush:     {mnemonic: "bipush", operands: operandByte, effect: +1},
	OpSipush:     {mnemonic: "sipush", operands: operandShort, effect: +1},
	OpLdc:        {mnemonic: "ldc", operands: operandCPByte, effect: +1},
	OpLdcW:       {mnemonic: "ldc_w", operands: operandCP, effect: +1},

	OpIload:  {mnemonic: "iload", operands: operandSlot, effect: +1},
	OpLload:  {mnemonic: "lload", operands: operandSlot, effect: +2},
	OpFload:  {mnemonic: "fload", operands: operandSlot, effect: +1},
	OpDload:  {mnemonic: "dload", operands: operandSlot, effect: +2},
	OpAload:  {mnemonic: "aload", operands: operandSlot, effect: +1},
	OpAaload: {mnemonic: "aaload", effect: -1},

	OpIstore:  {mnemonic: "istore", operands: operandSlot, effect: -1},
	OpAstore:  {mnemonic: "astore", operands: operandSlot, effect: -1},
	OpAastore: {mnemonic: "aastore", effect: -3},

	OpPop:  {mnemonic: "pop", effect: -1},
	OpDup:  {mnemonic: "dup", effect: +1},
	OpSwap: {mnemonic: "swap"},

	OpIfeq: {mnemonic: "ifeq", operands: operandBranch, effect: -1},
	OpIfne: {mnemonic: "ifne", operands: operandBranch, effect: -1},
	OpGoto: {mnemonic: "goto", operands: operandBranch, terminates: true},

	OpIreturn: {mnemonic: "ireturn", effect: -1, terminates: true},
	OpLreturn: {mnemonic: "lreturn", effect: -2, terminates: true},
	OpFreturn: {mnemonic: "freturn", effect: -1, terminates: true},
	OpDreturn: {mnemonic: "dreturn", effect: -2, terminates: true},
	OpAreturn: {mnemonic: "areturn", effect: -1, terminates: true},
	OpReturn:  {mnemonic: "return", terminates: true},

	OpGetstatic:       {mnemonic: "getstatic", operands: operandCP, effectVaries: true},
	OpPutstatic:       {mnemonic: "putstatic", operands: operandCP, effectVaries: true},
	OpGetfield:        {mnemonic: "getfield", operands: operandCP, effectVaries: true},
	OpPutfield:        {mnemonic: "putfield", operands: operandCP, effectVaries: true},
	OpInvokevirtual:   {mnemonic: "invokevirtual", operands: operandCP, effectVaries: true},
	OpInvokespecial:   {mnemonic: "invokespecial", operands: operandCP, effectVaries: true},
	OpInvokestatic:    {mnemonic: "invokestatic", operands: operandCP, effectVaries: true},
	OpInvokeinterface: {mnemonic: "invokeinterface", operands: operandInterface, effectVaries: true},

	OpNew:         {mnemonic: "new", operands: operandCP, effect: +1},
	OpAnewarray:   {mnemonic: "anewarray", operands: operandCP},
	OpArraylength: {mnemonic: "arraylength"},
	OpAthrow:      {mnemonic: "athrow", effect: -1, terminates: true},
	OpCheckcast:   {mnemonic: "checkcast", operands: operandCP},
	OpInstanceof:  {mnemonic: "instanceof", operands: operandCP},
}

// String returns the mnemonic, or a hex form for opcodes outside the
// emitted subset.
func (op Opcode) String() string {
	if info, ok := opTable[op]; ok {
		return info.mnemonic
	}
	// Short-form loads/stores are decoded positionally.
	switch {
	case op >= OpIload0 && op < OpIload0+4:
		return fmt.Sprintf("iload_%d", op-OpIload0)
	case op >= OpLload0 && op < OpLload0+4:
		return fmt.Sprintf("lload_%d", op-OpLload0)
	case op >= OpFload0 && op < OpFload0+4:
		return fmt.Sprintf("fload_%d", op-OpFload0)
	case op >= OpDload0 && op < OpDload0+4:
		return fmt.Sprintf("dload_%d", op-OpDload0)
	case op >= OpAload0 && op < OpAload0+4:
		return fmt.Sprintf("aload_%d", op-OpAload0)
	case op >= OpAstore0 && op < OpAstore0+4:
		return fmt.Sprintf("astore_%d", op-OpAstore0)
	}
	return fmt.Sprintf("op_0x%02X", byte(op))
}
