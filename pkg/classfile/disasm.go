package classfile

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Disassemble returns a javap-flavored listing of the parsed class:
// header, interfaces, fields, and per-method code with resolved
// constant-pool operands, exception tables, and frame counts.
func (pc *ParsedClass) Disassemble() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("; class %s\n", pc.ThisClass))
	sb.WriteString(fmt.Sprintf("; version %d.%d, flags 0x%04X\n", pc.MajorVersion, pc.MinorVersion, pc.Flags))
	sb.WriteString(fmt.Sprintf("; extends %s\n", pc.SuperClass))
	for _, iface := range pc.Interfaces {
		sb.WriteString(fmt.Sprintf("; implements %s\n", iface))
	}
	sb.WriteString("\n")

	if len(pc.Fields) > 0 {
		sb.WriteString("; Fields:\n")
		for _, f := range pc.Fields {
			sb.WriteString(fmt.Sprintf(";   %s %s (flags 0x%04X)\n", f.Name, f.Descriptor, f.Flags))
		}
		sb.WriteString("\n")
	}

	for i := range pc.Methods {
		m := &pc.Methods[i]
		sb.WriteString(fmt.Sprintf("%s%s (flags 0x%04X)", m.Name, m.Descriptor, m.Flags))
		if throws := m.Throws(); len(throws) > 0 {
			sb.WriteString(" throws " + strings.Join(throws, ", "))
		}
		sb.WriteString("\n")

		code, err := m.Code()
		if err != nil {
			sb.WriteString(fmt.Sprintf("  ; no code: %v\n\n", err))
			continue
		}
		sb.WriteString(fmt.Sprintf("  ; stack=%d, locals=%d\n", code.MaxStack, code.MaxLocals))
		pc.disassembleCode(&sb, code)

		if len(code.Exceptions) > 0 {
			sb.WriteString("  ; Exception table:\n")
			for _, e := range code.Exceptions {
				catch := e.CatchType
				if catch == "" {
					catch = "any"
				}
				sb.WriteString(fmt.Sprintf("  ;   [%d, %d) -> %d  %s\n", e.Start, e.End, e.Handler, catch))
			}
		}
		if n := code.FrameCount(); n > 0 {
			sb.WriteString(fmt.Sprintf("  ; StackMapTable: %d frames\n", n))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (pc *ParsedClass) disassembleCode(sb *strings.Builder, code *ParsedCode) {
	offset := 0
	for offset < len(code.Code) {
		line, size := pc.disassembleInstruction(code.Code, offset)
		sb.WriteString(fmt.Sprintf("  %04X  %s\n", offset, line))
		if size <= 0 {
			break
		}
		offset += size
	}
}

// disassembleInstruction renders one instruction and returns its size.
func (pc *ParsedClass) disassembleInstruction(code []byte, offset int) (string, int) {
	op := Opcode(code[offset])
	info, ok := opTable[op]
	if !ok {
		return op.String(), 1
	}
	switch info.operands {
	case operandNone:
		return info.mnemonic, 1
	case operandByte:
		if offset+2 > len(code) {
			return info.mnemonic + " <truncated>", len(code) - offset
		}
		return fmt.Sprintf("%-16s %d", info.mnemonic, int8(code[offset+1])), 2
	case operandSlot:
		if offset+2 > len(code) {
			return info.mnemonic + " <truncated>", len(code) - offset
		}
		return fmt.Sprintf("%-16s %d", info.mnemonic, code[offset+1]), 2
	case operandShort:
		if offset+3 > len(code) {
			return info.mnemonic + " <truncated>", len(code) - offset
		}
		return fmt.Sprintf("%-16s %d", info.mnemonic, int16(binary.BigEndian.Uint16(code[offset+1:]))), 3
	case operandBranch:
		if offset+3 > len(code) {
			return info.mnemonic + " <truncated>", len(code) - offset
		}
		delta := int16(binary.BigEndian.Uint16(code[offset+1:]))
		return fmt.Sprintf("%-16s %04X", info.mnemonic, offset+int(delta)), 3
	case operandCPByte:
		if offset+2 > len(code) {
			return info.mnemonic + " <truncated>", len(code) - offset
		}
		idx := uint16(code[offset+1])
		return fmt.Sprintf("%-16s #%d%s", info.mnemonic, idx, pc.describeConstant(idx)), 2
	case operandCP:
		if offset+3 > len(code) {
			return info.mnemonic + " <truncated>", len(code) - offset
		}
		idx := binary.BigEndian.Uint16(code[offset+1:])
		return fmt.Sprintf("%-16s #%d%s", info.mnemonic, idx, pc.describeConstant(idx)), 3
	case operandInterface:
		if offset+5 > len(code) {
			return info.mnemonic + " <truncated>", len(code) - offset
		}
		idx := binary.BigEndian.Uint16(code[offset+1:])
		count := code[offset+3]
		return fmt.Sprintf("%-16s #%d count %d%s", info.mnemonic, idx, count, pc.describeConstant(idx)), 5
	}
	return info.mnemonic, 1
}

// describeConstant renders a short comment for a constant-pool operand.
func (pc *ParsedClass) describeConstant(idx uint16) string {
	if int(idx) >= len(pc.pool) {
		return ""
	}
	e := pc.pool[idx]
	switch e.tag {
	case TagUtf8:
		return fmt.Sprintf("  ; %q", truncateConstant(e.str))
	case TagString:
		return fmt.Sprintf("  ; %q", truncateConstant(pc.rawUtf8(e.i1)))
	case TagClass:
		return "  ; " + pc.rawUtf8(e.i1)
	case TagFieldref, TagMethodref, TagInterfaceMethodref:
		class := ""
		if int(e.i1) < len(pc.pool) {
			class = pc.rawUtf8(pc.pool[e.i1].i1)
		}
		name, desc := pc.rawNameAndType(e.i2)
		return fmt.Sprintf("  ; %s.%s:%s", class, name, desc)
	case TagNameAndType:
		name, desc := pc.rawNameAndType(idx)
		return fmt.Sprintf("  ; %s:%s", name, desc)
	}
	return ""
}

func (pc *ParsedClass) rawUtf8(idx uint16) string {
	if int(idx) < len(pc.pool) && pc.pool[idx].tag == TagUtf8 {
		return pc.pool[idx].str
	}
	return "?"
}

func (pc *ParsedClass) rawNameAndType(idx uint16) (string, string) {
	if int(idx) < len(pc.pool) && pc.pool[idx].tag == TagNameAndType {
		return pc.rawUtf8(pc.pool[idx].i1), pc.rawUtf8(pc.pool[idx].i2)
	}
	return "?", "?"
}

func truncateConstant(s string) string {
	if len(s) > 40 {
		return s[:37] + "..."
	}
	return s
}
