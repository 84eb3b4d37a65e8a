// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

// Identity returns the instruction identity of an upper-cased mnemonic,
// computed with Dan Bernstein's djb2 string hash.
func Identity(mnemonic string) uint64 {
	h := uint64(5381)
	for i := 0; i < len(mnemonic); i++ {
		h = h*33 + uint64(mnemonic[i])
	}
	return h
}

// Opcode table entry: an instruction mnemonic and the operand shapes that
// select it. An empty name marks an unused opcode.
type opcodeDef struct {
	name  string
	mode1 Mode
	mode2 Mode
}

// Shorthand for the operand shape pairs used by the table below.
var (
	imp = [2]Mode{}
	acc = [2]Mode{Accumulator}
	imm = [2]Mode{Immediate}
	zpg = [2]Mode{ZeroPageOrRelative}
	rel = [2]Mode{ZeroPageOrRelative}
	zpx = [2]Mode{ZeroPageOrRelative, IndexRegisterX}
	zpy = [2]Mode{ZeroPageOrRelative, IndexRegisterY}
	abs = [2]Mode{Absolute}
	abx = [2]Mode{Absolute, IndexRegisterX}
	aby = [2]Mode{Absolute, IndexRegisterY}
	ind = [2]Mode{Indirect}
	idx = [2]Mode{IndirectZeroPageIndexedX, IndirectIndexedX}
	idy = [2]Mode{IndirectZeroPage, IndexRegisterY}
)

func op(name string, modes [2]Mode) opcodeDef {
	return opcodeDef{name, modes[0], modes[1]}
}

// All official NMOS 6502 opcodes, indexed by opcode byte.
var opcodeDefs = [256]opcodeDef{
	0x00: op("BRK", imp), 0x01: op("ORA", idx), 0x05: op("ORA", zpg), 0x06: op("ASL", zpg),
	0x08: op("PHP", imp), 0x09: op("ORA", imm), 0x0a: op("ASL", acc), 0x0d: op("ORA", abs),
	0x0e: op("ASL", abs),

	0x10: op("BPL", rel), 0x11: op("ORA", idy), 0x15: op("ORA", zpx), 0x16: op("ASL", zpx),
	0x18: op("CLC", imp), 0x19: op("ORA", aby), 0x1d: op("ORA", abx), 0x1e: op("ASL", abx),

	0x20: op("JSR", abs), 0x21: op("AND", idx), 0x24: op("BIT", zpg), 0x25: op("AND", zpg),
	0x26: op("ROL", zpg), 0x28: op("PLP", imp), 0x29: op("AND", imm), 0x2a: op("ROL", acc),
	0x2c: op("BIT", abs), 0x2d: op("AND", abs), 0x2e: op("ROL", abs),

	0x30: op("BMI", rel), 0x31: op("AND", idy), 0x35: op("AND", zpx), 0x36: op("ROL", zpx),
	0x38: op("SEC", imp), 0x39: op("AND", aby), 0x3d: op("AND", abx), 0x3e: op("ROL", abx),

	0x40: op("RTI", imp), 0x41: op("EOR", idx), 0x45: op("EOR", zpg), 0x46: op("LSR", zpg),
	0x48: op("PHA", imp), 0x49: op("EOR", imm), 0x4a: op("LSR", acc), 0x4c: op("JMP", abs),
	0x4d: op("EOR", abs), 0x4e: op("LSR", abs),

	0x50: op("BVC", rel), 0x51: op("EOR", idy), 0x55: op("EOR", zpx), 0x56: op("LSR", zpx),
	0x58: op("CLI", imp), 0x59: op("EOR", aby), 0x5d: op("EOR", abx), 0x5e: op("LSR", abx),

	0x60: op("RTS", imp), 0x61: op("ADC", idx), 0x65: op("ADC", zpg), 0x66: op("ROR", zpg),
	0x68: op("PLA", imp), 0x69: op("ADC", imm), 0x6a: op("ROR", acc), 0x6c: op("JMP", ind),
	0x6d: op("ADC", abs), 0x6e: op("ROR", abs),

	0x70: op("BVS", rel), 0x71: op("ADC", idy), 0x75: op("ADC", zpx), 0x76: op("ROR", zpx),
	0x78: op("SEI", imp), 0x79: op("ADC", aby), 0x7d: op("ADC", abx), 0x7e: op("ROR", abx),

	0x81: op("STA", idx), 0x84: op("STY", zpg), 0x85: op("STA", zpg), 0x86: op("STX", zpg),
	0x88: op("DEY", imp), 0x8a: op("TXA", imp), 0x8c: op("STY", abs), 0x8d: op("STA", abs),
	0x8e: op("STX", abs),

	0x90: op("BCC", rel), 0x91: op("STA", idy), 0x94: op("STY", zpx), 0x95: op("STA", zpx),
	0x96: op("STX", zpy), 0x98: op("TYA", imp), 0x99: op("STA", aby), 0x9a: op("TXS", imp),
	0x9d: op("STA", abx),

	0xa0: op("LDY", imm), 0xa1: op("LDA", idx), 0xa2: op("LDX", imm), 0xa4: op("LDY", zpg),
	0xa5: op("LDA", zpg), 0xa6: op("LDX", zpg), 0xa8: op("TAY", imp), 0xa9: op("LDA", imm),
	0xaa: op("TAX", imp), 0xac: op("LDY", abs), 0xad: op("LDA", abs), 0xae: op("LDX", abs),

	0xb0: op("BCS", rel), 0xb1: op("LDA", idy), 0xb4: op("LDY", zpx), 0xb5: op("LDA", zpx),
	0xb6: op("LDX", zpy), 0xb8: op("CLV", imp), 0xb9: op("LDA", aby), 0xba: op("TSX", imp),
	0xbc: op("LDY", abx), 0xbd: op("LDA", abx), 0xbe: op("LDX", aby),

	0xc0: op("CPY", imm), 0xc1: op("CMP", idx), 0xc4: op("CPY", zpg), 0xc5: op("CMP", zpg),
	0xc6: op("DEC", zpg), 0xc8: op("INY", imp), 0xc9: op("CMP", imm), 0xca: op("DEX", imp),
	0xcc: op("CPY", abs), 0xcd: op("CMP", abs), 0xce: op("DEC", abs),

	0xd0: op("BNE", rel), 0xd1: op("CMP", idy), 0xd5: op("CMP", zpx), 0xd6: op("DEC", zpx),
	0xd8: op("CLD", imp), 0xd9: op("CMP", aby), 0xdd: op("CMP", abx), 0xde: op("DEC", abx),

	0xe0: op("CPX", imm), 0xe1: op("SBC", idx), 0xe4: op("CPX", zpg), 0xe5: op("SBC", zpg),
	0xe6: op("INC", zpg), 0xe8: op("INX", imp), 0xe9: op("SBC", imm), 0xea: op("NOP", imp),
	0xec: op("CPX", abs), 0xed: op("SBC", abs), 0xee: op("INC", abs),

	0xf0: op("BEQ", rel), 0xf1: op("SBC", idy), 0xf5: op("SBC", zpx), 0xf6: op("INC", zpx),
	0xf8: op("SED", imp), 0xf9: op("SBC", aby), 0xfd: op("SBC", abx), 0xfe: op("INC", abx),
}

// Composite key of each opcode slot: Identity(name) + mode1 + mode2. Zero
// marks an unused slot; no valid key can be zero.
var opcodeKeys [256]uint64

func init() {
	for i, d := range opcodeDefs {
		if d.name != "" {
			opcodeKeys[i] = opcodeKey(Identity(d.name), d.mode1, d.mode2)
		}
	}
}

func opcodeKey(id uint64, m1, m2 Mode) uint64 {
	return id + uint64(m1) + uint64(m2)
}

// Find the opcode whose composite key matches the instruction identity and
// operand shapes. Sums collide for STY/STX, LDY/LDX zero page and LDY/LDX
// absolute with swapped index registers, so a key match must also agree on
// the slot's operand shapes.
func resolveOpcode(id uint64, m1, m2 Mode) (byte, bool) {
	key := opcodeKey(id, m1, m2)
	for i, k := range opcodeKeys {
		if k == key && opcodeDefs[i].mode1 == m1 && opcodeDefs[i].mode2 == m2 {
			return byte(i), true
		}
	}
	return 0, false
}

// Conditional branches take a relative operand, which lets a label
// reference select their one-byte relative slot.
var branches = map[uint64]bool{
	Identity("BPL"): true,
	Identity("BMI"): true,
	Identity("BVC"): true,
	Identity("BVS"): true,
	Identity("BCC"): true,
	Identity("BCS"): true,
	Identity("BNE"): true,
	Identity("BEQ"): true,
}

func isBranch(id uint64) bool {
	return branches[id]
}

// An Instruction describes the decoded contents of an opcode slot.
type Instruction struct {
	Opcode byte    // opcode byte value
	Name   string  // upper-case mnemonic
	Modes  [2]Mode // operand shapes (Unclassified when absent)
	Length int     // length of opcode + operand in bytes
	Branch bool    // relative branch instruction
}

// Decode returns the instruction stored in an opcode slot. It returns false
// if the opcode is unused.
func Decode(opcode byte) (Instruction, bool) {
	d := opcodeDefs[opcode]
	if d.name == "" {
		return Instruction{}, false
	}
	return Instruction{
		Opcode: opcode,
		Name:   d.name,
		Modes:  [2]Mode{d.mode1, d.mode2},
		Length: 1 + operandBytes(d.mode1),
		Branch: isBranch(Identity(d.name)),
	}, true
}
