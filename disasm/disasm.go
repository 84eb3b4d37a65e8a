// Copyright 2014 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm implements a 6502 disassembler over the assembler's
// opcode table.
package disasm

import (
	"fmt"

	"github.com/beevik/sixfive/asm"
)

// Disassembler formatting for operand shape pairs
var modeFormat = map[[2]asm.Mode]string{
	{}:                         "",
	{asm.Accumulator}:          " A",
	{asm.Immediate}:            " #$%s",
	{asm.ZeroPageOrRelative}:   " $%s",
	{asm.Absolute}:             " $%s",
	{asm.Indirect}:             " ($%s)",
	{asm.IndirectZeroPage, asm.IndexRegisterY}:          " ($%s),Y",
	{asm.IndirectZeroPageIndexedX, asm.IndirectIndexedX}: " ($%s,X)",
	{asm.ZeroPageOrRelative, asm.IndexRegisterX}:        " $%s,X",
	{asm.ZeroPageOrRelative, asm.IndexRegisterY}:        " $%s,Y",
	{asm.Absolute, asm.IndexRegisterX}:                  " $%s,X",
	{asm.Absolute, asm.IndexRegisterY}:                  " $%s,Y",
}

var hex = "0123456789ABCDEF"

// Return a hexadecimal string representation of a little-endian byte
// slice.
func hexString(b []byte) string {
	hexlen := len(b) * 2
	hexbuf := make([]byte, hexlen)
	j := hexlen - 1
	for _, n := range b {
		hexbuf[j] = hex[n&0xf]
		hexbuf[j-1] = hex[n>>4]
		j -= 2
	}
	return string(hexbuf)
}

// Disassemble the machine code in 'code' at byte offset 'offset', where
// the first byte of code loads at 'origin'. Return a 'line' string
// representing the disassembled instruction and the offset 'next' of the
// following instruction.
func Disassemble(code []byte, offset int, origin uint16) (line string, next int) {
	opcode := code[offset]
	inst, ok := asm.Decode(opcode)
	if !ok || offset+inst.Length > len(code) {
		return fmt.Sprintf(".BYTE $%02X", opcode), offset + 1
	}

	operand := code[offset+1 : offset+inst.Length]
	if inst.Branch {
		// Convert relative offset to absolute address.
		addr := int(origin) + offset + inst.Length + int(int8(operand[0]))
		operand = []byte{byte(addr), byte(addr >> 8)}
	}

	format := "%s" + modeFormat[inst.Modes]
	if len(operand) > 0 {
		line = fmt.Sprintf(format, inst.Name, hexString(operand))
	} else {
		line = fmt.Sprintf(format, inst.Name)
	}
	return line, offset + inst.Length
}

// Listing disassembles all of the code, returning one line per
// instruction prefixed by its address and bytes.
func Listing(code []byte, origin uint16) []string {
	var lines []string
	for offset := 0; offset < len(code); {
		line, next := Disassemble(code, offset, origin)
		lines = append(lines, fmt.Sprintf("%04X-   %-8s    %s",
			int(origin)+offset, byteString(code[offset:next]), line))
		offset = next
	}
	return lines
}

func byteString(b []byte) string {
	s := ""
	for i, v := range b {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%02X", v)
	}
	return s
}
