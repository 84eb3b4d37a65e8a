// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "strings"

// Mode describes the textual shape of an operand. Each mode's value is
// 100*len(token) + token[0] for the canonical shape, which lets the mode
// double as the code that is summed into an opcode table key.
type Mode int

// All recognized operand shapes
const (
	Unclassified             Mode = 0         // identifier or unknown shape
	Accumulator              Mode = 100 + 'A' // A
	IndexRegisterX           Mode = 100 + 'X' // X
	IndirectIndexedX         Mode = 200 + 'X' // X) as in ($ff,X)
	IndexRegisterY           Mode = 100 + 'Y' // Y
	Immediate                Mode = 400 + '#' // #$ff
	Absolute                 Mode = 500 + '$' // $ffff
	ZeroPageOrRelative       Mode = 300 + '$' // $ff
	Indirect                 Mode = 700 + '(' // ($ffff)
	IndirectZeroPage         Mode = 500 + '(' // ($ff)
	IndirectZeroPageIndexedX Mode = 400 + '(' // ($ff as in ($ff,X)
)

var modeName = map[Mode]string{
	Unclassified:             "---",
	Accumulator:              "ACC",
	IndexRegisterX:           "X",
	IndirectIndexedX:         "X)",
	IndexRegisterY:           "Y",
	Immediate:                "IMM",
	Absolute:                 "ABS",
	ZeroPageOrRelative:       "ZPG",
	Indirect:                 "IND",
	IndirectZeroPage:         "IZP",
	IndirectZeroPageIndexedX: "IZX",
}

func (m Mode) String() string {
	if s, ok := modeName[m]; ok {
		return s
	}
	return "???"
}

// Classify returns the addressing mode shape of an operand token, or
// Unclassified if the token does not have one of the recognized shapes.
func Classify(token string) Mode {
	if token == "" {
		return Unclassified
	}

	m := Mode(100*len(token) + int(token[0]))
	switch m {
	case Accumulator, IndexRegisterX, IndirectIndexedX, IndexRegisterY,
		Immediate, Absolute, ZeroPageOrRelative, Indirect,
		IndirectZeroPage, IndirectZeroPageIndexedX:
		return m
	default:
		return Unclassified
	}
}

// Return the number of operand bytes emitted after the opcode when the
// first operand has mode m.
func operandBytes(m Mode) int {
	switch m {
	case Absolute, Indirect:
		return 2
	case Immediate, ZeroPageOrRelative, IndirectZeroPage, IndirectZeroPageIndexedX:
		return 1
	default:
		return 0
	}
}

// Return the literal prefix and the trailing text expected for each literal
// operand shape.
func literalShape(m Mode) (prefix, suffix string) {
	switch m {
	case Immediate:
		return "#$", ""
	case Absolute, ZeroPageOrRelative:
		return "$", ""
	case Indirect, IndirectZeroPage:
		return "($", ")"
	case IndirectZeroPageIndexedX:
		return "($", ""
	default:
		return "", ""
	}
}

// Extract one byte of a hexadecimal literal operand. The literal's prefix
// is skipped, and when second is true the offset is advanced by two
// characters to select the second digit pair of a 16-bit literal.
func literalByte(token string, m Mode, second bool) (byte, error) {
	prefix, suffix := literalShape(m)
	if prefix == "" || !strings.HasPrefix(token, prefix) || !strings.HasSuffix(token, suffix) {
		return 0, errMalformed
	}

	offset := len(prefix)
	if second {
		offset += 2
	}
	if offset+2 > len(token)-len(suffix) {
		return 0, errMalformed
	}

	hi, ok1 := hexDigit(token[offset])
	lo, ok2 := hexDigit(token[offset+1])
	if !ok1 || !ok2 {
		return 0, errMalformed
	}
	return hi<<4 | lo, nil
}

// Decode the bytes of a literal operand in emission order (little-endian).
func literalBytes(token string, m Mode) ([]byte, error) {
	switch operandBytes(m) {
	case 2:
		lo, err := literalByte(token, m, true)
		if err != nil {
			return nil, err
		}
		hi, err := literalByte(token, m, false)
		if err != nil {
			return nil, err
		}
		return []byte{lo, hi}, nil
	case 1:
		b, err := literalByte(token, m, false)
		if err != nil {
			return nil, err
		}
		return []byte{b}, nil
	default:
		return nil, nil
	}
}

// Register tokens may be written in either case; the classifier only
// recognizes the upper-case forms.
func foldRegister(token string) string {
	switch u := strings.ToUpper(token); u {
	case "A", "X", "Y", "X)":
		return u
	default:
		return token
	}
}
