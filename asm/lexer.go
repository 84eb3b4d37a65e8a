// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"errors"
	"strings"

	"github.com/beevik/prefixtree/v2"
	"github.com/golang/glog"
)

// Limits on the shape of a single source line.
const (
	MaxLineLength = 256 // characters per line
	MaxOperands   = 2   // operand tokens per instruction
)

// Parser state while consuming the characters of a line.
type parseState byte

const (
	stateUnknown     parseState = iota // start of line
	stateComment                       // rest of line is a comment
	stateInstruction                   // expecting a mnemonic
	stateOperand                       // expecting operands
	stateLabel                         // expecting the name of a label definition
	stateDirective                     // consuming a directive
)

// An operand is a single operand token of an instruction. Label references
// carry the label's index and have the Absolute shape.
type operand struct {
	text  string // operand text as written
	mode  Mode   // classified shape
	label int    // label index, or -1 for a literal
}

func (o operand) isLabel() bool {
	return o.label >= 0
}

// A line holds the tokens parsed from one line of source code.
type line struct {
	row       int       // 1-based line number
	text      string    // the line as read from the source
	mnemonic  string    // upper-cased mnemonic, empty if none
	operands  []operand // operand tokens
	directive string    // directive name, empty if none
}

func (l *line) mode(i int) Mode {
	if i < len(l.operands) {
		return l.operands[i].mode
	}
	return Unclassified
}

func (l *line) operandString() string {
	s := make([]string, len(l.operands))
	for i, o := range l.operands {
		s[i] = o.text
	}
	return strings.Join(s, ",")
}

// Directives are recognized by unique prefix but otherwise ignored.
var directives = prefixtree.New[string]()

func init() {
	for _, d := range []string{
		"align", "ascii", "byte", "db", "dw", "end", "equ",
		"hex", "include", "org", "pad", "text", "word",
	} {
		directives.Add(d, d)
	}
}

// A lexer splits one source line into its mnemonic and operand tokens,
// defining and referencing labels as it goes.
type lexer struct {
	a     *assembler
	l     *line
	state parseState
	buf   []byte
}

// Parse a single line of assembly code.
func (a *assembler) parseLine(row int, text string) (*line, error) {
	l := &line{row: row, text: text}
	if len(text) > MaxLineLength {
		return nil, newLineError(LineTooLong, l, "line exceeds %d characters", MaxLineLength)
	}

	glog.V(1).Infof("line %d: start parsing", row)

	x := lexer{a: a, l: l, state: stateUnknown, buf: make([]byte, 0, 16)}
	for i := 0; i <= len(text); i++ {
		var c byte
		if i < len(text) {
			c = text[i]
		}

		var err error
		switch c {
		case ';':
			glog.V(2).Infof("line %d: comment", row)
			err = x.flush()
			x.state = stateComment

		case ':':
			err = x.colon()

		case '.':
			if len(x.buf) == 0 && (x.state == stateUnknown || x.state == stateInstruction) {
				glog.V(2).Infof("line %d: directive", row)
				x.state = stateDirective
			} else {
				x.buf = append(x.buf, c)
			}

		case ' ', '\t', '\r', ',', 0:
			err = x.flush()

		default:
			x.buf = append(x.buf, c)
		}

		if err != nil {
			return nil, err
		}
		if x.state == stateComment {
			break
		}
	}

	if x.state == stateLabel {
		return nil, newLineError(InvalidLabel, l, "missing label name")
	}

	glog.V(1).Infof("line %d: end parsing", row)
	return l, nil
}

// Handle a ':' character. A name before the colon is defined immediately;
// a colon with no pending name defines the token that follows it.
func (x *lexer) colon() error {
	switch x.state {
	case stateUnknown, stateInstruction:
	default:
		return newLineError(InvalidLabel, x.l, "label definition must precede the instruction")
	}

	if len(x.buf) == 0 {
		x.state = stateLabel
		return nil
	}

	name := string(x.buf)
	x.buf = x.buf[:0]
	x.state = stateInstruction
	return x.defineLabel(name)
}

func (x *lexer) defineLabel(name string) error {
	glog.V(2).Infof("line %d: label %s", x.l.row, name)
	addr := x.a.pc()
	if addr >= addrLimit {
		return newLineError(AddressOverflow, x.l, "label \"%s\" defined past $FFFF", name)
	}
	if _, err := x.a.labels.define(name, addr, x.l.row); err != nil {
		kind := InvalidLabel
		if errors.Is(err, errRedefined) {
			kind = DuplicateLabel
		}
		return newLineError(kind, x.l, "%v", err)
	}
	x.a.logLine(x.l, "label=%s addr=$%04X", name, addr)
	return nil
}

// Flush the pending token according to the current state.
func (x *lexer) flush() error {
	if len(x.buf) == 0 {
		return nil
	}
	tok := string(x.buf)
	x.buf = x.buf[:0]

	switch x.state {
	case stateUnknown, stateInstruction:
		x.l.mnemonic = strings.ToUpper(tok)
		x.state = stateOperand
		glog.V(3).Infof("line %d: instruction %s", x.l.row, x.l.mnemonic)

	case stateOperand:
		return x.addOperand(tok)

	case stateLabel:
		x.state = stateInstruction
		return x.defineLabel(tok)

	case stateDirective:
		if x.l.directive == "" {
			x.l.directive = tok
			name, err := directives.FindValue(strings.ToLower(tok))
			if err != nil {
				glog.Warningf("line %d: unrecognized directive .%s", x.l.row, tok)
			} else {
				glog.V(2).Infof("line %d: directive .%s ignored", x.l.row, name)
			}
		}
	}
	return nil
}

// Classify an operand token and store it. Unclassified tokens are label
// references.
func (x *lexer) addOperand(tok string) error {
	if len(x.l.operands) == MaxOperands {
		return newLineError(TooManyOperands, x.l, "more than %d operands: \"%s\"", MaxOperands, x.l.text)
	}

	tok = foldRegister(tok)
	glog.V(4).Infof("line %d: operand %s", x.l.row, tok)

	o := operand{text: tok, mode: Classify(tok), label: -1}
	if o.mode == Unclassified {
		i, err := x.a.labels.reference(tok, x.l.row)
		if err != nil {
			return newLineError(InvalidLabel, x.l, "%v", err)
		}
		o.mode, o.label = Absolute, i
	}
	x.l.operands = append(x.l.operands, o)
	return nil
}
