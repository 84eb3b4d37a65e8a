// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the failures reported by the assembler.
type ErrorKind int

// All error kinds
const (
	InputFileError ErrorKind = iota
	OutputFileError
	UnsupportedOperandCombination
	UnresolvedLabel
	MalformedLiteral
	InvalidLabel
	DuplicateLabel
	TooManyOperands
	LineTooLong
	BranchOutOfRange
	AddressOverflow
)

var kindName = []string{
	"input file error",
	"output file error",
	"unsupported operand combination",
	"unresolved label",
	"malformed literal",
	"invalid label",
	"duplicate label",
	"too many operands",
	"line too long",
	"branch out of range",
	"address overflow",
}

func (k ErrorKind) String() string {
	if int(k) < len(kindName) {
		return kindName[k]
	}
	return fmt.Sprintf("error kind %d", int(k))
}

var errMalformed = errors.New("malformed hexadecimal literal")

// An Error describes the first failure encountered during assembly.
type Error struct {
	Kind   ErrorKind // failure classification
	Line   int       // 1-based source line, 0 if not line related
	Source string    // text of the offending source line
	Label  string    // label involved in the failure, if any
	Msg    string    // human readable detail
	Err    error     // underlying error, if any
}

func (e *Error) Error() string {
	switch {
	case e.Kind == InputFileError || e.Kind == OutputFileError:
		return fmt.Sprintf("Error: %s.", e.Msg)
	case e.Line > 0:
		return fmt.Sprintf("Syntax error on line %d: %s.", e.Line, e.Msg)
	default:
		return fmt.Sprintf("Syntax error: %s.", e.Msg)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, &asm.Error{Kind: asm.UnresolvedLabel}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// IsKind reports whether err is an assembler error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func newLineError(kind ErrorKind, l *line, format string, args ...any) *Error {
	return &Error{
		Kind:   kind,
		Line:   l.row,
		Source: l.text,
		Msg:    fmt.Sprintf(format, args...),
	}
}
