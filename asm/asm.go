// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm implements a two-pass 6502 assembler.
//
// The first pass tokenizes each source line, classifies its operands by
// shape, resolves the opcode, and emits machine code. Label references are
// emitted as placeholder values and recorded for patching. The second pass
// patches every reference with its label's final address.
package asm

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/glog"
)

// Option type used by the Assemble function.
type Option uint

// Options for the Assemble function.
const (
	Verbose           Option = 1 << iota // write a listing during assembly
	AllowRedefinition                    // later label definitions overwrite earlier ones
	LegacyBackpatch                      // patch labels by scanning the emitted bytes
)

// A fixup records a label reference whose bytes must be patched once all
// labels are known.
type fixup struct {
	offset   int  // offset of the first operand byte in the code
	label    int  // index of the referenced label
	row      int  // source line of the reference
	relative bool // one-byte branch offset instead of a two-byte address
	base     int  // address the branch offset is relative to
}

// The assembler is a state object used during the assembly of machine code
// from assembly code. A new one is created for every assembly.
type assembler struct {
	origin      int          // address of the first code byte
	code        []byte       // generated machine code
	r           io.Reader    // the reader passed to Assemble
	labels      *labelTable  // labels of this assembly
	fixups      []fixup      // label references awaiting pass 2
	sourceLines []SourceLine // source code line mappings
	legacy      bool         // scan for placeholders in pass 2
	out         io.Writer    // used for verbose output
	verbose     bool         // verbose output
}

// Assembly contains the assembled machine code and other data associated
// with the machine code.
type Assembly struct {
	Code      []byte     // Assembled machine code
	Labels    []Label    // Defined labels
	SourceMap *SourceMap // Address to source line mappings
	Errors    []string   // Error encountered during assembly, if any
}

// WriteTo saves machine code as binary data into an output writer.
func (a *Assembly) WriteTo(w io.Writer) (n int64, err error) {
	nn, err := w.Write(a.Code)
	return int64(nn), err
}

// AssembleFile reads a file containing 6502 assembly code, assembles it,
// and writes the raw machine code to outPath. The output file is removed
// if assembly fails. If mapPath is not empty, a source map is written
// there too.
func AssembleFile(inPath, outPath, mapPath string, origin uint16, options Option, out io.Writer) (*Assembly, error) {
	src, err := os.ReadFile(inPath)
	if err != nil {
		return nil, &Error{
			Kind: InputFileError,
			Msg:  fmt.Sprintf("unable to open file \"%s\" for reading", inPath),
			Err:  err,
		}
	}

	outFile, err := os.OpenFile(outPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, &Error{
			Kind: OutputFileError,
			Msg:  fmt.Sprintf("unable to open file \"%s\" for writing", outPath),
			Err:  err,
		}
	}

	assembly, err := Assemble(bytes.NewReader(src), origin, out, options)
	if err == nil {
		err = writeOutput(outFile, assembly, outPath)
	}
	if cerr := outFile.Close(); err == nil && cerr != nil {
		err = &Error{Kind: OutputFileError, Msg: fmt.Sprintf("unable to close \"%s\"", outPath), Err: cerr}
	}
	if err != nil {
		os.Remove(outPath)
		return assembly, err
	}

	if mapPath != "" {
		err = writeSourceMap(assembly.SourceMap, mapPath)
		if err != nil {
			return assembly, err
		}
	}
	return assembly, nil
}

func writeOutput(w io.Writer, assembly *Assembly, path string) error {
	_, err := assembly.WriteTo(w)
	if err != nil {
		return &Error{Kind: OutputFileError, Msg: fmt.Sprintf("unable to write \"%s\"", path), Err: err}
	}
	return nil
}

func writeSourceMap(m *SourceMap, path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return &Error{Kind: OutputFileError, Msg: fmt.Sprintf("unable to open file \"%s\" for writing", path), Err: err}
	}
	defer f.Close()

	_, err = m.WriteTo(f)
	if err != nil {
		return &Error{Kind: OutputFileError, Msg: fmt.Sprintf("unable to write \"%s\"", path), Err: err}
	}
	return nil
}

// Assemble reads 6502 assembly code from the provided stream and assembles
// it into machine code whose first byte loads at origin. Assembly stops at
// the first error, which is returned as an *Error.
func Assemble(r io.Reader, origin uint16, out io.Writer, options Option) (*Assembly, error) {
	if out == nil {
		out = os.Stdout
	}

	a := &assembler{
		origin:  int(origin),
		r:       r,
		labels:  newLabelTable((options & AllowRedefinition) != 0),
		legacy:  (options & LegacyBackpatch) != 0,
		code:    make([]byte, 0, 256),
		out:     out,
		verbose: (options & Verbose) != 0,
	}

	// Assembly consists of the following steps
	steps := []func(a *assembler) error{
		(*assembler).emit,          // Pass 1: parse lines and emit code
		(*assembler).resolveLabels, // Pass 2: patch label references
	}

	var err error
	for _, step := range steps {
		err = step(a)
		if err != nil {
			break
		}
	}

	assembly := &Assembly{
		Code:   a.code,
		Labels: a.labels.export(),
		SourceMap: &SourceMap{
			Origin: origin,
			Size:   uint32(len(a.code)),
			Lines:  a.sourceLines,
			Labels: a.labels.export(),
		},
	}
	if err != nil {
		assembly.Code = nil
		assembly.Errors = []string{err.Error()}
		glog.V(1).Infof("assembly failed: %v", err)
	}
	return assembly, err
}

// Return the address of the next byte to be emitted.
func (a *assembler) pc() int {
	return a.origin + len(a.code)
}

// Pass 1: read the source line by line, emitting the code for each line.
func (a *assembler) emit() error {
	a.logSection("Emitting code")
	glog.V(1).Info("start parsing file")

	scanner := bufio.NewScanner(a.r)
	scanner.Buffer(make([]byte, 0, 1024), 64*1024)
	row := 0
	for scanner.Scan() {
		row++
		l, err := a.parseLine(row, scanner.Text())
		if err != nil {
			return err
		}
		if l.mnemonic == "" {
			continue
		}
		if err := a.encode(l); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return &Error{Kind: LineTooLong, Line: row + 1, Msg: "line too long", Err: err}
		}
		return &Error{Kind: InputFileError, Msg: "unable to read source", Err: err}
	}

	glog.V(1).Info("end parsing file")
	return nil
}

// Resolve a line's opcode and append its bytes to the code. Nothing is
// emitted unless the whole instruction encodes.
func (a *assembler) encode(l *line) error {
	id := Identity(l.mnemonic)
	m1, m2 := l.mode(0), l.mode(1)

	opcode, ok := resolveOpcode(id, m1, m2)
	relative := false
	if !ok && !a.legacy && len(l.operands) == 1 && l.operands[0].isLabel() && isBranch(id) {
		m1 = ZeroPageOrRelative
		opcode, ok = resolveOpcode(id, m1, m2)
		relative = ok
	}
	if !ok {
		return newLineError(UnsupportedOperandCombination, l,
			"invalid instruction/operand combination: \"%s\"", l.text)
	}

	start := len(a.code)
	b := []byte{opcode}
	var fix *fixup

	if n := operandBytes(m1); n > 0 {
		o := l.operands[0]
		switch {
		case o.isLabel():
			ph := a.labels.get(o.label).placeholder
			fix = &fixup{offset: start + 1, label: o.label, row: l.row, relative: relative}
			if relative {
				fix.base = a.origin + start + 2
				b = append(b, byte(ph))
			} else {
				b = append(b, byte(ph), byte(ph>>8))
			}
		default:
			data, err := literalBytes(o.text, m1)
			if err != nil {
				e := newLineError(MalformedLiteral, l, "malformed literal \"%s\"", o.text)
				e.Err = err
				return e
			}
			b = append(b, data...)
		}
	}

	if end := a.origin + start + len(b); end > addrLimit {
		return newLineError(AddressOverflow, l, "code extends past $FFFF")
	}

	a.code = append(a.code, b...)
	if fix != nil {
		a.fixups = append(a.fixups, *fix)
	}
	a.sourceLines = append(a.sourceLines, SourceLine{Address: a.origin + start, Line: l.row})

	a.log("%04X-   %-8s    %-3s %s", a.origin+start, byteString(b), l.mnemonic, l.operandString())
	return nil
}

// Pass 2: patch every label reference with its label's address.
func (a *assembler) resolveLabels() error {
	a.logSection("Resolving labels")
	glog.V(1).Info("start replacing labels")

	var err error
	if a.legacy {
		err = a.scanPlaceholders()
	} else {
		err = a.applyFixups()
	}
	if err != nil {
		return err
	}

	for _, l := range a.labels.labels {
		a.log("%-15s Addr:$%04X", l.name, l.addr)
	}

	glog.V(1).Info("end replacing labels")
	return nil
}

func (a *assembler) unresolved(l *label) error {
	return &Error{
		Kind:  UnresolvedLabel,
		Line:  l.refLine,
		Label: l.name,
		Msg:   fmt.Sprintf("unrecognized operand/label \"%s\"", l.name),
	}
}

// Patch the exact byte offsets recorded while emitting code.
func (a *assembler) applyFixups() error {
	for _, f := range a.fixups {
		l := a.labels.get(f.label)
		if !l.defined() {
			return a.unresolved(l)
		}

		if f.relative {
			offset, err := relOffset(l.addr, f.base)
			if err != nil {
				return &Error{
					Kind:  BranchOutOfRange,
					Line:  f.row,
					Label: l.name,
					Msg:   fmt.Sprintf("branch to \"%s\" out of range", l.name),
				}
			}
			a.code[f.offset] = offset
		} else {
			a.code[f.offset] = byte(l.addr)
			a.code[f.offset+1] = byte(l.addr >> 8)
		}
		glog.V(2).Infof("label %q becomes $%04X at offset %d", l.name, l.addr, f.offset)
	}
	return nil
}

// Slide a two-byte window across the code and patch every position whose
// little-endian value equals a label placeholder. Data that happens to
// contain a placeholder value is patched too.
func (a *assembler) scanPlaceholders() error {
	var window uint16
	for i, b := range a.code {
		window = window<<8 | uint16(b)
		value := window>>8 | window<<8
		for _, l := range a.labels.labels {
			if value != l.placeholder || i == 0 {
				continue
			}
			if !l.defined() {
				return a.unresolved(l)
			}
			a.code[i-1] = byte(l.addr)
			a.code[i] = byte(l.addr >> 8)
			glog.V(2).Infof("label %q becomes $%04X at offset %d", l.name, l.addr, i-1)
		}
	}
	return nil
}

// In verbose mode, log a string to the output writer.
func (a *assembler) log(format string, args ...any) {
	if a.verbose {
		fmt.Fprintf(a.out, format, args...)
		fmt.Fprintf(a.out, "\n")
	}
}

// In verbose mode, log a string and its associated line of assembly code.
func (a *assembler) logLine(l *line, format string, args ...any) {
	if a.verbose {
		detail := fmt.Sprintf(format, args...)
		fmt.Fprintf(a.out, "%-4d | %-24s | %s\n", l.row, detail, l.text)
	}
}

// In verbose mode, log a section header to the output writer.
func (a *assembler) logSection(name string) {
	if a.verbose {
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
		fmt.Fprintf(a.out, "-- %s --\n", name)
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
	}
}
