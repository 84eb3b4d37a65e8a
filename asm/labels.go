// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"errors"
	"fmt"

	"github.com/golang/glog"
)

// Placeholders are assigned sequentially from this base, which sits above
// any address an instruction operand normally takes.
const placeholderBase = 0xfeff

// Address value of a label that has been referenced but not yet defined.
const addrUnknown = -1

// One past the highest address in the 6502 address space.
const addrLimit = 0x10000

var errRedefined = errors.New("label used more than once")

// A label tracks a symbolic name through both assembly passes.
type label struct {
	name        string // unique label name
	placeholder uint16 // value emitted for references during pass 1
	addr        int    // resolved address, or addrUnknown
	refLine     int    // line of the first reference, 0 if never referenced
	defLine     int    // line of the most recent definition
}

func (l *label) defined() bool {
	return l.addr != addrUnknown
}

// A labelTable holds the labels of a single assembly run.
type labelTable struct {
	labels        []*label
	index         map[string]int
	allowRedefine bool
}

func newLabelTable(allowRedefine bool) *labelTable {
	return &labelTable{
		index:         make(map[string]int),
		allowRedefine: allowRedefine,
	}
}

// Find a label by name, creating it if it does not exist. If addr is
// known, it becomes the label's address. Names shaped like an operand
// literal or a register in either case are rejected.
func (t *labelTable) findOrCreate(name string, addr int) (int, error) {
	if i, ok := t.index[name]; ok {
		l := t.labels[i]
		if addr != addrUnknown {
			if l.defined() {
				if !t.allowRedefine {
					return i, fmt.Errorf("%w: \"%s\"", errRedefined, name)
				}
				glog.Warningf("label %q redefined: $%04X becomes $%04X", name, l.addr, addr)
			}
			l.addr = addr
		}
		return i, nil
	}

	if name == "" {
		return -1, fmt.Errorf("missing label name")
	}
	if Classify(foldRegister(name)) != Unclassified {
		return -1, fmt.Errorf("label \"%s\" looks like an operand literal", name)
	}

	i := len(t.labels)
	t.labels = append(t.labels, &label{
		name:        name,
		placeholder: uint16(placeholderBase + i),
		addr:        addr,
	})
	t.index[name] = i
	return i, nil
}

// Record a label reference made on the given source line.
func (t *labelTable) reference(name string, row int) (int, error) {
	i, err := t.findOrCreate(name, addrUnknown)
	if err != nil {
		return i, err
	}
	if l := t.labels[i]; l.refLine == 0 {
		l.refLine = row
	}
	return i, nil
}

// Define a label at an address on the given source line.
func (t *labelTable) define(name string, addr, row int) (int, error) {
	i, err := t.findOrCreate(name, addr)
	if err != nil {
		return i, err
	}
	t.labels[i].defLine = row
	return i, nil
}

func (t *labelTable) get(i int) *label {
	return t.labels[i]
}

// A Label is a named address produced by assembly.
type Label struct {
	Name    string // label name
	Address uint16 // resolved address
	Line    int    // source line of the definition
}

// Return all defined labels in creation order.
func (t *labelTable) export() []Label {
	labels := make([]Label, 0, len(t.labels))
	for _, l := range t.labels {
		if l.defined() {
			labels = append(labels, Label{Name: l.name, Address: uint16(l.addr), Line: l.defLine})
		}
	}
	return labels
}
