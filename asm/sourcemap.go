// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"encoding/json"
	"io"
	"sort"
)

// A SourceMap describes the mapping between source code line numbers and
// machine code addresses, along with the labels defined by the source.
type SourceMap struct {
	Origin uint16
	Size   uint32
	Lines  []SourceLine
	Labels []Label
}

// A SourceLine represents a mapping between a machine code address and the
// source code line used to generate it.
type SourceLine struct {
	Address int // Machine code address
	Line    int // Source code line number
}

// Search searches the source map for a mapping with the requested address.
// It returns -1 if no instruction starts at the address.
func (s *SourceMap) Search(addr int) (line int) {
	i := sort.Search(len(s.Lines), func(i int) bool {
		return s.Lines[i].Address >= addr
	})
	if i < len(s.Lines) && s.Lines[i].Address == addr {
		return s.Lines[i].Line
	}
	return -1
}

// Find returns the label defined at an address, if any.
func (s *SourceMap) Find(addr int) (Label, bool) {
	for _, l := range s.Labels {
		if int(l.Address) == addr {
			return l, true
		}
	}
	return Label{}, false
}

// ReadFrom reads the contents of an exported source map file.
func (s *SourceMap) ReadFrom(r io.Reader) (n int64, err error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	err = json.Unmarshal(b, s)
	if err != nil {
		return 0, err
	}
	return int64(len(b)), nil
}

// WriteTo writes the contents of the source map to an output stream.
func (s *SourceMap) WriteTo(w io.Writer) (n int64, err error) {
	b, err := json.Marshal(*s)
	if err != nil {
		return 0, err
	}

	nn, err := w.Write(b)
	return int64(nn), err
}
