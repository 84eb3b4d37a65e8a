// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/beevik/prefixtree/v2"
	"github.com/beevik/sixfive/asm"
)

type settings struct {
	Verbose     bool   `doc:"print an assembly listing"`
	Redefine    bool   `doc:"allow labels to be redefined"`
	Legacy      bool   `doc:"patch labels by scanning for placeholders"`
	Origin      uint16 `doc:"load address of the first byte"`
	DisasmLines int    `doc:"default number of lines to disassemble"`
}

func newSettings() *settings {
	return &settings{
		Verbose:     false,
		Redefine:    false,
		Legacy:      false,
		Origin:      0,
		DisasmLines: 10,
	}
}

type settingsField struct {
	name  string
	index int
	kind  reflect.Kind
	typ   reflect.Type
	doc   string
}

var (
	settingsTree   = prefixtree.New[*settingsField]()
	settingsFields []settingsField
)

func init() {
	settingsType := reflect.TypeOf(settings{})
	settingsFields = make([]settingsField, settingsType.NumField())
	for i := 0; i < len(settingsFields); i++ {
		f := settingsType.Field(i)
		doc, _ := f.Tag.Lookup("doc")
		settingsFields[i] = settingsField{
			name:  f.Name,
			index: i,
			kind:  f.Type.Kind(),
			typ:   f.Type,
			doc:   doc,
		}
		settingsTree.Add(strings.ToLower(f.Name), &settingsFields[i])
	}
}

// Return the assembler options selected by the settings.
func (s *settings) options() asm.Option {
	var o asm.Option
	if s.Verbose {
		o |= asm.Verbose
	}
	if s.Redefine {
		o |= asm.AllowRedefinition
	}
	if s.Legacy {
		o |= asm.LegacyBackpatch
	}
	return o
}

func (s *settings) Display(w io.Writer) {
	value := reflect.ValueOf(s).Elem()
	for i, f := range settingsFields {
		v := value.Field(i)
		var line string
		switch f.kind {
		case reflect.Uint16:
			line = fmt.Sprintf("    %-16s $%04X", f.name, uint16(v.Uint()))
		default:
			line = fmt.Sprintf("    %-16s %v", f.name, v)
		}
		fmt.Fprintf(w, "%-28s (%s)\n", line, f.doc)
	}
}

func (s *settings) Kind(key string) reflect.Kind {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return reflect.Invalid
	}
	return f.kind
}

// Set a setting by unique name prefix, returning the setting's full name.
func (s *settings) Set(key string, value any) (string, error) {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return "", err
	}

	vIn := reflect.ValueOf(value)
	if !vIn.Type().ConvertibleTo(f.typ) ||
		(f.kind == reflect.Bool) != (vIn.Kind() == reflect.Bool) {
		return "", errors.New("invalid type")
	}
	vInConverted := vIn.Convert(f.typ)

	vOut := reflect.ValueOf(s).Elem().Field(f.index)
	vOut.Set(vInConverted)

	return f.name, nil
}
