// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host provides an interactive shell around the assembler.
//
// Within the host it is possible to assemble source files, list the labels
// they define, disassemble the machine code they produce, and adjust the
// assembler's configuration between runs.
package host

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/beevik/cmd"
	"github.com/beevik/sixfive/asm"
	"github.com/beevik/sixfive/disasm"
	"github.com/golang/glog"
)

var errQuit = errors.New("Exiting program")

// A command line selected for execution, kept so that an empty line can
// repeat it.
type selection struct {
	cmd  *cmd.Command
	args []string
}

// A Host holds the state of an interactive assembler session.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	lastCmd     *selection
	settings    *settings
	assembly    *asm.Assembly
	nextDisasm  int
}

// New creates a new assembler host.
func New() *Host {
	return &Host{
		settings: newSettings(),
	}
}

// RunCommands accepts host commands from a reader and outputs the results
// to a writer. If the commands are interactive, a prompt is displayed while
// the host waits for the next command to be entered.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive

	if interactive {
		h.println()
	}

	for {
		h.prompt()

		line, err := h.getLine()
		if err != nil {
			break
		}

		var sel selection
		if line != "" {
			n, args, err := cmds.Lookup(line)
			if err != nil {
				h.printf("ERROR: %v.\n", err)
				continue
			}
			c, ok := n.(*cmd.Command)
			if !ok {
				h.println("Command not found.")
				continue
			}
			sel = selection{cmd: c, args: args}
		} else if h.lastCmd != nil {
			sel = *h.lastCmd
		}

		if sel.cmd == nil {
			continue
		}
		h.lastCmd = &sel

		glog.V(1).Infof("host command %q", line)
		handler := sel.cmd.Data.(func(*Host, *cmd.Command, []string) error)
		err = handler(h, sel.cmd, sel.args)
		if err != nil {
			break
		}
	}
	h.flush()
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return strings.TrimSpace(h.input.Text()), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if h.interactive {
		h.printf("* ")
	}
}

func (h *Host) cmdAssemble(c *cmd.Command, args []string) error {
	if len(args) < 2 {
		h.displayUsage("assemble")
		return nil
	}

	in, out := args[0], args[1]
	mapPath := mapFilename(out)

	assembly, err := asm.AssembleFile(in, out, mapPath, h.settings.Origin, h.settings.options(), h.output)
	h.flush()
	if err != nil {
		h.printf("Failed to assemble: %s\n", filepath.Base(in))
		h.println(err)
		return nil
	}

	h.assembly = assembly
	h.nextDisasm = int(h.settings.Origin)
	h.printf("Assembled '%s' to '%s' (%d bytes).\n", filepath.Base(in), filepath.Base(out), len(assembly.Code))
	return nil
}

func (h *Host) cmdDisassemble(c *cmd.Command, args []string) error {
	if h.assembly == nil || len(h.assembly.Code) == 0 {
		h.println("Nothing assembled.")
		return nil
	}

	origin := int(h.assembly.SourceMap.Origin)

	addr := h.nextDisasm
	if len(args) > 0 && args[0] != "$" {
		v, err := parseNumber(args[0], 16)
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = int(v)
	}

	lines := h.settings.DisasmLines
	if len(args) > 1 {
		v, err := parseNumber(args[1], 16)
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		lines = int(v)
	}

	code := h.assembly.Code
	offset := addr - origin
	if offset < 0 || offset >= len(code) {
		h.printf("Address $%04X is outside the assembled code.\n", addr)
		return nil
	}

	for i := 0; i < lines && offset < len(code); i++ {
		if l, ok := h.assembly.SourceMap.Find(origin + offset); ok {
			h.printf("%s:\n", l.Name)
		}
		d, next := disasm.Disassemble(code, offset, uint16(origin))
		if row := h.assembly.SourceMap.Search(origin + offset); row > 0 {
			h.printf("%04X-   %-8s    %-16s ; line %d\n", origin+offset, codeString(code[offset:next]), d, row)
		} else {
			h.printf("%04X-   %-8s    %s\n", origin+offset, codeString(code[offset:next]), d)
		}
		offset = next
	}

	h.nextDisasm = origin + offset
	h.lastCmd.args = []string{"$", fmt.Sprintf("%d", lines)}
	return nil
}

func (h *Host) cmdHelp(c *cmd.Command, args []string) error {
	if len(args) == 0 {
		h.println("Commands:")
		for _, d := range commands {
			h.printf("    %-15s  %s\n", d.Name, d.Brief)
		}
		return nil
	}

	d, err := descriptor(strings.ToLower(args[0]))
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	h.printf("Syntax: %s\n\n", d.Usage)
	h.printf("Description:\n%s\n\n", indentWrap(3, d.Description))
	return nil
}

func (h *Host) cmdLabels(c *cmd.Command, args []string) error {
	if h.assembly == nil || len(h.assembly.Labels) == 0 {
		h.println("No labels defined.")
		return nil
	}
	for _, l := range h.assembly.Labels {
		h.printf("%-16s $%04X  line %d\n", l.Name, l.Address, l.Line)
	}
	return nil
}

func (h *Host) cmdLoad(c *cmd.Command, args []string) error {
	if len(args) < 1 {
		h.displayUsage("load")
		return nil
	}

	binPath := args[0]
	code, err := os.ReadFile(binPath)
	if err != nil {
		h.printf("Failed to open '%s': %v\n", filepath.Base(binPath), err)
		return nil
	}

	mapPath := mapFilename(binPath)
	if len(args) > 1 {
		mapPath = args[1]
	}

	m := &asm.SourceMap{Origin: h.settings.Origin, Size: uint32(len(code))}
	file, err := os.Open(mapPath)
	switch {
	case err == nil:
		_, err = m.ReadFrom(file)
		file.Close()
		if err != nil {
			h.printf("Failed to read '%s': %v\n", filepath.Base(mapPath), err)
			return nil
		}
	case len(args) > 1:
		h.printf("Failed to open '%s': %v\n", filepath.Base(mapPath), err)
		return nil
	}

	h.assembly = &asm.Assembly{Code: code, Labels: m.Labels, SourceMap: m}
	h.nextDisasm = int(m.Origin)
	h.printf("Loaded '%s' at $%04X (%d bytes).\n", filepath.Base(binPath), m.Origin, len(code))
	return nil
}

func (h *Host) cmdQuit(c *cmd.Command, args []string) error {
	return errQuit
}

func (h *Host) cmdSet(c *cmd.Command, args []string) error {
	switch len(args) {
	case 0:
		h.println("Variables:")
		h.settings.Display(h.output)
		h.flush()

	case 1:
		h.displayUsage("set")

	default:
		key, value := strings.ToLower(args[0]), strings.Join(args[1:], " ")

		var name string
		var err error
		switch h.settings.Kind(key) {
		case reflect.Invalid:
			err = fmt.Errorf("Setting '%s' not found", key)
		case reflect.Bool:
			var v bool
			v, err = stringToBool(value)
			if err == nil {
				name, err = h.settings.Set(key, v)
			}
		case reflect.Uint16:
			var v uint64
			v, err = parseNumber(value, 16)
			if err == nil {
				name, err = h.settings.Set(key, uint16(v))
			}
		default:
			var v uint64
			v, err = parseNumber(value, 31)
			if err == nil {
				name, err = h.settings.Set(key, int(v))
			}
		}

		if err == nil {
			glog.V(1).Infof("setting %s = %s", name, value)
			h.println("Setting updated.")
		} else {
			h.printf("%v\n", err)
		}
	}
	return nil
}

func (h *Host) displayUsage(name string) {
	if d, err := descriptor(name); err == nil && d.Usage != "" {
		h.printf("Syntax: %s\n", d.Usage)
	} else {
		h.println("<no help text>")
	}
}

// Return the source map path that accompanies a binary file.
func mapFilename(binPath string) string {
	mapPath := strings.TrimSuffix(binPath, filepath.Ext(binPath)) + ".map"
	if mapPath == binPath {
		mapPath += ".map"
	}
	return mapPath
}
