// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/beevik/sixfive/asm"
	"github.com/beevik/sixfive/disasm"
	"github.com/beevik/sixfive/host"
	"github.com/beevik/term"
	"github.com/golang/glog"
)

const (
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
	colorCyan   = "\x1b[36m"
	colorReset  = "\x1b[0m"
)

var (
	verbose     bool
	listing     bool
	origin      string
	redefine    bool
	legacy      bool
	mapPath     string
	interactive bool
)

func init() {
	flag.BoolVar(&verbose, "trace", false, "print the assembler passes as they run")
	flag.BoolVar(&listing, "list", false, "print a disassembly of the assembled code")
	flag.StringVar(&origin, "origin", "0", "load address of the first byte (prefix $ for hex)")
	flag.BoolVar(&redefine, "redefine", false, "allow labels to be redefined")
	flag.BoolVar(&legacy, "legacy", false, "patch labels by scanning the output for placeholders")
	flag.StringVar(&mapPath, "map", "", "write a source map to this file")
	flag.BoolVar(&interactive, "i", false, "start the interactive assembler shell")
	flag.CommandLine.Usage = func() {
		usage(os.Stdout)
		flag.CommandLine.SetOutput(os.Stdout)
		flag.PrintDefaults()
	}

	// Trace output goes to stderr unless asked otherwise.
	flag.Set("logtostderr", "true")
}

func main() {
	flag.Parse()
	os.Exit(run(flag.Args(), os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	defer glog.Flush()

	if interactive {
		h := host.New()
		h.RunCommands(os.Stdin, stdout, true)
		return 0
	}

	if len(args) < 2 {
		usage(stdout)
		return 0
	}

	org, err := parseOrigin(origin)
	if err != nil {
		printError(stderr, "Error: invalid origin \"%s\".", origin)
		return 1
	}

	var options asm.Option
	if verbose {
		options |= asm.Verbose
	}
	if redefine {
		options |= asm.AllowRedefinition
	}
	if legacy {
		options |= asm.LegacyBackpatch
	}

	in, out := args[0], args[1]
	assembly, err := asm.AssembleFile(in, out, mapPath, org, options, stdout)
	if err != nil {
		printError(stderr, "%v", err)
		return 1
	}

	if listing {
		for _, line := range disasm.Listing(assembly.Code, org) {
			fmt.Fprintln(stdout, line)
		}
	}

	printInfo(stdout, colorGreen, "Successfully assembled \"%s\" into \"%s\".", in, out)
	return 0
}

func usage(f *os.File) {
	printInfo(f, colorCyan, "sixfive: a small 6502 assembler.")
	printInfo(f, colorYellow, "Usage: sixfive [options] [file.S] [out.bin]")
}

// Parse a decimal or $-prefixed hexadecimal address.
func parseOrigin(s string) (uint16, error) {
	base := 10
	if len(s) > 0 && s[0] == '$' {
		s, base = s[1:], 16
	}
	v, err := strconv.ParseUint(s, base, 16)
	return uint16(v), err
}

func colorize(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func printInfo(f *os.File, color, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if colorize(f) {
		msg = color + msg + colorReset
	}
	fmt.Fprintln(f, msg)
}

func printError(f *os.File, format string, args ...any) {
	printInfo(f, colorRed, format, args...)
}
