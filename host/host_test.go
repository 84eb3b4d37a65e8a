// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSession(t *testing.T, h *Host, commands ...string) string {
	t.Helper()
	var out bytes.Buffer
	h.RunCommands(strings.NewReader(strings.Join(commands, "\n")+"\n"), &out, false)
	return out.String()
}

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

func TestHostAssemble(t *testing.T) {
	dir := t.TempDir()
	in := writeSource(t, dir, "prog.S", "START: LDA #$01\n\tBNE START\n\tRTS\n")
	out := filepath.Join(dir, "prog.bin")

	h := New()
	s := runSession(t, h,
		"set origin $0600",
		"assemble "+in+" "+out,
		"labels",
		"disassemble",
		"quit",
	)

	assert.Contains(t, s, "Setting updated.")
	assert.Contains(t, s, "Assembled 'prog.S' to 'prog.bin' (5 bytes).")
	assert.Contains(t, s, "START            $0600  line 1")
	assert.Contains(t, s, "START:\n0600-   A9 01       LDA #$01         ; line 1\n")
	assert.Contains(t, s, "0602-   D0 FC       BNE $0600        ; line 2\n")
	assert.Contains(t, s, "0604-   60          RTS              ; line 3\n")

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xa9, 0x01, 0xd0, 0xfc, 0x60}, b)
	assert.FileExists(t, filepath.Join(dir, "prog.map"))
}

func TestHostAssembleFailure(t *testing.T) {
	dir := t.TempDir()
	in := writeSource(t, dir, "bad.S", "JMP NOWHERE\n")
	out := filepath.Join(dir, "bad.bin")

	h := New()
	s := runSession(t, h, "assemble "+in+" "+out, "labels", "disassemble")

	assert.Contains(t, s, "Failed to assemble: bad.S")
	assert.Contains(t, s, `Syntax error on line 1: unrecognized operand/label "NOWHERE".`)
	assert.Contains(t, s, "No labels defined.")
	assert.Contains(t, s, "Nothing assembled.")
	assert.NoFileExists(t, out)
}

func TestHostDisassembleRange(t *testing.T) {
	dir := t.TempDir()
	in := writeSource(t, dir, "nops.S", "NOP\nNOP\nNOP\nNOP\n")
	out := filepath.Join(dir, "nops.bin")

	h := New()
	s := runSession(t, h,
		"assemble "+in+" "+out,
		"disassemble $0002 1",
		"disassemble $0010",
	)

	assert.Contains(t, s, "0002-   EA          NOP              ; line 3\n")
	assert.NotContains(t, s, "0001-   EA")
	assert.NotContains(t, s, "0003-   EA")
	assert.Contains(t, s, "Address $0010 is outside the assembled code.")
}

func TestHostLoad(t *testing.T) {
	dir := t.TempDir()
	in := writeSource(t, dir, "prog.S", "START: NOP\n\tJMP START\n")
	out := filepath.Join(dir, "prog.bin")

	// Assemble in one session and load the results in another.
	s := runSession(t, New(), "set origin $1000", "assemble "+in+" "+out)
	require.Contains(t, s, "Assembled 'prog.S'")

	h := New()
	s = runSession(t, h, "load "+out, "labels", "disassemble")
	assert.Contains(t, s, "Loaded 'prog.bin' at $1000 (4 bytes).")
	assert.Contains(t, s, "START            $1000  line 1")
	assert.Contains(t, s, "1001-   4C 00 10    JMP $1000        ; line 2\n")
}

func TestHostLoadRaw(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "raw.bin")
	require.NoError(t, os.WriteFile(bin, []byte{0xa9, 0x01, 0x60}, 0644))

	h := New()
	s := runSession(t, h,
		"set origin $0800",
		"load "+bin,
		"disassemble",
		"load "+bin+" "+filepath.Join(dir, "missing.map"),
		"load "+filepath.Join(dir, "missing.bin"),
	)
	assert.Contains(t, s, "Loaded 'raw.bin' at $0800 (3 bytes).")
	assert.Contains(t, s, "0800-   A9 01       LDA #$01\n")
	assert.Contains(t, s, "0802-   60          RTS\n")
	assert.Contains(t, s, "Failed to open 'missing.map'")
	assert.Contains(t, s, "Failed to open 'missing.bin'")
}

func TestMapFilename(t *testing.T) {
	assert.Equal(t, "prog.map", mapFilename("prog.bin"))
	assert.Equal(t, "prog.map", mapFilename("prog"))
	assert.Equal(t, "prog.map.map", mapFilename("prog.map"))
}

func TestHostRepeatCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeSource(t, dir, "nops.S", "NOP\nNOP\nNOP\n")
	out := filepath.Join(dir, "nops.bin")

	h := New()
	s := runSession(t, h, "assemble "+in+" "+out, "disassemble $0000 1", "", "")
	assert.Contains(t, s, "0000-   EA          NOP              ; line 1\n")
	assert.Contains(t, s, "0001-   EA          NOP              ; line 2\n")
	assert.Contains(t, s, "0002-   EA          NOP              ; line 3\n")
}

func TestHostSettings(t *testing.T) {
	h := New()
	s := runSession(t, h,
		"set redefine on",
		"set disasm 4",
		"set legacy maybe",
		"set nothing 1",
		"set",
	)

	assert.True(t, h.settings.Redefine)
	assert.Equal(t, 4, h.settings.DisasmLines)
	assert.False(t, h.settings.Legacy)
	assert.Contains(t, s, "invalid bool value 'maybe'")
	assert.Contains(t, s, "Setting 'nothing' not found")
	assert.Contains(t, s, "Variables:")
	assert.Contains(t, s, "Redefine")
}

func TestHostHelp(t *testing.T) {
	h := New()
	s := runSession(t, h, "help", "help assemble")

	assert.Contains(t, s, "Commands:")
	assert.Contains(t, s, "disassemble")
	assert.Contains(t, s, "Syntax: assemble <source> <binary>")
}

func TestHostQuit(t *testing.T) {
	h := New()
	s := runSession(t, h, "quit", "help")
	assert.NotContains(t, s, "Commands:")
}

func TestSettingsOptions(t *testing.T) {
	s := newSettings()
	assert.Zero(t, s.options())

	_, err := s.Set("verbose", true)
	require.NoError(t, err)
	name, err := s.Set("leg", true)
	require.NoError(t, err)
	assert.Equal(t, "Legacy", name)

	_, err = s.Set("verbose", 3)
	assert.Error(t, err)
	assert.NotZero(t, s.options())
}

func TestStringToBool(t *testing.T) {
	for _, s := range []string{"1", "true", "ON"} {
		v, err := stringToBool(s)
		assert.NoError(t, err)
		assert.True(t, v)
	}
	for _, s := range []string{"0", "False", "off"} {
		v, err := stringToBool(s)
		assert.NoError(t, err)
		assert.False(t, v)
	}
	_, err := stringToBool("yes")
	assert.Error(t, err)
}

func TestParseNumber(t *testing.T) {
	v, err := parseNumber("$ff", 16)
	require.NoError(t, err)
	assert.Equal(t, uint64(255), v)

	v, err = parseNumber("1024", 16)
	require.NoError(t, err)
	assert.Equal(t, uint64(1024), v)

	_, err = parseNumber("$10000", 16)
	assert.Error(t, err)
	_, err = parseNumber("abc", 16)
	assert.Error(t, err)
}

func TestIndentWrap(t *testing.T) {
	s := indentWrap(3, strings.Repeat("word ", 30))
	for _, line := range strings.Split(s, "\n") {
		assert.LessOrEqual(t, len(line), 80)
		assert.True(t, strings.HasPrefix(line, "   word"))
	}
}
