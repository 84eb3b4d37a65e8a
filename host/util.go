// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"fmt"
	"strconv"
	"strings"
)

func stringToBool(s string) (bool, error) {
	s = strings.ToLower(s)
	switch s {
	case "0", "false", "off":
		return false, nil
	case "1", "true", "on":
		return true, nil
	default:
		return false, fmt.Errorf("invalid bool value '%s'", s)
	}
}

// Parse a decimal or $-prefixed hexadecimal number of at most bits bits.
func parseNumber(s string, bits int) (uint64, error) {
	base := 10
	if strings.HasPrefix(s, "$") {
		s, base = s[1:], 16
	}
	v, err := strconv.ParseUint(s, base, bits)
	if err != nil {
		return 0, fmt.Errorf("invalid number '%s'", s)
	}
	return v, nil
}

// Word-wrap a string to 80 columns, indenting each line.
func indentWrap(indent int, s string) string {
	ss := strings.Fields(s)
	prefix := strings.Repeat(" ", indent)
	var b strings.Builder
	col := 0
	for i, w := range ss {
		switch {
		case i == 0:
			b.WriteString(prefix)
			col = indent
		case col+1+len(w) > 80:
			b.WriteString("\n")
			b.WriteString(prefix)
			col = indent
		default:
			b.WriteString(" ")
			col++
		}
		b.WriteString(w)
		col += len(w)
	}
	return b.String()
}

// Return a space-separated hexadecimal string of a byte slice.
func codeString(b []byte) string {
	s := make([]string, len(b))
	for i, v := range b {
		s[i] = fmt.Sprintf("%02X", v)
	}
	return strings.Join(s, " ")
}
