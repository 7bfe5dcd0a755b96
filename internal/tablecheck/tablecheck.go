// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tablecheck validates line-oriented definition tables, such as
// generated syscall tables, for duplicate definitions.
//
// The filter is a streaming pass-through: every line is echoed verbatim in
// its original order. A line that is not a comment and contains a ":"
// delimiter defines a key, the leading token before the delimiter. The
// first repeated key aborts the pass with an error naming both the current
// and the original line index, and nothing is emitted.
package tablecheck

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DuplicateKeyError reports a key defined on two lines. Line indices are
// zero-based.
type DuplicateKeyError struct {
	Key       string
	Line      int // line index of the repeated definition
	FirstLine int // line index of the original definition
}

// Error implements the error interface for DuplicateKeyError.
func (e *DuplicateKeyError) Error() string {
	return "duplicate definition of " + strconv.Quote(e.Key) +
		" on line " + strconv.Itoa(e.Line) +
		", first defined on line " + strconv.Itoa(e.FirstLine)
}

// Filter copies r to w line by line, checking definition lines for
// duplicate keys along the way. On the first duplicate it returns a
// *DuplicateKeyError and writes nothing.
func Filter(r io.Reader, w io.Writer) error {
	out := &bytes.Buffer{}
	seen := make(map[string]int)

	sc := bufio.NewScanner(r)

	for i := 0; sc.Scan(); i++ {
		line := sc.Text()

		if key, ok := definitionKey(line); ok {
			if first, dup := seen[key]; dup {
				return &DuplicateKeyError{Key: key, Line: i, FirstLine: first}
			}

			seen[key] = i
		}

		fmt.Fprintln(out, line)
	}

	if err := sc.Err(); err != nil {
		return err
	}

	_, err := w.Write(out.Bytes())

	return err
}

// definitionKey extracts the key of a definition line. Comment lines and
// lines without a ":" delimiter define nothing.
func definitionKey(line string) (string, bool) {
	if strings.HasPrefix(line, "#") {
		return "", false
	}

	name, _, found := strings.Cut(line, ":")
	if !found {
		return "", false
	}

	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", false
	}

	return fields[0], true
}
