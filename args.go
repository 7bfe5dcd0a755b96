// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package shellkit

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/shlex"
)

// Path marks an argument as a filesystem path. Paths always contribute
// exactly one token, even when they contain whitespace.
type Path string

// Quoted wraps a literal string so the tokenizer treats it as one
// indivisible token.
type Quoted struct {
	value string
}

// Quote returns a Quoted wrapping the string representation of v.
func Quote(v any) Quoted {
	return Quoted{value: fmt.Sprint(v)}
}

// QuoteOutput runs cmd and returns a Quoted wrapping its trimmed stdout,
// so that the whole output becomes a single token regardless of spaces.
func QuoteOutput(ctx context.Context, cmd *Command) (Quoted, error) {
	out, err := cmd.Stdout(ctx)
	if err != nil {
		return Quoted{}, err
	}

	return Quoted{value: out}, nil
}

// String returns the wrapped value surrounded by double quotes.
func (q Quoted) String() string {
	return `"` + q.value + `"`
}

// tokenize converts a heterogeneous argument list into a flat token vector.
// The dispatch is a closed set, each kind with its own splitting rule:
//
//   - Path: exactly one token, never split.
//   - Quoted: exactly one token.
//   - *Command: executed synchronously, trimmed stdout is shell-split.
//   - nil and false: no tokens, so flags can be included conditionally.
//   - anything else: stringified, then shell-split.
func tokenize(ctx context.Context, items []any) ([]string, error) {
	tokens := make([]string, 0, len(items))

	for _, item := range items {
		switch v := item.(type) {
		case nil:
			continue
		case Path:
			tokens = append(tokens, string(v))
		case Quoted:
			tokens = append(tokens, v.value)
		case *Command:
			out, err := v.Stdout(ctx)
			if err != nil {
				return nil, err
			}

			words, err := splitWords(out)
			if err != nil {
				return nil, err
			}

			tokens = append(tokens, words...)
		case bool:
			if !v {
				continue
			}

			tokens = append(tokens, "true")
		default:
			words, err := splitWords(fmt.Sprint(v))
			if err != nil {
				return nil, err
			}

			tokens = append(tokens, words...)
		}
	}

	return tokens, nil
}

// splitWords splits a string by whitespace, treating a double-quoted span
// as a single word with the quotes stripped. Empty fragments are dropped.
func splitWords(s string) ([]string, error) {
	words, err := shlex.Split(s)
	if err != nil {
		return nil, errors.Join(ErrSplitArguments, err)
	}

	out := words[:0]

	for _, w := range words {
		if w == "" {
			continue
		}

		out = append(out, w)
	}

	return out, nil
}
