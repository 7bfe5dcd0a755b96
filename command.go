// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package shellkit

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"regexp"
	"slices"
	"strings"

	"github.com/matt-FFFFFF/shellkit/internal/ctxlog"
)

var whitespaceRe = regexp.MustCompile(`\s`)

// Command is an immutable value holding a resolved token vector, environment
// overrides and an optional upstream command acting as the pipe source.
//
// The executable named by the first token is resolved exactly once, at
// construction: a token naming an existing filesystem entry is used verbatim,
// anything else is searched for on PATH. Resolution failure is a
// construction-time error, never deferred to execution.
type Command struct {
	args  []string
	path  string            // resolved executable
	env   map[string]string // overrides, win over the inherited environment
	stdin *Command          // upstream pipe source, nil for the first stage
}

// New builds a Command from a mixed argument list. The context is used to run
// any nested commands that appear in the arguments.
func New(ctx context.Context, items ...any) (*Command, error) {
	args, err := tokenize(ctx, items)
	if err != nil {
		return nil, err
	}

	if len(args) == 0 {
		return nil, ErrEmptyCommand
	}

	path, err := resolveExecutable(ctx, args[0])
	if err != nil {
		return nil, err
	}

	return &Command{args: args, path: path}, nil
}

// resolveExecutable locates the program named by the first token. An existing
// filesystem entry is used verbatim, otherwise PATH is searched.
func resolveExecutable(ctx context.Context, name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrProgramNotFound, name)
	}

	ctxlog.Debug(ctx, "resolved executable", "name", name, "path", path)

	return path, nil
}

// With returns a new Command with the tokenized items appended to the
// receiver's argument vector. The resolved executable, environment overrides
// and pipe source carry over unchanged.
func (c *Command) With(ctx context.Context, items ...any) (*Command, error) {
	args, err := tokenize(ctx, items)
	if err != nil {
		return nil, err
	}

	return c.withTokens(args), nil
}

// MustWith is With for arguments that cannot fail to tokenize, such as plain
// flags. It panics on error and is intended for script-style call sites.
func (c *Command) MustWith(ctx context.Context, items ...any) *Command {
	cmd, err := c.With(ctx, items...)
	if err != nil {
		panic(err)
	}

	return cmd
}

// withTokens appends pre-tokenized arguments without re-tokenizing.
func (c *Command) withTokens(tokens []string) *Command {
	return &Command{
		args:  slices.Concat(c.args, tokens),
		path:  c.path,
		env:   c.env,
		stdin: c.stdin,
	}
}

// Env returns a new Command with the given environment override added.
// Overrides win over the inherited process environment, and a later override
// of the same key wins over an earlier one.
func (c *Command) Env(key, value string) *Command {
	env := maps.Clone(c.env)
	if env == nil {
		env = make(map[string]string, 1)
	}

	env[key] = value

	return &Command{args: c.args, path: c.path, env: env, stdin: c.stdin}
}

// Pipe connects the receiver's stdout to a downstream command and returns the
// downstream. The target is either a single *Command, whose arguments are
// reused, or an argument list from which the downstream is constructed. In
// both cases the downstream inherits the receiver's environment overrides.
func (c *Command) Pipe(ctx context.Context, target ...any) (*Command, error) {
	if len(target) == 1 {
		if t, ok := target[0].(*Command); ok {
			return &Command{args: t.args, path: t.path, env: maps.Clone(c.env), stdin: c}, nil
		}
	}

	down, err := New(ctx, target...)
	if err != nil {
		return nil, err
	}

	down.env = maps.Clone(c.env)
	down.stdin = c

	return down, nil
}

// Args returns a copy of the token vector.
func (c *Command) Args() []string {
	return slices.Clone(c.args)
}

// Executable returns the resolved path of the program to run.
func (c *Command) Executable() string {
	return c.path
}

// String renders the full pipe chain the way it would be written in a shell,
// quoting arguments that contain whitespace.
func (c *Command) String() string {
	sb := strings.Builder{}

	if c.stdin != nil {
		sb.WriteString(c.stdin.String())
		sb.WriteString(" | ")
	}

	for i, arg := range c.args {
		if i > 0 {
			sb.WriteString(" ")
		}

		if whitespaceRe.MatchString(arg) {
			sb.WriteString(`"` + arg + `"`)
			continue
		}

		sb.WriteString(arg)
	}

	return sb.String()
}

// environ merges the process environment with the command's overrides.
func (c *Command) environ() []string {
	env := os.Environ()

	for k, v := range c.env {
		env = append(env, k+"="+v)
	}

	return env
}

// InDir runs fn with the working directory changed to path, restoring the
// previous directory afterwards. Commands constructed or run inside fn see
// path as their working directory.
func InDir(path string, fn func() error) error {
	prev, err := os.Getwd()
	if err != nil {
		return err
	}

	if err := os.Chdir(path); err != nil {
		return err
	}

	defer os.Chdir(prev) //nolint:errcheck

	return fn()
}
