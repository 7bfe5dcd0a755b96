// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package shellkit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/matt-FFFFFF/shellkit/internal/ctxlog"
	"github.com/spf13/afero"
)

const maxBufferSize = 8 * 1024 * 1024 // 8MB per captured stream

// fs abstracts the filesystem used for output redirection so tests can run
// against an in-memory filesystem.
var fs afero.Fs = afero.NewOsFs()

// CommandResult is an immutable snapshot of one completed synchronous
// execution.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

type runConfig struct {
	quiet   bool
	noCheck bool
}

// RunOption configures a single execution call.
type RunOption func(*runConfig)

// WithQuiet captures output instead of attaching it to the terminal. The
// captured output is echoed only if the call fails while checking is on.
func WithQuiet() RunOption {
	return func(c *runConfig) {
		c.quiet = true
	}
}

// WithNoCheck disables the non-zero exit status check, so the exit code is
// returned instead of an *ExitError.
func WithNoCheck() RunOption {
	return func(c *runConfig) {
		c.noCheck = true
	}
}

// WithAttached reverses WithQuiet, leaving output attached to the terminal.
// Options apply in order, so it overrides the quiet default of a
// ParallelSet.
func WithAttached() RunOption {
	return func(c *runConfig) {
		c.quiet = false
	}
}

func newRunConfig(opts []RunOption) runConfig {
	cfg := runConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// Foreground runs the command synchronously and returns its exit code.
//
// By default stdout and stderr stay attached to the terminal. With
// WithQuiet the combined output is captured and echoed only if the command
// fails while checking is enabled. A non-zero exit code returns an
// *ExitError unless WithNoCheck is set.
func (c *Command) Foreground(ctx context.Context, opts ...RunOption) (int, error) {
	cfg := newRunConfig(opts)

	if !cfg.quiet {
		code, err := c.run(ctx, os.Stdout, os.Stderr)
		if err != nil {
			return -1, err
		}

		if code != 0 && !cfg.noCheck {
			return code, &ExitError{Command: c.String(), ExitCode: code}
		}

		return code, nil
	}

	buf := &cappedBuffer{max: maxBufferSize}

	code, err := c.run(ctx, buf, buf)
	if err != nil {
		return -1, err
	}

	if code != 0 && !cfg.noCheck {
		if out := buf.String(); out != "" {
			fmt.Println(strings.TrimRight(out, "\n"))
		}

		return code, &ExitError{Command: c.String(), ExitCode: code, Output: buf.String()}
	}

	return code, buf.overflowErr()
}

// Capture runs the command synchronously with stdout and stderr captured
// separately. The result is returned even when the command fails the exit
// status check, alongside the *ExitError.
func (c *Command) Capture(ctx context.Context, opts ...RunOption) (*CommandResult, error) {
	cfg := newRunConfig(opts)

	outBuf := &cappedBuffer{max: maxBufferSize}
	errBuf := &cappedBuffer{max: maxBufferSize}

	code, err := c.run(ctx, outBuf, errBuf)
	if err != nil {
		return nil, err
	}

	res := &CommandResult{
		Stdout:   outBuf.String(),
		Stderr:   errBuf.String(),
		ExitCode: code,
	}

	if code != 0 && !cfg.noCheck {
		return res, &ExitError{Command: c.String(), ExitCode: code, Output: res.Stdout}
	}

	return res, errors.Join(outBuf.overflowErr(), errBuf.overflowErr())
}

// Stdout runs the command and returns its trimmed standard output. Stderr is
// still directed to the user.
func (c *Command) Stdout(ctx context.Context, opts ...RunOption) (string, error) {
	cfg := newRunConfig(opts)

	buf := &cappedBuffer{max: maxBufferSize}

	code, err := c.run(ctx, buf, os.Stderr)
	if err != nil {
		return "", err
	}

	out := strings.TrimSpace(buf.String())

	if code != 0 && !cfg.noCheck {
		return out, &ExitError{Command: c.String(), ExitCode: code, Output: buf.String()}
	}

	return out, buf.overflowErr()
}

// Lines runs the command and returns its standard output line by line.
func (c *Command) Lines(ctx context.Context, opts ...RunOption) ([]string, error) {
	out, err := c.Stdout(ctx, opts...)
	if err != nil {
		return nil, err
	}

	if out == "" {
		return []string{}, nil
	}

	return strings.Split(out, "\n"), nil
}

// Success runs the command quietly and reports whether it exited zero.
func (c *Command) Success(ctx context.Context) bool {
	code, err := c.Foreground(ctx, WithQuiet(), WithNoCheck())
	return err == nil && code == 0
}

// WriteOutput runs the command and writes its combined stdout and stderr to
// the given file, replacing any previous contents. Nothing is written when
// the command fails.
func (c *Command) WriteOutput(ctx context.Context, path string) error {
	return c.writeOutput(ctx, path, os.O_TRUNC)
}

// AppendOutput runs the command and appends its combined stdout and stderr
// to the given file. Nothing is written when the command fails.
func (c *Command) AppendOutput(ctx context.Context, path string) error {
	return c.writeOutput(ctx, path, os.O_APPEND)
}

func (c *Command) writeOutput(ctx context.Context, path string, flag int) error {
	buf := &cappedBuffer{max: maxBufferSize}

	code, err := c.run(ctx, buf, buf)
	if err != nil {
		return err
	}

	if code != 0 {
		return &ExitError{Command: c.String(), ExitCode: code, Output: buf.String()}
	}

	f, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|flag, 0o644)
	if err != nil {
		return err
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	return buf.overflowErr()
}

// run resolves the pipe chain, executes the final stage synchronously with
// the given output writers and reaps every upstream stage it started.
func (c *Command) run(ctx context.Context, stdout, stderr io.Writer) (int, error) {
	src, upstream, err := c.startUpstream(ctx)
	if err != nil {
		return -1, err
	}

	proc := c.buildProc(src)
	proc.Stdout = stdout
	proc.Stderr = stderr

	ctxlog.Debug(ctx, "running command", "command", c.String())

	if err := proc.Start(); err != nil {
		reapFailed(upstream)
		return -1, errors.Join(ErrCouldNotStartProcess, err)
	}

	code, waitErr := waitExit(proc)

	reap(upstream)

	return code, waitErr
}

// waitExit waits for the process and maps a non-zero exit into a plain code
// rather than an error.
func waitExit(proc *exec.Cmd) (int, error) {
	err := proc.Wait()

	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode(), nil
	}

	if err != nil {
		return -1, err
	}

	return 0, nil
}

// cappedBuffer is an io.Writer that stops retaining data once max bytes have
// been written, recording that the output was truncated.
type cappedBuffer struct {
	buf       bytes.Buffer
	max       int
	truncated bool
}

// Write implements io.Writer. It always reports the full length consumed so
// the writing process is never stalled by the cap.
func (b *cappedBuffer) Write(p []byte) (int, error) {
	n := len(p)

	room := b.max - b.buf.Len()
	if room <= 0 {
		b.truncated = true
		return n, nil
	}

	if len(p) > room {
		p = p[:room]
		b.truncated = true
	}

	b.buf.Write(p)

	return n, nil
}

func (b *cappedBuffer) String() string {
	return b.buf.String()
}

func (b *cappedBuffer) Bytes() []byte {
	return b.buf.Bytes()
}

func (b *cappedBuffer) overflowErr() error {
	if b.truncated {
		return ErrBufferOverflow
	}

	return nil
}
