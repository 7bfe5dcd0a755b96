// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package shellkit

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"github.com/matt-FFFFFF/shellkit/internal/ctxlog"
)

// Handle is a live, unwaited execution started by Stream. Ownership of the
// handle transfers to the caller, who must call Wait exactly once. Waiting
// also reaps every upstream stage of the pipe chain.
type Handle struct {
	proc     *exec.Cmd
	out      io.ReadCloser
	upstream []stageProc
	desc     string
}

// Stream launches the command without blocking. Stderr stays attached to
// the user; stdout is exposed on the returned handle for chaining or later
// collection.
func (c *Command) Stream(ctx context.Context) (*Handle, error) {
	src, upstream, err := c.startUpstream(ctx)
	if err != nil {
		return nil, err
	}

	proc := c.buildProc(src)
	proc.Stderr = os.Stderr

	out, err := proc.StdoutPipe()
	if err != nil {
		reapFailed(upstream)
		return nil, errors.Join(ErrFailedToCreatePipe, err)
	}

	ctxlog.Debug(ctx, "streaming command", "command", c.String())

	if err := proc.Start(); err != nil {
		reapFailed(upstream)
		return nil, errors.Join(ErrCouldNotStartProcess, err)
	}

	return &Handle{proc: proc, out: out, upstream: upstream, desc: c.String()}, nil
}

// Output returns the process's standard output stream. It is valid until
// Wait is called.
func (h *Handle) Output() io.Reader {
	return h.out
}

// Wait blocks until the process exits and returns its exit code. It must be
// called exactly once, after all reads from Output have completed.
func (h *Handle) Wait() (int, error) {
	code, err := waitExit(h.proc)

	reap(h.upstream)

	return code, err
}

// String returns the shell-style rendering of the streamed command.
func (h *Handle) String() string {
	return h.desc
}
