// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package shellkit

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"slices"

	"github.com/matt-FFFFFF/shellkit/internal/ctxlog"
)

// stageProc is one started upstream stage together with the parent's read
// end of its output pipe. The reader must be closed before waiting on the
// stage: a stage still writing after its consumer exited would otherwise
// never see a broken pipe and never terminate.
type stageProc struct {
	proc *exec.Cmd
	out  io.ReadCloser
}

// stages flattens the pipe chain into an explicit list, upstream first.
// Because commands are immutable and the upstream reference is fixed at
// construction, the chain is a finite, acyclic list.
func (c *Command) stages() []*Command {
	var s []*Command

	for cur := c; cur != nil; cur = cur.stdin {
		s = append(s, cur)
	}

	slices.Reverse(s)

	return s
}

// startUpstream starts every stage above the receiver, wiring each stage's
// stdout into the next stage's stdin, and returns the reader connected to
// the last upstream's stdout. The receiver itself is not started. The caller
// owns the returned processes and must reap them after waiting on its own
// stage.
func (c *Command) startUpstream(ctx context.Context) (io.Reader, []stageProc, error) {
	chain := c.stages()
	chain = chain[:len(chain)-1]

	var src io.Reader

	started := make([]stageProc, 0, len(chain))

	for _, stage := range chain {
		proc := stage.buildProc(src)
		proc.Stderr = os.Stderr

		out, err := proc.StdoutPipe()
		if err != nil {
			reapFailed(started)
			return nil, nil, errors.Join(ErrFailedToCreatePipe, err)
		}

		ctxlog.Debug(ctx, "starting pipe stage", "args", stage.args)

		if err := proc.Start(); err != nil {
			reapFailed(started)
			return nil, nil, errors.Join(ErrCouldNotStartProcess, err)
		}

		started = append(started, stageProc{proc: proc, out: out})
		src = out
	}

	return src, started, nil
}

// buildProc builds the OS process for one stage, merging the inherited
// environment with the command's overrides. A chain head inherits the
// caller's stdin, the same way a shell attaches the first stage of a
// pipeline to the terminal.
func (c *Command) buildProc(stdin io.Reader) *exec.Cmd {
	proc := exec.Command(c.path, c.args[1:]...)

	if stdin == nil {
		stdin = os.Stdin
	}

	proc.Stdin = stdin
	proc.Env = c.environ()

	return proc
}

// reap waits on started upstream stages, nearest upstream first. The
// parent's read end of each stage's pipe is closed before waiting, so a
// stage whose consumer exited without draining it gets a broken pipe on its
// next write and terminates instead of blocking forever. Upstream exit
// codes are not part of the chain's result and are dropped.
func reap(procs []stageProc) {
	for i := len(procs) - 1; i >= 0; i-- {
		_ = procs[i].out.Close()
		_ = procs[i].proc.Wait()
	}
}

// reapFailed kills and waits upstream stages after the chain failed to come
// up, so that no process is left dangling.
func reapFailed(procs []stageProc) {
	for _, p := range procs {
		_ = p.out.Close()

		if p.proc.Process != nil {
			_ = p.proc.Process.Kill()
		}

		_ = p.proc.Wait()
	}
}
