// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package shellkit

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// ParallelSet is an ordered, non-owning view over commands submitted
// together for concurrent execution. Results always mirror submission
// order, independent of completion order.
type ParallelSet struct {
	cmds []*Command
}

// Parallel groups commands for concurrent execution on a worker pool sized
// to the host's available parallelism.
func Parallel(cmds ...*Command) *ParallelSet {
	return &ParallelSet{cmds: slices.Clone(cmds)}
}

// Foreground runs every command concurrently and returns the exit codes in
// submission order. Output is quiet by default so concurrent streams do not
// interleave; a caller-supplied WithAttached restores terminal output. All
// commands run to completion; a failure never cancels siblings. Every
// failure is folded into the returned error, and the partial results are
// always preserved alongside it.
func (p *ParallelSet) Foreground(ctx context.Context, opts ...RunOption) ([]int, error) {
	codes := make([]int, len(p.cmds))
	errs := make([]error, len(p.cmds))

	p.fanOut(func(i int) {
		codes[i], errs[i] = p.cmds[i].Foreground(ctx, append([]RunOption{WithQuiet()}, opts...)...)
	})

	return codes, p.collect(errs)
}

// Stdout runs every command concurrently and returns each command's trimmed
// standard output in submission order, with the same failure policy as
// Foreground.
func (p *ParallelSet) Stdout(ctx context.Context, opts ...RunOption) ([]string, error) {
	outs := make([]string, len(p.cmds))
	errs := make([]error, len(p.cmds))

	p.fanOut(func(i int) {
		outs[i], errs[i] = p.cmds[i].Stdout(ctx, opts...)
	})

	return outs, p.collect(errs)
}

// fanOut runs fn for every command index over a bounded worker pool and
// blocks until all have completed.
func (p *ParallelSet) fanOut(fn func(i int)) {
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	wg := &sync.WaitGroup{}

	for i := range p.cmds {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			fn(i)
		}(i)
	}

	wg.Wait()
}

// collect folds per-command failures into one aggregate error, keyed by
// submission index.
func (p *ParallelSet) collect(errs []error) error {
	var merr *multierror.Error

	for i, err := range errs {
		if err == nil {
			continue
		}

		merr = multierror.Append(merr, fmt.Errorf("command %d (%s): %w", i, p.cmds[i], err))
	}

	return merr.ErrorOrNil()
}
