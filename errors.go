// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package shellkit

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrProgramNotFound is returned at construction time when the first token
	// is neither an existing file nor found on the executable search path.
	ErrProgramNotFound = errors.New("program not found")
	// ErrEmptyCommand is returned when construction yields no tokens at all.
	ErrEmptyCommand = errors.New("command has no arguments")
	// ErrSplitArguments is returned when an argument cannot be split into words,
	// e.g. because of an unterminated quote.
	ErrSplitArguments = errors.New("could not split argument into words")
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrBufferOverflow is returned when captured output exceeds the max size.
	ErrBufferOverflow = fmt.Errorf("output exceeds max size of %d bytes", maxBufferSize)
	// ErrFailedToCreatePipe is returned when the pipe to a process could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrInvalidBatchSize is returned when a batch size smaller than one is requested.
	ErrInvalidBatchSize = errors.New("batch size must be at least 1")
)

// ExitError is returned by checked executions when the process exits with a
// non-zero code. It carries the command description and, for quiet or
// captured runs, the output produced before the failure.
type ExitError struct {
	Command  string // String() of the command that failed
	ExitCode int
	Output   string // captured output, empty if the run was not captured
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return "command " + strconv.Quote(e.Command) +
		" returned non-zero exit status " + strconv.Itoa(e.ExitCode)
}
