// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmd contains the command-line interface (CLI) for the module.
package cmd

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/shellkit/cmd/ci"
	"github.com/matt-FFFFFF/shellkit/cmd/review"
	"github.com/matt-FFFFFF/shellkit/cmd/tablecheck"
	"github.com/matt-FFFFFF/shellkit/internal/ctxlog"
	"github.com/urfave/cli/v3"
)

const (
	verboseFlag     = "verbose"
	veryVerboseFlag = "very-verbose"
)

// RootCmd is the root command for the CLI.
var RootCmd = &cli.Command{
	Commands: []*cli.Command{
		ci.CICmd,
		tablecheck.TableCheckCmd,
		review.ReviewCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "shellkit",
	Description: `Shellkit is a library and tool set for writing shell-like scripts in Go.
It builds immutable command values from mixed arguments with shell-style
word splitting, chains them via pipes, and runs them in the foreground,
captured, streamed, or in parallel over a bounded worker pool. The bundled
tools cover a CI step recipe, a definition-table duplicate check, and a
Gerrit code-review client.`,
	Usage:     "shellkit ci --root .",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    verboseFlag,
			Aliases: []string{"v"},
			Usage:   "Print debug output",
		},
		&cli.BoolFlag{
			Name:    veryVerboseFlag,
			Aliases: []string{"vv"},
			Usage:   "Print more debug output",
		},
	},
	Before:                performVerbositySetup,
	EnableShellCompletion: true,
}

// performVerbositySetup maps the verbosity flags onto the log level for this
// invocation.
func performVerbositySetup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	switch {
	case cmd.Bool(veryVerboseFlag):
		ctxlog.SetVerbosity(2) //nolint:mnd
	case cmd.Bool(verboseFlag):
		ctxlog.SetVerbosity(1)
	}

	return ctx, nil
}
