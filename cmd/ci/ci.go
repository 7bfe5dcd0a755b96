// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ci contains the continuous-integration step recipe: build the
// test suite, then run it, inside a working-directory context.
package ci

import (
	"context"

	"github.com/matt-FFFFFF/shellkit"
	"github.com/matt-FFFFFF/shellkit/internal/ctxlog"
	"github.com/urfave/cli/v3"
)

const rootFlag = "root"

// CICmd builds and runs the test suite.
var CICmd = &cli.Command{
	Name:        "ci",
	Usage:       "shellkit ci --root path/to/repo",
	Description: "Build the test suite, then run it, in the given working directory.",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    rootFlag,
			Aliases: []string{"C"},
			Usage:   "Working directory for the steps",
			Value:   ".",
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	return shellkit.InDir(cmd.String(rootFlag), func() error {
		if err := step(ctx, "Build tests", "go build ./..."); err != nil {
			return err
		}

		return step(ctx, "Run tests", "go test ./...")
	})
}

func step(ctx context.Context, name, command string) error {
	ctxlog.Info(ctx, "running step", "step", name, "command", command)

	c, err := shellkit.New(ctx, command)
	if err != nil {
		return err
	}

	_, err = c.Foreground(ctx)

	return err
}
