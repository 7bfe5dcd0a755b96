// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tablecheck contains the CLI wrapper for the definition-table
// duplicate filter. It reads standard input and echoes it to standard
// output, aborting on the first duplicate key.
package tablecheck

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/shellkit/internal/tablecheck"
	"github.com/urfave/cli/v3"
)

const exitCodeDuplicate = 1

// TableCheckCmd filters a definition table from stdin to stdout.
var TableCheckCmd = &cli.Command{
	Name:        "tablecheck",
	Usage:       "generate-table | shellkit tablecheck > table.txt",
	Description: "Pass a line-oriented definition table through unchanged, failing on duplicate keys.",
	Action:      actionFunc,
}

func actionFunc(_ context.Context, cmd *cli.Command) error {
	if err := tablecheck.Filter(os.Stdin, cmd.Writer); err != nil {
		return cli.Exit(err.Error(), exitCodeDuplicate)
	}

	return nil
}
