// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main is the entry point for the shellkit command-line application.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/matt-FFFFFF/shellkit"
	"github.com/matt-FFFFFF/shellkit/cmd"
	"github.com/matt-FFFFFF/shellkit/internal/ctxlog"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	defer cancel()

	cmd.RootCmd.Version = fmt.Sprintf("%s (commit: %s)", shellkit.Version, shellkit.Commit)

	err := cmd.RootCmd.Run(ctx, os.Args)
	if err == nil {
		os.Exit(0)
	}

	// Normal mode prints one concise line; verbose mode adds any captured
	// output ahead of it.
	if ctxlog.LevelVar.Level() <= slog.LevelInfo {
		var exitErr *shellkit.ExitError
		if errors.As(err, &exitErr) && exitErr.Output != "" {
			fmt.Fprint(os.Stderr, exitErr.Output)
		}
	}

	ctxlog.Error(ctx, "command failed", "error", err)
	os.Exit(1)
}
