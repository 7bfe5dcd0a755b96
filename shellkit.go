// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package shellkit provides helpers for writing shell-like scripts in Go.
//
// Commands are immutable values built from mixed argument types. Plain
// strings are split by whitespace the way a shell would, quoted values stay
// whole, and nested commands are executed so that their output becomes part
// of the argument list:
//
//	cargo, err := shellkit.New(ctx, "cargo build --workspace")
//	// cargo is ["cargo", "build", "--workspace"]
//
// Commands can be curried, piped into one another and run in parallel:
//
//	wc, _ := shellkit.New(ctx, "wc")
//	echo, _ := shellkit.New(ctx, `echo "abcd"`)
//	chain, _ := echo.Pipe(ctx, wc.MustWith(ctx, "-c"))
//	out, _ := chain.Stdout(ctx) // "5"
//
// The executable is resolved once, when the command is constructed. Every
// derivation (With, Env, Pipe) returns a new value and never mutates the
// receiver.
package shellkit

var (
	// Version is set during the build process.
	Version = "dev"
	// Commit is set during the build process.
	Commit = "unknown"
)
