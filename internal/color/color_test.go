// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsColorEnabled(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, isColorEnabled(), "Expected color output to be disabled")

	t.Setenv("FORCE_COLOR", "1")
	assert.False(t, isColorEnabled(), "Expected color output to be disabled as NO_COLOR is still set")

	t.Setenv("NO_COLOR", "")
	assert.True(t, isColorEnabled(), "Expected color output to be enabled as FORCE_COLOR is set and NO_COLOR is unset")
}

func TestColorizeDisabled(t *testing.T) {
	original := enabled
	defer func() { enabled = original }()

	enabled = false
	assert.Equal(t, "plain", Colorize("plain", FgRed), "Colorize should be a no-op when disabled")
}

func TestColorizeEnabled(t *testing.T) {
	original := enabled
	defer func() { enabled = original }()

	enabled = true

	assert.Equal(t, "\033[31mred\033[0m", Colorize("red", FgRed))
	assert.Equal(t, "\033[1;31mbold red\033[0m", Colorize("bold red", Bold, FgRed), "multiple codes are joined with a semicolon")
}
