// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package posix

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecutableName(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{name: "Relative path", args: []string{"./tls-trust-manager"}, expected: "tls-trust-manager"},
		{name: "Absolute path", args: []string{"/usr/local/bin/trustctl"}, expected: "trustctl"},
		{name: "Just filename", args: []string{"trustctl"}, expected: "trustctl"},
		{name: "Windows path", args: []string{`C:\bin\trustctl.exe`}, expected: "trustctl"},
		{name: "Windows extension only", args: []string{"trustctl.exe"}, expected: "trustctl"},
		{name: "Keeps other extensions", args: []string{"trustctl.bin"}, expected: "trustctl.bin"},
		{name: "Empty args", args: []string{}, expected: DefaultName},
		{name: "Empty first arg", args: []string{""}, expected: DefaultName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, executableName(tt.args))
		})
	}
}

func TestGetExecutableName_UsesOSArgs(t *testing.T) {
	original := os.Args
	defer func() { os.Args = original }()

	os.Args = []string{"/opt/bin/trust-check"}
	assert.Equal(t, "trust-check", GetExecutableName())
}
