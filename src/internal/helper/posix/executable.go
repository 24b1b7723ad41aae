// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package posix

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultName is returned by [GetExecutableName] when os.Args carries no program name.
const DefaultName = "tls-trust-manager"

// GetExecutableName returns the executable name without extension, cross-platform compatible.
// It is used for the cobra usage line so help output matches the name the binary was invoked with.
//
// Returns:
//   - string: Clean executable name suitable for CLI usage
func GetExecutableName() string { return executableName(os.Args) }

func executableName(args []string) string {
	if len(args) == 0 || args[0] == "" {
		return DefaultName
	}

	name := filepath.Base(args[0])

	// A Windows path seen on a Unix host (or the reverse) is not split by filepath.Base.
	if strings.ContainsAny(name, `\/`) {
		parts := strings.FieldsFunc(name, func(r rune) bool {
			return r == '/' || r == '\\'
		})
		if len(parts) > 0 {
			name = parts[len(parts)-1]
		}
	}

	name = strings.TrimSuffix(name, ".exe")
	if name == "" || name == "." {
		return DefaultName
	}
	return name
}
