// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package posix provides [POSIX]-compliant helper functions for cross-platform compatibility.
//
// Key functions:
//   - GetExecutableName: Returns the executable name without extension for CLI usage
//
// Cross-platform behavior:
//
//   - Linux/macOS: "/usr/bin/tls-trust-manager" → "tls-trust-manager"
//   - Windows: "C:\bin\tls-trust-manager.exe" → "tls-trust-manager"
//   - Fallback: Empty args → "tls-trust-manager"
//
// [POSIX]: https://grokipedia.com/page/POSIX
package posix
