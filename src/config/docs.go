// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package config loads the trust manager configuration.
//
// Values are resolved in order: built-in defaults, then a JSON or YAML file
// (chosen by extension) named by the caller or by the TLS_TRUST_CONFIG_FILE
// environment variable, then environment overrides. The result is validated
// before it is returned.
package config
