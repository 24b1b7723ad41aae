// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package prompt asks a person at a terminal whether to trust a certificate
// that failed validation.
//
// Example:
//
//	cb := trustmanager.Serialize(prompt.NewTerminal(os.Stdin, os.Stderr))
//	m, err := trustmanager.New(store, cb, validators)
package prompt
