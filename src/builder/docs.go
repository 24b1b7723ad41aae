// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package builder assembles a trust manager from a [config.Config].
//
// The validator cascade is built in a fixed order: the platform root store,
// the default root store file and the user's trust store. Each part is
// optional; the last one is included only once its file exists.
package builder
