// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli implements the tls-trust-manager command line: checking a
// server through the trust manager, classifying a chain offline and
// administering the user's trust store.
package cli
