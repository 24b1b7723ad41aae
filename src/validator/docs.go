// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package validator provides the concrete [X.509] chain validators plugged into
// a trust manager cascade: the platform root store, a root store file and
// the user's trust store.
//
// Each [PoolValidator] builds a path to one of its roots with the standard
// library, checks the hostname and, when configured, asks a
// [RevocationChecker] about the end-entity certificate. Revocation is checked
// with CRLs only; there is no OCSP fallback, and unavailable or unverifiable
// CRL data is not treated as a failure.
//
// [X.509]: https://grokipedia.com/page/X.509
package validator
