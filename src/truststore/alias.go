// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package truststore

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"time"
)

// Alias returns the lowercase hex SHA-256 digest of the certificate's DER encoding.
func Alias(cert *x509.Certificate) string {
	sum := sha256.Sum256(cert.Raw)
	return hex.EncodeToString(sum[:])
}

// Entry is one remembered trust decision.
type Entry struct {
	Alias       string
	Certificate *x509.Certificate
	// Persistent is true for entries held by the durable layer.
	Persistent bool
}

// Subject returns the entry certificate's subject.
func (e Entry) Subject() string { return e.Certificate.Subject.String() }

// NotAfter returns the entry certificate's expiry.
func (e Entry) NotAfter() time.Time { return e.Certificate.NotAfter }
