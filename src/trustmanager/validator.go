// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package trustmanager

import (
	"context"
	"crypto/x509"
)

// Validator verifies a chain, leaf first, for hostname. An empty hostname
// skips the name check. Revocation must be reported with an error matching
// [ErrCertificateRevoked].
type Validator interface {
	Verify(ctx context.Context, chain []*x509.Certificate, hostname string) error
}

// ValidatorFunc adapts a function to [Validator].
type ValidatorFunc func(ctx context.Context, chain []*x509.Certificate, hostname string) error

// Verify calls f.
func (f ValidatorFunc) Verify(ctx context.Context, chain []*x509.Certificate, hostname string) error {
	return f(ctx, chain, hostname)
}

// TrustStore remembers trust decisions by alias. [truststore.Store] implements it.
type TrustStore interface {
	Get(alias string) (*x509.Certificate, bool)
	Add(alias string, cert *x509.Certificate, persistent bool) error
}
