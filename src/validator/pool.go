// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package validator

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"
	"software.sslmate.com/src/go-pkcs12"

	"github.com/H0llyW00dzZ/tls-trust-manager/src/internal/helper/gc"
	x509certs "github.com/H0llyW00dzZ/tls-trust-manager/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/tls-trust-manager/src/trustmanager"
	"github.com/H0llyW00dzZ/tls-trust-manager/src/truststore"
)

// Validator names reported by [PoolValidator.Name].
const (
	NamePlatform   = "platform"
	NameDefault    = "default"
	NameTrustStore = "truststore"
)

// ErrNoRoots is returned when a root store file holds no certificates.
var ErrNoRoots = errors.New("validator: no root certificates found")

// PoolValidator verifies chains against a root pool with [x509.Certificate.Verify].
type PoolValidator struct {
	name       string
	roots      func() *x509.CertPool
	clock      clockwork.Clock
	revocation *RevocationChecker
}

// Option configures a [PoolValidator].
type Option func(*PoolValidator)

// WithRevocation checks the leaf of every successfully built path with r.
func WithRevocation(r *RevocationChecker) Option {
	return func(v *PoolValidator) { v.revocation = r }
}

// WithClock sets the time chains are verified at.
func WithClock(clock clockwork.Clock) Option {
	return func(v *PoolValidator) {
		if clock != nil {
			v.clock = clock
		}
	}
}

func newPool(name string, roots func() *x509.CertPool, opts []Option) *PoolValidator {
	v := &PoolValidator{name: name, roots: roots, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// NewPlatform returns a validator trusting the operating system's roots.
func NewPlatform(opts ...Option) *PoolValidator {
	return newPool(NamePlatform, func() *x509.CertPool { return nil }, opts)
}

// NewFromPool returns a validator named name trusting exactly pool.
func NewFromPool(name string, pool *x509.CertPool, opts ...Option) *PoolValidator {
	return newPool(name, func() *x509.CertPool { return pool }, opts)
}

// NewFromFile returns a validator trusting the certificates in a root store file.
//
// Parameters:
//   - path: PEM, DER or PKCS#7 bundle, or a PKCS#12 trust store
//   - passphrase: Passphrase of a PKCS#12 trust store; ignored for bundles
//
// Returns:
//   - *PoolValidator: Validator named [NameDefault]
//   - error: Error if the file cannot be read or decoded, or [ErrNoRoots]
func NewFromFile(path, passphrase string, opts ...Option) (*PoolValidator, error) {
	roots, err := LoadRoots(path, passphrase)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	for _, cert := range roots {
		pool.AddCert(cert)
	}
	return NewFromPool(NameDefault, pool, opts...), nil
}

// LoadRoots decodes the certificates of a root store file.
func LoadRoots(path, passphrase string) ([]*x509.Certificate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("validator: failed to open root store: %w", err)
	}
	defer f.Close()

	data, err := gc.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("validator: failed to read root store %s: %w", path, err)
	}

	certs, bundleErr := x509certs.New().DecodeChain(data)
	if bundleErr != nil {
		var p12Err error
		certs, p12Err = pkcs12.DecodeTrustStore(data, passphrase)
		if p12Err != nil {
			return nil, fmt.Errorf("validator: failed to decode root store %s: %w", path, errors.Join(bundleErr, p12Err))
		}
	}
	if len(certs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoRoots, path)
	}
	return certs, nil
}

// NewFromTrustStore returns a validator trusting the durable entries of
// store. The pool is rebuilt on every call so trust-always decisions take
// effect immediately.
func NewFromTrustStore(store *truststore.Store, opts ...Option) *PoolValidator {
	return newPool(NameTrustStore, func() *x509.CertPool {
		pool := x509.NewCertPool()
		for _, cert := range store.Certificates() {
			pool.AddCert(cert)
		}
		return pool
	}, opts)
}

// Name identifies the validator in logs.
func (v *PoolValidator) Name() string { return v.name }

// Verify builds a path from chain[0] to a root, using the rest of chain as
// intermediates, checks the leaf's revocation status and then hostname when
// it is not empty. A revoked leaf is reported as revoked whatever its names.
func (v *PoolValidator) Verify(ctx context.Context, chain []*x509.Certificate, hostname string) error {
	if len(chain) == 0 {
		return trustmanager.ErrEmptyChain
	}

	intermediates := x509.NewCertPool()
	for _, cert := range chain[1:] {
		intermediates.AddCert(cert)
	}

	chains, err := chain[0].Verify(x509.VerifyOptions{
		Roots:         v.roots(),
		Intermediates: intermediates,
		CurrentTime:   v.clock.Now(),
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	})
	if err != nil {
		// The original error keeps its diagnostic detail (expiry, unknown authority).
		return err
	}

	if v.revocation != nil {
		if err := v.revocation.Check(ctx, chains[0]); err != nil {
			return err
		}
	}

	if hostname != "" {
		return chain[0].VerifyHostname(hostname)
	}
	return nil
}
