// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package trustmanager

import (
	"errors"
	"fmt"
	"math/big"
	"time"
)

var (
	// ErrEmptyChain is returned for a chain without certificates. It is never classified or escalated.
	ErrEmptyChain = errors.New("trustmanager: empty certificate chain")
	// ErrNoValidators is returned by [New] when no validator is configured.
	ErrNoValidators = errors.New("trustmanager: no validators configured")
	// ErrNilStore is returned by [New] without a trust store.
	ErrNilStore = errors.New("trustmanager: nil trust store")
	// ErrCertificateRevoked marks revocation failures. Validators must return
	// an error matching it with [errors.Is] when a certificate is revoked.
	ErrCertificateRevoked = errors.New("trustmanager: certificate revoked")
)

// RevokedError reports a revoked certificate. It matches [ErrCertificateRevoked].
type RevokedError struct {
	Serial    *big.Int
	RevokedAt time.Time
	// Source is where the revocation was learned, such as a CRL URL.
	Source string
}

func (e *RevokedError) Error() string {
	return fmt.Sprintf("trustmanager: certificate serial %s revoked at %s (source: %s)",
		e.Serial, e.RevokedAt.UTC().Format(time.RFC3339), e.Source)
}

// Is reports whether target is [ErrCertificateRevoked].
func (e *RevokedError) Is(target error) bool { return target == ErrCertificateRevoked }
