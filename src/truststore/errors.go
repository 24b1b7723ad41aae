// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package truststore

import (
	"errors"
	"fmt"
)

var (
	// ErrNilCertificate is returned when adding an entry without a certificate.
	ErrNilCertificate = errors.New("truststore: nil certificate")
	// ErrAliasMismatch is returned when an alias is not the content hash of its certificate.
	ErrAliasMismatch = errors.New("truststore: alias does not match certificate")
	// ErrNoDurableStore is returned for persistent writes on a volatile-only store.
	ErrNoDurableStore = errors.New("truststore: no durable store configured")
	// ErrDecode is returned when the durable store file cannot be decoded.
	ErrDecode = errors.New("truststore: failed to decode trust store")
)

// IOError reports a failure reading or writing the durable store.
// It is never downgraded to a denied decision.
type IOError struct {
	Op   string // "open", "read", "write", "encode", ...
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("truststore: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("truststore: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
