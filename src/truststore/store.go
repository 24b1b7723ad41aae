// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package truststore

import (
	"crypto/x509"
	"slices"
	"strings"
)

// Store layers the volatile memory over an optional durable keystore.
type Store struct {
	volatile *Memory
	durable  *Keystore
}

// NewVolatile returns a store without durable backing. Persistent writes on
// it fail with [ErrNoDurableStore].
func NewVolatile() *Store {
	return &Store{volatile: NewMemory()}
}

// Open returns a store whose durable layer is the PKCS#12 trust store at path.
//
// Parameters:
//   - path: Trust store file; a missing file starts the store empty
//   - passphrase: Passphrase protecting the file; empty selects [DefaultPassphrase]
//
// Returns:
//   - *Store: Store ready for use
//   - error: *[IOError] when the file cannot be read, or an error wrapping [ErrDecode]
func Open(path, passphrase string) (*Store, error) {
	if passphrase == "" {
		passphrase = DefaultPassphrase
	}
	ks, err := OpenKeystore(path, passphrase)
	if err != nil {
		return nil, err
	}
	return &Store{volatile: NewMemory(), durable: ks}, nil
}

// Path returns the durable file, or "" for a volatile store.
func (s *Store) Path() string {
	if s.durable == nil {
		return ""
	}
	return s.durable.Path()
}

// Durable reports whether the store has a durable layer.
func (s *Store) Durable() bool { return s.durable != nil }

// Get looks alias up in the volatile layer, then in the durable layer.
func (s *Store) Get(alias string) (*x509.Certificate, bool) {
	if cert, ok := s.volatile.Get(alias); ok {
		return cert, true
	}
	if s.durable != nil {
		return s.durable.Get(alias)
	}
	return nil, false
}

// Add remembers cert under alias.
//
// With persistent set the entry is written to the durable layer only and the
// file is flushed before Add returns; otherwise only the volatile layer
// changes. alias must equal [Alias] of cert.
func (s *Store) Add(alias string, cert *x509.Certificate, persistent bool) error {
	if cert == nil {
		return ErrNilCertificate
	}
	if !strings.EqualFold(alias, Alias(cert)) {
		return ErrAliasMismatch
	}
	alias = strings.ToLower(alias)

	if !persistent {
		s.volatile.Put(alias, cert)
		return nil
	}
	if s.durable == nil {
		return &IOError{Op: "write", Err: ErrNoDurableStore}
	}
	return s.durable.Put(alias, cert)
}

// Remove deletes alias from both layers and reports whether it was present in either.
func (s *Store) Remove(alias string) (bool, error) {
	alias = strings.ToLower(alias)
	removed := s.volatile.Remove(alias)
	if s.durable == nil {
		return removed, nil
	}
	ok, err := s.durable.Remove(alias)
	return removed || ok, err
}

// Entries lists every remembered decision sorted by alias. An alias present
// in both layers is reported once, as persistent.
func (s *Store) Entries() []Entry {
	seen := make(map[string]bool)
	var entries []Entry

	if s.durable != nil {
		for _, alias := range s.durable.Aliases() {
			if cert, ok := s.durable.Get(alias); ok {
				entries = append(entries, Entry{Alias: alias, Certificate: cert, Persistent: true})
				seen[alias] = true
			}
		}
	}
	for _, alias := range s.volatile.Aliases() {
		if seen[alias] {
			continue
		}
		if cert, ok := s.volatile.Get(alias); ok {
			entries = append(entries, Entry{Alias: alias, Certificate: cert})
		}
	}

	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Alias, b.Alias) })
	return entries
}

// Certificates returns the durable certificates, for use as trust anchors.
func (s *Store) Certificates() []*x509.Certificate {
	if s.durable == nil {
		return nil
	}
	return s.durable.Certificates()
}
