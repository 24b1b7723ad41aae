// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package truststore

import (
	"crypto/x509"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"software.sslmate.com/src/go-pkcs12"

	"github.com/H0llyW00dzZ/tls-trust-manager/src/internal/helper/gc"
)

// DefaultPassphrase protects trust store files when none is configured.
const DefaultPassphrase = "changeit"

// Keystore is the durable layer: a PKCS#12 trust store file mapping aliases
// to certificates. The whole file is rewritten on every change.
type Keystore struct {
	mu         sync.RWMutex
	path       string
	passphrase string
	entries    map[string]*x509.Certificate
}

// OpenKeystore reads the trust store at path. A missing or empty file yields
// an empty keystore; the file is created on the first write.
//
// Aliases are recomputed from the certificates on load, so every entry is
// keyed by its content hash regardless of the friendly name on disk.
func OpenKeystore(path, passphrase string) (*Keystore, error) {
	ks := &Keystore{
		path:       path,
		passphrase: passphrase,
		entries:    make(map[string]*x509.Certificate),
	}

	certs, err := readTrustStore(path, passphrase)
	if err != nil {
		return nil, err
	}
	for _, cert := range certs {
		ks.entries[Alias(cert)] = cert
	}
	return ks, nil
}

func readTrustStore(path, passphrase string) ([]*x509.Certificate, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	data, err := gc.ReadAll(f)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	if len(data) == 0 {
		return nil, nil
	}

	certs, err := pkcs12.DecodeTrustStore(data, passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrDecode, path, err)
	}
	return certs, nil
}

// Path returns the file backing the keystore.
func (k *Keystore) Path() string { return k.path }

// Get returns the certificate stored under alias.
func (k *Keystore) Get(alias string) (*x509.Certificate, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	cert, ok := k.entries[alias]
	return cert, ok
}

// Put stores cert under alias and rewrites the file before returning. The
// in-memory view only changes once the file has been replaced.
func (k *Keystore) Put(alias string, cert *x509.Certificate) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	next := maps.Clone(k.entries)
	next[alias] = cert
	if err := k.save(next); err != nil {
		return err
	}
	k.entries = next
	return nil
}

// Remove deletes alias, rewriting the file when it was present.
func (k *Keystore) Remove(alias string) (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if _, ok := k.entries[alias]; !ok {
		return false, nil
	}
	next := maps.Clone(k.entries)
	delete(next, alias)
	if err := k.save(next); err != nil {
		return false, err
	}
	k.entries = next
	return true, nil
}

// Aliases returns the stored aliases in sorted order.
func (k *Keystore) Aliases() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return slices.Sorted(maps.Keys(k.entries))
}

// Certificates returns the stored certificates ordered by alias.
func (k *Keystore) Certificates() []*x509.Certificate {
	k.mu.RLock()
	defer k.mu.RUnlock()
	certs := make([]*x509.Certificate, 0, len(k.entries))
	for _, alias := range slices.Sorted(maps.Keys(k.entries)) {
		certs = append(certs, k.entries[alias])
	}
	return certs
}

// save must be called with k.mu held for writing.
func (k *Keystore) save(entries map[string]*x509.Certificate) error {
	if len(entries) == 0 {
		if err := os.Remove(k.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &IOError{Op: "remove", Path: k.path, Err: err}
		}
		return nil
	}

	bag := make([]pkcs12.TrustStoreEntry, 0, len(entries))
	for _, alias := range slices.Sorted(maps.Keys(entries)) {
		bag = append(bag, pkcs12.TrustStoreEntry{Cert: entries[alias], FriendlyName: alias})
	}
	data, err := pkcs12.Modern.EncodeTrustStoreEntries(bag, k.passphrase)
	if err != nil {
		return &IOError{Op: "encode", Path: k.path, Err: err}
	}

	return writeFile(k.path, data)
}

// writeFile replaces path atomically with data.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return &IOError{Op: "mkdir", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return &IOError{Op: "write", Path: tmpName, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return &IOError{Op: "sync", Path: tmpName, Err: err}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return &IOError{Op: "close", Path: tmpName, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
