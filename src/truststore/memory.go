// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package truststore

import (
	"crypto/x509"
	"maps"
	"slices"
	"sync"
)

// Memory is the volatile layer. Its contents live as long as the process.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*x509.Certificate
}

// NewMemory returns an empty volatile layer.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*x509.Certificate)}
}

// Get returns the certificate stored under alias.
func (m *Memory) Get(alias string) (*x509.Certificate, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cert, ok := m.entries[alias]
	return cert, ok
}

// Put stores cert under alias, replacing any previous entry.
func (m *Memory) Put(alias string, cert *x509.Certificate) {
	m.mu.Lock()
	m.entries[alias] = cert
	m.mu.Unlock()
}

// Remove deletes alias and reports whether it was present.
func (m *Memory) Remove(alias string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[alias]
	delete(m.entries, alias)
	return ok
}

// Len returns the number of entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Aliases returns the stored aliases in sorted order.
func (m *Memory) Aliases() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.entries))
}
