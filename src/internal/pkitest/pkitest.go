// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package pkitest builds throwaway certificate authorities, leaves and CRLs for tests.
package pkitest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// KeyPair is a certificate together with its private key.
type KeyPair struct {
	Cert *x509.Certificate
	Key  *ecdsa.PrivateKey
}

// Authority is a certificate authority able to issue leaves, intermediates and CRLs.
type Authority struct{ KeyPair }

// Option customises a certificate template before it is signed.
type Option func(*x509.Certificate)

// WithDNSNames sets the DNS subject alternative names.
func WithDNSNames(names ...string) Option {
	return func(c *x509.Certificate) { c.DNSNames = names }
}

// WithIPAddresses sets the IP subject alternative names.
func WithIPAddresses(ips ...net.IP) Option {
	return func(c *x509.Certificate) { c.IPAddresses = ips }
}

// WithValidity sets the validity window.
func WithValidity(notBefore, notAfter time.Time) Option {
	return func(c *x509.Certificate) {
		c.NotBefore = notBefore
		c.NotAfter = notAfter
	}
}

// Expired makes the certificate expire one day before now.
func Expired() Option {
	now := time.Now()
	return WithValidity(now.Add(-48*time.Hour), now.Add(-24*time.Hour))
}

// WithCRL points the certificate at a CRL distribution point.
func WithCRL(url string) Option {
	return func(c *x509.Certificate) { c.CRLDistributionPoints = []string{url} }
}

// NewPrivateKey is a test helper that creates a new ECDSA private key.
func NewPrivateKey(t testing.TB) *ecdsa.PrivateKey {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err, "generating ecdsa private key")
	return priv
}

func serial(t testing.TB) *big.Int {
	t.Helper()
	n, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	require.NoError(t, err, "generating serial number")
	return n
}

func template(t testing.TB, cn string) *x509.Certificate {
	t.Helper()
	now := time.Now()
	return &x509.Certificate{
		SerialNumber:          serial(t),
		Subject:               pkix.Name{CommonName: cn, Organization: []string{"pkitest"}},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(24 * time.Hour),
		BasicConstraintsValid: true,
	}
}

func sign(t testing.TB, tmpl, parent *x509.Certificate, pub *ecdsa.PublicKey, signer *ecdsa.PrivateKey) *x509.Certificate {
	t.Helper()
	der, err := x509.CreateCertificate(rand.Reader, tmpl, parent, pub, signer)
	require.NoError(t, err, "creating certificate")
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err, "parsing certificate")
	return cert
}

func caTemplate(t testing.TB, cn string, opts []Option) *x509.Certificate {
	t.Helper()
	tmpl := template(t, cn)
	tmpl.IsCA = true
	tmpl.KeyUsage = x509.KeyUsageCertSign | x509.KeyUsageCRLSign | x509.KeyUsageDigitalSignature
	tmpl.NotAfter = tmpl.NotBefore.Add(10 * 24 * time.Hour)
	for _, opt := range opts {
		opt(tmpl)
	}
	return tmpl
}

// NewRootCA creates a self-signed root certificate authority.
func NewRootCA(t testing.TB, cn string, opts ...Option) *Authority {
	t.Helper()
	key := NewPrivateKey(t)
	tmpl := caTemplate(t, cn, opts)
	return &Authority{KeyPair{Cert: sign(t, tmpl, tmpl, &key.PublicKey, key), Key: key}}
}

// NewIntermediate issues a subordinate certificate authority.
func (a *Authority) NewIntermediate(t testing.TB, cn string, opts ...Option) *Authority {
	t.Helper()
	key := NewPrivateKey(t)
	tmpl := caTemplate(t, cn, opts)
	return &Authority{KeyPair{Cert: sign(t, tmpl, a.Cert, &key.PublicKey, a.Key), Key: key}}
}

// Issue signs a server leaf certificate. The common name doubles as the only
// DNS name unless WithDNSNames overrides it.
func (a *Authority) Issue(t testing.TB, cn string, opts ...Option) *KeyPair {
	t.Helper()
	key := NewPrivateKey(t)
	tmpl := leafTemplate(t, cn, opts)
	return &KeyPair{Cert: sign(t, tmpl, a.Cert, &key.PublicKey, a.Key), Key: key}
}

// RevocationList returns a DER encoded CRL signed by the authority listing revoked.
func (a *Authority) RevocationList(t testing.TB, nextUpdate time.Time, revoked ...*x509.Certificate) []byte {
	t.Helper()
	entries := make([]x509.RevocationListEntry, 0, len(revoked))
	for _, cert := range revoked {
		entries = append(entries, x509.RevocationListEntry{
			SerialNumber:   cert.SerialNumber,
			RevocationTime: time.Now().Add(-time.Hour),
		})
	}
	der, err := x509.CreateRevocationList(rand.Reader, &x509.RevocationList{
		Number:                    serial(t),
		ThisUpdate:                time.Now().Add(-time.Hour),
		NextUpdate:                nextUpdate,
		RevokedCertificateEntries: entries,
	}, a.Cert, a.Key)
	require.NoError(t, err, "creating revocation list")
	return der
}

func leafTemplate(t testing.TB, cn string, opts []Option) *x509.Certificate {
	t.Helper()
	tmpl := template(t, cn)
	tmpl.DNSNames = []string{cn}
	tmpl.KeyUsage = x509.KeyUsageDigitalSignature
	tmpl.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth}
	for _, opt := range opts {
		opt(tmpl)
	}
	return tmpl
}

// SelfSigned creates a self-signed server certificate that is not a CA.
func SelfSigned(t testing.TB, cn string, opts ...Option) *KeyPair {
	t.Helper()
	key := NewPrivateKey(t)
	tmpl := leafTemplate(t, cn, opts)
	return &KeyPair{Cert: sign(t, tmpl, tmpl, &key.PublicKey, key), Key: key}
}

// TLSCertificate returns the key pair as a tls.Certificate presenting the
// given issuers after the leaf.
func (k *KeyPair) TLSCertificate(issuers ...*x509.Certificate) tls.Certificate {
	raw := [][]byte{k.Cert.Raw}
	for _, c := range issuers {
		raw = append(raw, c.Raw)
	}
	return tls.Certificate{Certificate: raw, PrivateKey: k.Key, Leaf: k.Cert}
}

// EncodePEM encodes certificates as concatenated PEM blocks.
func EncodePEM(certs ...*x509.Certificate) []byte {
	var out []byte
	for _, c := range certs {
		out = append(out, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: c.Raw})...)
	}
	return out
}
