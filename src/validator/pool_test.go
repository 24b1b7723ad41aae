// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package validator_test

import (
	"context"
	"crypto/x509"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"software.sslmate.com/src/go-pkcs12"

	"github.com/H0llyW00dzZ/tls-trust-manager/src/internal/pkitest"
	"github.com/H0llyW00dzZ/tls-trust-manager/src/trustmanager"
	"github.com/H0llyW00dzZ/tls-trust-manager/src/truststore"
	"github.com/H0llyW00dzZ/tls-trust-manager/src/validator"
)

func pool(certs ...*x509.Certificate) *x509.CertPool {
	p := x509.NewCertPool()
	for _, c := range certs {
		p.AddCert(c)
	}
	return p
}

func TestPoolValidator(t *testing.T) {
	root := pkitest.NewRootCA(t, "Pool Root")
	inter := root.NewIntermediate(t, "Pool Intermediate")
	leaf := inter.Issue(t, "pool.example.com")
	chain := []*x509.Certificate{leaf.Cert, inter.Cert}

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "trusted chain through intermediate",
			testFunc: func(t *testing.T) {
				v := validator.NewFromPool("custom", pool(root.Cert))
				assert.Equal(t, "custom", v.Name())
				assert.NoError(t, v.Verify(context.Background(), chain, "pool.example.com"))
			},
		},
		{
			name: "empty hostname skips the name check",
			testFunc: func(t *testing.T) {
				v := validator.NewFromPool("custom", pool(root.Cert))
				assert.NoError(t, v.Verify(context.Background(), chain, ""))
			},
		},
		{
			name: "unknown root",
			testFunc: func(t *testing.T) {
				v := validator.NewFromPool("custom", pool(pkitest.NewRootCA(t, "Other").Cert))
				var unknown x509.UnknownAuthorityError
				assert.ErrorAs(t, v.Verify(context.Background(), chain, "pool.example.com"), &unknown)
			},
		},
		{
			name: "missing intermediate",
			testFunc: func(t *testing.T) {
				v := validator.NewFromPool("custom", pool(root.Cert))
				var unknown x509.UnknownAuthorityError
				assert.ErrorAs(t, v.Verify(context.Background(), chain[:1], "pool.example.com"), &unknown)
			},
		},
		{
			name: "wrong host",
			testFunc: func(t *testing.T) {
				v := validator.NewFromPool("custom", pool(root.Cert))
				var hostErr x509.HostnameError
				assert.ErrorAs(t, v.Verify(context.Background(), chain, "other.example.com"), &hostErr)
			},
		},
		{
			name: "expired by clock",
			testFunc: func(t *testing.T) {
				clock := clockwork.NewFakeClockAt(leaf.Cert.NotAfter.Add(time.Hour))
				v := validator.NewFromPool("custom", pool(root.Cert), validator.WithClock(clock))
				var invalid x509.CertificateInvalidError
				require.ErrorAs(t, v.Verify(context.Background(), chain, "pool.example.com"), &invalid)
				assert.Equal(t, x509.Expired, invalid.Reason)
			},
		},
		{
			name: "empty chain",
			testFunc: func(t *testing.T) {
				v := validator.NewFromPool("custom", pool(root.Cert))
				assert.ErrorIs(t, v.Verify(context.Background(), nil, ""), trustmanager.ErrEmptyChain)
			},
		},
		{
			name: "revoked leaf",
			testFunc: func(t *testing.T) {
				f := newRevokedFixture(t, true)
				v := validator.NewFromPool("custom", pool(f.root.Cert), validator.WithRevocation(newChecker(t)))
				err := v.Verify(context.Background(), []*x509.Certificate{f.leaf.Cert}, "crl.example.com")
				assert.ErrorIs(t, err, trustmanager.ErrCertificateRevoked)
			},
		},
		{
			name: "revoked leaf for another host",
			testFunc: func(t *testing.T) {
				f := newRevokedFixture(t, true)
				v := validator.NewFromPool("custom", pool(f.root.Cert), validator.WithRevocation(newChecker(t)))
				err := v.Verify(context.Background(), []*x509.Certificate{f.leaf.Cert}, "other.example.com")
				assert.ErrorIs(t, err, trustmanager.ErrCertificateRevoked)
				var hostErr x509.HostnameError
				assert.NotErrorAs(t, err, &hostErr)
			},
		},
		{
			name: "good leaf for another host is checked before the name",
			testFunc: func(t *testing.T) {
				f := newRevokedFixture(t, false)
				v := validator.NewFromPool("custom", pool(f.root.Cert), validator.WithRevocation(newChecker(t)))
				err := v.Verify(context.Background(), []*x509.Certificate{f.leaf.Cert}, "other.example.com")
				var hostErr x509.HostnameError
				assert.ErrorAs(t, err, &hostErr)
				assert.EqualValues(t, 1, f.srv.requests.Load())
			},
		},
		{
			name: "untrusted chain is not checked for revocation",
			testFunc: func(t *testing.T) {
				f := newRevokedFixture(t, true)
				v := validator.NewFromPool("custom", pool(root.Cert), validator.WithRevocation(newChecker(t)))
				err := v.Verify(context.Background(), []*x509.Certificate{f.leaf.Cert}, "crl.example.com")
				assert.NotErrorIs(t, err, trustmanager.ErrCertificateRevoked)
				assert.Zero(t, f.srv.requests.Load())
			},
		},
		{
			name: "platform roots do not trust a private root",
			testFunc: func(t *testing.T) {
				v := validator.NewPlatform()
				assert.Equal(t, validator.NamePlatform, v.Name())
				assert.Error(t, v.Verify(context.Background(), chain, "pool.example.com"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestNewFromFile(t *testing.T) {
	root := pkitest.NewRootCA(t, "File Root")
	leaf := root.Issue(t, "file.example.com")
	chain := []*x509.Certificate{leaf.Cert}

	write := func(t *testing.T, data []byte) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "roots")
		require.NoError(t, os.WriteFile(path, data, 0o600))
		return path
	}

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "PEM bundle",
			testFunc: func(t *testing.T) {
				path := write(t, pkitest.EncodePEM(pkitest.NewRootCA(t, "Extra").Cert, root.Cert))
				v, err := validator.NewFromFile(path, "")
				require.NoError(t, err)
				assert.Equal(t, validator.NameDefault, v.Name())
				assert.NoError(t, v.Verify(context.Background(), chain, "file.example.com"))
			},
		},
		{
			name: "DER certificate",
			testFunc: func(t *testing.T) {
				v, err := validator.NewFromFile(write(t, root.Cert.Raw), "")
				require.NoError(t, err)
				assert.NoError(t, v.Verify(context.Background(), chain, "file.example.com"))
			},
		},
		{
			name: "PKCS12 trust store",
			testFunc: func(t *testing.T) {
				data, err := pkcs12.Modern.EncodeTrustStore([]*x509.Certificate{root.Cert}, "secret")
				require.NoError(t, err)
				path := write(t, data)

				v, err := validator.NewFromFile(path, "secret")
				require.NoError(t, err)
				assert.NoError(t, v.Verify(context.Background(), chain, "file.example.com"))

				_, err = validator.NewFromFile(path, "wrong")
				assert.Error(t, err)
			},
		},
		{
			name: "LoadRoots keeps order",
			testFunc: func(t *testing.T) {
				other := pkitest.NewRootCA(t, "Other")
				certs, err := validator.LoadRoots(write(t, pkitest.EncodePEM(root.Cert, other.Cert)), "")
				require.NoError(t, err)
				require.Len(t, certs, 2)
				assert.True(t, certs[0].Equal(root.Cert))
				assert.True(t, certs[1].Equal(other.Cert))
			},
		},
		{
			name: "garbage",
			testFunc: func(t *testing.T) {
				_, err := validator.NewFromFile(write(t, []byte("definitely not certificates")), "")
				assert.ErrorContains(t, err, "failed to decode root store")
			},
		},
		{
			name: "PEM without certificates",
			testFunc: func(t *testing.T) {
				_, err := validator.NewFromFile(write(t, []byte("-----BEGIN FOO-----\nAAAA\n-----END FOO-----\n")), "")
				assert.Error(t, err)
			},
		},
		{
			name: "missing file",
			testFunc: func(t *testing.T) {
				_, err := validator.NewFromFile(filepath.Join(t.TempDir(), "absent.pem"), "")
				assert.ErrorIs(t, err, os.ErrNotExist)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestNewFromTrustStore(t *testing.T) {
	root := pkitest.NewRootCA(t, "Store Root")
	leaf := root.Issue(t, "store.example.com")
	chain := []*x509.Certificate{leaf.Cert}

	store, err := truststore.Open(filepath.Join(t.TempDir(), "trust.p12"), "")
	require.NoError(t, err)

	v := validator.NewFromTrustStore(store)
	assert.Equal(t, validator.NameTrustStore, v.Name())

	var unknown x509.UnknownAuthorityError
	require.ErrorAs(t, v.Verify(context.Background(), chain, "store.example.com"), &unknown)

	// Volatile entries are served by the manager, not by the durable pool.
	require.NoError(t, store.Add(truststore.Alias(root.Cert), root.Cert, false))
	require.ErrorAs(t, v.Verify(context.Background(), chain, "store.example.com"), &unknown)

	require.NoError(t, store.Add(truststore.Alias(root.Cert), root.Cert, true))
	assert.NoError(t, v.Verify(context.Background(), chain, "store.example.com"))
}
