// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package classifier_test

import (
	"crypto/x509"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/tls-trust-manager/src/classifier"
	"github.com/H0llyW00dzZ/tls-trust-manager/src/internal/pkitest"
)

func TestClassify(t *testing.T) {
	root := pkitest.NewRootCA(t, "Classifier Root")
	now := time.Now()

	tests := []struct {
		name     string
		chain    func(t *testing.T) []*x509.Certificate
		failure  func(leaf *x509.Certificate) error
		hostname string
		kinds    []classifier.Kind
		code     string
	}{
		{
			name: "Self-Signed And Expired",
			chain: func(t *testing.T) []*x509.Certificate {
				return []*x509.Certificate{pkitest.SelfSigned(t, "old.example.com", pkitest.Expired()).Cert}
			},
			failure:  func(*x509.Certificate) error { return x509.UnknownAuthorityError{} },
			hostname: "old.example.com",
			kinds:    []classifier.Kind{classifier.SelfSigned, classifier.Expired},
			code:     classifier.CodeSelfSigned,
		},
		{
			name: "Expired Only",
			chain: func(t *testing.T) []*x509.Certificate {
				return []*x509.Certificate{root.Issue(t, "stale.example.com", pkitest.Expired()).Cert, root.Cert}
			},
			failure: func(*x509.Certificate) error {
				return x509.CertificateInvalidError{Reason: x509.Expired}
			},
			hostname: "stale.example.com",
			kinds:    []classifier.Kind{classifier.Expired},
			code:     classifier.CodeExpired,
		},
		{
			name: "Untrusted Root",
			chain: func(t *testing.T) []*x509.Certificate {
				return []*x509.Certificate{root.Issue(t, "private.example.com").Cert, root.Cert}
			},
			failure:  func(*x509.Certificate) error { return x509.UnknownAuthorityError{} },
			hostname: "private.example.com",
			kinds:    []classifier.Kind{classifier.UntrustedRoot},
			code:     classifier.CodeUnknownIssuer,
		},
		{
			name: "Untrusted Root From Message",
			chain: func(t *testing.T) []*x509.Certificate {
				return []*x509.Certificate{root.Issue(t, "private.example.com").Cert}
			},
			failure: func(*x509.Certificate) error {
				return errors.New("PKIX path building failed: unable to find valid certification path to requested target")
			},
			kinds: []classifier.Kind{classifier.UntrustedRoot},
			code:  classifier.CodeUnknownIssuer,
		},
		{
			name: "Wrong Host",
			chain: func(t *testing.T) []*x509.Certificate {
				return []*x509.Certificate{root.Issue(t, "a.example.com").Cert, root.Cert}
			},
			failure: func(leaf *x509.Certificate) error {
				return x509.HostnameError{Certificate: leaf, Host: "b.example.com"}
			},
			hostname: "b.example.com",
			kinds:    []classifier.Kind{classifier.WrongHost},
			code:     classifier.CodeBadDomain,
		},
		{
			name: "Wrong Host And Expired",
			chain: func(t *testing.T) []*x509.Certificate {
				return []*x509.Certificate{root.Issue(t, "a.example.com", pkitest.Expired()).Cert, root.Cert}
			},
			failure:  func(*x509.Certificate) error { return errors.New("validation failed") },
			hostname: "b.example.com",
			kinds:    []classifier.Kind{classifier.WrongHost, classifier.Expired},
			code:     classifier.CodeBadDomain,
		},
		{
			name: "Unknown",
			chain: func(t *testing.T) []*x509.Certificate {
				return []*x509.Certificate{root.Issue(t, "fine.example.com").Cert, root.Cert}
			},
			failure:  func(*x509.Certificate) error { return errors.New("policy rejected") },
			hostname: "fine.example.com",
			kinds:    []classifier.Kind{classifier.Unknown},
			code:     classifier.CodeUnknown,
		},
		{
			name: "Empty Hostname Skips Host Check",
			chain: func(t *testing.T) []*x509.Certificate {
				return []*x509.Certificate{root.Issue(t, "fine.example.com").Cert}
			},
			failure: func(*x509.Certificate) error { return errors.New("policy rejected") },
			kinds:   []classifier.Kind{classifier.Unknown},
			code:    classifier.CodeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := tt.chain(t)
			d := classifier.Classify(chain, tt.failure(chain[0]), tt.hostname, now)
			require.NotNil(t, d)
			assert.Equal(t, tt.kinds, d.Kinds)
			assert.Equal(t, tt.code, d.Code)
			assert.Equal(t, tt.hostname, d.Hostname)
			assert.True(t, d.Has(tt.kinds[0]))
			assert.Contains(t, d.Message, "Error code:\t"+tt.code)
		})
	}
}

func TestClassifyEmptyChain(t *testing.T) {
	assert.Nil(t, classifier.Classify(nil, errors.New("x"), "example.com", time.Now()))
}

func TestClassifierUsesClock(t *testing.T) {
	root := pkitest.NewRootCA(t, "Clock Root")
	leaf := root.Issue(t, "clock.example.com")

	clock := clockwork.NewFakeClockAt(leaf.Cert.NotAfter.Add(time.Hour))
	c := classifier.New(clock)

	d := c.Classify([]*x509.Certificate{leaf.Cert}, errors.New("expired"), "clock.example.com")
	require.NotNil(t, d)
	assert.True(t, d.Only(classifier.Expired))
	assert.Equal(t, clock.Now(), d.Now)

	assert.NotNil(t, classifier.New(nil).Classify([]*x509.Certificate{leaf.Cert}, errors.New("x"), ""))
}

func TestIsSelfSigned(t *testing.T) {
	root := pkitest.NewRootCA(t, "Signature Root")

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Self-Signed Leaf",
			testFunc: func(t *testing.T) {
				assert.True(t, classifier.IsSelfSigned(pkitest.SelfSigned(t, "self.example.com").Cert))
			},
		},
		{
			name: "Root Authority",
			testFunc: func(t *testing.T) {
				assert.True(t, classifier.IsSelfSigned(root.Cert))
			},
		},
		{
			name: "Issued Leaf",
			testFunc: func(t *testing.T) {
				assert.False(t, classifier.IsSelfSigned(root.Issue(t, "issued.example.com").Cert))
			},
		},
		{
			name: "Unsupported Algorithm Counts As Self-Signed",
			testFunc: func(t *testing.T) {
				cert := *root.Issue(t, "odd.example.com").Cert
				cert.SignatureAlgorithm = x509.UnknownSignatureAlgorithm
				assert.True(t, classifier.IsSelfSigned(&cert))
			},
		},
		{
			name: "SHA-1 Issued Leaf Is Not Self-Signed",
			testFunc: func(t *testing.T) {
				cert := *root.Issue(t, "sha1.example.com").Cert
				cert.SignatureAlgorithm = x509.ECDSAWithSHA1
				assert.False(t, classifier.IsSelfSigned(&cert))

				d := classifier.Classify([]*x509.Certificate{&cert}, x509.UnknownAuthorityError{}, "sha1.example.com", time.Now())
				assert.Equal(t, []classifier.Kind{classifier.UntrustedRoot}, d.Kinds)
			},
		},
		{
			name: "MD5 Signature Counts As Self-Signed",
			testFunc: func(t *testing.T) {
				cert := *root.Issue(t, "md5.example.com").Cert
				cert.SignatureAlgorithm = x509.MD5WithRSA
				assert.True(t, classifier.IsSelfSigned(&cert))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestMatchesHost(t *testing.T) {
	root := pkitest.NewRootCA(t, "Host Root")
	cnOnly := root.Issue(t, "legacy.example.com", pkitest.WithDNSNames())
	wildcardCN := root.Issue(t, "*.wild.example.com", pkitest.WithDNSNames())
	san := root.Issue(t, "cn.example.com", pkitest.WithDNSNames("san.example.com"))

	assert.True(t, classifier.MatchesHost(cnOnly.Cert, "legacy.example.com"))
	assert.True(t, classifier.MatchesHost(cnOnly.Cert, "LEGACY.example.com."))
	assert.False(t, classifier.MatchesHost(cnOnly.Cert, "other.example.com"))

	assert.True(t, classifier.MatchesHost(wildcardCN.Cert, "www.wild.example.com"))
	assert.False(t, classifier.MatchesHost(wildcardCN.Cert, "a.b.wild.example.com"))
	assert.False(t, classifier.MatchesHost(wildcardCN.Cert, "wild.example.com"))

	assert.True(t, classifier.MatchesHost(san.Cert, "san.example.com"))
	assert.False(t, classifier.MatchesHost(san.Cert, "cn.example.com"), "common name ignored when SANs exist")
}

func TestSubjectAltNames(t *testing.T) {
	root := pkitest.NewRootCA(t, "SAN Root")
	leaf := root.Issue(t, "multi.example.com",
		pkitest.WithDNSNames("multi.example.com", "www.multi.example.com"),
		pkitest.WithIPAddresses(net.ParseIP("192.0.2.7"), net.ParseIP("2001:db8::1")),
	)

	assert.Equal(t,
		[]string{"multi.example.com", "www.multi.example.com", "192.0.2.7", "2001:db8::1"},
		classifier.SubjectAltNames(leaf.Cert))

	broken := &x509.Certificate{IPAddresses: []net.IP{{10, 0, 0}}}
	assert.Empty(t, classifier.SubjectAltNames(broken))
}

func TestMessage(t *testing.T) {
	root := pkitest.NewRootCA(t, "Message Root")

	t.Run("Wrong Host Lists Names", func(t *testing.T) {
		leaf := root.Issue(t, "a.example.com", pkitest.WithDNSNames("a.example.com", "c.example.com"))
		d := classifier.Classify([]*x509.Certificate{leaf.Cert}, errors.New("mismatch"), "b.example.com", time.Now())
		require.NotNil(t, d)
		assert.True(t, strings.HasPrefix(d.Message, "The security certificate of this connection is not trusted by this computer."))
		assert.Contains(t, d.Message, "a.example.com, c.example.com")
		assert.Contains(t, d.Message, "Server:\tb.example.com")
	})

	t.Run("Expired Shows Both Dates", func(t *testing.T) {
		leaf := root.Issue(t, "late.example.com", pkitest.Expired())
		now := leaf.Cert.NotAfter.Add(36 * time.Hour)
		d := classifier.Classify([]*x509.Certificate{leaf.Cert}, errors.New("expired"), "late.example.com", now)
		require.NotNil(t, d)
		assert.Contains(t, d.Message, leaf.Cert.NotAfter.UTC().Format("Monday, 02 Jan 2006, 15:04:05 MST"))
		assert.Contains(t, d.Message, now.UTC().Format("Monday, 02 Jan 2006, 15:04:05 MST"))
		assert.Contains(t, d.Message, " UTC.")
	})

	t.Run("Unknown Hostname Placeholder", func(t *testing.T) {
		self := pkitest.SelfSigned(t, "self.example.com")
		d := classifier.Classify([]*x509.Certificate{self.Cert}, errors.New("x"), "", time.Now())
		require.NotNil(t, d)
		assert.Contains(t, d.Message, "signed by its own issuer")
		assert.Contains(t, d.Message, "Server:\t"+classifier.HostPlaceholder)
	})
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "EXPIRED", classifier.Expired.String())
	assert.Equal(t, "WRONG_HOST", classifier.WrongHost.String())
	assert.Equal(t, "SELF_SIGNED", classifier.SelfSigned.String())
	assert.Equal(t, "UNTRUSTED_ROOT", classifier.UntrustedRoot.String())
	assert.Equal(t, "UNKNOWN", classifier.Unknown.String())
	assert.Equal(t, "INVALID", classifier.Kind(42).String())
}
