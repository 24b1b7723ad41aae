// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package classifier

import (
	"crypto/x509"
	"errors"
	"net"
	"slices"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

// noPathMessages are fragments of failure messages reporting that no chain
// to a trusted anchor could be built, for validators that do not surface a
// typed [x509.UnknownAuthorityError].
var noPathMessages = []string{
	"unknown authority",
	"unable to find valid certification path",
	"no trusted path",
}

// Detail is the result of classifying one validation failure.
type Detail struct {
	// Kinds is ordered and never empty; the primary kind (if any) comes first.
	Kinds []Kind
	// Code is the error code of the primary kind, or CodeExpired when expiry is the only issue.
	Code string
	// Hostname is the name the chain was checked against; empty when unknown.
	Hostname string
	// NotAfter is the leaf's expiry.
	NotAfter time.Time
	// Now is the time the classification was made at.
	Now time.Time
	// Names lists the leaf's subject alternative names.
	Names []string
	// Message is the rendered, human readable explanation.
	Message string
}

// Has reports whether k is among the classified kinds.
func (d *Detail) Has(k Kind) bool { return slices.Contains(d.Kinds, k) }

// Only reports whether k is the single classified kind.
func (d *Detail) Only(k Kind) bool { return len(d.Kinds) == 1 && d.Kinds[0] == k }

// Classifier classifies failures against an injected clock.
type Classifier struct {
	clock clockwork.Clock
}

// New returns a Classifier reading the current time from clock. A nil clock
// uses the real wall clock.
func New(clock clockwork.Clock) *Classifier {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Classifier{clock: clock}
}

// Classify classifies failure for chain and hostname at the classifier's current time.
func (c *Classifier) Classify(chain []*x509.Certificate, failure error, hostname string) *Detail {
	return Classify(chain, failure, hostname, c.clock.Now())
}

// Classify turns a validation failure into a [Detail].
//
// Parameters:
//   - chain: Presented chain, leaf first; must not be empty
//   - failure: Error returned by the validator
//   - hostname: Name the peer was expected to have; may be empty
//   - now: Time to compare the leaf's expiry against
//
// Returns:
//   - *Detail: Classification, or nil for an empty chain (empty chains are never classified)
func Classify(chain []*x509.Certificate, failure error, hostname string, now time.Time) *Detail {
	if len(chain) == 0 {
		return nil
	}
	leaf := chain[0]

	d := &Detail{
		Hostname: hostname,
		NotAfter: leaf.NotAfter,
		Now:      now,
		Names:    SubjectAltNames(leaf),
	}

	expired := leaf.NotAfter.Before(now)
	selfSigned := IsSelfSigned(leaf)

	switch {
	case selfSigned:
		d.Kinds = append(d.Kinds, SelfSigned)
		d.Code = CodeSelfSigned
	case noTrustedPath(failure):
		d.Kinds = append(d.Kinds, UntrustedRoot)
		d.Code = CodeUnknownIssuer
	case hostname != "" && !MatchesHost(leaf, hostname):
		d.Kinds = append(d.Kinds, WrongHost)
		d.Code = CodeBadDomain
	case !expired:
		d.Kinds = append(d.Kinds, Unknown)
		d.Code = CodeUnknown
	}

	if expired {
		d.Kinds = append(d.Kinds, Expired)
		if d.Code == "" {
			d.Code = CodeExpired
		}
	}

	d.Message = render(d)
	return d
}

// IsSelfSigned reports whether cert's signature verifies with its own public key.
//
// A signature or key mismatch means the certificate is not self-signed. SHA-1
// signatures are checked like any other, so a CA-issued SHA-1 leaf is not
// self-signed. When the check cannot run because the signature algorithm is
// unsupported or rejected as insecure (MD5), the certificate is treated as
// self-signed so the failure still reaches the decision callback.
func IsSelfSigned(cert *x509.Certificate) bool {
	err := cert.CheckSignature(cert.SignatureAlgorithm, cert.RawTBSCertificate, cert.Signature)
	if err == nil {
		return true
	}

	var insecure x509.InsecureAlgorithmError
	if errors.Is(err, x509.ErrUnsupportedAlgorithm) || errors.As(err, &insecure) {
		return true
	}
	return false
}

func noTrustedPath(failure error) bool {
	if failure == nil {
		return false
	}

	var unknown x509.UnknownAuthorityError
	if errors.As(failure, &unknown) {
		return true
	}

	msg := strings.ToLower(failure.Error())
	for _, fragment := range noPathMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

// MatchesHost reports whether the leaf certificate is valid for hostname.
// Subject alternative names are authoritative; the common name is only
// consulted when the certificate carries no DNS or IP names at all.
func MatchesHost(leaf *x509.Certificate, hostname string) bool {
	if leaf.VerifyHostname(hostname) == nil {
		return true
	}
	if len(leaf.DNSNames) == 0 && len(leaf.IPAddresses) == 0 && leaf.Subject.CommonName != "" {
		return matchName(leaf.Subject.CommonName, hostname)
	}
	return false
}

func matchName(pattern, host string) bool {
	pattern = strings.ToLower(strings.TrimSuffix(pattern, "."))
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if pattern == host {
		return true
	}

	// Single left-most label wildcard only, as in RFC 6125.
	suffix, ok := strings.CutPrefix(pattern, "*.")
	if !ok {
		return false
	}
	label, rest, ok := strings.Cut(host, ".")
	return ok && label != "" && rest == suffix
}

// SubjectAltNames lists the leaf's DNS names followed by its IP addresses.
// IP entries with an undecodable length are skipped.
func SubjectAltNames(cert *x509.Certificate) []string {
	names := make([]string, 0, len(cert.DNSNames)+len(cert.IPAddresses))
	names = append(names, cert.DNSNames...)
	for _, ip := range cert.IPAddresses {
		if len(ip) != net.IPv4len && len(ip) != net.IPv6len {
			continue
		}
		names = append(names, ip.String())
	}
	return names
}
