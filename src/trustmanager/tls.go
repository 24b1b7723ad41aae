// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package trustmanager

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"strings"
	"time"
)

// DefaultPort is used by [Dial] when the address has no port.
const DefaultPort = "443"

// VerifyPeerCertificate returns a [tls.Config.VerifyPeerCertificate] hook
// verifying the raw peer chain for hostname. Set InsecureSkipVerify so the
// hook is the only verification.
func (m *Manager) VerifyPeerCertificate(hostname string) func(rawCerts [][]byte, verifiedChains [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		chain := make([]*x509.Certificate, 0, len(rawCerts))
		for i, raw := range rawCerts {
			cert, err := x509.ParseCertificate(raw)
			if err != nil {
				return fmt.Errorf("trustmanager: failed to parse peer certificate %d: %w", i, err)
			}
			chain = append(chain, cert)
		}
		return m.VerifyChain(context.Background(), chain, hostname)
	}
}

// VerifyWithAddr verifies chain for the peer at addr ("host", "ip" or
// "host:port"). An IP address is reverse resolved; when that fails the IP
// literal itself is the hostname.
func (m *Manager) VerifyWithAddr(ctx context.Context, chain []*x509.Certificate, addr string) error {
	return m.VerifyChain(ctx, chain, m.hostForAddr(ctx, addr))
}

func (m *Manager) hostForAddr(ctx context.Context, addr string) string {
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	if net.ParseIP(host) == nil {
		return host
	}

	names, err := m.lookupAddr(ctx, host)
	if err != nil || len(names) == 0 {
		return host
	}
	return strings.TrimSuffix(names[0], ".")
}

// VerifyConnection verifies the peer chain of cs for cs.ServerName. It fits
// [tls.Config.VerifyConnection].
//
// crypto/tls leaves cs.ServerName empty when the configured server name is
// an IP literal, so the name check is skipped for IP peers. Use
// [Manager.ClientConfig] or [Dial] to verify against the dialed address.
func (m *Manager) VerifyConnection(cs tls.ConnectionState) error {
	return m.VerifyChain(context.Background(), cs.PeerCertificates, cs.ServerName)
}

// ClientConfig returns a client [tls.Config] whose certificate verification
// is performed by m alone. The peer chain is verified for serverName, which
// may be a host name or an IP literal.
func (m *Manager) ClientConfig(serverName string) *tls.Config {
	return m.clientConfig(context.Background(), serverName)
}

func (m *Manager) clientConfig(ctx context.Context, serverName string) *tls.Config {
	return &tls.Config{
		ServerName: serverName,
		MinVersion: tls.VersionTLS12,
		// Verification happens in VerifyConnection, which runs regardless.
		InsecureSkipVerify: true,
		VerifyConnection: func(cs tls.ConnectionState) error {
			return m.VerifyChain(ctx, cs.PeerCertificates, serverName)
		},
	}
}

// Dial opens a TLS connection to address whose server chain is verified by m.
//
// timeout bounds establishing the TCP connection only; the handshake, which
// may wait on a human decision, is bounded by ctx.
func Dial(ctx context.Context, m *Manager, address string, timeout time.Duration) (*tls.Conn, error) {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		host = address
		address = net.JoinHostPort(address, DefaultPort)
	}

	dialer := &net.Dialer{Timeout: timeout}
	raw, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("trustmanager: failed to connect to %s: %w", address, err)
	}

	conn := tls.Client(raw, m.clientConfig(ctx, host))
	if err := conn.HandshakeContext(ctx); err != nil {
		raw.Close()
		return nil, fmt.Errorf("trustmanager: handshake with %s failed: %w", address, err)
	}
	return conn, nil
}
