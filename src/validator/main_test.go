// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package validator_test

import (
	"crypto/x509"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/H0llyW00dzZ/tls-trust-manager/src/internal/pkitest"
	"github.com/H0llyW00dzZ/tls-trust-manager/src/validator"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// crlServer serves a CRL body and counts requests.
type crlServer struct {
	*httptest.Server

	mu       sync.Mutex
	body     []byte
	status   int
	requests atomic.Int32
	agent    atomic.Value
}

func newCRLServer(t *testing.T, body []byte) *crlServer {
	t.Helper()
	s := &crlServer{body: body, status: http.StatusOK}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		s.agent.Store(r.Header.Get("User-Agent"))
		s.mu.Lock()
		body, status := s.body, s.status
		s.mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *crlServer) url() string { return s.URL + "/root.crl" }

func (s *crlServer) setStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

func newChecker(t *testing.T) *validator.RevocationChecker {
	t.Helper()
	cache, err := validator.NewCRLCache(validator.CRLCacheConfig{}, nil)
	require.NoError(t, err)
	httpCfg := validator.NewHTTPConfig("test")
	httpCfg.Timeout = 5 * time.Second
	t.Cleanup(httpCfg.Client().CloseIdleConnections)
	return validator.NewRevocationChecker(cache, httpCfg, nil)
}

func parseCRL(t *testing.T, der []byte) *x509.RevocationList {
	t.Helper()
	list, err := x509.ParseRevocationList(der)
	require.NoError(t, err)
	return list
}

// revokedFixture is a root, a leaf it issued pointing at srv, and the server.
type revokedFixture struct {
	root *pkitest.Authority
	leaf *pkitest.KeyPair
	srv  *crlServer
}

func newRevokedFixture(t *testing.T, revoke bool) *revokedFixture {
	t.Helper()
	f := &revokedFixture{root: pkitest.NewRootCA(t, "CRL Root")}
	f.srv = newCRLServer(t, nil)
	f.leaf = f.root.Issue(t, "crl.example.com", pkitest.WithCRL(f.srv.url()))

	var revoked []*x509.Certificate
	if revoke {
		revoked = append(revoked, f.leaf.Cert)
	}
	f.srv.mu.Lock()
	f.srv.body = f.root.RevocationList(t, time.Now().Add(time.Hour), revoked...)
	f.srv.mu.Unlock()
	return f
}
