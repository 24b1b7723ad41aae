// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package trustmanager_test

import (
	"context"
	"crypto/x509"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/goleak"

	"github.com/H0llyW00dzZ/tls-trust-manager/src/trustmanager"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recorder is a DecisionCallback remembering every escalation it saw.
type recorder struct {
	mu       sync.Mutex
	calls    []*trustmanager.Escalation
	decision trustmanager.Decision
	err      error
}

func (r *recorder) Decide(_ context.Context, esc *trustmanager.Escalation) (trustmanager.Decision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, esc)
	return r.decision, r.err
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recorder) last() *trustmanager.Escalation {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

// counting wraps a validator and counts its invocations.
type counting struct {
	calls atomic.Int32
	next  trustmanager.Validator
}

func (c *counting) Verify(ctx context.Context, chain []*x509.Certificate, hostname string) error {
	c.calls.Add(1)
	return c.next.Verify(ctx, chain, hostname)
}

func fail(err error) trustmanager.Validator {
	return trustmanager.ValidatorFunc(func(context.Context, []*x509.Certificate, string) error { return err })
}

var accept = trustmanager.ValidatorFunc(func(context.Context, []*x509.Certificate, string) error { return nil })

// poolValidator verifies against roots with the standard library, the way a
// platform or default root store validator does.
func poolValidator(roots ...*x509.Certificate) trustmanager.Validator {
	pool := x509.NewCertPool()
	for _, r := range roots {
		pool.AddCert(r)
	}
	return trustmanager.ValidatorFunc(func(_ context.Context, chain []*x509.Certificate, hostname string) error {
		intermediates := x509.NewCertPool()
		for _, c := range chain[1:] {
			intermediates.AddCert(c)
		}
		_, err := chain[0].Verify(x509.VerifyOptions{
			Roots:         pool,
			Intermediates: intermediates,
			DNSName:       hostname,
		})
		return err
	})
}
