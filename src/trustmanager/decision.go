// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package trustmanager

import (
	"context"
	"crypto/x509"

	"golang.org/x/sync/semaphore"

	"github.com/H0llyW00dzZ/tls-trust-manager/src/classifier"
)

// Decision is the answer of a [DecisionCallback].
type Decision int

const (
	// Deny rejects the chain with the original validation failure.
	Deny Decision = iota
	// TrustOnce accepts the anchor for the lifetime of the process.
	TrustOnce
	// TrustAlways accepts the anchor and records it in the durable store.
	TrustAlways
)

func (d Decision) String() string {
	switch d {
	case Deny:
		return "deny"
	case TrustOnce:
		return "trust_once"
	case TrustAlways:
		return "trust_always"
	default:
		return "invalid"
	}
}

// Escalation is what a [DecisionCallback] is asked to decide on.
type Escalation struct {
	Chain    []*x509.Certificate
	Failure  error
	Hostname string
	// Alias is the trust store key of the chain's anchor.
	Alias  string
	Detail *classifier.Detail
}

// Anchor returns the last certificate of the chain.
func (e *Escalation) Anchor() *x509.Certificate { return e.Chain[len(e.Chain)-1] }

// DecisionCallback decides on an escalated failure. Decide may block for as
// long as a human needs; it should return when ctx is done. An error is
// treated as [Deny].
type DecisionCallback interface {
	Decide(ctx context.Context, esc *Escalation) (Decision, error)
}

// DecisionFunc adapts a function to [DecisionCallback].
type DecisionFunc func(ctx context.Context, esc *Escalation) (Decision, error)

// Decide calls f.
func (f DecisionFunc) Decide(ctx context.Context, esc *Escalation) (Decision, error) {
	return f(ctx, esc)
}

// DenyAll denies every escalation without asking anyone.
var DenyAll DecisionCallback = Always(Deny)

// Always returns a callback answering every escalation with d.
func Always(d Decision) DecisionCallback {
	return DecisionFunc(func(context.Context, *Escalation) (Decision, error) { return d, nil })
}

// Serialize wraps cb so at most one invocation runs at a time, for callbacks
// that own a single dialog or terminal. Waiting callers give up when their
// context is done.
func Serialize(cb DecisionCallback) DecisionCallback {
	return &serialized{cb: cb, sem: semaphore.NewWeighted(1)}
}

type serialized struct {
	cb  DecisionCallback
	sem *semaphore.Weighted
}

func (s *serialized) Decide(ctx context.Context, esc *Escalation) (Decision, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return Deny, err
	}
	defer s.sem.Release(1)

	return s.cb.Decide(ctx, esc)
}
