// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package trustmanager

import (
	"context"
	"crypto/x509"
	"errors"
	"slices"

	"golang.org/x/sync/singleflight"

	"github.com/H0llyW00dzZ/tls-trust-manager/src/classifier"
	"github.com/H0llyW00dzZ/tls-trust-manager/src/logger"
	"github.com/H0llyW00dzZ/tls-trust-manager/src/truststore"
)

// Manager decides whether a certificate chain is trusted.
//
// Thread Safety: a Manager holds no per-verification state and is safe for
// concurrent use.
type Manager struct {
	store      TrustStore
	callback   DecisionCallback
	validators []Validator
	classifier *classifier.Classifier
	log        logger.Logger
	metrics    *metrics
	lookupAddr func(ctx context.Context, addr string) ([]string, error)
	flights    singleflight.Group
}

// cascadeState is owned by exactly one VerifyChain call.
type cascadeState struct {
	tried    int
	accepted bool
}

// outcome is the shared result of one escalation flight.
type outcome struct {
	decision Decision
	hit      bool
	storeErr error
}

// New creates a Manager.
//
// Parameters:
//   - store: Trust store consulted and written on escalation
//   - callback: Decides escalated failures; nil selects [DenyAll]
//   - validators: Cascade, tried in order; at least one is required
//   - opts: Logger, clock, meter provider and resolver overrides
//
// Returns:
//   - *Manager: Ready to verify chains
//   - error: [ErrNilStore], [ErrNoValidators] or a metric registration error
func New(store TrustStore, callback DecisionCallback, validators []Validator, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if len(validators) == 0 {
		return nil, ErrNoValidators
	}
	if callback == nil {
		callback = DenyAll
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt.apply(cfg)
	}

	m, err := newMetrics(cfg.meterProvider)
	if err != nil {
		return nil, err
	}

	return &Manager{
		store:      store,
		callback:   callback,
		validators: slices.Clone(validators),
		classifier: classifier.New(cfg.clock),
		log:        cfg.logger,
		metrics:    m,
		lookupAddr: cfg.lookupAddr,
	}, nil
}

// Validators returns the number of validators in the cascade.
func (m *Manager) Validators() int { return len(m.validators) }

// VerifyChain runs chain, leaf first, through every validator.
//
// All validators are tried even after one has accepted, because a later
// single-kind failure is only suppressed when some validator accepted. The
// first failure that is neither suppressed nor resolved by the trust store
// or the callback ends verification.
//
// Returns:
//   - nil: The chain is trusted
//   - [ErrEmptyChain]: chain has no certificates
//   - The original validation failure: revoked, denied, callback failed or ctx done
//   - *[truststore.IOError]: A trust-always decision could not be persisted
func (m *Manager) VerifyChain(ctx context.Context, chain []*x509.Certificate, hostname string) (err error) {
	defer func() { m.metrics.verified(ctx, err) }()

	if len(chain) == 0 {
		return ErrEmptyChain
	}

	var state cascadeState
	for _, v := range m.validators {
		failure := v.Verify(ctx, chain, hostname)
		if failure == nil {
			state.accepted = true
			continue
		}
		if err := m.handleFailure(ctx, chain, failure, hostname, &state); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) handleFailure(ctx context.Context, chain []*x509.Certificate, failure error, hostname string, state *cascadeState) error {
	if errors.Is(failure, ErrCertificateRevoked) {
		m.log.Printf("trustmanager: rejecting revoked chain for %s: %v", displayHost(hostname), failure)
		return failure
	}

	detail := m.classifier.Classify(chain, failure, hostname)

	n := len(m.validators)
	if n != 1 && (detail.Only(classifier.SelfSigned) || detail.Only(classifier.UntrustedRoot)) {
		if state.accepted {
			return nil
		}
		if state.tried < n-1 {
			state.tried++
			return nil
		}
	}

	*state = cascadeState{}
	return m.resolve(ctx, chain, failure, hostname, detail)
}

func (m *Manager) resolve(ctx context.Context, chain []*x509.Certificate, failure error, hostname string, detail *classifier.Detail) error {
	anchor := chain[len(chain)-1]
	alias := truststore.Alias(anchor)

	if _, ok := m.store.Get(alias); ok {
		m.metrics.storeHits.Add(ctx, 1)
		return nil
	}

	m.metrics.escalations.Add(ctx, 1)
	m.log.Printf("trustmanager: escalating %v for %s (anchor %s)", detail.Kinds, displayHost(hostname), alias)

	esc := &Escalation{
		Chain:    chain,
		Failure:  failure,
		Hostname: hostname,
		Alias:    alias,
		Detail:   detail,
	}
	ch := m.flights.DoChan(flightKey(alias, hostname), func() (any, error) {
		return m.decide(ctx, esc)
	})

	select {
	case <-ctx.Done():
		m.log.Printf("trustmanager: escalation for %s abandoned: %v", displayHost(hostname), ctx.Err())
		return failure
	case res := <-ch:
		if res.Err != nil {
			m.log.Printf("trustmanager: decision callback failed for %s: %v", displayHost(hostname), res.Err)
			return failure
		}
		out := res.Val.(outcome)
		switch {
		case out.storeErr != nil:
			return out.storeErr
		case out.hit:
			m.metrics.storeHits.Add(ctx, 1)
			return nil
		case out.decision == Deny:
			return failure
		default:
			return nil
		}
	}
}

// flightKey groups escalations of one anchor for one peer name. Callers for
// another name get their own decision with their own detail.
func flightKey(alias, hostname string) string {
	return alias + "\x00" + hostname
}

// decide runs inside a flight keyed by anchor and hostname, so the store is
// consulted again in case a previous flight for the same anchor has just
// finished.
func (m *Manager) decide(ctx context.Context, esc *Escalation) (outcome, error) {
	if _, ok := m.store.Get(esc.Alias); ok {
		return outcome{hit: true}, nil
	}

	decision, err := m.callback.Decide(ctx, esc)
	if err != nil {
		return outcome{}, err
	}
	if ctx.Err() != nil {
		return outcome{}, ctx.Err()
	}
	m.metrics.decided(ctx, decision)
	m.log.Printf("trustmanager: %s decided %s for anchor %s", displayHost(esc.Hostname), decision, esc.Alias)

	switch decision {
	case TrustOnce, TrustAlways:
		if err := m.store.Add(esc.Alias, esc.Anchor(), decision == TrustAlways); err != nil {
			m.log.Printf("trustmanager: failed to remember anchor %s: %v", esc.Alias, err)
			return outcome{storeErr: err}, nil
		}
		return outcome{decision: decision}, nil
	default:
		return outcome{decision: Deny}, nil
	}
}

func displayHost(hostname string) string {
	if hostname == "" {
		return classifier.HostPlaceholder
	}
	return hostname
}
