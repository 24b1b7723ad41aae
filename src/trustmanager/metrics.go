// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package trustmanager

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/H0llyW00dzZ/tls-trust-manager/src/version"
)

// ScopeName is the instrumentation scope of the manager's metrics.
const ScopeName = "github.com/H0llyW00dzZ/tls-trust-manager/trustmanager"

const (
	outcomeAccepted = "accepted"
	outcomeRejected = "rejected"
	outcomeRevoked  = "revoked"
)

type metrics struct {
	verifications metric.Int64Counter
	escalations   metric.Int64Counter
	decisions     metric.Int64Counter
	storeHits     metric.Int64Counter
}

func newMetrics(provider metric.MeterProvider) (*metrics, error) {
	meter := provider.Meter(ScopeName, metric.WithInstrumentationVersion(version.Version))

	var (
		m   metrics
		err error
	)
	if m.verifications, err = meter.Int64Counter(
		"trustmanager.verifications",
		metric.WithDescription("Completed chain verifications by outcome"),
	); err != nil {
		return nil, err
	}
	if m.escalations, err = meter.Int64Counter(
		"trustmanager.escalations",
		metric.WithDescription("Validation failures escalated to the trust store and decision callback"),
	); err != nil {
		return nil, err
	}
	if m.decisions, err = meter.Int64Counter(
		"trustmanager.decisions",
		metric.WithDescription("Decisions returned by the decision callback"),
	); err != nil {
		return nil, err
	}
	if m.storeHits, err = meter.Int64Counter(
		"trustmanager.store_hits",
		metric.WithDescription("Escalations resolved by a remembered trust decision"),
	); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *metrics) verified(ctx context.Context, err error) {
	outcome := outcomeAccepted
	switch {
	case errors.Is(err, ErrCertificateRevoked):
		outcome = outcomeRevoked
	case err != nil:
		outcome = outcomeRejected
	}
	m.verifications.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *metrics) decided(ctx context.Context, d Decision) {
	m.decisions.Add(ctx, 1, metric.WithAttributes(attribute.String("decision", d.String())))
}
