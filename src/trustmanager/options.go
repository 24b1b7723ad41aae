// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package trustmanager

import (
	"context"
	"net"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/H0llyW00dzZ/tls-trust-manager/src/logger"
)

type config struct {
	logger        logger.Logger
	clock         clockwork.Clock
	meterProvider metric.MeterProvider
	lookupAddr    func(ctx context.Context, addr string) ([]string, error)
}

func defaultConfig() *config {
	return &config{
		logger:        logger.Nop(),
		clock:         clockwork.NewRealClock(),
		meterProvider: otel.GetMeterProvider(),
		lookupAddr:    net.DefaultResolver.LookupAddr,
	}
}

// Option configures a [Manager].
type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (f optionFunc) apply(cfg *config) { f(cfg) }

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logger.Logger) Option {
	return optionFunc(func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	})
}

// WithClock sets the clock used to decide whether a leaf has expired.
func WithClock(clock clockwork.Clock) Option {
	return optionFunc(func(cfg *config) {
		if clock != nil {
			cfg.clock = clock
		}
	})
}

// WithMeterProvider sets the meter provider. The default is the global one.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return optionFunc(func(cfg *config) {
		if provider != nil {
			cfg.meterProvider = provider
		}
	})
}

// WithAddrResolver sets the reverse lookup used by [Manager.VerifyWithAddr].
func WithAddrResolver(lookup func(ctx context.Context, addr string) ([]string, error)) Option {
	return optionFunc(func(cfg *config) {
		if lookup != nil {
			cfg.lookupAddr = lookup
		}
	})
}
