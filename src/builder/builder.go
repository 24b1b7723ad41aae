// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package builder

import (
	"context"
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"

	"github.com/H0llyW00dzZ/tls-trust-manager/src/config"
	"github.com/H0llyW00dzZ/tls-trust-manager/src/logger"
	"github.com/H0llyW00dzZ/tls-trust-manager/src/trustmanager"
	"github.com/H0llyW00dzZ/tls-trust-manager/src/truststore"
	"github.com/H0llyW00dzZ/tls-trust-manager/src/validator"
	"github.com/H0llyW00dzZ/tls-trust-manager/src/version"
)

// Engine is an assembled trust manager and the parts it was built from.
type Engine struct {
	Manager *trustmanager.Manager
	Store   *truststore.Store
	// Validators in cascade order.
	Validators []*validator.PoolValidator
	// CRLCache is nil when revocation checking is disabled. [Engine.Run]
	// drops its expired entries.
	CRLCache *validator.CRLCache
}

type options struct {
	log          logger.Logger
	clock        clockwork.Clock
	version      string
	managerOpts  []trustmanager.Option
	withPlatform func(opts ...validator.Option) *validator.PoolValidator
}

// Option configures [Build].
type Option func(*options)

// WithLogger sets the logger shared by the manager and the revocation checker.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithClock sets the clock shared by the manager, validators and CRL cache.
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithVersion sets the version advertised in the CRL download User-Agent.
func WithVersion(v string) Option {
	return func(o *options) { o.version = v }
}

// WithManagerOptions passes extra options to [trustmanager.New].
func WithManagerOptions(opts ...trustmanager.Option) Option {
	return func(o *options) { o.managerOpts = append(o.managerOpts, opts...) }
}

// WithPlatformValidator replaces the platform root store validator, for
// hosts whose system roots must not be consulted.
func WithPlatformValidator(fn func(opts ...validator.Option) *validator.PoolValidator) Option {
	return func(o *options) {
		if fn != nil {
			o.withPlatform = fn
		}
	}
}

// Build opens the trust store named by cfg and assembles the manager.
//
// Parameters:
//   - cfg: Validated configuration
//   - cb: Decision callback; nil denies every escalation
//   - opts: Logger, clock and manager options
//
// Returns:
//   - *Engine: Assembled manager with its store and validators
//   - error: Store or root store errors, or [trustmanager.ErrNoValidators]
func Build(cfg *config.Config, cb trustmanager.DecisionCallback, opts ...Option) (*Engine, error) {
	o := &options{
		log:          logger.Nop(),
		clock:        clockwork.NewRealClock(),
		version:      version.Version,
		withPlatform: validator.NewPlatform,
	}
	for _, opt := range opts {
		opt(o)
	}

	store, err := truststore.Open(cfg.TrustStore.Path, cfg.TrustStore.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("builder: failed to open trust store: %w", err)
	}

	engine := &Engine{Store: store}
	vopts := []validator.Option{validator.WithClock(o.clock)}

	if cfg.Revocation.Enabled {
		cache, err := validator.NewCRLCache(validator.CRLCacheConfig{
			MaxSize:         cfg.Revocation.CacheSize,
			CleanupInterval: cfg.CleanupInterval(),
		}, o.clock)
		if err != nil {
			return nil, err
		}
		httpCfg := validator.NewHTTPConfig(o.version)
		httpCfg.Timeout = cfg.RevocationTimeout()

		engine.CRLCache = cache
		vopts = append(vopts, validator.WithRevocation(validator.NewRevocationChecker(cache, httpCfg, o.log)))
	}

	if cfg.PlatformRoots {
		engine.Validators = append(engine.Validators, o.withPlatform(vopts...))
	}

	if cfg.DefaultRoots.Path != "" {
		v, err := validator.NewFromFile(cfg.DefaultRoots.Path, cfg.DefaultRoots.Passphrase, vopts...)
		if err != nil {
			return nil, fmt.Errorf("builder: failed to load default roots: %w", err)
		}
		engine.Validators = append(engine.Validators, v)
	}

	if _, err := os.Stat(store.Path()); err == nil {
		engine.Validators = append(engine.Validators, validator.NewFromTrustStore(store, vopts...))
	}

	validators := make([]trustmanager.Validator, 0, len(engine.Validators))
	for _, v := range engine.Validators {
		validators = append(validators, v)
	}

	mopts := append([]trustmanager.Option{
		trustmanager.WithLogger(o.log),
		trustmanager.WithClock(o.clock),
	}, o.managerOpts...)

	engine.Manager, err = trustmanager.New(store, cb, validators, mopts...)
	if err != nil {
		return nil, err
	}

	o.log.Printf("builder: trust manager ready with %d validators (store %s)", len(validators), store.Path())
	return engine, nil
}

// Run performs background maintenance until ctx is done: expired CRLs are
// dropped every revocation cleanup interval. It always returns ctx.Err().
func (e *Engine) Run(ctx context.Context) error {
	if e.CRLCache == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	return e.CRLCache.Run(ctx)
}

// Names returns the validator names in cascade order.
func (e *Engine) Names() []string {
	names := make([]string, 0, len(e.Validators))
	for _, v := range e.Validators {
		names = append(names, v.Name())
	}
	return names
}
