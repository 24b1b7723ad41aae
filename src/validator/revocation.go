// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package validator

import (
	"bytes"
	"context"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/H0llyW00dzZ/tls-trust-manager/src/internal/helper/gc"
	"github.com/H0llyW00dzZ/tls-trust-manager/src/logger"
	"github.com/H0llyW00dzZ/tls-trust-manager/src/trustmanager"
)

// maxCRLBytes caps a CRL download.
const maxCRLBytes = 32 << 20

// RevocationChecker checks the end-entity certificate of a verified chain
// against the CRLs it names.
//
// Only CRLs are consulted. A CRL that cannot be fetched, parsed or verified
// against the issuer leaves the certificate unrevoked (soft-fail); a listed
// serial number yields a [*trustmanager.RevokedError].
//
// Thread Safety: Safe for concurrent use. Concurrent downloads of one URL are
// coalesced.
type RevocationChecker struct {
	http    *HTTPConfig
	cache   *CRLCache
	log     logger.Logger
	flights singleflight.Group
}

// NewRevocationChecker creates a checker downloading through httpCfg and
// caching in cache. A nil logger discards messages.
func NewRevocationChecker(cache *CRLCache, httpCfg *HTTPConfig, log logger.Logger) *RevocationChecker {
	if log == nil {
		log = logger.Nop()
	}
	return &RevocationChecker{http: httpCfg, cache: cache, log: log}
}

// Cache returns the checker's CRL cache.
func (r *RevocationChecker) Cache() *CRLCache { return r.cache }

// Check inspects chain[0], issued by chain[1]. chain should come from a
// successful path build so that chain[1] is the real issuer.
//
// Returns:
//   - error: [*trustmanager.RevokedError] when the leaf is listed, nil otherwise
func (r *RevocationChecker) Check(ctx context.Context, chain []*x509.Certificate) error {
	if len(chain) < 2 {
		return nil
	}
	leaf, issuer := chain[0], chain[1]

	for _, url := range leaf.CRLDistributionPoints {
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			continue
		}

		list, err := r.fetch(ctx, url)
		if err != nil {
			r.log.Printf("validator: CRL %s unavailable: %v", url, err)
			continue
		}
		if err := list.CheckSignatureFrom(issuer); err != nil {
			r.log.Printf("validator: CRL %s not signed by %s: %v", url, issuer.Subject, err)
			continue
		}

		for _, entry := range list.RevokedCertificateEntries {
			if entry.SerialNumber != nil && entry.SerialNumber.Cmp(leaf.SerialNumber) == 0 {
				return &trustmanager.RevokedError{
					Serial:    leaf.SerialNumber,
					RevokedAt: entry.RevocationTime,
					Source:    url,
				}
			}
		}
		return nil
	}
	return nil
}

func (r *RevocationChecker) fetch(ctx context.Context, url string) (*x509.RevocationList, error) {
	if list, ok := r.cache.Get(url); ok {
		return list, nil
	}

	v, err, _ := r.flights.Do(url, func() (any, error) {
		// A flight that just finished may have filled the cache.
		if list, ok := r.cache.Get(url); ok {
			return list, nil
		}
		return r.download(ctx, url)
	})
	if err != nil {
		return nil, err
	}
	return v.(*x509.RevocationList), nil
}

func (r *RevocationChecker) download(ctx context.Context, url string) (*x509.RevocationList, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create CRL request: %w", err)
	}
	req.Header.Set("User-Agent", r.http.GetUserAgent())

	resp, err := r.http.Client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("CRL request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CRL server returned status %d", resp.StatusCode)
	}

	data, err := gc.ReadAll(io.LimitReader(resp.Body, maxCRLBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read CRL: %w", err)
	}

	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("-----BEGIN")) {
		block, _ := pem.Decode(data)
		if block == nil || block.Type != "X509 CRL" {
			return nil, fmt.Errorf("CRL from %s is not an X509 CRL PEM block", url)
		}
		data = block.Bytes
	}

	list, err := x509.ParseRevocationList(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CRL: %w", err)
	}

	r.cache.Set(url, list, len(data))
	return list, nil
}
