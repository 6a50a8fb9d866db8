package jwt

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/rhuss/secretkey/pkg/observability"
)

// keySet caches RSA public keys from a JWKS endpoint. An unknown kid or an
// expired cache triggers a refetch, at most once per minInterval. Between
// fetches, lookups are served from the last key set, stale or not.
type keySet struct {
	url         string
	ttl         time.Duration
	minInterval time.Duration
	client      *http.Client

	mu          sync.RWMutex
	keys        map[string]*rsa.PublicKey
	fetchedAt   time.Time
	attemptedAt time.Time
}

func newKeySet(url string, ttl, minInterval time.Duration, client *http.Client) *keySet {
	return &keySet{
		url:         url,
		ttl:         ttl,
		minInterval: minInterval,
		client:      client,
		keys:        map[string]*rsa.PublicKey{},
	}
}

func (k *keySet) lookup(kid string) (*rsa.PublicKey, bool) {
	key, ok := k.keys[kid]
	return key, ok && time.Since(k.fetchedAt) < k.ttl
}

func (k *keySet) get(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	k.mu.RLock()
	key, ok := k.lookup(kid)
	k.mu.RUnlock()
	if ok {
		return key, nil
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	// Another goroutine may have refreshed while we waited.
	if key, ok := k.lookup(kid); ok {
		return key, nil
	}

	if !k.attemptedAt.IsZero() && time.Since(k.attemptedAt) < k.minInterval {
		if key, ok := k.keys[kid]; ok {
			return key, nil
		}
		return nil, fmt.Errorf("key %q not found in JWKS", kid)
	}

	k.attemptedAt = time.Now()
	keys, err := k.fetch(ctx)
	if err != nil {
		observability.JWKSRefreshesTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	observability.JWKSRefreshesTotal.WithLabelValues("ok").Inc()
	k.keys = keys
	k.fetchedAt = time.Now()

	key, ok = k.keys[kid]
	if !ok {
		return nil, fmt.Errorf("key %q not found in JWKS", kid)
	}
	return key, nil
}

type jwkDocument struct {
	Keys []struct {
		Kty string `json:"kty"`
		Kid string `json:"kid"`
		Use string `json:"use"`
		N   string `json:"n"`
		E   string `json:"e"`
	} `json:"keys"`
}

func (k *keySet) fetch(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating JWKS request: %w", err)
	}
	resp, err := k.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	var doc jwkDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, jwk := range doc.Keys {
		if jwk.Kty != "RSA" || (jwk.Use != "" && jwk.Use != "sig") {
			continue
		}
		pub, err := rsaPublicKey(jwk.N, jwk.E)
		if err != nil {
			slog.Warn("skipping JWKS key", "kid", jwk.Kid, "error", err)
			continue
		}
		keys[jwk.Kid] = pub
	}

	slog.Debug("JWKS cache refreshed", "keys", len(keys), "url", k.url)
	return keys, nil
}

func rsaPublicKey(n, e string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, fmt.Errorf("decoding modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, fmt.Errorf("decoding exponent: %w", err)
	}
	exp := new(big.Int).SetBytes(eBytes)
	if !exp.IsInt64() {
		return nil, fmt.Errorf("RSA exponent too large")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: int(exp.Int64())}, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
