package secretkey

import (
	"context"
	"fmt"
	"strings"

	"github.com/rhuss/secretkey/pkg/debug"
	"github.com/rhuss/secretkey/pkg/source"
)

// DefaultConfigurationKey is the base configuration key for secrets.
const DefaultConfigurationKey = "AUTH_SECRET_KEY"

// Resolve extracts secret → identifier pairs from configuration entries.
//
// If entries[baseKey] is non-blank it is the only secret, mapped to the
// empty identifier. Otherwise every entry whose key starts with
// baseKey + "_" (case-insensitive) and whose value is non-blank becomes a
// pair: the value is the secret, the rest of the key is the identifier.
// Keys are visited in sorted order. An empty baseKey selects
// DefaultConfigurationKey.
func Resolve(entries map[string]string, baseKey string) []Pair {
	if baseKey == "" {
		baseKey = DefaultConfigurationKey
	}

	if secret := entries[baseKey]; !isBlank(secret) {
		return []Pair{{Secret: secret, Identifier: ""}}
	}

	prefix := baseKey + "_"
	var pairs []Pair
	for _, key := range source.SortedKeys(entries) {
		if len(key) < len(prefix) || !strings.EqualFold(key[:len(prefix)], prefix) {
			continue
		}
		value := entries[key]
		if isBlank(value) {
			continue
		}
		pairs = append(pairs, Pair{Secret: value, Identifier: key[len(prefix):]})
	}
	return pairs
}

// Build reads entries from src, resolves them under baseKey and returns a
// new Store. Two identifiers sharing a secret fail with ErrDuplicateSecret.
func Build(ctx context.Context, src source.Source, baseKey string) (*Store, error) {
	entries, err := src.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading configuration entries: %w", err)
	}

	pairs := Resolve(entries, baseKey)
	store, err := NewStoreFrom(pairs)
	if err != nil {
		return nil, fmt.Errorf("building credential store: %w", err)
	}

	debug.Log("config", "credential store built", "entries", store.Len(), "identifiers", store.Identifiers())
	return store, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
