package secretkey

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
)

// ErrDuplicateSecret is returned when a secret is inserted twice.
var ErrDuplicateSecret = errors.New("duplicate secret")

// DuplicateSecretError names the identifiers involved in a duplicate.
// It never carries the secret itself.
type DuplicateSecretError struct {
	// Identifier is the caller whose insert was rejected.
	Identifier string
	// Existing is the caller already holding the secret.
	Existing string
}

func (e *DuplicateSecretError) Error() string {
	return fmt.Sprintf("%s: identifier %q reuses the secret of %q", ErrDuplicateSecret, e.Identifier, e.Existing)
}

func (e *DuplicateSecretError) Unwrap() error { return ErrDuplicateSecret }

// Pair is one secret and the caller identifier it resolves to.
type Pair struct {
	Secret     string
	Identifier string
}

// Digest is the SHA-256 of a secret. Stores keep digests, not secrets.
type Digest [sha256.Size]byte

// Sum returns the digest of secret.
func Sum(secret string) Digest {
	return sha256.Sum256([]byte(secret))
}

// Fingerprint returns the first 12 hex digits of the digest.
func (d Digest) Fingerprint() string {
	return hex.EncodeToString(d[:6])
}

// Store maps secrets to caller identifiers. Identifiers need not be unique.
//
// A Store is filled with Insert or InsertMany and must not be modified
// once it has been passed to an Authenticator; lookups are then safe from
// any number of goroutines.
type Store struct {
	secrets map[Digest]string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{secrets: make(map[Digest]string)}
}

// NewStoreFrom builds a store from pairs, failing on the first duplicate.
func NewStoreFrom(pairs []Pair) (*Store, error) {
	s := NewStore()
	if err := s.InsertMany(pairs); err != nil {
		return nil, err
	}
	return s, nil
}

// Insert records secret → identifier. A secret that is already present is
// rejected with a *DuplicateSecretError and the existing mapping is kept.
func (s *Store) Insert(secret, identifier string) error {
	d := Sum(secret)
	if existing, ok := s.secrets[d]; ok {
		return &DuplicateSecretError{Identifier: identifier, Existing: existing}
	}
	s.secrets[d] = identifier
	return nil
}

// InsertMany inserts pairs in order and stops at the first duplicate.
// Pairs before the duplicate remain inserted.
func (s *Store) InsertMany(pairs []Pair) error {
	for _, p := range pairs {
		if err := s.Insert(p.Secret, p.Identifier); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the identifier for secret.
func (s *Store) Lookup(secret string) (string, bool) {
	if s == nil {
		return "", false
	}
	id, ok := s.secrets[Sum(secret)]
	return id, ok
}

// Len returns the number of secrets.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.secrets)
}

// Identifiers returns the distinct caller identifiers, sorted.
func (s *Store) Identifiers() []string {
	if s == nil {
		return nil
	}
	seen := make(map[string]bool, len(s.secrets))
	ids := make([]string, 0, len(s.secrets))
	for _, id := range s.secrets {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Range calls fn for every entry in unspecified order until fn returns
// false. Secrets are only available as digests.
func (s *Store) Range(fn func(digest Digest, identifier string) bool) {
	if s == nil {
		return
	}
	for d, id := range s.secrets {
		if !fn(d, id) {
			return
		}
	}
}
