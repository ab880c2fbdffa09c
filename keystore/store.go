// Package keystore holds the key contexts generated during the process
// lifetime and tracks which one new encodings use. The store is the only
// shared mutable state in the engine; all access is serialized so a context
// is either fully visible to readers or not yet visible.
package keystore

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Raoof128/HEM/crypto"
)

var (
	// ErrUnknownKey is returned when no context with the requested id exists.
	ErrUnknownKey = errors.New("unknown key id")

	// ErrNoActiveKey is returned when no key has been generated yet.
	ErrNoActiveKey = errors.New("no key has been generated yet")
)

// Store maps key ids to their contexts. Generating a new context never
// invalidates earlier ones, so tokens issued under older keys stay decodable
// for as long as the store lives. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	contexts map[crypto.KeyID]*crypto.KeyContext
	activeID crypto.KeyID
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		contexts: make(map[crypto.KeyID]*crypto.KeyContext),
	}
}

// Generate creates a fresh key context, stores it, and makes it the active
// context for subsequent encodings.
func (s *Store) Generate() (*crypto.KeyContext, error) {
	ctx, err := crypto.NewKeyContext()
	if err != nil {
		return nil, fmt.Errorf("generate key context: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.contexts[ctx.ID()]; exists {
		// Ids carry 64 random bits; a collision means the RNG is broken.
		panic(fmt.Sprintf("keystore: duplicate key id %s", ctx.ID()))
	}
	s.contexts[ctx.ID()] = ctx
	s.activeID = ctx.ID()
	return ctx, nil
}

// Get returns the context with the given id.
func (s *Store) Get(id crypto.KeyID) (*crypto.KeyContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctx, ok := s.contexts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, id)
	}
	return ctx, nil
}

// Active returns the context new encodings use, the most recently generated
// one.
func (s *Store) Active() (*crypto.KeyContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeID == "" {
		return nil, ErrNoActiveKey
	}
	return s.contexts[s.activeID], nil
}

// Count returns the number of contexts held.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contexts)
}
