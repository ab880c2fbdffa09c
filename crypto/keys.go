package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"slices"
)

const (
	// KeyIDBytes is the number of random bytes backing a key identifier.
	// Identifiers are the hex encoding of these bytes, so 16 characters.
	KeyIDBytes = 8

	// SeedBytes is the length of a key context seed.
	SeedBytes = 32
)

// KeyID identifies a key context. Every token carries the id of the context
// it was encoded under, and arithmetic is only defined between tokens with
// equal ids.
type KeyID string

// NewRandomKeyID generates a fresh identifier from the system's CSPRNG.
func NewRandomKeyID() (KeyID, error) {
	buf := make([]byte, KeyIDBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate key id: %w", err)
	}
	return KeyID(hex.EncodeToString(buf)), nil
}

// String returns the identifier in its transport form.
func (id KeyID) String() string {
	return string(id)
}

// Seed is the private per-key transform material. It parameterizes every
// derivation the codec performs and must never leave the process.
type Seed []byte

// NewSeed creates a Seed from a byte slice.
// This function makes a copy of the input data to ensure immutability.
func NewSeed(data []byte) Seed {
	s := make([]byte, len(data))
	copy(s, data)
	return Seed(s)
}

// NewRandomSeed generates seed material from the system's CSPRNG.
func NewRandomSeed() (Seed, error) {
	buf := make([]byte, SeedBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate seed: %w", err)
	}
	return Seed(buf), nil
}

// Bytes returns a copy of the seed material.
// This method should be used carefully as it exposes sensitive key material.
func (s Seed) Bytes() []byte {
	return slices.Clone(s)
}

// KeyContext bundles a key identifier with the seed that drives the codec's
// transform. The seed is unexported and has no accessor on the context, so the
// only values a context exposes outside this package are the id and the
// derived public descriptor.
type KeyContext struct {
	id               KeyID
	publicDescriptor string
	seed             Seed
}

// NewKeyContext generates a context with a fresh random identifier and seed.
func NewKeyContext() (*KeyContext, error) {
	id, err := NewRandomKeyID()
	if err != nil {
		return nil, err
	}
	seed, err := NewRandomSeed()
	if err != nil {
		return nil, err
	}
	return newKeyContext(id, seed), nil
}

func newKeyContext(id KeyID, seed Seed) *KeyContext {
	return &KeyContext{
		id:               id,
		publicDescriptor: derivePublicDescriptor(seed),
		seed:             seed,
	}
}

// ID returns the identifier tokens encoded under this context carry.
func (kc *KeyContext) ID() KeyID {
	return kc.id
}

// PublicDescriptor returns a string derived from the seed that is safe to
// display as "public key" metadata. The derivation is one-way; the descriptor
// reveals nothing about the seed.
func (kc *KeyContext) PublicDescriptor() string {
	return kc.publicDescriptor
}
