package crypto

import (
	"encoding/base64"
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// Domain separation strings for the per-key SHAKE-256 derivations. Changing
// any of these invalidates every previously issued token.
const (
	domainMultiplier = "hem/v1/multiplier"
	domainKeystream  = "hem/v1/keystream"
	domainTag        = "hem/v1/tag"
	domainPublic     = "hem/v1/public-descriptor"
)

// shakeRead fills out with SHAKE-256 output over domain || seed.
func shakeRead(domain string, seed Seed, out []byte) {
	h := sha3.NewShake256()
	h.Write([]byte(domain))
	h.Write(seed)
	h.Read(out)
}

// deriveMultiplier returns the per-key multiplier for the codec's multiply
// step. The low bit is forced on: odd values are units modulo 2^64, so the
// step is invertible.
func deriveMultiplier(seed Seed) uint64 {
	var buf [8]byte
	shakeRead(domainMultiplier, seed, buf[:])
	return binary.BigEndian.Uint64(buf[:]) | 1
}

// deriveKeystream returns n mask words, one per payload position. The same
// seed always yields the same stream.
func deriveKeystream(seed Seed, n int) []uint64 {
	buf := make([]byte, 8*n)
	shakeRead(domainKeystream, seed, buf)
	words := make([]uint64, n)
	for i := range words {
		words[i] = binary.BigEndian.Uint64(buf[8*i:])
	}
	return words
}

// derivePublicDescriptor maps a seed to its displayable public form.
func derivePublicDescriptor(seed Seed) string {
	buf := make([]byte, 16)
	shakeRead(domainPublic, seed, buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}

// deriveTag computes the integrity tag over a token's serialized preimage.
// The seed keys the derivation, so only a holder of the context can produce
// a token that verifies.
func deriveTag(seed Seed, preimage []byte) [TagBytes]byte {
	h := sha3.NewShake256()
	h.Write([]byte(domainTag))
	h.Write(seed)
	h.Write(preimage)
	var tag [TagBytes]byte
	h.Read(tag[:])
	return tag
}

// invertOdd returns the multiplicative inverse of m modulo 2^64. Newton
// iteration doubles the number of correct low bits each step, so five steps
// cover all 64 bits. m must be odd.
func invertOdd(m uint64) uint64 {
	x := m
	for i := 0; i < 5; i++ {
		x *= 2 - m*x
	}
	return x
}
