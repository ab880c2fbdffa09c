package crypto

import (
	"fmt"
	"math"
)

// Encode maps a plaintext vector into an opaque token bound to ctx.
//
// Each element's IEEE-754 bit pattern is multiplied by the context's odd
// multiplier modulo 2^64 and XOR-masked with the context's keystream word for
// that position. Both steps are invertible, so Decode recovers the exact
// input bits: the round trip is lossless over the whole finite float64 range.
// Encoding is deterministic; the same values under the same context always
// produce the same token.
func Encode(values []float64, ctx *KeyContext) (*Token, error) {
	if len(values) == 0 {
		return nil, ErrEmptyInput
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: index %d", ErrNonFiniteValue, i)
		}
	}

	mult := deriveMultiplier(ctx.seed)
	stream := deriveKeystream(ctx.seed, len(values))
	words := make([]uint64, len(values))
	for i, v := range values {
		words[i] = math.Float64bits(v)*mult ^ stream[i]
	}

	t := &Token{keyID: ctx.id, words: words}
	t.tag = deriveTag(ctx.seed, t.preimage())
	return t, nil
}

// Decode reverses Encode under the matching context. It fails with
// ErrKeyMismatch when the token was encoded under a different key id, and
// with ErrCorruptToken when the integrity tag does not verify (the token was
// tampered with, or forged without the context's seed).
func Decode(t *Token, ctx *KeyContext) ([]float64, error) {
	if t.keyID != ctx.id {
		return nil, fmt.Errorf("%w: token has %s, context has %s", ErrKeyMismatch, t.keyID, ctx.id)
	}
	if tag := deriveTag(ctx.seed, t.preimage()); tag != t.tag {
		return nil, fmt.Errorf("%w: integrity tag mismatch", ErrCorruptToken)
	}

	inv := invertOdd(deriveMultiplier(ctx.seed))
	stream := deriveKeystream(ctx.seed, len(t.words))
	values := make([]float64, len(t.words))
	for i, w := range t.words {
		values[i] = math.Float64frombits((w ^ stream[i]) * inv)
	}
	return values, nil
}
