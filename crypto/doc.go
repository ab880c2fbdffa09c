// Package crypto implements the simulated encryption layer of the HEM engine:
// key contexts, the reversible token codec, and token serialization.
//
// The package provides:
//
//   - Key contexts (KeyContext) bundling a key id, a private seed, and a
//     derived public descriptor
//   - A deterministic, bijective codec (Encode, Decode) between float64
//     vectors and opaque tokens
//   - Token serialization (Token.String, ParseToken) into a single
//     base64url string for transport inside JSON bodies
//
// # Transform
//
// Encoding multiplies each element's IEEE-754 bit pattern by a per-key odd
// constant modulo 2^64 and XOR-masks it with a per-key keystream word. Odd
// multipliers are units modulo 2^64 and XOR is an involution, so the
// transform is a bijection on float64 bit patterns and decoding under the
// matching context is exact. All per-key material (multiplier, keystream,
// integrity tag key, public descriptor) is derived from the context seed with
// domain-separated SHAKE-256.
//
// # Token format
//
// Tokens serialize as base64url over a fixed binary layout: magic, key id,
// declared shape, masked payload words, and a seed-keyed integrity tag.
// ParseToken rejects any structural defect with ErrCorruptToken; Decode
// additionally rejects payloads whose tag does not verify.
//
// Nothing in this package is cryptographically secure. The transform hides
// values from casual observation only; anyone holding the context seed, or
// the process memory, can invert it. It exists so that the engine's
// decode-compute-reencode pipelines have a real bijection to work with, not
// to provide confidentiality.
package crypto
