package crypto

import (
	"math"
	"testing"
)

func FuzzEncodeDecodeRoundTrip(f *testing.F) {
	// Add seed corpus
	f.Add(1.2, 2.3, 3.4)
	f.Add(0.0, -0.0, 0.0)
	f.Add(math.MaxFloat64, -math.MaxFloat64, math.SmallestNonzeroFloat64)
	f.Add(1e-308, -1e308, 42.0)

	f.Fuzz(func(t *testing.T, a, b, c float64) {
		values := []float64{a, b, c}
		finite := true
		for _, v := range values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				finite = false
			}
		}

		ctx, err := NewKeyContext()
		if err != nil {
			t.Fatalf("failed to generate context: %v", err)
		}

		token, err := Encode(values, ctx)
		if !finite {
			// Invariant 1: non-finite inputs are always rejected
			if err == nil {
				t.Fatal("encoding non-finite values should fail")
			}
			return
		}
		if err != nil {
			t.Fatalf("encoding failed: %v", err)
		}

		// Invariant 2: shape and key binding are preserved
		if token.Shape() != len(values) {
			t.Errorf("shape wrong: got %d, want %d", token.Shape(), len(values))
		}
		if token.KeyID() != ctx.ID() {
			t.Errorf("key id wrong: got %s, want %s", token.KeyID(), ctx.ID())
		}

		// Invariant 3: round trip is bit-exact
		decoded, err := Decode(token, ctx)
		if err != nil {
			t.Fatalf("decoding failed: %v", err)
		}
		for i, v := range values {
			if math.Float64bits(decoded[i]) != math.Float64bits(v) {
				t.Errorf("round trip failed at %d: got %v, want %v", i, decoded[i], v)
			}
		}

		// Invariant 4: encoding is deterministic
		again, err := Encode(values, ctx)
		if err != nil {
			t.Fatalf("re-encoding failed: %v", err)
		}
		if token.String() != again.String() {
			t.Error("same values and context produced different tokens")
		}

		// Invariant 5: a different context never decodes the token
		other, err := NewKeyContext()
		if err != nil {
			t.Fatalf("failed to generate context: %v", err)
		}
		if _, err := Decode(token, other); err == nil {
			t.Error("decoding with a different context should fail")
		}
	})
}

func FuzzParseToken(f *testing.F) {
	// Add seed corpus with valid, truncated, and garbage inputs
	seedCtx, err := NewKeyContext()
	if err != nil {
		f.Fatalf("failed to generate context: %v", err)
	}
	seedToken, err := Encode([]float64{1.5, -2.5}, seedCtx)
	if err != nil {
		f.Fatalf("failed to encode seed token: %v", err)
	}
	f.Add(seedToken.String())
	f.Add(seedToken.String()[:10])
	f.Add("")
	f.Add("not a token at all")
	f.Add("AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")

	f.Fuzz(func(t *testing.T, s string) {
		token, err := ParseToken(s)
		if err != nil {
			// Malformed input is fine; it must just never panic.
			return
		}

		// Invariant 1: parsed tokens have a non-empty key id and payload
		if token.KeyID() == "" {
			t.Error("parsed token has empty key id")
		}
		if token.Shape() == 0 {
			t.Error("parsed token has zero shape")
		}

		// Invariant 2: serialization round-trips to the same string
		if token.String() != s {
			t.Errorf("serialization round trip failed: got %q, want %q", token.String(), s)
		}
	})
}
