package engine

import (
	"errors"
	"fmt"

	"github.com/Raoof128/HEM/crypto"
	"github.com/Raoof128/HEM/keystore"
)

var (
	// ErrShapeMismatch is returned when operand shapes disagree, or when a
	// weights vector does not match its token's shape.
	ErrShapeMismatch = errors.New("operand shapes do not match")

	// ErrEmptyCoefficients is returned by Polynomial when no coefficients
	// are supplied.
	ErrEmptyCoefficients = errors.New("coefficients must not be empty")
)

// Engine evaluates arithmetic over opaque tokens. Every operation validates
// its operands, decodes them with the matching key context, computes on
// plaintext, and re-encodes the result under the operands' key. Results are
// always new tokens; inputs are never modified.
//
// The engine holds no state of its own. The key store passed to New is its
// only collaborator, so independent stores give fully isolated engines.
type Engine struct {
	keys *keystore.Store
}

// New creates an engine backed by the given key store.
func New(keys *keystore.Store) *Engine {
	return &Engine{keys: keys}
}

// Encrypt encodes values into a token under the active key context.
func (e *Engine) Encrypt(values []float64) (*crypto.Token, error) {
	ctx, err := e.keys.Active()
	if err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}
	token, err := crypto.Encode(values, ctx)
	if err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}
	return token, nil
}

// Reveal reconstructs the plaintext vector of a token. This is the only
// operation that returns plaintext; whether a caller may invoke it is policy
// owned by the calling layer, the engine decodes unconditionally.
func (e *Engine) Reveal(t *crypto.Token) ([]float64, error) {
	values, _, err := e.decodeOne(t)
	if err != nil {
		return nil, fmt.Errorf("reveal: %w", err)
	}
	return values, nil
}

// Add returns a token of the element-wise sums of a and b.
func (e *Engine) Add(a, b *crypto.Token) (*crypto.Token, error) {
	va, vb, ctx, err := e.decodePair(a, b)
	if err != nil {
		return nil, fmt.Errorf("add: %w", err)
	}
	out := make([]float64, len(va))
	for i := range va {
		out[i] = va[i] + vb[i]
	}
	return e.encodeResult("add", out, ctx)
}

// Mul returns a token of the element-wise products of a and b.
func (e *Engine) Mul(a, b *crypto.Token) (*crypto.Token, error) {
	va, vb, ctx, err := e.decodePair(a, b)
	if err != nil {
		return nil, fmt.Errorf("mul: %w", err)
	}
	out := make([]float64, len(va))
	for i := range va {
		out[i] = va[i] * vb[i]
	}
	return e.encodeResult("mul", out, ctx)
}

// Dot returns a single-element token holding the scalar product of a and b.
func (e *Engine) Dot(a, b *crypto.Token) (*crypto.Token, error) {
	va, vb, ctx, err := e.decodePair(a, b)
	if err != nil {
		return nil, fmt.Errorf("dot: %w", err)
	}
	sum := 0.0
	for i := range va {
		sum += va[i] * vb[i]
	}
	return e.encodeResult("dot", []float64{sum}, ctx)
}

// Polynomial evaluates c0 + c1*x + ... + cn*x^n at every element of the
// token, with coefficients ordered from the constant term up.
func (e *Engine) Polynomial(t *crypto.Token, coefficients []float64) (*crypto.Token, error) {
	if len(coefficients) == 0 {
		return nil, fmt.Errorf("polynomial: %w", ErrEmptyCoefficients)
	}
	values, ctx, err := e.decodeOne(t)
	if err != nil {
		return nil, fmt.Errorf("polynomial: %w", err)
	}
	out := make([]float64, len(values))
	for i, x := range values {
		out[i] = evalPolynomial(coefficients, x)
	}
	return e.encodeResult("polynomial", out, ctx)
}

// Mean returns a single-element token holding the arithmetic mean of the
// token's values.
func (e *Engine) Mean(t *crypto.Token) (*crypto.Token, error) {
	// Encode never produces zero-shape tokens; checked anyway so a zero
	// shape can never reach the division below.
	if t.Shape() == 0 {
		return nil, fmt.Errorf("mean: %w", crypto.ErrEmptyInput)
	}
	values, ctx, err := e.decodeOne(t)
	if err != nil {
		return nil, fmt.Errorf("mean: %w", err)
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return e.encodeResult("mean", []float64{sum / float64(len(values))}, ctx)
}

// Linear returns a single-element token holding dot(values, weights) + bias.
func (e *Engine) Linear(t *crypto.Token, weights []float64, bias float64) (*crypto.Token, error) {
	if len(weights) != t.Shape() {
		return nil, fmt.Errorf("linear: weights length %d against token shape %d: %w",
			len(weights), t.Shape(), ErrShapeMismatch)
	}
	values, ctx, err := e.decodeOne(t)
	if err != nil {
		return nil, fmt.Errorf("linear: %w", err)
	}
	sum := 0.0
	for i, v := range values {
		sum += v * weights[i]
	}
	return e.encodeResult("linear", []float64{sum + bias}, ctx)
}

// ScalarMul returns a token with every element multiplied by factor.
func (e *Engine) ScalarMul(t *crypto.Token, factor float64) (*crypto.Token, error) {
	values, ctx, err := e.decodeOne(t)
	if err != nil {
		return nil, fmt.Errorf("scalar_mul: %w", err)
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v * factor
	}
	return e.encodeResult("scalar_mul", out, ctx)
}

// decodeOne resolves the token's context and decodes it.
func (e *Engine) decodeOne(t *crypto.Token) ([]float64, *crypto.KeyContext, error) {
	ctx, err := e.keys.Get(t.KeyID())
	if err != nil {
		return nil, nil, err
	}
	values, err := crypto.Decode(t, ctx)
	if err != nil {
		return nil, nil, err
	}
	return values, ctx, nil
}

// decodePair validates the two-operand preconditions, then decodes both
// tokens under their shared context.
func (e *Engine) decodePair(a, b *crypto.Token) ([]float64, []float64, *crypto.KeyContext, error) {
	if err := validatePair(a, b); err != nil {
		return nil, nil, nil, err
	}
	ctx, err := e.keys.Get(a.KeyID())
	if err != nil {
		return nil, nil, nil, err
	}
	va, err := crypto.Decode(a, ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	vb, err := crypto.Decode(b, ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return va, vb, ctx, nil
}

// encodeResult re-encodes a computed plaintext under the operands' context.
// Arithmetic can overflow to ±Inf, which the codec rejects; surface that as
// the operation's error rather than a panic or a token that cannot decode.
func (e *Engine) encodeResult(op string, values []float64, ctx *crypto.KeyContext) (*crypto.Token, error) {
	token, err := crypto.Encode(values, ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: encode result: %w", op, err)
	}
	return token, nil
}

// evalPolynomial evaluates the polynomial with Horner's method, iterating
// from the highest-degree coefficient down.
func evalPolynomial(coefficients []float64, x float64) float64 {
	acc := coefficients[len(coefficients)-1]
	for i := len(coefficients) - 2; i >= 0; i-- {
		acc = acc*x + coefficients[i]
	}
	return acc
}
