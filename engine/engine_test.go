package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raoof128/HEM/crypto"
	"github.com/Raoof128/HEM/keystore"
	"github.com/Raoof128/HEM/testutil"
)

func newTestEngine(t *testing.T) (*Engine, *keystore.Store) {
	t.Helper()
	store := keystore.NewStore()
	_, err := store.Generate()
	require.NoError(t, err)
	return New(store), store
}

func encrypt(t *testing.T, e *Engine, values []float64) *crypto.Token {
	t.Helper()
	token, err := e.Encrypt(values)
	require.NoError(t, err)
	return token
}

func TestAddRevealsElementwiseSum(t *testing.T) {
	e, _ := newTestEngine(t)
	a := encrypt(t, e, []float64{1.2, 2.3, 3.4})

	result, err := e.Add(a, a)
	require.NoError(t, err)
	assert.Equal(t, a.KeyID(), result.KeyID())
	assert.Equal(t, 3, result.Shape())

	values, err := e.Reveal(result)
	require.NoError(t, err)
	assert.Equal(t, []float64{2.4, 4.6, 6.8}, values)
}

func TestAddMatchesPlaintext(t *testing.T) {
	e, _ := newTestEngine(t)

	cases := [][2][]float64{
		{{1, 2, 3}, {4, 5, 6}},
		{{-1.5, 0.25}, {1.5, -0.25}},
		{{1e300, -1e300, 0.001}, {1e300, 1e300, 0.002}},
	}
	for _, c := range cases {
		a := encrypt(t, e, c[0])
		b := encrypt(t, e, c[1])

		result, err := e.Add(a, b)
		require.NoError(t, err)
		values, err := e.Reveal(result)
		require.NoError(t, err)

		expected := make([]float64, len(c[0]))
		for i := range expected {
			expected[i] = c[0][i] + c[1][i]
		}
		assert.Equal(t, expected, values)
	}
}

func TestAddRandomVectors(t *testing.T) {
	e, _ := newTestEngine(t)

	a := testutil.GenerateTestVector(32)
	b := testutil.GenerateRandomVector(32, 7)

	result, err := e.Add(encrypt(t, e, a), encrypt(t, e, b))
	require.NoError(t, err)
	values, err := e.Reveal(result)
	require.NoError(t, err)

	for i := range a {
		assert.Equal(t, a[i]+b[i], values[i])
	}
}

func TestMulMatchesPlaintext(t *testing.T) {
	e, _ := newTestEngine(t)

	a := encrypt(t, e, []float64{1.5, -2.0, 0.0, 3.25})
	b := encrypt(t, e, []float64{2.0, 4.0, 99.0, -1.0})

	result, err := e.Mul(a, b)
	require.NoError(t, err)
	values, err := e.Reveal(result)
	require.NoError(t, err)
	assert.Equal(t, []float64{3.0, -8.0, 0.0, -3.25}, values)
}

func TestDotMatchesPlaintext(t *testing.T) {
	e, _ := newTestEngine(t)

	a := encrypt(t, e, []float64{1.0, 2.0, 3.0})
	b := encrypt(t, e, []float64{4.0, 5.0, 6.0})

	result, err := e.Dot(a, b)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Shape())

	values, err := e.Reveal(result)
	require.NoError(t, err)
	assert.Equal(t, []float64{32.0}, values)
}

func TestCrossKeyRejection(t *testing.T) {
	store := keystore.NewStore()
	e := New(store)

	_, err := store.Generate()
	require.NoError(t, err)
	b := encrypt(t, e, []float64{2.0, 3.0})

	_, err = store.Generate()
	require.NoError(t, err)
	c := encrypt(t, e, []float64{1.0, 1.0})

	_, err = e.Add(b, c)
	require.ErrorIs(t, err, crypto.ErrKeyMismatch)
	_, err = e.Mul(b, c)
	require.ErrorIs(t, err, crypto.ErrKeyMismatch)
	_, err = e.Dot(b, c)
	require.ErrorIs(t, err, crypto.ErrKeyMismatch)
}

func TestShapeMismatchRejection(t *testing.T) {
	e, _ := newTestEngine(t)

	a := encrypt(t, e, []float64{1.0, 2.0})
	b := encrypt(t, e, []float64{1.0, 2.0, 3.0})

	_, err := e.Add(a, b)
	require.ErrorIs(t, err, ErrShapeMismatch)
	_, err = e.Mul(a, b)
	require.ErrorIs(t, err, ErrShapeMismatch)
	_, err = e.Dot(a, b)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestPolynomial(t *testing.T) {
	e, _ := newTestEngine(t)

	// 1 + 2x + 3x^2 at x=2 is 17.
	token := encrypt(t, e, []float64{2.0})
	result, err := e.Polynomial(token, []float64{1.0, 2.0, 3.0})
	require.NoError(t, err)
	values, err := e.Reveal(result)
	require.NoError(t, err)
	assert.Equal(t, []float64{17.0}, values)

	// A single coefficient is the constant polynomial.
	constant, err := e.Polynomial(token, []float64{5.0})
	require.NoError(t, err)
	values, err = e.Reveal(constant)
	require.NoError(t, err)
	assert.Equal(t, []float64{5.0}, values)

	// Identity polynomial applied to every element.
	vec := encrypt(t, e, []float64{1.0, 2.0, 3.0})
	identity, err := e.Polynomial(vec, []float64{0.0, 1.0})
	require.NoError(t, err)
	values, err = e.Reveal(identity)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0, 2.0, 3.0}, values)
}

func TestPolynomialHornerMatchesDirect(t *testing.T) {
	e, _ := newTestEngine(t)

	xs := []float64{-2.5, -1.0, 0.0, 0.5, 3.0}
	coefficients := []float64{0.5, -1.25, 2.0, 0.75}

	token := encrypt(t, e, xs)
	result, err := e.Polynomial(token, coefficients)
	require.NoError(t, err)
	values, err := e.Reveal(result)
	require.NoError(t, err)

	for i, x := range xs {
		direct := 0.0
		pow := 1.0
		for _, c := range coefficients {
			direct += c * pow
			pow *= x
		}
		assert.InDelta(t, direct, values[i], 1e-9)
	}
}

func TestPolynomialEmptyCoefficients(t *testing.T) {
	e, _ := newTestEngine(t)
	token := encrypt(t, e, []float64{1.0})

	_, err := e.Polynomial(token, nil)
	require.ErrorIs(t, err, ErrEmptyCoefficients)
	_, err = e.Polynomial(token, []float64{})
	require.ErrorIs(t, err, ErrEmptyCoefficients)
}

func TestMean(t *testing.T) {
	e, _ := newTestEngine(t)

	token := encrypt(t, e, []float64{4.0, 8.0})
	result, err := e.Mean(token)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Shape())

	values, err := e.Reveal(result)
	require.NoError(t, err)
	assert.Equal(t, []float64{6.0}, values)
}

func TestLinear(t *testing.T) {
	e, _ := newTestEngine(t)

	token := encrypt(t, e, []float64{1.0, 2.0, 3.0})
	result, err := e.Linear(token, []float64{0.5, 0.5, 0.5}, 1.0)
	require.NoError(t, err)

	values, err := e.Reveal(result)
	require.NoError(t, err)
	assert.Equal(t, []float64{4.0}, values)
}

func TestLinearShapeMismatch(t *testing.T) {
	e, _ := newTestEngine(t)

	token := encrypt(t, e, []float64{1.0, 2.0, 3.0})
	_, err := e.Linear(token, []float64{0.5, 0.5}, 1.0)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestScalarMul(t *testing.T) {
	e, _ := newTestEngine(t)

	token := encrypt(t, e, []float64{1.5, -2.0, 0.5})
	result, err := e.ScalarMul(token, 2.0)
	require.NoError(t, err)

	values, err := e.Reveal(result)
	require.NoError(t, err)
	assert.Equal(t, []float64{3.0, -4.0, 1.0}, values)
}

func TestUnknownKeyRejection(t *testing.T) {
	// A token bound to a key the engine's store never issued.
	token, _ := testutil.GenerateTestToken([]float64{1.0, 2.0})

	e, _ := newTestEngine(t)
	_, err := e.Reveal(token)
	require.ErrorIs(t, err, keystore.ErrUnknownKey)
	_, err = e.Mean(token)
	require.ErrorIs(t, err, keystore.ErrUnknownKey)
	_, err = e.Add(token, token)
	require.ErrorIs(t, err, keystore.ErrUnknownKey)
}

func TestEncryptWithoutActiveKey(t *testing.T) {
	e := New(keystore.NewStore())

	_, err := e.Encrypt([]float64{1.0})
	require.ErrorIs(t, err, keystore.ErrNoActiveKey)
}

func TestOperationsUseOperandKeyNotActive(t *testing.T) {
	store := keystore.NewStore()
	e := New(store)

	first, err := store.Generate()
	require.NoError(t, err)
	token := encrypt(t, e, []float64{1.0, 2.0})

	// Rotating the active key must not change which key results carry.
	_, err = store.Generate()
	require.NoError(t, err)

	result, err := e.Add(token, token)
	require.NoError(t, err)
	assert.Equal(t, first.ID(), result.KeyID())

	values, err := e.Reveal(result)
	require.NoError(t, err)
	assert.Equal(t, []float64{2.0, 4.0}, values)
}

func TestOperationsDoNotMutateInputs(t *testing.T) {
	e, _ := newTestEngine(t)

	a := encrypt(t, e, []float64{1.0, 2.0})
	b := encrypt(t, e, []float64{3.0, 4.0})
	beforeA, beforeB := a.String(), b.String()

	_, err := e.Add(a, b)
	require.NoError(t, err)
	_, err = e.Mul(a, b)
	require.NoError(t, err)

	assert.Equal(t, beforeA, a.String())
	assert.Equal(t, beforeB, b.String())

	values, err := e.Reveal(a)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0, 2.0}, values)
}

func TestOverflowingResultIsRejected(t *testing.T) {
	e, _ := newTestEngine(t)

	a := encrypt(t, e, []float64{1e300})
	b := encrypt(t, e, []float64{1e300})

	// The product overflows float64; the engine reports it instead of
	// issuing a token that cannot hold the value.
	_, err := e.Mul(a, b)
	require.ErrorIs(t, err, crypto.ErrNonFiniteValue)
}
