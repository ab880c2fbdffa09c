package crypto

import "errors"

// Codec failure kinds. Callers classify with errors.Is; call sites wrap these
// with additional detail via fmt.Errorf("...: %w", err).
var (
	// ErrEmptyInput is returned when a zero-length vector is encoded.
	ErrEmptyInput = errors.New("input vector must not be empty")

	// ErrNonFiniteValue is returned when an input value is NaN or infinite.
	ErrNonFiniteValue = errors.New("input values must be finite")

	// ErrKeyMismatch is returned when a token is decoded with a context whose
	// key id differs from the one the token was encoded under.
	ErrKeyMismatch = errors.New("ciphertext key does not match context key")

	// ErrCorruptToken is returned when a token's serialized structure cannot
	// be parsed or its integrity tag does not verify.
	ErrCorruptToken = errors.New("malformed ciphertext token")
)
