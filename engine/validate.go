package engine

import (
	"fmt"

	"github.com/Raoof128/HEM/crypto"
)

// validatePair enforces the key-binding and shape preconditions shared by
// add, mul, and dot. It runs before any decode, so operands that fail it are
// never reconstructed.
func validatePair(a, b *crypto.Token) error {
	if a.KeyID() != b.KeyID() {
		return fmt.Errorf("%w: %s against %s", crypto.ErrKeyMismatch, a.KeyID(), b.KeyID())
	}
	if a.Shape() != b.Shape() {
		return fmt.Errorf("%w: %d against %d", ErrShapeMismatch, a.Shape(), b.Shape())
	}
	return nil
}
