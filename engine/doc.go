// Package engine implements the homomorphic-style operation set over opaque
// tokens: add, mul, dot, polynomial, mean, linear, scalar_mul, and the
// explicit reveal.
//
// Operations are pure functions of their inputs and the key store: decode the
// operands, compute on plaintext, re-encode under the operands' key. A
// revealed result always equals the same operation applied directly to the
// underlying plaintext. Validation failures are reported before any operand
// is decoded, and no failure mutates the store or the inputs.
package engine
