// Package api defines the JSON wire types shared by the HEM server and the
// Go client.
package api

// ServiceInfoResponse is returned by GET /.
type ServiceInfoResponse struct {
	Service string `json:"service"`
	// KeyID is the active key id, or null when no key has been generated.
	KeyID *string `json:"key_id"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// KeyResponse describes a key context without its encoding parameters.
type KeyResponse struct {
	KeyID     string `json:"key_id"`
	PublicKey string `json:"public_key"`
}

// EncryptRequest carries the plaintext vector for POST /encrypt.
type EncryptRequest struct {
	Values []float64 `json:"values"`
}

// CiphertextResponse carries a single opaque token.
type CiphertextResponse struct {
	Ciphertext string `json:"ciphertext"`
}

// DecryptRequest carries the token to reveal for POST /decrypt.
type DecryptRequest struct {
	Ciphertext string `json:"ciphertext"`
}

// DecryptResponse carries the revealed plaintext vector.
type DecryptResponse struct {
	Values []float64 `json:"values"`
}

// PairRequest carries two tokens for the binary compute endpoints
// (add, mul, dot).
type PairRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

// PolynomialRequest carries a token and polynomial coefficients ordered from
// the constant term upward.
type PolynomialRequest struct {
	Ciphertext   string    `json:"ciphertext"`
	Coefficients []float64 `json:"coefficients"`
}

// MeanRequest carries the token to reduce for POST /compute/mean.
type MeanRequest struct {
	Ciphertext string `json:"ciphertext"`
}

// LinearRequest carries a token, per-element weights and a bias for
// POST /compute/linear.
type LinearRequest struct {
	Ciphertext string    `json:"ciphertext"`
	Weights    []float64 `json:"weights"`
	Bias       float64   `json:"bias"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}
