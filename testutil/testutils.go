package testutil

import (
	"math/rand"

	"github.com/Raoof128/HEM/config"
	"github.com/Raoof128/HEM/crypto"
)

// =====================================
// Configuration Generators
// =====================================

// ConfigOption is a function that modifies a service Config
type ConfigOption func(*config.Config)

// WithServiceName sets the reported service name
func WithServiceName(name string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.ServiceName = name
	}
}

// WithListenAddr sets the HTTP listen address
func WithListenAddr(addr string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.ListenAddr = addr
	}
}

// WithMetricsAddr sets the metrics listen address
func WithMetricsAddr(addr string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.MetricsAddr = addr
	}
}

// WithSimulatedDecrypt enables the simulated decrypt endpoint
func WithSimulatedDecrypt() ConfigOption {
	return func(cfg *config.Config) {
		cfg.EnableSimulatedDecrypt = true
	}
}

// WithRateLimit sets the per-client request budget per minute
func WithRateLimit(perMinute int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.RateLimitPerMinute = perMinute
	}
}

// WithAuditLogPath routes audit events to a JSON lines file
func WithAuditLogPath(path string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.AuditLogPath = path
	}
}

// NewTestConfig creates a service configuration with default values
// that can be customized using options
func NewTestConfig(options ...ConfigOption) *config.Config {
	cfg := config.Default()

	// Apply all provided options
	for _, option := range options {
		option(cfg)
	}

	return cfg
}

// =====================================
// Vector Generators
// =====================================

// GenerateTestVector generates a deterministic float vector of length n.
// Elements are spaced so no two are equal.
func GenerateTestVector(n int) []float64 {
	vec := make([]float64, n)
	for i := range vec {
		vec[i] = 0.5 + 1.25*float64(i)
	}
	return vec
}

// GenerateRandomVector generates a reproducible pseudo-random vector with
// values in [-100, 100). The same seed always yields the same vector.
func GenerateRandomVector(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	vec := make([]float64, n)
	for i := range vec {
		vec[i] = rng.Float64()*200 - 100
	}
	return vec
}

// =====================================
// Key and Token Generators
// =====================================

// GenerateTestKeyContext creates a fresh key context for testing
func GenerateTestKeyContext() *crypto.KeyContext {
	ctx, _ := crypto.NewKeyContext()
	return ctx
}

// GenerateTestToken encrypts values under a fresh key context and returns
// both, for tests that need a token without running a keystore
func GenerateTestToken(values []float64) (*crypto.Token, *crypto.KeyContext) {
	ctx := GenerateTestKeyContext()
	token, _ := crypto.Encode(values, ctx)
	return token, ctx
}

// GenerateTestTokenWithKey encrypts values under an existing key context
func GenerateTestTokenWithKey(values []float64, ctx *crypto.KeyContext) *crypto.Token {
	token, _ := crypto.Encode(values, ctx)
	return token
}
