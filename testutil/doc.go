/*
Package testutil provides testing utilities for the HEM service.

It contains generators for the fixtures HEM tests need most: service
configurations, float vectors and key-bound ciphertext tokens. Tests can
build their data through this package instead of repeating setup code.

# Key Components

## Configuration Generators

Functions for creating customizable service configurations:

	// Create default test config
	cfg := testutil.NewTestConfig()

	// Create custom config with specific options
	customCfg := testutil.NewTestConfig(
	    testutil.WithSimulatedDecrypt(),
	    testutil.WithRateLimit(5),
	)

## Vector Generators

Functions for creating plaintext float vectors:

	// Deterministic ramp of distinct values
	vec := testutil.GenerateTestVector(8)

	// Reproducible pseudo-random values in [-100, 100)
	noisy := testutil.GenerateRandomVector(32, 7)

## Key and Token Generators

Functions for creating key contexts and ciphertext tokens directly,
without running a keystore or a service:

	// Fresh key context
	key := testutil.GenerateTestKeyContext()

	// Token under a fresh key, for unknown-key test cases
	token, key := testutil.GenerateTestToken([]float64{1.0, 2.0})

	// Token under an existing key
	other := testutil.GenerateTestTokenWithKey([]float64{3.0}, key)

# Usage Example

	func TestAddition(t *testing.T) {
	    a := testutil.GenerateRandomVector(16, 1)
	    b := testutil.GenerateRandomVector(16, 2)

	    // ... encrypt both, add the tokens, reveal the result ...

	    for i := range a {
	        assert.Equal(t, a[i]+b[i], revealed[i])
	    }
	}

This package is intended for testing purposes only and should not be used
in production code.
*/
package testutil
