package client

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raoof128/HEM/audit"
	"github.com/Raoof128/HEM/engine"
	"github.com/Raoof128/HEM/keystore"
	"github.com/Raoof128/HEM/server"
	"github.com/Raoof128/HEM/testutil"
)

// newTestService starts an in-process HEM service and returns a client
// pointed at it.
func newTestService(t *testing.T, enableDecrypt bool) *Client {
	t.Helper()

	var opts []testutil.ConfigOption
	if enableDecrypt {
		opts = append(opts, testutil.WithSimulatedDecrypt())
	}
	cfg := testutil.NewTestConfig(opts...)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	keys := keystore.NewStore()
	srv := server.New(cfg, log, keys, engine.New(keys), audit.NewLogger(log, audit.NewMemorySink()))

	r := chi.NewRouter()
	srv.RegisterRoutes(r)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return New(ts.URL)
}

func TestHealthAndServiceInfo(t *testing.T) {
	c := newTestService(t, false)
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	info, err := c.ServiceInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hem-service", info.Service)
	assert.Nil(t, info.KeyID)
}

func TestKeyLifecycle(t *testing.T) {
	c := newTestService(t, false)
	ctx := context.Background()

	_, err := c.PublicKey(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	key, err := c.GenerateKeys(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, key.KeyID)
	assert.NotEmpty(t, key.PublicKey)

	active, err := c.PublicKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, key, active)
}

func TestEncryptComputeDecrypt(t *testing.T) {
	c := newTestService(t, true)
	ctx := context.Background()

	_, err := c.GenerateKeys(ctx)
	require.NoError(t, err)

	a, err := c.Encrypt(ctx, []float64{1.2, 2.3, 3.4})
	require.NoError(t, err)

	sum, err := c.Add(ctx, a, a)
	require.NoError(t, err)
	values, err := c.Decrypt(ctx, sum)
	require.NoError(t, err)
	assert.Equal(t, []float64{2.4, 4.6, 6.8}, values)

	product, err := c.Mul(ctx, a, a)
	require.NoError(t, err)
	_, err = c.Decrypt(ctx, product)
	require.NoError(t, err)

	mean, err := c.Mean(ctx, a)
	require.NoError(t, err)
	meanValues, err := c.Decrypt(ctx, mean)
	require.NoError(t, err)
	require.Len(t, meanValues, 1)
	assert.InDelta(t, 2.3, meanValues[0], 1e-12)
}

func TestDotPolynomialLinear(t *testing.T) {
	c := newTestService(t, true)
	ctx := context.Background()

	_, err := c.GenerateKeys(ctx)
	require.NoError(t, err)

	a, err := c.Encrypt(ctx, []float64{1, 2, 3})
	require.NoError(t, err)

	dot, err := c.Dot(ctx, a, a)
	require.NoError(t, err)
	dotValues, err := c.Decrypt(ctx, dot)
	require.NoError(t, err)
	assert.Equal(t, []float64{14}, dotValues)

	poly, err := c.Polynomial(ctx, a, []float64{2, 1})
	require.NoError(t, err)
	polyValues, err := c.Decrypt(ctx, poly)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4, 5}, polyValues)

	linear, err := c.Linear(ctx, a, []float64{1, 1, 1}, 0.5)
	require.NoError(t, err)
	linearValues, err := c.Decrypt(ctx, linear)
	require.NoError(t, err)
	assert.Equal(t, []float64{6.5}, linearValues)
}

func TestDecryptDisabled(t *testing.T) {
	c := newTestService(t, false)
	ctx := context.Background()

	_, err := c.GenerateKeys(ctx)
	require.NoError(t, err)
	ciphertext, err := c.Encrypt(ctx, []float64{1})
	require.NoError(t, err)

	_, err = c.Decrypt(ctx, ciphertext)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Detail, "disabled")
	assert.Contains(t, apiErr.Error(), "403")
}

func TestValidationErrorsSurfaceDetail(t *testing.T) {
	c := newTestService(t, false)
	ctx := context.Background()

	_, err := c.GenerateKeys(ctx)
	require.NoError(t, err)

	_, err = c.Encrypt(ctx, []float64{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Detail, "empty")

	_, err = c.Add(ctx, "junk", "junk")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestBaseURLTrailingSlash(t *testing.T) {
	c := newTestService(t, false)
	c2 := New(c.baseURL + "/")
	require.NoError(t, c2.Health(context.Background()))
}
