// Package client provides a Go client for the HEM HTTP API.
//
// All methods take a context and return *APIError for any non-2xx response,
// so callers can branch on the status code with errors.As.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Raoof128/HEM/api"
)

// APIError is the decoded error body of a non-2xx response.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Detail)
}

// Client talks to a single HEM service instance.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// Option adjusts the client during construction.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, for custom transports
// or test doubles.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpc.Timeout = d }
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Health checks the service health endpoint.
func (c *Client) Health(ctx context.Context) error {
	var resp api.HealthResponse
	return c.get(ctx, "/health", &resp)
}

// ServiceInfo returns the service name and active key id.
func (c *Client) ServiceInfo(ctx context.Context) (*api.ServiceInfoResponse, error) {
	var resp api.ServiceInfoResponse
	if err := c.get(ctx, "/", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateKeys generates and activates a fresh key context on the service.
func (c *Client) GenerateKeys(ctx context.Context) (*api.KeyResponse, error) {
	var resp api.KeyResponse
	if err := c.post(ctx, "/keys/generate", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PublicKey returns the active key id and public descriptor.
func (c *Client) PublicKey(ctx context.Context) (*api.KeyResponse, error) {
	var resp api.KeyResponse
	if err := c.get(ctx, "/keys/public", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Encrypt encodes values under the service's active key and returns the
// opaque token.
func (c *Client) Encrypt(ctx context.Context, values []float64) (string, error) {
	var resp api.CiphertextResponse
	if err := c.post(ctx, "/encrypt", api.EncryptRequest{Values: values}, &resp); err != nil {
		return "", err
	}
	return resp.Ciphertext, nil
}

// Decrypt reveals the plaintext vector of a token. The service rejects this
// with a 403 unless simulated decrypt is enabled.
func (c *Client) Decrypt(ctx context.Context, ciphertext string) ([]float64, error) {
	var resp api.DecryptResponse
	if err := c.post(ctx, "/decrypt", api.DecryptRequest{Ciphertext: ciphertext}, &resp); err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// Add returns a token of element-wise sums.
func (c *Client) Add(ctx context.Context, a, b string) (string, error) {
	return c.pairOp(ctx, "/compute/add", a, b)
}

// Mul returns a token of element-wise products.
func (c *Client) Mul(ctx context.Context, a, b string) (string, error) {
	return c.pairOp(ctx, "/compute/mul", a, b)
}

// Dot returns a single-element token holding the scalar product.
func (c *Client) Dot(ctx context.Context, a, b string) (string, error) {
	return c.pairOp(ctx, "/compute/dot", a, b)
}

// Polynomial evaluates the polynomial with the given coefficients, ordered
// from the constant term up, at every element.
func (c *Client) Polynomial(ctx context.Context, ciphertext string, coefficients []float64) (string, error) {
	var resp api.CiphertextResponse
	err := c.post(ctx, "/compute/polynomial", api.PolynomialRequest{
		Ciphertext:   ciphertext,
		Coefficients: coefficients,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Ciphertext, nil
}

// Mean returns a single-element token holding the arithmetic mean.
func (c *Client) Mean(ctx context.Context, ciphertext string) (string, error) {
	var resp api.CiphertextResponse
	if err := c.post(ctx, "/compute/mean", api.MeanRequest{Ciphertext: ciphertext}, &resp); err != nil {
		return "", err
	}
	return resp.Ciphertext, nil
}

// Linear returns a single-element token holding dot(values, weights) + bias.
func (c *Client) Linear(ctx context.Context, ciphertext string, weights []float64, bias float64) (string, error) {
	var resp api.CiphertextResponse
	err := c.post(ctx, "/compute/linear", api.LinearRequest{
		Ciphertext: ciphertext,
		Weights:    weights,
		Bias:       bias,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Ciphertext, nil
}

func (c *Client) pairOp(ctx context.Context, path, a, b string) (string, error) {
	var resp api.CiphertextResponse
	if err := c.post(ctx, path, api.PairRequest{A: a, B: b}, &resp); err != nil {
		return "", err
	}
	return resp.Ciphertext, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errBody api.ErrorResponse
	detail := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &errBody); err == nil && errBody.Error != "" {
		detail = errBody.Error
	}
	return &APIError{StatusCode: resp.StatusCode, Detail: detail}
}
